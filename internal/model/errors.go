package model

// ValidationError reports a single malformed or out-of-range input field.
// Handlers translate it into an HTTP 400 response carrying both the
// offending field and a human readable message, so a client knows what
// to correct.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
