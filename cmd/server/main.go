package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/config"
	"github.com/kostomeister/planetarium-api-service/internal/database"
	"github.com/kostomeister/planetarium-api-service/internal/handler"
	"github.com/kostomeister/planetarium-api-service/internal/middleware"
	"github.com/kostomeister/planetarium-api-service/internal/queue"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
	"github.com/kostomeister/planetarium-api-service/internal/router"
	queue_publisher "github.com/kostomeister/planetarium-api-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.InitSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	domes := repository.NewDomeRepo(db)
	themes := repository.NewThemeRepo(db)
	shows := repository.NewShowRepo(db)
	sessions := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e, router.CatalogHandlers{
		Domes:    handler.NewDomeHandler(domes),
		Themes:   handler.NewThemeHandler(themes),
		Shows:    handler.NewShowHandler(shows),
		Sessions: handler.NewSessionHandler(sessions),
	}, cfg.JWTSecret, cacheMW)
	router.RegisterReservations(e, handler.NewReservationHandler(
		reservations, sessions, queue_publisher.PublishReservationCreated,
	), cfg.JWTSecret)

	// Background consumer mirrors committed bookings into logs/reservations.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
