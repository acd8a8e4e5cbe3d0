package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/handler"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/metrics"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/middleware"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/repository"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/session"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/config"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: cfg.Version}); err != nil {
			log.Printf("failed to initialise sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	repo := repository.NewSQLRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Connected to Redis successfully")

	credentialService := services.NewCredentialService(repo, bcrypt.DefaultCost)
	accessController := services.NewAccessController(
		credentialService,
		services.NewChildService(repo),
		services.NewHistoryService(repo),
		services.NewVaccinationService(repo),
		session.NewRedisStore(redisClient),
		cfg.SessionTTL,
		cfg.DeleteConfirmTTL,
	)
	tokenService := services.NewTokenService(cfg.JWTPrivateKey, cfg.SessionTTL)
	appMetrics := metrics.New()

	mux := handler.NewServeMux(handler.Routes{
		Auth:         handler.NewAuthHandler(credentialService, accessController, tokenService, appMetrics),
		Children:     handler.NewChildHandler(accessController),
		History:      handler.NewHistoryHandler(accessController),
		Vaccinations: handler.NewVaccinationHandler(accessController),
		Health:       handler.NewHealthHandler(db, redisClient, cfg.Version),
		Middleware:   middleware.NewAuthMiddleware(cfg.JWTPublicKey, accessController),
		Metrics:      appMetrics.Handler(),
		Instrumenter: appMetrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Recover(middleware.CORSMiddleware(cfg.AllowedOrigins)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down server: %v", err)
	}
}
