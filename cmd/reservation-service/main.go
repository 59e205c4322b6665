package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-reservations/internal/auth"
	"ms-reservations/internal/auth/auth_api"
	authdb "ms-reservations/internal/auth/db"
	"ms-reservations/internal/config"
	"ms-reservations/internal/events"
	eventdb "ms-reservations/internal/events/db"
	"ms-reservations/internal/events/event_api"
	"ms-reservations/internal/kafka"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/reservations"
	reservationdb "ms-reservations/internal/reservations/db"
	"ms-reservations/internal/reservations/qr"
	"ms-reservations/internal/reservations/reservation_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func newRouter(
	authHandler *auth_api.Handler,
	eventHandler *event_api.Handler,
	reservationHandler *reservation_api.Handler,
	authService *auth.Service,
	log *logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/events", eventHandler.ListEvents)
	r.Get("/events/{id}", eventHandler.GetEvent)

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService, log))

		r.Post("/logout", authHandler.Logout)

		r.Post("/events", eventHandler.CreateEvent)
		r.Put("/events/{id}", eventHandler.UpdateEvent)
		r.Delete("/events/{id}", eventHandler.DeleteEvent)

		r.Post("/events/{id}/reservations", reservationHandler.CreateReservation)
		r.Delete("/reservations/{id}", reservationHandler.DeleteReservation)
		r.Get("/reservations/{id}/qr", reservationHandler.GetReservationQR)
	})

	return r
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Reservation Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.EventCreated,
			cfg.Kafka.Topics.EventUpdated,
			cfg.Kafka.Topics.EventCancelled,
			cfg.Kafka.Topics.ReservationCreated,
			cfg.Kafka.Topics.ReservationCancelled,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		publisher = producer
	} else {
		log.Info("KAFKA", "Kafka disabled, lifecycle messages will be dropped")
	}

	tokenCache := auth.NewRedisTokenCache(redisClient, cfg.Auth.TokenCacheTTL)
	authService := auth.NewService(&authdb.DB{Bun: bunDB}, tokenCache, log, cfg.Auth.BcryptCost)

	eventStore := &eventdb.DB{Bun: bunDB}
	eventService := events.NewService(eventStore, publisher, cfg.Kafka.Topics, log)

	reservationService := reservations.NewService(
		&reservationdb.DB{Bun: bunDB},
		eventStore,
		publisher,
		cfg.Kafka.Topics,
		qr.NewGenerator(cfg.Auth.QRSecret),
		log,
	)

	authHandler := auth_api.NewHandler(authService, log)
	eventHandler := event_api.NewHandler(eventService, log)
	reservationHandler := reservation_api.NewHandler(reservationService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := newRouter(authHandler, eventHandler, reservationHandler, authService, log)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Reservation Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Reservation Service shutdown complete")
	}
}
