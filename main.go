package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"friendship-service/internal/config"
	"friendship-service/internal/db"
	grpcsvc "friendship-service/internal/grpc"
	"friendship-service/internal/handlers"
	"friendship-service/internal/logger"
	"friendship-service/internal/metrics"
	"friendship-service/internal/middleware"
	"friendship-service/internal/models"
	"friendship-service/internal/observability"
	"friendship-service/internal/rabbitmq"
	"friendship-service/internal/repositories"
	"friendship-service/internal/services"
	"friendship-service/internal/telemetry"
)

func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.LogLevel).With("service", cfg.ServiceName, "environment", cfg.Environment)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	observability.InitMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterFriendMetrics()

	publisher := rabbitmq.NewPublisherOrNoop(cfg.AMQPURL, cfg.EventsExchange, log)
	defer publisher.Close()
	auditPublisher := rabbitmq.NewPublisherOrNoop(cfg.AMQPURL, cfg.LogsExchange, log)
	defer auditPublisher.Close()

	telemetryCfg := telemetry.Config{Environment: cfg.Environment, ServiceName: cfg.ServiceName}
	events := telemetry.NewEventEmitter(publisher, telemetryCfg, log)
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, telemetryCfg, log)

	userService := services.NewUserService(stores.users, stores.friends, stores.presence)
	friendService := services.NewFriendService(stores.users, stores.friends, stores.presence, events)
	presenceService := services.NewPresenceService(stores.users, stores.friends, stores.presence, events)

	if _, err := grpcsvc.StartGRPCServer(ctx, cfg.GRPCAddr, grpcsvc.NewFriendGraphServer(friendService, presenceService), log); err != nil {
		log.Error("failed to start gRPC server", "error", err)
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.Router{
		Users:    handlers.NewUserHandler(userService, friendService),
		Friends:  handlers.NewFriendHandler(friendService, auditEmitter),
		Presence: handlers.NewPresenceHandler(presenceService),
		Auth:     middleware.JWTAuth(cfg.JWTSecret),
		Logger:   log,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Engine(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "grpc_addr", cfg.GRPCAddr,
			"store", cfg.StoreBackend, "presence", cfg.PresenceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
}

type stores struct {
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	presence repositories.PresenceRepository
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (stores, func(), error) {
	var (
		s        stores
		closers  []func()
		memStore *repositories.MemoryStore
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		seed, err := loadSeedUsers(cfg.MemorySeedFile)
		if err != nil {
			return s, cleanup, err
		}
		memStore = repositories.NewMemoryStore(seed...)
		s.users, s.friends = memStore, memStore
		log.Warn("using in-memory store; state is lost on restart", "seed_users", len(seed))
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			return s, cleanup, err
		}
		closers = append(closers, func() { database.Close() })
		s.users = repositories.NewUserRepository(database)
		s.friends = repositories.NewFriendRepository(database)
		if cfg.PresenceBackend == config.BackendPostgres {
			s.presence = repositories.NewPresenceRepository(database)
		}
	}

	switch cfg.PresenceBackend {
	case config.BackendMemory:
		s.presence = memStore
	case config.BackendRedis:
		client, err := repositories.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisDB)
		if err != nil {
			cleanup()
			return s, func() {}, err
		}
		closers = append(closers, func() { client.Close() })
		s.presence = repositories.NewRedisPresenceRepository(client)
	}

	if s.presence == nil {
		cleanup()
		return s, func() {}, fmt.Errorf("presence backend %q is not available with store %q", cfg.PresenceBackend, cfg.StoreBackend)
	}
	return s, cleanup, nil
}

func loadSeedUsers(path string) ([]models.User, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return users, nil
}
