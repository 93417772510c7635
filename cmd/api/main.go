package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/papertrade/api/internal/auth"
	"github.com/papertrade/api/internal/config"
	"github.com/papertrade/api/internal/database"
	httpServer "github.com/papertrade/api/internal/http"
	"github.com/papertrade/api/internal/ledger"
	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/market"
	"github.com/papertrade/api/internal/notify"
	"github.com/papertrade/api/internal/pricing"
	"github.com/papertrade/api/internal/ratelimit"
	"github.com/papertrade/api/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store_backend", cfg.Store.Backend,
	)

	ctx := context.Background()

	// Stores are chosen once, here; everything downstream is backend-agnostic.
	var (
		userRepo   user.Repository
		codeRepo   auth.CodeRepository
		ledgerRepo ledger.Repository
	)
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB, cfg.Store.Timeout)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() {
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("failed to disconnect mongo client", "error", err)
			}
		}()

		mongoUsers := user.NewMongoRepository(db, cfg.Store.Timeout)
		if err := mongoUsers.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}

		userRepo = mongoUsers
		codeRepo = auth.NewMongoCodeRepository(db, cfg.Store.Timeout)
		ledgerRepo = ledger.NewMongoRepository(db, cfg.Store.Timeout)
	case config.BackendMemory:
		userRepo = user.NewMemoryRepository()
		codeRepo = auth.NewMemoryCodeRepository()
		ledgerRepo = ledger.NewMemoryRepository()
	}

	var limiter ratelimit.Limiter = ratelimit.NewNoopLimiter()
	if cfg.Redis.RateLimitEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		defer redisClient.Close()

		limiter = ratelimit.NewRedisLimiter(redisClient)
	}

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.SMTP.Host != "" {
		sender = notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	}

	tokenService := auth.NewJWTService(cfg.Auth.TokenSecret)

	authService := auth.NewService(
		userRepo,
		codeRepo,
		tokenService,
		sender,
		logger,
		cfg.Auth.TokenTTL,
		cfg.Auth.CodeTTL,
	)
	authHandler := auth.NewHandler(authService, limiter)
	authMiddleware := auth.NewMiddleware(tokenService)

	engine := ledger.NewEngine(ledgerRepo, pricing.NewMockOracle(), logger)
	ledgerHandler := ledger.NewHandler(engine)
	marketHandler := market.NewHandler()

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, ledgerHandler, marketHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
