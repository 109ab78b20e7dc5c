package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/linkgate/internal/auth"
	"github.com/Totarae/linkgate/internal/cache"
	"github.com/Totarae/linkgate/internal/config"
	"github.com/Totarae/linkgate/internal/database"
	"github.com/Totarae/linkgate/internal/events"
	v2 "github.com/Totarae/linkgate/internal/grpc/v2"
	"github.com/Totarae/linkgate/internal/handlers"
	"github.com/Totarae/linkgate/internal/migrations"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/Totarae/linkgate/internal/redirect"
	"github.com/Totarae/linkgate/internal/router"
	"github.com/Totarae/linkgate/internal/service"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/Totarae/linkgate/internal/storage/postgres"
	"github.com/Totarae/linkgate/internal/storage/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

// run serves until ctx is cancelled, then drains connections and
// in-flight click recordings.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	opts := service.Options{
		Password: password.Params{
			Time:      cfg.ArgonTime,
			MemoryKiB: cfg.ArgonMemoryKiB,
			Threads:   cfg.ArgonThreads,
		},
		ClickTimeout: cfg.ClickTimeout,
	}
	if cfg.PasswordAttemptsRPS > 0 {
		opts.Limiter = redirect.NewTokenBucket(cfg.PasswordAttemptsRPS, cfg.PasswordAttemptsBurst)
	}
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer func() { _ = conn.Drain() }()
		opts.Publisher = events.NewNATS(conn, cfg.NATSSubject)
		logger.Info("Publishing link events", zap.String("subject", cfg.NATSSubject))
	}

	svc := service.NewLinkService(store, logger, opts)
	defer svc.Shutdown()

	handler := handlers.NewHandler(svc, cfg.BaseURL, logger)
	r := router.NewRouter(handler, auth.New(cfg.AuthSecret), router.Options{
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	}, logger)

	lis, err := net.Listen("tcp", cfg.ServerAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ServerAddress, err)
	}
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Сервер запущен", zap.String("address", lis.Addr().String()), zap.String("mode", cfg.Mode))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddress != "" {
		glis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			_ = srv.Close()
			return fmt.Errorf("listen %s: %w", cfg.GRPCAddress, err)
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(v2.LoggingInterceptor(logger)))
		v2.Register(grpcSrv, v2.NewGRPCServer(svc, cfg.BaseURL, logger))
		go func() {
			logger.Info("gRPC сервер запущен", zap.String("address", glis.Addr().String()))
			if err := grpcSrv.Serve(glis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not complete", zap.Error(err))
	}
	return runErr
}

// openStore builds the store for cfg.Mode and wraps it with the Redis
// lookup cache when REDIS_ADDR is set.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	var store storage.Store
	switch cfg.Mode {
	case config.ModeDatabase:
		if err := migrations.Up(cfg.DatabaseDSN, logger); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, database.Options{}, logger)
		if err != nil {
			return nil, err
		}
		store = postgres.New(db)
	case config.ModeSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = memory.New()
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = store.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Lookup cache enabled", zap.String("redis", cfg.RedisAddr), zap.Duration("ttl", cfg.RedisTTL))
	return cache.New(store, client, cfg.RedisTTL, logger), nil
}
