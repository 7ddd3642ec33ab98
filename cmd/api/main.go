package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-upload/internal/adapters/eventbroker/nats"
	"geo-upload/internal/adapters/handlers/http/chi"
	uploadhandler "geo-upload/internal/adapters/handlers/http/chi/v1/upload"
	"geo-upload/internal/adapters/importer/geoserver"
	"geo-upload/internal/adapters/repository/postgres"
	"geo-upload/internal/adapters/session/bolt"
	"geo-upload/internal/adapters/session/redis"
	"geo-upload/internal/adapters/storage/disk"
	"geo-upload/internal/adapters/storage/minio"
	"geo-upload/internal/config"
	"geo-upload/internal/core/port"
	"geo-upload/internal/core/service/cleanup"
	"geo-upload/internal/core/service/upload"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// .env is optional, the environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//sessions
	sessionStore, closeSessions, err := initSessionStore(ctx, cfg.Session)
	if err != nil {
		logger.Error("failed to init session store", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logger.Error("failed to close session store", "error", err)
		}
	}()
	logger.Info("session store initialized", "backend", cfg.Session.Backend)

	//async runs
	var runs port.ImportRunPublisher
	if cfg.Upload.AsyncImport {
		publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to create NATS publisher", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close NATS publisher", "error", err)
			}
		}()
		runs = publisher
		logger.Info("NATS publisher initialized")
	}

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)

	importer := geoserver.NewClient(cfg.Importer, logger)
	uploadService := upload.NewUploadService(unitOfWork, sessionStore, importer, minioAdapter, runs, disk.NewSpaceProbe(), cfg.Upload, logger)
	cleanupService := cleanup.NewCleanupService(unitOfWork, minioAdapter, sessionStore, logger)

	//http
	uploadHandler := uploadhandler.NewUploadHandlerV1(uploadService, cfg.Upload, cfg.Session, cfg.Env.Env == "prod", logger)

	router := chi.NewRouter(logger, uploadHandler, cfg.Env.Env, chi.Limits{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodySize:    cfg.Upload.MaxUploadSize,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	if cfg.Upload.CleanupEvery > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			initCleanupTask(ctx, cleanupService, cfg.Upload.CleanupEvery, cfg.Upload.AbandonAfter, logger)
		}()
	}

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

// initSessionStore opens the configured session backend and returns its closer
func initSessionStore(ctx context.Context, cfg config.SessionConfig) (port.SessionStore, func() error, error) {
	switch cfg.Backend {
	case "bolt":
		store, err := bolt.NewSessionStore(cfg.BoltPath, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "redis":
		client := redis.NewClient(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return redis.NewSessionStore(client, cfg.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, abandonAfter time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every, "abandon_after", abandonAfter)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			now := time.Now()
			if err := service.CleanupAbandonedUploads(ctx, now.Add(-abandonAfter)); err != nil {
				logger.Error("failed to cleanup abandoned uploads", "error", err)
			}
			if err := service.CleanupExpiredSessions(ctx, now); err != nil {
				logger.Error("failed to cleanup expired sessions", "error", err)
			}
			logger.Info("cleanup task completed")
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
