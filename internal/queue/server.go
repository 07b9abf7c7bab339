package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/config"
	"github.com/exo/showcase/internal/database"
	"github.com/exo/showcase/internal/filestorage"
	"github.com/exo/showcase/internal/lock"
	"github.com/exo/showcase/internal/queue/handlers"
	"github.com/exo/showcase/internal/usecase"
)

// Server wraps asynq.Server for processing tasks
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// Worker represents a worker application with all its dependencies
type Worker struct {
	server *Server
	uc     usecase.Usecase
	redis  *redis.Client
	logger *slog.Logger
}

// NewWorker creates a fully configured worker with all dependencies
func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil, fmt.Errorf("%s is required for the worker", config.ENV_KEY_REDIS_HOST)
	}
	logger.InfoContext(ctx, "initializing worker dependencies")

	repo, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	primary, defaults, err := filestorage.Open(ctx, cfg)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}
	locator := asset.NewLocator(primary, asset.Roots{
		Virtual: cfg.Assets.VirtualRoot,
		Store:   cfg.Assets.StoreRoot,
	}, asset.WithDefaults(defaults))

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
	})

	// workers don't enqueue
	uc := usecase.New(repo, locator, lock.NewRedisLocker(rdb, cfg.LockTTL), nil,
		usecase.WithLogger(logger),
		usecase.WithServePrefix(cfg.Assets.ServePrefix),
		usecase.WithMaxUploadBytes(cfg.Assets.MaxUploadBytes),
	)

	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     addr,
			Password: cfg.Redis.Password,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   asynqLogger{logger},
			LogLevel: asynqLevel(cfg.LogLevel),
		},
	)

	mux := asynq.NewServeMux()
	h := handlers.NewHandlers(uc, logger)
	mux.HandleFunc(TypeHydrateAssets, h.HandleHydrateAssets)

	logger.InfoContext(ctx, "worker registered handlers", slog.Any("types", []string{TypeHydrateAssets}))

	return &Worker{
		server: &Server{
			asynqServer: asynqServer,
			mux:         mux,
		},
		uc:     uc,
		redis:  rdb,
		logger: logger,
	}, nil
}

// Start starts the worker server
func (w *Worker) Start() error {
	w.logger.Info("worker started")
	return w.server.asynqServer.Start(w.server.mux)
}

// Stop stops the worker server gracefully
func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.server.asynqServer.Shutdown()

	if err := w.redis.Close(); err != nil {
		w.logger.Error("error closing redis", slog.String("err", err.Error()))
	}
	if err := w.uc.Close(); err != nil {
		w.logger.Error("error closing database", slog.String("err", err.Error()))
	}
}
