package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/config"
	"github.com/exo/showcase/internal/database"
	"github.com/exo/showcase/internal/filestorage"
	"github.com/exo/showcase/internal/lock"
	"github.com/exo/showcase/internal/queue"
	"github.com/exo/showcase/internal/telemetry"
	"github.com/exo/showcase/internal/usecase"
)

// Service is the asset surface the handlers drive.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	Paths() asset.Paths

	CreateEntity(context.Context, asset.Resource, string, map[asset.Slot]asset.Ref) (usecase.Entity, error)
	GetEntity(context.Context, asset.Resource, uuid.UUID) (usecase.Entity, error)
	DeleteEntity(context.Context, asset.Resource, uuid.UUID) error

	GetAsset(context.Context, asset.Resource, uuid.UUID, asset.Slot) ([]byte, error)
	UploadAsset(context.Context, asset.Resource, uuid.UUID, asset.Slot, []byte) (usecase.Entity, error)
	SetAssetPath(context.Context, asset.Resource, uuid.UUID, asset.Slot, asset.Ref) (usecase.Entity, error)
	ResetAsset(context.Context, asset.Resource, uuid.UUID, asset.Slot) (usecase.Entity, error)

	SyncGallery(context.Context, asset.Resource, uuid.UUID, []asset.Ref, [][]byte) (usecase.Entity, error)
	AddGalleryAsset(context.Context, asset.Resource, uuid.UUID, asset.Ref) (usecase.Entity, error)
	RemoveGalleryItem(context.Context, asset.Resource, uuid.UUID, int) (usecase.Entity, error)
	GetGalleryItem(context.Context, asset.Resource, uuid.UUID, int) ([]byte, error)
	ListGalleryPaths(context.Context, asset.Resource, uuid.UUID) ([]asset.Ref, error)

	RequestHydration(context.Context, asset.Resource, int) error
}

type Server struct {
	server    Service
	validator *validator.Validate
	logger    *slog.Logger
}

func NewServer(sv Service, logger *slog.Logger) *Server {
	return &Server{
		server:    sv,
		validator: validator.New(),
		logger:    logger,
	}
}

// App owns the HTTP server and everything it needs to shut down.
type App struct {
	server   *http.Server
	service  Service
	closers  []func() error
	shutdown func(context.Context) error
	logger   *slog.Logger
}

// NewApp wires the repository, asset stores, lock and queue from cfg.
// Redis is optional: without it gallery locks are process local and
// hydration requests are refused.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	shutdown, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	repo, err := database.New(cfg, logger)
	if err != nil {
		shutdown(ctx)
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	primary, defaults, err := filestorage.Open(ctx, cfg)
	if err != nil {
		repo.Close()
		shutdown(ctx)
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}
	locator := asset.NewLocator(primary, asset.Roots{
		Virtual: cfg.Assets.VirtualRoot,
		Store:   cfg.Assets.StoreRoot,
	}, asset.WithDefaults(defaults))

	var (
		locker  lock.Locker
		q       usecase.Queue
		closers []func() error
	)
	if addr := cfg.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
		})
		qc := queue.NewClient(addr, cfg.Redis.Password, logger)
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
		q = qc
		closers = append(closers, qc.Close, rdb.Close)
	} else {
		logger.WarnContext(ctx, "redis not configured, using process local locks")
	}

	uc := usecase.New(repo, locator, locker, q,
		usecase.WithLogger(logger),
		usecase.WithServePrefix(cfg.Assets.ServePrefix),
		usecase.WithMaxUploadBytes(cfg.Assets.MaxUploadBytes),
	)

	s := NewServer(uc, logger)
	return &App{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      s.RegisterRoutes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		service:  uc,
		closers:  closers,
		shutdown: shutdown,
		logger:   logger,
	}, nil
}

func (a *App) Addr() string {
	return a.server.Addr
}

func (a *App) ListenAndServe() error {
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then releases redis, the database
// and the telemetry exporters.
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.server.Shutdown(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	errs = append(errs, a.service.Close(), a.shutdown(ctx))
	return errors.Join(errs...)
}
