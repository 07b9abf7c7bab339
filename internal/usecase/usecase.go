package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/lock"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("concurrent modification")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

type Repository interface {
	Health() map[string]string
	Close() error

	CreateEntity(context.Context, Entity) (Entity, error)
	GetEntity(context.Context, asset.Resource, uuid.UUID) (Entity, error)
	DeleteEntity(context.Context, asset.Resource, uuid.UUID) error

	GetAsset(context.Context, asset.Resource, uuid.UUID, asset.Slot) (Asset, error)
	// SaveAsset reports whether a row was written. Without conditions a
	// missing row is ErrNotFound.
	SaveAsset(context.Context, asset.Resource, uuid.UUID, Asset, SaveAssetOption) (bool, error)
	ListPendingAssets(context.Context, asset.Resource, int) ([]PendingAsset, error)

	// GetGallery returns the gallery with its blobs and the row version.
	GetGallery(context.Context, asset.Resource, uuid.UUID) (asset.Gallery, int, error)
	GetGalleryItem(context.Context, asset.Resource, uuid.UUID, int) (asset.Item, error)
	// SaveGallery replaces the gallery when the row is still at version
	// and returns the next version. A stale version is ErrConflict.
	SaveGallery(context.Context, asset.Resource, uuid.UUID, asset.Gallery, int) (int, error)
}

// Queue hands batch work to the worker process.
type Queue interface {
	EnqueueHydrate(ctx context.Context, resource string, limit int) error
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = l
	}
}

func WithServePrefix(prefix string) Option {
	return func(u *Usecase) {
		u.paths = asset.Paths{Prefix: prefix}
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(u *Usecase) {
		u.sync = asset.Synchronizer{MaxBytes: n}
	}
}

// New wires the asset operations. locker may be nil for a process-local
// lock and queue may be nil when no worker is reachable.
func New(repo Repository, locator *asset.Locator, locker lock.Locker, queue Queue, opts ...Option) Usecase {
	u := Usecase{
		repo:    repo,
		locator: locator,
		locker:  locker,
		queue:   queue,
		paths:   asset.Paths{Prefix: "/api/v1"},
		sync:    asset.Synchronizer{MaxBytes: asset.DefaultMaxUploadBytes},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&u)
	}
	if u.locker == nil {
		u.locker = lock.NewLocalLocker()
	}
	u.metrics = newMetrics()
	return u
}

type Usecase struct {
	repo    Repository
	locator *asset.Locator
	locker  lock.Locker
	queue   Queue
	paths   asset.Paths
	sync    asset.Synchronizer
	logger  *slog.Logger
	metrics *metrics
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}

// Paths returns the builder of served asset paths.
func (u Usecase) Paths() asset.Paths {
	return u.paths
}
