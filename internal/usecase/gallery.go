package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/exo/showcase/internal/asset"
)

func galleryProfile(r asset.Resource) (asset.Profile, error) {
	p, err := asset.Lookup(r)
	if err != nil {
		return asset.Profile{}, err
	}
	if !p.Gallery {
		return asset.Profile{}, fmt.Errorf("%w: %s has no gallery", asset.ErrUnknownKind, r)
	}
	return p, nil
}

// mutateGallery runs a read-modify-write of one gallery under the row lock,
// saving only if the row version is unchanged. change returns false when
// there is nothing to save.
func (u Usecase) mutateGallery(ctx context.Context, r asset.Resource, id uuid.UUID, change func(asset.Gallery) (asset.Gallery, bool, error)) (Entity, error) {
	if _, err := galleryProfile(r); err != nil {
		return Entity{}, err
	}

	unlock, err := u.locker.Lock(ctx, fmt.Sprintf("gallery:%s:%s", r, id))
	if err != nil {
		return Entity{}, fmt.Errorf("lock gallery: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			u.logger.WarnContext(ctx, "gallery unlock failed",
				slog.String("resource", string(r)),
				slog.String("id", id.String()),
				slog.String("err", err.Error()))
		}
	}()

	current, version, err := u.repo.GetGallery(ctx, r, id)
	if err != nil {
		return Entity{}, err
	}

	next, changed, err := change(current)
	if err != nil {
		return Entity{}, err
	}
	if changed {
		if _, err := u.repo.SaveGallery(ctx, r, id, next, version); err != nil {
			if errors.Is(err, ErrConflict) {
				u.metrics.conflicts.Add(ctx, 1, kindAttrs(r, "gallery"))
			}
			return Entity{}, err
		}
	}
	return u.repo.GetEntity(ctx, r, id)
}

// SyncGallery removes the items served at del, appends add and re-indexes
// every served path. A malformed payload rejects the whole call.
func (u Usecase) SyncGallery(ctx context.Context, r asset.Resource, id uuid.UUID, del []asset.Ref, add [][]byte) (Entity, error) {
	served := u.paths.Gallery(r, id.String())
	return u.mutateGallery(ctx, r, id, func(current asset.Gallery) (asset.Gallery, bool, error) {
		next, err := u.sync.Sync(current, del, add, served)
		if err != nil {
			return asset.Gallery{}, false, err
		}
		return next, true, nil
	})
}

// RemoveGalleryItem drops the item at index and re-indexes the rest. An
// index out of range leaves the gallery untouched.
func (u Usecase) RemoveGalleryItem(ctx context.Context, r asset.Resource, id uuid.UUID, index int) (Entity, error) {
	served := u.paths.Gallery(r, id.String())
	return u.mutateGallery(ctx, r, id, func(current asset.Gallery) (asset.Gallery, bool, error) {
		next, ok := u.sync.RemoveAt(current, index, served)
		return next, ok, nil
	})
}

// AddGalleryAsset appends the content of a configured reference, falling
// back to the default of the entity's primary asset.
func (u Usecase) AddGalleryAsset(ctx context.Context, r asset.Resource, id uuid.UUID, ref asset.Ref) (Entity, error) {
	p, err := galleryProfile(r)
	if err != nil {
		return Entity{}, err
	}
	b, err := u.resolve(ctx, p.Primary(), ref)
	if err != nil {
		return Entity{}, err
	}
	return u.SyncGallery(ctx, r, id, nil, [][]byte{b})
}

func (u Usecase) GetGalleryItem(ctx context.Context, r asset.Resource, id uuid.UUID, index int) ([]byte, error) {
	if _, err := galleryProfile(r); err != nil {
		return nil, err
	}
	it, err := u.repo.GetGalleryItem(ctx, r, id, index)
	if err != nil {
		return nil, err
	}
	if len(it.Blob) == 0 {
		return nil, fmt.Errorf("%w: %s %s gallery item %d is empty", ErrNotFound, r, id, index)
	}
	return it.Blob, nil
}

func (u Usecase) ListGalleryPaths(ctx context.Context, r asset.Resource, id uuid.UUID) ([]asset.Ref, error) {
	if _, err := galleryProfile(r); err != nil {
		return nil, err
	}
	e, err := u.repo.GetEntity(ctx, r, id)
	if err != nil {
		return nil, err
	}
	return e.Gallery.Refs(), nil
}
