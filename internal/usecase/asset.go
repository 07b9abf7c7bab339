package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exo/showcase/internal/asset"
)

// Asset is one single-asset field of an entity as persisted.
type Asset struct {
	Slot   asset.Slot
	Path   asset.Ref
	Blob   []byte
	Colors []byte
}

// Entity is the asset-owning part of a row. Blobs are not loaded by
// GetEntity; gallery items carry their references only.
type Entity struct {
	ID             uuid.UUID
	Resource       asset.Resource
	Name           string
	Assets         []Asset
	Gallery        asset.Gallery
	GalleryVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Entity) Asset(s asset.Slot) (Asset, bool) {
	for _, a := range e.Assets {
		if a.Slot == s {
			return a, true
		}
	}
	return Asset{}, false
}

type SaveAssetOption struct {
	// IfPath skips the write unless the stored reference still equals it.
	IfPath *asset.Ref
	// IfUncached skips the write when a blob is already stored.
	IfUncached bool
}

type PendingAsset struct {
	ID   uuid.UUID
	Slot asset.Slot
	Path asset.Ref
}

func (u Usecase) resolve(ctx context.Context, k asset.Kind, ref asset.Ref) ([]byte, error) {
	r, err := u.locator.ResolveKind(ctx, k, ref)
	if err != nil {
		return nil, err
	}
	u.metrics.hydrated(ctx, k.Resource, k.Slot, r.Fallback)
	if r.Fallback {
		u.logger.DebugContext(ctx, "asset fallback",
			slog.String("kind", k.String()),
			slog.String("ref", ref.String()),
			slog.String("default", k.Default.String()))
	}
	return r.Bytes, nil
}

// GetAsset returns the blob of one asset field, hydrating and persisting it
// on a cache miss. A field without reference or bytes is ErrNotFound.
func (u Usecase) GetAsset(ctx context.Context, r asset.Resource, id uuid.UUID, slot asset.Slot) ([]byte, error) {
	k, err := asset.LookupKind(r, slot)
	if err != nil {
		return nil, err
	}
	a, err := u.repo.GetAsset(ctx, r, id, slot)
	if err != nil {
		return nil, err
	}

	f := asset.Field{Ref: a.Path, Blob: a.Blob}
	next, hydrated, err := f.Hydrate(ctx, func(ctx context.Context, ref asset.Ref) ([]byte, error) {
		return u.resolve(ctx, k, ref)
	})
	if err != nil {
		return nil, err
	}
	if !next.Cached() {
		return nil, fmt.Errorf("%w: %s %s has no content", ErrNotFound, k, id)
	}
	if hydrated {
		u.writeBack(ctx, k, id, Asset{Slot: slot, Path: a.Path, Blob: next.Blob})
	}
	return next.Blob, nil
}

// writeBack persists a lazily hydrated blob. It only fills a still empty
// field holding the same reference, so repeated or concurrent hydration is
// harmless and a newer upload is never overwritten. Failures are logged.
func (u Usecase) writeBack(ctx context.Context, k asset.Kind, id uuid.UUID, a Asset) {
	a.Colors = u.palette(ctx, a.Blob)
	path := a.Path
	_, err := u.repo.SaveAsset(ctx, k.Resource, id, a, SaveAssetOption{IfPath: &path, IfUncached: true})
	if err != nil {
		u.metrics.writeBacks.Add(ctx, 1, kindAttrs(k.Resource, k.Slot))
		u.logger.WarnContext(ctx, "asset write-back failed",
			slog.String("resource", string(k.Resource)),
			slog.String("id", id.String()),
			slog.String("slot", string(k.Slot)),
			slog.String("err", err.Error()))
	}
}

// SetAssetPath points the field at a configured reference and replaces the
// blob in the same write. An empty reference means the kind default.
func (u Usecase) SetAssetPath(ctx context.Context, r asset.Resource, id uuid.UUID, slot asset.Slot, ref asset.Ref) (Entity, error) {
	k, err := asset.LookupKind(r, slot)
	if err != nil {
		return Entity{}, err
	}
	ref = ref.OrDefault(k.Default)

	b, err := u.resolve(ctx, k, ref)
	if err != nil {
		return Entity{}, err
	}
	return u.saveAsset(ctx, k, id, Asset{Slot: slot, Path: ref, Blob: b})
}

// UploadAsset stores b as the blob of the field. The reference becomes the
// served path of the field.
func (u Usecase) UploadAsset(ctx context.Context, r asset.Resource, id uuid.UUID, slot asset.Slot, b []byte) (Entity, error) {
	k, err := asset.LookupKind(r, slot)
	if err != nil {
		return Entity{}, err
	}
	if err := asset.ValidateUpload(b, u.sync.MaxBytes); err != nil {
		return Entity{}, err
	}
	return u.saveAsset(ctx, k, id, Asset{
		Slot: slot,
		Path: u.paths.Asset(k, id.String()),
		Blob: append([]byte(nil), b...),
	})
}

// ResetAsset restores the kind default.
func (u Usecase) ResetAsset(ctx context.Context, r asset.Resource, id uuid.UUID, slot asset.Slot) (Entity, error) {
	k, err := asset.LookupKind(r, slot)
	if err != nil {
		return Entity{}, err
	}
	return u.SetAssetPath(ctx, r, id, slot, k.Default)
}

func (u Usecase) saveAsset(ctx context.Context, k asset.Kind, id uuid.UUID, a Asset) (Entity, error) {
	a.Colors = u.palette(ctx, a.Blob)
	if _, err := u.repo.SaveAsset(ctx, k.Resource, id, a, SaveAssetOption{}); err != nil {
		return Entity{}, err
	}
	return u.repo.GetEntity(ctx, k.Resource, id)
}
