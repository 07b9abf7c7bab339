package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

func (s *service) GetGallery(ctx context.Context, r asset.Resource, id uuid.UUID) (asset.Gallery, int, error) {
	o, _, err := newOwner(r)
	if err != nil {
		return asset.Gallery{}, 0, err
	}

	err = s.db.WithContext(ctx).Select("id", "gallery_version").Where("id = ?", id).Take(o).Error
	if err != nil {
		return asset.Gallery{}, 0, notFound(err, "%s %s", r, id)
	}

	var items []GalleryItem
	err = s.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", string(r), id).
		Order("position ASC").
		Find(&items).
		Error
	if err != nil {
		return asset.Gallery{}, 0, err
	}

	gi := make([]asset.Item, len(items))
	for i, it := range items {
		gi[i] = asset.Item{Ref: asset.Ref(it.Path), Blob: it.Blob}
	}
	return asset.GalleryOf(gi...), o.base().GalleryVersion, nil
}

func (s *service) GetGalleryItem(ctx context.Context, r asset.Resource, id uuid.UUID, index int) (asset.Item, error) {
	var it GalleryItem
	err := s.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND position = ?", string(r), id, index).
		Take(&it).
		Error
	if err != nil {
		return asset.Item{}, notFound(err, "%s %s gallery item %d", r, id, index)
	}
	return asset.Item{Ref: asset.Ref(it.Path), Blob: it.Blob}, nil
}

// SaveGallery swaps the whole gallery in one transaction, guarded by a
// compare-and-swap on gallery_version.
func (s *service) SaveGallery(ctx context.Context, r asset.Resource, id uuid.UUID, g asset.Gallery, version int) (int, error) {
	o, _, err := newOwner(r)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(o.TableName()).
			Where("id = ? AND gallery_version = ?", id, version).
			Updates(map[string]any{
				"gallery_version": gorm.Expr("gallery_version + 1"),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Table(o.TableName()).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s %s", usecase.ErrNotFound, r, id)
			}
			return fmt.Errorf("%w: %s %s gallery is past version %d", usecase.ErrConflict, r, id, version)
		}

		err := tx.Where("owner_type = ? AND owner_id = ?", string(r), id).Delete(&GalleryItem{}).Error
		if err != nil {
			return err
		}
		if g.Len() == 0 {
			return nil
		}

		items := make([]GalleryItem, 0, g.Len())
		for i, it := range g.Items() {
			items = append(items, GalleryItem{
				ID:        uuid.New(),
				OwnerType: string(r),
				OwnerID:   id,
				Position:  i,
				Path:      string(it.Ref),
				Blob:      it.Blob,
			})
		}
		return tx.CreateInBatches(items, 20).Error
	})
	if err != nil {
		return 0, err
	}
	return version + 1, nil
}
