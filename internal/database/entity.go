package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

func blobColumns(p asset.Profile) []string {
	cols := make([]string, 0, len(p.Kinds))
	for _, k := range p.Kinds {
		cols = append(cols, assetColumn(k.Slot, "blob"))
	}
	return cols
}

func unhydrated(s asset.Slot) string {
	blob := assetColumn(s, "blob")
	return fmt.Sprintf("(%s IS NULL OR octet_length(%s) = 0)", blob, blob)
}

func (s *service) CreateEntity(ctx context.Context, e usecase.Entity) (usecase.Entity, error) {
	o, p, err := newOwner(e.Resource)
	if err != nil {
		return usecase.Entity{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	*o.base() = Base{ID: e.ID, Name: e.Name}

	cols := o.columns()
	for _, a := range e.Assets {
		c, ok := cols[a.Slot]
		if !ok {
			return usecase.Entity{}, fmt.Errorf("%w: %s has no %q asset", asset.ErrUnknownKind, e.Resource, a.Slot)
		}
		c.Path = string(a.Path)
		c.Blob = a.Blob
		if len(a.Colors) > 0 {
			c.Colors = datatypes.JSON(a.Colors)
		}
	}

	err = s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(o).Error
	if err != nil {
		return usecase.Entity{}, err
	}

	created := convertToUsecase(e.Resource, p, o, nil)
	for i := range created.Assets {
		created.Assets[i].Blob = nil
	}
	return created, nil
}

// GetEntity loads the row without blobs and the gallery references in order.
func (s *service) GetEntity(ctx context.Context, r asset.Resource, id uuid.UUID) (usecase.Entity, error) {
	o, p, err := newOwner(r)
	if err != nil {
		return usecase.Entity{}, err
	}

	err = s.db.WithContext(ctx).Omit(blobColumns(p)...).Where("id = ?", id).Take(o).Error
	if err != nil {
		return usecase.Entity{}, notFound(err, "%s %s", r, id)
	}

	var items []GalleryItem
	if p.Gallery {
		err = s.db.WithContext(ctx).
			Select("position", "path").
			Where("owner_type = ? AND owner_id = ?", string(r), id).
			Order("position ASC").
			Find(&items).
			Error
		if err != nil {
			return usecase.Entity{}, err
		}
	}

	return convertToUsecase(r, p, o, items), nil
}

// DeleteEntity hard deletes the row and its gallery items in one transaction.
func (s *service) DeleteEntity(ctx context.Context, r asset.Resource, id uuid.UUID) error {
	o, _, err := newOwner(r)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("owner_type = ? AND owner_id = ?", string(r), id).Delete(&GalleryItem{}).Error
		if err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(o)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s %s", usecase.ErrNotFound, r, id)
		}
		return nil
	})
}

func (s *service) GetAsset(ctx context.Context, r asset.Resource, id uuid.UUID, slot asset.Slot) (usecase.Asset, error) {
	o, _, err := newOwner(r)
	if err != nil {
		return usecase.Asset{}, err
	}
	c, ok := o.columns()[slot]
	if !ok {
		return usecase.Asset{}, fmt.Errorf("%w: %s has no %q asset", asset.ErrUnknownKind, r, slot)
	}

	err = s.db.WithContext(ctx).
		Select("id", assetColumn(slot, "path"), assetColumn(slot, "blob"), assetColumn(slot, "colors")).
		Where("id = ?", id).
		Take(o).
		Error
	if err != nil {
		return usecase.Asset{}, notFound(err, "%s %s", r, id)
	}

	return usecase.Asset{
		Slot:   slot,
		Path:   asset.Ref(c.Path),
		Blob:   c.Blob,
		Colors: []byte(c.Colors),
	}, nil
}

func (s *service) SaveAsset(ctx context.Context, r asset.Resource, id uuid.UUID, a usecase.Asset, opt usecase.SaveAssetOption) (bool, error) {
	o, _, err := newOwner(r)
	if err != nil {
		return false, err
	}
	if _, ok := o.columns()[a.Slot]; !ok {
		return false, fmt.Errorf("%w: %s has no %q asset", asset.ErrUnknownKind, r, a.Slot)
	}

	db := s.db.WithContext(ctx).Table(o.TableName()).Where("id = ?", id)
	conditional := opt.IfPath != nil || opt.IfUncached
	if opt.IfPath != nil {
		db = db.Where(assetColumn(a.Slot, "path")+" = ?", string(*opt.IfPath))
	}
	if opt.IfUncached {
		db = db.Where(unhydrated(a.Slot))
	}

	var colors any
	if len(a.Colors) > 0 {
		colors = datatypes.JSON(a.Colors)
	}
	res := db.Updates(map[string]any{
		assetColumn(a.Slot, "path"):   string(a.Path),
		assetColumn(a.Slot, "blob"):   a.Blob,
		assetColumn(a.Slot, "colors"): colors,
		"updated_at":                  time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		if conditional {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s %s", usecase.ErrNotFound, r, id)
	}
	return true, nil
}

type pendingRow struct {
	ID   uuid.UUID
	Path string
}

// ListPendingAssets returns up to limit fields of r with a reference but
// no blob. A limit of zero lists all of them.
func (s *service) ListPendingAssets(ctx context.Context, r asset.Resource, limit int) ([]usecase.PendingAsset, error) {
	o, p, err := newOwner(r)
	if err != nil {
		return nil, err
	}

	var pending []usecase.PendingAsset
	for _, k := range p.Kinds {
		path := assetColumn(k.Slot, "path")
		db := s.db.WithContext(ctx).
			Table(o.TableName()).
			Select("id", path+" AS path").
			Where(path + " <> ''").
			Where(unhydrated(k.Slot)).
			Order("created_at ASC")
		if limit > 0 {
			db = db.Limit(limit - len(pending))
		}

		var rows []pendingRow
		if err := db.Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			pending = append(pending, usecase.PendingAsset{
				ID:   row.ID,
				Slot: k.Slot,
				Path: asset.Ref(row.Path),
			})
		}
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}
