package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/exo/showcase/internal/asset"
)

type row struct {
	entity  Entity
	assets  map[asset.Slot]Asset
	gallery []asset.Item
}

// memRepo keeps rows in memory with the same conditional write rules as
// the database.
type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*row

	saveAssetErr error
	saveAssets   int
	// beforeSaveGallery runs with the lock released, before the version check.
	beforeSaveGallery func()
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uuid.UUID]*row)}
}

func (m *memRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (m *memRepo) Close() error              { return nil }

func (m *memRepo) get(r asset.Resource, id uuid.UUID) (*row, error) {
	rw, ok := m.rows[id]
	if !ok || rw.entity.Resource != r {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, r, id)
	}
	return rw, nil
}

// put seeds a row directly.
func (m *memRepo) put(r asset.Resource, assets ...Asset) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	rw := &row{
		entity: Entity{ID: id, Resource: r},
		assets: make(map[asset.Slot]Asset),
	}
	for _, a := range assets {
		rw.assets[a.Slot] = a
	}
	m.rows[id] = rw
	return id
}

func (m *memRepo) putGallery(r asset.Resource, id uuid.UUID, items ...asset.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].gallery = append([]asset.Item(nil), items...)
}

func (m *memRepo) CreateEntity(_ context.Context, e Entity) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw := &row{entity: e, assets: make(map[asset.Slot]Asset)}
	for _, a := range e.Assets {
		rw.assets[a.Slot] = a
	}
	m.rows[e.ID] = rw
	return m.view(rw), nil
}

func (m *memRepo) view(rw *row) Entity {
	e := rw.entity
	e.Assets = nil
	slots := make([]string, 0, len(rw.assets))
	for s := range rw.assets {
		slots = append(slots, string(s))
	}
	sort.Strings(slots)
	for _, s := range slots {
		a := rw.assets[asset.Slot(s)]
		a.Blob = nil
		e.Assets = append(e.Assets, a)
	}
	items := make([]asset.Item, len(rw.gallery))
	for i, it := range rw.gallery {
		items[i] = asset.Item{Ref: it.Ref}
	}
	e.Gallery = asset.GalleryOf(items...)
	return e
}

func (m *memRepo) GetEntity(_ context.Context, r asset.Resource, id uuid.UUID) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw, err := m.get(r, id)
	if err != nil {
		return Entity{}, err
	}
	return m.view(rw), nil
}

func (m *memRepo) DeleteEntity(_ context.Context, r asset.Resource, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(r, id); err != nil {
		return err
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) GetAsset(_ context.Context, r asset.Resource, id uuid.UUID, s asset.Slot) (Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw, err := m.get(r, id)
	if err != nil {
		return Asset{}, err
	}
	a := rw.assets[s]
	a.Slot = s
	a.Blob = append([]byte(nil), a.Blob...)
	return a, nil
}

func (m *memRepo) SaveAsset(_ context.Context, r asset.Resource, id uuid.UUID, a Asset, opt SaveAssetOption) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveAssets++
	if m.saveAssetErr != nil {
		return false, m.saveAssetErr
	}
	rw, err := m.get(r, id)
	if err != nil {
		if opt.IfPath != nil || opt.IfUncached {
			return false, nil
		}
		return false, err
	}
	cur := rw.assets[a.Slot]
	if opt.IfPath != nil && cur.Path != *opt.IfPath {
		return false, nil
	}
	if opt.IfUncached && len(cur.Blob) > 0 {
		return false, nil
	}
	a.Blob = append([]byte(nil), a.Blob...)
	rw.assets[a.Slot] = a
	return true, nil
}

func (m *memRepo) ListPendingAssets(_ context.Context, r asset.Resource, limit int) ([]PendingAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PendingAsset
	for id, rw := range m.rows {
		if rw.entity.Resource != r {
			continue
		}
		for s, a := range rw.assets {
			if !a.Path.IsZero() && len(a.Blob) == 0 {
				out = append(out, PendingAsset{ID: id, Slot: s, Path: a.Path})
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) GetGallery(_ context.Context, r asset.Resource, id uuid.UUID) (asset.Gallery, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw, err := m.get(r, id)
	if err != nil {
		return asset.Gallery{}, 0, err
	}
	return asset.GalleryOf(rw.gallery...), rw.entity.GalleryVersion, nil
}

func (m *memRepo) GetGalleryItem(_ context.Context, r asset.Resource, id uuid.UUID, i int) (asset.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw, err := m.get(r, id)
	if err != nil {
		return asset.Item{}, err
	}
	if i < 0 || i >= len(rw.gallery) {
		return asset.Item{}, fmt.Errorf("%w: gallery item %d", ErrNotFound, i)
	}
	return rw.gallery[i], nil
}

func (m *memRepo) SaveGallery(_ context.Context, r asset.Resource, id uuid.UUID, g asset.Gallery, version int) (int, error) {
	if m.beforeSaveGallery != nil {
		m.beforeSaveGallery()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rw, err := m.get(r, id)
	if err != nil {
		return 0, err
	}
	if rw.entity.GalleryVersion != version {
		return 0, ErrConflict
	}
	rw.gallery = g.Items()
	rw.entity.GalleryVersion++
	return rw.entity.GalleryVersion, nil
}

// bump simulates a gallery write by another process.
func (m *memRepo) bump(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].entity.GalleryVersion++
}
