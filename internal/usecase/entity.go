package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/exo/showcase/internal/asset"
)

// CreateEntity stores a new row with every asset field hydrated. Slots
// missing from refs get the kind default.
func (u Usecase) CreateEntity(ctx context.Context, r asset.Resource, name string, refs map[asset.Slot]asset.Ref) (Entity, error) {
	p, err := asset.Lookup(r)
	if err != nil {
		return Entity{}, err
	}
	for s := range refs {
		if _, err := p.Kind(s); err != nil {
			return Entity{}, err
		}
	}

	e := Entity{
		ID:       uuid.New(),
		Resource: r,
		Name:     strings.TrimSpace(name),
	}
	for _, k := range p.Kinds {
		ref := refs[k.Slot].OrDefault(k.Default)
		b, err := u.resolve(ctx, k, ref)
		if err != nil {
			return Entity{}, fmt.Errorf("hydrate %s: %w", k, err)
		}
		e.Assets = append(e.Assets, Asset{
			Slot:   k.Slot,
			Path:   ref,
			Blob:   b,
			Colors: u.palette(ctx, b),
		})
	}

	return u.repo.CreateEntity(ctx, e)
}

func (u Usecase) GetEntity(ctx context.Context, r asset.Resource, id uuid.UUID) (Entity, error) {
	if _, err := asset.Lookup(r); err != nil {
		return Entity{}, err
	}
	return u.repo.GetEntity(ctx, r, id)
}

// DeleteEntity removes the row together with its gallery.
func (u Usecase) DeleteEntity(ctx context.Context, r asset.Resource, id uuid.UUID) error {
	if _, err := asset.Lookup(r); err != nil {
		return err
	}
	return u.repo.DeleteEntity(ctx, r, id)
}
