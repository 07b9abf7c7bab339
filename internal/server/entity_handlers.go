package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

type Entity struct {
	ID             string   `json:"id"`
	Resource       string   `json:"resource"`
	Name           string   `json:"name,omitempty"`
	Assets         []Asset  `json:"assets"`
	Gallery        []string `json:"gallery,omitempty"`
	GalleryVersion int      `json:"gallery_version,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

type Asset struct {
	Slot   string          `json:"slot"`
	Path   string          `json:"path"`
	URL    string          `json:"url"`
	Colors json.RawMessage `json:"colors,omitempty"`
}

func (s *Server) toEntity(e usecase.Entity) Entity {
	paths := s.server.Paths()
	id := e.ID.String()

	assets := make([]Asset, 0, len(e.Assets))
	for _, a := range e.Assets {
		var url string
		if k, err := asset.LookupKind(e.Resource, a.Slot); err == nil {
			url = paths.Asset(k, id).String()
		}
		var colors json.RawMessage
		if json.Valid(a.Colors) {
			colors = json.RawMessage(a.Colors)
		}
		assets = append(assets, Asset{
			Slot:   string(a.Slot),
			Path:   a.Path.String(),
			URL:    url,
			Colors: colors,
		})
	}

	var gallery []string
	for _, ref := range e.Gallery.Refs() {
		gallery = append(gallery, ref.String())
	}

	out := Entity{
		ID:             id,
		Resource:       string(e.Resource),
		Name:           e.Name,
		Assets:         assets,
		Gallery:        gallery,
		GalleryVersion: e.GalleryVersion,
	}
	if !e.CreatedAt.IsZero() {
		out.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		out.UpdatedAt = e.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

type CreateEntityRequest struct {
	Resource string            `param:"resource" validate:"required,oneof=projects users posts certificates courses technologies"`
	Name     string            `json:"name" validate:"required,max=255"`
	Assets   map[string]string `json:"assets" validate:"omitempty,dive,keys,oneof=header icon pfp cover image,endkeys"`
}

func (s *Server) CreateEntity(ctx echo.Context) error {
	var req CreateEntityRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	refs := make(map[asset.Slot]asset.Ref, len(req.Assets))
	for slot, path := range req.Assets {
		refs[asset.Slot(slot)] = asset.Ref(path)
	}

	e, err := s.server.CreateEntity(ctx.Request().Context(), asset.Resource(req.Resource), req.Name, refs)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(201, Res{Data: s.toEntity(e)})
}

type EntityRequest struct {
	Resource string `param:"resource" validate:"required,oneof=projects users posts certificates courses technologies"`
	ID       string `param:"id" validate:"required,uuid"`
}

func (r EntityRequest) id() uuid.UUID {
	id, _ := uuid.Parse(r.ID)
	return id
}

func (s *Server) GetEntity(ctx echo.Context) error {
	var req EntityRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	e, err := s.server.GetEntity(ctx.Request().Context(), asset.Resource(req.Resource), req.id())
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

func (s *Server) DeleteEntity(ctx echo.Context) error {
	var req EntityRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.DeleteEntity(ctx.Request().Context(), asset.Resource(req.Resource), req.id()); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(204)
}
