package server

import (
	"io"

	"github.com/labstack/echo/v4"

	"github.com/exo/showcase/internal/asset"
)

type AssetRequest struct {
	Resource string `param:"resource" validate:"required,oneof=projects users posts certificates courses technologies"`
	ID       string `param:"id" validate:"required,uuid"`
	Slot     string `param:"slot" validate:"required,oneof=header icon pfp cover image"`
}

func (r AssetRequest) entity() EntityRequest {
	return EntityRequest{Resource: r.Resource, ID: r.ID}
}

func (s *Server) GetAsset(ctx echo.Context) error {
	var req AssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	b, err := s.server.GetAsset(ctx.Request().Context(), asset.Resource(req.Resource), req.entity().id(), asset.Slot(req.Slot))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return blob(ctx, b)
}

// UploadAsset reads the multipart field "file".
func (s *Server) UploadAsset(ctx echo.Context) error {
	var req AssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}

	e, err := s.server.UploadAsset(ctx.Request().Context(), asset.Resource(req.Resource), req.entity().id(), asset.Slot(req.Slot), b)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

type SetAssetPathRequest struct {
	AssetRequest
	Path string `json:"path" validate:"omitempty,startswith=/"`
}

func (s *Server) SetAssetPath(ctx echo.Context) error {
	var req SetAssetPathRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	e, err := s.server.SetAssetPath(ctx.Request().Context(), asset.Resource(req.Resource), req.entity().id(), asset.Slot(req.Slot), asset.Ref(req.Path))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

func (s *Server) ResetAsset(ctx echo.Context) error {
	var req AssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	e, err := s.server.ResetAsset(ctx.Request().Context(), asset.Resource(req.Resource), req.entity().id(), asset.Slot(req.Slot))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}
