package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exo/showcase/internal/asset"
)

// GalleryItemRequest accepts any integer index. Out of range indexes are
// not-found on read and a no-op on removal.
type GalleryItemRequest struct {
	EntityRequest
	Index int `param:"index"`
}

func (s *Server) ListGalleryPaths(ctx echo.Context) error {
	var req EntityRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	refs, err := s.server.ListGalleryPaths(ctx.Request().Context(), asset.Resource(req.Resource), req.id())
	if err != nil {
		return errorJSON(ctx, err)
	}

	list := make([]string, 0, len(refs))
	for _, r := range refs {
		list = append(list, r.String())
	}
	return ctx.JSON(200, Res{Data: list})
}

func (s *Server) GetGalleryItem(ctx echo.Context) error {
	var req GalleryItemRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	b, err := s.server.GetGalleryItem(ctx.Request().Context(), asset.Resource(req.Resource), req.id(), req.Index)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return blob(ctx, b)
}

// SyncGallery applies one multipart submission: "delete" lists served
// paths to drop and "files" carries new images, both in order.
func (s *Server) SyncGallery(ctx echo.Context) error {
	var req EntityRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	form, err := ctx.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}

	var del []asset.Ref
	for _, key := range []string{"delete", "delete[]"} {
		for _, v := range ctx.Request().Form[key] {
			del = append(del, asset.Ref(v))
		}
	}

	var add [][]byte
	if form != nil {
		for _, key := range []string{"files", "files[]"} {
			for _, fh := range form.File[key] {
				b, err := readFile(fh)
				if err != nil {
					return ctx.JSON(400, map[string]string{"error": err.Error()})
				}
				add = append(add, b)
			}
		}
	}

	e, err := s.server.SyncGallery(ctx.Request().Context(), asset.Resource(req.Resource), req.id(), del, add)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

type AddGalleryAssetRequest struct {
	EntityRequest
	Path string `json:"path" validate:"omitempty,startswith=/"`
}

func (s *Server) AddGalleryAsset(ctx echo.Context) error {
	var req AddGalleryAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	e, err := s.server.AddGalleryAsset(ctx.Request().Context(), asset.Resource(req.Resource), req.id(), asset.Ref(req.Path))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

func (s *Server) RemoveGalleryItem(ctx echo.Context) error {
	var req GalleryItemRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	e, err := s.server.RemoveGalleryItem(ctx.Request().Context(), asset.Resource(req.Resource), req.id(), req.Index)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(200, Res{Data: s.toEntity(e)})
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
