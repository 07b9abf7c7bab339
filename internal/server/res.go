package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

type Res struct {
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, asset.ErrNotFound),
		errors.Is(err, asset.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, asset.ErrMalformedUpload),
		errors.Is(err, asset.ErrEmptyRef):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(ctx echo.Context, err error) error {
	return ctx.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}

// blob writes asset bytes. Served paths are stable while their content
// changes, so responses must not be cached.
func blob(ctx echo.Context, b []byte) error {
	ctx.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	return ctx.Blob(http.StatusOK, http.DetectContentType(b), b)
}
