package server

import (
	"github.com/labstack/echo/v4"

	"github.com/exo/showcase/internal/asset"
)

func (s *Server) healthHandler(ctx echo.Context) error {
	return ctx.JSON(200, s.server.Health())
}

type RequestHydrationRequest struct {
	Resource string `json:"resource" validate:"omitempty,oneof=projects users posts certificates courses technologies"`
	Limit    int    `json:"limit" validate:"gte=0,lte=10000"`
}

// RequestHydration queues a batch hydration for the worker. An empty
// resource covers every entity kind.
func (s *Server) RequestHydration(ctx echo.Context) error {
	var req RequestHydrationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.RequestHydration(ctx.Request().Context(), asset.Resource(req.Resource), req.Limit); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(202, Res{Message: "hydration scheduled"})
}
