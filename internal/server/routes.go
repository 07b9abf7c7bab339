package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware("showcase", otelecho.WithSkipper(skipper)))
	e.Use(middleware.RequestID())
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)

	var jobGroup = e.Group("/api/v1/assets")
	jobGroup.POST("/hydrate", s.RequestHydration)

	var entityGroup = e.Group("/api/v1/:resource")
	entityGroup.POST("", s.CreateEntity)
	entityGroup.GET("/:id", s.GetEntity)
	entityGroup.DELETE("/:id", s.DeleteEntity)

	entityGroup.GET("/:id/gallery-paths", s.ListGalleryPaths)
	entityGroup.GET("/:id/gallery/:index", s.GetGalleryItem)
	entityGroup.POST("/:id/gallery", s.SyncGallery)
	entityGroup.POST("/:id/gallery/path", s.AddGalleryAsset)
	entityGroup.DELETE("/:id/gallery/:index", s.RemoveGalleryItem)

	entityGroup.GET("/:id/:slot", s.GetAsset)
	entityGroup.PUT("/:id/:slot", s.UploadAsset)
	entityGroup.PUT("/:id/:slot/path", s.SetAssetPath)
	entityGroup.DELETE("/:id/:slot", s.ResetAsset)

	return e
}
