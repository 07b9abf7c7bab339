package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var quietPaths = map[string]bool{
	"/api/health":  true,
	"/favicon.ico": true,
}

func skipper(c echo.Context) bool {
	return quietPaths[c.Request().URL.Path]
}

// NewEchoLogger writes one access line per request, tagged with the
// matched route and its path params.
func NewEchoLogger(l *slog.Logger) echo.MiddlewareFunc {
	access := l.With(slog.String("component", "http"))
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: skipper,
		// run the error handler first so Status is the code actually sent
		HandleError:     true,
		LogMethod:       true,
		LogURI:          true,
		LogRoutePath:    true,
		LogStatus:       true,
		LogLatency:      true,
		LogResponseSize: true,
		LogRequestID:    true,
		LogRemoteIP:     true,
		LogError:        true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			access.LogAttrs(c.Request().Context(), accessLevel(v), "request", accessAttrs(c, v)...)
			return nil
		},
	})
}

func accessLevel(v middleware.RequestLoggerValues) slog.Level {
	if v.Error != nil || v.Status >= 500 {
		return slog.LevelError
	}
	if v.Status >= 400 {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func accessAttrs(c echo.Context, v middleware.RequestLoggerValues) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("method", v.Method),
		slog.String("route", v.RoutePath),
		slog.String("uri", v.URI),
		slog.Int("status", v.Status),
		slog.Int64("elapsed_ms", v.Latency.Milliseconds()),
		slog.Int64("size", v.ResponseSize),
		slog.String("request_id", v.RequestID),
		slog.String("ip", v.RemoteIP),
	}

	if names := c.ParamNames(); len(names) > 0 {
		params := make([]any, 0, len(names))
		for _, name := range names {
			params = append(params, slog.String(name, c.Param(name)))
		}
		attrs = append(attrs, slog.Group("params", params...))
	}
	if v.Error != nil {
		attrs = append(attrs, slog.String("error", v.Error.Error()))
	}
	return attrs
}
