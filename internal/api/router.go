// internal/api/router.go
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the echo instance with the service routes and the
// ambient middleware (request ids, panic recovery).
func NewRouter(handler *QueryHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	e.POST("/v1/queries/resolve", handler.Resolve)
	e.GET("/healthz", handler.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
