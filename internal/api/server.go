package api

import (
	"net/http"

	"meeting-notifier/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer wires the routes and the outer middleware.
func NewServer(h *Handler, bodyLimit string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(metrics.HTTPMiddleware())

	e.POST("/process-meeting", h.ProcessMeeting)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return e
}
