package server

import (
	"warehouse/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New builds the echo instance with middleware and routes registered.
func New(productH *handler.ProductHandler, orderH *handler.OrderHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	RegisterRoutes(e, productH, orderH)
	return e
}

// Start runs the http server until it fails or is shut down.
func Start(addr string, productH *handler.ProductHandler, orderH *handler.OrderHandler) error {
	return New(productH, orderH).Start(addr)
}
