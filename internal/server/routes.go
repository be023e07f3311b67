package server

import (
	"cart/internal/handler"
	"cart/internal/session"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, authH *handler.AuthHandler, cartH *handler.CartHandler, sm *session.Manager) {
	authH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, sm)
}
