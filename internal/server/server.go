package server

import (
	"cart/internal/handler"
	"cart/internal/session"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func Start(addr string, authH *handler.AuthHandler, cartH *handler.CartHandler, sm *session.Manager) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(requestLog())

	RegisterRoutes(e, authH, cartH, sm)

	return e.Start(addr)
}

// アクセスログ
func requestLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			log.WithFields(log.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
				"status": c.Response().Status,
			}).Info("request")

			return err
		}
	}
}
