package handler

import (
	"net/http"
	"time"

	"cart/internal/config"
	"cart/internal/session"

	"github.com/labstack/echo/v4"
)

// ログインのHTTP。チェックアウトの前提になるセッションを発行する。
type AuthHandler struct {
	cfg config.Config
	sm  *session.Manager
}

// DI
func NewAuthHandler(cfg config.Config, sm *session.Manager) *AuthHandler {
	return &AuthHandler{cfg: cfg, sm: sm}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.login)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
	}

	//デモユーザーと照合（bcrypt）
	if req.Email != h.cfg.DemoUserEmail || !session.VerifyPassword(h.cfg.DemoUserPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	now := time.Now()
	token, expiresAt, err := h.sm.Issue(req.Email, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
	})
}
