package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/web"
)

// AuthHandler exposes the login and logout endpoints.
type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var input LoginInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid login payload")
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return apperror.NewValidation("username and password are required")
	}

	token, user, err := h.service.Login(input)
	if err != nil {
		return err
	}

	return web.Data(c, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the
// client discards its copy; the endpoint exists for the audit trail.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims := GetClaims(c); claims != nil {
		slog.Info("admin logged out", slog.String("username", claims.Subject))
	}
	return web.Message(c, http.StatusOK, "Logged out")
}
