package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/apperror"
)

// Context key for the verified admin claims.
const contextKeyClaims = "auth_claims"

// RequireAdmin returns middleware that verifies the Authorization bearer
// token and stores its claims in the Echo context.
func RequireAdmin(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}

			claims, err := service.Verify(token)
			if err != nil {
				return err
			}

			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

// GetClaims retrieves the verified admin claims from the Echo context.
// Returns nil when RequireAdmin was not applied to the route.
func GetClaims(c echo.Context) *Claims {
	claims, ok := c.Get(contextKeyClaims).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}
