package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	appErrors "github.com/johnquangdev/meeting-processor/errors"
	"github.com/johnquangdev/meeting-processor/pkg/jwt"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ClaimsContextKey holds the validated *jwt.Claims in the echo context
	ClaimsContextKey ContextKey = "claims"
)

// TokenValidator validates a bearer token
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that requires a valid bearer JWT and
// stores its claims under "claims" and "subject". Failures are AppErrors so
// the shared error handler renders them.
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return appErrors.ErrUnauthenticated()
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return appErrors.ErrTokenExpired()
				}
				return appErrors.ErrInvalidToken(err)
			}

			c.Set(string(ClaimsContextKey), claims)
			c.Set("subject", claims.Subject)
			return next(c)
		}
	}
}

// GetClaims retrieves the claims set by EchoAuth
func GetClaims(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(string(ClaimsContextKey)).(*jwt.Claims)
	return claims, ok
}

// extractToken reads "Bearer <token>" from an Authorization header value
func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
