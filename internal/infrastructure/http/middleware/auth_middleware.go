package middleware

import (
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/errors"
	"github.com/johnquangdev/talk-assistant/pkg/jwt"
)

const (
	// ClientIDKey is the echo context key holding the authenticated client id
	ClientIDKey = "client_id"
	// ClaimsKey is the echo context key holding the token claims
	ClaimsKey = "claims"
)

// EchoAuth returns an Echo middleware that validates the bearer token.
// A nil manager disables authentication.
func EchoAuth(manager *jwt.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if manager == nil {
			return next
		}
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return respondError(c, errors.ErrUnauthenticated())
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				if logger != nil {
					logger.Debug("rejected access token", zap.String("path", c.Path()), zap.Error(err))
				}
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return respondError(c, errors.ErrTokenExpired())
				}
				return respondError(c, errors.ErrInvalidToken())
			}

			c.Set(ClaimsKey, claims)
			c.Set(ClientIDKey, claims.ClientID)
			return next(c)
		}
	}
}

// ExtractToken reads the token from the Authorization header, the
// access_token cookie, or the access_token query parameter. Browsers cannot
// set headers on websocket upgrades, hence the query fallback.
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return c.QueryParam("access_token")
}

func respondError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
