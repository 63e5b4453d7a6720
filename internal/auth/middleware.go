package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const ContextUserIDKey = "user_id"

// OptionalIdentity stores the subject of a valid bearer token as the caller id.
// Requests without a token, or with an invalid one, pass through anonymously.
func OptionalIdentity(manager *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			claims, err := manager.ParseToken(tokenString)
			if err != nil {
				c.Logger().Debugf("ignoring bearer token: %v", err)
				return next(c)
			}

			c.Set(ContextUserIDKey, claims.Subject)
			return next(c)
		}
	}
}

// UserIDFromContext returns the caller id set by OptionalIdentity.
func UserIDFromContext(c echo.Context) (string, bool) {
	userID, ok := c.Get(ContextUserIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
