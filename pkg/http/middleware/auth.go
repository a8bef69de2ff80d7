package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenVerifier validates a bearer token and returns the user id it carries.
type TokenVerifier func(token string) (uint, error)

// UserIDKey is the echo context key the verified user id is stored under.
const UserIDKey = "user_id"

// RequireAuth rejects requests without a valid bearer token and stores the
// user id in the request context.
func RequireAuth(verify TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Unauthorized",
					"data":    "missing bearer token",
				})
			}

			userID, err := verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Unauthorized",
					"data":    "token is invalid",
				})
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok
}
