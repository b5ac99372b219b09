package middleware

import (
	"crypto/subtle"

	"agencycrm/internal/common"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// AdminTokenHeader carries the operator token for the /ops routes.
const AdminTokenHeader = "X-Admin-Token"

// AdminKeyAuth guards operator routes with a static token. Tenant JWTs are
// not accepted here because the jobs act on every workspace.
func AdminKeyAuth(token string) echo.MiddlewareFunc {
	return echoMiddleware.KeyAuthWithConfig(echoMiddleware.KeyAuthConfig{
		KeyLookup: "header:" + AdminTokenHeader,
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return common.SendUnauthorizedError(c)
		},
	})
}
