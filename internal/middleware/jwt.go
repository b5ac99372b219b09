package middleware

import (
	"context"
	"net/http"

	"agencycrm/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const jwtContextKey = "user"

// JWTCustomClaims are the claims issued to dashboard users. Every token is
// bound to exactly one workspace.
type JWTCustomClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTConfig returns the echo-jwt configuration for protected routes. On
// success the user and tenant ids are stored in the request context.
func JWTConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: jwtContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(jwtContextKey).(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}

			ctx := c.Request().Context()
			if userID, err := uuid.Parse(claims.UserID); err == nil {
				ctx = context.WithValue(ctx, common.UserIDKey, userID)
			}
			if tenantID, err := uuid.Parse(claims.TenantID); err == nil {
				ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid or missing token", nil))
		},
	}
}

// RequireTenant rejects authenticated requests whose token carries no usable
// tenant id.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetTenantIDFromContext(c.Request().Context()); !ok {
				return common.SendUnauthorizedError(c)
			}
			return next(c)
		}
	}
}

// SignToken issues an HS256 token for the given user and tenant.
func SignToken(secret string, userID, tenantID uuid.UUID, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID:           userID.String(),
		TenantID:         tenantID.String(),
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(secret))
}
