package handlers

import (
	"errors"
	"strings"

	"agencycrm/internal/common"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// sendServiceError maps service errors onto the response envelope. Anything
// unexpected is logged and answered with a generic server error.
func sendServiceError(c echo.Context, logger *zap.Logger, resource string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, services.ErrInvalidInput):
		return common.SendClientError(c, strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": "))
	}
	logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("method", c.Request().Method),
		zap.Error(err),
	)
	return common.SendServerError(c, "Internal server error")
}

var (
	errNoDatabase    = errors.New("database not configured")
	errBucketMissing = errors.New("storage bucket does not exist")
)
