package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"agencycrm/internal/common"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AlertLister lists a tenant's follow-up alerts.
type AlertLister interface {
	ListAlerts(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error)
}

type AutomationHandlers struct {
	alerts   AlertLister
	followUp services.FollowUpService
	now      func() time.Time
	logger   *zap.Logger
}

func NewAutomationHandlers(alerts AlertLister, followUp services.FollowUpService, now func() time.Time, logger *zap.Logger) *AutomationHandlers {
	return &AutomationHandlers{
		alerts:   alerts,
		followUp: followUp,
		now:      now,
		logger:   logger,
	}
}

// ListAlerts handles GET /automation/alerts
func (h *AutomationHandlers) ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	alerts, err := h.alerts.ListAlerts(ctx, tenantID, h.now())
	if err != nil {
		return sendServiceError(c, h.logger, "alerts", err)
	}
	return c.JSON(http.StatusOK, alerts)
}

type generateMessageRequest struct {
	AlertType models.AlertType `json:"alertType"`
	AlertData json.RawMessage  `json:"alertData"`
}

// GenerateMessage handles POST /automation/generate-message
func (h *AutomationHandlers) GenerateMessage(c echo.Context) error {
	ctx := c.Request().Context()
	if _, ok := common.GetTenantIDFromContext(ctx); !ok {
		return common.SendUnauthorizedError(c)
	}

	var req generateMessageRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if strings.TrimSpace(string(req.AlertType)) == "" {
		return common.SendValidationError(c, "alertType", "alertType is required")
	}

	message, err := h.followUp.AlertMessage(ctx, req.AlertType, req.AlertData)
	if err != nil {
		return sendServiceError(c, h.logger, "alert", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}
