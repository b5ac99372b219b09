package handlers

import (
	"net/http"

	"agencycrm/internal/common"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxTemplateLength = 2000

type SettingsHandlers struct {
	settings services.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandlers(settings services.SettingsService, logger *zap.Logger) *SettingsHandlers {
	return &SettingsHandlers{settings: settings, logger: logger}
}

// GetWorkspace handles GET /settings/workspace
func (h *SettingsHandlers) GetWorkspace(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	view, err := h.settings.GetWorkspaceSettings(ctx, tenantID)
	if err != nil {
		return sendServiceError(c, h.logger, "workspace", err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateWorkspace handles PATCH /settings/workspace. Omitted fields are kept.
func (h *SettingsHandlers) UpdateWorkspace(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.WorkspaceSettings
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	view, err := h.settings.UpdateWorkspaceSettings(ctx, tenantID, &req)
	if err != nil {
		return sendServiceError(c, h.logger, "workspace", err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateTemplates handles PATCH /finance/templates
func (h *SettingsHandlers) UpdateTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.ReminderTemplates
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Upcoming != nil && len(*req.Upcoming) > maxTemplateLength {
		return common.SendValidationError(c, "reminderTemplateUpcoming", "template is too long")
	}
	if req.Overdue != nil && len(*req.Overdue) > maxTemplateLength {
		return common.SendValidationError(c, "reminderTemplateOverdue", "template is too long")
	}

	view, err := h.settings.UpdateReminderTemplates(ctx, tenantID, &req)
	if err != nil {
		return sendServiceError(c, h.logger, "workspace", err)
	}
	return c.JSON(http.StatusOK, view)
}
