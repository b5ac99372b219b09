package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"agencycrm/internal/common"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const configurationMissingMessage = "Configuração do WhatsApp incompleta. Informe URL, chave de API e instância nas configurações do workspace."

// ReminderRunner runs one reminder pass for a tenant.
type ReminderRunner interface {
	Run(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.ReminderRunResult, error)
}

type ConfigurationMissingResponse struct {
	Message string                      `json:"message"`
	Missing services.MissingCredentials `json:"missing"`
}

type ReminderHandlers struct {
	runner ReminderRunner
	now    func() time.Time
	logger *zap.Logger
}

func NewReminderHandlers(runner ReminderRunner, now func() time.Time, logger *zap.Logger) *ReminderHandlers {
	return &ReminderHandlers{
		runner: runner,
		now:    now,
		logger: logger,
	}
}

// TriggerReminders handles POST /finance/reminders
func (h *ReminderHandlers) TriggerReminders(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.runner.Run(ctx, tenantID, h.now())
	if err != nil {
		var cfgErr *services.ConfigurationMissingError
		if errors.As(err, &cfgErr) {
			return c.JSON(http.StatusBadRequest, ConfigurationMissingResponse{
				Message: configurationMissingMessage,
				Missing: cfgErr.Missing,
			})
		}
		h.logger.Error("reminder run failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return common.SendServerError(c, "Failed to process reminders")
	}

	return c.JSON(http.StatusOK, result)
}
