package handlers

import (
	"net/http"

	"agencycrm/internal/common"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClientHandlers handles HTTP requests for the agency's clients
type ClientHandlers struct {
	clientService services.ClientService
	logger        *zap.Logger
}

func NewClientHandlers(clientService services.ClientService, logger *zap.Logger) *ClientHandlers {
	return &ClientHandlers{clientService: clientService, logger: logger}
}

// ListClients handles GET /clients
func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ParsePagination(c)
	clients, err := h.clientService.ListClients(ctx, tenantID, limit, offset)
	if err != nil {
		return sendServiceError(c, h.logger, "clients", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"limit":   limit,
		"offset":  offset,
	})
}

// CreateClient handles POST /clients
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	client, err := h.clientService.CreateClient(ctx, tenantID, &req)
	if err != nil {
		return sendServiceError(c, h.logger, "client", err)
	}
	return c.JSON(http.StatusCreated, client)
}
