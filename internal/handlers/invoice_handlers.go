package handlers

import (
	"net/http"
	"strings"

	"agencycrm/internal/common"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, logger *zap.Logger) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService, logger: logger}
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ParsePagination(c)
	invoices, err := h.invoiceService.ListInvoices(ctx, tenantID, limit, offset)
	if err != nil {
		return sendServiceError(c, h.logger, "invoices", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.invoiceService.CreateInvoice(ctx, tenantID, &req)
	if err != nil {
		return sendServiceError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// UpdateStatus handles PATCH /invoices/:id/status
func (h *InvoiceHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !models.IsValidInvoiceStatus(status) {
		return common.SendValidationError(c, "status", "status must be one of PENDING, PAID, OVERDUE, CANCELLED")
	}

	if err := h.invoiceService.UpdateStatus(ctx, tenantID, invoiceID, status); err != nil {
		return sendServiceError(c, h.logger, "invoice", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": invoiceID.String(), "status": status})
}
