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

type LeadHandlers struct {
	followUp services.FollowUpService
	leads    services.LeadService
	logger   *zap.Logger
}

func NewLeadHandlers(followUp services.FollowUpService, leads services.LeadService, logger *zap.Logger) *LeadHandlers {
	return &LeadHandlers{followUp: followUp, leads: leads, logger: logger}
}

// ListLeads handles GET /leads
func (h *LeadHandlers) ListLeads(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.ParsePagination(c)
	leads, err := h.leads.ListLeads(ctx, tenantID, limit, offset)
	if err != nil {
		return sendServiceError(c, h.logger, "leads", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"leads":  leads,
		"limit":  limit,
		"offset": offset,
	})
}

// CreateLead handles POST /leads
func (h *LeadHandlers) CreateLead(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	lead, err := h.leads.CreateLead(ctx, tenantID, &req)
	if err != nil {
		return sendServiceError(c, h.logger, "lead", err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// UpdateStatus handles PATCH /leads/:id/status
func (h *LeadHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	leadID, err := common.ValidateUUID(c.Param("id"), "id")
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
	if !models.IsValidLeadStatus(status) {
		return common.SendValidationError(c, "status",
			"status must be one of NEW, CONTACTED, QUALIFIED, PROPOSAL, NEGOTIATION, WON, LOST")
	}

	if err := h.leads.UpdateStatus(ctx, tenantID, leadID, status); err != nil {
		return sendServiceError(c, h.logger, "lead", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": leadID.String(), "status": status})
}

// FollowUp handles POST /leads/:id/follow-up
func (h *LeadHandlers) FollowUp(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	leadID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	msg, err := h.followUp.LeadFollowUp(ctx, tenantID, leadID)
	if err != nil {
		return sendServiceError(c, h.logger, "lead", err)
	}
	return c.JSON(http.StatusOK, msg)
}

// Score handles GET /leads/:id/score
func (h *LeadHandlers) Score(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	leadID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	score, err := h.followUp.LeadScore(ctx, tenantID, leadID)
	if err != nil {
		return sendServiceError(c, h.logger, "lead", err)
	}
	return c.JSON(http.StatusOK, score)
}
