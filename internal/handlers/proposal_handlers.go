package handlers

import (
	"errors"
	"net/http"

	"agencycrm/internal/common"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProposalHandlers struct {
	proposals services.ProposalService
	logger    *zap.Logger
}

func NewProposalHandlers(proposals services.ProposalService, logger *zap.Logger) *ProposalHandlers {
	return &ProposalHandlers{proposals: proposals, logger: logger}
}

// GeneratePDF handles POST /proposals/:id/pdf
func (h *ProposalHandlers) GeneratePDF(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	proposalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	doc, err := h.proposals.GeneratePDF(ctx, tenantID, proposalID)
	if err != nil {
		return sendServiceError(c, h.logger, "proposal", err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Send handles POST /proposals/:id/send
func (h *ProposalHandlers) Send(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	proposalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	doc, err := h.proposals.Send(ctx, tenantID, proposalID)
	switch {
	case errors.Is(err, services.ErrNoRecipient):
		return common.SendValidationError(c, "clientEmail", "proposal has no client email")
	case errors.Is(err, services.ErrMailNotConfigured):
		return common.SendUnavailableError(c, "Email delivery is not configured")
	case err != nil:
		return sendServiceError(c, h.logger, "proposal", err)
	}
	return c.JSON(http.StatusOK, doc)
}
