package jobs

import (
	"context"
	"fmt"
	"math"
	"time"

	"agencycrm/internal/caching"
	"agencycrm/internal/models"
	"agencycrm/internal/templates"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const alertCacheTTL = 30 * time.Second

// AlertService builds the follow-up alert feed shown on the dashboard.
type AlertService struct {
	scanner *EligibilityScanner
	cache   caching.CacheService
	logger  *zap.Logger
}

func NewAlertService(scanner *EligibilityScanner, cache caching.CacheService, logger *zap.Logger) *AlertService {
	return &AlertService{
		scanner: scanner,
		cache:   cache,
		logger:  logger,
	}
}

// ListAlerts returns the tenant's current alerts. Results are cached briefly.
func (a *AlertService) ListAlerts(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error) {
	if a.cache != nil {
		cached, err := a.cache.GetAlerts(ctx, tenantID)
		if err != nil {
			a.logger.Warn("alert cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	scan, err := a.scanner.Scan(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	alerts := BuildAlerts(scan, now)

	if a.cache != nil {
		if err := a.cache.SetAlerts(ctx, tenantID, alerts, alertCacheTTL); err != nil {
			a.logger.Warn("alert cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
	return alerts, nil
}

// BuildAlerts converts a scan into alerts: stale leads, then stale proposals,
// then invoices due soon.
func BuildAlerts(scan *ScanResult, now time.Time) []models.Alert {
	alerts := make([]models.Alert, 0, len(scan.StaleLeads)+len(scan.StaleProposals)+len(scan.DueSoonInvoices))

	for _, l := range scan.StaleLeads {
		days := int(now.Sub(l.UpdatedAt) / (24 * time.Hour))
		alerts = append(alerts, models.Alert{
			ID:          "lead-" + l.ID.String(),
			Type:        models.AlertTypeLeadStale,
			Title:       l.Name,
			Description: fmt.Sprintf("Lead sem contato há %d dias", days),
			Data:        l,
			Severity:    models.SeverityHigh,
		})
	}

	for _, p := range scan.StaleProposals {
		alerts = append(alerts, models.Alert{
			ID:          "proposal-" + p.ID.String(),
			Type:        models.AlertTypeProposalStale,
			Title:       p.ClientName,
			Description: fmt.Sprintf("Proposta \"%s\" enviada há 3+ dias sem resposta", p.Title),
			Data:        p,
			Severity:    models.SeverityMedium,
		})
	}

	today := StartOfDay(now)
	for _, inv := range scan.DueSoonInvoices {
		values := templates.ReminderValues(inv)
		alerts = append(alerts, models.Alert{
			ID:          "invoice-" + inv.ID.String(),
			Type:        models.AlertTypeInvoiceDue,
			Title:       values["client_name"],
			Description: dueDescription(inv.DueDate, today, values["amount"]),
			Data:        inv,
			Severity:    models.SeverityHigh,
		})
	}

	return alerts
}

func dueDescription(due, today time.Time, amount string) string {
	days := int(math.Round(calendarDay(due, today.Location()).Sub(today).Hours() / 24))
	switch days {
	case 0:
		return fmt.Sprintf("Vence hoje: R$ %s", amount)
	case 1:
		return fmt.Sprintf("Vencimento em 1 dia: R$ %s", amount)
	default:
		return fmt.Sprintf("Vencimento em %d dias: R$ %s", days, amount)
	}
}
