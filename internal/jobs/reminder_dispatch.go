package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/monitoring"
	"agencycrm/internal/repositories"
	"agencycrm/internal/services"
	"agencycrm/internal/templates"
	"agencycrm/internal/whatsapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceScanner is the part of EligibilityScanner the reminder job uses.
type InvoiceScanner interface {
	ScanInvoices(ctx context.Context, tenantID uuid.UUID, now time.Time) (upcoming, overdue []*models.Invoice, err error)
}

// ReminderJob sends at most one WhatsApp reminder per invoice per calendar
// day. The only state it keeps is each invoice's last_reminder_at.
type ReminderJob struct {
	scanner     InvoiceScanner
	settings    services.SettingsService
	gateway     services.MessageGateway
	invoiceRepo repositories.InvoiceRepository
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

func NewReminderJob(scanner InvoiceScanner, settings services.SettingsService, gateway services.MessageGateway,
	invoiceRepo repositories.InvoiceRepository, metrics *monitoring.Metrics, logger *zap.Logger) *ReminderJob {
	return &ReminderJob{
		scanner:     scanner,
		settings:    settings,
		gateway:     gateway,
		invoiceRepo: invoiceRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes one pass for tenantID. It returns *services.ConfigurationMissingError
// when there is something to send but the tenant's credentials are incomplete.
// Any other error is unexpected; timestamps already written are kept.
func (j *ReminderJob) Run(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.ReminderRunResult, error) {
	start := time.Now()
	result, err := j.run(ctx, tenantID, now)
	j.metrics.ReminderRunDuration.Observe(time.Since(start).Seconds())

	var cfgErr *services.ConfigurationMissingError
	switch {
	case err == nil:
		j.metrics.ReminderRuns.WithLabelValues("success").Inc()
	case errors.As(err, &cfgErr):
		j.metrics.ReminderRuns.WithLabelValues("configuration_missing").Inc()
	default:
		j.metrics.ReminderRuns.WithLabelValues("error").Inc()
	}
	return result, err
}

func (j *ReminderJob) run(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.ReminderRunResult, error) {
	upcoming, overdue, err := j.scanner.ScanInvoices(ctx, tenantID, now)
	if err != nil {
		return nil, fmt.Errorf("reminder scan failed: %w", err)
	}

	result := &models.ReminderRunResult{Details: []models.ReminderDetail{}}
	if len(upcoming) == 0 && len(overdue) == 0 {
		return result, nil
	}

	tenant, err := j.settings.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if cfg := services.ResolveCredentials(tenant); !cfg.Complete() {
		j.logger.Warn("reminders blocked by missing messaging configuration",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("eligible", len(upcoming)+len(overdue)),
		)
		return nil, &services.ConfigurationMissingError{Missing: cfg.Missing}
	}

	j.dispatch(ctx, tenant, upcoming, models.ReminderTypeUpcoming, now, result)
	j.dispatch(ctx, tenant, overdue, models.ReminderTypeOverdue, now, result)

	j.logger.Info("reminder run finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("processed", result.Processed),
		zap.Int("attempted", result.Attempted),
		zap.Int("skipped_no_phone", result.SkippedNoPhone),
	)
	return result, nil
}

func (j *ReminderJob) dispatch(ctx context.Context, tenant *models.Tenant, invoices []*models.Invoice,
	kind models.ReminderType, now time.Time, result *models.ReminderRunResult) {
	tmpl := templates.ReminderTemplate(tenant, kind)

	for _, inv := range invoices {
		result.Attempted++

		phone := ""
		if inv.Client != nil && inv.Client.Phone != nil {
			phone = *inv.Client.Phone
		}
		if whatsapp.NormalizePhone(phone) == "" {
			result.SkippedNoPhone++
			continue
		}

		body := templates.Render(tmpl, templates.ReminderValues(inv))
		if err := j.gateway.Send(ctx, tenant.ID, phone, body); err != nil {
			j.logger.Warn("invoice reminder failed",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("invoice_id", inv.ID.String()),
				zap.String("type", string(kind)),
				zap.Error(err),
			)
			j.record(result, inv.ID, kind, models.ReminderFailed)
			continue
		}

		if err := j.invoiceRepo.MarkReminded(ctx, tenant.ID, inv.ID, now); err != nil {
			// The message already went out, so the outcome stays "sent".
			j.logger.Error("failed to record reminder timestamp",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
		}
		result.Processed++
		j.record(result, inv.ID, kind, models.ReminderSent)
	}
}

func (j *ReminderJob) record(result *models.ReminderRunResult, id uuid.UUID, kind models.ReminderType, outcome models.ReminderOutcome) {
	result.Details = append(result.Details, models.ReminderDetail{ID: id, Status: outcome, Type: kind})
	j.metrics.RemindersDispatched.WithLabelValues(string(kind), string(outcome)).Inc()
}
