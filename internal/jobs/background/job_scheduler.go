package background

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"agencycrm/internal/config"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
	"agencycrm/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JobInvoiceReminders = "daily-invoice-reminders"
	JobStaleAlertsLog   = "stale-alerts-log"

	tenantPageSize = 1000
)

// ReminderRunner runs one reminder pass for a tenant.
type ReminderRunner interface {
	Run(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.ReminderRunResult, error)
}

// OverdueMarker flips past-due pending invoices of a tenant to OVERDUE.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
}

// AlertLister lists a tenant's follow-up alerts.
type AlertLister interface {
	ListAlerts(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error)
}

// JobScheduler runs the periodic reminder and alert jobs for every active tenant.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	cfg        config.SchedulerConfig
	tenantRepo repositories.TenantRepository
	reminders  ReminderRunner
	overdue    OverdueMarker
	alerts     AlertLister
	now        func() time.Time
	logger     *zap.Logger
	jobJobs    map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(cfg config.SchedulerConfig, loc *time.Location, tenantRepo repositories.TenantRepository,
	reminders ReminderRunner, overdue OverdueMarker, alerts AlertLister, logger *zap.Logger) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		cfg:        cfg,
		tenantRepo: tenantRepo,
		reminders:  reminders,
		overdue:    overdue,
		alerts:     alerts,
		now:        func() time.Time { return time.Now().In(loc) },
		logger:     logger,
		jobJobs:    make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobJobs)))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	reminderJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(js.cfg.ReminderHour, 0, 0))),
		gocron.NewTask(js.runReminders, context.Background()),
		gocron.WithName(JobInvoiceReminders),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder job: %w", err)
	}
	js.jobJobs[JobInvoiceReminders] = reminderJob

	if js.cfg.AlertLogInterval > 0 {
		alertsJob, err := js.scheduler.NewJob(
			gocron.DurationJob(time.Duration(js.cfg.AlertLogInterval)*time.Hour),
			gocron.NewTask(js.logStaleAlerts, context.Background()),
			gocron.WithName(JobStaleAlertsLog),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create alerts job: %w", err)
		}
		js.jobJobs[JobStaleAlertsLog] = alertsJob
	}

	js.logger.Info("registered background jobs",
		zap.Int("count", len(js.jobJobs)),
		zap.Uint("reminder_hour", js.cfg.ReminderHour),
	)
	return nil
}

func (js *JobScheduler) activeTenants(ctx context.Context) ([]*models.Tenant, error) {
	var active []*models.Tenant
	for offset := 0; ; offset += tenantPageSize {
		page, err := js.tenantRepo.List(ctx, tenantPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list tenants: %w", err)
		}
		for _, t := range page {
			if t.Status == models.TenantStatusActive {
				active = append(active, t)
			}
		}
		if len(page) < tenantPageSize {
			return active, nil
		}
	}
}

// runReminders processes tenants one after another. A tenant without
// messaging credentials is skipped with a warning.
func (js *JobScheduler) runReminders(ctx context.Context) error {
	now := js.now()
	tenants, err := js.activeTenants(ctx)
	if err != nil {
		js.logger.Error("reminder job could not list tenants", zap.Error(err))
		return err
	}

	var sent, failed int
	for _, tenant := range tenants {
		log := js.logger.With(zap.String("tenant_id", tenant.ID.String()))

		if js.cfg.AutoMarkOverdue && js.overdue != nil {
			if _, err := js.overdue.MarkOverdue(ctx, tenant.ID, now); err != nil {
				log.Error("failed to mark overdue invoices", zap.Error(err))
			}
		}

		result, err := js.reminders.Run(ctx, tenant.ID, now)
		var cfgErr *services.ConfigurationMissingError
		switch {
		case errors.As(err, &cfgErr):
			log.Warn("skipping reminders, messaging not configured", zap.Error(err))
			continue
		case err != nil:
			log.Error("reminder run failed", zap.Error(err))
			continue
		}
		sent += result.Processed
		failed += len(result.Details) - result.Processed
	}

	js.logger.Info("daily invoice reminders finished",
		zap.Int("tenants", len(tenants)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	return nil
}

func (js *JobScheduler) logStaleAlerts(ctx context.Context) error {
	if js.alerts == nil {
		return nil
	}
	now := js.now()
	tenants, err := js.activeTenants(ctx)
	if err != nil {
		js.logger.Error("alerts job could not list tenants", zap.Error(err))
		return err
	}

	for _, tenant := range tenants {
		alerts, err := js.alerts.ListAlerts(ctx, tenant.ID, now)
		if err != nil {
			js.logger.Error("failed to list alerts", zap.String("tenant_id", tenant.ID.String()), zap.Error(err))
			continue
		}
		if len(alerts) == 0 {
			continue
		}

		counts := make(map[models.AlertType]int)
		for _, a := range alerts {
			counts[a.Type]++
		}
		js.logger.Info("pending follow-ups",
			zap.String("tenant", tenant.Name),
			zap.Int("stale_leads", counts[models.AlertTypeLeadStale]),
			zap.Int("stale_proposals", counts[models.AlertTypeProposalStale]),
			zap.Int("invoices_due", counts[models.AlertTypeInvoiceDue]),
		)
	}
	return nil
}

// ErrUnknownJob is returned by RunNow for a name that is not registered.
var ErrUnknownJob = errors.New("job is not registered")

// JobStatus describes one registered job.
type JobStatus struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"nextRun,omitempty"`
}

// RunNow triggers a registered job immediately, outside its schedule. The job
// runs asynchronously on the scheduler.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobJobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	js.logger.Info("manual job run requested", zap.String("job", name))
	return job.RunNow()
}

// GetJobStatus returns the registered jobs sorted by name.
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobJobs))
	for name, job := range js.jobJobs {
		status := JobStatus{Name: name}
		if next, err := job.NextRun(); err == nil && !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}
	slices.SortFunc(statuses, func(a, b JobStatus) int { return strings.Compare(a.Name, b.Name) })
	return statuses
}
