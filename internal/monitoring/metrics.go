package monitoring

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reminder pipeline collectors. Create it once per process
// and pass it to the components that record into it.
type Metrics struct {
	RemindersDispatched *prometheus.CounterVec
	ReminderRuns        *prometheus.CounterVec
	ReminderRunDuration prometheus.Histogram
	RateLimited         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		RemindersDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminders_dispatched_total",
				Help: "Invoice reminders by type and outcome",
			},
			[]string{"type", "status"},
		),
		ReminderRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_runs_total",
				Help: "Reminder dispatch runs by result",
			},
			[]string{"result"},
		),
		ReminderRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reminder_run_duration_seconds",
				Help:    "Duration of one tenant reminder run in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the rate limiter by route",
			},
			[]string{"route"},
		),
	}
}

// Register adds every collector to reg. Collectors that are already
// registered are ignored.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.RemindersDispatched, m.ReminderRuns, m.ReminderRunDuration, m.RateLimited} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
