package handlers

import (
	"errors"
	"net/http"

	"agencycrm/internal/common"
	"agencycrm/internal/jobs/background"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobRunner exposes the background scheduler to operators.
type JobRunner interface {
	GetJobStatus() []background.JobStatus
	RunNow(name string) error
}

type JobHandlers struct {
	runner JobRunner
	logger *zap.Logger
}

func NewJobHandlers(runner JobRunner, logger *zap.Logger) *JobHandlers {
	return &JobHandlers{
		runner: runner,
		logger: logger,
	}
}

// ListJobs handles GET /ops/jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.runner.GetJobStatus(),
	})
}

// RunJob handles POST /ops/jobs/:name/run. The job runs on the scheduler, so
// the response only confirms that it was queued.
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.runner.RunNow(name); err != nil {
		if errors.Is(err, background.ErrUnknownJob) {
			return common.SendNotFoundError(c, "Job")
		}
		h.logger.Error("manual job run failed", zap.String("job", name), zap.Error(err))
		return common.SendUnavailableError(c, "Scheduler did not accept the job")
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "queued",
	})
}
