package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rinori/backoffice/internal/jobs"
	"github.com/rinori/backoffice/internal/masterdata/candidates"
)

// CandidatesCleanupJob purges registered and ignored candidates past their
// retention window. Pending candidates are never touched.
type CandidatesCleanupJob struct {
	Candidates *candidates.Service
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewCandidatesCleanupJob wires dependencies for the cleanup handler.
func NewCandidatesCleanupJob(svc *candidates.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CandidatesCleanupJob {
	return &CandidatesCleanupJob{Candidates: svc, Logger: logger, Metrics: metrics}
}

// Handle processes candidate cleanup tasks.
func (j *CandidatesCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Candidates == nil {
		return errors.New("candidates cleanup: handler not configured")
	}
	var payload CandidatesCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 90
	}

	tracker := j.metrics().Track(TaskCandidatesCleanup)
	retention := time.Duration(payload.RetentionDays) * 24 * time.Hour
	deleted, err := j.Candidates.CleanupResolved(ctx, retention)
	if err != nil {
		j.logger().Error("candidates cleanup", slog.Any("error", err))
		return tracker.End(err)
	}

	j.logger().Info("candidates cleanup finished",
		slog.Int64("deleted", deleted),
		slog.Int("retention_days", payload.RetentionDays),
	)
	return tracker.End(nil)
}

func (j *CandidatesCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *CandidatesCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
