package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPLCacheWarmup precomputes profit and loss views for recent months.
	TaskPLCacheWarmup = "pl:cache_warmup"
	// TaskCandidatesCleanup purges resolved new-product candidates.
	TaskCandidatesCleanup = "candidates:cleanup"
)

// PLWarmupPayload scopes one warmup run.
type PLWarmupPayload struct {
	// Months counts back from the current month. Zero means 12.
	Months int `json:"months"`
}

// NewPLWarmupTask constructs an Asynq task for profit and loss warmup.
func NewPLWarmupTask(payload PLWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPLCacheWarmup, data), nil
}

// CandidatesCleanupPayload scopes one cleanup run.
type CandidatesCleanupPayload struct {
	// RetentionDays keeps resolved candidates this many days. Zero means 90.
	RetentionDays int `json:"retention_days"`
}

// NewCandidatesCleanupTask constructs an Asynq task for candidate cleanup.
func NewCandidatesCleanupTask(payload CandidatesCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCandidatesCleanup, data), nil
}
