package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/rinori/backoffice/internal/jobs"
	"github.com/rinori/backoffice/internal/masterdata/channels"
	"github.com/rinori/backoffice/internal/pl"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// PLWarmupJob precomputes profit and loss caches for every active sales
// channel plus the all-channels view, so the first dashboard hit after an
// import stays fast.
type PLWarmupJob struct {
	PL       *pl.Service
	Channels channels.Repository
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPLWarmupJob wires dependencies for the warmup handler.
func NewPLWarmupJob(plSvc *pl.Service, channelRepo channels.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *PLWarmupJob {
	return &PLWarmupJob{PL: plSvc, Channels: channelRepo, Logger: logger, Metrics: metrics}
}

// Handle processes profit and loss warmup tasks.
func (j *PLWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.PL == nil {
		return errors.New("pl warmup: handler not configured")
	}
	var payload PLWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Months <= 0 {
		payload.Months = 12
	}

	tracker := j.metrics().Track(TaskPLCacheWarmup)
	err := j.warm(ctx, payload.Months)
	return tracker.End(err)
}

func (j *PLWarmupJob) warm(ctx context.Context, months int) error {
	active, err := j.Channels.List(ctx, true)
	if err != nil {
		j.logger().Error("load channels for warmup", slog.Any("error", err))
		return err
	}

	channelIDs := []int64{0} // all channels combined
	for _, ch := range active {
		channelIDs = append(channelIDs, ch.ID)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range channelIDs {
		id := id
		g.Go(func() error {
			return j.PL.Warm(ctx, id, months)
		})
	}
	if err := g.Wait(); err != nil {
		j.logger().Error("pl warmup", slog.Any("error", err))
		return err
	}

	j.logger().Info("pl warmup finished",
		slog.Int("channels", len(channelIDs)),
		slog.Int("months", months),
	)
	return nil
}

func (j *PLWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *PLWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
