package scheduler

import (
	"context"

	"github.com/rs/zerolog"
)

// Rescorer recomputes every company's stored score.
type Rescorer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// RescoreJob periodically recomputes all scores so that changes to the
// scoring configuration reach stored results.
type RescoreJob struct {
	rescorer Rescorer
	log      zerolog.Logger
}

// NewRescoreJob creates a RescoreJob.
func NewRescoreJob(r Rescorer, log zerolog.Logger) *RescoreJob {
	return &RescoreJob{rescorer: r, log: log}
}

// Name implements Job.
func (j *RescoreJob) Name() string { return "rescore_all" }

// Run implements Job.
func (j *RescoreJob) Run(ctx context.Context) error {
	n, err := j.rescorer.RecomputeAll(ctx)
	j.log.Info().Int("companies", n).Msg("scheduled rescore finished")
	return err
}
