package jobs

import (
	"context"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPAIR AGGREGATES JOB
// ══════════════════════════════════════════════════════════════════════════════

// RepairAggregatesJob re-derives every profile's aggregates from the activity
// log and fixes divergence. Runs nightly during the quiet hours.
type RepairAggregatesJob struct {
	repair *command.RepairAggregatesHandler
	log    *logger.Logger
}

// NewRepairAggregatesJob creates the repair job.
func NewRepairAggregatesJob(repair *command.RepairAggregatesHandler, log *logger.Logger) *RepairAggregatesJob {
	return &RepairAggregatesJob{repair: repair, log: log}
}

// Name returns the unique name of the job.
func (j *RepairAggregatesJob) Name() string {
	return "repair_aggregates"
}

// Description returns a human-readable description of the job.
func (j *RepairAggregatesJob) Description() string {
	return "Replays activity history and repairs diverged profile aggregates"
}

// Run executes the repair sweep over all profiles.
func (j *RepairAggregatesJob) Run(ctx context.Context) error {
	report, err := j.repair.HandleAll(ctx)
	if err != nil {
		return err
	}

	j.log.Info("aggregate repair sweep finished",
		logger.Int("students_checked", report.StudentsChecked),
		logger.Int("students_repaired", report.StudentsRepaired),
	)

	return nil
}
