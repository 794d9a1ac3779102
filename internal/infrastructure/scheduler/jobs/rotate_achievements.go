// Package jobs contains the scheduled jobs for the progression engine.
package jobs

import (
	"context"
	"errors"

	"github.com/JihunKong/vacation-sub000/internal/application/achievements"
	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROTATE ACHIEVEMENTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RotateAchievementsJob runs the monthly achievement rotation. Scheduled for
// the first moment of each month in Seoul time, and also safe to run on every
// worker start: rotation is idempotent per month, so a missed or duplicate
// firing self-corrects.
type RotateAchievementsJob struct {
	rotation *achievements.RotationService
	log      *logger.Logger
}

// NewRotateAchievementsJob creates the rotation job.
func NewRotateAchievementsJob(rotation *achievements.RotationService, log *logger.Logger) *RotateAchievementsJob {
	return &RotateAchievementsJob{rotation: rotation, log: log}
}

// Name returns the unique name of the job.
func (j *RotateAchievementsJob) Name() string {
	return "rotate_achievements"
}

// Description returns a human-readable description of the job.
func (j *RotateAchievementsJob) Description() string {
	return "Archives last month's achievement completions and activates the new monthly set"
}

// Run executes the rotation for the current month.
func (j *RotateAchievementsJob) Run(ctx context.Context) error {
	now := timeutil.Now()

	err := j.rotation.Rotate(ctx, now)
	if errors.Is(err, achievement.ErrRotationConflict) {
		// Another replica is already rotating this month.
		j.log.Info("rotation already in progress elsewhere",
			logger.String("month", timeutil.MonthKey(now)))
		return nil
	}

	return err
}
