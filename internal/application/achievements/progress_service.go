// Package achievements contains the achievement progress and rotation
// services. Both operate through the command layer's unit of work so every
// progress mutation shares a transaction with its reward grant.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// ProgressService maps a student's live statistics onto the active
// achievement set and grants rewards on completion.
type ProgressService struct {
	catalog *achievement.Catalog
	log     *logger.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(catalog *achievement.Catalog, log *logger.Logger) *ProgressService {
	return &ProgressService{catalog: catalog, log: log}
}

// RecomputeFor derives one observed value per active achievement from the
// student's history and updates every progress row. Implements the
// orchestrator's AchievementRecomputer port.
func (s *ProgressService) RecomputeFor(
	ctx context.Context,
	repos command.Repositories,
	studentID string,
) ([]shared.Event, error) {
	active, err := repos.Achievements.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("achievements: list active: %w", err)
	}
	// Mid-rotation race: an empty active set is a benign no-op.
	if len(active) == 0 {
		return nil, nil
	}

	observer, err := s.buildObserver(ctx, repos, studentID)
	if err != nil {
		return nil, err
	}

	var events []shared.Event
	for _, def := range active {
		observed := observer.observe(def)
		defEvents, err := s.updateProgress(ctx, repos, studentID, def, observed)
		if err != nil {
			// One broken check must not starve the rest.
			s.log.Warn("achievement progress update failed",
				logger.String("code", def.Code),
				logger.String("student_id", studentID),
				logger.Err(err))
			continue
		}
		events = append(events, defEvents...)
	}
	return events, nil
}

// UpdateProgress applies one observed value to one achievement by code.
// Unknown or inactive codes are a no-op: the achievement may have rotated
// out between observation and application.
func (s *ProgressService) UpdateProgress(
	ctx context.Context,
	repos command.Repositories,
	studentID, code string,
	observed int,
) ([]shared.Event, error) {
	active, err := repos.Achievements.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("achievements: list active: %w", err)
	}
	for _, def := range active {
		if def.Code == code {
			return s.updateProgress(ctx, repos, studentID, def, observed)
		}
	}
	return nil, nil
}

func (s *ProgressService) updateProgress(
	ctx context.Context,
	repos command.Repositories,
	studentID string,
	def achievement.Definition,
	observed int,
) ([]shared.Event, error) {
	progress, err := repos.Achievements.GetProgress(ctx, studentID, def.Code)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("achievements: load progress %s: %w", def.Code, err)
		}
		progress = &achievement.Progress{StudentID: studentID, Code: def.Code}
	}

	progress.Advance(observed, def.Target)

	var events []shared.Event
	if progress.Completed && !progress.ClaimedReward {
		// claimedReward is the fencing token: the XP grant and the flag flip
		// share the ambient transaction, so the reward lands exactly once.
		if err := s.claimReward(ctx, repos, studentID, def); err != nil {
			return nil, err
		}
		if err := progress.Claim(); err != nil {
			return nil, fmt.Errorf("achievements: claim %s: %w", def.Code, err)
		}
		events = append(events,
			shared.NewAchievementCompletedEvent(studentID, def.Code, def.RewardXP))
	}

	if err := repos.Achievements.SaveProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("achievements: save progress %s: %w", def.Code, err)
	}
	return events, nil
}

func (s *ProgressService) claimReward(
	ctx context.Context,
	repos command.Repositories,
	studentID string,
	def achievement.Definition,
) error {
	profile, err := repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("achievements: load profile: %w", err)
	}
	profile.GrantRewardXP(def.RewardXP)
	profile.RefreshLevel()
	if err := repos.Students.Update(ctx, profile); err != nil {
		return fmt.Errorf("achievements: persist reward: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OBSERVATION
// ══════════════════════════════════════════════════════════════════════════════

// observer holds the derived statistics one recompute pass reads from.
type observer struct {
	totalActivities int
	consecutiveDays int
	level           int
	totalMinutes    int
	pomodoros       int
	perfectDays     int
	earlyBird       int
	nightOwl        int
	uniqueCats      int
	countByCat      map[shared.Category]int
	minutesByCat    map[shared.Category]int
}

func (s *ProgressService) buildObserver(
	ctx context.Context,
	repos command.Repositories,
	studentID string,
) (*observer, error) {
	profile, err := repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("achievements: load profile: %w", err)
	}
	history, err := repos.Activities.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("achievements: load history: %w", err)
	}
	perfectDays, err := repos.Plans.CountCompletedDays(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("achievements: count completed days: %w", err)
	}
	dates, err := repos.Activities.DistinctDates(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("achievements: distinct dates: %w", err)
	}

	obs := &observer{
		totalActivities: len(history),
		consecutiveDays: consecutiveDays(dates),
		level:           profile.Level,
		totalMinutes:    profile.TotalMinutes,
		perfectDays:     perfectDays,
		countByCat:      make(map[shared.Category]int),
		minutesByCat:    make(map[shared.Category]int),
	}
	for _, act := range history {
		obs.countByCat[act.Category]++
		obs.minutesByCat[act.Category] += act.Minutes
		if act.IsPomodoro() {
			obs.pomodoros++
		}
		if timeutil.IsEarlyBird(act.CreatedAt) {
			obs.earlyBird++
		}
		if timeutil.IsNightOwl(act.CreatedAt) {
			obs.nightOwl++
		}
	}
	obs.uniqueCats = len(obs.countByCat)
	return obs, nil
}

// observe maps a definition's check type to its observed value.
func (o *observer) observe(def achievement.Definition) int {
	switch def.CheckType {
	case achievement.CheckTotalActivities:
		return o.totalActivities
	case achievement.CheckConsecutiveDays:
		return o.consecutiveDays
	case achievement.CheckLevel:
		return o.level
	case achievement.CheckTotalMinutes:
		return o.totalMinutes
	case achievement.CheckPomodoroSessions:
		return o.pomodoros
	case achievement.CheckPerfectDays:
		return o.perfectDays
	case achievement.CheckEarlyBird:
		return o.earlyBird
	case achievement.CheckNightOwl:
		return o.nightOwl
	case achievement.CheckUniqueCategories:
		return o.uniqueCats
	case achievement.CheckCategoryCount:
		return o.countByCat[shared.Category(def.CheckParam)]
	case achievement.CheckCategoryMinutes:
		return o.minutesByCat[shared.Category(def.CheckParam)]
	default:
		return 0
	}
}

// consecutiveDays walks distinct activity dates in descending order and
// stops at the first gap greater than one day.
func consecutiveDays(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	run := 1
	for i := 1; i < len(dates); i++ {
		if timeutil.DaysBetween(dates[i], dates[i-1]) > 1 {
			break
		}
		run++
	}
	return run
}
