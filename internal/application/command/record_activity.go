package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/badge"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// The transactional core of the progression engine: one submitted session
// becomes an activity row, aggregate updates, a level recompute, streak and
// badge evaluation - all inside a single transaction.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data to record one session.
type RecordActivityCommand struct {
	// StudentID is the target profile.
	StudentID string

	// CallerID is the authenticated owner submitting the request.
	CallerID string

	// Title is a short required label.
	Title string

	// Description is an optional note.
	Description string

	// Category is one of the six activity categories.
	Category shared.Category

	// Minutes is the session duration (1-60).
	Minutes int

	// PlanItemID optionally links the session to today's plan.
	PlanItemID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command shape. Fails fast with no side effects.
func (c RecordActivityCommand) Validate() error {
	if c.StudentID == "" {
		return fmt.Errorf("record_activity: student_id is required: %w", shared.ErrValidation)
	}
	if c.CallerID == "" {
		return fmt.Errorf("record_activity: caller_id is required: %w", shared.ErrValidation)
	}
	if c.Title == "" {
		return fmt.Errorf("record_activity: %w", activity.ErrEmptyTitle)
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("record_activity: %w: %s", activity.ErrInvalidCategory, c.Category)
	}
	if c.Minutes < 1 || c.Minutes > progression.MaxSessionMinutes {
		return fmt.Errorf("record_activity: %w: %d", activity.ErrInvalidDuration, c.Minutes)
	}
	return nil
}

// LevelUpDetail describes a level change caused by the submission.
type LevelUpDetail struct {
	PreviousLevel  int
	NewLevel       int
	IsMilestone    bool
	MilestoneLevel int
}

// DailyLimitDetail reports the caller's remaining headroom in the category.
type DailyLimitDetail struct {
	Category       shared.Category
	TodayMinutes   int
	Limit          int
	IsLimitReached bool
}

// RecordActivityResult contains the outcome of a recorded session.
type RecordActivityResult struct {
	// Activity is the persisted record.
	Activity *activity.Activity

	// NewBadgeCount is the number of badges earned by this submission.
	NewBadgeCount int

	// LevelUp is set when the submission raised the level.
	LevelUp *LevelUpDetail

	// PlanCompleted is true when this submission finished today's plan.
	PlanCompleted bool

	// DailyLimit reports category headroom after the submission.
	DailyLimit DailyLimitDetail

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRecomputer re-derives achievement progress for one student
// inside the ambient transaction. Failures are isolated: a broken check must
// not abort the recorded activity.
type AchievementRecomputer interface {
	RecomputeFor(ctx context.Context, repos Repositories, studentID string) ([]shared.Event, error)
}

// RecordActivityHandler handles the RecordActivityCommand.
type RecordActivityHandler struct {
	uow            UnitOfWork
	achievements   AchievementRecomputer
	eventPublisher shared.EventPublisher
	cache          student.Cache
	log            *logger.Logger
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
// cache may be nil when no cache layer is wired.
func NewRecordActivityHandler(
	uow UnitOfWork,
	achievements AchievementRecomputer,
	eventPublisher shared.EventPublisher,
	cache student.Cache,
	log *logger.Logger,
) *RecordActivityHandler {
	return &RecordActivityHandler{
		uow:            uow,
		achievements:   achievements,
		eventPublisher: eventPublisher,
		cache:          cache,
		log:            log,
	}
}

// Handle executes the record activity command.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	today := timeutil.Today()
	result := &RecordActivityResult{}

	err := h.uow.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		// Re-read the aggregate inside the transaction with a row lock:
		// submissions for the same student serialize here.
		profile, err := repos.Students.GetByIDForUpdate(ctx, cmd.StudentID)
		if err != nil {
			return fmt.Errorf("record_activity: load profile: %w", err)
		}

		if !profile.IsOwnedBy(cmd.CallerID) {
			return fmt.Errorf("record_activity: %w", student.ErrNotOwner)
		}

		day, err := repos.Activities.SummarizeDay(ctx, cmd.StudentID, today)
		if err != nil {
			return fmt.Errorf("record_activity: summarize day: %w", err)
		}

		// Volume guards are sequential gates: count first, then minutes.
		if day.Count >= progression.MaxDailyActivities {
			return &shared.CapExceededError{
				Resource:  "daily_activities",
				Limit:     progression.MaxDailyActivities,
				Current:   day.Count,
				Requested: 1,
			}
		}
		if day.TotalMinutes+cmd.Minutes > progression.MaxDailyMinutes {
			return &shared.CapExceededError{
				Resource:  "daily_minutes",
				Limit:     progression.MaxDailyMinutes,
				Current:   day.TotalMinutes,
				Requested: cmd.Minutes,
			}
		}

		// First-of-day detection uses the pre-insert count.
		firstOfDay := day.Count == 0

		categoryMinutes := day.MinutesByCategory[cmd.Category]
		xp := progression.ComputeXP(cmd.Minutes, cmd.Category, categoryMinutes, profile.HasActiveStreak())
		points := progression.StatPointsFor(cmd.Category, xp)

		act, err := activity.NewActivity(activity.NewActivityParams{
			ID:           uuid.NewString(),
			StudentID:    cmd.StudentID,
			Category:     cmd.Category,
			Minutes:      cmd.Minutes,
			Title:        cmd.Title,
			Description:  cmd.Description,
			ActivityDate: today,
		})
		if err != nil {
			return fmt.Errorf("record_activity: %w", err)
		}
		act.Award(xp, points)

		if err := repos.Activities.Create(ctx, act); err != nil {
			return fmt.Errorf("record_activity: persist activity: %w", err)
		}

		recorded := shared.NewActivityRecordedEvent(cmd.StudentID, act.ID, cmd.Category, cmd.Minutes, xp)
		recorded.CorrelationID = cmd.CorrelationID
		events := []shared.Event{recorded}

		if cmd.PlanItemID != "" {
			planEvents, completed, err := h.linkPlanItem(ctx, repos, profile, cmd, today)
			if err != nil {
				return err
			}
			result.PlanCompleted = completed
			events = append(events, planEvents...)
		}

		profile.ApplyActivity(xp, cmd.Minutes, points, firstOfDay)

		previousLevel, newLevel := profile.RefreshLevel()
		if newLevel > previousLevel {
			if err := h.grantLevelUpBonuses(ctx, repos, profile, previousLevel, newLevel); err != nil {
				return err
			}

			detail := &LevelUpDetail{PreviousLevel: previousLevel, NewLevel: newLevel}
			if milestone, ok := student.MilestoneCrossed(previousLevel, newLevel); ok {
				detail.IsMilestone = true
				detail.MilestoneLevel = milestone
				reached := shared.NewMilestoneReachedEvent(cmd.StudentID, milestone)
				reached.CorrelationID = cmd.CorrelationID
				events = append(events, reached)
			}
			result.LevelUp = detail
			levelUp := shared.NewLevelUpEvent(cmd.StudentID, previousLevel, newLevel)
			levelUp.CorrelationID = cmd.CorrelationID
			events = append(events, levelUp)
		}

		badgeEvents, newBadges, err := h.evaluateBadges(ctx, repos, profile)
		if err != nil {
			return err
		}
		result.NewBadgeCount = newBadges
		events = append(events, badgeEvents...)

		if err := repos.Students.Update(ctx, profile); err != nil {
			return fmt.Errorf("record_activity: persist profile: %w", err)
		}

		// Achievement progress is isolated: one broken check never costs the
		// student their recorded activity.
		if h.achievements != nil {
			achievementEvents, err := h.achievements.RecomputeFor(ctx, repos, cmd.StudentID)
			if err != nil {
				h.log.Warn("achievement recompute failed",
					logger.String("student_id", cmd.StudentID), logger.Err(err))
			} else {
				events = append(events, achievementEvents...)
			}
		}

		result.Activity = act
		result.DailyLimit = h.dailyLimit(cmd.Category, categoryMinutes+cmd.Minutes)
		result.Events = events
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.afterCommit(ctx, cmd.StudentID, result.Events)
	return result, nil
}

// linkPlanItem marks a plan item complete and, when that closes the plan,
// advances the streak.
func (h *RecordActivityHandler) linkPlanItem(
	ctx context.Context,
	repos Repositories,
	profile *student.Profile,
	cmd RecordActivityCommand,
	today time.Time,
) ([]shared.Event, bool, error) {
	todayPlan, err := repos.Plans.GetByDate(ctx, cmd.StudentID, today)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) || errors.Is(err, shared.ErrNotFound) {
			return nil, false, fmt.Errorf("record_activity: plan item %s: %w", cmd.PlanItemID, shared.ErrNotFound)
		}
		return nil, false, fmt.Errorf("record_activity: load plan: %w", err)
	}

	became, err := todayPlan.CompleteItem(cmd.PlanItemID, cmd.Minutes)
	if err != nil {
		return nil, false, fmt.Errorf("record_activity: plan item %s: %w", cmd.PlanItemID, shared.ErrNotFound)
	}
	if err := repos.Plans.Update(ctx, todayPlan); err != nil {
		return nil, false, fmt.Errorf("record_activity: persist plan: %w", err)
	}
	if !became {
		return nil, false, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	yesterdayDone, err := repos.Plans.WasCompletedOn(ctx, cmd.StudentID, yesterday)
	if err != nil {
		return nil, false, fmt.Errorf("record_activity: check yesterday plan: %w", err)
	}

	previous, broken := profile.ContinueStreak(yesterdayDone)

	completed := shared.NewPlanCompletedEvent(cmd.StudentID, todayPlan.ID, profile.CurrentStreak)
	completed.CorrelationID = cmd.CorrelationID
	events := []shared.Event{completed}
	if broken {
		brokenEvent := shared.NewStreakBrokenEvent(cmd.StudentID, previous)
		brokenEvent.CorrelationID = cmd.CorrelationID
		events = append(events, brokenEvent)
	}
	return events, true, nil
}

// grantLevelUpBonuses replays the activity history over the XP windows of
// every completed level and grants +1 to the stat of each category touched.
func (h *RecordActivityHandler) grantLevelUpBonuses(
	ctx context.Context,
	repos Repositories,
	profile *student.Profile,
	previousLevel, newLevel int,
) error {
	history, err := repos.Activities.ListByStudent(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("record_activity: load history: %w", err)
	}

	for level := previousLevel; level < newLevel; level++ {
		for _, stat := range categoriesInLevelWindow(history, level) {
			profile.GrantLevelUpBonus(stat)
		}
	}
	return nil
}

// categoriesInLevelWindow returns the stats mapped from the unique categories
// whose XP intersects the cumulative window of the given level. History must
// be ordered by creation time ascending.
func categoriesInLevelWindow(history []*activity.Activity, level int) []shared.Stat {
	windowStart, windowEnd := progression.XPRangeForLevel(level)

	touched := make(map[shared.Category]bool)
	cumulative := 0
	for _, act := range history {
		actStart := cumulative
		cumulative += act.XPEarned
		if actStart < windowEnd && cumulative > windowStart {
			touched[act.Category] = true
		}
		if actStart >= windowEnd {
			break
		}
	}

	var stats []shared.Stat
	for _, cat := range shared.AllCategories() {
		if touched[cat] {
			stats = append(stats, progression.CategoryToStat(cat))
		}
	}
	return stats
}

// evaluateBadges snapshots post-update aggregates and awards anything new.
func (h *RecordActivityHandler) evaluateBadges(
	ctx context.Context,
	repos Repositories,
	profile *student.Profile,
) ([]shared.Event, int, error) {
	minutesByCategory, err := repos.Activities.MinutesByCategory(ctx, profile.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("record_activity: category minutes: %w", err)
	}
	earned, err := repos.Badges.EarnedKeys(ctx, profile.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("record_activity: earned badges: %w", err)
	}

	candidates := badge.Evaluate(badge.Snapshot{
		Level:             profile.Level,
		CurrentStreak:     profile.CurrentStreak,
		LongestStreak:     profile.LongestStreak,
		TotalDays:         profile.TotalDays,
		MinutesByCategory: minutesByCategory,
	}, earned)

	var events []shared.Event
	for _, cand := range candidates {
		b, err := badge.NewBadge(badge.NewBadgeParams{
			ID:        uuid.NewString(),
			StudentID: profile.ID,
			Type:      cand.Type,
			Category:  cand.Category,
			Tier:      cand.Tier,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("record_activity: build badge: %w", err)
		}
		if err := repos.Badges.Create(ctx, b); err != nil {
			return nil, 0, fmt.Errorf("record_activity: persist badge: %w", err)
		}
		events = append(events, shared.NewBadgeEarnedEvent(profile.ID, string(cand.Type), string(cand.Tier)))
	}
	return events, len(candidates), nil
}

func (h *RecordActivityHandler) dailyLimit(category shared.Category, todayMinutes int) DailyLimitDetail {
	limit := progression.DailyCap(category)
	return DailyLimitDetail{
		Category:       category,
		TodayMinutes:   todayMinutes,
		Limit:          limit,
		IsLimitReached: todayMinutes >= limit,
	}
}

// afterCommit publishes collected events and drops the stale cache entry.
// Both are best-effort: the transaction is already committed.
func (h *RecordActivityHandler) afterCommit(ctx context.Context, studentID string, events []shared.Event) {
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, studentID); err != nil {
			h.log.Warn("cache invalidation failed",
				logger.String("student_id", studentID), logger.Err(err))
		}
	}
	if h.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := h.eventPublisher.Publish(event); err != nil {
			h.log.Warn("event publish failed",
				logger.String("event_type", string(event.EventType())), logger.Err(err))
		}
	}
}
