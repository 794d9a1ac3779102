package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/badge"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory repositories
// ─────────────────────────────────────────────────────────────────────────────

type memStudents struct {
	profiles map[string]*student.Profile
}

func (m *memStudents) Create(_ context.Context, p *student.Profile) error {
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memStudents) GetByID(_ context.Context, id string) (*student.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, student.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (m *memStudents) GetByOwner(_ context.Context, ownerID string) (*student.Profile, error) {
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			return p.Clone(), nil
		}
	}
	return nil, student.ErrProfileNotFound
}

func (m *memStudents) GetByIDForUpdate(ctx context.Context, id string) (*student.Profile, error) {
	return m.GetByID(ctx, id)
}

func (m *memStudents) Update(_ context.Context, p *student.Profile) error {
	if _, ok := m.profiles[p.ID]; !ok {
		return student.ErrProfileNotFound
	}
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memStudents) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type memActivities struct {
	rows []*activity.Activity
}

func (m *memActivities) Create(_ context.Context, act *activity.Activity) error {
	clone := *act
	m.rows = append(m.rows, &clone)
	return nil
}

func (m *memActivities) SummarizeDay(_ context.Context, studentID string, date time.Time) (activity.DaySummary, error) {
	sum := activity.DaySummary{MinutesByCategory: make(map[shared.Category]int)}
	for _, act := range m.rows {
		if act.StudentID != studentID || !timeutil.IsSameDay(act.ActivityDate, date) {
			continue
		}
		sum.Count++
		sum.TotalMinutes += act.Minutes
		sum.MinutesByCategory[act.Category] += act.Minutes
	}
	return sum, nil
}

func (m *memActivities) ListByStudent(_ context.Context, studentID string) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, act := range m.rows {
		if act.StudentID == studentID {
			out = append(out, act)
		}
	}
	return out, nil
}

func (m *memActivities) ListByStudentAndDate(_ context.Context, studentID string, date time.Time) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, act := range m.rows {
		if act.StudentID == studentID && timeutil.IsSameDay(act.ActivityDate, date) {
			out = append(out, act)
		}
	}
	return out, nil
}

func (m *memActivities) DistinctDates(_ context.Context, studentID string) ([]time.Time, error) {
	seen := map[string]time.Time{}
	for _, act := range m.rows {
		if act.StudentID == studentID {
			seen[timeutil.DateKey(act.ActivityDate)] = timeutil.StartOfDay(act.ActivityDate)
		}
	}
	var out []time.Time
	for _, d := range seen {
		out = append(out, d)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].After(out[i]) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memActivities) MinutesByCategory(_ context.Context, studentID string) (map[shared.Category]int, error) {
	out := make(map[shared.Category]int)
	for _, act := range m.rows {
		if act.StudentID == studentID {
			out[act.Category] += act.Minutes
		}
	}
	return out, nil
}

type memPlans struct {
	plans []*plan.Plan
}

func (m *memPlans) Create(_ context.Context, p *plan.Plan) error {
	m.plans = append(m.plans, p)
	return nil
}

func (m *memPlans) GetByDate(_ context.Context, studentID string, date time.Time) (*plan.Plan, error) {
	for _, p := range m.plans {
		if p.StudentID == studentID && timeutil.IsSameDay(p.PlanDate, date) {
			return p, nil
		}
	}
	return nil, plan.ErrPlanNotFound
}

func (m *memPlans) Update(_ context.Context, _ *plan.Plan) error { return nil }

func (m *memPlans) WasCompletedOn(ctx context.Context, studentID string, date time.Time) (bool, error) {
	p, err := m.GetByDate(ctx, studentID, date)
	if err != nil {
		return false, nil
	}
	return p.IsCompleted(), nil
}

func (m *memPlans) CountCompletedDays(_ context.Context, studentID string) (int, error) {
	count := 0
	for _, p := range m.plans {
		if p.StudentID == studentID && p.IsCompleted() {
			count++
		}
	}
	return count, nil
}

type memBadges struct {
	rows []*badge.Badge
}

func (m *memBadges) Create(_ context.Context, b *badge.Badge) error {
	for _, existing := range m.rows {
		if existing.StudentID == b.StudentID && existing.Key() == b.Key() {
			return shared.ErrAlreadyExists
		}
	}
	m.rows = append(m.rows, b)
	return nil
}

func (m *memBadges) EarnedKeys(_ context.Context, studentID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, b := range m.rows {
		if b.StudentID == studentID {
			out[b.Key()] = true
		}
	}
	return out, nil
}

func (m *memBadges) ListByStudent(_ context.Context, studentID string) ([]*badge.Badge, error) {
	var out []*badge.Badge
	for _, b := range m.rows {
		if b.StudentID == studentID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memAchievements struct {
	defs     map[string]achievement.Definition
	progress map[string]*achievement.Progress
	history  []achievement.HistoryEntry
	marker   string
}

func newMemAchievements() *memAchievements {
	return &memAchievements{
		defs:     make(map[string]achievement.Definition),
		progress: make(map[string]*achievement.Progress),
	}
}

func (m *memAchievements) UpsertDefinition(_ context.Context, def achievement.Definition) error {
	m.defs[def.Code] = def
	return nil
}

func (m *memAchievements) ListActive(_ context.Context) ([]achievement.Definition, error) {
	var out []achievement.Definition
	for _, def := range m.defs {
		if def.Active {
			out = append(out, def)
		}
	}
	return out, nil
}

func (m *memAchievements) SetMonthlyActive(_ context.Context, codes []string, monthKey string) error {
	keep := make(map[string]bool, len(codes))
	for _, code := range codes {
		keep[code] = true
	}
	for code, def := range m.defs {
		if def.Monthly {
			def.Active = keep[code]
			m.defs[code] = def
		}
	}
	_ = monthKey
	return nil
}

func (m *memAchievements) GetProgress(_ context.Context, studentID, code string) (*achievement.Progress, error) {
	p, ok := m.progress[studentID+"/"+code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memAchievements) ListProgress(_ context.Context, studentID string) ([]*achievement.Progress, error) {
	var out []*achievement.Progress
	for _, p := range m.progress {
		if p.StudentID == studentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memAchievements) SaveProgress(_ context.Context, p *achievement.Progress) error {
	clone := *p
	m.progress[p.StudentID+"/"+p.Code] = &clone
	return nil
}

func (m *memAchievements) DeleteProgressForStudent(_ context.Context, studentID string) error {
	for key, p := range m.progress {
		if p.StudentID == studentID {
			delete(m.progress, key)
		}
	}
	return nil
}

func (m *memAchievements) AppendHistory(_ context.Context, entry achievement.HistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func (m *memAchievements) ListHistory(_ context.Context, studentID string) ([]achievement.HistoryEntry, error) {
	var out []achievement.HistoryEntry
	for _, entry := range m.history {
		if entry.StudentID == studentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memAchievements) LastRotatedMonth(_ context.Context) (string, error) {
	return m.marker, nil
}

func (m *memAchievements) SetLastRotatedMonth(_ context.Context, monthKey string) error {
	m.marker = monthKey
	return nil
}

// memUoW is a pass-through unit of work over the in-memory repositories.
type memUoW struct {
	repos Repositories
}

func (u *memUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return fn(ctx, u.repos)
}

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────────────────

type fixture struct {
	handler   *RecordActivityHandler
	students  *memStudents
	activity  *memActivities
	plans     *memPlans
	badges    *memBadges
	publisher *capturePublisher
	profile   *student.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	profile, err := student.NewProfile(student.NewProfileParams{
		ID:       "s-1",
		OwnerID:  "u-1",
		Nickname: "tester",
	})
	assert.NoError(t, err)

	students := &memStudents{profiles: map[string]*student.Profile{profile.ID: profile.Clone()}}
	activities := &memActivities{}
	plans := &memPlans{}
	badges := &memBadges{}
	publisher := &capturePublisher{}

	uow := &memUoW{repos: Repositories{
		Students:     students,
		Activities:   activities,
		Plans:        plans,
		Badges:       badges,
		Achievements: newMemAchievements(),
	}}

	quiet := logger.New(logger.Options{Level: logger.LevelFatal})
	handler := NewRecordActivityHandler(uow, nil, publisher, nil, quiet)

	return &fixture{
		handler:   handler,
		students:  students,
		activity:  activities,
		plans:     plans,
		badges:    badges,
		publisher: publisher,
		profile:   profile,
	}
}

func (f *fixture) record(t *testing.T, minutes int, category shared.Category) *RecordActivityResult {
	t.Helper()
	result, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID: "s-1",
		CallerID:  "u-1",
		Title:     "세션",
		Category:  category,
		Minutes:   minutes,
	})
	assert.NoError(t, err)
	return result
}

func (f *fixture) stored(t *testing.T) *student.Profile {
	t.Helper()
	p, err := f.students.GetByID(context.Background(), "s-1")
	assert.NoError(t, err)
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHandle_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID: "s-1",
		CallerID:  "u-1",
		Title:     "x",
		Category:  "SLEEPING",
		Minutes:   30,
	})
	assert.ErrorIs(t, err, activity.ErrInvalidCategory)

	_, err = f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID: "s-1",
		CallerID:  "u-1",
		Title:     "x",
		Category:  shared.CategoryStudy,
		Minutes:   61,
	})
	assert.ErrorIs(t, err, activity.ErrInvalidDuration)
	assert.Empty(t, f.activity.rows, "failed validation must leave no rows")
}

func TestHandle_Authorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID: "s-1",
		CallerID:  "intruder",
		Title:     "x",
		Category:  shared.CategoryStudy,
		Minutes:   30,
	})
	assert.ErrorIs(t, err, student.ErrNotOwner)
	assert.Empty(t, f.activity.rows)
}

func TestHandle_EndToEnd_Study30(t *testing.T) {
	f := newFixture(t)

	result := f.record(t, 30, shared.CategoryStudy)

	// baseXP(30)=30, weight STUDY 1.5, no streak → 45.
	assert.Equal(t, 45, result.Activity.XPEarned)

	p := f.stored(t)
	assert.Equal(t, 45, p.TotalXP)
	assert.Equal(t, 30, p.TotalMinutes)
	assert.Equal(t, 1, p.TotalDays)
	assert.Equal(t, 10+4, p.Stats.Intelligence, "floor(45/10) stat points")
	assert.Equal(t, 1, p.Level)

	assert.Equal(t, shared.CategoryStudy, result.DailyLimit.Category)
	assert.Equal(t, 30, result.DailyLimit.TodayMinutes)
	assert.False(t, result.DailyLimit.IsLimitReached)
}

func TestHandle_DailyCountCapRejected(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 30; i++ {
		f.record(t, 2, shared.CategoryOther)
	}

	_, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID: "s-1",
		CallerID:  "u-1",
		Title:     "31st",
		Category:  shared.CategoryOther,
		Minutes:   2,
	})
	assert.ErrorIs(t, err, shared.ErrCapExceeded)

	var capErr *shared.CapExceededError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, 30, capErr.Current)
	assert.Len(t, f.activity.rows, 30, "rejected submission must not persist")
}

func TestHandle_MilestoneSingleFire(t *testing.T) {
	f := newFixture(t)

	// Just below the level-10 boundary; the submission crosses it.
	p := f.stored(t)
	p.TotalXP = 1300
	p.RefreshLevel()
	assert.Equal(t, 9, p.Level)
	assert.NoError(t, f.students.Update(context.Background(), p))

	result := f.record(t, 40, shared.CategoryStudy) // +60 XP → 1360

	assert.NotNil(t, result.LevelUp)
	assert.Equal(t, 9, result.LevelUp.PreviousLevel)
	assert.Equal(t, 10, result.LevelUp.NewLevel)
	assert.True(t, result.LevelUp.IsMilestone)
	assert.Equal(t, 10, result.LevelUp.MilestoneLevel)

	milestones := 0
	for _, event := range f.publisher.events {
		if event.EventType() == shared.EventMilestoneReached {
			milestones++
		}
	}
	assert.Equal(t, 1, milestones)
}

func TestHandle_ReDerivability(t *testing.T) {
	f := newFixture(t)

	f.record(t, 30, shared.CategoryStudy)
	f.record(t, 45, shared.CategoryReading)
	f.record(t, 20, shared.CategoryExercise)

	sumXP, sumMinutes := 0, 0
	for _, act := range f.activity.rows {
		sumXP += act.XPEarned
		sumMinutes += act.Minutes
	}

	p := f.stored(t)
	assert.Equal(t, sumXP, p.TotalXP)
	assert.Equal(t, sumMinutes, p.TotalMinutes)
}

func TestHandle_PlanCompletionAdvancesStreak(t *testing.T) {
	f := newFixture(t)

	today := timeutil.Today()
	item := &plan.Item{ID: "item-1", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "수학"}
	todayPlan, err := plan.NewPlan(plan.NewPlanParams{
		ID:        "plan-1",
		StudentID: "s-1",
		PlanDate:  today,
		Items:     []*plan.Item{item},
	})
	assert.NoError(t, err)
	assert.NoError(t, f.plans.Create(context.Background(), todayPlan))

	// Yesterday's plan was fully completed: streak continues.
	doneItem := &plan.Item{ID: "item-0", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "영어"}
	yesterdayPlan, err := plan.NewPlan(plan.NewPlanParams{
		ID:        "plan-0",
		StudentID: "s-1",
		PlanDate:  today.AddDate(0, 0, -1),
		Items:     []*plan.Item{doneItem},
	})
	assert.NoError(t, err)
	_, err = yesterdayPlan.CompleteItem("item-0", 30)
	assert.NoError(t, err)
	assert.NoError(t, f.plans.Create(context.Background(), yesterdayPlan))

	p := f.stored(t)
	p.CurrentStreak = 5
	p.LongestStreak = 5
	assert.NoError(t, f.students.Update(context.Background(), p))

	result, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID:  "s-1",
		CallerID:   "u-1",
		Title:      "수학 복습",
		Category:   shared.CategoryStudy,
		Minutes:    30,
		PlanItemID: "item-1",
	})
	assert.NoError(t, err)
	assert.True(t, result.PlanCompleted)
	assert.Equal(t, 6, f.stored(t).CurrentStreak)

	// The session's minutes land on the completed item.
	savedPlan, err := f.plans.GetByDate(context.Background(), "s-1", today)
	assert.NoError(t, err)
	assert.True(t, savedPlan.Items[0].Completed)
	assert.Equal(t, 30, savedPlan.Items[0].ActualMinutes)
}

func TestHandle_PlanCompletionResetsStreakAfterGap(t *testing.T) {
	f := newFixture(t)

	today := timeutil.Today()
	item := &plan.Item{ID: "item-1", Category: shared.CategoryReading, TargetMinutes: 20, Title: "독서"}
	todayPlan, err := plan.NewPlan(plan.NewPlanParams{
		ID:        "plan-1",
		StudentID: "s-1",
		PlanDate:  today,
		Items:     []*plan.Item{item},
	})
	assert.NoError(t, err)
	assert.NoError(t, f.plans.Create(context.Background(), todayPlan))

	p := f.stored(t)
	p.CurrentStreak = 5
	p.LongestStreak = 7
	assert.NoError(t, f.students.Update(context.Background(), p))

	result, err := f.handler.Handle(context.Background(), RecordActivityCommand{
		StudentID:  "s-1",
		CallerID:   "u-1",
		Title:      "독서",
		Category:   shared.CategoryReading,
		Minutes:    20,
		PlanItemID: "item-1",
	})
	assert.NoError(t, err)
	assert.True(t, result.PlanCompleted)

	stored := f.stored(t)
	assert.Equal(t, 1, stored.CurrentStreak, "no completed plan yesterday resets the streak")
	assert.Equal(t, 7, stored.LongestStreak)
}

func TestHandle_StreakBonusApplied(t *testing.T) {
	f := newFixture(t)

	p := f.stored(t)
	p.CurrentStreak = 3
	assert.NoError(t, f.students.Update(context.Background(), p))

	result := f.record(t, 30, shared.CategoryStudy)

	// 30 * 1.5 * 1.2 = 54.
	assert.Equal(t, 54, result.Activity.XPEarned)
}

func TestHandle_TotalDaysBadgeEarned(t *testing.T) {
	f := newFixture(t)

	p := f.stored(t)
	p.TotalDays = 9
	assert.NoError(t, f.students.Update(context.Background(), p))

	// First activity of the day tips TotalDays to 10: bronze.
	result := f.record(t, 10, shared.CategoryOther)
	assert.GreaterOrEqual(t, result.NewBadgeCount, 1)

	earned, err := f.badges.EarnedKeys(context.Background(), "s-1")
	assert.NoError(t, err)
	assert.True(t, earned["total_days:bronze"])
}

func TestHandle_BadgeAtMostOnce(t *testing.T) {
	f := newFixture(t)

	p := f.stored(t)
	p.TotalDays = 10
	assert.NoError(t, f.students.Update(context.Background(), p))

	first := f.record(t, 10, shared.CategoryOther)
	assert.GreaterOrEqual(t, first.NewBadgeCount, 1)

	second := f.record(t, 10, shared.CategoryOther)
	assert.Equal(t, 0, second.NewBadgeCount, "unchanged context grants nothing")
}
