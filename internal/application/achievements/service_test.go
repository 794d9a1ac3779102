package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
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
// In-memory store
// ─────────────────────────────────────────────────────────────────────────────

type memStore struct {
	profiles   map[string]*student.Profile
	activities []*activity.Activity
	plans      []*plan.Plan
	defs       map[string]achievement.Definition
	progress   map[string]*achievement.Progress
	history    []achievement.HistoryEntry
	marker     string
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]*student.Profile),
		defs:     make(map[string]achievement.Definition),
		progress: make(map[string]*achievement.Progress),
	}
}

func (m *memStore) repos() command.Repositories {
	return command.Repositories{
		Students:     (*memStudentRepo)(m),
		Activities:   (*memActivityRepo)(m),
		Plans:        (*memPlanRepo)(m),
		Badges:       (*memBadgeRepo)(m),
		Achievements: (*memAchievementRepo)(m),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos command.Repositories) error) error {
	return fn(ctx, m.repos())
}

type memStudentRepo memStore

func (m *memStudentRepo) Create(_ context.Context, p *student.Profile) error {
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memStudentRepo) GetByID(_ context.Context, id string) (*student.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, student.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (m *memStudentRepo) GetByOwner(_ context.Context, ownerID string) (*student.Profile, error) {
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			return p.Clone(), nil
		}
	}
	return nil, student.ErrProfileNotFound
}

func (m *memStudentRepo) GetByIDForUpdate(ctx context.Context, id string) (*student.Profile, error) {
	return m.GetByID(ctx, id)
}

func (m *memStudentRepo) Update(_ context.Context, p *student.Profile) error {
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memStudentRepo) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type memActivityRepo memStore

func (m *memActivityRepo) Create(_ context.Context, act *activity.Activity) error {
	m.activities = append(m.activities, act)
	return nil
}

func (m *memActivityRepo) SummarizeDay(_ context.Context, studentID string, date time.Time) (activity.DaySummary, error) {
	sum := activity.DaySummary{MinutesByCategory: make(map[shared.Category]int)}
	for _, act := range m.activities {
		if act.StudentID == studentID && timeutil.IsSameDay(act.ActivityDate, date) {
			sum.Count++
			sum.TotalMinutes += act.Minutes
			sum.MinutesByCategory[act.Category] += act.Minutes
		}
	}
	return sum, nil
}

func (m *memActivityRepo) ListByStudent(_ context.Context, studentID string) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, act := range m.activities {
		if act.StudentID == studentID {
			out = append(out, act)
		}
	}
	return out, nil
}

func (m *memActivityRepo) ListByStudentAndDate(_ context.Context, studentID string, date time.Time) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, act := range m.activities {
		if act.StudentID == studentID && timeutil.IsSameDay(act.ActivityDate, date) {
			out = append(out, act)
		}
	}
	return out, nil
}

func (m *memActivityRepo) DistinctDates(_ context.Context, studentID string) ([]time.Time, error) {
	seen := map[string]time.Time{}
	for _, act := range m.activities {
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

func (m *memActivityRepo) MinutesByCategory(_ context.Context, studentID string) (map[shared.Category]int, error) {
	out := make(map[shared.Category]int)
	for _, act := range m.activities {
		if act.StudentID == studentID {
			out[act.Category] += act.Minutes
		}
	}
	return out, nil
}

type memPlanRepo memStore

func (m *memPlanRepo) Create(_ context.Context, p *plan.Plan) error {
	m.plans = append(m.plans, p)
	return nil
}

func (m *memPlanRepo) GetByDate(_ context.Context, studentID string, date time.Time) (*plan.Plan, error) {
	for _, p := range m.plans {
		if p.StudentID == studentID && timeutil.IsSameDay(p.PlanDate, date) {
			return p, nil
		}
	}
	return nil, plan.ErrPlanNotFound
}

func (m *memPlanRepo) Update(_ context.Context, _ *plan.Plan) error { return nil }

func (m *memPlanRepo) WasCompletedOn(ctx context.Context, studentID string, date time.Time) (bool, error) {
	p, err := m.GetByDate(ctx, studentID, date)
	if err != nil {
		return false, nil
	}
	return p.IsCompleted(), nil
}

func (m *memPlanRepo) CountCompletedDays(_ context.Context, studentID string) (int, error) {
	count := 0
	for _, p := range m.plans {
		if p.StudentID == studentID && p.IsCompleted() {
			count++
		}
	}
	return count, nil
}

type memBadgeRepo memStore

func (m *memBadgeRepo) Create(_ context.Context, _ *badge.Badge) error { return nil }

func (m *memBadgeRepo) EarnedKeys(_ context.Context, _ string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (m *memBadgeRepo) ListByStudent(_ context.Context, _ string) ([]*badge.Badge, error) {
	return nil, nil
}

type memAchievementRepo memStore

func (m *memAchievementRepo) UpsertDefinition(_ context.Context, def achievement.Definition) error {
	m.defs[def.Code] = def
	return nil
}

func (m *memAchievementRepo) ListActive(_ context.Context) ([]achievement.Definition, error) {
	var out []achievement.Definition
	for _, def := range m.defs {
		if def.Active {
			out = append(out, def)
		}
	}
	return out, nil
}

func (m *memAchievementRepo) SetMonthlyActive(_ context.Context, codes []string, _ string) error {
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
	return nil
}

func (m *memAchievementRepo) GetProgress(_ context.Context, studentID, code string) (*achievement.Progress, error) {
	p, ok := m.progress[studentID+"/"+code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memAchievementRepo) ListProgress(_ context.Context, studentID string) ([]*achievement.Progress, error) {
	var out []*achievement.Progress
	for _, p := range m.progress {
		if p.StudentID == studentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memAchievementRepo) SaveProgress(_ context.Context, p *achievement.Progress) error {
	clone := *p
	m.progress[p.StudentID+"/"+p.Code] = &clone
	return nil
}

func (m *memAchievementRepo) DeleteProgressForStudent(_ context.Context, studentID string) error {
	for key, p := range m.progress {
		if p.StudentID == studentID {
			delete(m.progress, key)
		}
	}
	return nil
}

func (m *memAchievementRepo) AppendHistory(_ context.Context, entry achievement.HistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func (m *memAchievementRepo) ListHistory(_ context.Context, studentID string) ([]achievement.HistoryEntry, error) {
	var out []achievement.HistoryEntry
	for _, entry := range m.history {
		if entry.StudentID == studentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memAchievementRepo) LastRotatedMonth(_ context.Context) (string, error) {
	return m.marker, nil
}

func (m *memAchievementRepo) SetLastRotatedMonth(_ context.Context, monthKey string) error {
	m.marker = monthKey
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{Level: logger.LevelFatal})
}

func seedStudent(t *testing.T, store *memStore, id string) *student.Profile {
	t.Helper()
	p, err := student.NewProfile(student.NewProfileParams{
		ID:       id,
		OwnerID:  "owner-" + id,
		Nickname: "tester",
	})
	assert.NoError(t, err)
	store.profiles[id] = p
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress service
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdateProgress_SingleClaim(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	catalog := achievement.NewCatalog()
	def, ok := catalog.Get("getting_started") // target 10, reward 100
	assert.True(t, ok)
	assert.NoError(t, store.repos().Achievements.UpsertDefinition(context.Background(), def))

	svc := NewProgressService(catalog, quietLogger())

	events, err := svc.UpdateProgress(context.Background(), store.repos(), "s-1", def.Code, 12)
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	p := store.profiles["s-1"]
	assert.Equal(t, def.RewardXP, p.TotalXP)

	// Second invocation at/above target is a no-op with respect to XP.
	events, err = svc.UpdateProgress(context.Background(), store.repos(), "s-1", def.Code, 40)
	assert.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, def.RewardXP, store.profiles["s-1"].TotalXP)

	row, err := store.repos().Achievements.GetProgress(context.Background(), "s-1", def.Code)
	assert.NoError(t, err)
	assert.True(t, row.Completed)
	assert.True(t, row.ClaimedReward)
	assert.Equal(t, def.Target, row.Current, "progress clamps at target")
}

func TestUpdateProgress_UnknownCodeIsNoOp(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	svc := NewProgressService(achievement.NewCatalog(), quietLogger())

	events, err := svc.UpdateProgress(context.Background(), store.repos(), "s-1", "rotated_out", 99)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdateProgress_RewardRefreshesLevel(t *testing.T) {
	store := newMemStore()
	p := seedStudent(t, store, "s-1")
	p.TotalXP = 90
	p.RefreshLevel()

	catalog := achievement.NewCatalog()
	def, _ := catalog.Get("first_step") // reward 50
	assert.NoError(t, store.repos().Achievements.UpsertDefinition(context.Background(), def))

	svc := NewProgressService(catalog, quietLogger())
	_, err := svc.UpdateProgress(context.Background(), store.repos(), "s-1", def.Code, 1)
	assert.NoError(t, err)

	stored := store.profiles["s-1"]
	assert.Equal(t, 140, stored.TotalXP)
	assert.Equal(t, 2, stored.Level, "reward XP crosses the level-2 boundary")
}

func TestRecomputeFor_EmptyActiveSetIsBenign(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	svc := NewProgressService(achievement.NewCatalog(), quietLogger())

	events, err := svc.RecomputeFor(context.Background(), store.repos(), "s-1")
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecomputeFor_DerivesObservedValues(t *testing.T) {
	store := newMemStore()
	p := seedStudent(t, store, "s-1")

	today := timeutil.Today()
	for day := 0; day < 3; day++ {
		store.activities = append(store.activities, &activity.Activity{
			ID:           "a",
			StudentID:    "s-1",
			Category:     shared.CategoryStudy,
			Minutes:      30,
			XPEarned:     45,
			ActivityDate: today.AddDate(0, 0, -day),
			CreatedAt:    today.AddDate(0, 0, -day),
		})
	}
	p.TotalMinutes = 90

	catalog := achievement.NewCatalog()
	habit, _ := catalog.Get("habit_forming") // 3 consecutive days
	first, _ := catalog.Get("first_step")    // 1 activity
	assert.NoError(t, store.repos().Achievements.UpsertDefinition(context.Background(), habit))
	assert.NoError(t, store.repos().Achievements.UpsertDefinition(context.Background(), first))

	svc := NewProgressService(catalog, quietLogger())
	events, err := svc.RecomputeFor(context.Background(), store.repos(), "s-1")
	assert.NoError(t, err)
	assert.Len(t, events, 2, "both achievements complete")

	row, err := store.repos().Achievements.GetProgress(context.Background(), "s-1", "habit_forming")
	assert.NoError(t, err)
	assert.True(t, row.Completed)
}

func TestConsecutiveDays(t *testing.T) {
	today := timeutil.Today()

	assert.Equal(t, 0, consecutiveDays(nil))
	assert.Equal(t, 1, consecutiveDays([]time.Time{today}))
	assert.Equal(t, 3, consecutiveDays([]time.Time{
		today, today.AddDate(0, 0, -1), today.AddDate(0, 0, -2),
	}))
	// Gap of two days stops the walk.
	assert.Equal(t, 2, consecutiveDays([]time.Time{
		today, today.AddDate(0, 0, -1), today.AddDate(0, 0, -4), today.AddDate(0, 0, -5),
	}))
}

// ─────────────────────────────────────────────────────────────────────────────
// Rotation service
// ─────────────────────────────────────────────────────────────────────────────

func TestRotate_ActivatesMonthlySetAndSeeds(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")
	seedStudent(t, store, "s-2")

	catalog := achievement.NewCatalog()
	svc := NewRotationService(store, catalog, nil, nil, quietLogger())

	now := timeutil.Date(2026, 8, 1)
	assert.NoError(t, svc.Rotate(context.Background(), now))

	assert.Equal(t, "2026-08", store.marker)

	active, err := store.repos().Achievements.ListActive(context.Background())
	assert.NoError(t, err)
	// Base set plus the theme entries for August plus the 2/3/2/1 pool sample.
	assert.Len(t, active, len(catalog.Base())+len(catalog.ThemedFor(8))+8)

	rows, err := store.repos().Achievements.ListProgress(context.Background(), "s-1")
	assert.NoError(t, err)
	assert.Len(t, rows, len(catalog.Base())+len(catalog.ThemedFor(8))+8)
	for _, row := range rows {
		assert.Equal(t, 0, row.Current)
		assert.False(t, row.Completed)
	}
}

func TestRotate_SyncsBaseDefinitionsToStore(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	catalog := achievement.NewCatalog()
	svc := NewRotationService(store, catalog, nil, nil, quietLogger())

	assert.NoError(t, svc.Rotate(context.Background(), timeutil.Date(2026, 8, 1)))

	// ListActive is what RecomputeFor and the read API consume; the always-on
	// base set must come back from the store, not just the compiled catalog.
	active, err := store.repos().Achievements.ListActive(context.Background())
	assert.NoError(t, err)

	activeCodes := make(map[string]bool, len(active))
	for _, def := range active {
		activeCodes[def.Code] = true
	}
	for _, def := range catalog.Base() {
		assert.True(t, activeCodes[def.Code], "base achievement %s must be active in the store", def.Code)
	}
	assert.True(t, activeCodes["first_step"])
	assert.True(t, activeCodes["level_10"])

	// The next month's rotation deactivates only the monthly set.
	assert.NoError(t, svc.Rotate(context.Background(), timeutil.Date(2026, 9, 1)))
	active, err = store.repos().Achievements.ListActive(context.Background())
	assert.NoError(t, err)
	activeCodes = make(map[string]bool, len(active))
	for _, def := range active {
		activeCodes[def.Code] = true
	}
	assert.True(t, activeCodes["first_step"], "base set survives the monthly swap")
}

func TestRotate_SameMonthIsNoOp(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	catalog := achievement.NewCatalog()
	svc := NewRotationService(store, catalog, nil, nil, quietLogger())

	now := timeutil.Date(2026, 8, 1)
	assert.NoError(t, svc.Rotate(context.Background(), now))

	// Simulate mid-month progress; a re-run must not wipe it.
	key := "s-1/first_step"
	row := store.progress[key]
	assert.NotNil(t, row)
	row.Current = 1
	row.Completed = true

	assert.NoError(t, svc.Rotate(context.Background(), timeutil.Date(2026, 8, 15)))
	assert.Equal(t, 1, store.progress[key].Current, "same-month re-run must not reset progress")
}

func TestRotate_ArchivesCompletionsAcrossMonths(t *testing.T) {
	store := newMemStore()
	seedStudent(t, store, "s-1")

	catalog := achievement.NewCatalog()
	svc := NewRotationService(store, catalog, nil, nil, quietLogger())

	assert.NoError(t, svc.Rotate(context.Background(), timeutil.Date(2026, 7, 1)))

	completedAt := time.Now().UTC()
	row := store.progress["s-1/first_step"]
	row.Current = 1
	row.Completed = true
	row.CompletedAt = &completedAt

	assert.NoError(t, svc.Rotate(context.Background(), timeutil.Date(2026, 8, 1)))

	assert.Len(t, store.history, 1)
	assert.Equal(t, "first_step", store.history[0].Code)
	assert.Equal(t, "2026-07", store.history[0].MonthKey)

	// Fresh month starts from zero.
	fresh := store.progress["s-1/first_step"]
	assert.NotNil(t, fresh)
	assert.Equal(t, 0, fresh.Current)
	assert.False(t, fresh.Completed)
}

type fakeLock struct {
	held map[string]bool
}

func (l *fakeLock) Acquire(_ context.Context, monthKey string) (bool, error) {
	if l.held[monthKey] {
		return false, nil
	}
	l.held[monthKey] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, monthKey string) error {
	delete(l.held, monthKey)
	return nil
}

func TestRotate_LockConflict(t *testing.T) {
	store := newMemStore()
	lock := &fakeLock{held: map[string]bool{"2026-08": true}}

	svc := NewRotationService(store, achievement.NewCatalog(), lock, nil, quietLogger())

	err := svc.Rotate(context.Background(), timeutil.Date(2026, 8, 1))
	assert.ErrorIs(t, err, achievement.ErrRotationConflict)
	assert.Empty(t, store.marker, "conflicting run must not rotate")
}
