package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

func TestRequiredXP_Monotonic(t *testing.T) {
	prev := 0
	for level := 1; level <= MaxLevel; level++ {
		required := RequiredXP(level)
		assert.GreaterOrEqual(t, required, prev, "level %d", level)
		prev = required
	}

	assert.Equal(t, 100, RequiredXP(1))
	assert.Equal(t, 110, RequiredXP(2))
	assert.Equal(t, 121, RequiredXP(3))
}

func TestLevelFromTotalXP_Boundaries(t *testing.T) {
	state := LevelFromTotalXP(0)
	assert.Equal(t, 1, state.Level)
	assert.Equal(t, 0, state.Experience)
	assert.Equal(t, 100, state.RequiredXP)

	// One short of level 2.
	state = LevelFromTotalXP(99)
	assert.Equal(t, 1, state.Level)
	assert.Equal(t, 99, state.Experience)

	// Exactly at the threshold.
	state = LevelFromTotalXP(100)
	assert.Equal(t, 2, state.Level)
	assert.Equal(t, 0, state.Experience)
	assert.Equal(t, 110, state.RequiredXP)

	// 100 + 110 = level 3 threshold.
	state = LevelFromTotalXP(210)
	assert.Equal(t, 3, state.Level)
	assert.Equal(t, 0, state.Experience)
}

func TestLevelFromTotalXP_Monotonic(t *testing.T) {
	prevLevel := 0
	for xp := 0; xp <= 50000; xp += 37 {
		state := LevelFromTotalXP(xp)
		assert.GreaterOrEqual(t, state.Level, prevLevel, "xp=%d", xp)
		prevLevel = state.Level
	}
}

func TestLevelFromTotalXP_Deterministic(t *testing.T) {
	for _, xp := range []int{0, 45, 100, 999, 12345} {
		first := LevelFromTotalXP(xp)
		second := LevelFromTotalXP(xp)
		assert.Equal(t, first, second, "xp=%d", xp)
	}
}

func TestLevelFromTotalXP_CapsAtMaxLevel(t *testing.T) {
	// An absurd surplus must not advance past MaxLevel.
	state := LevelFromTotalXP(1 << 30)
	assert.Equal(t, MaxLevel, state.Level)
	assert.LessOrEqual(t, state.Experience, state.RequiredXP)
}

func TestLevelFromTotalXP_NegativeClamped(t *testing.T) {
	state := LevelFromTotalXP(-500)
	assert.Equal(t, 1, state.Level)
	assert.Equal(t, 0, state.Experience)
}

func TestXPRangeForLevel_ConsistentWithCurve(t *testing.T) {
	for level := 1; level <= 20; level++ {
		minTotal, maxTotal := XPRangeForLevel(level)

		assert.Equal(t, RequiredXP(level), maxTotal-minTotal, "level %d", level)

		// The bottom of the window derives exactly this level.
		assert.Equal(t, level, LevelFromTotalXP(minTotal).Level, "level %d min", level)

		// The top of the window belongs to the next level.
		if level < MaxLevel {
			assert.Equal(t, level+1, LevelFromTotalXP(maxTotal).Level, "level %d max", level)
		}
	}
}

func TestCategoryToStat(t *testing.T) {
	assert.Equal(t, shared.StatStrength, CategoryToStat(shared.CategoryExercise))
	assert.Equal(t, shared.StatIntelligence, CategoryToStat(shared.CategoryStudy))
	assert.Equal(t, shared.StatIntelligence, CategoryToStat(shared.CategoryReading))
	assert.Equal(t, shared.StatDexterity, CategoryToStat(shared.CategoryHobby))
	assert.Equal(t, shared.StatCharisma, CategoryToStat(shared.CategoryVolunteer))
	assert.Equal(t, shared.StatVitality, CategoryToStat(shared.CategoryOther))
}

func TestCategoryXPWeight_Ordering(t *testing.T) {
	weights := make([]float64, 0)
	for _, c := range shared.AllCategories() {
		weights = append(weights, CategoryXPWeight(c))
	}

	// STUDY is the highest weight, OTHER the lowest.
	study := CategoryXPWeight(shared.CategoryStudy)
	other := CategoryXPWeight(shared.CategoryOther)
	for _, w := range weights {
		assert.LessOrEqual(t, w, study)
		assert.GreaterOrEqual(t, w, other)
	}
}

func TestBaseXP_TenMinuteIncrements(t *testing.T) {
	assert.Equal(t, 0, BaseXP(0))
	assert.Equal(t, 0, BaseXP(9))
	assert.Equal(t, 10, BaseXP(10))
	assert.Equal(t, 10, BaseXP(19))
	assert.Equal(t, 30, BaseXP(30))
	assert.Equal(t, 50, BaseXP(59))
	assert.Equal(t, 60, BaseXP(60))
	assert.Equal(t, 0, BaseXP(-5))
}

func TestStatPointsFor(t *testing.T) {
	points := StatPointsFor(shared.CategoryStudy, 45)
	assert.Equal(t, 4, points.Intelligence)
	assert.Equal(t, 0, points.Strength)
	assert.Equal(t, 4, points.Total())

	points = StatPointsFor(shared.CategoryExercise, 12)
	assert.Equal(t, 1, points.Strength)
}
