package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

func TestComputeXP_WithinCap(t *testing.T) {
	// 30 minutes of STUDY, nothing logged yet, no streak:
	// BaseXP(30)=30 * 1.5 = 45.
	xp := ComputeXP(30, shared.CategoryStudy, 0, false)
	assert.Equal(t, 45, xp)
}

func TestComputeXP_StreakBonus(t *testing.T) {
	// 30 * 1.5 * 1.2 = 54.
	xp := ComputeXP(30, shared.CategoryStudy, 0, true)
	assert.Equal(t, 54, xp)
}

func TestComputeXP_AtCapFlat(t *testing.T) {
	// Category already saturated: flat minimum regardless of minutes.
	xp := ComputeXP(60, shared.CategoryExercise, DailyCap(shared.CategoryExercise), false)
	assert.Equal(t, OverCapFlatXP, xp)

	xp = ComputeXP(5, shared.CategoryExercise, DailyCap(shared.CategoryExercise)+40, false)
	assert.Equal(t, OverCapFlatXP, xp)
}

func TestComputeXP_StraddleSplit(t *testing.T) {
	// Cap 60, 50 already logged, 20 requested: 10 minutes are within cap.
	// Awarded XP = weighted(10) + flat, not weighted(20) and not a blend.
	assert.Equal(t, 60, DailyCap(shared.CategoryExercise))

	xp := ComputeXP(20, shared.CategoryExercise, 50, false)
	withinCap := int(float64(BaseXP(10)) * CategoryXPWeight(shared.CategoryExercise)) // 12
	assert.Equal(t, withinCap+OverCapFlatXP, xp)
	assert.Equal(t, 22, xp)

	// Sanity: not the full-weighted or blended alternatives.
	fullWeighted := int(float64(BaseXP(20)) * CategoryXPWeight(shared.CategoryExercise))
	assert.NotEqual(t, fullWeighted, xp)
}

func TestComputeXP_StraddleWithStreak(t *testing.T) {
	// The streak bonus applies only to the within-cap share.
	xp := ComputeXP(20, shared.CategoryExercise, 50, true)
	withinCap := int(float64(BaseXP(10)) * CategoryXPWeight(shared.CategoryExercise) * StreakBonusMultiplier) // 14
	assert.Equal(t, withinCap+OverCapFlatXP, xp)
}

func TestComputeXP_ZeroAndNegativeMinutes(t *testing.T) {
	assert.Equal(t, 0, ComputeXP(0, shared.CategoryStudy, 0, false))
	assert.Equal(t, 0, ComputeXP(-10, shared.CategoryStudy, 0, false))
}

func TestDailyCap_PerCategory(t *testing.T) {
	assert.Equal(t, 300, DailyCap(shared.CategoryStudy))
	assert.Equal(t, 180, DailyCap(shared.CategoryReading))
	assert.Equal(t, 60, DailyCap(shared.CategoryExercise))
	assert.Equal(t, 60, DailyCap(shared.CategoryHobby))
	assert.Equal(t, 60, DailyCap(shared.CategoryVolunteer))
	assert.Equal(t, 30, DailyCap(shared.CategoryOther))
}

func TestRemainingMinutes(t *testing.T) {
	assert.Equal(t, 250, RemainingMinutes(shared.CategoryStudy, 50))
	assert.Equal(t, 0, RemainingMinutes(shared.CategoryStudy, 300))
	assert.Equal(t, 0, RemainingMinutes(shared.CategoryStudy, 999))
}
