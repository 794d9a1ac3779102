package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

func TestEvaluate_Empty(t *testing.T) {
	snap := Snapshot{Level: 1, MinutesByCategory: map[shared.Category]int{}}
	assert.Empty(t, Evaluate(snap, map[string]bool{}))
}

func TestEvaluate_LevelTiers(t *testing.T) {
	snap := Snapshot{Level: 35, MinutesByCategory: map[shared.Category]int{}}

	got := Evaluate(snap, map[string]bool{})

	assert.Equal(t, []Candidate{
		{Type: TypeLevel, Tier: TierBronze},
		{Type: TypeLevel, Tier: TierSilver},
	}, got)
}

func TestEvaluate_SkipsAlreadyEarned(t *testing.T) {
	snap := Snapshot{Level: 35, MinutesByCategory: map[shared.Category]int{}}
	earned := map[string]bool{
		(&Badge{Type: TypeLevel, Tier: TierBronze}).Key(): true,
	}

	got := Evaluate(snap, earned)

	assert.Equal(t, []Candidate{{Type: TypeLevel, Tier: TierSilver}}, got)
}

func TestEvaluate_StreakUsesLongest(t *testing.T) {
	// Broken streak: longest still qualifies.
	snap := Snapshot{
		CurrentStreak:     1,
		LongestStreak:     30,
		MinutesByCategory: map[shared.Category]int{},
	}

	got := Evaluate(snap, map[string]bool{})

	assert.Contains(t, got, Candidate{Type: TypeStreak, Tier: TierBronze})
	assert.Contains(t, got, Candidate{Type: TypeStreak, Tier: TierSilver})
	assert.NotContains(t, got, Candidate{Type: TypeStreak, Tier: TierGold})
}

func TestEvaluate_CategoryMinutes(t *testing.T) {
	snap := Snapshot{
		MinutesByCategory: map[shared.Category]int{
			shared.CategoryStudy:   3000,
			shared.CategoryReading: 599,
		},
	}

	got := Evaluate(snap, map[string]bool{})

	assert.Equal(t, []Candidate{
		{Type: TypeCategory, Category: shared.CategoryStudy, Tier: TierBronze},
		{Type: TypeCategory, Category: shared.CategoryStudy, Tier: TierSilver},
	}, got)
}

func TestEvaluate_Deterministic(t *testing.T) {
	snap := Snapshot{
		Level:         12,
		LongestStreak: 8,
		TotalDays:     10,
		MinutesByCategory: map[shared.Category]int{
			shared.CategoryExercise: 700,
		},
	}

	first := Evaluate(snap, map[string]bool{})
	second := Evaluate(snap, map[string]bool{})

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestBadgeKey(t *testing.T) {
	b := Badge{Type: TypeCategory, Category: shared.CategoryStudy, Tier: TierGold}
	assert.Equal(t, "category:STUDY:gold", b.Key())

	lvl := Badge{Type: TypeLevel, Tier: TierBronze}
	assert.Equal(t, "level:bronze", lvl.Key())
}
