package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_UniqueCodes(t *testing.T) {
	c := NewCatalog()
	all := c.All()

	total := len(baseDefinitions) + len(themeDefinitions) + len(poolDefinitions)
	assert.Len(t, all, total, "duplicate code collapses entries")

	seen := map[string]bool{}
	for _, def := range all {
		assert.False(t, seen[def.Code], "duplicate code %s", def.Code)
		seen[def.Code] = true
	}
}

func TestCatalog_DefinitionsWellFormed(t *testing.T) {
	for _, def := range NewCatalog().All() {
		assert.NotEmpty(t, def.Code)
		assert.NotEmpty(t, def.Title)
		assert.True(t, def.Difficulty.IsValid(), "code %s", def.Code)
		assert.Greater(t, def.Target, 0, "code %s", def.Code)
		assert.Greater(t, def.RewardXP, 0, "code %s", def.Code)
		if def.ThemeMonth != 0 {
			assert.True(t, def.Monthly, "theme entry must be monthly: %s", def.Code)
			assert.GreaterOrEqual(t, def.ThemeMonth, 1)
			assert.LessOrEqual(t, def.ThemeMonth, 12)
		}
		if !def.Monthly {
			assert.True(t, def.Active, "base entry must be active: %s", def.Code)
		}
	}
}

func TestCatalog_PoolCoversSampleCounts(t *testing.T) {
	// Rotation samples 2 easy, 3 medium, 2 hard, 1 legendary from the pool.
	c := NewCatalog()

	assert.GreaterOrEqual(t, len(c.PoolByDifficulty(DifficultyEasy)), 2)
	assert.GreaterOrEqual(t, len(c.PoolByDifficulty(DifficultyMedium)), 3)
	assert.GreaterOrEqual(t, len(c.PoolByDifficulty(DifficultyHard)), 2)
	assert.GreaterOrEqual(t, len(c.PoolByDifficulty(DifficultyLegendary)), 1)
}

func TestCatalog_ThemedFor(t *testing.T) {
	c := NewCatalog()

	august := c.ThemedFor(8)
	assert.NotEmpty(t, august)
	for _, def := range august {
		assert.Equal(t, 8, def.ThemeMonth)
	}

	assert.Empty(t, c.ThemedFor(2))
}

func TestProgress_Advance(t *testing.T) {
	p := &Progress{StudentID: "s-1", Code: "getting_started"}

	completed := p.Advance(4, 10)
	assert.False(t, completed)
	assert.Equal(t, 4, p.Current)

	// Clamped at target, completes exactly once.
	completed = p.Advance(25, 10)
	assert.True(t, completed)
	assert.Equal(t, 10, p.Current)
	assert.True(t, p.Completed)
	assert.NotNil(t, p.CompletedAt)

	completed = p.Advance(30, 10)
	assert.False(t, completed, "already completed must not re-complete")
}

func TestProgress_NeverRegresses(t *testing.T) {
	p := &Progress{StudentID: "s-1", Code: "fresh_streak", Current: 4}

	p.Advance(2, 5)
	assert.Equal(t, 4, p.Current)
}

func TestProgress_ClaimOnce(t *testing.T) {
	p := &Progress{StudentID: "s-1", Code: "first_step", Completed: true}

	assert.NoError(t, p.Claim())
	assert.ErrorIs(t, p.Claim(), ErrAlreadyClaimed)
}
