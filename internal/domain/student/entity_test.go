package student

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

func newTestProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := NewProfile(NewProfileParams{
		ID:       "p-1",
		OwnerID:  "u-1",
		Nickname: "tester",
	})
	assert.NoError(t, err)
	return p
}

func TestNewProfile_Defaults(t *testing.T) {
	p := newTestProfile(t)

	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, progression.RequiredXP(1), p.XPForNextLevel)
	assert.Equal(t, progression.InitialStatValue, p.Stats.Strength)
	assert.Equal(t, progression.InitialStatValue, p.Stats.Vitality)
	assert.Equal(t, 0, p.CurrentStreak)
}

func TestNewProfile_Validation(t *testing.T) {
	_, err := NewProfile(NewProfileParams{ID: "p-1", OwnerID: "", Nickname: "x"})
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = NewProfile(NewProfileParams{ID: "p-1", OwnerID: "u-1", Nickname: "   "})
	assert.ErrorIs(t, err, ErrInvalidNickname)
}

func TestProfile_ApplyActivity(t *testing.T) {
	p := newTestProfile(t)

	p.ApplyActivity(45, 30, shared.StatPoints{Intelligence: 4}, true)

	assert.Equal(t, 45, p.TotalXP)
	assert.Equal(t, 30, p.TotalMinutes)
	assert.Equal(t, 1, p.TotalDays)
	assert.Equal(t, progression.InitialStatValue+4, p.Stats.Intelligence)

	// Вторая активность того же дня не увеличивает TotalDays.
	p.ApplyActivity(10, 10, shared.StatPoints{Vitality: 1}, false)
	assert.Equal(t, 1, p.TotalDays)
	assert.Equal(t, 55, p.TotalXP)
}

func TestProfile_RefreshLevel(t *testing.T) {
	p := newTestProfile(t)

	p.TotalXP = 210 // 100 + 110 → уровень 3
	prev, next := p.RefreshLevel()

	assert.Equal(t, 1, prev)
	assert.Equal(t, 3, next)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 0, p.Experience)
	assert.Equal(t, progression.RequiredXP(3), p.XPForNextLevel)
}

func TestProfile_ContinueStreak(t *testing.T) {
	p := newTestProfile(t)

	p.ContinueStreak(false)
	assert.Equal(t, 1, p.CurrentStreak)

	p.ContinueStreak(true)
	p.ContinueStreak(true)
	assert.Equal(t, 3, p.CurrentStreak)
	assert.Equal(t, 3, p.LongestStreak)

	prev, broken := p.ContinueStreak(false)
	assert.Equal(t, 3, prev)
	assert.True(t, broken)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 3, p.LongestStreak)
}

func TestMilestoneCrossed(t *testing.T) {
	m, ok := MilestoneCrossed(9, 10)
	assert.True(t, ok)
	assert.Equal(t, 10, m)

	// За прыжок через несколько рубежей сигнализируется наименьший.
	m, ok = MilestoneCrossed(8, 22)
	assert.True(t, ok)
	assert.Equal(t, 10, m)

	_, ok = MilestoneCrossed(11, 15)
	assert.False(t, ok)

	_, ok = MilestoneCrossed(10, 10)
	assert.False(t, ok)
}

func TestProfile_GrantLevelUpBonus(t *testing.T) {
	p := newTestProfile(t)
	p.GrantLevelUpBonus(shared.StatIntelligence)
	assert.Equal(t, progression.InitialStatValue+1, p.Stats.Intelligence)
}
