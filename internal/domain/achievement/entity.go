// Package achievement contains the achievement catalog and per-student
// progress. Unlike badges, achievements have a progress bar, a one-time XP
// reward, and a monthly-rotating themed subset.
package achievement

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Difficulty buckets a catalog entry for rotation sampling and reward sizing.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyHard      Difficulty = "hard"
	DifficultyLegendary Difficulty = "legendary"
)

// AllDifficulties returns difficulties in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyLegendary}
}

// IsValid checks difficulty validity.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyLegendary:
		return true
	}
	return false
}

// CheckType names the observable a catalog entry measures.
type CheckType string

const (
	CheckTotalActivities  CheckType = "total_activities"
	CheckConsecutiveDays  CheckType = "consecutive_days"
	CheckLevel            CheckType = "level"
	CheckTotalMinutes     CheckType = "total_minutes"
	CheckPomodoroSessions CheckType = "pomodoro_sessions"
	CheckPerfectDays      CheckType = "perfect_days"
	CheckEarlyBird        CheckType = "early_bird"
	CheckNightOwl         CheckType = "night_owl"
	CheckUniqueCategories CheckType = "unique_categories"
	CheckCategoryCount    CheckType = "category_count"
	CheckCategoryMinutes  CheckType = "category_minutes"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAchievementNotFound - no catalog entry with this code.
	ErrAchievementNotFound = errors.New("achievement not found")

	// ErrAlreadyClaimed - the reward for this achievement has been claimed.
	ErrAlreadyClaimed = errors.New("achievement reward already claimed")

	// ErrRotationConflict - another worker holds the rotation lock.
	ErrRotationConflict = errors.New("achievement rotation already in progress")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Definition is one catalog entry. Base entries (Monthly=false) are always
// active. Monthly entries come in two flavors: theme entries carry a
// ThemeMonth tag (1-12) and are offered in that calendar month; pool entries
// (ThemeMonth=0) are sampled by difficulty during rotation.
type Definition struct {
	// Code - stable unique identifier, e.g. "study_marathon".
	Code string

	// Title - display name.
	Title string

	// Description - display description.
	Description string

	// Icon - display icon identifier.
	Icon string

	// Difficulty - sampling and reward bucket.
	Difficulty Difficulty

	// CheckType - the observable this entry measures.
	CheckType CheckType

	// CheckParam - qualifier for category-scoped checks, empty otherwise.
	CheckParam string

	// Target - the value at which the achievement completes.
	Target int

	// RewardXP - one-time XP granted on claim.
	RewardXP int

	// Monthly - true for rotation-managed entries.
	Monthly bool

	// ThemeMonth - calendar month (1-12) a theme entry belongs to,
	// 0 for pool and base entries.
	ThemeMonth int

	// Active - whether the entry is currently offered. Always true for base
	// entries; flipped by the rotation service for monthly ones.
	Active bool
}

// Progress is one student's state against one catalog entry.
type Progress struct {
	// StudentID - owning profile.
	StudentID string

	// Code - catalog entry code.
	Code string

	// Current - observed value, clamped to the entry's target.
	Current int

	// Completed - true once Current reached the target.
	Completed bool

	// CompletedAt - completion timestamp, nil while in progress.
	CompletedAt *time.Time

	// ClaimedReward - fencing token: reward XP is granted exactly once,
	// in the same transaction that flips this to true.
	ClaimedReward bool

	// UpdatedAt - last progress update.
	UpdatedAt time.Time
}

// Advance moves progress to the observed value, clamping at target.
// Returns true when this call completed the achievement.
func (p *Progress) Advance(observed, target int) bool {
	if observed > target {
		observed = target
	}
	// Progress never regresses from a recorded high-water mark.
	if observed < p.Current {
		observed = p.Current
	}
	p.Current = observed
	p.UpdatedAt = time.Now().UTC()

	if p.Completed || p.Current < target {
		return false
	}

	now := time.Now().UTC()
	p.Completed = true
	p.CompletedAt = &now
	return true
}

// Claim flips the fencing token. Returns ErrAlreadyClaimed on a second call.
func (p *Progress) Claim() error {
	if p.ClaimedReward {
		return ErrAlreadyClaimed
	}
	p.ClaimedReward = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// HistoryEntry snapshots a completed monthly achievement before rotation
// wipes its progress rows.
type HistoryEntry struct {
	StudentID   string
	Code        string
	Title       string
	MonthKey    string
	RewardXP    int
	CompletedAt time.Time
	ArchivedAt  time.Time
}
