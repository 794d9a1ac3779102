package badge

import (
	"context"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITERIA TABLE
// ══════════════════════════════════════════════════════════════════════════════

// tierThresholds maps a badge family to its bronze/silver/gold thresholds.
var tierThresholds = map[Type][3]int{
	TypeCategory:  {600, 3000, 9000}, // lifetime minutes in one category
	TypeLevel:     {10, 30, 60},
	TypeStreak:    {7, 30, 100},
	TypeTotalDays: {10, 50, 150},
}

// Thresholds returns the ascending tier thresholds for a badge family.
func Thresholds(t Type) [3]int {
	return tierThresholds[t]
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot carries the post-update aggregates the evaluator inspects.
// The evaluator never touches storage: callers assemble the snapshot
// inside the recording transaction.
type Snapshot struct {
	Level             int
	CurrentStreak     int
	LongestStreak     int
	TotalDays         int
	MinutesByCategory map[shared.Category]int
}

// Candidate is a badge the student newly qualifies for.
type Candidate struct {
	Type     Type
	Category shared.Category
	Tier     Tier
}

// Evaluate returns every (type, tier) pair the snapshot qualifies for that
// is not yet in earned. Pure and deterministic: same snapshot plus the same
// earned set always yields the same candidates, in stable order.
func Evaluate(snapshot Snapshot, earned map[string]bool) []Candidate {
	var out []Candidate

	appendTiers := func(t Type, cat shared.Category, value int) {
		thresholds := tierThresholds[t]
		for i, tier := range AllTiers() {
			if value < thresholds[i] {
				break
			}
			c := Candidate{Type: t, Category: cat, Tier: tier}
			probe := Badge{Type: t, Category: cat, Tier: tier}
			if !earned[probe.Key()] {
				out = append(out, c)
			}
		}
	}

	appendTiers(TypeLevel, "", snapshot.Level)
	// Streak badges stick: the best-ever streak qualifies even after a reset.
	appendTiers(TypeStreak, "", snapshot.LongestStreak)
	appendTiers(TypeTotalDays, "", snapshot.TotalDays)

	for _, cat := range shared.AllCategories() {
		appendTiers(TypeCategory, cat, snapshot.MinutesByCategory[cat])
	}

	return out
}

// Repository defines the persistence contract for earned badges.
type Repository interface {
	// Create stores an earned badge. Must fail on duplicate (student, key).
	Create(ctx context.Context, b *Badge) error

	// EarnedKeys returns the set of badge keys already held by a student.
	EarnedKeys(ctx context.Context, studentID string) (map[string]bool, error)

	// ListByStudent returns all earned badges, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*Badge, error)
}
