package activity

import (
	"context"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES (Dependency Inversion)
// ══════════════════════════════════════════════════════════════════════════════

// DaySummary aggregates a student's recorded sessions for one calendar date.
type DaySummary struct {
	Count             int
	TotalMinutes      int
	MinutesByCategory map[shared.Category]int
}

// Repository defines the persistence contract for the activity log.
type Repository interface {
	// Create appends a new activity record.
	Create(ctx context.Context, act *Activity) error

	// SummarizeDay returns count, minutes and per-category minutes for a date.
	SummarizeDay(ctx context.Context, studentID string, date time.Time) (DaySummary, error)

	// ListByStudent returns all activities for a student ordered by CreatedAt
	// ascending. Used for history replay.
	ListByStudent(ctx context.Context, studentID string) ([]*Activity, error)

	// ListByStudentAndDate returns a single day's activities, newest first.
	ListByStudentAndDate(ctx context.Context, studentID string, date time.Time) ([]*Activity, error)

	// DistinctDates returns the distinct activity dates for a student, most
	// recent first. Used for consecutive-day checks.
	DistinctDates(ctx context.Context, studentID string) ([]time.Time, error)

	// MinutesByCategory returns lifetime minute totals per category.
	MinutesByCategory(ctx context.Context, studentID string) (map[shared.Category]int, error)
}
