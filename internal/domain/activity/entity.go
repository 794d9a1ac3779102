// Package activity contains the immutable activity log.
// Activities are the append-only source of truth: every profile aggregate
// must stay re-derivable from this history.
package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - title is required.
	ErrEmptyTitle = errors.New("activity title is required")

	// ErrInvalidCategory - category is not one of the six known values.
	ErrInvalidCategory = errors.New("invalid activity category")

	// ErrInvalidDuration - minutes outside the 1..60 session window.
	ErrInvalidDuration = fmt.Errorf("invalid duration: must be 1-%d minutes", progression.MaxSessionMinutes)

	// ErrDescriptionTooLong - free-form description over the limit.
	ErrDescriptionTooLong = errors.New("description too long: max 500 chars")

	// ErrDailyCountExceeded - per-day activity count guard tripped.
	ErrDailyCountExceeded = fmt.Errorf("daily activity count limit reached (%d)", progression.MaxDailyActivities)

	// ErrDailyMinutesExceeded - per-day total minutes guard tripped.
	ErrDailyMinutesExceeded = fmt.Errorf("daily minutes limit reached (%d)", progression.MaxDailyMinutes)
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ACTIVITY
// ══════════════════════════════════════════════════════════════════════════════

// Activity is a single recorded session. Records are never updated after
// insertion; corrections happen by recomputing aggregates from history.
type Activity struct {
	// ID - unique identifier (UUID string).
	ID string

	// StudentID - owning profile.
	StudentID string

	// Category - one of the six activity categories.
	Category shared.Category

	// Minutes - session duration, 1..60.
	Minutes int

	// Title - short required label for the session.
	Title string

	// Description - optional free-form note.
	Description string

	// XPEarned - XP awarded at recording time, after caps and bonuses.
	XPEarned int

	// Points - stat points awarded at recording time.
	Points shared.StatPoints

	// ActivityDate - local calendar date the session counts toward.
	ActivityDate time.Time

	// CreatedAt - insertion timestamp (UTC).
	CreatedAt time.Time
}

// NewActivityParams contains parameters for recording a session.
type NewActivityParams struct {
	ID           string
	StudentID    string
	Category     shared.Category
	Minutes      int
	Title        string
	Description  string
	ActivityDate time.Time
}

// NewActivity validates input and builds an activity with XP and points
// still unset; the orchestrator fills them after applying daily caps.
func NewActivity(params NewActivityParams) (*Activity, error) {
	if params.ID == "" {
		return nil, errors.New("activity id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if !params.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if params.Minutes < 1 || params.Minutes > progression.MaxSessionMinutes {
		return nil, ErrInvalidDuration
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	description := strings.TrimSpace(params.Description)
	if len(description) > 500 {
		return nil, ErrDescriptionTooLong
	}

	return &Activity{
		ID:           params.ID,
		StudentID:    params.StudentID,
		Category:     params.Category,
		Minutes:      params.Minutes,
		Title:        title,
		Description:  description,
		ActivityDate: params.ActivityDate,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Award stamps the computed XP and stat points onto the record.
func (a *Activity) Award(xp int, points shared.StatPoints) {
	a.XPEarned = xp
	a.Points = points
}

// IsPomodoro reports whether the session counts as a pomodoro (25-30 min).
func (a *Activity) IsPomodoro() bool {
	return a.Minutes >= 25 && a.Minutes <= 30
}

// DateKey returns the activity date formatted as YYYY-MM-DD.
func (a *Activity) DateKey() string {
	return a.ActivityDate.Format("2006-01-02")
}
