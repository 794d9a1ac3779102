package plan

import (
	"context"
	"time"
)

// Repository defines the persistence contract for daily plans.
type Repository interface {
	// Create stores a new plan with its items.
	Create(ctx context.Context, p *Plan) error

	// GetByDate returns the plan for a student on a calendar date.
	GetByDate(ctx context.Context, studentID string, date time.Time) (*Plan, error)

	// Update persists item completion state.
	Update(ctx context.Context, p *Plan) error

	// WasCompletedOn reports whether the student's plan for the date existed
	// and was fully completed. Missing plan counts as not completed.
	WasCompletedOn(ctx context.Context, studentID string, date time.Time) (bool, error)

	// CountCompletedDays returns how many dates have a fully completed plan.
	// Feeds the perfect-days achievement check.
	CountCompletedDays(ctx context.Context, studentID string) (int, error)
}
