// Package plan contains daily study plans. A plan is a per-day checklist of
// intended sessions; full completion of yesterday's plan is what keeps a
// streak alive.
package plan

import (
	"errors"
	"strings"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrPlanNotFound - no plan exists for the requested date.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrPlanAlreadyExists - a plan for this date already exists.
	ErrPlanAlreadyExists = errors.New("plan already exists for this date")

	// ErrEmptyPlan - a plan must contain at least one item.
	ErrEmptyPlan = errors.New("plan must contain at least one item")

	// ErrTooManyItems - plan item count over the limit.
	ErrTooManyItems = errors.New("plan has too many items: max 10")

	// ErrInvalidItem - item failed validation.
	ErrInvalidItem = errors.New("invalid plan item")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Item is one intended session within a daily plan.
type Item struct {
	// ID - unique identifier (UUID string).
	ID string

	// Category - intended activity category.
	Category shared.Category

	// TargetMinutes - intended duration.
	TargetMinutes int

	// Title - short description of the intent.
	Title string

	// Completed - marked once a matching activity covers the target.
	Completed bool

	// ActualMinutes - minutes logged by the session that completed the item.
	ActualMinutes int

	// CompletedAt - when the item was completed, nil if open.
	CompletedAt *time.Time
}

// Plan is one student's checklist for a single calendar date.
type Plan struct {
	// ID - unique identifier (UUID string).
	ID string

	// StudentID - owning profile.
	StudentID string

	// PlanDate - the local calendar date this plan covers.
	PlanDate time.Time

	// Items - the checklist.
	Items []*Item

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewPlanParams contains parameters for creating a daily plan.
type NewPlanParams struct {
	ID        string
	StudentID string
	PlanDate  time.Time
	Items     []*Item
}

// NewPlan validates and builds a daily plan.
func NewPlan(params NewPlanParams) (*Plan, error) {
	if params.ID == "" {
		return nil, errors.New("plan id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if len(params.Items) == 0 {
		return nil, ErrEmptyPlan
	}
	if len(params.Items) > 10 {
		return nil, ErrTooManyItems
	}

	for _, item := range params.Items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &Plan{
		ID:        params.ID,
		StudentID: params.StudentID,
		PlanDate:  params.PlanDate,
		Items:     params.Items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateItem(item *Item) error {
	if item == nil || item.ID == "" {
		return ErrInvalidItem
	}
	if !item.Category.IsValid() {
		return ErrInvalidItem
	}
	if item.TargetMinutes < 1 || item.TargetMinutes > progression.MaxSessionMinutes {
		return ErrInvalidItem
	}
	if strings.TrimSpace(item.Title) == "" {
		return ErrInvalidItem
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsCompleted reports whether every item is done.
func (p *Plan) IsCompleted() bool {
	for _, item := range p.Items {
		if !item.Completed {
			return false
		}
	}
	return len(p.Items) > 0
}

// CompleteItem marks one item done by ID, recording the minutes the session
// actually logged. Returns whether this call made the whole plan complete,
// and ErrPlanNotFound if the item is not in this plan.
func (p *Plan) CompleteItem(itemID string, actualMinutes int) (planBecameComplete bool, err error) {
	wasComplete := p.IsCompleted()

	var target *Item
	for _, item := range p.Items {
		if item.ID == itemID {
			target = item
			break
		}
	}
	if target == nil {
		return false, ErrPlanNotFound
	}

	if !target.Completed {
		now := time.Now().UTC()
		target.Completed = true
		target.ActualMinutes = actualMinutes
		target.CompletedAt = &now
		p.UpdatedAt = now
	}

	return !wasComplete && p.IsCompleted(), nil
}

// MarkProgress completes the first open item matching the category whose
// target is covered by the logged minutes for that category today.
// Returns true when the whole plan became complete by this call.
func (p *Plan) MarkProgress(category shared.Category, categoryMinutesToday int) bool {
	wasComplete := p.IsCompleted()

	for _, item := range p.Items {
		if item.Completed || item.Category != category {
			continue
		}
		if categoryMinutesToday >= item.TargetMinutes {
			now := time.Now().UTC()
			item.Completed = true
			item.ActualMinutes = categoryMinutesToday
			item.CompletedAt = &now
			p.UpdatedAt = now
		}
	}

	return !wasComplete && p.IsCompleted()
}
