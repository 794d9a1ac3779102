package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PLAN COMMAND
// Creates today's checklist. Completing every item keeps the streak alive.
// ══════════════════════════════════════════════════════════════════════════════

// PlanItemInput is one intended session in the submitted plan.
type PlanItemInput struct {
	Category      shared.Category
	Title         string
	TargetMinutes int
}

// CreatePlanCommand contains the data to create a daily plan.
type CreatePlanCommand struct {
	// StudentID is the target profile.
	StudentID string

	// CallerID is the authenticated owner.
	CallerID string

	// Items is the checklist, at least one entry.
	Items []PlanItemInput
}

// Validate validates the command shape; item-level rules live in the domain.
func (c CreatePlanCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("create_plan: student_id is required")
	}
	if c.CallerID == "" {
		return errors.New("create_plan: caller_id is required")
	}
	if len(c.Items) == 0 {
		return errors.New("create_plan: at least one item is required")
	}
	return nil
}

// CreatePlanHandler handles the CreatePlanCommand.
type CreatePlanHandler struct {
	studentRepo student.Repository
	planRepo    plan.Repository
}

// NewCreatePlanHandler creates a new CreatePlanHandler.
func NewCreatePlanHandler(studentRepo student.Repository, planRepo plan.Repository) *CreatePlanHandler {
	return &CreatePlanHandler{studentRepo: studentRepo, planRepo: planRepo}
}

// Handle executes the create plan command.
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd CreatePlanCommand) (*plan.Plan, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	profile, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("create_plan: %w", err)
	}
	if !profile.IsOwnedBy(cmd.CallerID) {
		return nil, fmt.Errorf("create_plan: %w", student.ErrNotOwner)
	}

	today := timeutil.Today()
	if _, err := h.planRepo.GetByDate(ctx, cmd.StudentID, today); err == nil {
		return nil, fmt.Errorf("create_plan: %w", plan.ErrPlanAlreadyExists)
	}

	items := make([]*plan.Item, 0, len(cmd.Items))
	for _, input := range cmd.Items {
		items = append(items, &plan.Item{
			ID:            uuid.NewString(),
			Category:      input.Category,
			Title:         input.Title,
			TargetMinutes: input.TargetMinutes,
		})
	}

	created, err := plan.NewPlan(plan.NewPlanParams{
		ID:        uuid.NewString(),
		StudentID: cmd.StudentID,
		PlanDate:  today,
		Items:     items,
	})
	if err != nil {
		return nil, fmt.Errorf("create_plan: %w", err)
	}

	if err := h.planRepo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create_plan: persist: %w", err)
	}
	return created, nil
}
