// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PlanRepository implements plan.Repository for PostgreSQL.
type PlanRepository struct {
	q Querier
}

// NewPlanRepository creates a new PlanRepository bound to a pool or
// transaction.
func NewPlanRepository(q Querier) *PlanRepository {
	return &PlanRepository{q: q}
}

// Create stores a plan with its items.
func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (id, student_id, plan_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query, p.ID, p.StudentID, p.PlanDate, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return plan.ErrPlanAlreadyExists
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	itemQuery := `
		INSERT INTO plan_items (id, plan_id, category, target_minutes, title, completed, actual_minutes, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i, item := range p.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			item.ID,
			p.ID,
			string(item.Category),
			item.TargetMinutes,
			item.Title,
			item.Completed,
			item.ActualMinutes,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to create plan item: %w", err)
		}
	}

	return nil
}

// GetByDate returns the plan for a student on a calendar date.
func (r *PlanRepository) GetByDate(ctx context.Context, studentID string, date time.Time) (*plan.Plan, error) {
	query := `
		SELECT id, student_id, plan_date, created_at, updated_at
		FROM plans
		WHERE student_id = $1 AND plan_date = $2
	`

	var p plan.Plan
	err := r.q.QueryRow(ctx, query, studentID, date).Scan(
		&p.ID,
		&p.StudentID,
		&p.PlanDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, fmt.Errorf("%w: %w", plan.ErrPlanNotFound, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	items, err := r.loadItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items

	return &p, nil
}

// Update persists item completion state.
func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	itemQuery := `UPDATE plan_items SET completed = $1, actual_minutes = $2 WHERE id = $3 AND plan_id = $4`

	for _, item := range p.Items {
		if _, err := r.q.Exec(ctx, itemQuery, item.Completed, item.ActualMinutes, item.ID, p.ID); err != nil {
			return fmt.Errorf("failed to update plan item: %w", err)
		}
	}

	result, err := r.q.Exec(ctx,
		`UPDATE plans SET updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %w", plan.ErrPlanNotFound, shared.ErrNotFound)
	}

	return nil
}

// WasCompletedOn reports whether the plan for the date existed and every
// item was completed. A missing plan counts as not completed.
func (r *PlanRepository) WasCompletedOn(ctx context.Context, studentID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM plans p
			WHERE p.student_id = $1 AND p.plan_date = $2
			  AND NOT EXISTS (
				SELECT 1 FROM plan_items i
				WHERE i.plan_id = p.id AND NOT i.completed
			  )
		)
	`

	var completed bool
	if err := r.q.QueryRow(ctx, query, studentID, date).Scan(&completed); err != nil {
		return false, fmt.Errorf("failed to check plan completion: %w", err)
	}

	return completed, nil
}

// CountCompletedDays returns how many dates have a fully completed plan.
func (r *PlanRepository) CountCompletedDays(ctx context.Context, studentID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM plans p
		WHERE p.student_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM plan_items i
			WHERE i.plan_id = p.id AND NOT i.completed
		  )
	`

	var count int
	if err := r.q.QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed days: %w", err)
	}

	return count, nil
}

// loadItems returns a plan's items in their original order.
func (r *PlanRepository) loadItems(ctx context.Context, planID string) ([]*plan.Item, error) {
	query := `
		SELECT id, category, target_minutes, title, completed, actual_minutes
		FROM plan_items
		WHERE plan_id = $1
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan items: %w", err)
	}
	defer rows.Close()

	var items []*plan.Item
	for rows.Next() {
		var item plan.Item
		var cat string

		if err := rows.Scan(&item.ID, &cat, &item.TargetMinutes, &item.Title, &item.Completed, &item.ActualMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan plan item: %w", err)
		}

		item.Category = shared.Category(cat)
		items = append(items, &item)
	}

	return items, rows.Err()
}
