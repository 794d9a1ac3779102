// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const activityColumns = `id, student_id, category, minutes, title, description, xp_earned,
	   strength, intelligence, dexterity, charisma, vitality, activity_date, created_at`

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new ActivityRepository bound to a pool or
// transaction.
func NewActivityRepository(q Querier) *ActivityRepository {
	return &ActivityRepository{q: q}
}

// Create appends a new activity record.
func (r *ActivityRepository) Create(ctx context.Context, act *activity.Activity) error {
	query := `
		INSERT INTO activities (
			id, student_id, category, minutes, title, description, xp_earned,
			strength, intelligence, dexterity, charisma, vitality, activity_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.Exec(ctx, query,
		act.ID,
		act.StudentID,
		string(act.Category),
		act.Minutes,
		act.Title,
		act.Description,
		act.XPEarned,
		act.Points.Strength,
		act.Points.Intelligence,
		act.Points.Dexterity,
		act.Points.Charisma,
		act.Points.Vitality,
		act.ActivityDate,
		act.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// SummarizeDay returns count, minutes and per-category minutes for one date.
func (r *ActivityRepository) SummarizeDay(ctx context.Context, studentID string, date time.Time) (activity.DaySummary, error) {
	query := `
		SELECT category, COUNT(*), COALESCE(SUM(minutes), 0)
		FROM activities
		WHERE student_id = $1 AND activity_date = $2
		GROUP BY category
	`

	rows, err := r.q.Query(ctx, query, studentID, date)
	if err != nil {
		return activity.DaySummary{}, fmt.Errorf("failed to summarize day: %w", err)
	}
	defer rows.Close()

	summary := activity.DaySummary{
		MinutesByCategory: make(map[shared.Category]int),
	}

	for rows.Next() {
		var cat string
		var count, minutes int
		if err := rows.Scan(&cat, &count, &minutes); err != nil {
			return activity.DaySummary{}, fmt.Errorf("failed to scan day summary: %w", err)
		}
		summary.Count += count
		summary.TotalMinutes += minutes
		summary.MinutesByCategory[shared.Category(cat)] = minutes
	}

	return summary, rows.Err()
}

// ListByStudent returns all activities ordered by creation time ascending,
// for history replay.
func (r *ActivityRepository) ListByStudent(ctx context.Context, studentID string) ([]*activity.Activity, error) {
	query := `SELECT ` + activityColumns + `
		FROM activities
		WHERE student_id = $1
		ORDER BY created_at ASC`

	return r.queryActivities(ctx, query, studentID)
}

// ListByStudentAndDate returns one day's activities, newest first.
func (r *ActivityRepository) ListByStudentAndDate(ctx context.Context, studentID string, date time.Time) ([]*activity.Activity, error) {
	query := `SELECT ` + activityColumns + `
		FROM activities
		WHERE student_id = $1 AND activity_date = $2
		ORDER BY created_at DESC`

	return r.queryActivities(ctx, query, studentID, date)
}

// DistinctDates returns the distinct activity dates, most recent first.
func (r *ActivityRepository) DistinctDates(ctx context.Context, studentID string) ([]time.Time, error) {
	query := `
		SELECT DISTINCT activity_date
		FROM activities
		WHERE student_id = $1
		ORDER BY activity_date DESC
	`

	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan activity date: %w", err)
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

// MinutesByCategory returns lifetime minute totals per category.
func (r *ActivityRepository) MinutesByCategory(ctx context.Context, studentID string) (map[shared.Category]int, error) {
	query := `
		SELECT category, COALESCE(SUM(minutes), 0)
		FROM activities
		WHERE student_id = $1
		GROUP BY category
	`

	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category minutes: %w", err)
	}
	defer rows.Close()

	totals := make(map[shared.Category]int)
	for rows.Next() {
		var cat string
		var minutes int
		if err := rows.Scan(&cat, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan category minutes: %w", err)
		}
		totals[shared.Category(cat)] = minutes
	}

	return totals, rows.Err()
}

// queryActivities runs a select over activityColumns and scans the rows.
func (r *ActivityRepository) queryActivities(ctx context.Context, query string, args ...interface{}) ([]*activity.Activity, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var result []*activity.Activity
	for rows.Next() {
		var act activity.Activity
		var cat string

		err := rows.Scan(
			&act.ID,
			&act.StudentID,
			&cat,
			&act.Minutes,
			&act.Title,
			&act.Description,
			&act.XPEarned,
			&act.Points.Strength,
			&act.Points.Intelligence,
			&act.Points.Dexterity,
			&act.Points.Charisma,
			&act.Points.Vitality,
			&act.ActivityDate,
			&act.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		act.Category = shared.Category(cat)
		result = append(result, &act)
	}

	return result, rows.Err()
}
