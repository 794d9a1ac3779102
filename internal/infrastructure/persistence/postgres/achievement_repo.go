// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	q Querier
}

// NewAchievementRepository creates a new AchievementRepository bound to a
// pool or transaction.
func NewAchievementRepository(q Querier) *AchievementRepository {
	return &AchievementRepository{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────────────────

// UpsertDefinition syncs one catalog entry into the store.
func (r *AchievementRepository) UpsertDefinition(ctx context.Context, def achievement.Definition) error {
	query := `
		INSERT INTO achievement_definitions (
			code, title, description, icon, difficulty, check_type, check_param,
			target, reward_xp, monthly, theme_month, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (code) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			difficulty = EXCLUDED.difficulty,
			check_type = EXCLUDED.check_type,
			check_param = EXCLUDED.check_param,
			target = EXCLUDED.target,
			reward_xp = EXCLUDED.reward_xp,
			monthly = EXCLUDED.monthly,
			theme_month = EXCLUDED.theme_month,
			active = EXCLUDED.active
	`

	_, err := r.q.Exec(ctx, query,
		def.Code,
		def.Title,
		def.Description,
		def.Icon,
		string(def.Difficulty),
		string(def.CheckType),
		def.CheckParam,
		def.Target,
		def.RewardXP,
		def.Monthly,
		def.ThemeMonth,
		def.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement definition: %w", err)
	}

	return nil
}

// ListActive returns the currently offered definitions.
func (r *AchievementRepository) ListActive(ctx context.Context) ([]achievement.Definition, error) {
	query := `
		SELECT code, title, description, icon, difficulty, check_type, check_param,
			   target, reward_xp, monthly, theme_month, active
		FROM achievement_definitions
		WHERE active
		ORDER BY code
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active achievements: %w", err)
	}
	defer rows.Close()

	var defs []achievement.Definition
	for rows.Next() {
		var def achievement.Definition
		var difficulty, checkType string

		err := rows.Scan(
			&def.Code,
			&def.Title,
			&def.Description,
			&def.Icon,
			&difficulty,
			&checkType,
			&def.CheckParam,
			&def.Target,
			&def.RewardXP,
			&def.Monthly,
			&def.ThemeMonth,
			&def.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement definition: %w", err)
		}

		def.Difficulty = achievement.Difficulty(difficulty)
		def.CheckType = achievement.CheckType(checkType)
		defs = append(defs, def)
	}

	return defs, rows.Err()
}

// SetMonthlyActive activates the given monthly codes for a month key and
// deactivates every other monthly entry. Base entries are untouched.
func (r *AchievementRepository) SetMonthlyActive(ctx context.Context, codes []string, monthKey string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE achievement_definitions SET active = FALSE, active_month = '' WHERE monthly`,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate monthly achievements: %w", err)
	}

	if len(codes) == 0 {
		return nil
	}

	_, err = r.q.Exec(ctx,
		`UPDATE achievement_definitions SET active = TRUE, active_month = $1 WHERE code = ANY($2)`,
		monthKey, codes,
	)
	if err != nil {
		return fmt.Errorf("failed to activate monthly achievements: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress
// ─────────────────────────────────────────────────────────────────────────────

// GetProgress returns one progress row.
func (r *AchievementRepository) GetProgress(ctx context.Context, studentID, code string) (*achievement.Progress, error) {
	query := `
		SELECT student_id, code, current, completed, completed_at, claimed_reward, updated_at
		FROM achievement_progress
		WHERE student_id = $1 AND code = $2
	`

	var p achievement.Progress
	err := r.q.QueryRow(ctx, query, studentID, code).Scan(
		&p.StudentID,
		&p.Code,
		&p.Current,
		&p.Completed,
		&p.CompletedAt,
		&p.ClaimedReward,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, fmt.Errorf("progress %s/%s: %w", studentID, code, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get achievement progress: %w", err)
	}

	return &p, nil
}

// ListProgress returns all progress rows for a student.
func (r *AchievementRepository) ListProgress(ctx context.Context, studentID string) ([]*achievement.Progress, error) {
	query := `
		SELECT student_id, code, current, completed, completed_at, claimed_reward, updated_at
		FROM achievement_progress
		WHERE student_id = $1
		ORDER BY code
	`

	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievement progress: %w", err)
	}
	defer rows.Close()

	var result []*achievement.Progress
	for rows.Next() {
		var p achievement.Progress
		err := rows.Scan(
			&p.StudentID,
			&p.Code,
			&p.Current,
			&p.Completed,
			&p.CompletedAt,
			&p.ClaimedReward,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement progress: %w", err)
		}
		result = append(result, &p)
	}

	return result, rows.Err()
}

// SaveProgress upserts a progress row.
func (r *AchievementRepository) SaveProgress(ctx context.Context, p *achievement.Progress) error {
	query := `
		INSERT INTO achievement_progress (
			student_id, code, current, completed, completed_at, claimed_reward, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id, code) DO UPDATE SET
			current = EXCLUDED.current,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			claimed_reward = EXCLUDED.claimed_reward,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, query,
		p.StudentID,
		p.Code,
		p.Current,
		p.Completed,
		p.CompletedAt,
		p.ClaimedReward,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save achievement progress: %w", err)
	}

	return nil
}

// DeleteProgressForStudent removes every progress row for a student.
func (r *AchievementRepository) DeleteProgressForStudent(ctx context.Context, studentID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM achievement_progress WHERE student_id = $1`,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete achievement progress: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// History and rotation marker
// ─────────────────────────────────────────────────────────────────────────────

// AppendHistory archives a completed achievement before rotation.
func (r *AchievementRepository) AppendHistory(ctx context.Context, entry achievement.HistoryEntry) error {
	query := `
		INSERT INTO achievement_history (
			student_id, code, title, month_key, reward_xp, completed_at, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		entry.StudentID,
		entry.Code,
		entry.Title,
		entry.MonthKey,
		entry.RewardXP,
		entry.CompletedAt,
		entry.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append achievement history: %w", err)
	}

	return nil
}

// ListHistory returns a student's archived completions, newest first.
func (r *AchievementRepository) ListHistory(ctx context.Context, studentID string) ([]achievement.HistoryEntry, error) {
	query := `
		SELECT student_id, code, title, month_key, reward_xp, completed_at, archived_at
		FROM achievement_history
		WHERE student_id = $1
		ORDER BY archived_at DESC
	`

	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievement history: %w", err)
	}
	defer rows.Close()

	var entries []achievement.HistoryEntry
	for rows.Next() {
		var e achievement.HistoryEntry
		err := rows.Scan(
			&e.StudentID,
			&e.Code,
			&e.Title,
			&e.MonthKey,
			&e.RewardXP,
			&e.CompletedAt,
			&e.ArchivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement history: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LastRotatedMonth returns the rotation marker, empty if never rotated.
func (r *AchievementRepository) LastRotatedMonth(ctx context.Context) (string, error) {
	var month string
	err := r.q.QueryRow(ctx,
		`SELECT last_rotated_month FROM rotation_state WHERE id = 1`,
	).Scan(&month)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get rotation marker: %w", err)
	}

	return month, nil
}

// SetLastRotatedMonth persists the rotation marker.
func (r *AchievementRepository) SetLastRotatedMonth(ctx context.Context, monthKey string) error {
	query := `
		INSERT INTO rotation_state (id, last_rotated_month, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			last_rotated_month = EXCLUDED.last_rotated_month,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, query, monthKey, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set rotation marker: %w", err)
	}

	return nil
}
