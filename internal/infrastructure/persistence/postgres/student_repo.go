// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `id, owner_id, nickname, total_xp, level, experience, xp_for_next_level,
	   strength, intelligence, dexterity, charisma, vitality,
	   total_minutes, total_days, current_streak, longest_streak, created_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a new StudentRepository bound to a pool or
// transaction.
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q}
}

// Create creates a new student profile.
func (r *StudentRepository) Create(ctx context.Context, p *student.Profile) error {
	query := `
		INSERT INTO students (
			id, owner_id, nickname, total_xp, level, experience, xp_for_next_level,
			strength, intelligence, dexterity, charisma, vitality,
			total_minutes, total_days, current_streak, longest_streak, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.Nickname,
		p.TotalXP,
		p.Level,
		p.Experience,
		p.XPForNextLevel,
		p.Stats.Strength,
		p.Stats.Intelligence,
		p.Stats.Dexterity,
		p.Stats.Charisma,
		p.Stats.Vitality,
		p.TotalMinutes,
		p.TotalDays,
		p.CurrentStreak,
		p.LongestStreak,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return student.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID returns a profile by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Profile, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	return r.scanProfile(r.q.QueryRow(ctx, query, id))
}

// GetByOwner returns a profile by the authenticated owner's ID.
func (r *StudentRepository) GetByOwner(ctx context.Context, ownerID string) (*student.Profile, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE owner_id = $1`

	return r.scanProfile(r.q.QueryRow(ctx, query, ownerID))
}

// GetByIDForUpdate returns a profile with a row lock. Must run inside a
// transaction; concurrent recordings for the same student queue here.
func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, id string) (*student.Profile, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 FOR UPDATE`

	return r.scanProfile(r.q.QueryRow(ctx, query, id))
}

// Update persists a modified profile.
func (r *StudentRepository) Update(ctx context.Context, p *student.Profile) error {
	query := `
		UPDATE students SET
			nickname = $1,
			total_xp = $2,
			level = $3,
			experience = $4,
			xp_for_next_level = $5,
			strength = $6,
			intelligence = $7,
			dexterity = $8,
			charisma = $9,
			vitality = $10,
			total_minutes = $11,
			total_days = $12,
			current_streak = $13,
			longest_streak = $14,
			updated_at = $15
		WHERE id = $16
	`

	result, err := r.q.Exec(ctx, query,
		p.Nickname,
		p.TotalXP,
		p.Level,
		p.Experience,
		p.XPForNextLevel,
		p.Stats.Strength,
		p.Stats.Intelligence,
		p.Stats.Dexterity,
		p.Stats.Charisma,
		p.Stats.Vitality,
		p.TotalMinutes,
		p.TotalDays,
		p.CurrentStreak,
		p.LongestStreak,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %w", student.ErrProfileNotFound, shared.ErrNotFound)
	}

	return nil
}

// ListIDs returns the IDs of all profiles, for maintenance jobs.
func (r *StudentRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM students ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan profile id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// scanProfile maps one row onto a domain profile.
func (r *StudentRepository) scanProfile(row pgx.Row) (*student.Profile, error) {
	var p student.Profile

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Nickname,
		&p.TotalXP,
		&p.Level,
		&p.Experience,
		&p.XPForNextLevel,
		&p.Stats.Strength,
		&p.Stats.Intelligence,
		&p.Stats.Dexterity,
		&p.Stats.Charisma,
		&p.Stats.Vitality,
		&p.TotalMinutes,
		&p.TotalDays,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, fmt.Errorf("%w: %w", student.ErrProfileNotFound, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	return &p, nil
}
