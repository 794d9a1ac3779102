// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/JihunKong/vacation-sub000/internal/domain/badge"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements badge.Repository for PostgreSQL.
type BadgeRepository struct {
	q Querier
}

// NewBadgeRepository creates a new BadgeRepository bound to a pool or
// transaction.
func NewBadgeRepository(q Querier) *BadgeRepository {
	return &BadgeRepository{q: q}
}

// Create stores an earned badge. The table's unique key rejects duplicates.
func (r *BadgeRepository) Create(ctx context.Context, b *badge.Badge) error {
	query := `
		INSERT INTO badges (id, student_id, badge_type, category, tier, earned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		b.ID,
		b.StudentID,
		string(b.Type),
		string(b.Category),
		string(b.Tier),
		b.EarnedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("badge %s: %w", b.Key(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// EarnedKeys returns the set of badge keys already held by a student.
func (r *BadgeRepository) EarnedKeys(ctx context.Context, studentID string) (map[string]bool, error) {
	badges, err := r.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool, len(badges))
	for _, b := range badges {
		keys[b.Key()] = true
	}

	return keys, nil
}

// ListByStudent returns all earned badges, newest first.
func (r *BadgeRepository) ListByStudent(ctx context.Context, studentID string) ([]*badge.Badge, error) {
	query := `
		SELECT id, student_id, badge_type, category, tier, earned_at
		FROM badges
		WHERE student_id = $1
		ORDER BY earned_at DESC
	`

	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var result []*badge.Badge
	for rows.Next() {
		var b badge.Badge
		var badgeType, category, tier string

		err := rows.Scan(&b.ID, &b.StudentID, &badgeType, &category, &tier, &b.EarnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}

		b.Type = badge.Type(badgeType)
		b.Category = shared.Category(category)
		b.Tier = badge.Tier(tier)
		result = append(result, &b)
	}

	return result, rows.Err()
}
