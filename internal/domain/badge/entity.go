// Package badge contains permanent recognition badges. Badges are evaluated
// by a pure function over profile aggregates and are awarded at most once
// per (type, tier).
package badge

import (
	"errors"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Tier represents a badge tier.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// AllTiers returns tiers in ascending order.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold}
}

// IsValid checks tier validity.
func (t Tier) IsValid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

// Type identifies a badge family. Category families track lifetime minutes
// in one category; the rest track profile-level aggregates.
type Type string

const (
	TypeLevel      Type = "level"
	TypeStreak     Type = "streak"
	TypeTotalDays  Type = "total_days"
	TypeCategory   Type = "category" // qualified by Category
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: BADGE
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrBadgeAlreadyEarned - the (type, tier) pair is already held.
	ErrBadgeAlreadyEarned = errors.New("badge already earned")

	// ErrInvalidBadge - badge failed validation.
	ErrInvalidBadge = errors.New("invalid badge")
)

// Badge is an earned badge record.
type Badge struct {
	// ID - unique identifier (UUID string).
	ID string

	// StudentID - owning profile.
	StudentID string

	// Type - badge family.
	Type Type

	// Category - set only for TypeCategory badges.
	Category shared.Category

	// Tier - bronze, silver or gold.
	Tier Tier

	// EarnedAt - award timestamp (UTC).
	EarnedAt time.Time
}

// Key returns the uniqueness key for at-most-once awarding.
func (b *Badge) Key() string {
	if b.Type == TypeCategory {
		return fmt.Sprintf("%s:%s:%s", b.Type, b.Category, b.Tier)
	}
	return fmt.Sprintf("%s:%s", b.Type, b.Tier)
}

// NewBadgeParams contains parameters for awarding a badge.
type NewBadgeParams struct {
	ID        string
	StudentID string
	Type      Type
	Category  shared.Category
	Tier      Tier
}

// NewBadge validates and builds an earned badge.
func NewBadge(params NewBadgeParams) (*Badge, error) {
	if params.ID == "" || params.StudentID == "" {
		return nil, ErrInvalidBadge
	}
	if !params.Tier.IsValid() {
		return nil, ErrInvalidBadge
	}
	if params.Type == TypeCategory && !params.Category.IsValid() {
		return nil, ErrInvalidBadge
	}

	return &Badge{
		ID:        params.ID,
		StudentID: params.StudentID,
		Type:      params.Type,
		Category:  params.Category,
		Tier:      params.Tier,
		EarnedAt:  time.Now().UTC(),
	}, nil
}
