package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/badge"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Read-through cached profile view with earned badges.
// ══════════════════════════════════════════════════════════════════════════════

// profileCacheTTL bounds staleness between cache invalidations.
const profileCacheTTL = 5 * time.Minute

// GetProfileQuery contains the parameters for the profile view.
type GetProfileQuery struct {
	// StudentID - target profile.
	StudentID string

	// CallerID - authenticated owner.
	CallerID string
}

// Validate validates the query.
func (q *GetProfileQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_profile: student_id is required")
	}
	if q.CallerID == "" {
		return errors.New("get_profile: caller_id is required")
	}
	return nil
}

// BadgeDTO is one earned badge as presented to the client.
type BadgeDTO struct {
	Type     string    `json:"type"`
	Category string    `json:"category,omitempty"`
	Tier     string    `json:"tier"`
	EarnedAt time.Time `json:"earned_at"`
}

// ProfileDTO is the student profile as presented to the client.
type ProfileDTO struct {
	ID             string     `json:"id"`
	Nickname       string     `json:"nickname"`
	Level          int        `json:"level"`
	TotalXP        int        `json:"total_xp"`
	Experience     int        `json:"experience"`
	XPForNextLevel int        `json:"xp_for_next_level"`
	Strength       int        `json:"strength"`
	Intelligence   int        `json:"intelligence"`
	Dexterity      int        `json:"dexterity"`
	Charisma       int        `json:"charisma"`
	Vitality       int        `json:"vitality"`
	TotalMinutes   int        `json:"total_minutes"`
	TotalDays      int        `json:"total_days"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	Badges         []BadgeDTO `json:"badges"`
}

// GetProfileHandler handles the GetProfileQuery.
type GetProfileHandler struct {
	studentRepo student.Repository
	badgeRepo   badge.Repository
	cache       student.Cache
}

// NewGetProfileHandler creates a new GetProfileHandler. cache may be nil.
func NewGetProfileHandler(
	studentRepo student.Repository,
	badgeRepo badge.Repository,
	cache student.Cache,
) *GetProfileHandler {
	return &GetProfileHandler{
		studentRepo: studentRepo,
		badgeRepo:   badgeRepo,
		cache:       cache,
	}
}

// Handle executes the query.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	profile, err := h.loadProfile(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}
	if !profile.IsOwnedBy(q.CallerID) {
		return nil, fmt.Errorf("get_profile: %w", student.ErrNotOwner)
	}

	badges, err := h.badgeRepo.ListByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_profile: list badges: %w", err)
	}

	dto := &ProfileDTO{
		ID:             profile.ID,
		Nickname:       profile.Nickname,
		Level:          profile.Level,
		TotalXP:        profile.TotalXP,
		Experience:     profile.Experience,
		XPForNextLevel: profile.XPForNextLevel,
		Strength:       profile.Stats.Strength,
		Intelligence:   profile.Stats.Intelligence,
		Dexterity:      profile.Stats.Dexterity,
		Charisma:       profile.Stats.Charisma,
		Vitality:       profile.Stats.Vitality,
		TotalMinutes:   profile.TotalMinutes,
		TotalDays:      profile.TotalDays,
		CurrentStreak:  profile.CurrentStreak,
		LongestStreak:  profile.LongestStreak,
		Badges:         make([]BadgeDTO, 0, len(badges)),
	}
	for _, b := range badges {
		dto.Badges = append(dto.Badges, BadgeDTO{
			Type:     string(b.Type),
			Category: string(b.Category),
			Tier:     string(b.Tier),
			EarnedAt: b.EarnedAt,
		})
	}
	return dto, nil
}

// loadProfile reads through the cache when one is wired.
func (h *GetProfileHandler) loadProfile(ctx context.Context, id string) (*student.Profile, error) {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, id); err == nil {
			return cached, nil
		}
	}

	profile, err := h.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		// Best-effort: a failed cache write never fails the read.
		_ = h.cache.Set(ctx, profile, profileCacheTTL)
	}
	return profile, nil
}
