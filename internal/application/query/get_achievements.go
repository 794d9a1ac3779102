// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACHIEVEMENTS QUERY
// Returns the student's view of every currently active achievement, joined
// with their progress rows.
// ══════════════════════════════════════════════════════════════════════════════

// GetAchievementsQuery contains the parameters for the achievements view.
type GetAchievementsQuery struct {
	// StudentID - target profile.
	StudentID string

	// CallerID - authenticated owner.
	CallerID string

	// OnlyCompleted filters to completed achievements.
	OnlyCompleted bool
}

// Validate validates the query.
func (q *GetAchievementsQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_achievements: student_id is required")
	}
	if q.CallerID == "" {
		return errors.New("get_achievements: caller_id is required")
	}
	return nil
}

// AchievementDTO is one achievement as presented to the client.
type AchievementDTO struct {
	Code          string     `json:"code"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Icon          string     `json:"icon"`
	Difficulty    string     `json:"difficulty"`
	Progress      int        `json:"progress"`
	Target        int        `json:"target"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ClaimedReward bool       `json:"claimed_reward"`
	XPReward      int        `json:"xp_reward"`
	IsMonthly     bool       `json:"is_monthly"`
}

// GetAchievementsHandler handles the GetAchievementsQuery.
type GetAchievementsHandler struct {
	studentRepo     student.Repository
	achievementRepo achievement.Repository
}

// NewGetAchievementsHandler creates a new GetAchievementsHandler.
func NewGetAchievementsHandler(
	studentRepo student.Repository,
	achievementRepo achievement.Repository,
) *GetAchievementsHandler {
	return &GetAchievementsHandler{
		studentRepo:     studentRepo,
		achievementRepo: achievementRepo,
	}
}

// Handle executes the query.
func (h *GetAchievementsHandler) Handle(ctx context.Context, q GetAchievementsQuery) ([]AchievementDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	profile, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_achievements: %w", err)
	}
	if !profile.IsOwnedBy(q.CallerID) {
		return nil, fmt.Errorf("get_achievements: %w", student.ErrNotOwner)
	}

	active, err := h.achievementRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_achievements: list active: %w", err)
	}
	rows, err := h.achievementRepo.ListProgress(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_achievements: list progress: %w", err)
	}

	byCode := make(map[string]*achievement.Progress, len(rows))
	for _, row := range rows {
		byCode[row.Code] = row
	}

	out := make([]AchievementDTO, 0, len(active))
	for _, def := range active {
		dto := AchievementDTO{
			Code:        def.Code,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Difficulty:  string(def.Difficulty),
			Target:      def.Target,
			XPReward:    def.RewardXP,
			IsMonthly:   def.Monthly,
		}
		if row, ok := byCode[def.Code]; ok {
			dto.Progress = row.Current
			dto.Completed = row.Completed
			dto.CompletedAt = row.CompletedAt
			dto.ClaimedReward = row.ClaimedReward
		}
		if q.OnlyCompleted && !dto.Completed {
			continue
		}
		out = append(out, dto)
	}
	return out, nil
}
