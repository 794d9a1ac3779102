package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAILY PROGRESS QUERY
// Сводка текущего дня: минуты и остатки лимитов по категориям, количество
// активностей, состояние плана и серии.
// ══════════════════════════════════════════════════════════════════════════════

// GetDailyProgressQuery содержит параметры запроса дневной сводки.
type GetDailyProgressQuery struct {
	// StudentID - целевой профиль.
	StudentID string

	// CallerID - аутентифицированный владелец.
	CallerID string
}

// Validate проверяет корректность параметров.
func (q *GetDailyProgressQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_daily_progress: student_id is required")
	}
	if q.CallerID == "" {
		return errors.New("get_daily_progress: caller_id is required")
	}
	return nil
}

// CategoryProgressDTO - прогресс одной категории за день.
type CategoryProgressDTO struct {
	Category         string `json:"category"`
	Minutes          int    `json:"minutes"`
	Limit            int    `json:"limit"`
	RemainingMinutes int    `json:"remaining_minutes"`
	IsLimitReached   bool   `json:"is_limit_reached"`
}

// PlanItemDTO - элемент плана на сегодня.
type PlanItemDTO struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	TargetMinutes int    `json:"target_minutes"`
	ActualMinutes int    `json:"actual_minutes"`
	Completed     bool   `json:"completed"`
}

// DailyProgressDTO - сводка дня.
type DailyProgressDTO struct {
	Date            string                `json:"date"`
	ActivityCount   int                   `json:"activity_count"`
	TotalMinutes    int                   `json:"total_minutes"`
	Categories      []CategoryProgressDTO `json:"categories"`
	PlanItems       []PlanItemDTO         `json:"plan_items,omitempty"`
	PlanCompleted   bool                  `json:"plan_completed"`
	CurrentStreak   int                   `json:"current_streak"`
	RemainingToday  int                   `json:"remaining_activities"`
	RemainingMinute int                   `json:"remaining_total_minutes"`
}

// GetDailyProgressHandler обрабатывает GetDailyProgressQuery.
type GetDailyProgressHandler struct {
	studentRepo  student.Repository
	activityRepo activity.Repository
	planRepo     plan.Repository
}

// NewGetDailyProgressHandler создаёт новый GetDailyProgressHandler.
func NewGetDailyProgressHandler(
	studentRepo student.Repository,
	activityRepo activity.Repository,
	planRepo plan.Repository,
) *GetDailyProgressHandler {
	return &GetDailyProgressHandler{
		studentRepo:  studentRepo,
		activityRepo: activityRepo,
		planRepo:     planRepo,
	}
}

// Handle выполняет запрос.
func (h *GetDailyProgressHandler) Handle(ctx context.Context, q GetDailyProgressQuery) (*DailyProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	profile, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_daily_progress: %w", err)
	}
	if !profile.IsOwnedBy(q.CallerID) {
		return nil, fmt.Errorf("get_daily_progress: %w", student.ErrNotOwner)
	}

	today := timeutil.Today()
	day, err := h.activityRepo.SummarizeDay(ctx, q.StudentID, today)
	if err != nil {
		return nil, fmt.Errorf("get_daily_progress: summarize: %w", err)
	}

	dto := &DailyProgressDTO{
		Date:            timeutil.DateKey(today),
		ActivityCount:   day.Count,
		TotalMinutes:    day.TotalMinutes,
		CurrentStreak:   profile.CurrentStreak,
		RemainingToday:  progression.MaxDailyActivities - day.Count,
		RemainingMinute: progression.MaxDailyMinutes - day.TotalMinutes,
	}
	if dto.RemainingToday < 0 {
		dto.RemainingToday = 0
	}
	if dto.RemainingMinute < 0 {
		dto.RemainingMinute = 0
	}

	for _, cat := range shared.AllCategories() {
		minutes := day.MinutesByCategory[cat]
		limit := progression.DailyCap(cat)
		dto.Categories = append(dto.Categories, CategoryProgressDTO{
			Category:         string(cat),
			Minutes:          minutes,
			Limit:            limit,
			RemainingMinutes: progression.RemainingMinutes(cat, minutes),
			IsLimitReached:   minutes >= limit,
		})
	}

	todayPlan, err := h.planRepo.GetByDate(ctx, q.StudentID, today)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) || errors.Is(err, shared.ErrNotFound) {
			return dto, nil
		}
		return nil, fmt.Errorf("get_daily_progress: load plan: %w", err)
	}

	dto.PlanCompleted = todayPlan.IsCompleted()
	for _, item := range todayPlan.Items {
		dto.PlanItems = append(dto.PlanItems, PlanItemDTO{
			ID:            item.ID,
			Category:      string(item.Category),
			Title:         item.Title,
			TargetMinutes: item.TargetMinutes,
			ActualMinutes: item.ActualMinutes,
			Completed:     item.Completed,
		})
	}
	return dto, nil
}
