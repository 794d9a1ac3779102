package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
	"github.com/JihunKong/vacation-sub000/internal/application/query"
	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth returns basic server health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	uptime := time.Since(s.startedAt)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": uptime.String(),
	})
}

// handleReady checks whether the backing stores are reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(ctx); err != nil {
			checks["cache"] = "unavailable"
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// handleLive is the liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createProfileRequest is the body of POST /api/v1/profiles.
type createProfileRequest struct {
	Nickname string `json:"nickname"`
}

// profileResponse mirrors the student profile for API consumers.
type profileResponse struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Nickname       string    `json:"nickname"`
	TotalXP        int       `json:"total_xp"`
	Level          int       `json:"level"`
	Experience     int       `json:"experience"`
	XPForNextLevel int       `json:"xp_for_next_level"`
	Strength       int       `json:"strength"`
	Intelligence   int       `json:"intelligence"`
	Dexterity      int       `json:"dexterity"`
	Charisma       int       `json:"charisma"`
	Vitality       int       `json:"vitality"`
	TotalMinutes   int       `json:"total_minutes"`
	TotalDays      int       `json:"total_days"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	CreatedAt      time.Time `json:"created_at"`
}

func toProfileResponse(p *student.Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Nickname:       p.Nickname,
		TotalXP:        p.TotalXP,
		Level:          p.Level,
		Experience:     p.Experience,
		XPForNextLevel: p.XPForNextLevel,
		Strength:       p.Stats.Strength,
		Intelligence:   p.Stats.Intelligence,
		Dexterity:      p.Stats.Dexterity,
		Charisma:       p.Stats.Charisma,
		Vitality:       p.Stats.Vitality,
		TotalMinutes:   p.TotalMinutes,
		TotalDays:      p.TotalDays,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		CreatedAt:      p.CreatedAt,
	}
}

// handleCreateProfile handles POST /api/v1/profiles.
// The profile is created for the authenticated caller.
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	profile, err := s.deps.CreateProfile.Handle(r.Context(), command.CreateProfileCommand{
		OwnerID:  getCallerID(r.Context()),
		Nickname: req.Nickname,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// handleGetProfile handles GET /api/v1/students/{id}.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetProfile.Handle(r.Context(), query.GetProfileQuery{
		StudentID: r.PathValue("id"),
		CallerID:  getCallerID(r.Context()),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// recordActivityRequest is the body of POST /api/v1/students/{id}/activities.
type recordActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Minutes     int    `json:"minutes"`
	PlanItemID  string `json:"plan_item_id"`
}

// recordActivityResponse reports the full outcome of a recorded session.
type recordActivityResponse struct {
	Activity      activityResponse     `json:"activity"`
	NewBadgeCount int                  `json:"new_badge_count"`
	LevelUp       *levelUpResponse     `json:"level_up,omitempty"`
	PlanCompleted bool                 `json:"plan_completed"`
	DailyLimit    dailyLimitResponse   `json:"daily_limit"`
}

type activityResponse struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	Category     string    `json:"category"`
	Minutes      int       `json:"minutes"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	XPEarned     int       `json:"xp_earned"`
	ActivityDate string    `json:"activity_date"`
	CreatedAt    time.Time `json:"created_at"`
}

type levelUpResponse struct {
	PreviousLevel  int  `json:"previous_level"`
	NewLevel       int  `json:"new_level"`
	IsMilestone    bool `json:"is_milestone"`
	MilestoneLevel int  `json:"milestone_level,omitempty"`
}

type dailyLimitResponse struct {
	Category       string `json:"category"`
	TodayMinutes   int    `json:"today_minutes"`
	Limit          int    `json:"limit"`
	IsLimitReached bool   `json:"is_limit_reached"`
}

// handleRecordActivity handles POST /api/v1/students/{id}/activities.
func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req recordActivityRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.RecordActivity.Handle(r.Context(), command.RecordActivityCommand{
		StudentID:     r.PathValue("id"),
		CallerID:      getCallerID(r.Context()),
		Title:         req.Title,
		Description:   req.Description,
		Category:      shared.Category(req.Category),
		Minutes:       req.Minutes,
		PlanItemID:    req.PlanItemID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := recordActivityResponse{
		Activity: activityResponse{
			ID:           result.Activity.ID,
			StudentID:    result.Activity.StudentID,
			Category:     string(result.Activity.Category),
			Minutes:      result.Activity.Minutes,
			Title:        result.Activity.Title,
			Description:  result.Activity.Description,
			XPEarned:     result.Activity.XPEarned,
			ActivityDate: result.Activity.DateKey(),
			CreatedAt:    result.Activity.CreatedAt,
		},
		NewBadgeCount: result.NewBadgeCount,
		PlanCompleted: result.PlanCompleted,
		DailyLimit: dailyLimitResponse{
			Category:       string(result.DailyLimit.Category),
			TodayMinutes:   result.DailyLimit.TodayMinutes,
			Limit:          result.DailyLimit.Limit,
			IsLimitReached: result.DailyLimit.IsLimitReached,
		},
	}
	if result.LevelUp != nil {
		resp.LevelUp = &levelUpResponse{
			PreviousLevel:  result.LevelUp.PreviousLevel,
			NewLevel:       result.LevelUp.NewLevel,
			IsMilestone:    result.LevelUp.IsMilestone,
			MilestoneLevel: result.LevelUp.MilestoneLevel,
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createPlanRequest is the body of POST /api/v1/students/{id}/plans.
type createPlanRequest struct {
	Items []planItemRequest `json:"items"`
}

type planItemRequest struct {
	Category      string `json:"category"`
	Title         string `json:"title"`
	TargetMinutes int    `json:"target_minutes"`
}

type planResponse struct {
	ID        string             `json:"id"`
	StudentID string             `json:"student_id"`
	PlanDate  string             `json:"plan_date"`
	Items     []planItemResponse `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

type planItemResponse struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	TargetMinutes int    `json:"target_minutes"`
	Completed     bool   `json:"completed"`
}

// handleCreatePlan handles POST /api/v1/students/{id}/plans.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	items := make([]command.PlanItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, command.PlanItemInput{
			Category:      shared.Category(item.Category),
			Title:         item.Title,
			TargetMinutes: item.TargetMinutes,
		})
	}

	created, err := s.deps.CreatePlan.Handle(r.Context(), command.CreatePlanCommand{
		StudentID: r.PathValue("id"),
		CallerID:  getCallerID(r.Context()),
		Items:     items,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := planResponse{
		ID:        created.ID,
		StudentID: created.StudentID,
		PlanDate:  created.PlanDate.Format("2006-01-02"),
		CreatedAt: created.CreatedAt,
	}
	for _, item := range created.Items {
		resp.Items = append(resp.Items, planItemResponse{
			ID:            item.ID,
			Category:      string(item.Category),
			Title:         item.Title,
			TargetMinutes: item.TargetMinutes,
			Completed:     item.Completed,
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT & PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetAchievements handles GET /api/v1/students/{id}/achievements.
// Supports ?completed=true to filter to completed achievements only.
func (s *Server) handleGetAchievements(w http.ResponseWriter, r *http.Request) {
	dtos, err := s.deps.GetAchievements.Handle(r.Context(), query.GetAchievementsQuery{
		StudentID:     r.PathValue("id"),
		CallerID:      getCallerID(r.Context()),
		OnlyCompleted: getQueryParamBool(r, "completed"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": dtos,
		"count":        len(dtos),
	})
}

// handleGetDailyProgress handles GET /api/v1/students/{id}/progress.
func (s *Server) handleGetDailyProgress(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetDailyProgress.Handle(r.Context(), query.GetDailyProgressQuery{
		StudentID: r.PathValue("id"),
		CallerID:  getCallerID(r.Context()),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING & ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// maxBodyBytes limits request body size to 64 KB; no endpoint accepts more.
const maxBodyBytes = 64 << 10

// decodeBody decodes a JSON request body with strict field checking.
func decodeBody(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// respondError maps an application error onto an HTTP status and writes it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	if status >= 500 {
		s.log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
	}

	var capErr *shared.CapExceededError
	if errors.As(err, &capErr) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(JSONResponse{
			Success: false,
			Error: &APIError{
				Code:    code,
				Message: err.Error(),
				Details: fmt.Sprintf("%s: %d of %d used", capErr.Resource, capErr.Current, capErr.Limit),
			},
			Meta: &ResponseMeta{Timestamp: time.Now().UTC()},
		})
		return
	}

	writeJSONError(w, status, code, err.Error())
}

// statusForError resolves the HTTP status and machine-readable code for an
// application error. Validation sentinels are checked individually because
// the domain packages declare them as standalone errors.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrCapExceeded),
		errors.Is(err, activity.ErrDailyCountExceeded),
		errors.Is(err, activity.ErrDailyMinutesExceeded):
		return http.StatusUnprocessableEntity, "daily_cap_exceeded"

	case errors.Is(err, student.ErrNotOwner),
		errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "forbidden"

	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"

	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, student.ErrProfileNotFound),
		errors.Is(err, plan.ErrPlanNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, shared.ErrAlreadyExists),
		errors.Is(err, student.ErrProfileAlreadyExists),
		errors.Is(err, plan.ErrPlanAlreadyExists):
		return http.StatusConflict, "already_exists"

	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrValueOutOfRange),
		errors.Is(err, activity.ErrEmptyTitle),
		errors.Is(err, activity.ErrInvalidCategory),
		errors.Is(err, activity.ErrInvalidDuration),
		errors.Is(err, activity.ErrDescriptionTooLong),
		errors.Is(err, student.ErrInvalidNickname),
		errors.Is(err, student.ErrInvalidOwner),
		errors.Is(err, plan.ErrEmptyPlan),
		errors.Is(err, plan.ErrTooManyItems),
		errors.Is(err, plan.ErrInvalidItem):
		return http.StatusBadRequest, "validation_error"

	case errors.Is(err, shared.ErrTransientStore),
		errors.Is(err, shared.ErrConcurrentModification):
		return http.StatusServiceUnavailable, "temporarily_unavailable"

	default:
		return http.StatusInternalServerError, "internal_server_error"
	}
}
