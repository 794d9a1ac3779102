package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"cap exceeded", shared.ErrCapExceeded, http.StatusUnprocessableEntity, "daily_cap_exceeded"},
		{"cap detail", &shared.CapExceededError{Limit: 10, Current: 10, Resource: "daily_activities"}, http.StatusUnprocessableEntity, "daily_cap_exceeded"},
		{"daily count", activity.ErrDailyCountExceeded, http.StatusUnprocessableEntity, "daily_cap_exceeded"},
		{"not owner", student.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{"profile not found", student.ErrProfileNotFound, http.StatusNotFound, "not_found"},
		{"plan not found", plan.ErrPlanNotFound, http.StatusNotFound, "not_found"},
		{"profile exists", student.ErrProfileAlreadyExists, http.StatusConflict, "already_exists"},
		{"plan exists", plan.ErrPlanAlreadyExists, http.StatusConflict, "already_exists"},
		{"empty title", activity.ErrEmptyTitle, http.StatusBadRequest, "validation_error"},
		{"bad category", activity.ErrInvalidCategory, http.StatusBadRequest, "validation_error"},
		{"bad duration", activity.ErrInvalidDuration, http.StatusBadRequest, "validation_error"},
		{"bad nickname", student.ErrInvalidNickname, http.StatusBadRequest, "validation_error"},
		{"empty plan", plan.ErrEmptyPlan, http.StatusBadRequest, "validation_error"},
		{"transient store", shared.ErrTransientStore, http.StatusServiceUnavailable, "temporarily_unavailable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusForError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestStatusForError_WrappedNotFound(t *testing.T) {
	// Infrastructure wraps domain sentinels; the mapping must survive it.
	err := fmt.Errorf("%w: %w", student.ErrProfileNotFound, shared.ErrNotFound)
	status, code := statusForError(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(req))

	req.Header.Set("Authorization", "Bearer secret-token")
	assert.Equal(t, "secret-token", bearerToken(req))

	req.Header.Set("Authorization", "bearer lower-case")
	assert.Equal(t, "lower-case", bearerToken(req))

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, bearerToken(req))
}

func newTestServer(t *testing.T, tokenHash string) *Server {
	t.Helper()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	cfg.APITokenHash = tokenHash

	return NewServer(cfg, Dependencies{})
}

func TestAuthenticated_MissingUserID(t *testing.T) {
	s := newTestServer(t, "")

	called := false
	h := s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/abc", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticated_TokenVerification(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-token"), bcrypt.MinCost)
	require.NoError(t, err)

	s := newTestServer(t, string(hash))

	var gotCaller string
	h := s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = getCallerID(r.Context())
	})

	// Wrong token rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/abc", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	req.Header.Set("X-User-ID", "owner-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token passes and the caller ID lands in context.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/students/abc", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-User-ID", "owner-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1", gotCaller)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))

	// Independent keys do not share a budget.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "20.0.0.2")
	assert.Equal(t, "20.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "30.0.0.3, 20.0.0.2")
	assert.Equal(t, "30.0.0.3", getClientIP(req))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
