package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var kst = time.FixedZone("Asia/Seoul", 9*60*60)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(10 * time.Minute)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(10*time.Minute), s.Next(now))
	assert.Equal(t, "@every 10m0s", s.String())
}

func TestDailySchedule_Next(t *testing.T) {
	s := NewDailySchedule(3, 30, kst)

	// Before today's fire time: fires today.
	now := time.Date(2026, 3, 15, 1, 0, 0, 0, kst)
	next := s.Next(now)
	assert.Equal(t, time.Date(2026, 3, 15, 3, 30, 0, 0, kst), next)

	// After today's fire time: fires tomorrow.
	now = time.Date(2026, 3, 15, 4, 0, 0, 0, kst)
	next = s.Next(now)
	assert.Equal(t, time.Date(2026, 3, 16, 3, 30, 0, 0, kst), next)

	// Exactly at the fire time: fires tomorrow, not now.
	now = time.Date(2026, 3, 15, 3, 30, 0, 0, kst)
	next = s.Next(now)
	assert.Equal(t, time.Date(2026, 3, 16, 3, 30, 0, 0, kst), next)
}

func TestDailySchedule_ConvertsToLocation(t *testing.T) {
	s := NewDailySchedule(3, 30, kst)

	// 2026-03-14 20:00 UTC is 2026-03-15 05:00 KST, already past 03:30.
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	next := s.Next(now)
	assert.Equal(t, time.Date(2026, 3, 16, 3, 30, 0, 0, kst), next)
}

func TestMonthlySchedule_Next(t *testing.T) {
	s := NewMonthlySchedule(0, 5, kst)

	// Mid-month: fires on the 1st of the next month.
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, kst)
	next := s.Next(now)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 5, 0, 0, kst), next)

	// Before the fire time on the 1st: fires the same day.
	now = time.Date(2026, 4, 1, 0, 0, 0, 0, kst)
	next = s.Next(now)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 5, 0, 0, kst), next)

	// December rolls over to January.
	now = time.Date(2026, 12, 20, 12, 0, 0, 0, kst)
	next = s.Next(now)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 5, 0, 0, kst), next)
}

func TestMonthlySchedule_NilLocationDefaultsToUTC(t *testing.T) {
	s := NewMonthlySchedule(0, 5, nil)
	assert.Equal(t, time.UTC, s.Location)
}
