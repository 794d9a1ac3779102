// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven side effects.
// Each event represents something significant that happened in the engine.
const (
	// Progression events
	EventActivityRecorded     EventType = "progression.activity_recorded"
	EventLevelUp              EventType = "progression.level_up"
	EventMilestoneReached     EventType = "progression.milestone_reached"
	EventStreakUpdated        EventType = "progression.streak_updated"
	EventStreakBroken         EventType = "progression.streak_broken"
	EventBadgeEarned          EventType = "progression.badge_earned"
	EventAchievementCompleted EventType = "progression.achievement_completed"

	// Plan events
	EventPlanCompleted EventType = "plan.completed"

	// System events
	EventRotationCompleted  EventType = "system.rotation_completed"
	EventAggregatesRepaired EventType = "system.aggregates_repaired"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event. Handlers must be safe for
// concurrent invocation.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent creates a BaseEvent stamped with the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventType returns the type of the event.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the ID of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string { return e.AggregateId }

// WithCorrelationID returns a copy of the event with the correlation ID set.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ══════════════════════════════════════════════════════════════════════════════
// CONCRETE EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRecordedEvent is emitted after an activity submission commits.
type ActivityRecordedEvent struct {
	BaseEvent
	ActivityID string
	Category   Category
	Minutes    int
	XPEarned   int
}

// NewActivityRecordedEvent creates an ActivityRecordedEvent.
func NewActivityRecordedEvent(studentID, activityID string, category Category, minutes, xpEarned int) ActivityRecordedEvent {
	return ActivityRecordedEvent{
		BaseEvent:  NewBaseEvent(EventActivityRecorded, studentID),
		ActivityID: activityID,
		Category:   category,
		Minutes:    minutes,
		XPEarned:   xpEarned,
	}
}

// Payload returns the event data as a map for serialization.
func (e ActivityRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":  e.AggregateId,
		"activity_id": e.ActivityID,
		"category":    string(e.Category),
		"minutes":     e.Minutes,
		"xp_earned":   e.XPEarned,
	}
}

// LevelUpEvent is emitted when a student's derived level increases.
type LevelUpEvent struct {
	BaseEvent
	PreviousLevel int
	NewLevel      int
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(studentID string, previousLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent:     NewBaseEvent(EventLevelUp, studentID),
		PreviousLevel: previousLevel,
		NewLevel:      newLevel,
	}
}

// Payload returns the event data as a map for serialization.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.AggregateId,
		"previous_level": e.PreviousLevel,
		"new_level":      e.NewLevel,
	}
}

// MilestoneReachedEvent is emitted when a level-up crosses a multiple-of-ten
// milestone. Exactly one is emitted per submission, for the lowest milestone
// crossed. Consumed by the level-artifact notifier, fire-and-forget.
type MilestoneReachedEvent struct {
	BaseEvent
	MilestoneLevel int
}

// NewMilestoneReachedEvent creates a MilestoneReachedEvent.
func NewMilestoneReachedEvent(studentID string, milestoneLevel int) MilestoneReachedEvent {
	return MilestoneReachedEvent{
		BaseEvent:      NewBaseEvent(EventMilestoneReached, studentID),
		MilestoneLevel: milestoneLevel,
	}
}

// Payload returns the event data as a map for serialization.
func (e MilestoneReachedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":      e.AggregateId,
		"milestone_level": e.MilestoneLevel,
	}
}

// BadgeEarnedEvent is emitted when a new badge is granted.
type BadgeEarnedEvent struct {
	BaseEvent
	BadgeType string
	BadgeTier string
}

// NewBadgeEarnedEvent creates a BadgeEarnedEvent.
func NewBadgeEarnedEvent(studentID, badgeType, badgeTier string) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: NewBaseEvent(EventBadgeEarned, studentID),
		BadgeType: badgeType,
		BadgeTier: badgeTier,
	}
}

// Payload returns the event data as a map for serialization.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.AggregateId,
		"type":       e.BadgeType,
		"tier":       e.BadgeTier,
	}
}

// AchievementCompletedEvent is emitted when an achievement reaches its target.
type AchievementCompletedEvent struct {
	BaseEvent
	Code     string
	XPReward int
}

// NewAchievementCompletedEvent creates an AchievementCompletedEvent.
func NewAchievementCompletedEvent(studentID, code string, xpReward int) AchievementCompletedEvent {
	return AchievementCompletedEvent{
		BaseEvent: NewBaseEvent(EventAchievementCompleted, studentID),
		Code:      code,
		XPReward:  xpReward,
	}
}

// Payload returns the event data as a map for serialization.
func (e AchievementCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.AggregateId,
		"code":       e.Code,
		"xp_reward":  e.XPReward,
	}
}

// PlanCompletedEvent is emitted when the last item of a day's plan completes.
type PlanCompletedEvent struct {
	BaseEvent
	PlanID        string
	CurrentStreak int
}

// NewPlanCompletedEvent creates a PlanCompletedEvent.
func NewPlanCompletedEvent(studentID, planID string, currentStreak int) PlanCompletedEvent {
	return PlanCompletedEvent{
		BaseEvent:     NewBaseEvent(EventPlanCompleted, studentID),
		PlanID:        planID,
		CurrentStreak: currentStreak,
	}
}

// Payload returns the event data as a map for serialization.
func (e PlanCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.AggregateId,
		"plan_id":        e.PlanID,
		"current_streak": e.CurrentStreak,
	}
}

// StreakBrokenEvent is emitted when a streak resets to 1 after a gap.
type StreakBrokenEvent struct {
	BaseEvent
	PreviousStreak int
}

// NewStreakBrokenEvent creates a StreakBrokenEvent.
func NewStreakBrokenEvent(studentID string, previousStreak int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, studentID),
		PreviousStreak: previousStreak,
	}
}

// Payload returns the event data as a map for serialization.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":      e.AggregateId,
		"previous_streak": e.PreviousStreak,
	}
}

// RotationCompletedEvent is emitted after a monthly achievement rotation.
type RotationCompletedEvent struct {
	BaseEvent
	Month           string
	ActiveCount     int
	StudentsSeeded  int
	SnapshotEntries int
}

// NewRotationCompletedEvent creates a RotationCompletedEvent.
func NewRotationCompletedEvent(month string, activeCount, studentsSeeded, snapshotEntries int) RotationCompletedEvent {
	return RotationCompletedEvent{
		BaseEvent:       NewBaseEvent(EventRotationCompleted, month),
		Month:           month,
		ActiveCount:     activeCount,
		StudentsSeeded:  studentsSeeded,
		SnapshotEntries: snapshotEntries,
	}
}

// Payload returns the event data as a map for serialization.
func (e RotationCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"month":            e.Month,
		"active_count":     e.ActiveCount,
		"students_seeded":  e.StudentsSeeded,
		"snapshot_entries": e.SnapshotEntries,
	}
}
