package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
)

func newTestPlan(t *testing.T, items []*Item) *Plan {
	t.Helper()
	p, err := NewPlan(NewPlanParams{
		ID:        "plan-1",
		StudentID: "student-1",
		PlanDate:  time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Items:     items,
	})
	assert.NoError(t, err)
	return p
}

func TestNewPlan_Validation(t *testing.T) {
	_, err := NewPlan(NewPlanParams{ID: "plan-1", StudentID: "student-1"})
	assert.ErrorIs(t, err, ErrEmptyPlan)

	items := make([]*Item, 11)
	for i := range items {
		items[i] = &Item{ID: "i", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "x"}
	}
	_, err = NewPlan(NewPlanParams{ID: "plan-1", StudentID: "student-1", Items: items})
	assert.ErrorIs(t, err, ErrTooManyItems)

	_, err = NewPlan(NewPlanParams{
		ID:        "plan-1",
		StudentID: "student-1",
		Items:     []*Item{{ID: "i-1", Category: shared.CategoryStudy, TargetMinutes: 0, Title: "x"}},
	})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestCompleteItem_StampsActualMinutes(t *testing.T) {
	p := newTestPlan(t, []*Item{
		{ID: "i-1", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "math"},
		{ID: "i-2", Category: shared.CategoryReading, TargetMinutes: 20, Title: "novel"},
	})

	became, err := p.CompleteItem("i-1", 45)
	assert.NoError(t, err)
	assert.False(t, became)
	assert.True(t, p.Items[0].Completed)
	assert.Equal(t, 45, p.Items[0].ActualMinutes)
	assert.NotNil(t, p.Items[0].CompletedAt)

	// Completing the last open item reports the plan as complete.
	became, err = p.CompleteItem("i-2", 25)
	assert.NoError(t, err)
	assert.True(t, became)
	assert.Equal(t, 25, p.Items[1].ActualMinutes)
	assert.True(t, p.IsCompleted())
}

func TestCompleteItem_DoesNotOverwriteCompleted(t *testing.T) {
	p := newTestPlan(t, []*Item{
		{ID: "i-1", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "math"},
	})

	_, err := p.CompleteItem("i-1", 40)
	assert.NoError(t, err)
	firstStamp := *p.Items[0].CompletedAt

	became, err := p.CompleteItem("i-1", 90)
	assert.NoError(t, err)
	assert.False(t, became)
	assert.Equal(t, 40, p.Items[0].ActualMinutes)
	assert.Equal(t, firstStamp, *p.Items[0].CompletedAt)
}

func TestCompleteItem_UnknownItem(t *testing.T) {
	p := newTestPlan(t, []*Item{
		{ID: "i-1", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "math"},
	})

	_, err := p.CompleteItem("i-404", 30)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestMarkProgress_StampsActualMinutes(t *testing.T) {
	p := newTestPlan(t, []*Item{
		{ID: "i-1", Category: shared.CategoryStudy, TargetMinutes: 30, Title: "math"},
	})

	// Under target: nothing happens.
	assert.False(t, p.MarkProgress(shared.CategoryStudy, 20))
	assert.False(t, p.Items[0].Completed)

	assert.True(t, p.MarkProgress(shared.CategoryStudy, 35))
	assert.True(t, p.Items[0].Completed)
	assert.Equal(t, 35, p.Items[0].ActualMinutes)
}
