// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/activity"
	"github.com/JihunKong/vacation-sub000/internal/domain/badge"
	"github.com/JihunKong/vacation-sub000/internal/domain/plan"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// Repositories bundles the transaction-scoped repositories handed to a unit
// of work callback. Every call made through them joins the same transaction.
type Repositories struct {
	Students     student.Repository
	Activities   activity.Repository
	Plans        plan.Repository
	Badges       badge.Repository
	Achievements achievement.Repository
}

// UnitOfWork runs a callback inside one atomic transaction. The callback's
// error rolls everything back; a nil return commits.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
