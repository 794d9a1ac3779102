// Package postgres implements the PostgreSQL persistence layer for the
// progression engine.
package postgres

import (
	"context"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork over a pgx transaction. Every
// repository handed to the callback is bound to the same transaction, so an
// activity record, its profile update, badges and achievement progress all
// commit or roll back together.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a transaction factory over the connection pool.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// WithinTx runs the callback inside one repeatable-read transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos command.Repositories) error) error {
	tx, err := u.conn.BeginTx(ctx, AggregateTxOptions())
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	repos := command.Repositories{
		Students:     NewStudentRepository(tx),
		Activities:   NewActivityRepository(tx),
		Plans:        NewPlanRepository(tx),
		Badges:       NewBadgeRepository(tx),
		Achievements: NewAchievementRepository(tx),
	}

	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
