package achievements

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/application/command"
	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROTATION SERVICE
// Runs on the first day of each month: archives completions, wipes progress,
// activates the new themed + sampled monthly set, and seeds fresh rows.
// ══════════════════════════════════════════════════════════════════════════════

// sampleCounts is the fixed per-difficulty draw from the rotation pool.
var sampleCounts = map[achievement.Difficulty]int{
	achievement.DifficultyEasy:      2,
	achievement.DifficultyMedium:    3,
	achievement.DifficultyHard:      2,
	achievement.DifficultyLegendary: 1,
}

// RotationLock serializes rotation across worker replicas.
type RotationLock interface {
	// Acquire takes the lock for a month key. Returns false when another
	// holder already has it.
	Acquire(ctx context.Context, monthKey string) (bool, error)

	// Release drops the lock.
	Release(ctx context.Context, monthKey string) error
}

// RotationService performs the monthly achievement rotation.
type RotationService struct {
	uow            command.UnitOfWork
	catalog        *achievement.Catalog
	lock           RotationLock
	eventPublisher shared.EventPublisher
	log            *logger.Logger
	rng            *rand.Rand
}

// NewRotationService creates a new RotationService. lock may be nil in
// single-instance deployments; the store marker still guards re-entry.
func NewRotationService(
	uow command.UnitOfWork,
	catalog *achievement.Catalog,
	lock RotationLock,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RotationService {
	return &RotationService{
		uow:            uow,
		catalog:        catalog,
		lock:           lock,
		eventPublisher: eventPublisher,
		log:            log,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Rotate runs one rotation for the month containing now. Re-invocation in
// the same month is a no-op: the persisted last_rotated_month marker is the
// source of truth, the distributed lock only prevents concurrent runs.
func (s *RotationService) Rotate(ctx context.Context, now time.Time) error {
	monthKey := timeutil.MonthKey(now)

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, monthKey)
		if err != nil {
			return fmt.Errorf("rotation: acquire lock: %w", err)
		}
		if !acquired {
			return achievement.ErrRotationConflict
		}
		defer func() {
			if err := s.lock.Release(ctx, monthKey); err != nil {
				s.log.Warn("rotation lock release failed", logger.Err(err))
			}
		}()
	}

	var (
		rotated         bool
		activeCount     int
		studentsSeeded  int
		snapshotEntries int
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos command.Repositories) error {
		last, err := repos.Achievements.LastRotatedMonth(ctx)
		if err != nil {
			return fmt.Errorf("rotation: read marker: %w", err)
		}
		if last == monthKey {
			s.log.Info("rotation already done for month", logger.String("month", monthKey))
			return nil
		}

		studentIDs, err := repos.Students.ListIDs(ctx)
		if err != nil {
			return fmt.Errorf("rotation: list students: %w", err)
		}

		for _, studentID := range studentIDs {
			archived, err := s.archiveAndWipe(ctx, repos, studentID, last)
			if err != nil {
				return err
			}
			snapshotEntries += archived
		}

		// Base definitions live in the compiled catalog; the store is what
		// ListActive reads, so they are synced here alongside the monthly set.
		for _, def := range s.catalog.Base() {
			def.Active = true
			if err := repos.Achievements.UpsertDefinition(ctx, def); err != nil {
				return fmt.Errorf("rotation: upsert %s: %w", def.Code, err)
			}
		}

		selected := s.selectMonthlySet(int(now.In(timeutil.SeoulTZ).Month()))
		codes := make([]string, 0, len(selected))
		for _, def := range selected {
			def.Active = true
			if err := repos.Achievements.UpsertDefinition(ctx, def); err != nil {
				return fmt.Errorf("rotation: upsert %s: %w", def.Code, err)
			}
			codes = append(codes, def.Code)
		}
		if err := repos.Achievements.SetMonthlyActive(ctx, codes, monthKey); err != nil {
			return fmt.Errorf("rotation: activate monthly set: %w", err)
		}

		active := append(s.catalog.Base(), selected...)
		for _, studentID := range studentIDs {
			if err := s.seedProgress(ctx, repos, studentID, active); err != nil {
				return err
			}
		}

		if err := repos.Achievements.SetLastRotatedMonth(ctx, monthKey); err != nil {
			return fmt.Errorf("rotation: write marker: %w", err)
		}

		rotated = true
		activeCount = len(active)
		studentsSeeded = len(studentIDs)
		return nil
	})
	if err != nil {
		return err
	}

	if rotated {
		s.log.Info("achievement rotation completed",
			logger.String("month", monthKey),
			logger.Int("active", activeCount),
			logger.Int("students", studentsSeeded))
		if s.eventPublisher != nil {
			event := shared.NewRotationCompletedEvent(monthKey, activeCount, studentsSeeded, snapshotEntries)
			if err := s.eventPublisher.Publish(event); err != nil {
				s.log.Warn("rotation event publish failed", logger.Err(err))
			}
		}
	}
	return nil
}

// archiveAndWipe snapshots a student's completed achievements into history
// and deletes all progress rows. Progress never carries over between months.
func (s *RotationService) archiveAndWipe(
	ctx context.Context,
	repos command.Repositories,
	studentID, previousMonth string,
) (int, error) {
	rows, err := repos.Achievements.ListProgress(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("rotation: list progress for %s: %w", studentID, err)
	}

	archived := 0
	for _, row := range rows {
		if !row.Completed || row.CompletedAt == nil {
			continue
		}
		def, ok := s.catalog.Get(row.Code)
		if !ok {
			continue
		}
		entry := achievement.HistoryEntry{
			StudentID:   studentID,
			Code:        row.Code,
			Title:       def.Title,
			MonthKey:    previousMonth,
			RewardXP:    def.RewardXP,
			CompletedAt: *row.CompletedAt,
			ArchivedAt:  time.Now().UTC(),
		}
		if err := repos.Achievements.AppendHistory(ctx, entry); err != nil {
			return 0, fmt.Errorf("rotation: archive %s: %w", row.Code, err)
		}
		archived++
	}

	if err := repos.Achievements.DeleteProgressForStudent(ctx, studentID); err != nil {
		return 0, fmt.Errorf("rotation: wipe progress for %s: %w", studentID, err)
	}
	return archived, nil
}

// selectMonthlySet picks the month's theme entries plus a difficulty-balanced
// random sample from the rotation pool.
func (s *RotationService) selectMonthlySet(month int) []achievement.Definition {
	selected := s.catalog.ThemedFor(month)

	for _, diff := range achievement.AllDifficulties() {
		pool := s.catalog.PoolByDifficulty(diff)
		s.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		take := sampleCounts[diff]
		if take > len(pool) {
			take = len(pool)
		}
		selected = append(selected, pool[:take]...)
	}
	return selected
}

// seedProgress creates a zero row for every active achievement the student
// does not already track.
func (s *RotationService) seedProgress(
	ctx context.Context,
	repos command.Repositories,
	studentID string,
	active []achievement.Definition,
) error {
	for _, def := range active {
		row := &achievement.Progress{
			StudentID: studentID,
			Code:      def.Code,
			UpdatedAt: time.Now().UTC(),
		}
		if err := repos.Achievements.SaveProgress(ctx, row); err != nil {
			return fmt.Errorf("rotation: seed %s for %s: %w", def.Code, studentID, err)
		}
	}
	return nil
}
