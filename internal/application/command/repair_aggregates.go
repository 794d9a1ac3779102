package command

import (
	"context"
	"fmt"

	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/progression"
	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPAIR AGGREGATES COMMAND
// Профиль обязан быть выводим из сырой истории активностей. Эта команда
// пересобирает агрегаты заново и чинит любое расхождение.
// ══════════════════════════════════════════════════════════════════════════════

// RepairReport summarizes one maintenance pass.
type RepairReport struct {
	// StudentsChecked - сколько профилей просмотрено.
	StudentsChecked int

	// StudentsRepaired - сколько профилей пришлось чинить.
	StudentsRepaired int
}

// RepairAggregatesHandler re-derives profile aggregates from history.
type RepairAggregatesHandler struct {
	uow     UnitOfWork
	catalog *achievement.Catalog
	log     *logger.Logger
}

// NewRepairAggregatesHandler creates a new RepairAggregatesHandler.
func NewRepairAggregatesHandler(uow UnitOfWork, catalog *achievement.Catalog, log *logger.Logger) *RepairAggregatesHandler {
	return &RepairAggregatesHandler{uow: uow, catalog: catalog, log: log}
}

// HandleAll repairs every profile, one transaction per student so a single
// failure does not poison the batch.
func (h *RepairAggregatesHandler) HandleAll(ctx context.Context) (*RepairReport, error) {
	var ids []string
	err := h.uow.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var listErr error
		ids, listErr = repos.Students.ListIDs(ctx)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("repair_aggregates: list students: %w", err)
	}

	report := &RepairReport{}
	for _, id := range ids {
		repaired, err := h.HandleOne(ctx, id)
		if err != nil {
			h.log.Error("aggregate repair failed",
				logger.String("student_id", id), logger.Err(err))
			continue
		}
		report.StudentsChecked++
		if repaired {
			report.StudentsRepaired++
		}
	}
	return report, nil
}

// HandleOne repairs a single profile. Returns whether anything diverged.
func (h *RepairAggregatesHandler) HandleOne(ctx context.Context, studentID string) (bool, error) {
	var repaired bool

	err := h.uow.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		profile, err := repos.Students.GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return err
		}

		history, err := repos.Activities.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		// Суммы из сырой истории.
		totalXP, totalMinutes := 0, 0
		points := shared.StatPoints{}
		days := make(map[string]bool)
		for _, act := range history {
			totalXP += act.XPEarned
			totalMinutes += act.Minutes
			points = points.Add(act.Points)
			days[timeutil.DateKey(act.ActivityDate)] = true
		}

		// XP наград за достижения восстанавливаем по заявленным клеймам и
		// архиву ротаций: он не входит в историю активностей.
		rewardXP, err := h.claimedRewardXP(ctx, repos, studentID)
		if err != nil {
			return err
		}
		totalXP += rewardXP

		state := progression.LevelFromTotalXP(totalXP)

		// Характеристики: база + поактивностные очки + бонусы за уровни.
		stats := baseStats()
		stats = stats.Add(points)
		for level := 1; level < state.Level; level++ {
			for _, stat := range categoriesInLevelWindow(history, level) {
				stats = stats.WithStat(stat, 1)
			}
		}

		diverged := profile.TotalXP != totalXP ||
			profile.TotalMinutes != totalMinutes ||
			profile.TotalDays != len(days) ||
			profile.Level != state.Level ||
			profile.Experience != state.Experience ||
			profile.Stats != stats

		if !diverged {
			return nil
		}

		h.log.Warn("profile aggregates diverged from history",
			logger.String("student_id", studentID),
			logger.Int("stored_xp", profile.TotalXP),
			logger.Int("derived_xp", totalXP))

		profile.TotalXP = totalXP
		profile.TotalMinutes = totalMinutes
		profile.TotalDays = len(days)
		profile.Stats = stats
		profile.RefreshLevel()

		repaired = true
		return repos.Students.Update(ctx, profile)
	})
	if err != nil {
		return false, fmt.Errorf("repair_aggregates: student %s: %w", studentID, err)
	}
	return repaired, nil
}

func baseStats() shared.StatPoints {
	base := progression.InitialStatValue
	return shared.StatPoints{
		Strength:     base,
		Intelligence: base,
		Dexterity:    base,
		Charisma:     base,
		Vitality:     base,
	}
}

// claimedRewardXP sums reward XP across current claimed achievements and
// archived months.
func (h *RepairAggregatesHandler) claimedRewardXP(ctx context.Context, repos Repositories, studentID string) (int, error) {
	rows, err := repos.Achievements.ListProgress(ctx, studentID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, row := range rows {
		if !row.ClaimedReward {
			continue
		}
		if def, ok := h.catalog.Get(row.Code); ok {
			total += def.RewardXP
		}
	}

	archived, err := repos.Achievements.ListHistory(ctx, studentID)
	if err != nil {
		return 0, err
	}
	for _, entry := range archived {
		total += entry.RewardXP
	}
	return total, nil
}
