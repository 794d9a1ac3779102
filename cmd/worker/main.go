// Package main - точка входа фонового воркера движка прогрессии.
//
// Воркер выполняет две регулярные задачи:
//   - ежемесячная ротация достижений (1-е число месяца, KST)
//   - ночная починка агрегатов профилей по истории активностей
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JihunKong/vacation-sub000/config"

	// Application layer
	"github.com/JihunKong/vacation-sub000/internal/application/achievements"
	"github.com/JihunKong/vacation-sub000/internal/application/command"

	// Domain layer
	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"

	// Infrastructure layer
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/messaging"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/persistence/postgres"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/persistence/redis"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/scheduler"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/scheduler/jobs"

	// Packages
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting progression engine worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	if !cfg.Scheduler.Enabled {
		return errors.New("scheduler is disabled, nothing to do")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Воркер не гоняет миграции: схемой владеет API-сервер.

	// ─────────────────────────────────────────────────────────────────────────
	// 3. РАСПРЕДЕЛЁННАЯ БЛОКИРОВКА РОТАЦИИ (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var rotationLock achievements.RotationLock

	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			// Маркер last_rotated_month в базе всё равно защищает от
			// повторной ротации, блокировка лишь убирает гонку реплик.
			log.Warn("failed to connect to Redis, rotation lock disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			rotationLock = redis.NewRotationLock(redisCache)
			log.Info("Redis rotation lock enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. СЕРВИСЫ И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() { _ = eventBus.Close() }()

	uow := postgres.NewUnitOfWork(dbConn)
	catalog := achievement.NewCatalog()

	rotationService := achievements.NewRotationService(uow, catalog, rotationLock, eventBus, log)
	repairHandler := command.NewRepairAggregatesHandler(uow, catalog, log)

	rotateJob := jobs.NewRotateAchievementsJob(rotationService, log)
	repairJob := jobs.NewRepairAggregatesJob(repairHandler, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: timeutil.SeoulTZ,
	})

	rotationSchedule := scheduler.NewMonthlySchedule(
		cfg.Scheduler.RotationHour, cfg.Scheduler.RotationMinute, timeutil.SeoulTZ)
	if err := sched.Register(rotateJob, rotationSchedule); err != nil {
		return fmt.Errorf("failed to register rotation job: %w", err)
	}

	repairSchedule := scheduler.NewDailySchedule(
		cfg.Scheduler.RepairHour, cfg.Scheduler.RepairMinute, timeutil.SeoulTZ)
	if err := sched.Register(repairJob, repairSchedule); err != nil {
		return fmt.Errorf("failed to register repair job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() { _ = sched.Stop() }()

	// Ротация идемпотентна в пределах месяца, поэтому прогон на старте
	// безопасно закрывает пропущенный первый день месяца.
	if cfg.Scheduler.RotateOnStartup {
		jobCtx, jobCancel := context.WithTimeout(ctx, cfg.Scheduler.JobTimeout)
		result, err := sched.RunNow(jobCtx, rotateJob.Name())
		jobCancel()
		if err != nil {
			log.Warn("startup rotation run failed", logger.Err(err))
		} else if result != nil {
			log.Info("startup rotation run finished",
				logger.Duration("duration", result.Duration),
				logger.Bool("success", result.Success),
			)
		}
	}

	log.Info("worker is running",
		logger.String("rotation_next", rotationSchedule.String()),
		logger.String("repair_next", repairSchedule.String()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ОЖИДАНИЕ СИГНАЛА ЗАВЕРШЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	log.Info("shutdown completed")
	return nil
}
