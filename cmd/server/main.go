// Package main - точка входа REST API движка прогрессии.
//
// Движок превращает учебную рутину в RPG-прогрессию: активности дают XP и
// очки характеристик, дневные планы держат серию, значки и достижения
// отмечают вехи.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, event bus, внешние клиенты
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JihunKong/vacation-sub000/config"

	// Application layer
	"github.com/JihunKong/vacation-sub000/internal/application/achievements"
	"github.com/JihunKong/vacation-sub000/internal/application/command"
	"github.com/JihunKong/vacation-sub000/internal/application/query"

	// Domain layer
	"github.com/JihunKong/vacation-sub000/internal/domain/achievement"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"

	// Infrastructure layer
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/external/artifact"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/messaging"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/persistence/postgres"
	"github.com/JihunKong/vacation-sub000/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/JihunKong/vacation-sub000/internal/interface/http"

	// Packages
	"github.com/JihunKong/vacation-sub000/pkg/logger"
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
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting progression engine API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var profileCache student.Cache
	var cacheHealth httpserver.HealthChecker

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, profile caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			profileCache = redis.NewStudentCache(redisCache)
			cacheHealth = redisCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	activityRepo := postgres.NewActivityRepository(dbConn)
	planRepo := postgres.NewPlanRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	achievementRepo := postgres.NewAchievementRepository(dbConn)
	uow := postgres.NewUnitOfWork(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ ВНЕШНИХ КЛИЕНТОВ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Artifact.Enabled {
		log.Info("initializing artifact client...", logger.String("base_url", cfg.Artifact.BaseURL))

		artifactConfig := artifact.DefaultClientConfig(cfg.Artifact.BaseURL)
		artifactConfig.APIKey = cfg.Artifact.APIKey
		artifactConfig.Timeout = cfg.Artifact.RequestTimeout
		artifactConfig.Logger = log

		artifactClient := artifact.NewClient(artifactConfig)
		if err := artifactClient.SubscribeMilestones(eventBus); err != nil {
			return fmt.Errorf("failed to subscribe artifact client: %w", err)
		}
	} else {
		log.Info("artifact delivery disabled: no base URL configured")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	catalog := achievement.NewCatalog()
	progressService := achievements.NewProgressService(catalog, log)

	recordActivityCmd := command.NewRecordActivityHandler(uow, progressService, eventBus, profileCache, log)
	createProfileCmd := command.NewCreateProfileHandler(studentRepo)
	createPlanCmd := command.NewCreatePlanHandler(studentRepo, planRepo)

	profileQuery := query.NewGetProfileHandler(studentRepo, badgeRepo, profileCache)
	achievementsQuery := query.NewGetAchievementsHandler(studentRepo, achievementRepo)
	dailyProgressQuery := query.NewGetDailyProgressHandler(studentRepo, activityRepo, planRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.APITokenHash = cfg.HTTP.APITokenHash

	if httpConfig.APITokenHash == "" {
		log.Warn("API token checking disabled: API_TOKEN_HASH not set")
	}

	httpDeps := httpserver.Dependencies{
		RecordActivity:   recordActivityCmd,
		CreateProfile:    createProfileCmd,
		CreatePlan:       createPlanCmd,
		GetProfile:       profileQuery,
		GetAchievements:  achievementsQuery,
		GetDailyProgress: dailyProgressQuery,
		Logger:           log,
		Database:         dbConn,
		Cache:            cacheHealth,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", logger.String("address", httpServer.Address()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("progression engine API is running",
		logger.String("http_address", httpServer.Address()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	// Event bus и база данных закроются через defer

	log.Info("shutdown completed successfully")
	return nil
}
