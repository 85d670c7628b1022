// Package main - точка входа Campus Hub: рекомендации и диспетчеризация.
//
// Сервис помогает студенту найти свои клубы и мероприятия: детерминированный
// движок скоринга ранжирует возможности кампуса, а кэшируемые агенты
// с собственным характером объясняют выбор и отвечают на вопросы.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Assistant)
// - Infrastructure: репозитории, Gemini, Redis, планировщик
// - Interface: HTTP API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-hub/clubevent-hub/config"

	// Application layer
	"github.com/campus-hub/clubevent-hub/internal/application/assistant"
	"github.com/campus-hub/clubevent-hub/internal/application/command"
	"github.com/campus-hub/clubevent-hub/internal/application/query"

	// Agents
	"github.com/campus-hub/clubevent-hub/internal/agents"

	// Infrastructure layer
	"github.com/campus-hub/clubevent-hub/internal/infrastructure/external/gemini"
	"github.com/campus-hub/clubevent-hub/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/clubevent-hub/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/clubevent-hub/internal/infrastructure/scheduler"
	"github.com/campus-hub/clubevent-hub/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/campus-hub/clubevent-hub/internal/interface/http"

	// Packages
	"github.com/campus-hub/clubevent-hub/pkg/logger"
	"github.com/campus-hub/clubevent-hub/pkg/timeutil"
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
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	})
	log.Info("starting campus hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	if cfg.Database.URL != "" {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		dbConn, err = postgres.NewConnection(ctx, postgres.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Name,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Migrate {
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
	var redisCache *redis.Cache
	var recCache query.RecommendationCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err = redis.NewCache(ctx, redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
			if cfg.Features.IsEnabled(config.FeatureRecommendationsCache, "") {
				recCache = redis.NewRecommendationCache(redisCache, cfg.Redis.RecommendationTTL)
			} else {
				log.Info("recommendation caching disabled by feature flag")
			}
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	clubRepo := postgres.NewClubRepository(dbConn)
	eventRepo := postgres.NewEventRepository(dbConn)
	registrationRepo := postgres.NewRegistrationRepository(dbConn)
	skillRepo := postgres.NewSkillRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ GEMINI И АГЕНТОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing model backend...", logger.String("model", cfg.Gemini.Model))
	geminiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		RequestTimeout: cfg.Gemini.RequestTimeout,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}

	registry := agents.NewRegistryWithLimit(cfg.Agents.CacheMaxEntries)
	dispatcher, err := agents.NewDispatcher(registry, geminiClient, log)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries, Assistant)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	recommendationsHandler := query.NewGetRecommendationsHandler(
		studentRepo, clubRepo, eventRepo, registrationRepo, skillRepo, recCache, log)
	similarHandler := query.NewFindSimilarStudentsHandler(studentRepo)
	searchHandler := query.NewSearchEventsHandler(eventRepo, clubRepo)
	trendingHandler := query.NewGetTrendingEventsHandler(eventRepo, clubRepo)

	signupHandler := command.NewSignupStudentHandler(studentRepo, log)
	registerHandler := command.NewRegisterForEventHandler(
		studentRepo, eventRepo, registrationRepo, recCache, log)
	updateProfileHandler := command.NewUpdateProfileHandler(studentRepo, recCache, log)

	asst := assistant.New(dispatcher, studentRepo, clubRepo, recommendationsHandler, searchHandler, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ПЛАНИРОВЩИК И ЕЖЕНЕДЕЛЬНЫЙ ДАЙДЖЕСТ
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	switch {
	case cfg.Scheduler.Enabled && !cfg.Features.IsEnabled(config.FeatureAgentDigest, ""):
		log.Info("weekly digest disabled by feature flag")
	case cfg.Scheduler.Enabled:
		log.Info("initializing scheduler...")
		sched = scheduler.New(log, timeutil.CampusTZ)

		digestJob := jobs.NewWeeklyDigestJob(studentRepo, asst, jobs.LogSink{Log: log},
			jobs.WeeklyDigestConfig{
				Concurrency: cfg.Scheduler.DigestConcurrency,
				Timeout:     cfg.Scheduler.JobTimeout,
			}, log)

		digestSchedule := scheduler.NewWeeklySchedule(
			cfg.Scheduler.DigestWeekday, cfg.Scheduler.DigestHour, timeutil.CampusTZ)
		if err := sched.Register(digestJob, digestSchedule); err != nil {
			return fmt.Errorf("failed to register digest job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	healthCheck := func(ctx context.Context) error {
		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisCache != nil {
			if err := redisCache.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	server := httpserver.NewServer(httpserver.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: httpserver.DefaultConfig().MaxHeaderBytes,
	}, httpserver.Dependencies{
		Recommendations: recommendationsHandler,
		SimilarStudents: similarHandler,
		SearchEvents:    searchHandler,
		TrendingEvents:  trendingHandler,
		Signup:          signupHandler,
		RegisterEvent:   registerHandler,
		UpdateProfile:   updateProfileHandler,
		Assistant:       asst,
		Features:        cfg.Features,
		HealthCheck:     healthCheck,
		Logger:          log,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-stop:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
		return err
	}

	log.Info("campus hub stopped")
	return nil
}
