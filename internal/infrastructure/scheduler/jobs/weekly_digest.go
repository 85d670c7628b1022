// Package jobs contains implementations of scheduled jobs for the campus hub.
package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/application/assistant"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY DIGEST JOB
// Собирает персональный дайджест возможностей для каждого студента,
// подписанного на еженедельную рассылку, и передаёт его в канал доставки.
// Каждый дайджест считается по свежим данным скоринга.
// ══════════════════════════════════════════════════════════════════════════════

// DigestSink доставляет готовый дайджест студенту (email, push).
type DigestSink interface {
	Deliver(ctx context.Context, student *catalog.Student, digest string) error
}

// WeeklyDigestConfig содержит настройки задачи.
type WeeklyDigestConfig struct {
	// Concurrency - сколько дайджестов собирать параллельно.
	Concurrency int

	// Timeout - максимальная длительность всей задачи.
	Timeout time.Duration
}

// DefaultWeeklyDigestConfig возвращает настройки по умолчанию.
// Низкий параллелизм: каждый дайджест - вызов модели, лимиты API общие.
func DefaultWeeklyDigestConfig() WeeklyDigestConfig {
	return WeeklyDigestConfig{
		Concurrency: 2,
		Timeout:     30 * time.Minute,
	}
}

// WeeklyDigestStats - статистика последнего запуска.
type WeeklyDigestStats struct {
	Total     int
	Sent      int
	Skipped   int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
}

// WeeklyDigestJob собирает и рассылает еженедельные дайджесты.
type WeeklyDigestJob struct {
	studentRepo catalog.StudentRepository
	assistant   *assistant.Assistant
	sink        DigestSink
	config      WeeklyDigestConfig
	log         *logger.Logger

	lastStats atomic.Value // *WeeklyDigestStats
}

// NewWeeklyDigestJob создаёт задачу еженедельного дайджеста.
func NewWeeklyDigestJob(
	studentRepo catalog.StudentRepository,
	asst *assistant.Assistant,
	sink DigestSink,
	config WeeklyDigestConfig,
	log *logger.Logger,
) *WeeklyDigestJob {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultWeeklyDigestConfig().Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultWeeklyDigestConfig().Timeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &WeeklyDigestJob{
		studentRepo: studentRepo,
		assistant:   asst,
		sink:        sink,
		config:      config,
		log:         log,
	}
}

// Name возвращает имя задачи.
func (j *WeeklyDigestJob) Name() string { return "weekly_digest" }

// Description возвращает описание задачи.
func (j *WeeklyDigestJob) Description() string {
	return "Composes and delivers the weekly opportunity digest to subscribed students"
}

// LastStats возвращает статистику последнего запуска (nil до первого запуска).
func (j *WeeklyDigestJob) LastStats() *WeeklyDigestStats {
	stats, _ := j.lastStats.Load().(*WeeklyDigestStats)
	return stats
}

// Run выполняет рассылку. Сбой одного студента не останавливает остальных.
func (j *WeeklyDigestJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	stats := &WeeklyDigestStats{StartedAt: time.Now()}
	defer func() {
		stats.Duration = time.Since(stats.StartedAt)
		j.lastStats.Store(stats)
		j.log.Info("weekly digest finished",
			logger.Int("total", stats.Total),
			logger.Int("sent", stats.Sent),
			logger.Int("skipped", stats.Skipped),
			logger.Int("failed", stats.Failed),
			logger.Duration("duration", stats.Duration),
		)
	}()

	students, err := j.studentRepo.ListActive(ctx)
	if err != nil {
		return err
	}
	stats.Total = len(students)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, j.config.Concurrency)
	)

	for _, student := range students {
		if !student.WantsWeeklyDigest() {
			mu.Lock()
			stats.Skipped++
			mu.Unlock()
			continue
		}

		select {
		case <-ctx.Done():
			// Запущенные воркеры должны дописать статистику до публикации.
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(student *catalog.Student) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := j.sendOne(ctx, student); err != nil {
				j.log.Warn("weekly digest delivery failed",
					logger.StudentID(student.ID), logger.Err(err))
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			stats.Sent++
			mu.Unlock()
		}(student)
	}

	wg.Wait()
	return nil
}

func (j *WeeklyDigestJob) sendOne(ctx context.Context, student *catalog.Student) error {
	result, err := j.assistant.ComposeWeeklyDigest(ctx, student.ID)
	if err != nil {
		return err
	}
	return j.sink.Deliver(ctx, student, result.Response)
}

// LogSink - канал доставки по умолчанию: пишет дайджест в лог.
// Используется, пока не подключён почтовый транспорт.
type LogSink struct {
	Log *logger.Logger
}

// Deliver пишет дайджест в структурированный лог.
func (s LogSink) Deliver(_ context.Context, student *catalog.Student, digest string) error {
	log := s.Log
	if log == nil {
		log = logger.Default()
	}
	log.Info("weekly digest composed",
		logger.StudentID(student.ID),
		logger.Email(student.Email.String()),
		logger.Int("digest_length", len(digest)),
	)
	return nil
}
