package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/clubevent-hub/internal/agents"
	"github.com/campus-hub/clubevent-hub/internal/application/assistant"
	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// Фейки. Задача дайджеста собирается поверх настоящего ассистента и
// настоящего диспетчера - подменяются хранилища, генератор и канал доставки.
// ──────────────────────────────────────────────────────────────────────────────

type digestStudents struct {
	students []*catalog.Student
}

func (r *digestStudents) Create(context.Context, *catalog.Student) error { return nil }

func (r *digestStudents) GetByID(_ context.Context, id string) (*catalog.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *digestStudents) GetByEmail(context.Context, catalog.Email) (*catalog.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (r *digestStudents) UpdateProfile(context.Context, *catalog.Student) error { return nil }

func (r *digestStudents) ListActive(context.Context) ([]*catalog.Student, error) {
	return r.students, nil
}

func (r *digestStudents) Exists(context.Context, string) (bool, error) { return true, nil }

type digestClubs struct{}

func (digestClubs) GetByID(context.Context, string) (*catalog.Club, error) {
	return nil, shared.ErrClubNotFound
}

func (digestClubs) GetByName(context.Context, string) (*catalog.Club, error) {
	return nil, shared.ErrClubNotFound
}

func (digestClubs) List(context.Context) ([]*catalog.Club, error) { return nil, nil }

type digestEvents struct{}

func (digestEvents) GetByID(context.Context, string) (*catalog.Event, error) {
	return nil, shared.ErrEventNotFound
}

func (digestEvents) ListUpcoming(context.Context, catalog.EventFilter) ([]*catalog.Event, error) {
	return []*catalog.Event{{
		ID:        "e1",
		ClubID:    "c1",
		Title:     "AI Night",
		EventType: catalog.EventTypeWorkshop,
		StartsAt:  time.Now().Add(48 * time.Hour),
		ViewCount: 40,
	}}, nil
}

func (digestEvents) Search(context.Context, string, catalog.EventFilter) ([]*catalog.Event, error) {
	return nil, nil
}

func (digestEvents) ListTrending(context.Context, int) ([]*catalog.Event, error) { return nil, nil }

func (digestEvents) IncrementRegistrations(context.Context, string) error { return nil }

type digestRegistrations struct{}

func (digestRegistrations) ClaimedItemsOf(context.Context, string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (digestRegistrations) Create(context.Context, string, string) error { return nil }

type digestSkills struct{}

func (digestSkills) GetByIDs(context.Context, []string) ([]*catalog.Skill, error) { return nil, nil }

func (digestSkills) GetByNames(context.Context, []string) ([]*catalog.Skill, error) {
	return nil, nil
}

func (digestSkills) ListAll(context.Context) ([]*catalog.Skill, error) { return nil, nil }

type staticGenerator struct{}

func (staticGenerator) Generate(context.Context, string) (string, error) {
	return "Your week at a glance", nil
}

// recordingSink фиксирует доставки; failFor - ID студента, доставка
// которому завершается ошибкой.
type recordingSink struct {
	mu        sync.Mutex
	delivered map[string]string
	failFor   string
}

func (s *recordingSink) Deliver(_ context.Context, student *catalog.Student, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if student.ID == s.failFor {
		return errors.New("mailbox unavailable")
	}
	if s.delivered == nil {
		s.delivered = make(map[string]string)
	}
	s.delivered[student.ID] = digest
	return nil
}

// blockingSink держит доставку до отмены контекста.
type blockingSink struct {
	started  chan struct{}
	finished atomic.Bool
}

func (s *blockingSink) Deliver(ctx context.Context, _ *catalog.Student, _ string) error {
	s.started <- struct{}{}
	<-ctx.Done()
	s.finished.Store(true)
	return ctx.Err()
}

func subscriber(id string) *catalog.Student {
	return &catalog.Student{
		ID:        id,
		Name:      "Student " + id,
		Email:     catalog.Email(id + "@campus.edu"),
		YearLevel: 2,
		Profile: &catalog.Profile{
			NotificationPreferences: catalog.DefaultNotificationPreferences(),
		},
	}
}

func optedOut(id string) *catalog.Student {
	s := subscriber(id)
	s.Profile.NotificationPreferences.WeeklyDigest = false
	return s
}

func newDigestJob(t *testing.T, sink DigestSink, students ...*catalog.Student) *WeeklyDigestJob {
	t.Helper()
	return newDigestJobWithConfig(t, sink,
		WeeklyDigestConfig{Concurrency: 2, Timeout: time.Minute}, students...)
}

func newDigestJobWithConfig(t *testing.T, sink DigestSink, config WeeklyDigestConfig, students ...*catalog.Student) *WeeklyDigestJob {
	t.Helper()

	repo := &digestStudents{students: students}
	recommendations := query.NewGetRecommendationsHandler(
		repo, digestClubs{}, digestEvents{}, digestRegistrations{}, digestSkills{}, nil, nil)
	search := query.NewSearchEventsHandler(digestEvents{}, digestClubs{})

	registry := agents.NewRegistry()
	dispatcher, err := agents.NewDispatcher(registry, staticGenerator{}, nil)
	require.NoError(t, err)

	asst := assistant.New(dispatcher, repo, digestClubs{}, recommendations, search, nil)

	return NewWeeklyDigestJob(repo, asst, sink, config, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Тесты
// ──────────────────────────────────────────────────────────────────────────────

func TestWeeklyDigest_SendsOnlyToSubscribed(t *testing.T) {
	sink := &recordingSink{}
	job := newDigestJob(t, sink, subscriber("s1"), optedOut("s2"), subscriber("s3"))

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Failed)

	assert.Equal(t, "Your week at a glance", sink.delivered["s1"])
	assert.Equal(t, "Your week at a glance", sink.delivered["s3"])
	assert.NotContains(t, sink.delivered, "s2")
}

func TestWeeklyDigest_FailureDoesNotStopOthers(t *testing.T) {
	sink := &recordingSink{failFor: "s2"}
	job := newDigestJob(t, sink, subscriber("s1"), subscriber("s2"), subscriber("s3"))

	require.NoError(t, job.Run(context.Background()), "сбой одного студента не срывает задачу")

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 1, stats.Failed)
	assert.Contains(t, sink.delivered, "s1")
	assert.Contains(t, sink.delivered, "s3")
}

func TestWeeklyDigest_CancellationWaitsForInFlightWorkers(t *testing.T) {
	sink := &blockingSink{started: make(chan struct{}, 1)}
	job := newDigestJobWithConfig(t, sink,
		WeeklyDigestConfig{Concurrency: 1, Timeout: time.Minute},
		subscriber("s1"), subscriber("s2"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	// Первый воркер завис в доставке, второй студент ждёт слот.
	<-sink.started
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	// Статистика публикуется только после завершения запущенных воркеров.
	assert.True(t, sink.finished.Load())
	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Sent)
}

func TestWeeklyDigest_StatsBeforeFirstRun(t *testing.T) {
	job := newDigestJob(t, &recordingSink{})
	assert.Nil(t, job.LastStats())
}

func TestWeeklyDigest_Identity(t *testing.T) {
	job := newDigestJob(t, &recordingSink{})
	assert.Equal(t, "weekly_digest", job.Name())
	assert.NotEmpty(t, job.Description())
}

func TestLogSink_Deliver(t *testing.T) {
	sink := LogSink{}
	assert.NoError(t, sink.Deliver(context.Background(), subscriber("s1"), "digest"))
}
