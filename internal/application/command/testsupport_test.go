package command

import (
	"context"
	"strings"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// Общие фейки для тестов команд. Хранят состояние в памяти, без блокировок:
// каждый тест работает со своим экземпляром.
// ──────────────────────────────────────────────────────────────────────────────

func fixedNow() time.Time {
	return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

type memStudentRepo struct {
	students      map[string]*catalog.Student
	getByEmailErr error
}

func newMemStudentRepo(students ...*catalog.Student) *memStudentRepo {
	repo := &memStudentRepo{students: make(map[string]*catalog.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *memStudentRepo) Create(_ context.Context, student *catalog.Student) error {
	for _, existing := range r.students {
		if existing.Email == student.Email {
			return shared.ErrEmailTaken
		}
	}
	r.students[student.ID] = student
	return nil
}

func (r *memStudentRepo) GetByID(_ context.Context, id string) (*catalog.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return student, nil
}

func (r *memStudentRepo) GetByEmail(_ context.Context, email catalog.Email) (*catalog.Student, error) {
	if r.getByEmailErr != nil {
		return nil, r.getByEmailErr
	}
	for _, student := range r.students {
		if strings.EqualFold(student.Email.String(), email.String()) {
			return student, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *memStudentRepo) UpdateProfile(_ context.Context, student *catalog.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[student.ID] = student
	return nil
}

func (r *memStudentRepo) ListActive(_ context.Context) ([]*catalog.Student, error) {
	out := make([]*catalog.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *memStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

type memEventRepo struct {
	events     map[string]*catalog.Event
	increments map[string]int
}

func newMemEventRepo(events ...*catalog.Event) *memEventRepo {
	repo := &memEventRepo{
		events:     make(map[string]*catalog.Event),
		increments: make(map[string]int),
	}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (r *memEventRepo) GetByID(_ context.Context, id string) (*catalog.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, shared.ErrEventNotFound
	}
	return event, nil
}

func (r *memEventRepo) ListUpcoming(context.Context, catalog.EventFilter) ([]*catalog.Event, error) {
	return nil, nil
}

func (r *memEventRepo) Search(context.Context, string, catalog.EventFilter) ([]*catalog.Event, error) {
	return nil, nil
}

func (r *memEventRepo) ListTrending(context.Context, int) ([]*catalog.Event, error) {
	return nil, nil
}

func (r *memEventRepo) IncrementRegistrations(_ context.Context, eventID string) error {
	r.increments[eventID]++
	return nil
}

type memRegistrationRepo struct {
	claimed map[string]map[string]struct{}
}

func newMemRegistrationRepo() *memRegistrationRepo {
	return &memRegistrationRepo{claimed: make(map[string]map[string]struct{})}
}

func (r *memRegistrationRepo) claim(studentID, itemID string) {
	if r.claimed[studentID] == nil {
		r.claimed[studentID] = make(map[string]struct{})
	}
	r.claimed[studentID][itemID] = struct{}{}
}

func (r *memRegistrationRepo) ClaimedItemsOf(_ context.Context, studentID string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(r.claimed[studentID]))
	for id := range r.claimed[studentID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *memRegistrationRepo) Create(_ context.Context, studentID, eventID string) error {
	if _, ok := r.claimed[studentID][eventID]; ok {
		return shared.ErrAlreadyRegistered
	}
	r.claim(studentID, eventID)
	return nil
}

// spyCache фиксирует инвалидации кэша рекомендаций.
type spyCache struct {
	invalidated   []string
	invalidateErr error
}

func (c *spyCache) Get(context.Context, string, int) (*query.GetRecommendationsResult, error) {
	return nil, nil
}

func (c *spyCache) Set(context.Context, *query.GetRecommendationsResult, int) error {
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, studentID string) error {
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.invalidated = append(c.invalidated, studentID)
	return nil
}

func existingStudent(id string) *catalog.Student {
	return &catalog.Student{
		ID:           id,
		Name:         "Alice Niyazova",
		Email:        catalog.Email(id + "@campus.edu"),
		FieldOfStudy: "Computer Science",
		YearLevel:    2,
		SkillIDs:     []string{"python"},
		CreatedAt:    fixedNow().Add(-30 * 24 * time.Hour),
	}
}

func upcomingEvent(id string, startsIn time.Duration) *catalog.Event {
	return &catalog.Event{
		ID:        id,
		ClubID:    "c1",
		Title:     "Evening Workshop",
		EventType: catalog.EventTypeWorkshop,
		StartsAt:  fixedNow().Add(startsIn),
	}
}
