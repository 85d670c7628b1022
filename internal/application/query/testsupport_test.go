package query

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes. Реализуют репозитории каталога поверх карт,
// без потокобезопасности сверх нужд тестов.
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[string]*catalog.Student
}

func newFakeStudentRepo(students ...*catalog.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*catalog.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *fakeStudentRepo) Create(_ context.Context, student *catalog.Student) error {
	for _, existing := range r.students {
		if existing.Email == student.Email {
			return shared.ErrEmailTaken
		}
	}
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*catalog.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return student, nil
}

func (r *fakeStudentRepo) GetByEmail(_ context.Context, email catalog.Email) (*catalog.Student, error) {
	for _, s := range r.students {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentRepo) UpdateProfile(_ context.Context, student *catalog.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) ListActive(_ context.Context) ([]*catalog.Student, error) {
	out := make([]*catalog.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.students[id]
	return ok, nil
}

type fakeClubRepo struct {
	clubs map[string]*catalog.Club
}

func newFakeClubRepo(clubs ...*catalog.Club) *fakeClubRepo {
	repo := &fakeClubRepo{clubs: make(map[string]*catalog.Club)}
	for _, c := range clubs {
		repo.clubs[c.ID] = c
	}
	return repo
}

func (r *fakeClubRepo) GetByID(_ context.Context, id string) (*catalog.Club, error) {
	club, ok := r.clubs[id]
	if !ok {
		return nil, shared.ErrClubNotFound
	}
	return club, nil
}

func (r *fakeClubRepo) GetByName(_ context.Context, name string) (*catalog.Club, error) {
	for _, c := range r.clubs {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, shared.ErrClubNotFound
}

func (r *fakeClubRepo) List(_ context.Context) ([]*catalog.Club, error) {
	out := make([]*catalog.Club, 0, len(r.clubs))
	for _, c := range r.clubs {
		out = append(out, c)
	}
	return out, nil
}

type fakeEventRepo struct {
	events map[string]*catalog.Event
}

func newFakeEventRepo(events ...*catalog.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*catalog.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*catalog.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, shared.ErrEventNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) ListUpcoming(_ context.Context, filter catalog.EventFilter) ([]*catalog.Event, error) {
	out := make([]*catalog.Event, 0, len(r.events))
	for _, e := range r.events {
		if !filter.From.IsZero() && !e.StartsAt.After(filter.From) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEventRepo) Search(_ context.Context, query string, filter catalog.EventFilter) ([]*catalog.Event, error) {
	q := strings.ToLower(query)
	out := make([]*catalog.Event, 0)
	for _, e := range r.events {
		if filter.ClubID != "" && e.ClubID != filter.ClubID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEventRepo) ListTrending(_ context.Context, limit int) ([]*catalog.Event, error) {
	out := make([]*catalog.Event, 0)
	for _, e := range r.events {
		if e.IsTrending || e.ViewCount > 0 {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEventRepo) IncrementRegistrations(_ context.Context, eventID string) error {
	event, ok := r.events[eventID]
	if !ok {
		return shared.ErrEventNotFound
	}
	event.CurrentRegistrations++
	return nil
}

type fakeRegistrationRepo struct {
	claimed map[string]map[string]struct{} // studentID -> itemIDs
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{claimed: make(map[string]map[string]struct{})}
}

func (r *fakeRegistrationRepo) claim(studentID string, itemIDs ...string) {
	if r.claimed[studentID] == nil {
		r.claimed[studentID] = make(map[string]struct{})
	}
	for _, id := range itemIDs {
		r.claimed[studentID][id] = struct{}{}
	}
}

func (r *fakeRegistrationRepo) ClaimedItemsOf(_ context.Context, studentID string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(r.claimed[studentID]))
	for id := range r.claimed[studentID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) Create(_ context.Context, studentID, eventID string) error {
	if _, ok := r.claimed[studentID][eventID]; ok {
		return shared.ErrAlreadyRegistered
	}
	r.claim(studentID, eventID)
	return nil
}

type fakeSkillRepo struct {
	skills map[string]*catalog.Skill
}

func newFakeSkillRepo(skills ...*catalog.Skill) *fakeSkillRepo {
	repo := &fakeSkillRepo{skills: make(map[string]*catalog.Skill)}
	for _, s := range skills {
		repo.skills[s.ID] = s
	}
	return repo
}

func (r *fakeSkillRepo) GetByIDs(_ context.Context, ids []string) ([]*catalog.Skill, error) {
	out := make([]*catalog.Skill, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.skills[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSkillRepo) GetByNames(_ context.Context, names []string) ([]*catalog.Skill, error) {
	out := make([]*catalog.Skill, 0, len(names))
	for _, name := range names {
		for _, s := range r.skills {
			if strings.EqualFold(s.Name, name) {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (r *fakeSkillRepo) ListAll(_ context.Context) ([]*catalog.Skill, error) {
	out := make([]*catalog.Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	return out, nil
}

// fakeRecommendationCache - кэш рекомендаций в памяти.
type fakeRecommendationCache struct {
	mu          sync.Mutex
	entries     map[string]*GetRecommendationsResult
	gets, sets  int
	invalidated []string
	getErr      error
}

func newFakeRecommendationCache() *fakeRecommendationCache {
	return &fakeRecommendationCache{entries: make(map[string]*GetRecommendationsResult)}
}

func cacheKey(studentID string, limit int) string {
	return studentID + ":" + strconv.Itoa(limit)
}

func (c *fakeRecommendationCache) Get(_ context.Context, studentID string, limit int) (*GetRecommendationsResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[cacheKey(studentID, limit)], nil
}

func (c *fakeRecommendationCache) Set(_ context.Context, result *GetRecommendationsResult, limit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[cacheKey(result.StudentID, limit)] = result
	return nil
}

func (c *fakeRecommendationCache) Invalidate(_ context.Context, studentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, studentID)
	for key := range c.entries {
		if strings.HasPrefix(key, studentID+":") {
			delete(c.entries, key)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture builders
// ─────────────────────────────────────────────────────────────────────────────

func testStudent(id, name string, skillIDs, clubIDs []string) *catalog.Student {
	return &catalog.Student{
		ID:           id,
		Name:         name,
		Email:        catalog.Email(id + "@campus.edu"),
		FieldOfStudy: "Computer Science",
		YearLevel:    2,
		SkillIDs:     skillIDs,
		ClubIDs:      clubIDs,
	}
}

func futureEvent(id, clubID, title string, startsIn time.Duration, now time.Time) *catalog.Event {
	return &catalog.Event{
		ID:        id,
		ClubID:    clubID,
		Title:     title,
		EventType: catalog.EventTypeWorkshop,
		StartsAt:  now.Add(startsIn),
	}
}
