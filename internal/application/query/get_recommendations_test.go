package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

func fixedNow() time.Time {
	return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func newRecommendationsHandler(
	students *fakeStudentRepo,
	clubs *fakeClubRepo,
	events *fakeEventRepo,
	regs *fakeRegistrationRepo,
	skills *fakeSkillRepo,
	cache RecommendationCache,
) *GetRecommendationsHandler {
	h := NewGetRecommendationsHandler(students, clubs, events, regs, skills, cache, nil)
	h.now = fixedNow
	return h
}

func TestGetRecommendations_RanksBySkillMatchAndTrending(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", []string{"python"}, nil)

	// Воркшоп с совпадающим навыком должен обойти популярное мероприятие.
	matching := futureEvent("e1", "c1", "Python Workshop", 48*time.Hour, now)
	matching.RequiredSkillIDs = []string{"python"}

	trending := futureEvent("e2", "c1", "Campus Party", 24*time.Hour, now)
	trending.IsTrending = true
	trending.ViewCount = 50

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(matching, trending),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(&catalog.Skill{ID: "python", Name: "Python"}),
		nil,
	)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1", Limit: 2})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "e1", result.Items[0].ItemID)
	assert.Equal(t, "event", result.Items[0].ItemType)
	assert.Equal(t, "Tech Club", result.Items[0].ClubName)
	assert.Equal(t, 25.0, result.Items[0].Score)
	assert.Equal(t, []string{"Matches your skills: Python"}, result.Items[0].Reasons)

	assert.Equal(t, "e2", result.Items[1].ItemID)
	assert.Equal(t, 17.5, result.Items[1].Score) // 15 trending + 0.05*50 views
	assert.Contains(t, result.Items[1].Reasons, "Trending event")
}

func TestGetRecommendations_ClubAffiliationBoostsClubEvents(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, []string{"c1"})

	ownClubEvent := futureEvent("e1", "c1", "Members Meetup", 24*time.Hour, now)
	otherEvent := futureEvent("e2", "c2", "Open Lecture", 24*time.Hour, now)

	regs := newFakeRegistrationRepo()
	regs.claim("s1", "c1") // членство тоже занятая позиция

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(
			&catalog.Club{ID: "c1", Name: "Chess Club"},
			&catalog.Club{ID: "c2", Name: "Art Club"},
		),
		newFakeEventRepo(ownClubEvent, otherEvent),
		regs,
		newFakeSkillRepo(),
		nil,
	)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)

	// Свой клуб исключён из выдачи, но его мероприятие получает бонус.
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ItemID)
	}
	assert.NotContains(t, ids, "c1")

	assert.Equal(t, "e1", result.Items[0].ItemID)
	assert.Equal(t, 30.0, result.Items[0].Score)
	assert.Equal(t, []string{"Your club's event"}, result.Items[0].Reasons)
}

func TestGetRecommendations_ExcludesClaimedFullAndPast(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, nil)

	claimed := futureEvent("e1", "c1", "Already Registered", 24*time.Hour, now)

	one := 1
	full := futureEvent("e2", "c1", "Full Event", 24*time.Hour, now)
	full.MaxSeats = &one
	full.CurrentRegistrations = 1

	open := futureEvent("e3", "c1", "Open Event", 24*time.Hour, now)
	open.ViewCount = 10

	regs := newFakeRegistrationRepo()
	regs.claim("s1", "e1")

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(claimed, full, open),
		regs,
		newFakeSkillRepo(),
		nil,
	)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)

	for _, item := range result.Items {
		assert.NotEqual(t, "e1", item.ItemID)
		assert.NotEqual(t, "e2", item.ItemID)
	}
}

func TestGetRecommendations_StudentNotFound(t *testing.T) {
	h := newRecommendationsHandler(
		newFakeStudentRepo(),
		newFakeClubRepo(),
		newFakeEventRepo(),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(),
		nil,
	)

	_, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestGetRecommendations_ValidatesQuery(t *testing.T) {
	h := newRecommendationsHandler(
		newFakeStudentRepo(), newFakeClubRepo(), newFakeEventRepo(),
		newFakeRegistrationRepo(), newFakeSkillRepo(), nil,
	)

	_, err := h.Handle(context.Background(), GetRecommendationsQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1", Limit: -1})
	assert.True(t, shared.IsValidation(err))
}

func TestGetRecommendations_CacheHitSkipsComputation(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, nil)
	cache := newFakeRecommendationCache()

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(futureEvent("e1", "c1", "Workshop", 24*time.Hour, now)),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(),
		cache,
	)

	first, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, cache.sets, "cache hit must not recompute")
}

func TestGetRecommendations_BypassCache(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, nil)
	cache := newFakeRecommendationCache()

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(futureEvent("e1", "c1", "Workshop", 24*time.Hour, now)),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(),
		cache,
	)

	_, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1", BypassCache: true})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, cache.sets)
}

func TestGetRecommendations_CacheFailureDegradesToComputation(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, nil)
	cache := newFakeRecommendationCache()
	cache.getErr = errors.New("redis down")

	viewed := futureEvent("e1", "c1", "Workshop", 24*time.Hour, now)
	viewed.ViewCount = 20

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(viewed),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(),
		cache,
	)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Items)
	assert.False(t, result.FromCache)
}

func TestGetRecommendations_PopularFallbackReason(t *testing.T) {
	now := fixedNow()
	student := testStudent("s1", "Aida", nil, nil)

	plain := futureEvent("e1", "c1", "Plain Event", 24*time.Hour, now)
	plain.ViewCount = 40

	h := newRecommendationsHandler(
		newFakeStudentRepo(student),
		newFakeClubRepo(&catalog.Club{ID: "c1", Name: "Tech Club"}),
		newFakeEventRepo(plain),
		newFakeRegistrationRepo(),
		newFakeSkillRepo(),
		nil,
	)

	result, err := h.Handle(context.Background(), GetRecommendationsQuery{StudentID: "s1"})
	require.NoError(t, err)

	require.NotEmpty(t, result.Items)
	first := result.Items[0]
	assert.Equal(t, "e1", first.ItemID)
	assert.Equal(t, 2.0, first.Score) // 0.05 * 40 views
	assert.Equal(t, []string{"Popular event"}, first.Reasons)
}

func TestGetRecommendationsResult_ItemsJSON(t *testing.T) {
	result := &GetRecommendationsResult{
		Items: []RecommendationItemDTO{
			{ItemID: "e1", ItemType: "event", Title: "W", Score: 25, Reasons: []string{"r"}},
		},
	}

	data, err := result.ItemsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"item_id":"e1","item_type":"event","title":"W","score":25,"reasons":["r"]}]`, data)
}
