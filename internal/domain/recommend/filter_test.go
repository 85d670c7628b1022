package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_RemovesClaimed(t *testing.T) {
	subject := subjectWithSkills()
	subject.ClaimedIDs["event-1"] = struct{}{}
	subject.ClaimedIDs["club-1"] = struct{}{}

	pool := []Candidate{
		{ID: "event-1", Kind: KindEvent, IsFuture: true},
		{ID: "event-2", Kind: KindEvent, IsFuture: true},
		{ID: "club-1", Kind: KindClub, IsFuture: true},
	}

	eligible := Filter(subject, pool)
	require.Len(t, eligible, 1)
	assert.Equal(t, "event-2", eligible[0].ID)
}

func TestFilter_RemovesFullEvents(t *testing.T) {
	// A full event never passes, regardless of how well it would score.
	subject := subjectWithSkills("python")

	pool := []Candidate{
		{
			ID: "full", Kind: KindEvent, IsFuture: true, IsFull: true,
			Trending: true, Skills: []CandidateSkill{{ID: "python", Name: "Python"}},
		},
		{ID: "open", Kind: KindEvent, IsFuture: true},
	}

	eligible := Filter(subject, pool)
	require.Len(t, eligible, 1)
	assert.Equal(t, "open", eligible[0].ID)
}

func TestFilter_UnlimitedCapacityNeverFull(t *testing.T) {
	// The snapshot builder sets IsFull=false for nil capacity; the filter
	// must keep such events even with huge registration counts.
	subject := subjectWithSkills()
	pool := []Candidate{
		{ID: "unlimited", Kind: KindEvent, IsFuture: true, IsFull: false, Popularity: 9000},
	}

	eligible := Filter(subject, pool)
	assert.Len(t, eligible, 1)
}

func TestFilter_RemovesPastEvents(t *testing.T) {
	subject := subjectWithSkills("python")

	pool := []Candidate{
		{
			ID: "past", Kind: KindEvent, IsFuture: false,
			Trending: true, Skills: []CandidateSkill{{ID: "python", Name: "Python"}},
		},
		{ID: "future", Kind: KindEvent, IsFuture: true},
	}

	eligible := Filter(subject, pool)
	require.Len(t, eligible, 1)
	assert.Equal(t, "future", eligible[0].ID)
}

func TestFilter_ClubsIgnoreTimeRule(t *testing.T) {
	subject := subjectWithSkills()
	pool := []Candidate{
		{ID: "club-1", Kind: KindClub, IsFuture: true},
	}

	eligible := Filter(subject, pool)
	assert.Len(t, eligible, 1)
}

func TestFilter_PreservesOrder(t *testing.T) {
	subject := subjectWithSkills()
	subject.ClaimedIDs["b"] = struct{}{}

	pool := []Candidate{
		{ID: "a", Kind: KindEvent, IsFuture: true},
		{ID: "b", Kind: KindEvent, IsFuture: true},
		{ID: "c", Kind: KindEvent, IsFuture: true},
		{ID: "d", Kind: KindEvent, IsFuture: true},
	}

	eligible := Filter(subject, pool)
	require.Len(t, eligible, 3)
	assert.Equal(t, "a", eligible[0].ID)
	assert.Equal(t, "c", eligible[1].ID)
	assert.Equal(t, "d", eligible[2].ID)
}

func TestFilterThenRank_NoClaimedInOutput(t *testing.T) {
	// Property from the produced contract: rank(filter(S, C), n) contains
	// nothing from S.ClaimedIDs.
	subject := subjectWithSkills("python")
	subject.ClaimedIDs["event-1"] = struct{}{}
	subject.ClaimedIDs["event-3"] = struct{}{}

	pool := []Candidate{
		{ID: "event-1", Kind: KindEvent, IsFuture: true, Trending: true},
		{ID: "event-2", Kind: KindEvent, IsFuture: true, Trending: true},
		{ID: "event-3", Kind: KindEvent, IsFuture: true, Trending: true},
		{ID: "event-4", Kind: KindEvent, IsFuture: true, Trending: true},
	}

	ranked, err := Rank(subject, Filter(subject, pool), 10)
	require.NoError(t, err)
	for _, item := range ranked {
		assert.NotContains(t, subject.ClaimedIDs, item.CandidateID)
	}
	assert.Len(t, ranked, 2)
}
