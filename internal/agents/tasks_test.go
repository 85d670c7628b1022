package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
)

func TestTaskKind_IsValid(t *testing.T) {
	valid := []TaskKind{
		TaskRouting, TaskClubQuestion, TaskRecommendation,
		TaskSearch, TaskOnboarding, TaskWeeklyDigest,
	}
	for _, kind := range valid {
		assert.True(t, kind.IsValid(), kind)
	}

	assert.False(t, TaskKind("").IsValid())
	assert.False(t, TaskKind("leaderboard").IsValid())
}

func TestClubKey(t *testing.T) {
	key := ClubKey("club-42")
	assert.Equal(t, Key("club:club-42"), key)
	assert.True(t, key.IsClubKey())
	assert.False(t, KeyRouter.IsClubKey())
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"routing ok", RoutingTask{Query: "hi"}, false},
		{"routing empty query", RoutingTask{}, true},
		{"routing whitespace query", RoutingTask{Query: "  "}, true},
		{"club ok", ClubQuestionTask{ClubID: "c1", Question: "q"}, false},
		{"club missing id", ClubQuestionTask{Question: "q"}, true},
		{"club missing question", ClubQuestionTask{ClubID: "c1"}, true},
		{"recommendation ok", RecommendationTask{StudentID: "s1", RankedJSON: "[]"}, false},
		{"recommendation missing student", RecommendationTask{RankedJSON: "[]"}, true},
		{"recommendation missing json", RecommendationTask{StudentID: "s1"}, true},
		{"search ok", SearchTask{Query: "robotics"}, false},
		{"search empty", SearchTask{}, true},
		{"onboarding ok", OnboardingTask{StudentID: "s1"}, false},
		{"onboarding missing student", OnboardingTask{}, true},
		{"digest ok", WeeklyDigestTask{StudentID: "s1", RankedJSON: "[]"}, false},
		{"digest missing json", WeeklyDigestTask{StudentID: "s1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingTaskField)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTask_HandlerKeys(t *testing.T) {
	assert.Equal(t, KeyRouter, RoutingTask{}.HandlerKey())
	assert.Equal(t, KeySearcher, SearchTask{}.HandlerKey())
	assert.Equal(t, KeyOnboarder, OnboardingTask{}.HandlerKey())
	assert.Equal(t, KeyRecommender, RecommendationTask{}.HandlerKey())

	// Дайджест обслуживает агент рекомендаций, отдельного ключа нет.
	assert.Equal(t, KeyRecommender, WeeklyDigestTask{}.HandlerKey())

	assert.Equal(t, ClubKey("c1"), ClubQuestionTask{ClubID: "c1"}.HandlerKey())
}

func TestClubQuestionTask_Prompt(t *testing.T) {
	task := ClubQuestionTask{
		ClubID:      "c1",
		ClubName:    "Chess Club",
		ClubSummary: "Description: weekly blitz tournaments",
		Personality: catalog.PersonalityEnthusiastic,
		Question:    "When are meetings?",
	}

	prompt := task.Prompt()
	assert.Contains(t, prompt, "Chess Club")
	assert.Contains(t, prompt, "When are meetings?")
	assert.Contains(t, prompt, "weekly blitz tournaments")
}

func TestClubQuestionTask_PromptFallsBackToID(t *testing.T) {
	task := ClubQuestionTask{ClubID: "c9", Question: "q"}
	assert.Contains(t, task.Prompt(), "Club c9")
}

func TestSearchTask_PromptWithoutCandidates(t *testing.T) {
	prompt := SearchTask{Query: "underwater basket weaving"}.Prompt()
	assert.Contains(t, prompt, "nothing was found")
}

func TestOnboardingTask_PromptIncludesProfile(t *testing.T) {
	task := OnboardingTask{
		StudentID:    "s1",
		StudentName:  "Aida",
		FieldOfStudy: "Computer Science",
		YearLevel:    2,
		StarterJSON:  `[{"item_id":"e1"}]`,
	}

	prompt := task.Prompt()
	assert.Contains(t, prompt, "Aida")
	assert.Contains(t, prompt, "Computer Science")
	assert.Contains(t, prompt, "year 2")
	assert.Contains(t, prompt, `"item_id":"e1"`)
}

func TestWeeklyDigestTask_PromptDefaults(t *testing.T) {
	prompt := WeeklyDigestTask{StudentID: "s1", RankedJSON: "[]"}.Prompt()
	assert.Contains(t, prompt, "the student")
	assert.Contains(t, prompt, "this week")
}
