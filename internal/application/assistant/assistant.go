// Package assistant orchestrates agent tasks: it validates the entities a
// request refers to, gathers the data payloads the prompts need, builds the
// typed task and hands it to the dispatcher. Entity existence is always
// checked here, before any agent context is touched - a question about an
// unknown club must fail without creating its agent.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-hub/clubevent-hub/internal/agents"
	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
	"github.com/campus-hub/clubevent-hub/pkg/timeutil"
)

// starterRecommendationLimit - сколько стартовых рекомендаций показывает онбординг.
const starterRecommendationLimit = 3

// Assistant - фасад над диспетчером агентов для прикладных сценариев.
type Assistant struct {
	dispatcher      *agents.Dispatcher
	studentRepo     catalog.StudentRepository
	clubRepo        catalog.ClubRepository
	recommendations *query.GetRecommendationsHandler
	search          *query.SearchEventsHandler
	log             *logger.Logger
}

// New создаёт ассистента.
func New(
	dispatcher *agents.Dispatcher,
	studentRepo catalog.StudentRepository,
	clubRepo catalog.ClubRepository,
	recommendations *query.GetRecommendationsHandler,
	search *query.SearchEventsHandler,
	log *logger.Logger,
) *Assistant {
	if log == nil {
		log = logger.Default()
	}
	return &Assistant{
		dispatcher:      dispatcher,
		studentRepo:     studentRepo,
		clubRepo:        clubRepo,
		recommendations: recommendations,
		search:          search,
		log:             log,
	}
}

// Route отвечает на вопрос студента в свободной форме через агента-маршрутизатора.
func (a *Assistant) Route(ctx context.Context, question, conversationContext string) (*agents.DispatchResult, error) {
	return a.dispatcher.Dispatch(ctx, agents.RoutingTask{
		Query:   question,
		Context: conversationContext,
	})
}

// AskClub отвечает на вопрос о конкретном клубе через персонального агента клуба.
// Несуществующий клуб - shared.ErrClubNotFound; агент при этом не создаётся.
func (a *Assistant) AskClub(ctx context.Context, clubID, question string) (*agents.DispatchResult, error) {
	club, err := a.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	return a.dispatcher.Dispatch(ctx, agents.ClubQuestionTask{
		ClubID:      club.ID,
		ClubName:    club.Name,
		ClubSummary: clubSummary(club),
		Personality: club.PersonalityStyle,
		Question:    question,
	})
}

// ExplainRecommendations вычисляет рекомендации студента и просит агента
// рекомендаций объяснить их. Порядок позиций в ответе определяется
// движком скоринга, не моделью.
func (a *Assistant) ExplainRecommendations(ctx context.Context, studentID string, limit int) (*agents.DispatchResult, *query.GetRecommendationsResult, error) {
	recs, err := a.recommendations.Handle(ctx, query.GetRecommendationsQuery{
		StudentID: studentID,
		Limit:     limit,
	})
	if err != nil {
		return nil, nil, err
	}

	rankedJSON, err := recs.ItemsJSON()
	if err != nil {
		return nil, nil, err
	}

	result, err := a.dispatcher.Dispatch(ctx, agents.RecommendationTask{
		StudentID:   recs.StudentID,
		StudentName: recs.StudentName,
		RankedJSON:  rankedJSON,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, recs, nil
}

// SearchEvents ищет мероприятия по запросу и просит агента поиска
// оформить выдачу.
func (a *Assistant) SearchEvents(ctx context.Context, searchQuery string) (*agents.DispatchResult, *query.SearchEventsResult, error) {
	found, err := a.search.Handle(ctx, query.SearchEventsQuery{Query: searchQuery})
	if err != nil {
		return nil, nil, err
	}

	candidatesJSON := ""
	if len(found.Events) > 0 {
		candidatesJSON, err = found.EventsJSON()
		if err != nil {
			return nil, nil, err
		}
	}

	result, err := a.dispatcher.Dispatch(ctx, agents.SearchTask{
		Query:          searchQuery,
		CandidatesJSON: candidatesJSON,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, found, nil
}

// Onboard приветствует нового студента. Стартовые рекомендации - best effort:
// их отсутствие не срывает онбординг.
func (a *Assistant) Onboard(ctx context.Context, studentID string) (*agents.DispatchResult, error) {
	student, err := a.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	starterJSON := ""
	recs, recErr := a.recommendations.Handle(ctx, query.GetRecommendationsQuery{
		StudentID: student.ID,
		Limit:     starterRecommendationLimit,
	})
	if recErr != nil {
		a.log.Warn("starter recommendations unavailable during onboarding",
			logger.StudentID(student.ID), logger.Err(recErr))
	} else if len(recs.Items) > 0 {
		if starterJSON, err = recs.ItemsJSON(); err != nil {
			return nil, err
		}
	}

	return a.dispatcher.Dispatch(ctx, agents.OnboardingTask{
		StudentID:    student.ID,
		StudentName:  student.Name,
		FieldOfStudy: student.FieldOfStudy.String(),
		YearLevel:    int(student.YearLevel),
		StarterJSON:  starterJSON,
	})
}

// ComposeWeeklyDigest собирает еженедельный дайджест студента.
// Кэш рекомендаций обходится: дайджест всегда считается по свежим данным.
func (a *Assistant) ComposeWeeklyDigest(ctx context.Context, studentID string) (*agents.DispatchResult, error) {
	recs, err := a.recommendations.Handle(ctx, query.GetRecommendationsQuery{
		StudentID:   studentID,
		BypassCache: true,
	})
	if err != nil {
		return nil, err
	}

	rankedJSON, err := recs.ItemsJSON()
	if err != nil {
		return nil, err
	}

	from, to := timeutil.UpcomingWeek(timeutil.Now())
	weekLabel := fmt.Sprintf("%s - %s",
		timeutil.FormatCampus(from, timeutil.FormatDate),
		timeutil.FormatCampus(to, timeutil.FormatDate),
	)

	return a.dispatcher.Dispatch(ctx, agents.WeeklyDigestTask{
		StudentID:   recs.StudentID,
		StudentName: recs.StudentName,
		WeekLabel:   weekLabel,
		RankedJSON:  rankedJSON,
	})
}

// clubSummary собирает сведения о клубе для промпта клубного агента.
func clubSummary(club *catalog.Club) string {
	var parts []string
	if club.Description != "" {
		parts = append(parts, "Description: "+club.Description)
	}
	if club.Mission != "" {
		parts = append(parts, "Mission: "+club.Mission)
	}
	if club.History != "" {
		parts = append(parts, "History: "+club.History)
	}
	if club.MemberCount > 0 {
		parts = append(parts, fmt.Sprintf("Members: %d", club.MemberCount))
	}
	return strings.Join(parts, "\n")
}
