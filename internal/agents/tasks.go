package agents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK KINDS & TASK VARIANTS
//
// Каждый вид запроса описывается закрытой типизированной структурой,
// а не открытой картой параметров: исполнитель падает сразу на
// отсутствующем поле, а не генерирует кривой промпт.
// Одна задача = один промпт = один вызов модели.
// ══════════════════════════════════════════════════════════════════════════════

// TaskKind определяет вид задачи.
type TaskKind string

const (
	// TaskRouting - маршрутизация запроса в свободной форме.
	TaskRouting TaskKind = "routing"
	// TaskClubQuestion - вопрос к чат-боту клуба.
	TaskClubQuestion TaskKind = "club_question"
	// TaskRecommendation - объяснение персональных рекомендаций.
	TaskRecommendation TaskKind = "recommendation"
	// TaskSearch - поиск мероприятий по запросу.
	TaskSearch TaskKind = "search"
	// TaskOnboarding - онбординг нового студента.
	TaskOnboarding TaskKind = "onboarding"
	// TaskWeeklyDigest - еженедельный дайджест.
	TaskWeeklyDigest TaskKind = "weekly_digest"
)

// IsValid проверяет корректность вида задачи.
func (k TaskKind) IsValid() bool {
	switch k {
	case TaskRouting, TaskClubQuestion, TaskRecommendation,
		TaskSearch, TaskOnboarding, TaskWeeklyDigest:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление вида.
func (k TaskKind) String() string {
	return string(k)
}

// Task - одно типизированное описание задачи для диспетчера.
type Task interface {
	// Kind возвращает вид задачи.
	Kind() TaskKind

	// HandlerKey возвращает ключ агента, который должен выполнить задачу.
	HandlerKey() Key

	// Validate проверяет, что все обязательные поля заполнены.
	Validate() error

	// Prompt рендерит ровно одно описание задачи на естественном языке.
	Prompt() string
}

// ErrMissingTaskField - в задаче не заполнено обязательное поле.
var ErrMissingTaskField = errors.New("agents: required task field is missing")

func missingField(kind TaskKind, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingTaskField, kind, field)
}

// ─────────────────────────────────────────────────────────────────────────────
// ROUTING
// ─────────────────────────────────────────────────────────────────────────────

// RoutingTask - запрос студента в свободной форме для агента-маршрутизатора.
type RoutingTask struct {
	// Query - вопрос студента.
	Query string

	// Context - дополнительный контекст разговора (опционально).
	Context string
}

// Kind возвращает вид задачи.
func (t RoutingTask) Kind() TaskKind { return TaskRouting }

// HandlerKey возвращает ключ агента-маршрутизатора.
func (t RoutingTask) HandlerKey() Key { return KeyRouter }

// Validate проверяет обязательные поля.
func (t RoutingTask) Validate() error {
	if strings.TrimSpace(t.Query) == "" {
		return missingField(TaskRouting, "Query")
	}
	return nil
}

// Prompt рендерит описание задачи маршрутизации.
func (t RoutingTask) Prompt() string {
	var b strings.Builder
	b.WriteString(`You are an intelligent and friendly campus assistant who answers student questions in a natural, conversational way - like a human chat partner.

When the student asks a question, use the most relevant knowledge area to provide a smooth, paragraph-style answer. Do not use bullet points or structured lists unless the student specifically asks for them.

Student Question: `)
	b.WriteString(t.Query)
	b.WriteString(`

Available knowledge areas:
1. Club information - activities, members, events, how to join
2. Personalized recommendations - suggestions for clubs or activities
3. Event discovery - details about upcoming events or opportunities
4. Onboarding - assistance with new users or profile setup

Respond only based on the student's question and the relevant knowledge area. Do not mention or describe the areas themselves. Write the answer as a natural paragraph that would feel like chatting with a helpful friend.`)
	if ctx := strings.TrimSpace(t.Context); ctx != "" {
		b.WriteString("\n\nConversation context: ")
		b.WriteString(ctx)
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// CLUB QUESTION
// ─────────────────────────────────────────────────────────────────────────────

// ClubQuestionTask - вопрос к чат-боту конкретного клуба.
type ClubQuestionTask struct {
	// ClubID - идентификатор клуба.
	ClubID string

	// ClubName - название клуба.
	ClubName string

	// ClubSummary - сведения о клубе (описание, миссия, история).
	ClubSummary string

	// Personality - запрошенный стиль. Учитывается только при первом
	// создании агента клуба; для существующего агента игнорируется.
	Personality catalog.PersonalityStyle

	// Question - вопрос студента.
	Question string
}

// Kind возвращает вид задачи.
func (t ClubQuestionTask) Kind() TaskKind { return TaskClubQuestion }

// HandlerKey возвращает ключ персонального агента клуба.
func (t ClubQuestionTask) HandlerKey() Key { return ClubKey(t.ClubID) }

// Validate проверяет обязательные поля.
func (t ClubQuestionTask) Validate() error {
	if t.ClubID == "" {
		return missingField(TaskClubQuestion, "ClubID")
	}
	if strings.TrimSpace(t.Question) == "" {
		return missingField(TaskClubQuestion, "Question")
	}
	return nil
}

// Prompt рендерит описание задачи для чат-бота клуба.
func (t ClubQuestionTask) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer the following question about %s:\n\nQuestion: %s\n\n", t.clubLabel(), t.Question)
	if summary := strings.TrimSpace(t.ClubSummary); summary != "" {
		b.WriteString("What you know about the club:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	b.WriteString(`Respond concisely and directly based on the question. Only include detailed information (such as history, mission, members, events, joining requirements, or resources) if the student specifically asks for it or if it is clearly relevant to the question.

Always match the club's personality and tone in your response.`)
	return b.String()
}

func (t ClubQuestionTask) clubLabel() string {
	if t.ClubName != "" {
		return t.ClubName
	}
	return "Club " + t.ClubID
}

// ─────────────────────────────────────────────────────────────────────────────
// RECOMMENDATION
// ─────────────────────────────────────────────────────────────────────────────

// RecommendationTask - объяснение ранжированных рекомендаций студенту.
type RecommendationTask struct {
	// StudentID - идентификатор студента.
	StudentID string

	// StudentName - имя студента.
	StudentName string

	// RankedJSON - детерминированная JSON-сериализация результата
	// скоринга, чтобы текст объяснения ссылался на конкретные позиции.
	RankedJSON string
}

// Kind возвращает вид задачи.
func (t RecommendationTask) Kind() TaskKind { return TaskRecommendation }

// HandlerKey возвращает ключ агента рекомендаций.
func (t RecommendationTask) HandlerKey() Key { return KeyRecommender }

// Validate проверяет обязательные поля.
func (t RecommendationTask) Validate() error {
	if t.StudentID == "" {
		return missingField(TaskRecommendation, "StudentID")
	}
	if strings.TrimSpace(t.RankedJSON) == "" {
		return missingField(TaskRecommendation, "RankedJSON")
	}
	return nil
}

// Prompt рендерит описание задачи рекомендаций.
func (t RecommendationTask) Prompt() string {
	name := t.StudentName
	if name == "" {
		name = "the student"
	}
	return fmt.Sprintf(`Present the following personalized opportunity recommendations to %s.

The list below was computed by the campus matching algorithm and is already ranked by relevance. Each item carries the reasons it was selected.

Ranked recommendations (JSON):
%s

Walk through the top items in ranked order, explain in a warm and encouraging tone why each one fits, and invite the student to register. Keep the JSON item order; do not invent opportunities that are not in the list. Reply with the JSON list first, then the explanation.`, name, t.RankedJSON)
}

// ─────────────────────────────────────────────────────────────────────────────
// SEARCH
// ─────────────────────────────────────────────────────────────────────────────

// SearchTask - поиск мероприятий по запросу в свободной форме.
type SearchTask struct {
	// Query - поисковый запрос студента.
	Query string

	// CandidatesJSON - JSON-сериализация найденных мероприятий,
	// среди которых агент выбирает и описывает релевантные.
	CandidatesJSON string
}

// Kind возвращает вид задачи.
func (t SearchTask) Kind() TaskKind { return TaskSearch }

// HandlerKey возвращает ключ агента поиска.
func (t SearchTask) HandlerKey() Key { return KeySearcher }

// Validate проверяет обязательные поля.
func (t SearchTask) Validate() error {
	if strings.TrimSpace(t.Query) == "" {
		return missingField(TaskSearch, "Query")
	}
	return nil
}

// Prompt рендерит описание задачи поиска.
func (t SearchTask) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, `Help the student find events matching this query: %q

You understand how students naturally express their interests, including synonyms and context (like "coding" meaning "programming").`, t.Query)
	if candidates := strings.TrimSpace(t.CandidatesJSON); candidates != "" {
		b.WriteString("\n\nMatching events from the campus catalog (JSON):\n")
		b.WriteString(candidates)
		b.WriteString("\n\nReply with the JSON list first, then a short summary that highlights trending events and events with limited seats left.")
	} else {
		b.WriteString("\n\nNo catalog events matched the query. Tell the student nothing was found and suggest how to rephrase the search.")
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// ONBOARDING
// ─────────────────────────────────────────────────────────────────────────────

// OnboardingTask - приветствие и первичная настройка нового студента.
type OnboardingTask struct {
	// StudentID - идентификатор студента.
	StudentID string

	// StudentName - имя студента.
	StudentName string

	// FieldOfStudy - направление обучения.
	FieldOfStudy string

	// YearLevel - курс.
	YearLevel int

	// StarterJSON - JSON-сериализация стартовых рекомендаций,
	// показывающих ценность платформы с первого дня.
	StarterJSON string
}

// Kind возвращает вид задачи.
func (t OnboardingTask) Kind() TaskKind { return TaskOnboarding }

// HandlerKey возвращает ключ агента онбординга.
func (t OnboardingTask) HandlerKey() Key { return KeyOnboarder }

// Validate проверяет обязательные поля.
func (t OnboardingTask) Validate() error {
	if t.StudentID == "" {
		return missingField(TaskOnboarding, "StudentID")
	}
	return nil
}

// Prompt рендерит описание задачи онбординга.
func (t OnboardingTask) Prompt() string {
	name := t.StudentName
	if name == "" {
		name = "the new student"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome %s to the campus hub and guide them through getting started.\n", name)
	if t.FieldOfStudy != "" {
		fmt.Fprintf(&b, "They study %s", t.FieldOfStudy)
		if t.YearLevel > 0 {
			fmt.Fprintf(&b, " (year %d)", t.YearLevel)
		}
		b.WriteString(".\n")
	}
	b.WriteString(`
Conduct a friendly welcome: explain how the platform helps them discover clubs and events, and encourage them to fill in their skills and interests so recommendations improve.`)
	if starter := strings.TrimSpace(t.StarterJSON); starter != "" {
		b.WriteString("\n\nStarter recommendations matching their profile (JSON):\n")
		b.WriteString(starter)
		b.WriteString("\n\nMention two or three of these to show the platform's value right away.")
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// WEEKLY DIGEST
// ─────────────────────────────────────────────────────────────────────────────

// WeeklyDigestTask - еженедельный дайджест возможностей для студента.
type WeeklyDigestTask struct {
	// StudentID - идентификатор студента.
	StudentID string

	// StudentName - имя студента.
	StudentName string

	// WeekLabel - человекочитаемое описание недели (например, "Sep 1 - Sep 7").
	WeekLabel string

	// RankedJSON - детерминированная JSON-сериализация рекомендаций недели.
	RankedJSON string
}

// Kind возвращает вид задачи.
func (t WeeklyDigestTask) Kind() TaskKind { return TaskWeeklyDigest }

// HandlerKey возвращает ключ агента рекомендаций: дайджест - его задача.
func (t WeeklyDigestTask) HandlerKey() Key { return KeyRecommender }

// Validate проверяет обязательные поля.
func (t WeeklyDigestTask) Validate() error {
	if t.StudentID == "" {
		return missingField(TaskWeeklyDigest, "StudentID")
	}
	if strings.TrimSpace(t.RankedJSON) == "" {
		return missingField(TaskWeeklyDigest, "RankedJSON")
	}
	return nil
}

// Prompt рендерит описание задачи дайджеста.
func (t WeeklyDigestTask) Prompt() string {
	name := t.StudentName
	if name == "" {
		name = "the student"
	}
	week := t.WeekLabel
	if week == "" {
		week = "this week"
	}
	return fmt.Sprintf(`Compose the weekly digest for %s covering %s.

Ranked opportunities for the week (JSON):
%s

Write a short, upbeat digest: open with a one-line greeting, present the top opportunities in ranked order with their reasons, and close with a nudge to register early for events with limited seats. Reply with the JSON list first, then the digest text.`, name, week, t.RankedJSON)
}
