package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGENT PERSONAS
// Персона задаётся один раз при создании контекста и определяет роль
// агента во всех последующих задачах.
// ══════════════════════════════════════════════════════════════════════════════

const (
	routerPersona = `You are the central assistant of the campus hub, a system that understands student needs and answers them directly. You have deep knowledge of clubs, events, recommendations and onboarding. You maintain conversation context and provide helpful responses.`

	recommenderPersona = `You are an expert in recommendation systems and student engagement. You analyze student profiles, academic fields, skills and platform activity to present the most relevant opportunities. You always explain why each recommendation is relevant, helping students discover opportunities they will truly enjoy.`

	searcherPersona = `You are a search expert who understands how students naturally express their interests. You process natural language queries, understand synonyms and context, and present relevant results. You highlight trending events and those with limited seats so students do not miss out.`

	onboarderPersona = `You are a welcoming guide who helps students get started on the campus hub. You conduct friendly conversations to understand their interests and skills, then immediately show them matching clubs and events to demonstrate the platform's value.`

	clubPersonaTemplate = `You are the dedicated assistant for %s. You know everything about the club's history, mission, members, events, requirements and how to join. You embody the club's %s personality in every interaction. You remember past conversations with students and provide personalized, helpful responses.`
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// DispatchResult - результат одной диспетчеризации.
type DispatchResult struct {
	// Response - сырой текстовый ответ агента.
	Response string

	// Count - количество элементов, если ответ начинается со
	// списка в формате JSON. При любой ошибке разбора - 0, не ошибка.
	Count int

	// Kind - вид выполненной задачи.
	Kind TaskKind

	// Key - ключ агента, выполнившего задачу.
	Key Key

	// Elapsed - длительность выполнения.
	Elapsed time.Duration
}

// Dispatcher разрешает агентный контекст по ключу задачи, выполняет
// против него ровно одну задачу и возвращает ответ с производными
// метаданными. Никаких очередей и батчей: один вызов - одна задача.
type Dispatcher struct {
	registry *Registry
	gen      TextGenerator
	log      *logger.Logger
}

// NewDispatcher создаёт диспетчер поверх реестра и генератора текста.
func NewDispatcher(registry *Registry, gen TextGenerator, log *logger.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("agents: registry is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("agents: text generator is required")
	}
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{registry: registry, gen: gen, log: log}, nil
}

// Registry возвращает реестр диспетчера (для наблюдаемости и тестов).
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch выполняет одну задачу:
//  1. валидирует задачу;
//  2. разрешает контекст через реестр, создавая его фабрикой вида;
//  3. рендерит ровно один промпт и отправляет его контексту;
//  4. считает производные метаданные из ответа.
//
// Существование сущностей, на которые ссылается задача, проверяется
// исполнителями до вызова Dispatch, не внутри него.
func (d *Dispatcher) Dispatch(ctx context.Context, task Task) (*DispatchResult, error) {
	if task == nil {
		return nil, shared.ErrUnknownTaskKind
	}
	if !task.Kind().IsValid() {
		return nil, shared.ErrUnknownTaskKind
	}
	if err := task.Validate(); err != nil {
		return nil, shared.WrapError("agent", "Dispatch", shared.ErrInvalidInput, "malformed task", err)
	}

	key := task.HandlerKey()
	agent, err := d.registry.Resolve(key, d.factoryFor(task))
	if err != nil {
		return nil, shared.WrapError("agent", "Resolve", shared.ErrServiceUnavailable,
			fmt.Sprintf("agent context %q could not be created", key), err)
	}

	prompt := task.Prompt()
	if strings.TrimSpace(prompt) == "" {
		return nil, shared.ErrEmptyPrompt
	}

	started := time.Now()
	response, err := agent.Execute(ctx, prompt)
	if err != nil {
		return nil, shared.WrapError("agent", "Generate", shared.ErrExternalService,
			"text generation failed", err)
	}
	elapsed := time.Since(started)

	result := &DispatchResult{
		Response: response,
		Count:    deriveCount(response),
		Kind:     task.Kind(),
		Key:      key,
		Elapsed:  elapsed,
	}

	d.log.Debug("task dispatched",
		logger.TaskKind(string(task.Kind())),
		logger.AgentKey(string(key)),
		logger.Int("derived_count", result.Count),
		logger.Latency(elapsed),
	)

	// Для списочных задач нулевой счётчик обычно означает, что модель
	// вернула неразбираемый список. Контракт от этого не меняется,
	// но сбой выше по течению должен быть виден в логах.
	if result.Count == 0 && expectsList(task.Kind()) {
		d.log.Warn("list-shaped response could not be parsed, count degraded to 0",
			logger.TaskKind(string(task.Kind())),
			logger.AgentKey(string(key)),
		)
	}

	return result, nil
}

// expectsList возвращает true для задач, ответ которых начинается с JSON-списка.
func expectsList(kind TaskKind) bool {
	switch kind {
	case TaskRecommendation, TaskSearch, TaskWeeklyDigest:
		return true
	default:
		return false
	}
}

// factoryFor возвращает фабрику контекста для вида задачи.
func (d *Dispatcher) factoryFor(task Task) Factory {
	key := task.HandlerKey()

	switch t := task.(type) {
	case ClubQuestionTask:
		// Персона и стиль клубного агента фиксируются при первом
		// создании; последующие задачи с другим стилем их не меняют.
		personality := t.Personality.OrDefault()
		persona := fmt.Sprintf(clubPersonaTemplate, t.clubLabel(), personality)
		return func() (*AgentContext, error) {
			return NewAgentContext(key, persona, personality, d.gen)
		}
	default:
		persona := singletonPersona(task.Kind())
		return func() (*AgentContext, error) {
			return NewAgentContext(key, persona, catalog.PersonalityFriendly, d.gen)
		}
	}
}

// singletonPersona возвращает персону синглтон-агента для вида задачи.
func singletonPersona(kind TaskKind) string {
	switch kind {
	case TaskRouting:
		return routerPersona
	case TaskRecommendation, TaskWeeklyDigest:
		return recommenderPersona
	case TaskSearch:
		return searcherPersona
	case TaskOnboarding:
		return onboarderPersona
	default:
		return routerPersona
	}
}

// deriveCount пытается разобрать начало ответа как JSON-список и вернуть
// его длину. Любая ошибка разбора даёт 0: снисходительная политика,
// кривой ответ модели не превращается в ошибку диспетчеризации.
func deriveCount(response string) int {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return 0
	}

	// Ответ может содержать текст после списка: берём первый JSON-массив.
	start := strings.Index(trimmed, "[")
	if start < 0 {
		return 0
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed[start:]))
	var items []json.RawMessage
	if err := decoder.Decode(&items); err != nil {
		return 0
	}
	return len(items)
}
