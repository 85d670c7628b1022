// Package agents реализует движок диспетчеризации запросов: реестр
// агентных контекстов с единоразовым созданием, диспетчер задач и
// типизированные описания задач для каждого вида запроса.
//
// Агентный контекст - непрозрачный объект с собственной разговорной
// памятью. Он создаётся лениво при первом запросе с данным ключом и
// переиспользуется всеми последующими запросами, поэтому дорогая
// инициализация (привязка модели, персоны) выполняется один раз.
package agents

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEXT GENERATOR
// Непрозрачная способность генерации текста. Единственная точка ожидания
// внешнего сервиса во всём движке.
// ══════════════════════════════════════════════════════════════════════════════

// TextGenerator определяет контракт генерации текста по промпту.
// Реализация - infrastructure/external/gemini.
type TextGenerator interface {
	// Generate отправляет промпт и возвращает один текстовый ответ.
	// Отмена контекста прекращает ожидание, но не отменяет уже
	// отправленный запрос на стороне модели.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER KEYS
// ══════════════════════════════════════════════════════════════════════════════

// Key - идентификатор, под которым кешируется агентный контекст.
type Key string

const (
	// KeyRouter - синглтон-агент маршрутизации запросов.
	KeyRouter Key = "router"
	// KeyRecommender - синглтон-агент рекомендаций (обслуживает и дайджест).
	KeyRecommender Key = "recommender"
	// KeySearcher - синглтон-агент поиска мероприятий.
	KeySearcher Key = "searcher"
	// KeyOnboarder - синглтон-агент онбординга.
	KeyOnboarder Key = "onboarder"
)

// ClubKey возвращает ключ персонального агента клуба.
func ClubKey(clubID string) Key {
	return Key("club:" + clubID)
}

// IsClubKey возвращает true для ключа клубного агента.
func (k Key) IsClubKey() bool {
	return strings.HasPrefix(string(k), "club:")
}

// String возвращает строковое представление ключа.
func (k Key) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// AGENT CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

// maxMemoryExchanges ограничивает разговорную память контекста.
// Старые обмены вытесняются по кругу, чтобы промпт не рос бесконечно.
const maxMemoryExchanges = 10

// exchange - один обмен вопрос-ответ в памяти контекста.
type exchange struct {
	prompt   string
	response string
}

// AgentContext - состояние одного агента: персона, зафиксированный стиль
// общения и разговорная память между вызовами.
//
// Владение: контексты принадлежат исключительно Registry. Исполнители
// задач заимствуют ссылку на время одного вызова и никогда не владеют ею.
// Диспетчер не запускает две задачи против одного контекста одновременно.
type AgentContext struct {
	key         Key
	persona     string
	personality catalog.PersonalityStyle

	gen TextGenerator

	mu     sync.Mutex
	memory []exchange
}

// NewAgentContext создаёт контекст с заданной персоной.
// Стиль общения фиксируется при создании и не меняется (политика:
// повторный запрос с другим стилем для того же клуба использует
// стиль первого запроса).
func NewAgentContext(key Key, persona string, personality catalog.PersonalityStyle, gen TextGenerator) (*AgentContext, error) {
	if key == "" {
		return nil, fmt.Errorf("agents: context key is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("agents: text generator is required")
	}
	return &AgentContext{
		key:         key,
		persona:     strings.TrimSpace(persona),
		personality: personality.OrDefault(),
		gen:         gen,
	}, nil
}

// Key возвращает ключ контекста.
func (a *AgentContext) Key() Key {
	return a.key
}

// Personality возвращает стиль, зафиксированный при создании.
func (a *AgentContext) Personality() catalog.PersonalityStyle {
	return a.personality
}

// Execute выполняет ровно одну задачу против контекста: собирает полный
// промпт из персоны, памяти и описания задачи, отправляет его генератору
// и запоминает обмен. Задачи против одного контекста строго
// последовательны; порядок между конкурентными вызовами не гарантируется.
func (a *AgentContext) Execute(ctx context.Context, taskPrompt string) (string, error) {
	taskPrompt = strings.TrimSpace(taskPrompt)
	if taskPrompt == "" {
		return "", fmt.Errorf("agents: task prompt is empty")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	full := a.composePrompt(taskPrompt)

	response, err := a.gen.Generate(ctx, full)
	if err != nil {
		return "", fmt.Errorf("agents: execute task on %q: %w", a.key, err)
	}

	a.remember(taskPrompt, response)
	return response, nil
}

// composePrompt собирает полный промпт: персона, история, текущая задача.
func (a *AgentContext) composePrompt(taskPrompt string) string {
	var b strings.Builder
	if a.persona != "" {
		b.WriteString(a.persona)
		b.WriteString("\n\n")
	}
	if len(a.memory) > 0 {
		b.WriteString("Earlier in this conversation:\n")
		for _, ex := range a.memory {
			b.WriteString("Student: ")
			b.WriteString(ex.prompt)
			b.WriteString("\nYou: ")
			b.WriteString(ex.response)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(taskPrompt)
	return b.String()
}

// remember сохраняет обмен, вытесняя самый старый при переполнении.
func (a *AgentContext) remember(prompt, response string) {
	a.memory = append(a.memory, exchange{prompt: prompt, response: response})
	if len(a.memory) > maxMemoryExchanges {
		a.memory = a.memory[len(a.memory)-maxMemoryExchanges:]
	}
}

// MemoryLen возвращает количество обменов в памяти (для наблюдаемости).
func (a *AgentContext) MemoryLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.memory)
}
