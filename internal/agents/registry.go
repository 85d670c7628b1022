package agents

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY & SESSION CACHE
//
// Реестр - единственное разделяемое изменяемое состояние движка.
// Гарантии:
//   - для фиксированного ключа фабрика вызывается не более одного раза,
//     сколько бы конкурентных Resolve ни пришло (single-flight);
//   - проигравшие конкуренты получают контекст победителя;
//   - неудачный вызов фабрики не оставляет частично созданной записи -
//     следующий Resolve повторяет создание с чистого листа;
//   - вытеснение по умолчанию отключено; опциональный лимит записей
//     вытесняет самую старую (порядок вставки).
// ══════════════════════════════════════════════════════════════════════════════

// Factory создаёт агентный контекст для ключа.
type Factory func() (*AgentContext, error)

// Registry хранит отображение ключ → агентный контекст.
type Registry struct {
	mu       sync.RWMutex
	contexts map[Key]*AgentContext
	order    []Key // порядок вставки для вытеснения

	// maxEntries - лимит записей; 0 означает отсутствие вытеснения.
	maxEntries int

	group singleflight.Group
}

// NewRegistry создаёт пустой реестр без вытеснения.
func NewRegistry() *Registry {
	return NewRegistryWithLimit(0)
}

// NewRegistryWithLimit создаёт реестр с лимитом записей.
// При maxEntries <= 0 вытеснение отключено.
func NewRegistryWithLimit(maxEntries int) *Registry {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Registry{
		contexts:   make(map[Key]*AgentContext),
		maxEntries: maxEntries,
	}
}

// Resolve возвращает контекст для ключа, создавая его фабрикой при
// первом обращении. Повторные вызовы с тем же ключом возвращают тот же
// самый контекст; фабрика при этом не вызывается.
func (r *Registry) Resolve(key Key, factory Factory) (*AgentContext, error) {
	if key == "" {
		return nil, fmt.Errorf("agents: registry key is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("agents: registry factory is required")
	}

	// Быстрый путь: контекст уже опубликован.
	r.mu.RLock()
	if existing, ok := r.contexts[key]; ok {
		r.mu.RUnlock()
		return existing, nil
	}
	r.mu.RUnlock()

	// Медленный путь: ровно один из конкурентов выполняет фабрику,
	// остальные блокируются и получают его результат.
	value, err, _ := r.group.Do(string(key), func() (interface{}, error) {
		// Повторная проверка: ключ мог быть опубликован, пока мы
		// ждали своей очереди в singleflight.
		r.mu.RLock()
		if existing, ok := r.contexts[key]; ok {
			r.mu.RUnlock()
			return existing, nil
		}
		r.mu.RUnlock()

		created, err := factory()
		if err != nil {
			// Запись не публикуется: следующий Resolve попробует снова.
			return nil, err
		}
		if created == nil {
			return nil, fmt.Errorf("agents: factory for %q returned nil context", key)
		}

		r.publish(key, created)
		return created, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*AgentContext), nil
}

// publish атомарно добавляет контекст, при необходимости вытесняя старейший.
func (r *Registry) publish(key Key, ctx *AgentContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contexts[key]; ok {
		return
	}

	if r.maxEntries > 0 && len(r.contexts) >= r.maxEntries {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.contexts, oldest)
	}

	r.contexts[key] = ctx
	r.order = append(r.order, key)
}

// Peek возвращает контекст без создания. Второе значение - признак наличия.
func (r *Registry) Peek(key Key) (*AgentContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.contexts[key]
	return ctx, ok
}

// Len возвращает количество живых контекстов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}

// Keys возвращает ключи живых контекстов в порядке вставки.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, len(r.order))
	copy(keys, r.order)
	return keys
}
