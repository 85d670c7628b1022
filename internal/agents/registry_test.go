package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
)

// stubGenerator возвращает фиксированный ответ без обращения к модели.
type stubGenerator struct {
	mu        sync.Mutex
	response  string
	err       error
	prompts   []string
	callCount int
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callCount++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.callCount
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func newTestContext(t *testing.T, key Key) *AgentContext {
	t.Helper()
	ctx, err := NewAgentContext(key, "test persona", catalog.PersonalityFriendly, &stubGenerator{response: "ok"})
	require.NoError(t, err)
	return ctx
}

func TestRegistry_ResolveIdempotent(t *testing.T) {
	registry := NewRegistry()

	var factoryCalls int32
	factory := func() (*AgentContext, error) {
		atomic.AddInt32(&factoryCalls, 1)
		return newTestContext(t, "club:chess"), nil
	}

	first, err := registry.Resolve("club:chess", factory)
	require.NoError(t, err)

	second, err := registry.Resolve("club:chess", factory)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&factoryCalls))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_ConcurrentResolveCreatesOnce(t *testing.T) {
	registry := NewRegistry()

	var factoryCalls int32
	factory := func() (*AgentContext, error) {
		atomic.AddInt32(&factoryCalls, 1)
		return newTestContext(t, "club:robotics"), nil
	}

	const workers = 50
	results := make([]*AgentContext, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = registry.Resolve("club:robotics", factory)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&factoryCalls))
	for _, ctx := range results {
		assert.Same(t, results[0], ctx)
	}
}

func TestRegistry_FailedFactoryIsNotMemoized(t *testing.T) {
	registry := NewRegistry()

	attempt := 0
	factory := func() (*AgentContext, error) {
		attempt++
		if attempt == 1 {
			return nil, errors.New("model binding failed")
		}
		return newTestContext(t, "router"), nil
	}

	_, err := registry.Resolve("router", factory)
	require.Error(t, err)
	assert.Equal(t, 0, registry.Len())

	// Следующий вызов повторяет создание с чистого листа.
	ctx, err := registry.Resolve("router", factory)
	require.NoError(t, err)
	assert.NotNil(t, ctx)
	assert.Equal(t, 2, attempt)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_NilContextFromFactory(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("router", func() (*AgentContext, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_RequiresKeyAndFactory(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("", func() (*AgentContext, error) {
		return newTestContext(t, "x"), nil
	})
	assert.Error(t, err)

	_, err = registry.Resolve("router", nil)
	assert.Error(t, err)
}

func TestRegistry_EvictsOldestWhenLimited(t *testing.T) {
	registry := NewRegistryWithLimit(2)

	for i := 1; i <= 3; i++ {
		key := ClubKey(fmt.Sprintf("club-%d", i))
		_, err := registry.Resolve(key, func() (*AgentContext, error) {
			return newTestContext(t, key), nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, registry.Len())

	_, ok := registry.Peek(ClubKey("club-1"))
	assert.False(t, ok, "oldest context should have been evicted")

	_, ok = registry.Peek(ClubKey("club-2"))
	assert.True(t, ok)
	_, ok = registry.Peek(ClubKey("club-3"))
	assert.True(t, ok)

	assert.Equal(t, []Key{ClubKey("club-2"), ClubKey("club-3")}, registry.Keys())
}

func TestRegistry_PeekDoesNotCreate(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Peek("router")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}
