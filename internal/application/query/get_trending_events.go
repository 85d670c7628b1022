package query

import (
	"context"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TRENDING EVENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// DefaultTrendingLimit - лимит популярных мероприятий по умолчанию.
const DefaultTrendingLimit = 10

// GetTrendingEventsQuery содержит параметры запроса.
type GetTrendingEventsQuery struct {
	// Limit - максимальное количество результатов (по умолчанию 10).
	Limit int
}

// GetTrendingEventsResult содержит результат запроса.
type GetTrendingEventsResult struct {
	// Events - популярные будущие мероприятия по убыванию просмотров.
	Events []EventDTO `json:"events"`
}

// GetTrendingEventsHandler обрабатывает запросы популярных мероприятий.
type GetTrendingEventsHandler struct {
	eventRepo catalog.EventRepository
	clubRepo  catalog.ClubRepository
}

// NewGetTrendingEventsHandler создаёт новый обработчик.
func NewGetTrendingEventsHandler(eventRepo catalog.EventRepository, clubRepo catalog.ClubRepository) *GetTrendingEventsHandler {
	return &GetTrendingEventsHandler{eventRepo: eventRepo, clubRepo: clubRepo}
}

// Handle возвращает популярные будущие мероприятия.
func (h *GetTrendingEventsHandler) Handle(ctx context.Context, query GetTrendingEventsQuery) (*GetTrendingEventsResult, error) {
	if query.Limit < 0 {
		return nil, shared.NewDomainError("query", "GetTrendingEvents", shared.ErrNegativeValue, "limit cannot be negative")
	}
	if query.Limit == 0 {
		query.Limit = DefaultTrendingLimit
	}

	events, err := h.eventRepo.ListTrending(ctx, query.Limit)
	if err != nil {
		return nil, shared.WrapError("query", "GetTrendingEvents", shared.ErrExternalService, "list trending events", err)
	}

	clubs, err := h.clubRepo.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "GetTrendingEvents", shared.ErrExternalService, "list clubs", err)
	}
	clubNames := make(map[string]string, len(clubs))
	for _, club := range clubs {
		clubNames[club.ID] = club.Name
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event, clubNames[event.ClubID]))
	}

	return &GetTrendingEventsResult{Events: dtos}, nil
}
