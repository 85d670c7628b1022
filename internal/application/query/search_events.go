package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH EVENTS QUERY
// Текстовый поиск мероприятий по каталогу. Выдача сериализуется в JSON
// и передаётся агенту поиска как пул кандидатов.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSearchLimit - лимит результатов поиска по умолчанию.
const DefaultSearchLimit = 10

// SearchEventsQuery содержит параметры поиска.
type SearchEventsQuery struct {
	// Query - поисковый запрос в свободной форме.
	Query string

	// EventType - фильтр по формату мероприятия (пустой = все).
	EventType catalog.EventType

	// ClubID - фильтр по клубу-организатору (пустой = все).
	ClubID string

	// Limit - максимальное количество результатов (по умолчанию 10).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *SearchEventsQuery) Validate() error {
	if q.Query == "" {
		return shared.NewDomainError("query", "SearchEvents", shared.ErrEmptyValue, "search query is required")
	}
	if q.EventType != "" && !q.EventType.IsValid() {
		return shared.NewDomainError("query", "SearchEvents", shared.ErrInvalidInput, "unknown event type")
	}
	if q.Limit < 0 {
		return shared.NewDomainError("query", "SearchEvents", shared.ErrNegativeValue, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultSearchLimit
	}
	return nil
}

// EventDTO - мероприятие в поисковой выдаче.
type EventDTO struct {
	// EventID - идентификатор мероприятия.
	EventID string `json:"event_id"`

	// Title - название.
	Title string `json:"title"`

	// ClubName - клуб-организатор.
	ClubName string `json:"club_name,omitempty"`

	// EventType - формат мероприятия.
	EventType string `json:"event_type"`

	// StartsAt - время начала в человекочитаемом виде.
	StartsAt string `json:"starts_at"`

	// Location - место проведения.
	Location string `json:"location,omitempty"`

	// SeatsLeft - сколько мест осталось. nil = без ограничения.
	SeatsLeft *int `json:"seats_left,omitempty"`

	// IsTrending - популярное мероприятие.
	IsTrending bool `json:"is_trending"`
}

// SearchEventsResult содержит результат поиска.
type SearchEventsResult struct {
	// Query - исходный запрос.
	Query string `json:"query"`

	// Events - найденные мероприятия в порядке, возвращённом хранилищем.
	Events []EventDTO `json:"events"`
}

// EventsJSON возвращает детерминированную JSON-сериализацию выдачи
// для передачи агенту поиска.
func (r *SearchEventsResult) EventsJSON() (string, error) {
	data, err := json.Marshal(r.Events)
	if err != nil {
		return "", fmt.Errorf("marshal search results: %w", err)
	}
	return string(data), nil
}

// SearchEventsHandler обрабатывает поисковые запросы.
type SearchEventsHandler struct {
	eventRepo catalog.EventRepository
	clubRepo  catalog.ClubRepository
	now       func() time.Time
}

// NewSearchEventsHandler создаёт новый обработчик.
func NewSearchEventsHandler(eventRepo catalog.EventRepository, clubRepo catalog.ClubRepository) *SearchEventsHandler {
	return &SearchEventsHandler{
		eventRepo: eventRepo,
		clubRepo:  clubRepo,
		now:       time.Now,
	}
}

// Handle выполняет текстовый поиск по будущим мероприятиям.
func (h *SearchEventsHandler) Handle(ctx context.Context, query SearchEventsQuery) (*SearchEventsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := catalog.EventFilter{
		ClubID:    query.ClubID,
		EventType: query.EventType,
		From:      h.now(),
		Limit:     query.Limit,
	}

	events, err := h.eventRepo.Search(ctx, query.Query, filter)
	if err != nil {
		return nil, shared.WrapError("query", "SearchEvents", shared.ErrExternalService, "search events", err)
	}

	clubs, err := h.clubRepo.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "SearchEvents", shared.ErrExternalService, "list clubs", err)
	}
	clubNames := make(map[string]string, len(clubs))
	for _, club := range clubs {
		clubNames[club.ID] = club.Name
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event, clubNames[event.ClubID]))
	}

	return &SearchEventsResult{Query: query.Query, Events: dtos}, nil
}

func toEventDTO(event *catalog.Event, clubName string) EventDTO {
	return EventDTO{
		EventID:    event.ID,
		Title:      event.Title,
		ClubName:   clubName,
		EventType:  event.EventType.String(),
		StartsAt:   timeutil.FormatEventTime(event.StartsAt),
		Location:   event.Location,
		SeatsLeft:  event.SeatsLeft(),
		IsTrending: event.IsTrending,
	}
}
