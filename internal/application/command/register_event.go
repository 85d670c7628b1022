package command

import (
	"context"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/application/query"
	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER FOR EVENT COMMAND
// Запись студента на мероприятие. Порядок проверок фиксирован:
// повторная запись -> нет мест -> мероприятие прошло. Студент, записанный
// на переполненное прошедшее мероприятие, получает ошибку о повторной
// записи, а не о местах.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterForEventCommand содержит параметры записи.
type RegisterForEventCommand struct {
	// StudentID - ID студента.
	StudentID string

	// EventID - ID мероприятия.
	EventID string
}

// Validate проверяет корректность команды.
func (c *RegisterForEventCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "RegisterForEvent", shared.ErrInvalidID, "student_id is required")
	}
	if c.EventID == "" {
		return shared.NewDomainError("command", "RegisterForEvent", shared.ErrInvalidID, "event_id is required")
	}
	return nil
}

// RegisterForEventResult содержит результат записи.
type RegisterForEventResult struct {
	// EventID - ID мероприятия.
	EventID string `json:"event_id"`

	// EventTitle - название мероприятия.
	EventTitle string `json:"event_title"`

	// SeatsLeft - сколько мест осталось после записи. nil = без ограничения.
	SeatsLeft *int `json:"seats_left,omitempty"`
}

// RegisterForEventHandler обрабатывает записи на мероприятия.
type RegisterForEventHandler struct {
	studentRepo      catalog.StudentRepository
	eventRepo        catalog.EventRepository
	registrationRepo catalog.RegistrationRepository
	cache            query.RecommendationCache
	now              func() time.Time
	log              *logger.Logger
}

// NewRegisterForEventHandler создаёт новый обработчик.
// cache может быть nil - тогда инвалидация кэша пропускается.
func NewRegisterForEventHandler(
	studentRepo catalog.StudentRepository,
	eventRepo catalog.EventRepository,
	registrationRepo catalog.RegistrationRepository,
	cache query.RecommendationCache,
	log *logger.Logger,
) *RegisterForEventHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterForEventHandler{
		studentRepo:      studentRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		cache:            cache,
		now:              time.Now,
		log:              log,
	}
}

// Handle записывает студента на мероприятие.
//
// Ошибки в порядке проверок:
//   - shared.ErrStudentNotFound / shared.ErrEventNotFound;
//   - shared.ErrAlreadyRegistered;
//   - shared.ErrEventFull;
//   - shared.ErrEventInPast.
func (h *RegisterForEventHandler) Handle(ctx context.Context, cmd RegisterForEventCommand) (*RegisterForEventResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	student, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}

	event, err := h.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		return nil, err
	}

	claimed, err := h.registrationRepo.ClaimedItemsOf(ctx, student.ID)
	if err != nil {
		return nil, shared.WrapError("command", "RegisterForEvent", shared.ErrExternalService, "load registrations", err)
	}
	if _, ok := claimed[event.ID]; ok {
		return nil, shared.ErrAlreadyRegistered
	}

	if event.IsFull() {
		return nil, shared.ErrEventFull
	}
	if event.IsPast(h.now()) {
		return nil, shared.ErrEventInPast
	}

	if err := h.registrationRepo.Create(ctx, student.ID, event.ID); err != nil {
		return nil, err
	}
	if err := h.eventRepo.IncrementRegistrations(ctx, event.ID); err != nil {
		// Регистрация уже создана; расхождение счётчика устраняется фоновой сверкой.
		h.log.Warn("registration counter increment failed",
			logger.EventID(event.ID), logger.Err(err))
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, student.ID); err != nil {
			h.log.Warn("recommendation cache invalidation failed",
				logger.StudentID(student.ID), logger.Err(err))
		}
	}

	h.log.Info("student registered for event",
		logger.StudentID(student.ID),
		logger.EventID(event.ID),
	)

	seatsLeft := event.SeatsLeft()
	if seatsLeft != nil {
		remaining := *seatsLeft - 1
		if remaining < 0 {
			remaining = 0
		}
		seatsLeft = &remaining
	}

	return &RegisterForEventResult{
		EventID:    event.ID,
		EventTitle: event.Title,
		SeatsLeft:  seatsLeft,
	}, nil
}
