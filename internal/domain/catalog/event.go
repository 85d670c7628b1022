package catalog

import (
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// EventType определяет формат мероприятия.
type EventType string

const (
	// EventTypeWorkshop - практический воркшоп.
	EventTypeWorkshop EventType = "workshop"
	// EventTypeHackathon - хакатон.
	EventTypeHackathon EventType = "hackathon"
	// EventTypeCompetition - соревнование.
	EventTypeCompetition EventType = "competition"
	// EventTypeSocial - неформальная встреча.
	EventTypeSocial EventType = "social"
	// EventTypeSeminar - семинар или лекция.
	EventTypeSeminar EventType = "seminar"
	// EventTypeNetworking - нетворкинг.
	EventTypeNetworking EventType = "networking"
)

// IsValid проверяет, что тип мероприятия корректен.
func (e EventType) IsValid() bool {
	switch e {
	case EventTypeWorkshop, EventTypeHackathon, EventTypeCompetition,
		EventTypeSocial, EventTypeSeminar, EventTypeNetworking:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление типа.
func (e EventType) String() string {
	return string(e)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: EVENT
// ══════════════════════════════════════════════════════════════════════════════

// Event представляет мероприятие, организованное клубом.
type Event struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ClubID - идентификатор клуба-организатора.
	ClubID string

	// Title - название мероприятия.
	Title string

	// Description - описание мероприятия.
	Description string

	// EventType - формат мероприятия.
	EventType EventType

	// Location - место проведения.
	Location string

	// StartsAt - время начала мероприятия.
	StartsAt time.Time

	// Deadline - крайний срок регистрации (опционально).
	Deadline *time.Time

	// MaxSeats - вместимость. nil означает отсутствие ограничения.
	MaxSeats *int

	// CurrentRegistrations - текущее количество регистраций.
	CurrentRegistrations int

	// IsTrending - флаг популярного мероприятия.
	IsTrending bool

	// ViewCount - количество просмотров (метрика популярности).
	ViewCount int

	// RequiredSkillIDs - идентификаторы навыков, релевантных мероприятию.
	RequiredSkillIDs []string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Validate проверяет инварианты сущности мероприятия.
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingName
	}
	if e.ClubID == "" {
		return ErrMissingClubID
	}
	if e.StartsAt.IsZero() {
		return ErrMissingStartTime
	}
	return nil
}

// IsFull возвращает true, если все места заняты.
// Мероприятие без ограничения вместимости (MaxSeats == nil) не бывает полным.
func (e *Event) IsFull() bool {
	if e.MaxSeats == nil {
		return false
	}
	return e.CurrentRegistrations >= *e.MaxSeats
}

// IsPast возвращает true, если мероприятие уже началось к моменту now.
func (e *Event) IsPast(now time.Time) bool {
	return e.StartsAt.Before(now)
}

// SeatsLeft возвращает количество свободных мест.
// Для мероприятия без ограничения возвращает nil.
func (e *Event) SeatsLeft() *int {
	if e.MaxSeats == nil {
		return nil
	}
	left := *e.MaxSeats - e.CurrentRegistrations
	if left < 0 {
		left = 0
	}
	return &left
}

// RegistrationOpen возвращает true, если регистрация ещё возможна:
// мероприятие в будущем, есть места и дедлайн не прошёл.
func (e *Event) RegistrationOpen(now time.Time) bool {
	if e.IsPast(now) || e.IsFull() {
		return false
	}
	if e.Deadline != nil && e.Deadline.Before(now) {
		return false
	}
	return true
}
