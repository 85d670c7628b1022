package catalog

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence. Все методы возвращают
// неизменяемые снимки: вызывающий код никогда не мутирует полученные сущности.
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository определяет операции для работы со студентами.
type StudentRepository interface {
	// Create создаёт нового студента.
	// Возвращает shared.ErrStudentAlreadyExists, если email уже занят.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает студента по внутреннему ID.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail возвращает студента по адресу почты.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByEmail(ctx context.Context, email Email) (*Student, error)

	// UpdateProfile обновляет профиль и базовые поля студента.
	UpdateProfile(ctx context.Context, student *Student) error

	// ListActive возвращает всех студентов для массовых операций (дайджест).
	ListActive(ctx context.Context) ([]*Student, error)

	// Exists проверяет существование студента по ID.
	Exists(ctx context.Context, id string) (bool, error)
}

// ClubRepository определяет операции для работы с клубами.
type ClubRepository interface {
	// GetByID возвращает клуб по ID.
	// Возвращает shared.ErrClubNotFound, если клуб не найден.
	GetByID(ctx context.Context, id string) (*Club, error)

	// GetByName возвращает клуб по названию (поиск без учёта регистра).
	// Возвращает shared.ErrClubNotFound, если клуб не найден.
	GetByName(ctx context.Context, name string) (*Club, error)

	// List возвращает все клубы.
	List(ctx context.Context) ([]*Club, error)
}

// EventFilter содержит параметры выборки мероприятий.
type EventFilter struct {
	// ClubID - фильтр по клубу-организатору (пустая строка = все клубы).
	ClubID string

	// EventType - фильтр по формату (пустая строка = все форматы).
	EventType EventType

	// From - начало временного окна (zero value = без нижней границы).
	From time.Time

	// To - конец временного окна (zero value = без верхней границы).
	To time.Time

	// IncludePast - включать прошедшие мероприятия.
	IncludePast bool

	// Limit - максимальное количество записей (0 = по умолчанию 20).
	Limit int
}

// EventRepository определяет операции для работы с мероприятиями.
type EventRepository interface {
	// GetByID возвращает мероприятие по ID.
	// Возвращает shared.ErrEventNotFound, если мероприятие не найдено.
	GetByID(ctx context.Context, id string) (*Event, error)

	// ListUpcoming возвращает будущие мероприятия по фильтру,
	// отсортированные по времени начала.
	ListUpcoming(ctx context.Context, filter EventFilter) ([]*Event, error)

	// Search выполняет текстовый поиск по названию, описанию и типу.
	Search(ctx context.Context, query string, filter EventFilter) ([]*Event, error)

	// ListTrending возвращает популярные будущие мероприятия,
	// отсортированные по количеству просмотров.
	ListTrending(ctx context.Context, limit int) ([]*Event, error)

	// IncrementRegistrations атомарно увеличивает счётчик регистраций.
	IncrementRegistrations(ctx context.Context, eventID string) error
}

// RegistrationRepository определяет операции для работы с регистрациями.
type RegistrationRepository interface {
	// ClaimedItemsOf возвращает идентификаторы мероприятий, на которые
	// студент уже записан, и клубов, в которых он состоит.
	// Используется фильтром рекомендаций для исключения занятых позиций.
	ClaimedItemsOf(ctx context.Context, studentID string) (map[string]struct{}, error)

	// Create записывает студента на мероприятие.
	// Возвращает shared.ErrAlreadyRegistered при повторной записи.
	Create(ctx context.Context, studentID, eventID string) error
}

// SkillRepository определяет операции для работы со справочником навыков.
type SkillRepository interface {
	// GetByIDs возвращает навыки по списку идентификаторов.
	// Порядок результата соответствует порядку ids; неизвестные ID пропускаются.
	GetByIDs(ctx context.Context, ids []string) ([]*Skill, error)

	// GetByNames возвращает навыки по списку названий.
	GetByNames(ctx context.Context, names []string) ([]*Skill, error)

	// ListAll возвращает весь справочник навыков.
	ListAll(ctx context.Context) ([]*Skill, error)
}
