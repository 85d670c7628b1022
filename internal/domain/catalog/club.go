package catalog

import (
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// PersonalityStyle определяет тон, в котором чат-бот клуба общается со студентами.
// Стиль фиксируется при создании агента клуба и не меняется между запросами.
type PersonalityStyle string

const (
	// PersonalityFriendly - дружелюбный тон (по умолчанию).
	PersonalityFriendly PersonalityStyle = "friendly"
	// PersonalityProfessional - деловой тон.
	PersonalityProfessional PersonalityStyle = "professional"
	// PersonalityCasual - неформальный тон.
	PersonalityCasual PersonalityStyle = "casual"
	// PersonalityEnthusiastic - энергичный тон.
	PersonalityEnthusiastic PersonalityStyle = "enthusiastic"
	// PersonalityTechFocused - технический тон.
	PersonalityTechFocused PersonalityStyle = "tech-focused"
	// PersonalityCreative - творческий тон.
	PersonalityCreative PersonalityStyle = "creative"
)

// IsValid проверяет, что стиль корректен.
func (p PersonalityStyle) IsValid() bool {
	switch p {
	case PersonalityFriendly, PersonalityProfessional, PersonalityCasual,
		PersonalityEnthusiastic, PersonalityTechFocused, PersonalityCreative:
		return true
	default:
		return false
	}
}

// OrDefault возвращает стиль, подставляя friendly для пустого или неизвестного значения.
func (p PersonalityStyle) OrDefault() PersonalityStyle {
	if !p.IsValid() {
		return PersonalityFriendly
	}
	return p
}

// String возвращает строковое представление стиля.
func (p PersonalityStyle) String() string {
	return string(p)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: CLUB
// ══════════════════════════════════════════════════════════════════════════════

// Club представляет студенческий клуб - организатора мероприятий.
type Club struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - название клуба (уникальное).
	Name string

	// Description - краткое описание деятельности клуба.
	Description string

	// Mission - миссия клуба.
	Mission string

	// History - история клуба (используется чат-ботом клуба).
	History string

	// ContactEmail - контактный адрес клуба.
	ContactEmail Email

	// Website - сайт клуба.
	Website string

	// PersonalityStyle - стиль общения чат-бота клуба.
	PersonalityStyle PersonalityStyle

	// MemberCount - количество участников (метрика популярности клуба).
	MemberCount int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Validate проверяет инварианты сущности клуба.
func (c *Club) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	return nil
}
