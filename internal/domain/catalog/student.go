// Package catalog содержит доменную модель каталога кампуса:
// студенты, клубы, мероприятия и навыки. Это ядро бизнес-логики -
// здесь нет внешних зависимостей.
package catalog

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMissingID - у сущности отсутствует идентификатор.
	ErrMissingID = errors.New("catalog: entity ID is required")

	// ErrMissingName - у сущности отсутствует имя.
	ErrMissingName = errors.New("catalog: entity name is required")

	// ErrBadEmail - некорректный адрес электронной почты.
	ErrBadEmail = errors.New("catalog: invalid email address")

	// ErrBadYearLevel - курс вне допустимого диапазона.
	ErrBadYearLevel = errors.New("catalog: year level out of range")

	// ErrMissingStartTime - у мероприятия отсутствует время начала.
	ErrMissingStartTime = errors.New("catalog: event start time is required")

	// ErrMissingClubID - у мероприятия отсутствует клуб-организатор.
	ErrMissingClubID = errors.New("catalog: owning club ID is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Email представляет адрес электронной почты студента.
type Email string

// IsValid проверяет минимальную корректность адреса.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return len(s) >= 5 && len(s) <= 120 && at > 0 && at < len(s)-1 &&
		!strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление адреса.
func (e Email) String() string {
	return string(e)
}

// Normalized возвращает адрес в нижнем регистре без пробелов по краям.
func (e Email) Normalized() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// YearLevel представляет курс обучения студента (1-6).
type YearLevel int

// IsValid проверяет, что курс находится в допустимом диапазоне.
func (y YearLevel) IsValid() bool {
	return y >= 1 && y <= 6
}

// FieldOfStudy представляет направление обучения (например, "Computer Science").
type FieldOfStudy string

// IsValid проверяет корректность направления.
func (f FieldOfStudy) IsValid() bool {
	return len(f) >= 2 && len(f) <= 100
}

// String возвращает строковое представление направления.
func (f FieldOfStudy) String() string {
	return string(f)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы, представляющая студента кампуса.
type Student struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - полное имя студента.
	Name string

	// Email - адрес электронной почты (уникальный).
	Email Email

	// PasswordHash - bcrypt-хеш пароля. Никогда не отдаётся наружу.
	PasswordHash string

	// FieldOfStudy - направление обучения.
	FieldOfStudy FieldOfStudy

	// YearLevel - текущий курс (1-6).
	YearLevel YearLevel

	// SkillIDs - идентификаторы навыков студента.
	SkillIDs []string

	// ClubIDs - идентификаторы клубов, в которых состоит студент.
	ClubIDs []string

	// Profile - расширенный профиль (опционально).
	Profile *Profile

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Profile содержит расширенную информацию профиля студента.
type Profile struct {
	// Bio - краткое описание о себе.
	Bio string

	// Goals - цели студента на платформе.
	Goals string

	// NotificationPreferences - настройки уведомлений (email, push, weekly_digest).
	NotificationPreferences NotificationPreferences

	// LastUpdated - время последнего обновления профиля.
	LastUpdated time.Time
}

// NotificationPreferences - настройки каналов уведомлений.
type NotificationPreferences struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	WeeklyDigest bool `json:"weekly_digest"`
}

// DefaultNotificationPreferences возвращает настройки по умолчанию:
// все каналы включены.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, Push: true, WeeklyDigest: true}
}

// Validate проверяет инварианты сущности студента.
func (s *Student) Validate() error {
	if s.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if !s.Email.IsValid() {
		return ErrBadEmail
	}
	if s.YearLevel != 0 && !s.YearLevel.IsValid() {
		return ErrBadYearLevel
	}
	return nil
}

// HasSkill возвращает true, если у студента есть указанный навык.
func (s *Student) HasSkill(skillID string) bool {
	for _, id := range s.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// IsMemberOf возвращает true, если студент состоит в указанном клубе.
func (s *Student) IsMemberOf(clubID string) bool {
	for _, id := range s.ClubIDs {
		if id == clubID {
			return true
		}
	}
	return false
}

// WantsWeeklyDigest возвращает true, если студент подписан на еженедельный дайджест.
func (s *Student) WantsWeeklyDigest() bool {
	if s.Profile == nil {
		return true // по умолчанию дайджест включён
	}
	return s.Profile.NotificationPreferences.WeeklyDigest
}
