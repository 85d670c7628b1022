// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIGNUP STUDENT COMMAND
// Регистрация нового студента: валидация, bcrypt-хеш пароля, создание записи.
// ══════════════════════════════════════════════════════════════════════════════

// MinPasswordLength - минимальная длина пароля.
const MinPasswordLength = 8

// SignupStudentCommand содержит данные регистрации.
type SignupStudentCommand struct {
	// Name - полное имя студента.
	Name string

	// Email - адрес электронной почты.
	Email string

	// Password - пароль в открытом виде. Хешируется немедленно
	// и нигде не сохраняется.
	Password string

	// FieldOfStudy - направление обучения.
	FieldOfStudy string

	// YearLevel - текущий курс (1-6).
	YearLevel int

	// SkillIDs - начальный набор навыков (опционально).
	SkillIDs []string
}

// Validate проверяет корректность команды.
func (c *SignupStudentCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("command", "SignupStudent", shared.ErrEmptyValue, "name is required")
	}
	if !catalog.Email(c.Email).IsValid() {
		return shared.ErrInvalidEmail
	}
	if len(c.Password) < MinPasswordLength {
		return shared.NewDomainError("command", "SignupStudent", shared.ErrValidation, "password is too short")
	}
	if !catalog.YearLevel(c.YearLevel).IsValid() {
		return shared.ErrInvalidYearLevel
	}
	return nil
}

// SignupStudentResult содержит результат регистрации.
type SignupStudentResult struct {
	// StudentID - ID созданного студента.
	StudentID string `json:"student_id"`
}

// SignupStudentHandler обрабатывает регистрацию студентов.
type SignupStudentHandler struct {
	studentRepo catalog.StudentRepository
	now         func() time.Time
	log         *logger.Logger
}

// NewSignupStudentHandler создаёт новый обработчик.
func NewSignupStudentHandler(studentRepo catalog.StudentRepository, log *logger.Logger) *SignupStudentHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SignupStudentHandler{
		studentRepo: studentRepo,
		now:         time.Now,
		log:         log,
	}
}

// Handle создаёт нового студента.
// Занятый email - shared.ErrEmailTaken; уникальность гарантирует хранилище,
// предварительная проверка здесь только ускоряет отказ.
func (h *SignupStudentHandler) Handle(ctx context.Context, cmd SignupStudentCommand) (*SignupStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	email := catalog.Email(cmd.Email).Normalized()

	if _, err := h.studentRepo.GetByEmail(ctx, email); err == nil {
		return nil, shared.ErrEmailTaken
	} else if !shared.IsNotFound(err) {
		return nil, shared.WrapError("command", "SignupStudent", shared.ErrExternalService, "check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.WrapError("command", "SignupStudent", shared.ErrValidation, "hash password", err)
	}

	now := h.now()
	student := &catalog.Student{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        email,
		PasswordHash: string(hash),
		FieldOfStudy: catalog.FieldOfStudy(cmd.FieldOfStudy),
		YearLevel:    catalog.YearLevel(cmd.YearLevel),
		SkillIDs:     cmd.SkillIDs,
		Profile: &catalog.Profile{
			NotificationPreferences: catalog.DefaultNotificationPreferences(),
			LastUpdated:             now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := student.Validate(); err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	h.log.Info("student signed up",
		logger.StudentID(student.ID),
		logger.Email(student.Email.String()),
	)

	return &SignupStudentResult{StudentID: student.ID}, nil
}
