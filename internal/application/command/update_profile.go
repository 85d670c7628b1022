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
// UPDATE PROFILE COMMAND
// Обновление профиля студента. Навыки и клубы влияют на скоринг, поэтому
// после обновления кэш рекомендаций студента инвалидируется.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand содержит изменяемые поля профиля.
// Nil-поля не изменяются.
type UpdateProfileCommand struct {
	// StudentID - ID студента.
	StudentID string

	// Bio - краткое описание о себе.
	Bio *string

	// Goals - цели студента на платформе.
	Goals *string

	// FieldOfStudy - направление обучения.
	FieldOfStudy *string

	// YearLevel - текущий курс.
	YearLevel *int

	// SkillIDs - полная замена набора навыков.
	SkillIDs []string

	// NotificationPreferences - настройки уведомлений.
	NotificationPreferences *catalog.NotificationPreferences
}

// Validate проверяет корректность команды.
func (c *UpdateProfileCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "UpdateProfile", shared.ErrInvalidID, "student_id is required")
	}
	if c.YearLevel != nil && !catalog.YearLevel(*c.YearLevel).IsValid() {
		return shared.ErrInvalidYearLevel
	}
	return nil
}

// UpdateProfileHandler обрабатывает обновления профиля.
type UpdateProfileHandler struct {
	studentRepo catalog.StudentRepository
	cache       query.RecommendationCache
	now         func() time.Time
	log         *logger.Logger
}

// NewUpdateProfileHandler создаёт новый обработчик.
// cache может быть nil - тогда инвалидация кэша пропускается.
func NewUpdateProfileHandler(studentRepo catalog.StudentRepository, cache query.RecommendationCache, log *logger.Logger) *UpdateProfileHandler {
	if log == nil {
		log = logger.Default()
	}
	return &UpdateProfileHandler{
		studentRepo: studentRepo,
		cache:       cache,
		now:         time.Now,
		log:         log,
	}
}

// Handle применяет изменения профиля.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	student, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return err
	}

	now := h.now()
	if student.Profile == nil {
		student.Profile = &catalog.Profile{
			NotificationPreferences: catalog.DefaultNotificationPreferences(),
		}
	}

	if cmd.Bio != nil {
		student.Profile.Bio = *cmd.Bio
	}
	if cmd.Goals != nil {
		student.Profile.Goals = *cmd.Goals
	}
	if cmd.FieldOfStudy != nil {
		student.FieldOfStudy = catalog.FieldOfStudy(*cmd.FieldOfStudy)
	}
	if cmd.YearLevel != nil {
		student.YearLevel = catalog.YearLevel(*cmd.YearLevel)
	}
	if cmd.SkillIDs != nil {
		student.SkillIDs = cmd.SkillIDs
	}
	if cmd.NotificationPreferences != nil {
		student.Profile.NotificationPreferences = *cmd.NotificationPreferences
	}
	student.Profile.LastUpdated = now
	student.UpdatedAt = now

	if err := student.Validate(); err != nil {
		return err
	}

	if err := h.studentRepo.UpdateProfile(ctx, student); err != nil {
		return err
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, student.ID); err != nil {
			h.log.Warn("recommendation cache invalidation failed",
				logger.StudentID(student.ID), logger.Err(err))
		}
	}

	h.log.Info("student profile updated", logger.StudentID(student.ID))

	return nil
}
