package query

import (
	"context"
	"sort"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND SIMILAR STUDENTS QUERY
// Находит студентов с похожими интересами: общие навыки, общие клубы,
// то же направление обучения. Используется онбордингом ("с кем познакомиться")
// и еженедельным дайджестом.
// ══════════════════════════════════════════════════════════════════════════════

// Веса факторов сходства: общий клуб говорит о большем, чем общий навык.
const (
	similarityPerSharedSkill = 2.0
	similarityPerSharedClub  = 3.0
	similaritySameField      = 1.0
)

// DefaultSimilarStudentsLimit - лимит результатов по умолчанию.
const DefaultSimilarStudentsLimit = 5

// FindSimilarStudentsQuery содержит параметры поиска.
type FindSimilarStudentsQuery struct {
	// StudentID - ID студента, для которого ищем похожих.
	StudentID string

	// Limit - максимальное количество результатов (по умолчанию 5).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *FindSimilarStudentsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("query", "FindSimilarStudents", shared.ErrInvalidID, "student_id is required")
	}
	if q.Limit < 0 {
		return shared.NewDomainError("query", "FindSimilarStudents", shared.ErrNegativeValue, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultSimilarStudentsLimit
	}
	return nil
}

// SimilarStudentDTO - один похожий студент в выдаче.
type SimilarStudentDTO struct {
	// StudentID - ID студента.
	StudentID string `json:"student_id"`

	// Name - имя студента.
	Name string `json:"name"`

	// FieldOfStudy - направление обучения.
	FieldOfStudy string `json:"field_of_study"`

	// SharedSkillIDs - общие навыки.
	SharedSkillIDs []string `json:"shared_skill_ids,omitempty"`

	// SharedClubIDs - общие клубы.
	SharedClubIDs []string `json:"shared_club_ids,omitempty"`

	// SameField - совпадает ли направление обучения.
	SameField bool `json:"same_field"`

	// Score - оценка сходства.
	Score float64 `json:"score"`
}

// FindSimilarStudentsResult содержит результат поиска.
type FindSimilarStudentsResult struct {
	// StudentID - ID исходного студента.
	StudentID string `json:"student_id"`

	// Students - похожие студенты по убыванию сходства.
	Students []SimilarStudentDTO `json:"students"`
}

// FindSimilarStudentsHandler обрабатывает запросы поиска похожих студентов.
type FindSimilarStudentsHandler struct {
	studentRepo catalog.StudentRepository
}

// NewFindSimilarStudentsHandler создаёт новый обработчик.
func NewFindSimilarStudentsHandler(studentRepo catalog.StudentRepository) *FindSimilarStudentsHandler {
	return &FindSimilarStudentsHandler{studentRepo: studentRepo}
}

// Handle выполняет поиск похожих студентов.
// Студенты с нулевым сходством в результат не попадают; при равных оценках
// сохраняется порядок, возвращённый репозиторием (стабильная сортировка).
func (h *FindSimilarStudentsHandler) Handle(ctx context.Context, query FindSimilarStudentsQuery) (*FindSimilarStudentsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	subject, err := h.studentRepo.GetByID(ctx, query.StudentID)
	if err != nil {
		return nil, err
	}

	others, err := h.studentRepo.ListActive(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "FindSimilarStudents", shared.ErrExternalService, "list students", err)
	}

	subjectSkills := catalog.NewSkillSet(subject.SkillIDs)
	subjectClubs := catalog.NewSkillSet(subject.ClubIDs)

	scored := make([]SimilarStudentDTO, 0, len(others))
	for _, other := range others {
		if other.ID == subject.ID {
			continue
		}

		sharedSkills := subjectSkills.Intersect(other.SkillIDs)
		sharedClubs := subjectClubs.Intersect(other.ClubIDs)
		sameField := subject.FieldOfStudy != "" && other.FieldOfStudy == subject.FieldOfStudy

		score := similarityPerSharedSkill*float64(len(sharedSkills)) +
			similarityPerSharedClub*float64(len(sharedClubs))
		if sameField {
			score += similaritySameField
		}
		if score <= 0 {
			continue
		}

		scored = append(scored, SimilarStudentDTO{
			StudentID:      other.ID,
			Name:           other.Name,
			FieldOfStudy:   other.FieldOfStudy.String(),
			SharedSkillIDs: sharedSkills,
			SharedClubIDs:  sharedClubs,
			SameField:      sameField,
			Score:          score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > query.Limit {
		scored = scored[:query.Limit]
	}

	return &FindSimilarStudentsResult{
		StudentID: subject.ID,
		Students:  scored,
	}, nil
}
