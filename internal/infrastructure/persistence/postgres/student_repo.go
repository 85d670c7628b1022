package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `id, name, email, password_hash, field_of_study, year_level,
	   skill_ids, profile, created_at, updated_at`

// StudentRepository implements catalog.StudentRepository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *catalog.Student) error {
	query := `
		INSERT INTO students (
			id, name, email, password_hash, field_of_study, year_level,
			skill_ids, profile, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	profileJSON, err := marshalProfile(s.Profile)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Email.String(),
		s.PasswordHash,
		s.FieldOfStudy.String(),
		int(s.YearLevel),
		s.SkillIDs,
		profileJSON,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrEmailTaken
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*catalog.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	student, err := r.scanStudent(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadClubIDs(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// GetByEmail returns a student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email catalog.Email) (*catalog.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = $1", studentColumns)
	student, err := r.scanStudent(r.conn.QueryRow(ctx, query, email.Normalized().String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadClubIDs(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateProfile updates a student's profile and mutable base fields.
func (r *StudentRepository) UpdateProfile(ctx context.Context, s *catalog.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			field_of_study = $2,
			year_level = $3,
			skill_ids = $4,
			profile = $5,
			updated_at = $6
		WHERE id = $7
	`

	profileJSON, err := marshalProfile(s.Profile)
	if err != nil {
		return err
	}

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.FieldOfStudy.String(),
		int(s.YearLevel),
		s.SkillIDs,
		profileJSON,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// ListActive returns all students for bulk operations (weekly digest).
func (r *StudentRepository) ListActive(ctx context.Context) ([]*catalog.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY created_at", studentColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students, err := r.scanStudents(rows)
	if err != nil {
		return nil, err
	}

	memberships, err := r.loadAllClubIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, student := range students {
		student.ClubIDs = memberships[student.ID]
	}
	return students, nil
}

// Exists checks whether a student with the given ID exists.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentRepository) scanStudent(row pgx.Row) (*catalog.Student, error) {
	var (
		s           catalog.Student
		email       string
		field       string
		year        int
		profileJSON []byte
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&email,
		&s.PasswordHash,
		&field,
		&year,
		&s.SkillIDs,
		&profileJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Email = catalog.Email(email)
	s.FieldOfStudy = catalog.FieldOfStudy(field)
	s.YearLevel = catalog.YearLevel(year)

	if len(profileJSON) > 0 {
		var profile catalog.Profile
		if err := json.Unmarshal(profileJSON, &profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		s.Profile = &profile
	}
	return &s, nil
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*catalog.Student, error) {
	var students []*catalog.Student
	for rows.Next() {
		student, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func (r *StudentRepository) loadClubIDs(ctx context.Context, s *catalog.Student) error {
	rows, err := r.conn.Query(ctx,
		"SELECT club_id FROM club_members WHERE student_id = $1 ORDER BY joined_at", s.ID)
	if err != nil {
		return fmt.Errorf("failed to query club memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clubID string
		if err := rows.Scan(&clubID); err != nil {
			return fmt.Errorf("failed to scan club membership: %w", err)
		}
		s.ClubIDs = append(s.ClubIDs, clubID)
	}
	return rows.Err()
}

func (r *StudentRepository) loadAllClubIDs(ctx context.Context) (map[string][]string, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT student_id, club_id FROM club_members ORDER BY joined_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query club memberships: %w", err)
	}
	defer rows.Close()

	memberships := make(map[string][]string)
	for rows.Next() {
		var studentID, clubID string
		if err := rows.Scan(&studentID, &clubID); err != nil {
			return nil, fmt.Errorf("failed to scan club membership: %w", err)
		}
		memberships[studentID] = append(memberships[studentID], clubID)
	}
	return memberships, rows.Err()
}

func marshalProfile(profile *catalog.Profile) ([]byte, error) {
	if profile == nil {
		return nil, nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	return data, nil
}
