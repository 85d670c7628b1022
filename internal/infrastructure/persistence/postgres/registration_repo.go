package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RegistrationRepository implements catalog.RegistrationRepository for PostgreSQL.
type RegistrationRepository struct {
	conn *Connection
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(conn *Connection) *RegistrationRepository {
	return &RegistrationRepository{conn: conn}
}

// ClaimedItemsOf returns the IDs of events the student is registered for
// and clubs the student is a member of, as a single set.
func (r *RegistrationRepository) ClaimedItemsOf(ctx context.Context, studentID string) (map[string]struct{}, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT event_id FROM registrations WHERE student_id = $1
		UNION
		SELECT club_id FROM club_members WHERE student_id = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claimed items: %w", err)
	}
	defer rows.Close()

	claimed := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed item: %w", err)
		}
		claimed[id] = struct{}{}
	}
	return claimed, rows.Err()
}

// Create registers a student for an event.
func (r *RegistrationRepository) Create(ctx context.Context, studentID, eventID string) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO registrations (student_id, event_id) VALUES ($1, $2)
	`, studentID, eventID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyRegistered
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrEventNotFound
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}
