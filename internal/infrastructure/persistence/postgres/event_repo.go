package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const eventColumns = `id, club_id, title, description, event_type, location,
	   starts_at, deadline, max_seats, current_registrations, is_trending,
	   view_count, required_skill_ids, created_at, updated_at`

// defaultEventLimit bounds unfiltered listings.
const defaultEventLimit = 20

// EventRepository implements catalog.EventRepository for PostgreSQL.
type EventRepository struct {
	conn *Connection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(conn *Connection) *EventRepository {
	return &EventRepository{conn: conn}
}

// GetByID returns an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*catalog.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	return r.scanEvent(r.conn.QueryRow(ctx, query, id))
}

// ListUpcoming returns future events matching the filter, ordered by start time.
func (r *EventRepository) ListUpcoming(ctx context.Context, filter catalog.EventFilter) ([]*catalog.Event, error) {
	where, args := buildEventFilter(filter, nil)
	query := fmt.Sprintf(
		"SELECT %s FROM events%s ORDER BY starts_at LIMIT $%d",
		eventColumns, where, len(args)+1,
	)
	args = append(args, eventLimit(filter.Limit))

	return r.queryEvents(ctx, query, args...)
}

// Search performs a text search over title, description and event type.
func (r *EventRepository) Search(ctx context.Context, searchQuery string, filter catalog.EventFilter) ([]*catalog.Event, error) {
	pattern := "%" + strings.TrimSpace(searchQuery) + "%"
	where, args := buildEventFilter(filter, []any{pattern})
	textClause := "(title ILIKE $1 OR description ILIKE $1 OR event_type ILIKE $1)"
	if where == "" {
		where = " WHERE " + textClause
	} else {
		where += " AND " + textClause
	}

	query := fmt.Sprintf(
		"SELECT %s FROM events%s ORDER BY starts_at LIMIT $%d",
		eventColumns, where, len(args)+1,
	)
	args = append(args, eventLimit(filter.Limit))

	return r.queryEvents(ctx, query, args...)
}

// ListTrending returns popular future events ordered by view count.
func (r *EventRepository) ListTrending(ctx context.Context, limit int) ([]*catalog.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE starts_at > NOW() AND (is_trending OR view_count > 0)
		ORDER BY view_count DESC, starts_at
		LIMIT $1
	`, eventColumns)

	return r.queryEvents(ctx, query, eventLimit(limit))
}

// IncrementRegistrations atomically increments the registration counter.
func (r *EventRepository) IncrementRegistrations(ctx context.Context, eventID string) error {
	result, err := r.conn.Exec(ctx, `
		UPDATE events
		SET current_registrations = current_registrations + 1, updated_at = NOW()
		WHERE id = $1
	`, eventID)
	if err != nil {
		return fmt.Errorf("failed to increment registrations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrEventNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query building and scan helpers
// ─────────────────────────────────────────────────────────────────────────────

// buildEventFilter renders the WHERE clause for an EventFilter. Placeholder
// numbering continues after any seed args already bound by the caller.
func buildEventFilter(filter catalog.EventFilter, seed []any) (string, []any) {
	args := append([]any{}, seed...)
	var clauses []string

	if filter.ClubID != "" {
		args = append(args, filter.ClubID)
		clauses = append(clauses, fmt.Sprintf("club_id = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, string(filter.EventType))
		clauses = append(clauses, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		clauses = append(clauses, fmt.Sprintf("starts_at > $%d", len(args)))
	} else if !filter.IncludePast {
		clauses = append(clauses, "starts_at > NOW()")
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		clauses = append(clauses, fmt.Sprintf("starts_at <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func eventLimit(limit int) int {
	if limit <= 0 {
		return defaultEventLimit
	}
	return limit
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*catalog.Event, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*catalog.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepository) scanEvent(row pgx.Row) (*catalog.Event, error) {
	var (
		e         catalog.Event
		eventType string
	)

	err := row.Scan(
		&e.ID,
		&e.ClubID,
		&e.Title,
		&e.Description,
		&eventType,
		&e.Location,
		&e.StartsAt,
		&e.Deadline,
		&e.MaxSeats,
		&e.CurrentRegistrations,
		&e.IsTrending,
		&e.ViewCount,
		&e.RequiredSkillIDs,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	e.EventType = catalog.EventType(eventType)
	return &e, nil
}
