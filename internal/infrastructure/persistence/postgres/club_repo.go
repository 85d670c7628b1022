package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"
	"github.com/campus-hub/clubevent-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLUB REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const clubColumns = `id, name, description, mission, history, contact_email,
	   website, personality_style, member_count, created_at, updated_at`

// ClubRepository implements catalog.ClubRepository for PostgreSQL.
type ClubRepository struct {
	conn *Connection
}

// NewClubRepository creates a new ClubRepository.
func NewClubRepository(conn *Connection) *ClubRepository {
	return &ClubRepository{conn: conn}
}

// GetByID returns a club by ID.
func (r *ClubRepository) GetByID(ctx context.Context, id string) (*catalog.Club, error) {
	query := fmt.Sprintf("SELECT %s FROM clubs WHERE id = $1", clubColumns)
	return r.scanClub(r.conn.QueryRow(ctx, query, id))
}

// GetByName returns a club by name (case-insensitive).
func (r *ClubRepository) GetByName(ctx context.Context, name string) (*catalog.Club, error) {
	query := fmt.Sprintf("SELECT %s FROM clubs WHERE LOWER(name) = LOWER($1)", clubColumns)
	return r.scanClub(r.conn.QueryRow(ctx, query, name))
}

// List returns all clubs ordered by name.
func (r *ClubRepository) List(ctx context.Context) ([]*catalog.Club, error) {
	query := fmt.Sprintf("SELECT %s FROM clubs ORDER BY name", clubColumns)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*catalog.Club
	for rows.Next() {
		club, err := r.scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	return clubs, rows.Err()
}

func (r *ClubRepository) scanClub(row pgx.Row) (*catalog.Club, error) {
	var (
		c            catalog.Club
		contactEmail string
		personality  string
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Mission,
		&c.History,
		&contactEmail,
		&c.Website,
		&personality,
		&c.MemberCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club: %w", err)
	}

	c.ContactEmail = catalog.Email(contactEmail)
	c.PersonalityStyle = catalog.PersonalityStyle(personality)
	return &c, nil
}
