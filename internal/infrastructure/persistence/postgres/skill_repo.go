package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/clubevent-hub/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKILL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SkillRepository implements catalog.SkillRepository for PostgreSQL.
type SkillRepository struct {
	conn *Connection
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(conn *Connection) *SkillRepository {
	return &SkillRepository{conn: conn}
}

// GetByIDs returns skills for the given IDs. The result preserves the order
// of ids; unknown IDs are skipped.
func (r *SkillRepository) GetByIDs(ctx context.Context, ids []string) ([]*catalog.Skill, error) {
	if len(ids) == 0 {
		return []*catalog.Skill{}, nil
	}

	rows, err := r.conn.Query(ctx,
		"SELECT id, name, category FROM skills WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*catalog.Skill)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		byID[skill.ID] = skill
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*catalog.Skill, 0, len(byID))
	for _, id := range ids {
		if skill, ok := byID[id]; ok {
			ordered = append(ordered, skill)
		}
	}
	return ordered, nil
}

// GetByNames returns skills for the given names.
func (r *SkillRepository) GetByNames(ctx context.Context, names []string) ([]*catalog.Skill, error) {
	if len(names) == 0 {
		return []*catalog.Skill{}, nil
	}

	rows, err := r.conn.Query(ctx,
		"SELECT id, name, category FROM skills WHERE name = ANY($1)", names)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills by name: %w", err)
	}
	defer rows.Close()

	return scanSkills(rows)
}

// ListAll returns the full skill catalog.
func (r *SkillRepository) ListAll(ctx context.Context) ([]*catalog.Skill, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, name, category FROM skills ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	return scanSkills(rows)
}

func scanSkill(row pgx.Row) (*catalog.Skill, error) {
	var (
		s        catalog.Skill
		category string
	)
	if err := row.Scan(&s.ID, &s.Name, &category); err != nil {
		return nil, fmt.Errorf("failed to scan skill: %w", err)
	}
	s.Category = catalog.SkillCategory(category)
	return &s, nil
}

func scanSkills(rows pgx.Rows) ([]*catalog.Skill, error) {
	var skills []*catalog.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}
