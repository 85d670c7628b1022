package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Embedded schema migrations, applied in order at startup.
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// Migrator applies embedded migrations in order.
type Migrator struct {
	conn      *Connection
	tableName string
}

// NewMigrator creates a new migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, tableName: "schema_migrations"}
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, migration := range Migrations() {
		if _, ok := applied[migration.Version]; ok {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("%w: migration %d (%s): %v",
				ErrMigrationFailed, migration.Version, migration.Name, err)
		}
	}
	return nil
}

func (m *Migrator) ensureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	_, err := m.conn.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, migration.UpSQL); err != nil {
			return err
		}
		record := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
		_, err := tx.Exec(ctx, record, migration.Version, migration.Name)
		return err
	})
}

// Migrations returns all embedded migrations in version order.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS students (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					field_of_study TEXT NOT NULL DEFAULT '',
					year_level INTEGER NOT NULL,
					skill_ids TEXT[] NOT NULL DEFAULT '{}',
					profile JSONB,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_students_email ON students (email);
			`,
		},
		{
			Version: 2,
			Name:    "create_clubs",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS clubs (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					description TEXT NOT NULL DEFAULT '',
					mission TEXT NOT NULL DEFAULT '',
					history TEXT NOT NULL DEFAULT '',
					contact_email TEXT NOT NULL DEFAULT '',
					website TEXT NOT NULL DEFAULT '',
					personality_style TEXT NOT NULL DEFAULT 'friendly',
					member_count INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version: 3,
			Name:    "create_events",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS events (
					id UUID PRIMARY KEY,
					club_id UUID NOT NULL REFERENCES clubs (id),
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					event_type TEXT NOT NULL,
					location TEXT NOT NULL DEFAULT '',
					starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
					deadline TIMESTAMP WITH TIME ZONE,
					max_seats INTEGER,
					current_registrations INTEGER NOT NULL DEFAULT 0,
					is_trending BOOLEAN NOT NULL DEFAULT FALSE,
					view_count INTEGER NOT NULL DEFAULT 0,
					required_skill_ids TEXT[] NOT NULL DEFAULT '{}',
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events (starts_at);
				CREATE INDEX IF NOT EXISTS idx_events_club_id ON events (club_id);
			`,
		},
		{
			Version: 4,
			Name:    "create_skills",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS skills (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					category TEXT NOT NULL
				);
			`,
		},
		{
			Version: 5,
			Name:    "create_registrations_and_memberships",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS registrations (
					student_id UUID NOT NULL REFERENCES students (id),
					event_id UUID NOT NULL REFERENCES events (id),
					registered_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					PRIMARY KEY (student_id, event_id)
				);
				CREATE TABLE IF NOT EXISTS club_members (
					student_id UUID NOT NULL REFERENCES students (id),
					club_id UUID NOT NULL REFERENCES clubs (id),
					joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					PRIMARY KEY (student_id, club_id)
				);
				CREATE INDEX IF NOT EXISTS idx_registrations_student ON registrations (student_id);
				CREATE INDEX IF NOT EXISTS idx_club_members_student ON club_members (student_id);
			`,
		},
	}
}
