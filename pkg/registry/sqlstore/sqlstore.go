// Package sqlstore provides SQL-backed skill registries for SQLite and
// PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

// Dialect selects placeholder syntax for a database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

const schema = `CREATE TABLE IF NOT EXISTS skills (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	display_name TEXT NOT NULL,
	description TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (tenant_id, user_id, name)
)`

const upsertQuery = `INSERT INTO skills (id, tenant_id, user_id, name, display_name, description, storage_path, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (tenant_id, user_id, name) DO UPDATE SET
	display_name = excluded.display_name,
	description = excluded.description,
	storage_path = excluded.storage_path,
	updated_at = excluded.updated_at`

const selectColumns = `SELECT id, tenant_id, user_id, name, display_name, description, storage_path, created_at, updated_at FROM skills`

// Registry implements registry.Registry and registry.Reader over database/sql.
type Registry struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New wraps an open database. Call Init before use.
func New(db *sql.DB, dialect Dialect) *Registry {
	return &Registry{db: db, dialect: dialect, now: time.Now}
}

// Init creates the skills table if it does not exist.
func (r *Registry) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *Registry) Register(ctx context.Context, reg registry.Registration) (*registry.Skill, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, r.rebind(upsertQuery),
		uuid.NewString(),
		reg.Principal.TenantID,
		reg.Principal.UserID,
		reg.Name,
		reg.DisplayName,
		reg.Description,
		reg.StoragePath,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert skill %s: %w", reg.Name, err)
	}

	return r.Get(ctx, reg.Principal, reg.Name)
}

func (r *Registry) Get(ctx context.Context, p principal.Principal, name string) (*registry.Skill, error) {
	row := r.db.QueryRowContext(ctx,
		r.rebind(selectColumns+" WHERE tenant_id = ? AND user_id = ? AND name = ?"),
		p.TenantID, p.UserID, name,
	)
	skill, err := scanSkill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, registry.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skill %s: %w", name, err)
	}
	return skill, nil
}

func (r *Registry) List(ctx context.Context, p principal.Principal) ([]*registry.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		r.rebind(selectColumns+" WHERE tenant_id = ? AND user_id = ? ORDER BY name"),
		p.TenantID, p.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := make([]*registry.Skill, 0)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

func (r *Registry) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSkill(s scanner) (*registry.Skill, error) {
	var skill registry.Skill
	err := s.Scan(
		&skill.ID,
		&skill.TenantID,
		&skill.UserID,
		&skill.Name,
		&skill.DisplayName,
		&skill.Description,
		&skill.StoragePath,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (r *Registry) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
