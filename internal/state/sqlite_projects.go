package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const projectColumns = `id, name, description, sort_order, data_schema_version,
	(SELECT table_count FROM diagrams WHERE project_id = projects.id),
	created_at, updated_at, last_opened_at`

// CreateProject creates a project with the next sort position.
func (s *SQLiteStore) CreateProject(name, description string) (*Project, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	var sortOrder int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM projects`).Scan(&sortOrder); err != nil {
		return nil, fmt.Errorf("failed to compute sort order: %w", err)
	}

	now := s.gen.Now().UTC()
	p := &Project{
		ID:          s.gen.NewID(),
		Name:        name,
		Description: description,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, description, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.SortOrder, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", name, err)
	}

	s.logger.Debug("project created", slog.String("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// GetProject retrieves a project by id, falling back to name.
func (s *SQLiteStore) GetProject(idOrName string) (*Project, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT `+projectColumns+` FROM projects WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1`,
		idOrName, idOrName, idOrName,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects by sort order, then name.
func (s *SQLiteStore) ListProjects() ([]*Project, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and its diagram.
func (s *SQLiteStore) DeleteProject(idOrName string) error {
	p, err := s.GetProject(idOrName)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to delete project %q: %w", p.Name, err)
	}
	s.logger.Debug("project deleted", slog.String("id", p.ID))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	p := &Project{}
	var (
		version    sql.NullInt64
		tableCount sql.NullInt64
		lastOpened sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SortOrder, &version,
		&tableCount, &p.CreatedAt, &p.UpdatedAt, &lastOpened)
	if err != nil {
		return nil, err
	}
	if version.Valid {
		v := int(version.Int64)
		p.DataSchemaVersion = &v
	}
	p.TableCount = int(tableCount.Int64)
	if lastOpened.Valid {
		t := lastOpened.Time
		p.LastOpenedAt = &t
	}
	return p, nil
}
