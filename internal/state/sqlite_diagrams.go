package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/erd/pkg/diagram"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// SaveDiagram encodes d as a current envelope and stores it for the project.
func (s *SQLiteStore) SaveDiagram(projectID string, d diagram.ERDiagram) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	env := schema.Encode(d, schema.WithGenerator(s.gen), schema.WithLogger(s.logger))
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode diagram: %w", err)
	}
	now := s.gen.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(
		`UPDATE projects SET data_schema_version = ?, updated_at = ? WHERE id = ?`,
		env.SchemaVersion, now, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	_, err = tx.Exec(
		`INSERT INTO diagrams (project_id, data, schema_version, table_count, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET data = excluded.data, schema_version = excluded.schema_version,
		table_count = excluded.table_count, updated_at = excluded.updated_at`,
		projectID, string(data), env.SchemaVersion, len(env.Diagram.Tables), now,
	)
	if err != nil {
		return fmt.Errorf("failed to save diagram: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit diagram: %w", err)
	}

	s.logger.Debug("diagram saved",
		slog.String("project", projectID),
		slog.Int("tables", len(env.Diagram.Tables)),
		slog.Int("schema_version", env.SchemaVersion))
	return nil
}

// LoadDiagram reads and decodes the project's diagram. Stored data from an
// older schema version is migrated; data the decoder rejects is an error.
func (s *SQLiteStore) LoadDiagram(projectID string) (*diagram.ERDiagram, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var data string
	err := s.db.QueryRow(`SELECT data FROM diagrams WHERE project_id = ?`, projectID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diagram for project %q: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diagram: %w", err)
	}

	d, err := schema.DecodeJSON([]byte(data), schema.WithGenerator(s.gen), schema.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to decode diagram for project %q: %w", projectID, err)
	}
	if d == nil {
		return nil, fmt.Errorf("stored data for project %q is not a diagram", projectID)
	}

	if _, err := s.db.Exec(`UPDATE projects SET last_opened_at = ? WHERE id = ?`, s.gen.Now().UTC(), projectID); err != nil {
		return nil, fmt.Errorf("failed to touch project: %w", err)
	}
	return d, nil
}
