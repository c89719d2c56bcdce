// Package state persists erd projects and their diagrams in SQLite.
//
// Diagrams are always written as current schema envelopes and always read
// back through the schema decoder, so stored data from older releases is
// migrated on load.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// ErrNotFound is returned when a project or diagram does not exist.
var ErrNotFound = errors.New("not found")

// Project is a named container for one diagram.
type Project struct {
	ID          string
	Name        string
	Description string
	SortOrder   int
	// DataSchemaVersion is the envelope version of the stored diagram.
	// Nil when no diagram has been saved yet.
	DataSchemaVersion *int
	TableCount        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastOpenedAt      *time.Time
}

// Store is the persistence interface used by the CLI.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateProject(name, description string) (*Project, error)
	GetProject(idOrName string) (*Project, error)
	ListProjects() ([]*Project, error)
	DeleteProject(idOrName string) error

	SaveDiagram(projectID string, d diagram.ERDiagram) error
	LoadDiagram(projectID string) (*diagram.ERDiagram, error)
}
