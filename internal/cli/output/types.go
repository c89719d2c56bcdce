package output

// Status values shared by text and JSON reports.
const (
	StatusOK       = "ok"
	StatusMigrated = "migrated"
	StatusCurrent  = "current"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// LayoutTable is one table in the layout report.
type LayoutTable struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// LayoutTier groups the tables placed in one column.
type LayoutTier struct {
	Level  int           `json:"level"`
	Tables []LayoutTable `json:"tables"`
}

// LayoutOutput is the JSON shape of the layout command.
type LayoutOutput struct {
	Tiers          []LayoutTier `json:"tiers"`
	Forced         []string     `json:"forced,omitempty"`
	Cycle          []string     `json:"cycle,omitempty"`
	TotalTables    int          `json:"total_tables"`
	TotalRelations int          `json:"total_relations"`
}

// MigrateResult reports what happened to one file.
type MigrateResult struct {
	Path        string `json:"path"`
	Kind        string `json:"kind,omitempty"`
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// MigrateSummary counts results by status.
type MigrateSummary struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Current  int `json:"current"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// MigrateOutput is the JSON shape of the migrate command.
type MigrateOutput struct {
	Files   []MigrateResult `json:"files"`
	Summary MigrateSummary  `json:"summary"`
}

// ProjectInfo summarizes a stored project.
type ProjectInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SchemaVersion int    `json:"schema_version"`
	Tables        int    `json:"tables"`
	UpdatedAt     string `json:"updated_at"`
	LastOpenedAt  string `json:"last_opened_at,omitempty"`
}

// ProjectListOutput is the JSON shape of project list.
type ProjectListOutput struct {
	Projects []ProjectInfo `json:"projects"`
}

// DiagramSummary counts the parts of a diagram.
type DiagramSummary struct {
	SchemaVersion int `json:"schema_version"`
	Tables        int `json:"tables"`
	Columns       int `json:"columns"`
	Relations     int `json:"relations"`
	Memos         int `json:"memos"`
}
