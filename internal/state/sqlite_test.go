package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/erd/internal/testutil"
	"github.com/leapstack-labs/erd/pkg/diagram"
	"github.com/leapstack-labs/erd/pkg/dsl"
	"github.com/leapstack-labs/erd/pkg/schema"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(
		WithGenerator(testutil.NewSequenceGenerator("st")),
		WithLogger(testutil.NewTestLogger(t)),
	)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func sampleDiagram(t *testing.T) diagram.ERDiagram {
	t.Helper()
	d, err := dsl.Parse(testutil.OrgsDSL, dsl.WithGenerator(testutil.NewSequenceGenerator("d")))
	require.NoError(t, err)
	return d
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()

	assert.Error(t, store.Migrate())
	_, err := store.CreateProject("x", "")
	assert.Error(t, err)
	_, err = store.ListProjects()
	assert.Error(t, err)
	assert.Error(t, store.SaveDiagram("p", diagram.ERDiagram{}))
	_, err = store.LoadDiagram("p")
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate())

	for _, table := range []string{"projects", "diagrams"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s should exist", table)
		_ = rows.Close()
	}
}

func TestSQLiteStore_ProjectLifecycle(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.CreateProject("  billing  ", "invoices and payments")
	require.NoError(t, err)
	assert.Equal(t, "st-1", first.ID)
	assert.Equal(t, "billing", first.Name)
	assert.Equal(t, 0, first.SortOrder)
	assert.Nil(t, first.DataSchemaVersion)

	second, err := store.CreateProject("accounts", "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)

	_, err = store.CreateProject("billing", "")
	assert.Error(t, err, "names are unique")

	_, err = store.CreateProject("   ", "")
	assert.Error(t, err)

	byName, err := store.GetProject("billing")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byName.ID)
	assert.Equal(t, "invoices and payments", byName.Description)
	assert.True(t, byName.CreatedAt.Equal(testutil.FixedTime))

	byID, err := store.GetProject(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "accounts", byID.Name)

	projects, err := store.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "billing", projects[0].Name)
	assert.Equal(t, "accounts", projects[1].Name)

	require.NoError(t, store.DeleteProject("billing"))
	_, err = store.GetProject("billing")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.DeleteProject("billing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_SaveLoadDiagram(t *testing.T) {
	store := setupTestStore(t)
	p, err := store.CreateProject("orgs", "")
	require.NoError(t, err)

	d := sampleDiagram(t)
	require.NoError(t, store.SaveDiagram(p.ID, d))

	got, err := store.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DataSchemaVersion)
	assert.Equal(t, schema.CurrentVersion, *got.DataSchemaVersion)
	assert.Equal(t, len(d.Tables), got.TableCount)
	assert.Nil(t, got.LastOpenedAt)

	loaded, err := store.LoadDiagram(p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Tables, len(d.Tables))
	for i := range d.Tables {
		assert.Equal(t, d.Tables[i].ID, loaded.Tables[i].ID)
		assert.Equal(t, d.Tables[i].Name, loaded.Tables[i].Name)
		assert.Len(t, loaded.Tables[i].Columns, len(d.Tables[i].Columns))
	}
	assert.Len(t, loaded.Relations, len(d.Relations))
	assert.Len(t, loaded.Memos, len(d.Memos))

	touched, err := store.GetProject(p.ID)
	require.NoError(t, err)
	assert.NotNil(t, touched.LastOpenedAt)

	// Saving again replaces the stored diagram.
	d.Tables = d.Tables[:1]
	d.Relations = nil
	require.NoError(t, store.SaveDiagram(p.ID, d))
	loaded, err = store.LoadDiagram(p.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Tables, 1)
}

func TestSQLiteStore_LoadMigratesOldData(t *testing.T) {
	store := setupTestStore(t)
	p, err := store.CreateProject("legacy", "")
	require.NoError(t, err)

	legacy := `{"tables":[{"name":"orgs","columns":[{"name":"id","type":"Number"}]}]}`
	_, err = store.db.Exec(
		`INSERT INTO diagrams (project_id, data, schema_version, table_count, updated_at) VALUES (?, ?, 0, 1, ?)`,
		p.ID, legacy, testutil.FixedTime,
	)
	require.NoError(t, err)

	d, err := store.LoadDiagram(p.ID)
	require.NoError(t, err)
	require.Len(t, d.Tables, 1)
	assert.Equal(t, "orgs", d.Tables[0].Name)
	assert.NotEmpty(t, d.Tables[0].ID)
	assert.Equal(t, diagram.TypeNumber, d.Tables[0].Columns[0].Type)
}

func TestSQLiteStore_LoadRejectsTooOld(t *testing.T) {
	store := setupTestStore(t)
	p, err := store.CreateProject("ancient", "")
	require.NoError(t, err)

	_, err = store.db.Exec(
		`INSERT INTO diagrams (project_id, data, schema_version, table_count, updated_at) VALUES (?, ?, 1, 0, ?)`,
		p.ID, `{"schemaVersion":1,"diagram":{"tables":[]}}`, testutil.FixedTime,
	)
	require.NoError(t, err)

	_, err = store.LoadDiagram(p.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrTooOld))
}

func TestSQLiteStore_DiagramErrors(t *testing.T) {
	store := setupTestStore(t)

	err := store.SaveDiagram("missing", diagram.ERDiagram{})
	assert.True(t, errors.Is(err, ErrNotFound))

	p, err := store.CreateProject("empty", "")
	require.NoError(t, err)
	_, err = store.LoadDiagram(p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	p, err := store.CreateProject("gone", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveDiagram(p.ID, sampleDiagram(t)))

	require.NoError(t, store.DeleteProject(p.ID))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM diagrams`).Scan(&count))
	assert.Equal(t, 0, count)
}
