package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// OrgsDSL is a small hierarchy: one parent referenced by three children.
const OrgsDSL = `# sample workspace
TABLE orgs "Organizations" PK=id LABEL=name COLOR=#4F46E5
COL orgs.id Text req uniq
COL orgs.name Name req "Display name"

TABLE users PK=id LABEL=email
COL users.id Text req
COL users.email Email req uniq
REF users.org_id -> orgs.id req "Owning org"

TABLE projects PK=id
COL projects.id Text
REF projects.org_id -> orgs.id

TABLE assets PK=id
COL assets.id Text
COL assets.price Price virtual
REF assets.org_id -> orgs.id

MEMO "Tenancy model\nEvery row belongs to one org"
`

// CycleDSL declares two tables that reference each other.
const CycleDSL = `TABLE a PK=id
COL a.id Text
REF a.b_id -> b.id

TABLE b PK=id
COL b.id Text
REF b.a_id -> a.id
`

// WriteFile writes content under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
