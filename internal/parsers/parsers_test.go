package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rhartert/halite/internal/search"
	"github.com/rhartert/halite/solver"
)

// cnf is a tiny satisfiable instance: (x0 v x1) & (x0 v !x1) & (!x1).
// Unit propagation alone forces x1 = false, then x0 = true.
const cnf = `c a trivial instance
p cnf 2 3
1 2 0
1 -2 0
-2 0
`

func writeInstance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.cnf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadDIMACS_BuildsAndSolvesInstance(t *testing.T) {
	path := writeInstance(t, cnf)

	m := solver.New[int](search.DefaultOptions)
	nVars, nClauses, err := LoadDIMACS(path, false, m)
	if err != nil {
		t.Fatalf("LoadDIMACS failed: %v", err)
	}
	if nVars != 2 {
		t.Errorf("nVars = %d, want 2", nVars)
	}
	if nClauses != 3 {
		t.Errorf("nClauses = %d, want 3", nClauses)
	}

	if status := m.Solve(); status != solver.Sat {
		t.Fatalf("Solve() = %v, want Sat", status)
	}
}

func TestLoadDIMACS_MissingFile(t *testing.T) {
	m := solver.New[int](search.DefaultOptions)
	if _, _, err := LoadDIMACS(filepath.Join(t.TempDir(), "missing.cnf"), false, m); err == nil {
		t.Errorf("LoadDIMACS: want error for a missing file, got none")
	}
}
