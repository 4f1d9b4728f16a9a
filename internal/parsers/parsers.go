// Package parsers loads DIMACS CNF instances into a solver.Model,
// grounded on the teacher's parsers.LoadDIMACS but built on top of the
// real github.com/rhartert/dimacs parser instead of a hand-rolled
// scanner, and posting straight into the new façade instead of a
// SATSolver-shaped interface.
package parsers

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/solver"
)

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file at filename, creating one
// Boolean variable per instance variable (labelled with its 0-based
// index) and posting every clause to m. It returns the instance's
// variable and clause counts.
func LoadDIMACS(filename string, gzipped bool, m *solver.Model[int]) (nVars, nClauses int, err error) {
	f, err := reader(filename, gzipped)
	if err != nil {
		return 0, 0, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer f.Close()

	b := &builder{m: m}
	if err := dimacs.ReadBuilder(f, b); err != nil {
		return 0, 0, err
	}
	return len(b.vars), b.nClauses, nil
}

// builder wraps a solver.Model to implement dimacs.Builder.
type builder struct {
	m        *solver.Model[int]
	vars     []lits.Lit
	nClauses int
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("not a CNF problem")
	}
	b.vars = make([]lits.Lit, nVars)
	for i := 0; i < nVars; i++ {
		b.vars[i] = b.m.NewBoolVar(i)
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]lits.Lit, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = b.vars[-l-1].Negation()
		} else {
			clause[i] = b.vars[l-1]
		}
	}
	b.nClauses++
	return b.m.AddClause(clause)
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}
