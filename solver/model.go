// Package solver is the model-building and solving façade: create
// variables, reify/enforce expressions, register linear and
// difference-logic constraints, and drive the underlying search to a
// solution. Label is a user-chosen type (e.g. a string or an enum) used
// only for diagnostics, mirroring the teacher's top-level Solver
// generalized to many reasoners and a generic variable label.
package solver

import (
	"github.com/rhartert/halite/internal/diffreasoner"
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/intern"
	"github.com/rhartert/halite/internal/linreasoner"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/reasoner"
	"github.com/rhartert/halite/internal/satreasoner"
	"github.com/rhartert/halite/internal/scopes"
	"github.com/rhartert/halite/internal/search"
	"github.com/rhartert/halite/internal/trail"
)

// Status mirrors the teacher's LBool-as-result idiom, renamed for what
// it reports: Sat, Unsat, or Unknown (a budget fired first).
type Status = search.Status

// Expr is a compound Boolean expression passed to Reify/Enforce; build
// one with Atom/And/Or/Not. Term is one `coefficient*variable` summand
// of a linear constraint passed to AddLinearConstraint. Both are
// re-exported here so callers never need to import an internal package
// directly.
type (
	Expr = intern.Expr
	Term = linreasoner.Term
)

// Atom wraps a literal (e.g. one returned by NewBoolVar, or a bound
// literal like lits.Leq(v, k)) as a leaf expression.
func Atom(l lits.Lit) Expr { return intern.Atom(l) }

// And returns the conjunction of the given expressions.
func And(es ...Expr) Expr { return intern.And(es...) }

// Or returns the disjunction of the given expressions.
func Or(es ...Expr) Expr { return intern.Or(es...) }

// Not returns the negation of e.
func Not(e Expr) Expr { return intern.Not(e) }

const (
	Unknown = search.Unknown
	Sat     = search.Sat
	Unsat   = search.Unsat
)

// reasoner ids: reserved slots in the 4-bit cause space (0 is
// lits.CoreReasonerID).
const (
	satID  lits.ReasonerID = 1
	diffID lits.ReasonerID = 2
	linID  lits.ReasonerID = 3
)

// Model builds a problem instance and then drives it to a solution.
// The Label type parameter lets callers attach arbitrary diagnostic
// data (a name, a source-file position, ...) to every variable without
// the core needing to know anything about it.
type Model[Label any] struct {
	d    *domain.Store
	sat  *satreasoner.Reasoner
	diff *diffreasoner.Reasoner
	lin  *linreasoner.Reasoner

	scopes *scopes.Table
	intern *intern.Table

	opts   search.Options
	srch   *search.Search
	labels map[lits.Var]Label
}

// New builds an empty model with the given search options.
func New[Label any](opts search.Options) *Model[Label] {
	d := domain.NewStore()
	sat := satreasoner.New(satID, d, satreasoner.Options{ClauseDecay: opts.ClauseDecay})
	diff := diffreasoner.New(diffID, d)
	lin := linreasoner.New(linID, d)
	sc := scopes.New(d, sat)

	return &Model[Label]{
		d:      d,
		sat:    sat,
		diff:   diff,
		lin:    lin,
		scopes: sc,
		intern: intern.New(d, sat, sc),
		opts:   opts,
		labels: map[lits.Var]Label{},
	}
}

// NewIntVar creates an always-present variable with domain [lb, ub].
func (m *Model[Label]) NewIntVar(lb, ub int32, label Label) lits.Var {
	v := m.d.NewVar(lb, ub)
	m.registerVar(v, label)
	return v
}

// NewOptionalIntVar creates a variable whose presence is governed by
// presence, with domain [lb, ub] while present.
func (m *Model[Label]) NewOptionalIntVar(lb, ub int32, presence lits.Lit, label Label) lits.Var {
	v := m.d.NewOptionalVar(lb, ub, presence)
	m.registerVar(v, label)
	return v
}

// NewBoolVar creates an always-present 0/1 variable and returns its
// "true" literal.
func (m *Model[Label]) NewBoolVar(label Label) lits.Lit {
	return lits.Geq(m.NewIntVar(0, 1, label), 1)
}

func (m *Model[Label]) registerVar(v lits.Var, label Label) {
	m.labels[v] = label
	m.diff.NewVar(v)
	if m.srch != nil {
		m.srch.NotifyNewVar(v)
	}
}

// Label returns the diagnostic label a variable was created with.
func (m *Model[Label]) Label(v lits.Var) Label {
	return m.labels[v]
}

// Reify returns a literal true exactly when expr holds (within expr's
// validity scope).
func (m *Model[Label]) Reify(expr intern.Expr) (lits.Lit, error) {
	return m.intern.Reify(expr)
}

// Enforce states that expr must hold whenever its variables all exist.
func (m *Model[Label]) Enforce(expr intern.Expr) error {
	return m.intern.Enforce(expr)
}

// AddClause posts a disjunction of literals directly to the SAT
// reasoner, for front-ends that already work in CNF (e.g. a DIMACS
// loader).
func (m *Model[Label]) AddClause(literals []lits.Lit) error {
	return m.sat.AddClause(literals)
}

// AddDifferenceConstraint posts `to - from <= weight`, active while
// presence holds (lits.TrueLit for an always-active edge). Must be
// called at ROOT; an error here means the edge already contradicts the
// bounds already on the store.
func (m *Model[Label]) AddDifferenceConstraint(from, to lits.Var, weight int32, presence lits.Lit) error {
	return m.diff.AddEdge(from, to, weight, presence)
}

// AddLinearConstraint posts `Σ terms ≤ bound`. Must be called at ROOT;
// an error here means the constraint already contradicts the bounds
// already on the store.
func (m *Model[Label]) AddLinearConstraint(terms []linreasoner.Term, bound int32) error {
	_, err := m.lin.AddConstraint(terms, bound)
	return err
}

// Bounds returns v's current (lb, ub); meaningful after a Sat result,
// when every variable's domain has collapsed to a single value.
func (m *Model[Label]) Bounds(v lits.Var) (int32, int32) {
	return m.d.Bounds(v)
}

// Value returns v's current fixed value (its upper bound); callers
// should only rely on this after Solve returns Sat.
func (m *Model[Label]) Value(v lits.Var) int32 {
	return m.d.UBOf(v)
}

func (m *Model[Label]) search() *search.Search {
	if m.srch == nil {
		m.srch = search.New(m.d, []reasoner.Reasoner{m.sat, m.diff, m.lin}, m.opts)
	}
	return m.srch
}

// Solve runs search to completion or until a budget fires.
func (m *Model[Label]) Solve() Status {
	return m.search().Solve()
}

// Enumerate finds every solution in turn, calling cb with the model
// positioned at each one; cb returns false to stop early. It reports
// whether at least one solution was found. After each solution the
// search is restored to ROOT and a permanent blocking clause is added
// to the SAT reasoner: at least one watched variable must differ from
// its value in that solution.
func (m *Model[Label]) Enumerate(watch []lits.Var, cb func() bool) (bool, error) {
	found := false
	for {
		status := m.Solve()
		if status != Sat {
			return found, nil
		}
		found = true
		if !cb() {
			return found, nil
		}

		blocking := make([]lits.Lit, 0, 2*len(watch))
		for _, v := range watch {
			val := m.d.UBOf(v)
			blocking = append(blocking, lits.Lt(v, val), lits.Gt(v, val))
		}
		m.d.Restore(trail.Root)
		if err := m.sat.AddClause(blocking); err != nil {
			return found, err
		}
	}
}

// Minimise repeatedly solves, each time asserting `objective < best`,
// until the assumption itself proves infeasible at ROOT (optimum
// proven) or a budget fires. It returns whether any feasible solution
// was found and the best objective value seen.
func (m *Model[Label]) Minimise(objective lits.Var) (bool, int32, error) {
	return m.MinimiseWithCallback(objective, func(int32) {})
}

// MinimiseWithCallback is Minimise, invoking onImprove with every new
// best value found.
func (m *Model[Label]) MinimiseWithCallback(objective lits.Var, onImprove func(int32)) (bool, int32, error) {
	var (
		found bool
		best  int32
	)
	for {
		status := m.Solve()
		if status != Sat {
			return found, best, nil
		}
		found = true
		best = m.d.UBOf(objective)
		onImprove(best)

		m.d.Restore(trail.Root)
		if _, err := m.d.Set(lits.Leq(objective, best-1), lits.AssumptionCause()); err != nil {
			return found, best, nil // tightening itself contradicts: optimum proven.
		}
	}
}

// Maximise is Minimise's mirror image: it repeatedly asserts
// `objective > best` until that too proves infeasible.
func (m *Model[Label]) Maximise(objective lits.Var) (bool, int32, error) {
	return m.MaximiseWithCallback(objective, func(int32) {})
}

// MaximiseWithCallback is Maximise, invoking onImprove with every new
// best value found.
func (m *Model[Label]) MaximiseWithCallback(objective lits.Var, onImprove func(int32)) (bool, int32, error) {
	var (
		found bool
		best  int32
	)
	for {
		status := m.Solve()
		if status != Sat {
			return found, best, nil
		}
		found = true
		best = m.d.UBOf(objective)
		onImprove(best)

		m.d.Restore(trail.Root)
		if _, err := m.d.Set(lits.Geq(objective, best+1), lits.AssumptionCause()); err != nil {
			return found, best, nil
		}
	}
}
