package solver

import (
	"testing"

	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/search"
)

func newModel() *Model[string] {
	return New[string](search.DefaultOptions)
}

// Scenario 1: trivial unsat integer equality. x in [0,3], y in [4,5],
// enforce x = y via the two half-constraints a linear equality needs
// (x-y<=0 and y-x<=0). The bounds already contradict each other, so
// the second constraint is rejected at ROOT.
func TestModel_TrivialUnsatEquality(t *testing.T) {
	m := newModel()
	x := m.NewIntVar(0, 3, "x")
	y := m.NewIntVar(4, 5, "y")

	if err := m.AddLinearConstraint([]Term{{V: x, Coef: 1}, {V: y, Coef: -1}}, 0); err != nil {
		t.Fatalf("AddLinearConstraint(x-y<=0) failed unexpectedly: %v", err)
	}

	err := m.AddLinearConstraint([]Term{{V: y, Coef: 1}, {V: x, Coef: -1}}, 0)
	if err == nil {
		if status := m.Solve(); status != Unsat {
			t.Fatalf("Solve() = %v, want Unsat", status)
		}
		return
	}
	if _, ok := err.(*domain.Contradiction); !ok {
		t.Fatalf("AddLinearConstraint(y-x<=0) returned %T, want *domain.Contradiction", err)
	}
}

// Scenario 2: simple satisfaction. x in [0,3], y in [3,5], enforce
// x = y; the only feasible value is 3 for both.
func TestModel_SimpleSatisfaction(t *testing.T) {
	m := newModel()
	x := m.NewIntVar(0, 3, "x")
	y := m.NewIntVar(3, 5, "y")

	if err := m.AddLinearConstraint([]Term{{V: x, Coef: 1}, {V: y, Coef: -1}}, 0); err != nil {
		t.Fatalf("AddLinearConstraint(x-y<=0) failed: %v", err)
	}
	if err := m.AddLinearConstraint([]Term{{V: y, Coef: 1}, {V: x, Coef: -1}}, 0); err != nil {
		t.Fatalf("AddLinearConstraint(y-x<=0) failed: %v", err)
	}

	if status := m.Solve(); status != Sat {
		t.Fatalf("Solve() = %v, want Sat", status)
	}
	if v := m.Value(x); v != 3 {
		t.Errorf("x = %d, want 3", v)
	}
	if v := m.Value(y); v != 3 {
		t.Errorf("y = %d, want 3", v)
	}
}

// Scenario 3: Boolean biconditional. x, y in {0,1}, enforce x <-> y,
// enumerate every solution: expect exactly (0,0) and (1,1).
func TestModel_BooleanBiconditionalEnumeration(t *testing.T) {
	m := newModel()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")

	eq := Or(
		And(Atom(x), Atom(y)),
		And(Not(Atom(x)), Not(Atom(y))),
	)
	if err := m.Enforce(eq); err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}

	seen := map[[2]int32]bool{}
	found, err := m.Enumerate([]lits.Var{x.Var(), y.Var()}, func() bool {
		seen[[2]int32{m.Value(x.Var()), m.Value(y.Var())}] = true
		return true
	})
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if !found {
		t.Fatalf("Enumerate found no solution")
	}
	if len(seen) != 2 {
		t.Fatalf("Enumerate found %d distinct assignments, want 2: %v", len(seen), seen)
	}
	if !seen[[2]int32{0, 0}] || !seen[[2]int32{1, 1}] {
		t.Errorf("assignments = %v, want {(0,0),(1,1)}", seen)
	}
}

// Scenario 4: optional variable absence. x with presence p, domain
// [0,3]; enforcing x = 5 is impossible while present, so p must be
// inferred false.
func TestModel_OptionalVariableInferredAbsent(t *testing.T) {
	m := newModel()
	p := m.NewBoolVar("p")
	x := m.NewOptionalIntVar(0, 3, p, "x")

	if err := m.Enforce(Atom(lits.Geq(x, 5))); err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if !m.d.Entails(p.Negation()) {
		t.Fatalf("presence should already be inferred false at ROOT")
	}
	if !m.d.IsPresentFalse(x) {
		t.Errorf("x should be known absent")
	}

	if status := m.Solve(); status != Sat {
		t.Fatalf("Solve() = %v, want Sat", status)
	}
}

// Scenario 5: difference-logic cycle. Three timepoints a, b, c with
// edges a-(5)->b, b-(-2)->c, c-(-10)->a (weight sum -7 < 0): posting
// the closing edge must detect the negative cycle and fail, since all
// three timepoints are necessarily present.
func TestModel_DifferenceLogicCycleUnsat(t *testing.T) {
	m := newModel()
	a := m.NewIntVar(0, 100, "a")
	b := m.NewIntVar(0, 100, "b")
	c := m.NewIntVar(0, 100, "c")

	if err := m.AddDifferenceConstraint(a, b, 5, lits.TrueLit); err != nil {
		t.Fatalf("AddDifferenceConstraint(a,b,5) failed: %v", err)
	}
	if err := m.AddDifferenceConstraint(b, c, -2, lits.TrueLit); err != nil {
		t.Fatalf("AddDifferenceConstraint(b,c,-2) failed: %v", err)
	}

	err := m.AddDifferenceConstraint(c, a, -10, lits.TrueLit)
	if err == nil {
		if status := m.Solve(); status != Unsat {
			t.Fatalf("Solve() = %v, want Unsat", status)
		}
		return
	}
	if _, ok := err.(*domain.Contradiction); !ok {
		t.Fatalf("AddDifferenceConstraint(c,a,-10) returned %T, want *domain.Contradiction", err)
	}
}

// Scenario 6: optimisation enumeration. x in [1,9], y in [2,8],
// enforce x != y (split into two presence-gated difference edges on a
// fresh Boolean), maximise(x): the improvement callback must see a
// non-decreasing sequence of x values ending at 9.
func TestModel_MaximiseEnumeratesNonDecreasing(t *testing.T) {
	m := newModel()
	x := m.NewIntVar(1, 9, "x")
	y := m.NewIntVar(2, 8, "y")
	b := m.NewBoolVar("b")

	// y - x <= -1 (x > y) while b holds; x - y <= -1 (x < y) while b
	// does not: together these forbid x == y without ever comparing
	// the two variables' values for equality directly.
	if err := m.AddDifferenceConstraint(x, y, -1, b); err != nil {
		t.Fatalf("AddDifferenceConstraint(x,y,-1,b) failed: %v", err)
	}
	if err := m.AddDifferenceConstraint(y, x, -1, b.Negation()); err != nil {
		t.Fatalf("AddDifferenceConstraint(y,x,-1,!b) failed: %v", err)
	}

	var seq []int32
	found, best, err := m.MaximiseWithCallback(x, func(v int32) {
		seq = append(seq, v)
	})
	if err != nil {
		t.Fatalf("MaximiseWithCallback failed: %v", err)
	}
	if !found {
		t.Fatalf("MaximiseWithCallback found no solution")
	}
	if best != 9 {
		t.Fatalf("best = %d, want 9", best)
	}
	if len(seq) == 0 {
		t.Fatalf("callback was never invoked")
	}
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] {
			t.Errorf("sequence %v is not non-decreasing at index %d", seq, i)
		}
	}
	if seq[len(seq)-1] != 9 {
		t.Errorf("last improving value = %d, want 9", seq[len(seq)-1])
	}
}
