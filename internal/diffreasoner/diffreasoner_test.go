package diffreasoner

import (
	"testing"

	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
)

// newTestReasoner builds a Reasoner after every variable the test needs
// already exists: New itself gives every pre-existing variable (d's
// ZeroVar included) a heap slot, so no further NewVar calls are needed
// here.
func newTestReasoner(d *domain.Store) *Reasoner {
	return New(1, d)
}

func TestReasoner_PropagatesAlongEdge(t *testing.T) {
	d := domain.NewStore()
	x := d.NewVar(0, 10)
	y := d.NewVar(0, 10)
	r := newTestReasoner(d)

	// y - x <= 3, tighten x's upper bound to 5: y's upper bound must
	// follow down to 8.
	if err := r.AddEdge(x, y, 3, lits.TrueLit); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	if _, err := d.Set(lits.Leq(x, 5), lits.DecisionCause()); err != nil {
		t.Fatalf("Set(x<=5) failed: %v", err)
	}
	if err := r.Propagate(); err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	if ub := d.UBOf(y); ub != 8 {
		t.Errorf("UB(y) = %d, want 8", ub)
	}
}

func TestReasoner_NegativeCycleForcesOptionalNodeAbsent(t *testing.T) {
	d := domain.NewStore()
	p := d.NewVar(0, 1)
	presence := lits.Geq(p, 1)

	x := d.NewOptionalVar(0, 10, presence)
	y := d.NewOptionalVar(0, 10, presence)
	r := newTestReasoner(d)

	// y - x <= -1 and x - y <= -1 together form a negative cycle
	// (sum of weights = -2 < 0), which is only resolvable by making
	// the (shared-presence) nodes absent. AddEdge sweeps immediately, so
	// the second call already detects the cycle against the nodes'
	// initial bounds without any further Set/Propagate needed.
	if err := r.AddEdge(x, y, -1, lits.TrueLit); err != nil {
		t.Fatalf("AddEdge(x, y) failed: %v", err)
	}
	if err := r.AddEdge(y, x, -1, lits.TrueLit); err != nil {
		t.Fatalf("AddEdge(y, x) failed: %v", err)
	}

	if !d.Entails(presence.Negation()) {
		t.Errorf("presence should have been inferred false once the negative cycle was posted")
	}
}
