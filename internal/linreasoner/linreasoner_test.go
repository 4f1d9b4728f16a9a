package linreasoner

import (
	"testing"

	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
)

func TestReasoner_TightensRoomTerm(t *testing.T) {
	d := domain.NewStore()
	x := d.NewVar(0, 10)
	y := d.NewVar(0, 10)
	r := New(1, d)
	if _, err := r.AddConstraint([]Term{{V: x, Coef: 1}, {V: y, Coef: 1}}, 10); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}

	if _, err := d.Set(lits.Geq(x, 7), lits.DecisionCause()); err != nil {
		t.Fatalf("Set(x>=7) failed: %v", err)
	}
	if err := r.Propagate(); err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	if ub := d.UBOf(y); ub != 3 {
		t.Errorf("UB(y) = %d, want 3", ub)
	}
}

func TestReasoner_ConflictWhenMinimumExceedsBound(t *testing.T) {
	d := domain.NewStore()
	x := d.NewVar(0, 10)
	y := d.NewVar(0, 10)
	r := New(1, d)
	if _, err := r.AddConstraint([]Term{{V: x, Coef: 1}, {V: y, Coef: 1}}, 10); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}

	if _, err := d.Set(lits.Geq(x, 8), lits.DecisionCause()); err != nil {
		t.Fatalf("Set(x>=8) failed: %v", err)
	}
	if _, err := d.Set(lits.Geq(y, 5), lits.DecisionCause()); err != nil {
		t.Fatalf("Set(y>=5) failed: %v", err)
	}

	err := r.Propagate()
	contradiction, ok := err.(*domain.Contradiction)
	if !ok {
		t.Fatalf("expected *domain.Contradiction, got %T: %v", err, err)
	}
	if len(contradiction.Explanation) != 2 {
		t.Errorf("explanation has %d literals, want 2: %v", len(contradiction.Explanation), contradiction.Explanation)
	}
}

func TestReasoner_OrZeroTermIgnoredWhenAbsent(t *testing.T) {
	d := domain.NewStore()
	p := d.NewVar(0, 1)
	presence := lits.Geq(p, 1)
	x := d.NewVar(0, 10)
	y := d.NewOptionalVar(0, 10, presence)
	r := New(1, d)
	// AddConstraint tightens immediately: x<=5 already holds no matter
	// what y's presence resolves to, since y's lower bound is 0 either
	// way.
	if _, err := r.AddConstraint([]Term{{V: x, Coef: 1}, {V: y, Coef: 1}}, 5); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if ub := d.UBOf(x); ub != 5 {
		t.Fatalf("UB(x) = %d, want 5 immediately after AddConstraint", ub)
	}

	if _, err := d.Set(presence.Negation(), lits.DecisionCause()); err != nil {
		t.Fatalf("Set(!present(y)) failed: %v", err)
	}
	if err := r.Propagate(); err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	if ub := d.UBOf(x); ub != 5 {
		t.Errorf("UB(x) = %d, want 5 (y's absence should still leave x's bound at 5)", ub)
	}
}
