package domain

import (
	"testing"

	"github.com/rhartert/halite/internal/lits"
)

func TestStore_Value(t *testing.T) {
	s := NewStore()
	x := s.NewVar(0, 10)

	if got := s.Value(lits.Leq(x, 5)); got != Unknown {
		t.Fatalf("Value(x<=5) = %v, want Unknown", got)
	}

	if _, err := s.Set(lits.Leq(x, 3), lits.DecisionCause()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := s.Value(lits.Leq(x, 5)); got != True {
		t.Errorf("Value(x<=5) after tightening to x<=3 = %v, want True", got)
	}
	if got := s.Value(lits.Geq(x, 4)); got != False {
		t.Errorf("Value(x>=4) after tightening to x<=3 = %v, want False", got)
	}
	if got := s.Value(lits.Leq(x, 1)); got != Unknown {
		t.Errorf("Value(x<=1) = %v, want Unknown", got)
	}
}

func TestLBool_Opposite(t *testing.T) {
	if True.Opposite() != False {
		t.Errorf("True.Opposite() != False")
	}
	if False.Opposite() != True {
		t.Errorf("False.Opposite() != True")
	}
	if Unknown.Opposite() != Unknown {
		t.Errorf("Unknown.Opposite() != Unknown")
	}
}
