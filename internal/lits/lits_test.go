package lits

import (
	"sort"
	"testing"
)

func TestLit_Negation(t *testing.T) {
	v := Var(1)

	tests := []struct {
		name string
		l    Lit
		want Lit
	}{
		{"leq", Leq(v, 3), Gt(v, 3)},
		{"geq", Geq(v, 3), Lt(v, 3)},
		{"true", TrueLit, FalseLit},
		{"false", FalseLit, TrueLit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.l.Negation(); got != tc.want {
				t.Errorf("Negation() = %v, want %v", got, tc.want)
			}
			// Negation must be involutive.
			if got := tc.l.Negation().Negation(); got != tc.l {
				t.Errorf("Negation().Negation() = %v, want %v", got, tc.l)
			}
		})
	}
}

func TestLit_Entails(t *testing.T) {
	v := Var(1)

	if !Leq(v, 3).Entails(Leq(v, 5)) {
		t.Errorf("v<=3 should entail v<=5")
	}
	if Leq(v, 5).Entails(Leq(v, 3)) {
		t.Errorf("v<=5 should not entail v<=3")
	}
	if Leq(v, 3).Entails(Geq(v, 0)) {
		t.Errorf("literals on different signed variables must not entail each other")
	}
	if !Leq(v, 3).Entails(Leq(v, 3)) {
		t.Errorf("a literal must entail itself")
	}
}

func TestTrueFalse_AlwaysHold(t *testing.T) {
	// TrueLit is `-ZERO <= 0`; since ZERO is pinned to 0, this always
	// holds. FalseLit is its negation, `ZERO <= -1`, which never holds.
	if TrueLit.SV.Var() != ZeroVar {
		t.Fatalf("TrueLit must be defined over ZeroVar")
	}
	if TrueLit.Negation() != FalseLit {
		t.Errorf("FalseLit must be the negation of TrueLit")
	}
}

func TestLess_GroupsByVariableThenRelation(t *testing.T) {
	x, y := Var(1), Var(2)
	lits := []Lit{
		Leq(y, 4),
		Geq(x, 1),
		Leq(x, 3),
		Leq(x, 4),
		Leq(x, 6),
		Geq(x, 2),
	}
	want := []Lit{
		Leq(x, 3),
		Leq(x, 4),
		Leq(x, 6),
		Geq(x, 2),
		Geq(x, 1),
		Leq(y, 4),
	}

	sort.Slice(lits, func(i, j int) bool { return Less(lits[i], lits[j]) })

	for i := range want {
		if lits[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v (full: %v)", i, lits[i], want[i], lits)
		}
	}
}

func TestCause_PackUnpack(t *testing.T) {
	c := NewCause(ReasonerID(7), 123456)
	if c.ReasonerID() != 7 {
		t.Errorf("ReasonerID() = %d, want 7", c.ReasonerID())
	}
	if c.Payload() != 123456 {
		t.Errorf("Payload() = %d, want 123456", c.Payload())
	}
}

func TestCause_Reserved(t *testing.T) {
	if !DecisionCause().IsDecision() {
		t.Errorf("DecisionCause() should be IsDecision")
	}
	if !AssumptionCause().IsAssumption() {
		t.Errorf("AssumptionCause() should be IsAssumption")
	}

	c := ImplicationCause(42)
	edge, ok := c.ImplicationEdge()
	if !ok || edge != 42 {
		t.Errorf("ImplicationEdge() = (%d, %v), want (42, true)", edge, ok)
	}

	c2 := EmptyDomainCause(7)
	origin, ok := c2.EmptyDomainOrigin()
	if !ok || origin != 7 {
		t.Errorf("EmptyDomainOrigin() = (%d, %v), want (7, true)", origin, ok)
	}
}
