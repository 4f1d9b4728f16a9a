package intern

import (
	"testing"

	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/satreasoner"
	"github.com/rhartert/halite/internal/scopes"
)

func newTable(d *domain.Store) (*Table, *satreasoner.Reasoner) {
	sat := satreasoner.New(1, d, satreasoner.DefaultOptions)
	sc := scopes.New(d, sat)
	return New(d, sat, sc), sat
}

func TestReify_SingleLiteralIsItself(t *testing.T) {
	d := domain.NewStore()
	tbl, _ := newTable(d)

	l := lits.Geq(d.NewVar(0, 1), 1)
	got, err := tbl.Reify(Atom(l))
	if err != nil {
		t.Fatalf("Reify failed: %v", err)
	}
	if got != l {
		t.Errorf("Reify(Atom(l)) = %v, want %v", got, l)
	}
}

func TestReify_CachesEquivalentExpressions(t *testing.T) {
	d := domain.NewStore()
	tbl, _ := newTable(d)

	a := lits.Geq(d.NewVar(0, 1), 1)
	b := lits.Geq(d.NewVar(0, 1), 1)

	l1, err := tbl.Reify(And(Atom(a), Atom(b)))
	if err != nil {
		t.Fatalf("Reify failed: %v", err)
	}
	// Same conjunction, children swapped: normalization must canonicalize
	// to the same cached literal.
	l2, err := tbl.Reify(And(Atom(b), Atom(a)))
	if err != nil {
		t.Fatalf("Reify failed: %v", err)
	}
	if l1 != l2 {
		t.Errorf("Reify(a&b) = %v, Reify(b&a) = %v, want equal", l1, l2)
	}
}

func TestReify_ConjunctionPropagatesThroughSAT(t *testing.T) {
	d := domain.NewStore()
	tbl, sat := newTable(d)

	a := lits.Geq(d.NewVar(0, 1), 1)
	b := lits.Geq(d.NewVar(0, 1), 1)

	l, err := tbl.Reify(And(Atom(a), Atom(b)))
	if err != nil {
		t.Fatalf("Reify failed: %v", err)
	}

	if _, err := d.Set(a, lits.DecisionCause()); err != nil {
		t.Fatalf("Set(a) failed: %v", err)
	}
	if _, err := d.Set(b, lits.DecisionCause()); err != nil {
		t.Fatalf("Set(b) failed: %v", err)
	}
	if err := sat.Propagate(); err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	if !d.Entails(l) {
		t.Errorf("l should be entailed once both a and b are true")
	}
}

func TestNormalize_DeMorganPushesNegationToLeaves(t *testing.T) {
	a := Atom(lits.Geq(lits.ZeroVar+1, 1))
	b := Atom(lits.Geq(lits.ZeroVar+2, 1))

	n := normalize(Not(And(a, b)))
	if n.kind != kindOr {
		t.Fatalf("normalize(!(a&b)) kind = %v, want Or", n.kind)
	}
	if len(n.children) != 2 {
		t.Fatalf("normalize(!(a&b)) has %d children, want 2", len(n.children))
	}
}

func TestEnforce_PostsBindingClause(t *testing.T) {
	d := domain.NewStore()
	tbl, sat := newTable(d)

	a := lits.Geq(d.NewVar(0, 1), 1)
	if err := tbl.Enforce(Atom(a)); err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if err := sat.Propagate(); err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}
	if !d.Entails(a) {
		t.Errorf("enforcing an always-present atom should make it immediately entailed")
	}
}
