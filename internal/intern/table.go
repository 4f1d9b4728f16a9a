package intern

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/satreasoner"
	"github.com/rhartert/halite/internal/scopes"
)

// Table interns compound expressions into literals, canonicalising
// expr -> literal bindings that persist for the table's lifetime
// (spec.md section 3 invariant). Grounded on the teacher's
// Boolean-combinator clause posting, generalized to optional variables
// via internal/scopes for the validity-scope computation rule 4.3
// describes.
type Table struct {
	d     *domain.Store
	sat   *satreasoner.Reasoner
	scope *scopes.Table

	byKey map[string]lits.Lit
}

// New returns an empty Table.
func New(d *domain.Store, sat *satreasoner.Reasoner, scope *scopes.Table) *Table {
	return &Table{d: d, sat: sat, scope: scope, byKey: map[string]lits.Lit{}}
}

// Reify returns a literal l such that present(l) <-> (every variable in
// expr is present) and, whenever present(l), l <-> expr. Repeated calls
// with an equivalent (post-normalization) expression return the same
// literal.
func (t *Table) Reify(expr Expr) (lits.Lit, error) {
	return t.reifyNormalized(normalize(expr))
}

// reifyNormalized is Reify's body, operating on an already-normalized
// expression so children of a compound expr (also normalized by
// construction) skip re-normalizing.
func (t *Table) reifyNormalized(n Expr) (lits.Lit, error) {
	if n.kind == kindLit {
		return n.lit, nil
	}

	key := n.key()
	if l, ok := t.byKey[key]; ok {
		return l, nil
	}

	childLits := make([]lits.Lit, len(n.children))
	for i, c := range n.children {
		l, err := t.reifyNormalized(c)
		if err != nil {
			return lits.Lit{}, err
		}
		childLits[i] = l
	}

	var presenceLits []lits.Lit
	for _, v := range n.vars() {
		presenceLits = append(presenceLits, t.d.Presence(v))
	}
	scope, err := t.scope.ScopeOf(presenceLits)
	if err != nil {
		return lits.Lit{}, err
	}

	v := t.d.NewOptionalVar(0, 1, scope)
	l := lits.Geq(v, 1)

	if err := t.postBiconditional(n.kind, childLits, l); err != nil {
		return lits.Lit{}, err
	}

	t.byKey[key] = l
	return l, nil
}

// postBiconditional asserts l <-> (AND/OR of childLits) by posting both
// implication directions as plain clauses through the SAT reasoner,
// same idiom internal/scopes uses for its own scope literal.
func (t *Table) postBiconditional(k kind, childLits []lits.Lit, l lits.Lit) error {
	switch k {
	case kindAnd:
		// l -> each child: (!l or child).
		for _, c := range childLits {
			if err := t.sat.AddClause([]lits.Lit{l.Negation(), c}); err != nil {
				return err
			}
		}
		// (all children) -> l: (l or !c1 or !c2 or ...).
		clause := make([]lits.Lit, 0, len(childLits)+1)
		clause = append(clause, l)
		for _, c := range childLits {
			clause = append(clause, c.Negation())
		}
		return t.sat.AddClause(clause)

	case kindOr:
		// each child -> l: (!child or l).
		for _, c := range childLits {
			if err := t.sat.AddClause([]lits.Lit{c.Negation(), l}); err != nil {
				return err
			}
		}
		// l -> (any child): (!l or c1 or c2 or ...).
		clause := make([]lits.Lit, 0, len(childLits)+1)
		clause = append(clause, l.Negation())
		clause = append(clause, childLits...)
		return t.sat.AddClause(clause)
	}
	panic("intern: postBiconditional called on a non-compound expression")
}

// Enforce states that expr must hold whenever its variables all exist:
// bind(expr, tautology(scope(expr))) per spec.md section 4.3. Grounded
// on the scope literal already being expr's own reified presence: since
// Reify builds expr's literal with presence exactly scope(expr),
// enforcing reduces to requiring the literal be true whenever it is
// present, i.e. (!present(l) or l).
func (t *Table) Enforce(expr Expr) error {
	l, err := t.Reify(expr)
	if err != nil {
		return err
	}
	presence := t.d.Presence(l.Var())
	return t.sat.AddClause([]lits.Lit{presence.Negation(), l})
}
