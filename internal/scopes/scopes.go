// Package scopes implements the conjunctive-scope table: canonicalizing
// a set of presence literals to a single literal that is entailed true
// exactly when every literal in the set is, plus the tautology-of-scope
// helper used to anchor scoped constraints.
package scopes

import (
	"sort"
	"strings"

	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/satreasoner"
)

// Table canonicalizes sets of presence literals to scope literals,
// reusing a scope literal whenever the same set is requested again.
// Grounded on the teacher's clause-posting idiom (a scope is, in the
// general case, just another clause posted through the SAT reasoner)
// plus the static implication graph already used for presence links.
type Table struct {
	d   *domain.Store
	sat *satreasoner.Reasoner

	byKey       map[string]lits.Lit
	tautologies map[lits.Lit]lits.Var
}

// New returns an empty Table backed by d and sat.
func New(d *domain.Store, sat *satreasoner.Reasoner) *Table {
	return &Table{
		d:           d,
		sat:         sat,
		byKey:       map[string]lits.Lit{},
		tautologies: map[lits.Lit]lits.Var{},
	}
}

// ScopeOf returns the literal s such that s <-> (literals[0] AND ...
// AND literals[n-1]), applying the table's creation rules in order:
// empty set -> TrueLit, singleton -> the literal itself, a
// self-contradictory pair -> FalseLit, otherwise a fresh scope literal
// is allocated (or an existing one for the same canonical set reused).
func (t *Table) ScopeOf(literals []lits.Lit) (lits.Lit, error) {
	canon := t.canonicalize(literals)
	switch len(canon) {
	case 0:
		return lits.TrueLit, nil
	case 1:
		return canon[0], nil
	}

	if len(canon) == 2 && canon[0].Var() == canon[1].Var() {
		// Same variable, necessarily opposite bounds after dedup: the
		// conjunction can never hold.
		return lits.FalseLit, nil
	}

	key := key(canon)
	if s, ok := t.byKey[key]; ok {
		return s, nil
	}

	sVar := t.d.NewVar(0, 1)
	sTrue := lits.Geq(sVar, 1)

	for _, v := range canon {
		t.d.AddImplication(sTrue, v)
	}

	clause := make([]lits.Lit, 0, len(canon)+1)
	clause = append(clause, sTrue)
	for _, v := range canon {
		clause = append(clause, v.Negation())
	}
	if err := t.sat.AddClause(clause); err != nil {
		return lits.Lit{}, err
	}

	t.byKey[key] = sTrue
	return sTrue, nil
}

// Tautology lazily creates (and caches) a variable with domain [1,1]
// and presence scope: binding an enforced expression to it states that
// the expression holds whenever scope does.
func (t *Table) Tautology(scope lits.Lit) lits.Var {
	if v, ok := t.tautologies[scope]; ok {
		return v
	}
	v := t.d.NewOptionalVar(1, 1, scope)
	t.tautologies[scope] = v
	return v
}

// canonicalize sorts and dedups literals, drops any already entailed
// true (they contribute nothing to the conjunction), and short-circuits
// to a single FalseLit-carrying slice if any is already entailed false.
func (t *Table) canonicalize(literals []lits.Lit) []lits.Lit {
	seen := map[lits.Lit]struct{}{}
	var out []lits.Lit
	for _, l := range literals {
		if t.d.Entails(l) {
			continue
		}
		if t.d.Entails(l.Negation()) {
			return []lits.Lit{l, l.Negation()} // forces the len==2-same-var FALSE case below.
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return lits.Less(out[i], out[j]) })
	return out
}

// key builds a canonical string key for an already-sorted, deduped
// literal slice.
func key(literals []lits.Lit) string {
	var b strings.Builder
	for i, l := range literals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.String())
	}
	return b.String()
}
