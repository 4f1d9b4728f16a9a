// Package linreasoner implements the linear / pseudo-Boolean theory:
// propagation of `Σ fᵢ·xᵢ ≤ U` constraints where each term is or-zero
// (contributes 0 while its variable is known absent), grounded on the
// slack/room bookkeeping described for the project's linear reasoner
// and shaped like the teacher's clause Propagate (wake on a bound
// change, recompute, tighten or fail).
package linreasoner

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

// Term is one `fᵢ·xᵢ` summand of a constraint.
type Term struct {
	V    lits.Var
	Coef int32
}

// constraint is `Σ terms[i].Coef*terms[i].V ≤ Bound`.
type constraint struct {
	terms []Term
	bound int32
}

// Reasoner is the linear/pseudo-Boolean theory: it hosts any number of
// independent sum constraints, all sharing the same propagation and
// explanation machinery.
type Reasoner struct {
	id     lits.ReasonerID
	d      *domain.Store
	cons   []constraint
	cursor *trail.Cursor
}

// New registers a fresh Reasoner with d under id.
func New(id lits.ReasonerID, d *domain.Store) *Reasoner {
	r := &Reasoner{id: id, d: d, cursor: d.Reader()}
	d.RegisterReasoner(id, r)
	return r
}

func (r *Reasoner) ID() lits.ReasonerID { return r.id }

// AddConstraint posts `Σ terms ≤ bound` and returns its index, primarily
// useful for tests that want to name a specific constraint. Must be
// called at ROOT. The terms' bounds at creation time never produce a
// trail event of their own, so AddConstraint tightens the new
// constraint immediately instead of waiting for Propagate to see a
// change that may never come.
func (r *Reasoner) AddConstraint(terms []Term, bound int32) (int, error) {
	idx := len(r.cons)
	cp := make([]Term, len(terms))
	copy(cp, terms)
	r.cons = append(r.cons, constraint{terms: cp, bound: bound})
	if err := r.propagateOne(idx); err != nil {
		return idx, err
	}
	return idx, nil
}

// Backtrack is a no-op: every constraint is re-derived from the current
// domain bounds on each Propagate call, so there is no incremental
// state to unwind.
func (r *Reasoner) Backtrack(level trail.Level) {}

// Propagate drains the trail and, if anything changed, re-tightens
// every constraint from scratch. This forgoes the per-term watch lists
// the propagation rule's wake condition suggests (watch lower bounds of
// positive-coefficient terms, upper bounds of negative-coefficient
// ones) in favor of a full rescan: with the modest constraint counts
// this reasoner is expected to carry, the rescan is simpler to reason
// about by hand and stays just as sound.
func (r *Reasoner) Propagate() error {
	changed := false
	for {
		if _, ok := r.cursor.Next(r.d.Trail()); !ok {
			break
		}
		changed = true
	}
	if !changed {
		return nil
	}

	for ci := range r.cons {
		if err := r.propagateOne(ci); err != nil {
			return err
		}
	}
	return nil
}

// termRange returns (lo, hi), the current possible range of a term's
// contribution to the sum, and the literal that currently justifies
// lo (the antecedent to cite if lo is what drives a conflict or a
// tightening elsewhere in the same constraint).
func (r *Reasoner) termRange(t Term) (lo, hi int32, loLit lits.Lit) {
	v := t.V
	if r.d.IsPresentFalse(v) {
		return 0, 0, r.d.Presence(v).Negation()
	}
	lb, ub := r.d.Bounds(v)
	if t.Coef >= 0 {
		return t.Coef * lb, t.Coef * ub, lits.Geq(v, lb)
	}
	return t.Coef * ub, t.Coef * lb, lits.Leq(v, ub)
}

func (r *Reasoner) propagateOne(ci int) error {
	c := r.cons[ci]

	los := make([]int32, len(c.terms))
	his := make([]int32, len(c.terms))
	loLits := make([]lits.Lit, len(c.terms))
	var sumLo int64
	for i, t := range c.terms {
		lo, hi, loLit := r.termRange(t)
		los[i], his[i], loLits[i] = lo, hi, loLit
		sumLo += int64(lo)
	}

	slack := int64(c.bound) - sumLo
	if slack < 0 {
		return domain.NewContradiction(loLits...)
	}

	for i, t := range c.terms {
		if r.d.IsPresentFalse(t.V) {
			continue
		}
		room := int64(his[i]) - int64(los[i])
		if room <= slack {
			continue // already tight enough.
		}

		allowedHi := int64(los[i]) + slack
		var l lits.Lit
		if t.Coef > 0 {
			newUB := floorDiv(allowedHi, int64(t.Coef))
			l = lits.Leq(t.V, int32(newUB))
		} else if t.Coef < 0 {
			newLB := -floorDiv(allowedHi, -int64(t.Coef))
			l = lits.Geq(t.V, int32(newLB))
		} else {
			continue // a zero-coefficient term never needs tightening.
		}

		cause := lits.NewCause(r.id, packPayload(ci, i))
		if _, err := r.d.Set(l, cause); err != nil {
			return err
		}
	}

	return nil
}

// Explain implements domain.Explainer: l was forced by every other
// term in the constraint sitting at its current minimum contribution,
// recomputed from the current domain bounds (valid because
// explanations are only ever requested against the trail state at
// conflict time, before any backtracking has moved the bounds on).
func (r *Reasoner) Explain(l lits.Lit, payload uint32, out *[]lits.Lit) {
	ci, skip := unpackPayload(payload)
	c := r.cons[ci]
	for i, t := range c.terms {
		if i == skip {
			continue
		}
		_, _, loLit := r.termRange(t)
		*out = append(*out, loLit)
	}
}

func packPayload(constraintIdx, termIdx int) uint32 {
	return uint32(constraintIdx)<<14 | uint32(termIdx)
}

func unpackPayload(payload uint32) (constraintIdx, termIdx int) {
	return int(payload >> 14), int(payload & (1<<14 - 1))
}

// floorDiv returns a/b rounded toward negative infinity (b > 0).
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
