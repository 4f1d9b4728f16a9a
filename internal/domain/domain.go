// Package domain implements the backtrackable constraint store: variable
// creation, interval bound tightening with optional presence, a static
// implication graph, and explanation replay over the reversible trail.
package domain

import (
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/reflist"
	"github.com/rhartert/halite/internal/trail"
)

// MaxValue/MinValue bound the representable integer domain, mirroring the
// teacher's choice of plain `int`/`int32` arithmetic without a bignum
// layer: this is a finite-domain solver, not an arbitrary-precision one.
const (
	MaxValue = int32(1<<30 - 1)
	MinValue = -MaxValue
)

// Store is the domain store: it exclusively owns variables, bound
// events, and the implication graph. Reasoners hold only cursors
// (trail.Cursor) and their own propagator indices; they never write to
// the store except by calling Set/SetLB/SetUB.
type Store struct {
	trail trail.Trail

	// Per-signed-variable current upper bound. boundVal[Pos(v)] is v's
	// upper bound; boundVal[Neg(v)] is the negation of v's lower bound.
	boundVal reflist.Store[lits.SignedVar, int32]

	// Per-signed-variable cause of the current bound, kept in lockstep
	// with boundVal (including across restores) so that explanation
	// replay can recover "why is this signed variable's bound what it
	// is right now" without re-walking the whole trail.
	causeOf reflist.Store[lits.SignedVar, lits.Cause]

	// eventIdxOf is the trail index of the event that last changed each
	// signed variable's bound, used to recover the decision level a
	// bound was set at (see LevelOfReason) without re-walking the trail.
	eventIdxOf reflist.Store[lits.SignedVar, uint32]

	// Side table for EmptyDomainCause payloads: the literal and cause
	// that, had it been applied directly, would have emptied a
	// variable's domain and triggered a presence-false inference
	// instead (see Set).
	emptyOrigins []emptyOrigin

	// Per-variable presence literal. Always-present variables carry
	// lits.TrueLit.
	presence reflist.Store[lits.Var, lits.Lit]

	// Static implication graph: from literal -> indices (into edges) of
	// the literals it directly implies. Populated only at ROOT by
	// AddImplication.
	implies map[lits.Lit][]uint32
	edges   []implicationEdge

	// reasoners registered for explanation replay, indexed by
	// lits.ReasonerID (4-bit space, so at most 16 slots).
	reasoners [16]Explainer
}

// implicationEdge is one row of the static implication graph: `from`
// implies `to`.
type implicationEdge struct {
	from lits.Lit
	to   lits.Lit
}

// NewStore returns an empty store with the reserved ZeroVar already
// allocated, pinned to the constant 0 and always present.
func NewStore() *Store {
	s := &Store{implies: map[lits.Lit][]uint32{}}
	zero := s.allocVar(0, 0, lits.TrueLit)
	if zero != lits.ZeroVar {
		panic("domain: ZeroVar must be the first allocated variable")
	}
	return s
}

func (s *Store) allocVar(lb, ub int32, presence lits.Lit) lits.Var {
	v := lits.Var(s.boundVal.Len() / 2)
	s.boundVal.Push(ub)         // Pos(v)
	s.boundVal.Push(negate(lb)) // Neg(v)
	s.causeOf.Push(lits.Cause(0))
	s.causeOf.Push(lits.Cause(0))
	s.eventIdxOf.Push(0)
	s.eventIdxOf.Push(0)
	s.presence.Push(presence)
	return v
}

// emptyOrigin records what Set was asked to do when it instead inferred
// a presence-false literal because the requested tightening would have
// emptied a present-unknown variable's domain.
type emptyOrigin struct {
	lit   lits.Lit
	cause lits.Cause
}

func negate(v int32) int32 { return -v }

// NewVar creates an always-present variable with domain [lb, ub].
func (s *Store) NewVar(lb, ub int32) lits.Var {
	return s.allocVar(lb, ub, lits.TrueLit)
}

// NewOptionalVar creates a variable whose presence is governed by the
// given literal: `present(var) == present(presence.Var()) && presence`
// when presence.Var() is itself optional (the caller is expected to
// have already composed such a conjunction via the scopes package when
// that is required).
func (s *Store) NewOptionalVar(lb, ub int32, presence lits.Lit) lits.Var {
	return s.allocVar(lb, ub, presence)
}

// NumVars returns the number of variables created so far.
func (s *Store) NumVars() int {
	return s.boundVal.Len() / 2
}

// Presence returns the presence literal of v.
func (s *Store) Presence(v lits.Var) lits.Lit {
	return s.presence.Get(v)
}

// Bounds returns the current (lb, ub) of v.
func (s *Store) Bounds(v lits.Var) (int32, int32) {
	ub := s.boundVal.Get(lits.Pos(v))
	lb := -s.boundVal.Get(lits.Neg(v))
	return lb, ub
}

// UB returns the current upper bound of the signed variable sv.
func (s *Store) UB(sv lits.SignedVar) int32 {
	return s.boundVal.Get(sv)
}

// LB returns v's current lower bound.
func (s *Store) LB(v lits.Var) int32 {
	return -s.boundVal.Get(lits.Neg(v))
}

// UBOf returns v's current upper bound.
func (s *Store) UBOf(v lits.Var) int32 {
	return s.boundVal.Get(lits.Pos(v))
}

// Entails returns true if the store's current bounds already make l
// hold.
func (s *Store) Entails(l lits.Lit) bool {
	return s.boundVal.Get(l.SV) <= l.Val
}

// IsPresentTrue returns true if present(v) is entailed.
func (s *Store) IsPresentTrue(v lits.Var) bool {
	return s.Entails(s.Presence(v))
}

// IsPresentFalse returns true if present(v) is entailed false.
func (s *Store) IsPresentFalse(v lits.Var) bool {
	return s.Entails(s.Presence(v).Negation())
}

// CurrentLevel returns the current decision level.
func (s *Store) CurrentLevel() trail.Level {
	return s.trail.CurrentLevel()
}

// Checkpoint pushes a new decision-level frame.
func (s *Store) Checkpoint() trail.Level {
	return s.trail.Checkpoint()
}

// RestoreLast undoes the most recent decision level and returns the
// distinct variables whose bounds were relaxed, so that callers (the
// search loop's brancher in particular) can reconsider them for
// decisions again.
func (s *Store) RestoreLast() []lits.Var {
	var touched []lits.Var
	seen := map[lits.Var]struct{}{}
	for _, e := range s.trail.RestoreLast() {
		s.boundVal.Set(e.Affected, e.PreviousUB)
		s.causeOf.Set(e.Affected, e.PreviousCause)
		s.eventIdxOf.Set(e.Affected, e.PreviousEventIdx)

		v := e.Affected.Var()
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			touched = append(touched, v)
		}
	}
	return touched
}

// Reason returns the cause that currently justifies sv's bound.
func (s *Store) Reason(sv lits.SignedVar) lits.Cause {
	return s.causeOf.Get(sv)
}

// LevelOfReason returns the decision level at which sv's current bound
// was established (Root if it still holds its initial allocation
// bound).
func (s *Store) LevelOfReason(sv lits.SignedVar) trail.Level {
	idx := s.eventIdxOf.Get(sv)
	if idx == 0 && (s.trail.Len() == 0 || s.trail.Event(0).Affected != sv) {
		return trail.Root // initial bound: no event ever set it.
	}
	return s.trail.LevelOf(idx)
}

// Restore undoes decision levels until the given level is reached,
// returning the distinct variables whose bounds were relaxed along the
// way.
func (s *Store) Restore(level trail.Level) []lits.Var {
	seen := map[lits.Var]struct{}{}
	var touched []lits.Var
	for s.CurrentLevel() > level {
		for _, v := range s.RestoreLast() {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				touched = append(touched, v)
			}
		}
	}
	return touched
}

// Reader returns a new trail cursor for a reasoner to consume events
// from.
func (s *Store) Reader() *trail.Cursor {
	return s.trail.Reader()
}

// Trail exposes the underlying trail, e.g. for a reasoner that needs to
// stamp an inference with the current event id (as the difference-logic
// reasoner does for its disabling timestamps).
func (s *Store) Trail() *trail.Trail {
	return &s.trail
}

// RegisterReasoner attaches an Explainer under the given reasoner id so
// that ImplyingLiterals can dispatch to it for causes it produced.
func (s *Store) RegisterReasoner(id lits.ReasonerID, e Explainer) {
	s.reasoners[id&0xF] = e
}
