// Package conflict implements 1-UIP conflict analysis generalized
// across reasoner boundaries: it walks the trail resolving literals via
// domain.Store.ImplyingLiterals, which dispatches to whichever
// reasoner (SAT, difference logic, linear) produced each literal's
// cause, so a single analysis routine serves every theory at once.
package conflict

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

// Analyzer holds the scratch state reused across calls to Analyze, the
// same role the teacher's Solver.tmpLearnts/seenVar fields play.
type Analyzer struct {
	d    *domain.Store
	seen map[lits.Var]struct{}
}

// New returns an Analyzer bound to d.
func New(d *domain.Store) *Analyzer {
	return &Analyzer{d: d, seen: map[lits.Var]struct{}{}}
}

// Analyze resolves the contradiction raised at the current decision
// level into an asserting clause: the first literal is the 1-UIP, the
// rest are its negated antecedents. It also returns the backjump level
// (the second-highest level among the antecedents, or Root if there are
// none).
//
// Any resolved literal on a variable whose presence is not entailed
// true has its negated presence literal appended to the clause: a
// learned clause must hold even when one of its participants turns out
// to be absent, since "absent" trivially satisfies every literal about
// that variable (the Open Question resolution referenced in the design
// notes).
func (a *Analyzer) Analyze(conflict *domain.Contradiction) ([]lits.Lit, trail.Level) {
	for v := range a.seen {
		delete(a.seen, v)
	}

	level := a.d.CurrentLevel()
	pending := conflict.Explanation

	learnt := []lits.Lit{{}} // slot 0 reserved for the UIP literal.
	backjump := trail.Root
	nImplicationPoints := 0

	reader := a.d.Trail()
	nextIdx := uint32(reader.Len())

	var uip lits.Lit
	for {
		for _, q := range pending {
			v := q.Var()
			if _, ok := a.seen[v]; ok {
				continue
			}
			a.seen[v] = struct{}{}

			if a.levelOf(q) == level {
				nImplicationPoints++
				continue
			}

			learnt = append(learnt, q.Negation())
			a.guardPresence(&learnt, v)
			if lvl := a.levelOf(q); lvl > backjump {
				backjump = lvl
			}
		}

		var ev trail.Event
		for {
			if nextIdx == 0 {
				panic("conflict: ran out of trail while resolving a conflict")
			}
			nextIdx--
			ev = reader.Event(nextIdx)
			if _, ok := a.seen[ev.Affected.Var()]; ok {
				break
			}
		}

		uip = lits.Lit{SV: ev.Affected, Val: ev.NewUB}
		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}

		pending = pending[:0]
		if ev.Cause.IsDecision() || ev.Cause.IsAssumption() {
			continue
		}
		a.d.ImplyingLiterals(uip, &pending)
	}

	learnt[0] = uip.Negation()
	a.guardPresence(&learnt, uip.Var())

	return learnt, backjump
}

func (a *Analyzer) levelOf(l lits.Lit) trail.Level {
	return a.d.LevelOfReason(l.SV)
}

// guardPresence appends ¬present(v) to learnt if v's presence is not
// already entailed true and is not already a literal of the clause.
func (a *Analyzer) guardPresence(learnt *[]lits.Lit, v lits.Var) {
	presence := a.d.Presence(v)
	if presence == lits.TrueLit {
		return // always-present: no guard needed.
	}
	if a.d.IsPresentTrue(v) {
		return
	}
	guard := presence.Negation()
	for _, l := range *learnt {
		if l == guard {
			return
		}
	}
	*learnt = append(*learnt, guard)
}
