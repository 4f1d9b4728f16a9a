package clauses

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
)

// Watcher is implemented by the reasoner that owns an Arena's watch
// lists (the SAT reasoner). Clause methods call back into it so that
// the two-watch invariant is maintained the moment a watch literal
// changes, exactly as the teacher's Clause.Propagate calls
// s.Watch/s.Unwatch directly on *sat.Solver.
type Watcher interface {
	Watch(id ID, at lits.Lit, guard lits.Lit)
}

// Build constructs a new, possibly-simplified clause at ROOT: constant
// folding (drop false literals, detect a true/tautological clause),
// duplicate removal, and the three degenerate cases from spec.md
// section 8 (empty -> unsat, singleton -> unit, tautology -> ignored).
//
// It returns (id, ok): ok is false if the clause is unconditionally
// unsatisfiable (the empty-clause case); id is -1 if the clause needed
// no arena slot (it was a tautology or was turned into a direct unit
// assignment).
func Build(arena *Arena, w Watcher, d *domain.Store, literals []lits.Lit, cause lits.Cause) (ID, bool, error) {
	tmp := append([]lits.Lit(nil), literals...)
	size := len(tmp)

	seen := map[lits.Lit]struct{}{}
	for i := size - 1; i >= 0; i-- {
		if _, ok := seen[tmp[i].Negation()]; ok {
			return -1, true, nil // tautological: l and !l both present.
		}
		if _, ok := seen[tmp[i]]; ok {
			size--
			tmp[i], tmp[size] = tmp[size], tmp[i]
			continue
		}
		seen[tmp[i]] = struct{}{}

		switch d.Value(tmp[i]) {
		case domain.True:
			return -1, true, nil // clause is already satisfied.
		case domain.False:
			size--
			tmp[i], tmp[size] = tmp[size], tmp[i]
		}
	}
	tmp = tmp[:size]

	switch size {
	case 0:
		return -1, false, nil // empty clause: unsat at ROOT.
	case 1:
		_, err := d.Set(tmp[0], cause)
		return -1, err == nil, err
	default:
		id := arena.Alloc(tmp, false)
		c := arena.Get(id)
		w.Watch(id, c.Literals[0].Negation(), c.Literals[1])
		w.Watch(id, c.Literals[1].Negation(), c.Literals[0])
		return id, true, nil
	}
}

// BuildLearnt constructs a learnt clause without simplification (the
// caller, conflict analysis, already guarantees minimality) and moves
// the literal from the highest decision level into position 1 so that
// the second watch is the most-recently-falsified one. literals must
// have at least two elements; a unit clause produced by conflict
// analysis should be asserted directly via domain.Store.Set instead of
// going through the arena.
func BuildLearnt(arena *Arena, w Watcher, d *domain.Store, literals []lits.Lit) ID {
	if len(literals) < 2 {
		panic("clauses: BuildLearnt requires at least two literals")
	}

	id := arena.Alloc(literals, true)
	c := arena.Get(id)

	maxLevel := -1
	wl := -1
	for i := 1; i < len(c.Literals); i++ {
		// A learnt literal is false: its level is that of the opposite bound.
		if lvl := int(levelOf(d, c.Literals[i].Negation())); lvl > maxLevel {
			maxLevel = lvl
			wl = i
		}
	}
	if wl >= 0 {
		c.Literals[wl], c.Literals[1] = c.Literals[1], c.Literals[wl]
	}

	w.Watch(id, c.Literals[0].Negation(), c.Literals[1])
	w.Watch(id, c.Literals[1].Negation(), c.Literals[0])
	return id
}

func levelOf(d *domain.Store, l lits.Lit) uint32 {
	return uint32(d.LevelOfReason(l.SV))
}

// Simplify drops root-level-falsified literals and reports true if c is
// now satisfied at ROOT (in which case the caller should remove it).
func Simplify(d *domain.Store, c *Clause) bool {
	k := 0
	for _, l := range c.Literals {
		switch d.Value(l) {
		case domain.True:
			return true
		case domain.False:
			// drop
		default:
			c.Literals[k] = l
			k++
		}
	}
	c.Literals = c.Literals[:k]
	return false
}

// Propagate is called with l, the literal that has just become true (so
// that l.Negation(), one of c's watched literals, has just become
// false); it maintains the two-watch invariant and returns false with
// the conflict explanation already implied by the (now all-false)
// clause if c is falsified.
func Propagate(arena *Arena, w Watcher, d *domain.Store, id ID, c *Clause, l lits.Lit) (bool, error) {
	opp := l.Negation()
	if c.Literals[0] == opp {
		c.Literals[0], c.Literals[1] = c.Literals[1], c.Literals[0]
	}

	if d.Value(c.Literals[0]) == domain.True {
		w.Watch(id, l, c.Literals[0])
		return true, nil
	}

	if c.prevPos >= len(c.Literals) {
		c.prevPos = 2
	}
	for i := c.prevPos; i < len(c.Literals); i++ {
		if d.Value(c.Literals[i]) != domain.False {
			c.prevPos = i
			c.Literals[1], c.Literals[i] = c.Literals[i], opp
			w.Watch(id, c.Literals[1].Negation(), c.Literals[0])
			return true, nil
		}
	}
	for i := 2; i < c.prevPos; i++ {
		if d.Value(c.Literals[i]) != domain.False {
			c.prevPos = i
			c.Literals[1], c.Literals[i] = c.Literals[i], opp
			w.Watch(id, c.Literals[1].Negation(), c.Literals[0])
			return true, nil
		}
	}

	// Every other literal is false: either literals[0] is too, in which
	// case the clause itself is the conflict (caller uses
	// ExplainConflict), or it must now be forced true.
	w.Watch(id, l, c.Literals[0])
	if d.Value(c.Literals[0]) == domain.False {
		return false, nil
	}
	_, err := d.Set(c.Literals[0], clauseCause(id))
	return err == nil, err
}

// clauseCause is overridden by the satreasoner package via SetCausePacker
// so that Propagate can stamp events with a cause that encodes both the
// reasoner id the clauses package was registered under and the clause
// id, without this package needing to know its own reasoner id.
var clauseCause = func(id ID) lits.Cause { return lits.Cause(id) }

// SetCausePacker installs the function used to turn a clause id into a
// lits.Cause; called once by the owning satreasoner at construction.
func SetCausePacker(f func(ID) lits.Cause) {
	clauseCause = f
}

// ExplainConflict appends the negation of every literal in c to out: if
// c is currently falsified, this is exactly the set of literals whose
// conjunction is unsatisfiable.
func ExplainConflict(c *Clause, out *[]lits.Lit) {
	for _, l := range c.Literals {
		*out = append(*out, l.Negation())
	}
}

// ExplainAssign appends the negation of every literal but the first
// (the asserted one) to out.
func ExplainAssign(c *Clause, out *[]lits.Lit) {
	for _, l := range c.Literals[1:] {
		*out = append(*out, l.Negation())
	}
}
