// Package satreasoner implements the Boolean CDCL layer: two-watched
// literal propagation over a clause arena, registered as a reasoner.
// Branching, conflict analysis and restarts live in internal/search and
// internal/conflict, which treat this reasoner the same way they treat
// the difference-logic and linear reasoners.
package satreasoner

import (
	"fmt"
	"sort"

	"github.com/rhartert/halite/internal/clauses"
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

// watchEntry mirrors the teacher's watcher struct: a clause attached to
// a literal's watch list plus the other watched literal, used as a
// cheap guard to skip loading the clause when it is already satisfied.
type watchEntry struct {
	id    clauses.ID
	guard lits.Lit
}

// Options configures a Reasoner, mirroring the teacher's sat.Options.
type Options struct {
	ClauseDecay float64
}

var DefaultOptions = Options{
	ClauseDecay: 0.999,
}

// Reasoner is the Boolean SAT theory: it owns a clauses.Arena and the
// watch lists over it, and keeps itself in sync with the domain store
// through a trail cursor.
type Reasoner struct {
	id lits.ReasonerID
	d  *domain.Store

	arena    clauses.Arena
	watchers map[lits.Lit][]watchEntry
	cursor   *trail.Cursor

	constraints []clauses.ID
	learnts     []clauses.ID

	clauseInc   float64
	clauseDecay float64

	tmpWatchers []watchEntry
}

// New registers a fresh Reasoner with d under id and returns it.
func New(id lits.ReasonerID, d *domain.Store, opts Options) *Reasoner {
	r := &Reasoner{
		id:          id,
		d:           d,
		watchers:    map[lits.Lit][]watchEntry{},
		cursor:      d.Reader(),
		clauseInc:   1,
		clauseDecay: opts.ClauseDecay,
	}
	clauses.SetCausePacker(func(cid clauses.ID) lits.Cause {
		return lits.NewCause(id, uint32(cid))
	})
	d.RegisterReasoner(id, r)
	return r
}

func (r *Reasoner) ID() lits.ReasonerID { return r.id }

// Watch implements clauses.Watcher.
func (r *Reasoner) Watch(id clauses.ID, at lits.Lit, guard lits.Lit) {
	r.watchers[at] = append(r.watchers[at], watchEntry{id: id, guard: guard})
}

// AddClause posts a new root-level clause. It must be called while the
// domain store is at ROOT.
func (r *Reasoner) AddClause(literals []lits.Lit) error {
	if r.d.CurrentLevel() != trail.Root {
		return fmt.Errorf("satreasoner: AddClause called at non-root level")
	}
	id, ok, err := clauses.Build(&r.arena, r, r.d, literals, lits.DecisionCause())
	if err != nil {
		return err
	}
	if !ok {
		return &domain.Contradiction{Explanation: append([]lits.Lit(nil), literals...)}
	}
	if id >= 0 {
		r.constraints = append(r.constraints, id)
	}
	return nil
}

// Learn adds a clause produced by conflict analysis and immediately
// asserts its first literal (the UIP), mirroring the teacher's record.
func (r *Reasoner) Learn(literals []lits.Lit) error {
	if len(literals) == 1 {
		_, err := r.d.Set(literals[0], lits.DecisionCause())
		return err
	}

	id := clauses.BuildLearnt(&r.arena, r, r.d, literals)
	r.learnts = append(r.learnts, id)

	c := r.arena.Get(id)
	c.BumpActivity(r.clauseInc)
	_, err := r.d.Set(c.Literals[0], lits.NewCause(r.id, uint32(id)))
	return err
}

// Propagate drains the cursor over newly entailed literals and, for
// each, wakes the clauses watching its negation, mirroring the
// teacher's Solver.Propagate loop over the unit propagation queue.
func (r *Reasoner) Propagate() error {
	for {
		e, ok := r.cursor.Next(r.d.Trail())
		if !ok {
			return nil
		}

		newlyTrue := lits.Lit{SV: e.Affected, Val: e.NewUB}

		r.tmpWatchers = r.tmpWatchers[:0]
		r.tmpWatchers = append(r.tmpWatchers, r.watchers[newlyTrue]...)
		r.watchers[newlyTrue] = r.watchers[newlyTrue][:0]

		for i, w := range r.tmpWatchers {
			if r.d.Value(w.guard) == domain.True {
				r.watchers[newlyTrue] = append(r.watchers[newlyTrue], w)
				continue
			}

			c := r.arena.Get(w.id)
			ok, err := clauses.Propagate(&r.arena, r, r.d, w.id, c, newlyTrue)
			if ok && err == nil {
				continue
			}

			// Conflict (ok==false) or a contradiction surfaced while
			// forcing the last literal (err != nil): copy back the
			// remaining watchers and report it.
			r.watchers[newlyTrue] = append(r.watchers[newlyTrue], r.tmpWatchers[i+1:]...)
			if err != nil {
				return err
			}
			var expl []lits.Lit
			clauses.ExplainConflict(c, &expl)
			return domain.NewContradiction(expl...)
		}
	}
}

// Backtrack resets the propagation cursor position is handled lazily by
// the trail's backtrackID check; nothing else needs resyncing since the
// arena and watch lists are themselves functions of clause content, not
// of the current trail position.
func (r *Reasoner) Backtrack(level trail.Level) {}

// Explain implements domain.Explainer: payload is the clause id that
// forced l.
func (r *Reasoner) Explain(l lits.Lit, payload uint32, out *[]lits.Lit) {
	c := r.arena.Get(clauses.ID(payload))
	clauses.ExplainAssign(c, out)
}

// BumpClauseActivity increases c's activity, rescaling the whole
// learnt database if it would overflow, exactly as the teacher's
// BumpClaActivity does.
func (r *Reasoner) BumpClauseActivity(id clauses.ID) {
	c := r.arena.Get(id)
	c.BumpActivity(r.clauseInc)
	if c.Activity() > 1e100 {
		r.clauseInc *= 1e-100
		for _, lid := range r.learnts {
			lc := r.arena.Get(lid)
			lc.ScaleActivity(1e-100)
		}
	}
}

// DecayClauseActivity is called once per conflict.
func (r *Reasoner) DecayClauseActivity() {
	r.clauseInc /= r.clauseDecay
}

// NumLearnts returns the number of learnt clauses currently tracked.
func (r *Reasoner) NumLearnts() int { return len(r.learnts) }

// ReduceDB halves the learnt database, keeping protected and
// high-activity clauses, mirroring the teacher's ReduceDB.
func (r *Reasoner) ReduceDB() {
	sort.Slice(r.learnts, func(i, j int) bool {
		return r.arena.Get(r.learnts[i]).Activity() < r.arena.Get(r.learnts[j]).Activity()
	})

	lim := r.clauseInc / float64(len(r.learnts))
	j := 0
	half := len(r.learnts) / 2
	for i, id := range r.learnts {
		c := r.arena.Get(id)
		keep := c.IsProtected()
		if i >= half {
			keep = keep || c.Activity() >= lim
		}
		if keep {
			r.learnts[j] = id
			j++
		} else {
			r.deleteClause(id)
		}
	}
	r.learnts = r.learnts[:j]
}

func (r *Reasoner) deleteClause(id clauses.ID) {
	c := r.arena.Get(id)
	for _, l := range c.Literals[:2] {
		key := l.Negation()
		entry := r.watchers[key]
		k := 0
		for _, w := range entry {
			if w.id != id {
				entry[k] = w
				k++
			}
		}
		r.watchers[key] = entry[:k]
	}
	r.arena.Delete(id)
}
