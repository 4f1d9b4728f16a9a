package search

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/yagh"
)

// Brancher selects the next decision literal and tracks variable
// activity across conflicts, generalizing the teacher's VarOrder to
// range over every variable in the domain store (SAT, difference-logic
// and linear alike) instead of only Boolean ones.
type Brancher interface {
	// NewVar registers a freshly created variable with the brancher.
	NewVar(v lits.Var)

	// Bump increases v's activity; called once per variable resolved
	// into a learnt clause during conflict analysis.
	Bump(v lits.Var)

	// Decay is called once per conflict, aging all activity relative to
	// future bumps.
	Decay()

	// Reinsert makes v a candidate for selection again, called after a
	// backtrack relaxes its bounds and for every variable at the start
	// of each restart run.
	Reinsert(v lits.Var)

	// NextDecision returns the next literal to decide, or false if
	// every variable is already fixed.
	NextDecision(d *domain.Store) (lits.Lit, bool)
}

// VSIDSBrancher orders variables with a binary heap keyed on a decaying
// activity score, exactly the teacher's VarOrder (ordering.go)
// generalized to lits.Var. It is the default brancher, matching the
// teacher's only implemented ordering.
type VSIDSBrancher struct {
	heap  *yagh.IntMap[float64]
	score []float64
	inc   float64
	decay float64
	// phase holds, per variable, a branching direction flag. Every entry
	// is set to true when the variable is added and is never updated
	// afterwards; the last direction tried is not recorded.
	phase []bool
}

// NewVSIDSBrancher returns a VSIDSBrancher with the given score decay
// (teacher's DefaultOptions.VariableDecay is 0.95).
func NewVSIDSBrancher(decay float64) *VSIDSBrancher {
	return &VSIDSBrancher{
		heap:  yagh.New[float64](0),
		inc:   1,
		decay: decay,
	}
}

func (b *VSIDSBrancher) NewVar(v lits.Var) {
	for int(v) >= len(b.score) {
		b.score = append(b.score, 0)
		b.phase = append(b.phase, true)
		b.heap.GrowBy(1)
	}
	b.heap.Put(int(v), -b.score[v])
}

func (b *VSIDSBrancher) Bump(v lits.Var) {
	b.score[v] += b.inc
	if b.heap.Contains(int(v)) {
		b.heap.Put(int(v), -b.score[v])
	}
	if b.score[v] > 1e100 {
		b.rescale()
	}
}

func (b *VSIDSBrancher) Decay() {
	b.inc /= b.decay
	if b.inc > 1e100 {
		b.rescale()
	}
}

func (b *VSIDSBrancher) rescale() {
	b.inc *= 1e-100
	for v, s := range b.score {
		b.score[v] = s * 1e-100
		if b.heap.Contains(v) {
			b.heap.Put(v, -b.score[v])
		}
	}
}

func (b *VSIDSBrancher) Reinsert(v lits.Var) {
	if !b.heap.Contains(int(v)) {
		b.heap.Put(int(v), -b.score[v])
	}
}

func (b *VSIDSBrancher) NextDecision(d *domain.Store) (lits.Lit, bool) {
	for {
		next, ok := b.heap.Pop()
		if !ok {
			return lits.Lit{}, false
		}
		v := lits.Var(next.Elem)
		if isFixed(d, v) {
			continue // dropped from the heap until Reinsert brings it back.
		}
		if b.phase[v] {
			return lits.Geq(v, d.UBOf(v)), true
		}
		return lits.Leq(v, d.LB(v)), true
	}
}

// isFixed reports whether v's domain has collapsed to a single value
// or the variable is known absent (nothing left to decide).
func isFixed(d *domain.Store, v lits.Var) bool {
	if d.IsPresentFalse(v) {
		return true
	}
	lb, ub := d.Bounds(v)
	return lb >= ub
}

// EMABrancher selects the variable whose activity exponential moving
// average is highest, resolving the Open Question in favor of carrying
// both branchers: it is grounded on the teacher's otherwise-unused
// sat/avg.go EMA type, repurposed here as a per-variable score instead
// of a single solver-wide statistic.
type EMABrancher struct {
	emas  []ema
	decay float64
	// order is a simple unsorted candidate set; EMA decay makes heap
	// maintenance less valuable than for VSIDS since scores move slowly,
	// so a linear scan over present variables is the teacher's own
	// trade-off for this secondary ordering (see sat/avg.go, never wired
	// into a VarOrder by the teacher).
	order []lits.Var
}

type ema struct {
	value float64
	init  bool
}

func (e *ema) add(x, decay float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = decay*e.value + x*(1-decay)
}

// NewEMABrancher returns an EMABrancher with the given decay (the
// teacher's EMA.decay field).
func NewEMABrancher(decay float64) *EMABrancher {
	return &EMABrancher{decay: decay}
}

func (b *EMABrancher) NewVar(v lits.Var) {
	for int(v) >= len(b.emas) {
		b.emas = append(b.emas, ema{})
	}
	b.order = append(b.order, v)
}

func (b *EMABrancher) Bump(v lits.Var) {
	b.emas[v].add(1, b.decay)
}

func (b *EMABrancher) Decay() {
	// EMAs age themselves on every Bump; nothing to do between
	// conflicts for variables that were not touched.
}

func (b *EMABrancher) Reinsert(v lits.Var) {}

func (b *EMABrancher) NextDecision(d *domain.Store) (lits.Lit, bool) {
	best := -1
	bestScore := -1.0
	for _, v := range b.order {
		if isFixed(d, v) {
			continue
		}
		if s := b.emas[v].value; best < 0 || s > bestScore {
			best, bestScore = int(v), s
		}
	}
	if best < 0 {
		return lits.Lit{}, false
	}
	v := lits.Var(best)
	return lits.Geq(v, d.UBOf(v)), true
}
