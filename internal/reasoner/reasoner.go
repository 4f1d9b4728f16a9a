// Package reasoner declares the small interface every theory reasoner
// (the Boolean SAT layer, difference logic, linear/pseudo-Boolean) must
// satisfy to be registered with the search loop.
package reasoner

import (
	"github.com/rhartert/halite/internal/domain"
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

// Reasoner is a pluggable propagator module. Implementations hold their
// own exclusive state (a clause arena, an edge graph, ...) plus a
// domain.Store reference and a trail.Cursor used to read bound-change
// events without ever mutating the store except through Set/SetLB/SetUB.
type Reasoner interface {
	domain.Explainer

	// ID returns the reasoner id this reasoner was registered under,
	// used to pack causes.
	ID() lits.ReasonerID

	// Propagate runs to a fixpoint or returns a *domain.Contradiction.
	// It must not be called concurrently with itself or with Backtrack.
	Propagate() error

	// Backtrack notifies the reasoner that the domain store has been
	// restored to the given level, so any reasoner-local structure that
	// is not purely a function of current entailment (e.g. cached
	// active-edge sets) can be brought back in sync.
	Backtrack(level trail.Level)
}
