package domain

import (
	"fmt"

	"github.com/rhartert/halite/internal/lits"
)

// InvalidUpdate is returned by Set when tightening a bound would make
// the domain of a necessarily-present variable empty. It is recovered
// internally when the variable is optional (see Set); it is only
// surfaced to the caller when present(var(l)) is entailed true.
type InvalidUpdate struct {
	Lit   lits.Lit
	Cause lits.Cause
}

func (e *InvalidUpdate) Error() string {
	return fmt.Sprintf("domain: invalid update %s would empty the domain of a present variable", e.Lit)
}

// Contradiction carries an explanation: a list of literals whose
// conjunction is unsatisfiable given the current trail. It is the error
// type propagators return from Propagate.
type Contradiction struct {
	Explanation []lits.Lit
}

func (e *Contradiction) Error() string {
	return fmt.Sprintf("domain: contradiction (%d literals)", len(e.Explanation))
}

// NewContradiction builds a Contradiction from the given literals.
func NewContradiction(explanation ...lits.Lit) *Contradiction {
	return &Contradiction{Explanation: explanation}
}
