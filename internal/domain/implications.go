package domain

import (
	"fmt"

	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

// AddImplication records a static antecedent `from -> to`: whenever the
// store comes to entail from, it will automatically also entail to. It
// requires both literals to be on always-present variables and must be
// called at ROOT, since the implication graph is only acyclic (and thus
// only safe to eagerly propagate) when restricted to literals that hold
// unconditionally.
func (s *Store) AddImplication(from, to lits.Lit) {
	if s.CurrentLevel() != trail.Root {
		panic("domain: AddImplication must be called at ROOT")
	}
	if !s.IsPresentTrue(from.Var()) || !s.IsPresentTrue(to.Var()) {
		panic("domain: AddImplication requires always-present variables")
	}

	idx := uint32(len(s.edges))
	s.edges = append(s.edges, implicationEdge{from: from, to: to})
	s.implies[from] = append(s.implies[from], idx)

	// If `from` is already entailed, propagate immediately so that the
	// graph is never observably out of sync with the bounds it was
	// built against.
	if s.Entails(from) {
		if _, err := s.Set(to, lits.ImplicationCause(idx)); err != nil {
			panic(fmt.Sprintf("domain: AddImplication(%s -> %s) is contradictory at ROOT: %v", from, to, err))
		}
	}
}
