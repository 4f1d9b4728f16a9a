package domain

import "github.com/rhartert/halite/internal/lits"

// Set tightens the bound named by l, applying cause. It returns true if
// the bound actually changed, false if it was already entailed (a
// no-op) or if the variable was inferred/known absent (also a no-op).
// It returns an error only when tightening would empty the domain of a
// necessarily-present variable (InvalidUpdate).
func (s *Store) Set(l lits.Lit, cause lits.Cause) (bool, error) {
	if s.Entails(l) {
		return false, nil
	}

	if s.wouldEmpty(l) {
		v := l.Var()
		switch {
		case s.IsPresentTrue(v):
			return false, &InvalidUpdate{Lit: l, Cause: cause}
		case s.IsPresentFalse(v):
			return false, nil
		default:
			idx := uint32(len(s.emptyOrigins))
			s.emptyOrigins = append(s.emptyOrigins, emptyOrigin{lit: l, cause: cause})
			changed, err := s.Set(s.Presence(v).Negation(), lits.EmptyDomainCause(idx))
			if err != nil {
				// Forcing the variable absent is itself contradictory,
				// i.e. its presence is already entailed true: surface
				// the original update as the InvalidUpdate instead,
				// since that is the statement the caller actually made.
				return false, &InvalidUpdate{Lit: l, Cause: cause}
			}
			return changed, nil
		}
	}

	return s.apply(l, cause)
}

// wouldEmpty reports whether applying l would leave var(l)'s domain
// empty: l tightens l.SV's upper bound to l.Val, and the domain is
// empty iff that falls below the (negated) upper bound of the opposite
// signed variable, which is exactly the current lower bound expressed
// in l's own terms.
func (s *Store) wouldEmpty(l lits.Lit) bool {
	return int64(l.Val)+int64(s.boundVal.Get(l.SV.Negation())) < 0
}

// apply unconditionally writes the tightened bound and propagates it
// through the static implication graph.
func (s *Store) apply(l lits.Lit, cause lits.Cause) (bool, error) {
	prevUB := s.boundVal.Get(l.SV)
	prevCause := s.causeOf.Get(l.SV)
	prevEventIdx := s.eventIdxOf.Get(l.SV)

	idx := s.trail.Push(trailEvent(l, prevUB, prevCause, cause, prevEventIdx))
	s.boundVal.Set(l.SV, l.Val)
	s.causeOf.Set(l.SV, cause)
	s.eventIdxOf.Set(l.SV, idx)

	for _, edgeIdx := range s.implies[l] {
		to := s.edges[edgeIdx].to
		if _, err := s.Set(to, lits.ImplicationCause(edgeIdx)); err != nil {
			return true, err
		}
	}

	return true, nil
}

// SetLB tightens v's lower bound to at least lb.
func (s *Store) SetLB(v lits.Var, lb int32, cause lits.Cause) (bool, error) {
	return s.Set(lits.Geq(v, lb), cause)
}

// SetUB tightens v's upper bound to at most ub.
func (s *Store) SetUB(v lits.Var, ub int32, cause lits.Cause) (bool, error) {
	return s.Set(lits.Leq(v, ub), cause)
}
