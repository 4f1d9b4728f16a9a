package domain

import "github.com/rhartert/halite/internal/lits"

// LBool is a tri-state truth value over a literal's current status in
// the store, mirroring the teacher's internal/sat LBool but phrased in
// terms of bound entailment rather than a raw variable assignment.
type LBool uint8

const (
	Unknown LBool = iota
	True
	False
)

// Opposite returns the negated truth value (True<->False, Unknown
// unchanged).
func (b LBool) Opposite() LBool {
	switch b {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

func (b LBool) String() string {
	switch b {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Value reports whether l currently holds, is falsified, or is
// undetermined.
func (s *Store) Value(l lits.Lit) LBool {
	if s.Entails(l) {
		return True
	}
	if s.Entails(l.Negation()) {
		return False
	}
	return Unknown
}
