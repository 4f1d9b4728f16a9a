package domain

import "github.com/rhartert/halite/internal/lits"

// Explainer is implemented by each registered reasoner so that the
// domain store can replay explanations for causes it produced: given a
// literal it once caused to be entailed and the payload it stored, it
// appends to out the literals whose conjunction entails l.
type Explainer interface {
	Explain(l lits.Lit, payload uint32, out *[]lits.Lit)
}

// ImplyingLiterals appends to out the literals whose conjunction
// implies l, as currently entailed by the store. l must already be
// entailed.
func (s *Store) ImplyingLiterals(l lits.Lit, out *[]lits.Lit) {
	if !s.Entails(l) {
		panic("domain: ImplyingLiterals called on a non-entailed literal")
	}
	s.explainCause(l, s.causeOf.Get(l.SV), out)
}

func (s *Store) explainCause(l lits.Lit, cause lits.Cause, out *[]lits.Lit) {
	if edgeIdx, ok := cause.ImplicationEdge(); ok {
		*out = append(*out, s.edges[edgeIdx].from)
		return
	}
	if originIdx, ok := cause.EmptyDomainOrigin(); ok {
		origin := s.emptyOrigins[originIdx]
		s.explainCause(origin.lit, origin.cause, out)
		*out = append(*out, s.complementaryBound(origin.lit))
		return
	}
	if cause.IsDecision() || cause.IsAssumption() {
		return // roots: no antecedents.
	}

	reasoner := s.reasoners[cause.ReasonerID()&0xF]
	if reasoner == nil {
		panic("domain: no Explainer registered for reasoner that produced this cause")
	}
	reasoner.Explain(l, cause.Payload(), out)
}

// complementaryBound returns the literal describing the store's current
// bound on the signed variable opposite to l.SV: this is the bound that
// conflicted with l when an empty-domain inference fired.
func (s *Store) complementaryBound(l lits.Lit) lits.Lit {
	neg := l.SV.Negation()
	return lits.Lit{SV: neg, Val: s.boundVal.Get(neg)}
}
