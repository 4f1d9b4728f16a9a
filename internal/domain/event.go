package domain

import (
	"github.com/rhartert/halite/internal/lits"
	"github.com/rhartert/halite/internal/trail"
)

func trailEvent(l lits.Lit, prevUB int32, prevCause, cause lits.Cause, prevEventIdx uint32) trail.Event {
	return trail.Event{
		Affected:         l.SV,
		NewUB:            l.Val,
		PreviousUB:       prevUB,
		Cause:            cause,
		PreviousCause:    prevCause,
		PreviousEventIdx: prevEventIdx,
	}
}
