// Package trail implements the reversible event log that backs the
// domain store: an append-only sequence of bound-change events with
// decision-level checkpoints, plus per-consumer cursors that
// synchronise on backtrack.
package trail

import "github.com/rhartert/halite/internal/lits"

// Level is a decision level. The ROOT level ("no decision made") is
// represented by 0; the first real decision pushes level 1, matching
// the teacher's decisionLevel()==len(trailLim) convention.
type Level uint32

// Root is the decision level before any decision has been made.
const Root Level = 0

// Event is a single bound-change record: the signed variable whose
// upper bound tightened, the new and previous values, and the cause
// that produced it.
type Event struct {
	Affected   lits.SignedVar
	NewUB      int32
	PreviousUB int32
	Cause      lits.Cause

	// PreviousCause is the cause that justified PreviousUB, restored
	// verbatim on backtrack so that explanation replay of the
	// now-current (looser) bound remains correct.
	PreviousCause lits.Cause

	// PreviousEventIdx is the trail index that PreviousCause's event was
	// recorded at, restored on backtrack alongside PreviousCause so that
	// LevelOfReason stays correct for the reverted bound.
	PreviousEventIdx uint32
}

// Trail is an append-only ordered sequence of events with a stack of
// decision-level checkpoints. Invariant: events at index < checkpoints[d]
// were established at level <= d.
type Trail struct {
	events      []Event
	checkpoints []int // index into events at which each level started
	backtrackID uint64
}

// Push appends a new event and returns its index.
func (t *Trail) Push(e Event) uint32 {
	idx := uint32(len(t.events))
	t.events = append(t.events, e)
	return idx
}

// Len returns the number of events currently on the trail.
func (t *Trail) Len() int {
	return len(t.events)
}

// Event returns the event at idx.
func (t *Trail) Event(idx uint32) Event {
	return t.events[idx]
}

// CurrentLevel returns the current decision level.
func (t *Trail) CurrentLevel() Level {
	return Level(len(t.checkpoints))
}

// Checkpoint records a new decision-level boundary at the current
// trail length and returns the level that was just entered.
func (t *Trail) Checkpoint() Level {
	t.checkpoints = append(t.checkpoints, len(t.events))
	return t.CurrentLevel()
}

// LevelOf returns the decision level at which the event at idx was
// established, found by binary-searching the checkpoint stack.
func (t *Trail) LevelOf(idx uint32) Level {
	// checkpoints[d] is the trail length when level d+1 was entered, so
	// the number of checkpoints <= idx is the level of idx.
	lo, hi := 0, len(t.checkpoints)
	for lo < hi {
		mid := (lo + hi) / 2
		if uint32(t.checkpoints[mid]) <= idx {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return Level(lo)
}

// RestoreLast drops all events above the last checkpoint and returns
// them in reverse push order (last pushed first), matching the
// contract that restore_last yields undone events newest-first.
func (t *Trail) RestoreLast() []Event {
	n := len(t.checkpoints)
	if n == 0 {
		return nil
	}
	from := t.checkpoints[n-1]
	t.checkpoints = t.checkpoints[:n-1]
	return t.restoreFrom(from)
}

// Restore undoes events until the trail is at the given level.
func (t *Trail) Restore(level Level) []Event {
	var drained []Event
	for t.CurrentLevel() > level {
		drained = append(drained, t.RestoreLast()...)
	}
	return drained
}

func (t *Trail) restoreFrom(from int) []Event {
	n := len(t.events) - from
	if n <= 0 {
		t.backtrackID++
		return nil
	}
	drained := make([]Event, n)
	for i := 0; i < n; i++ {
		drained[i] = t.events[len(t.events)-1-i]
	}
	t.events = t.events[:from]
	t.backtrackID++
	return drained
}

// Reader returns a new cursor positioned at the start of the trail.
func (t *Trail) Reader() *Cursor {
	return &Cursor{}
}

// Cursor is a per-consumer read position over the trail. It
// synchronises with the trail's latest backtrack id on every read: if
// its position is beyond the current trail length (i.e. events it had
// not yet consumed were dropped), it rewinds to the new end so it never
// observes restored events.
type Cursor struct {
	pos         int
	backtrackID uint64
}

// Next returns the next unread event and true, or the zero Event and
// false if the cursor has reached the end of the trail.
func (c *Cursor) Next(t *Trail) (Event, bool) {
	if c.backtrackID != t.backtrackID {
		c.backtrackID = t.backtrackID
		if c.pos > len(t.events) {
			c.pos = len(t.events)
		}
	}
	if c.pos >= len(t.events) {
		return Event{}, false
	}
	e := t.events[c.pos]
	c.pos++
	return e, true
}

// Pos returns the cursor's current read position (number of events
// already consumed), mostly useful for tests.
func (c *Cursor) Pos() int {
	return c.pos
}
