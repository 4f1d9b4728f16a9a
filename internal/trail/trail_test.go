package trail

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rhartert/halite/internal/lits"
)

func ev(ub int32) Event {
	return Event{Affected: lits.Pos(lits.Var(1)), NewUB: ub}
}

func TestTrail_CheckpointRestoreLast(t *testing.T) {
	tr := &Trail{}

	tr.Push(ev(10))
	tr.Checkpoint()
	tr.Push(ev(20))
	tr.Push(ev(30))

	if got := tr.CurrentLevel(); got != 1 {
		t.Fatalf("CurrentLevel() = %d, want 1", got)
	}
	if got := tr.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	drained := tr.RestoreLast()
	want := []Event{ev(30), ev(20)} // reverse push order
	if diff := cmp.Diff(want, drained); diff != "" {
		t.Errorf("RestoreLast() mismatch (-want +got):\n%s", diff)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() after restore = %d, want 1", tr.Len())
	}
	if tr.CurrentLevel() != Root {
		t.Errorf("CurrentLevel() after restore = %d, want Root", tr.CurrentLevel())
	}
}

func TestTrail_LevelOf(t *testing.T) {
	tr := &Trail{}
	tr.Push(ev(1)) // level 0
	tr.Checkpoint()
	tr.Push(ev(2)) // level 1
	tr.Push(ev(3)) // level 1
	tr.Checkpoint()
	tr.Push(ev(4)) // level 2

	wantLevels := []Level{0, 1, 1, 2}
	for i, want := range wantLevels {
		if got := tr.LevelOf(uint32(i)); got != want {
			t.Errorf("LevelOf(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestCursor_NeverObservesRestoredEvents(t *testing.T) {
	tr := &Trail{}
	cur := tr.Reader()

	tr.Push(ev(1))
	tr.Checkpoint()
	tr.Push(ev(2))

	if _, ok := cur.Next(tr); !ok {
		t.Fatalf("expected first event")
	}

	tr.Restore(Root)
	if _, ok := cur.Next(tr); ok {
		t.Errorf("cursor should not observe the restored event")
	}

	tr.Push(ev(3))
	e, ok := cur.Next(tr)
	if !ok || e.NewUB != 3 {
		t.Errorf("cursor should observe newly pushed events after restore, got %v, %v", e, ok)
	}
}

func TestCursor_StopsAtEnd(t *testing.T) {
	tr := &Trail{}
	cur := tr.Reader()
	if _, ok := cur.Next(tr); ok {
		t.Errorf("empty trail should yield no events")
	}
}
