package selection_test

import (
	"sync/atomic"
	"testing"
	"time"

	"bubbleview/internal/selection"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNew_DefaultsToFirstAttachment(t *testing.T) {
	// Act
	c := selection.New([]string{"a", "b"})
	defer c.Close()

	// Assert
	snap := c.Current()
	if snap.Selected != "a" || snap.Active != "a" || snap.State != selection.Idle {
		t.Errorf("got %+v", snap)
	}
}

func TestNew_NoAttachments_NothingSelected(t *testing.T) {
	c := selection.New(nil)
	defer c.Close()

	if snap := c.Current(); snap.Selected != "" || snap.Active != "" {
		t.Errorf("got %+v", snap)
	}
	if c.Select("a") {
		t.Error("expected select on empty controller to fail")
	}
}

func TestSelect_StartsTransitionThenSettles(t *testing.T) {
	// Arrange
	settled := make(chan selection.Snapshot, 1)
	c := selection.New([]string{"a", "b", "c"},
		selection.WithDelay(20*time.Millisecond),
		selection.WithOnSettle(func(s selection.Snapshot) { settled <- s }),
	)
	defer c.Close()

	// Act
	ok := c.Select("c")
	during := c.Current()

	// Assert
	if !ok {
		t.Fatal("expected select to be accepted")
	}
	if during.Selected != "c" || during.Active != "a" || during.State != selection.Transitioning {
		t.Errorf("during transition: got %+v", during)
	}
	if during.Direction != 1 {
		t.Errorf("direction: got %d, want 1", during.Direction)
	}

	select {
	case snap := <-settled:
		if snap.Active != "c" || snap.State != selection.Idle {
			t.Errorf("settled: got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("transition never settled")
	}
}

func TestSelect_BackwardsDirection(t *testing.T) {
	c := selection.New([]string{"a", "b", "c"}, selection.WithDelay(time.Hour))
	defer c.Close()
	c.SelectIndex(2)

	c.Select("b")

	if d := c.Current().Direction; d != -1 {
		t.Errorf("direction: got %d, want -1", d)
	}
}

func TestSelect_UnknownID_Rejected(t *testing.T) {
	c := selection.New([]string{"a"})
	defer c.Close()

	if c.Select("zz") {
		t.Error("expected unknown id to be rejected")
	}
	if snap := c.Current(); snap.State != selection.Idle {
		t.Errorf("state changed: %+v", snap)
	}
}

func TestSelect_CurrentWhileIdle_NoTransition(t *testing.T) {
	c := selection.New([]string{"a", "b"})
	defer c.Close()

	ok := c.Select("a")

	if !ok || c.Current().State != selection.Idle {
		t.Errorf("got ok=%v state=%v", ok, c.Current().State)
	}
}

func TestSelect_DuringTransition_RestartsTimer(t *testing.T) {
	// Arrange
	var settles atomic.Int32
	c := selection.New([]string{"x", "y"},
		selection.WithDelay(200*time.Millisecond),
		selection.WithOnSettle(func(selection.Snapshot) { settles.Add(1) }),
	)
	defer c.Close()
	c.Select("y")
	time.Sleep(120 * time.Millisecond)

	// Act
	c.Select("x")
	time.Sleep(120 * time.Millisecond)

	// Assert
	snap := c.Current()
	if snap.State != selection.Transitioning || snap.Selected != "x" {
		t.Errorf("first timer settled a restarted transition: %+v", snap)
	}
	if !waitFor(t, time.Second, func() bool { return c.Current().State == selection.Idle }) {
		t.Fatal("transition never settled")
	}
	if got := c.Current().Active; got != "x" {
		t.Errorf("active: got %q, want x", got)
	}
	if n := settles.Load(); n != 1 {
		t.Errorf("settle callbacks: got %d, want 1", n)
	}
}

func TestSelectIndex_OutOfRange_Rejected(t *testing.T) {
	c := selection.New([]string{"a"})
	defer c.Close()

	if c.SelectIndex(1) || c.SelectIndex(-1) {
		t.Error("expected out of range index to be rejected")
	}
}

func TestClose_CancelsPendingTransition(t *testing.T) {
	// Arrange
	var fired atomic.Bool
	c := selection.New([]string{"a", "b"},
		selection.WithDelay(20*time.Millisecond),
		selection.WithOnSettle(func(selection.Snapshot) { fired.Store(true) }),
	)
	c.Select("b")

	// Act
	c.Close()
	time.Sleep(60 * time.Millisecond)

	// Assert
	if fired.Load() {
		t.Error("settle callback ran after Close")
	}
	if c.Select("a") {
		t.Error("expected select after Close to fail")
	}
	if c.Current().State != selection.Transitioning {
		t.Error("closed controller should keep its last state")
	}
}

func TestDisplayState(t *testing.T) {
	c := selection.New([]string{"a", "b"}, selection.WithDelay(time.Hour))
	defer c.Close()

	idle := c.DisplayState("a")
	c.Select("b")
	moving := c.DisplayState("b")
	other := c.DisplayState("a")

	if !idle.Selected || idle.Transitioning {
		t.Errorf("idle: got %+v", idle)
	}
	if !moving.Selected || !moving.Transitioning {
		t.Errorf("moving: got %+v", moving)
	}
	if other.Selected {
		t.Errorf("previous selection still reported selected: %+v", other)
	}
}

func TestControllers_AreIndependent(t *testing.T) {
	t.Parallel()
	first := selection.New([]string{"a", "b"}, selection.WithDelay(time.Hour))
	second := selection.New([]string{"a", "b"}, selection.WithDelay(time.Hour))
	defer first.Close()
	defer second.Close()

	first.Select("b")

	if second.Current().Selected != "a" {
		t.Error("selecting in one controller changed another")
	}
}

func TestSnapshotDisplayState_MatchesSnapshotUnderConcurrentSettles(t *testing.T) {
	// Arrange
	c := selection.New([]string{"a", "b", "c"}, selection.WithDelay(0))
	defer c.Close()
	ids := []string{"b", "c", "a"}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c.Select(ids[i%len(ids)])
		}
	}()

	// Act & Assert
	for i := 0; i < 500; i++ {
		snap := c.Current()
		state := snap.DisplayState()
		if state.Transitioning != (snap.State == selection.Transitioning) {
			t.Fatalf("display state %+v disagrees with snapshot %+v", state, snap)
		}
		if !state.Selected {
			t.Fatalf("selected attachment not drawn as selected: %+v", snap)
		}
	}
	<-done
}
