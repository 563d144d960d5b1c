package editor

import (
	"testing"

	"github.com/patchclamp/kinedit/pkg/kinetic"
)

func setup(t *testing.T) (*kinetic.Store, *Controller, kinetic.State, kinetic.State) {
	t.Helper()
	store := kinetic.NewStore()
	ctrl := New(store)
	a := store.AddState()
	b := store.AddState()
	return store, ctrl, a, b
}

// click simulates a press and release with no movement.
func click(c *Controller, target Target, x, y float64) {
	c.PointerDown(target, x, y)
	c.PointerUp()
}

func TestClickSelectsState(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	click(ctrl, StateTarget(a.ID), a.X+5, a.Y+5)

	if ctrl.Mode() != ModeStateSelected {
		t.Errorf("Mode %v, want state selected", ctrl.Mode())
	}
	if store.SelectedState() != a.ID {
		t.Errorf("Selected %d, want %d", store.SelectedState(), a.ID)
	}
}

func TestClickEmptyCanvasClearsSelection(t *testing.T) {
	store, ctrl, a, _ := setup(t)
	click(ctrl, StateTarget(a.ID), 0, 0)

	click(ctrl, NoTarget(), 400, 400)

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v, want idle", ctrl.Mode())
	}
	if store.SelectedState() != 0 {
		t.Error("Selection survived empty-canvas click")
	}
}

func TestClickTransitionClearsStateSelection(t *testing.T) {
	store, ctrl, a, b := setup(t)
	store.AddTransitionPair(a.ID, b.ID)
	tid := store.Model().Transitions[0].ID

	click(ctrl, StateTarget(a.ID), 0, 0)
	click(ctrl, TransitionTarget(tid), 0, 0)

	if ctrl.Mode() != ModeTransitionSelected {
		t.Errorf("Mode %v, want transition selected", ctrl.Mode())
	}
	if store.SelectedState() != 0 {
		t.Error("State selection survived transition click")
	}
	if store.SelectedTransition() != tid {
		t.Errorf("Selected transition %d, want %d", store.SelectedTransition(), tid)
	}
}

func TestTransitionCreationFlow(t *testing.T) {
	store, ctrl, a, b := setup(t)

	ctrl.ToggleTransitionMode()
	if ctrl.Mode() != ModeAwaitTransitionStart {
		t.Fatalf("Mode %v after toggle, want awaiting start", ctrl.Mode())
	}

	click(ctrl, StateTarget(a.ID), 0, 0)
	if ctrl.Mode() != ModeAwaitTransitionEnd {
		t.Fatalf("Mode %v after start click, want awaiting end", ctrl.Mode())
	}
	if ctrl.TransitionStart() != a.ID {
		t.Errorf("Pending start %d, want %d", ctrl.TransitionStart(), a.ID)
	}

	click(ctrl, StateTarget(b.ID), 0, 0)
	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v after end click, want idle", ctrl.Mode())
	}
	if n := len(store.Model().Transitions); n != 2 {
		t.Errorf("Expected transition pair, got %d transitions", n)
	}
}

func TestTransitionCreationSameStateCancels(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	ctrl.ToggleTransitionMode()
	click(ctrl, StateTarget(a.ID), 0, 0)
	click(ctrl, StateTarget(a.ID), 0, 0)

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v, want idle after cancel", ctrl.Mode())
	}
	if n := len(store.Model().Transitions); n != 0 {
		t.Errorf("Cancelled creation produced %d transitions", n)
	}
}

func TestTransitionModeEntryClearsSelection(t *testing.T) {
	store, ctrl, a, _ := setup(t)
	click(ctrl, StateTarget(a.ID), 0, 0)

	ctrl.ToggleTransitionMode()
	if store.SelectedState() != 0 {
		t.Error("Selection survived entering transition mode")
	}

	ctrl.ToggleTransitionMode()
	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v after leaving transition mode, want idle", ctrl.Mode())
	}
}

func TestTransitionModeIgnoresNonStateClicks(t *testing.T) {
	_, ctrl, a, _ := setup(t)
	ctrl.ToggleTransitionMode()

	click(ctrl, NoTarget(), 300, 300)
	if ctrl.Mode() != ModeAwaitTransitionStart {
		t.Errorf("Empty click changed mode to %v", ctrl.Mode())
	}

	click(ctrl, StateTarget(a.ID), 0, 0)
	click(ctrl, NoTarget(), 300, 300)
	if ctrl.Mode() != ModeAwaitTransitionEnd {
		t.Errorf("Empty click changed mode to %v", ctrl.Mode())
	}
}

func TestDragMovesStateWithOffset(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	// Press 5 units into the glyph, drag to (210,215).
	ctrl.PointerDown(StateTarget(a.ID), a.X+5, a.Y+10)
	ctrl.PointerMove(210, 215)

	if ctrl.Mode() != ModeDragging {
		t.Fatalf("Mode %v, want dragging", ctrl.Mode())
	}
	st := store.Model().StateByID(a.ID)
	if st.X != 205 || st.Y != 205 {
		t.Errorf("Dragged to (%v,%v), want (205,205)", st.X, st.Y)
	}

	ctrl.PointerUp()
	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v after release, want idle (pre-drag mode)", ctrl.Mode())
	}
}

func TestDragRestoresPriorSelection(t *testing.T) {
	store, ctrl, a, b := setup(t)
	click(ctrl, StateTarget(a.ID), 0, 0)

	// Drag a different state; selection must be untouched afterwards.
	ctrl.PointerDown(StateTarget(b.ID), b.X, b.Y)
	ctrl.PointerMove(300, 300)
	ctrl.PointerUp()

	if ctrl.Mode() != ModeStateSelected {
		t.Errorf("Mode %v after drag, want state selected restored", ctrl.Mode())
	}
	if store.SelectedState() != a.ID {
		t.Errorf("Selection %d after drag, want %d", store.SelectedState(), a.ID)
	}
}

func TestPressWithoutMoveIsClick(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	ctrl.PointerDown(StateTarget(a.ID), a.X, a.Y)
	ctrl.PointerUp()

	if ctrl.Mode() != ModeStateSelected {
		t.Errorf("Mode %v, want state selected", ctrl.Mode())
	}
	if store.SelectedState() != a.ID {
		t.Error("Press-release did not select")
	}
}

func TestDeleteMidDragForceCancels(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	ctrl.PointerDown(StateTarget(a.ID), a.X, a.Y)
	ctrl.PointerMove(200, 200)
	if ctrl.Mode() != ModeDragging {
		t.Fatal("Drag did not start")
	}

	store.DeleteState(a.ID)
	ctrl.PointerMove(220, 220)

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v after mid-drag delete, want idle", ctrl.Mode())
	}
	if ctrl.Dragging() != 0 {
		t.Error("Drag still live after its state was deleted")
	}

	// A stray release after the cancel is harmless.
	ctrl.PointerUp()
	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v after stray release", ctrl.Mode())
	}
}

func TestEndDragNeverResumesStaleSelection(t *testing.T) {
	store, ctrl, a, b := setup(t)
	click(ctrl, StateTarget(a.ID), 0, 0)

	ctrl.PointerDown(StateTarget(b.ID), b.X, b.Y)
	ctrl.PointerMove(250, 250)

	// Selection a disappears while b is mid-drag.
	store.DeleteState(a.ID)
	ctrl.PointerUp()

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v, want idle instead of stale selection", ctrl.Mode())
	}
}

func TestDeleteSelectedState(t *testing.T) {
	store, ctrl, a, b := setup(t)
	store.AddTransitionPair(a.ID, b.ID)
	click(ctrl, StateTarget(a.ID), 0, 0)

	ctrl.DeleteSelected()

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v, want idle", ctrl.Mode())
	}
	if store.Model().StateByID(a.ID) != nil {
		t.Error("State survived DeleteSelected")
	}
	if n := len(store.Model().Transitions); n != 0 {
		t.Errorf("Cascade left %d transitions", n)
	}
}

func TestDeleteSelectedTransitionPair(t *testing.T) {
	store, ctrl, a, b := setup(t)
	store.AddTransitionPair(a.ID, b.ID)
	tid := store.Model().Transitions[0].ID

	click(ctrl, TransitionTarget(tid), 0, 0)
	ctrl.DeleteSelected()

	if n := len(store.Model().Transitions); n != 0 {
		t.Errorf("Pair delete left %d transitions", n)
	}
	if ctrl.Mode() != ModeIdle {
		t.Errorf("Mode %v, want idle", ctrl.Mode())
	}
}

func TestDeleteSelectedNoopWhenIdle(t *testing.T) {
	store, ctrl, _, _ := setup(t)
	ctrl.DeleteSelected()
	if n := len(store.Model().States); n != 2 {
		t.Errorf("Idle delete removed states: %d remain", n)
	}
}

func TestToggleGateOnlyWhenSelected(t *testing.T) {
	store, ctrl, a, _ := setup(t)

	ctrl.ToggleGate()
	if store.Model().StateByID(a.ID).GateStatus != kinetic.GateClosed {
		t.Error("Gate toggled with no selection")
	}

	click(ctrl, StateTarget(a.ID), 0, 0)
	ctrl.ToggleGate()
	if store.Model().StateByID(a.ID).GateStatus != kinetic.GateOpen {
		t.Error("Gate not toggled for selected state")
	}
}

func TestClickStaleStateIsNoop(t *testing.T) {
	store, ctrl, a, _ := setup(t)
	store.DeleteState(a.ID)

	click(ctrl, StateTarget(a.ID), 0, 0)

	if ctrl.Mode() != ModeIdle {
		t.Errorf("Stale click moved mode to %v", ctrl.Mode())
	}
	if store.SelectedState() != 0 {
		t.Error("Stale click selected a deleted state")
	}
}

func TestAddStateSelectsIt(t *testing.T) {
	store, ctrl, _, _ := setup(t)
	st := ctrl.AddState()
	if ctrl.Mode() != ModeStateSelected {
		t.Errorf("Mode %v, want state selected", ctrl.Mode())
	}
	if store.SelectedState() != st.ID {
		t.Errorf("Selected %d, want %d", store.SelectedState(), st.ID)
	}
}

func TestDragWorksFromTransitionMode(t *testing.T) {
	store, ctrl, a, _ := setup(t)
	ctrl.ToggleTransitionMode()

	ctrl.PointerDown(StateTarget(a.ID), a.X, a.Y)
	ctrl.PointerMove(260, 240)
	ctrl.PointerUp()

	// Mode returns to awaiting start; the state actually moved.
	if ctrl.Mode() != ModeAwaitTransitionStart {
		t.Errorf("Mode %v after drag, want awaiting start restored", ctrl.Mode())
	}
	st := store.Model().StateByID(a.ID)
	if st.X != 260 || st.Y != 240 {
		t.Errorf("State at (%v,%v), want (260,240)", st.X, st.Y)
	}
}
