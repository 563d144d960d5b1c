// Package editor implements the interaction state machine that turns
// pointer and command input into graph mutations. It is UI-agnostic:
// the tcell frontend feeds it canvas-relative events, and it is the
// only component that writes to the store.
package editor

import "github.com/patchclamp/kinedit/pkg/kinetic"

// Mode is the controller's current interaction mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeStateSelected
	ModeTransitionSelected
	ModeAwaitTransitionStart
	ModeAwaitTransitionEnd
	ModeDragging
)

// String returns the mode name for status display.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeStateSelected:
		return "state selected"
	case ModeTransitionSelected:
		return "transition selected"
	case ModeAwaitTransitionStart:
		return "pick start state"
	case ModeAwaitTransitionEnd:
		return "pick end state"
	case ModeDragging:
		return "dragging"
	}
	return "unknown"
}

// TargetKind identifies what a pointer event hit.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetState
	TargetTransition
)

// Target is the entity under the pointer, resolved by the frontend's
// hit testing.
type Target struct {
	Kind TargetKind
	ID   int
}

// NoTarget is a pointer event over empty canvas.
func NoTarget() Target { return Target{} }

// StateTarget addresses a state glyph.
func StateTarget(id int) Target { return Target{Kind: TargetState, ID: id} }

// TransitionTarget addresses a rendered pair line, identified by
// whichever directed transition id the hit test resolved.
func TransitionTarget(id int) Target { return Target{Kind: TargetTransition, ID: id} }

// Controller drives selection, transition creation, and dragging over
// a single store. It lives for the whole editing session; there is no
// terminal mode. Every operation on a stale id is a no-op.
type Controller struct {
	store *kinetic.Store

	mode            Mode
	transitionStart int // first endpoint while in ModeAwaitTransitionEnd

	// Press bookkeeping between PointerDown and PointerUp. A press
	// that moves becomes a drag; one that does not becomes a click on
	// release. PointerUp always clears it, so a drag can never outlive
	// its pointer interaction.
	pressed     bool
	pressTarget Target
	moved       bool
	dragID      int
	dragOffX    float64
	dragOffY    float64
	resumeMode  Mode // mode to return to when the drag ends
}

// New creates a controller over the given store.
func New(store *kinetic.Store) *Controller {
	return &Controller{store: store}
}

// Mode returns the current interaction mode.
func (c *Controller) Mode() Mode { return c.mode }

// TransitionStart returns the pending first endpoint, or 0.
func (c *Controller) TransitionStart() int { return c.transitionStart }

// Dragging returns the id of the state being dragged, or 0.
func (c *Controller) Dragging() int {
	if c.mode != ModeDragging {
		return 0
	}
	return c.dragID
}

// PointerDown records a press at canvas coordinates over the given
// target. Nothing is mutated until the press either moves or releases.
func (c *Controller) PointerDown(target Target, x, y float64) {
	c.pressed = true
	c.pressTarget = target
	c.moved = false

	if target.Kind == TargetState {
		if st := c.store.Model().StateByID(target.ID); st != nil {
			c.dragOffX = x - st.X
			c.dragOffY = y - st.Y
		}
	}
}

// PointerMove advances an active press. The first move over a state
// glyph starts a drag; subsequent moves reposition the state with the
// press offset preserved. Moves without a press are ignored.
func (c *Controller) PointerMove(x, y float64) {
	if !c.pressed {
		return
	}

	if !c.moved {
		c.moved = true
		if c.pressTarget.Kind == TargetState && c.mode != ModeDragging {
			if c.store.Model().StateByID(c.pressTarget.ID) != nil {
				c.resumeMode = c.mode
				c.mode = ModeDragging
				c.dragID = c.pressTarget.ID
			}
		}
	}

	if c.mode != ModeDragging {
		return
	}
	// The dragged state can disappear under us (cascade delete from a
	// concurrent command); force-cancel rather than resurrecting it.
	if c.store.Model().StateByID(c.dragID) == nil {
		c.cancelDrag()
		return
	}
	c.store.MoveState(c.dragID, x-c.dragOffX, y-c.dragOffY)
}

// PointerUp releases the press. A moved press ends the drag and
// returns to the mode that preceded it; an unmoved press is a click.
// The press bookkeeping is cleared unconditionally, including for up
// events delivered outside the canvas.
func (c *Controller) PointerUp() {
	if !c.pressed {
		return
	}
	c.pressed = false

	if c.mode == ModeDragging {
		c.endDrag()
		return
	}
	if !c.moved {
		c.click(c.pressTarget)
	}
}

func (c *Controller) endDrag() {
	c.mode = c.resumeMode
	c.dragID = 0
	// The selection backing the resumed mode may have been cascaded
	// away mid-drag; never resume into a stale reference.
	switch c.mode {
	case ModeStateSelected:
		if c.store.SelectedState() == 0 {
			c.mode = ModeIdle
		}
	case ModeTransitionSelected:
		if c.store.SelectedTransition() == 0 {
			c.mode = ModeIdle
		}
	case ModeAwaitTransitionEnd:
		if c.store.Model().StateByID(c.transitionStart) == nil {
			c.transitionStart = 0
			c.mode = ModeIdle
		}
	}
}

func (c *Controller) cancelDrag() {
	c.pressed = false
	c.dragID = 0
	c.transitionStart = 0
	c.mode = ModeIdle
}

func (c *Controller) click(target Target) {
	switch c.mode {
	case ModeAwaitTransitionStart:
		if target.Kind != TargetState {
			return
		}
		if c.store.Model().StateByID(target.ID) == nil {
			return
		}
		c.transitionStart = target.ID
		c.mode = ModeAwaitTransitionEnd

	case ModeAwaitTransitionEnd:
		if target.Kind != TargetState {
			return
		}
		// Clicking the start state again cancels; anything else
		// creates the pair. Either way the mode exits.
		if target.ID != c.transitionStart {
			c.store.AddTransitionPair(c.transitionStart, target.ID)
		}
		c.transitionStart = 0
		c.mode = ModeIdle

	default:
		switch target.Kind {
		case TargetState:
			c.store.SelectState(target.ID)
			if c.store.SelectedState() != 0 {
				c.mode = ModeStateSelected
			} else {
				c.mode = ModeIdle
			}
		case TargetTransition:
			c.store.SelectTransition(target.ID)
			if c.store.SelectedTransition() != 0 {
				c.mode = ModeTransitionSelected
			} else {
				c.mode = ModeIdle
			}
		default:
			c.store.ClearSelection()
			c.mode = ModeIdle
		}
	}
}

// ToggleTransitionMode enters or leaves transition-creation mode.
// Entering clears all selections; leaving returns to idle.
func (c *Controller) ToggleTransitionMode() {
	switch c.mode {
	case ModeAwaitTransitionStart, ModeAwaitTransitionEnd:
		c.transitionStart = 0
		c.mode = ModeIdle
	case ModeDragging:
		// Keyboard toggle mid-drag abandons the drag first.
		c.cancelDrag()
		c.store.ClearSelection()
		c.mode = ModeAwaitTransitionStart
	default:
		c.store.ClearSelection()
		c.mode = ModeAwaitTransitionStart
	}
}

// DeleteSelected removes the currently selected state (with its
// transitions) or transition pair. No-op in other modes.
func (c *Controller) DeleteSelected() {
	switch c.mode {
	case ModeStateSelected:
		c.store.DeleteState(c.store.SelectedState())
		c.mode = ModeIdle
	case ModeTransitionSelected:
		c.store.DeleteTransition(c.store.SelectedTransition())
		c.mode = ModeIdle
	}
}

// ToggleGate flips the gate of the selected state.
func (c *Controller) ToggleGate() {
	if c.mode != ModeStateSelected {
		return
	}
	c.store.ToggleGate(c.store.SelectedState())
}

// AddState appends a new state and selects it.
func (c *Controller) AddState() kinetic.State {
	st := c.store.AddState()
	if c.mode != ModeAwaitTransitionStart && c.mode != ModeAwaitTransitionEnd {
		c.store.SelectState(st.ID)
		c.mode = ModeStateSelected
	}
	return st
}
