package kinetic

// IDAllocator issues session-unique positive integer ids. States and
// transitions draw from independent counters; ids are never reused
// after deletion.
type IDAllocator struct {
	nextState      int
	nextTransition int
}

// NewIDAllocator returns an allocator starting both counters at 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextState: 1, nextTransition: 1}
}

// NextStateID returns the next unissued state id.
func (a *IDAllocator) NextStateID() int {
	id := a.nextState
	a.nextState++
	return id
}

// NextTransitionID returns the next unissued transition id.
func (a *IDAllocator) NextTransitionID() int {
	id := a.nextTransition
	a.nextTransition++
	return id
}

// Seed advances both counters past every id present in the model, so
// editing a loaded file continues the id sequence without collisions.
func (a *IDAllocator) Seed(m *Model) {
	for _, s := range m.States {
		if s.ID >= a.nextState {
			a.nextState = s.ID + 1
		}
	}
	for _, t := range m.Transitions {
		if t.ID >= a.nextTransition {
			a.nextTransition = t.ID + 1
		}
	}
}
