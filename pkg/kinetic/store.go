package kinetic

// Store owns the canonical state and transition collections. All
// mutations pass through it; derived views (Pairing, Validate) are
// recomputed from its current contents on read. Editing operations on
// unknown ids are silent no-ops, never errors.
type Store struct {
	model Model
	ids   *IDAllocator

	canvasWidth  float64
	canvasHeight float64

	selectedState      int // 0 = no selection
	selectedTransition int

	observers []func()
}

// NewStore creates an empty store with default canvas bounds.
func NewStore() *Store {
	return &Store{
		ids:          NewIDAllocator(),
		canvasWidth:  DefaultCanvasWidth,
		canvasHeight: DefaultCanvasHeight,
	}
}

// NewStoreFromModel creates a store around an existing model, seeding
// the id allocator past every id the model already uses.
func NewStoreFromModel(m *Model) *Store {
	s := NewStore()
	if m != nil {
		s.model = *m
	}
	s.ids.Seed(&s.model)
	return s
}

// Subscribe registers an observer invoked synchronously after every
// content mutation. Observers must not mutate the store.
func (s *Store) Subscribe(fn func()) {
	s.observers = append(s.observers, fn)
}

func (s *Store) publish() {
	for _, fn := range s.observers {
		fn()
	}
}

// SetCanvasSize overrides the bounds used to clamp state positions.
// Zero or negative dimensions are ignored.
func (s *Store) SetCanvasSize(w, h float64) {
	if w > 0 {
		s.canvasWidth = w
	}
	if h > 0 {
		s.canvasHeight = h
	}
}

// Model returns the store's current contents. The returned pointer is
// a read-only view; callers must not modify it.
func (s *Store) Model() *Model { return &s.model }

// Clone returns a deep copy of the model, suitable for undo snapshots.
func (s *Store) Clone() *Model {
	m := s.model
	m.States = append([]State(nil), s.model.States...)
	m.Transitions = append([]Transition(nil), s.model.Transitions...)
	m.RateFunctions = append([]RateFunction(nil), s.model.RateFunctions...)
	return &m
}

// Restore replaces the store contents with a previously cloned model.
// Selection is cleared; the id allocator is re-seeded so restored ids
// are never reissued.
func (s *Store) Restore(m *Model) {
	if m == nil {
		return
	}
	s.model = *m
	s.model.States = append([]State(nil), m.States...)
	s.model.Transitions = append([]Transition(nil), m.Transitions...)
	s.model.RateFunctions = append([]RateFunction(nil), m.RateFunctions...)
	s.ids.Seed(&s.model)
	s.selectedState = 0
	s.selectedTransition = 0
	s.publish()
}

// AddState allocates an id and appends a closed state at the default
// position for that id. Successive additions fan out diagonally and
// wrap every ten states so fresh nodes do not stack exactly.
func (s *Store) AddState() State {
	id := s.ids.NextStateID()
	offset := float64((id - 1) % 10 * 20)
	st := State{
		ID:         id,
		X:          100 + offset,
		Y:          100 + offset,
		GateStatus: GateClosed,
	}
	s.model.States = append(s.model.States, st)
	s.publish()
	return st
}

// ToggleGate flips the gate status of the given state, provided it is
// the current selection. No-op when the id is unknown or nothing is
// selected.
func (s *Store) ToggleGate(stateID int) {
	if s.selectedState == 0 || s.selectedState != stateID {
		return
	}
	st := s.model.StateByID(stateID)
	if st == nil {
		return
	}
	if st.GateStatus == GateOpen {
		st.GateStatus = GateClosed
	} else {
		st.GateStatus = GateOpen
	}
	s.publish()
}

// SetStateName renames a state. No-op on unknown ids.
func (s *Store) SetStateName(stateID int, name string) {
	st := s.model.StateByID(stateID)
	if st == nil {
		return
	}
	st.Name = name
	s.publish()
}

// MoveState overwrites a state's position, clamped to the canvas so
// the full glyph stays visible.
func (s *Store) MoveState(stateID int, x, y float64) {
	st := s.model.StateByID(stateID)
	if st == nil {
		return
	}
	st.X = clamp(x, 0, s.canvasWidth-NodeSize)
	st.Y = clamp(y, 0, s.canvasHeight-NodeSize)
	s.publish()
}

// DeleteState removes a state and cascades to every transition that
// references it. Clears the selection if the deleted state (or a
// cascaded transition) was selected.
func (s *Store) DeleteState(stateID int) {
	if s.model.StateByID(stateID) == nil {
		return
	}
	states := s.model.States[:0]
	for _, st := range s.model.States {
		if st.ID != stateID {
			states = append(states, st)
		}
	}
	s.model.States = states

	trans := s.model.Transitions[:0]
	for _, t := range s.model.Transitions {
		if t.From == stateID || t.To == stateID {
			if s.selectedTransition == t.ID {
				s.selectedTransition = 0
			}
			continue
		}
		trans = append(trans, t)
	}
	s.model.Transitions = trans

	if s.selectedState == stateID {
		s.selectedState = 0
	}
	s.publish()
}

// AddTransitionPair creates the forward and backward transitions
// between two states, skipping any direction that already exists.
// Self-loops and unknown endpoints are no-ops. Rate equation ids start
// empty and are assigned later through SetTransitionRate.
func (s *Store) AddTransitionPair(fromID, toID int) {
	if fromID == toID {
		return
	}
	if s.model.StateByID(fromID) == nil || s.model.StateByID(toID) == nil {
		return
	}
	haveForward, haveBackward := false, false
	for _, t := range s.model.Transitions {
		if t.From == fromID && t.To == toID {
			haveForward = true
		}
		if t.From == toID && t.To == fromID {
			haveBackward = true
		}
	}
	if haveForward && haveBackward {
		return
	}
	if !haveForward {
		s.model.Transitions = append(s.model.Transitions, Transition{
			ID:   s.ids.NextTransitionID(),
			From: fromID,
			To:   toID,
		})
	}
	if !haveBackward {
		s.model.Transitions = append(s.model.Transitions, Transition{
			ID:   s.ids.NextTransitionID(),
			From: toID,
			To:   fromID,
		})
	}
	s.publish()
}

// DeleteTransition removes the transition with the given id together
// with its reverse-direction partner, if one exists. Transitions are
// authored as pairs by the editor and removed the same way.
func (s *Store) DeleteTransition(transitionID int) {
	target := s.model.TransitionByID(transitionID)
	if target == nil {
		return
	}
	from, to := target.From, target.To

	trans := s.model.Transitions[:0]
	for _, t := range s.model.Transitions {
		samePair := (t.From == from && t.To == to) || (t.From == to && t.To == from)
		if samePair {
			if s.selectedTransition == t.ID {
				s.selectedTransition = 0
			}
			continue
		}
		trans = append(trans, t)
	}
	s.model.Transitions = trans
	s.publish()
}

// SetTransitionRate overwrites a transition's rate equation reference.
// No-op on unknown ids.
func (s *Store) SetTransitionRate(transitionID int, rateEquationID string) {
	t := s.model.TransitionByID(transitionID)
	if t == nil {
		return
	}
	t.RateEquationID = rateEquationID
	s.publish()
}

// SetModelName sets the display name of the model.
func (s *Store) SetModelName(name string) {
	s.model.ModelName = name
	s.publish()
}

// SetStimulus replaces the stimulus record. The graph core carries it
// opaquely for the simulation boundary.
func (s *Store) SetStimulus(st Stimulus) {
	s.model.Stimulus = st
	s.publish()
}

// SetParameters replaces the simulation parameters record.
func (s *Store) SetParameters(p Parameters) {
	s.model.Parameters = p
	s.publish()
}

// SetRateFunctions replaces the rate-function table.
func (s *Store) SetRateFunctions(fns []RateFunction) {
	s.model.RateFunctions = append([]RateFunction(nil), fns...)
	s.publish()
}

// SelectState makes the given state the current selection, clearing
// any transition selection. Unknown ids clear the state selection.
func (s *Store) SelectState(stateID int) {
	s.selectedTransition = 0
	if s.model.StateByID(stateID) == nil {
		s.selectedState = 0
		return
	}
	s.selectedState = stateID
}

// SelectTransition makes the given directed transition the current
// selection, clearing any state selection. A rendered pair line counts
// as selected when either of its direction ids matches.
func (s *Store) SelectTransition(transitionID int) {
	s.selectedState = 0
	if s.model.TransitionByID(transitionID) == nil {
		s.selectedTransition = 0
		return
	}
	s.selectedTransition = transitionID
}

// ClearSelection drops both selections.
func (s *Store) ClearSelection() {
	s.selectedState = 0
	s.selectedTransition = 0
}

// SelectedState returns the selected state id, or 0.
func (s *Store) SelectedState() int { return s.selectedState }

// SelectedTransition returns the selected transition id, or 0.
func (s *Store) SelectedTransition() int { return s.selectedTransition }

// LineSelected reports whether the merged pair line is selected, i.e.
// the current transition selection matches its forward or backward id.
func (s *Store) LineSelected(l Line) bool {
	if s.selectedTransition == 0 {
		return false
	}
	if l.Forward != nil && l.Forward.ID == s.selectedTransition {
		return true
	}
	if l.Backward != nil && l.Backward.ID == s.selectedTransition {
		return true
	}
	return false
}

// Pairing recomputes the grouped bidirectional line view.
func (s *Store) Pairing() []Line {
	return ComputePairing(s.model.States, s.model.Transitions)
}

// Validate recomputes the connectivity report.
func (s *Store) Validate() Report {
	return Validate(&s.model)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
