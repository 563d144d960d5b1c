// Package kinetic provides the core kinetic model graph for ion-channel
// gating schemes: conformational states, directed rate transitions, and
// the derived pairing and validation views consumed by the editor and
// the simulation boundary.
package kinetic

import "strconv"

// GateStatus represents the conductance of a conformational state.
type GateStatus string

const (
	GateOpen   GateStatus = "open"
	GateClosed GateStatus = "closed"
)

// Canvas geometry shared by the store, the pairing view, and renderers.
const (
	// NodeSize is the side of the square bounding a state glyph.
	// State coordinates address the top-left corner of that square.
	NodeSize = 60.0

	DefaultCanvasWidth  = 800.0
	DefaultCanvasHeight = 600.0
)

// State is a conformational state of the channel, placed on the canvas.
type State struct {
	ID         int        `json:"id"`
	Name       string     `json:"name,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	GateStatus GateStatus `json:"gate_status"`
}

// CenterX returns the horizontal center of the state glyph.
func (s State) CenterX() float64 { return s.X + NodeSize/2 }

// CenterY returns the vertical center of the state glyph.
func (s State) CenterY() float64 { return s.Y + NodeSize/2 }

// Transition is a directed edge carrying a rate-equation reference.
type Transition struct {
	ID             int    `json:"id"`
	From           int    `json:"from"`
	To             int    `json:"to"`
	RateEquationID string `json:"rate_equation_id"`
}

// RateFunction is a reusable rate-equation formula referenced by
// transitions. The editor carries these records verbatim; parsing and
// evaluation happen in the simulation backend.
type RateFunction struct {
	ID       string `json:"id"`
	Equation string `json:"equation"`
}

// Stimulus describes the applied stimulus epoch. Opaque to the graph
// core; forwarded to the simulation backend as-is.
type Stimulus struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Value     float64 `json:"value"`
}

// Parameters holds the simulation run settings.
type Parameters struct {
	TotalTime float64 `json:"total_time"`
	TimeStep  float64 `json:"time_step"`
}

// Model is the aggregate handed to the simulation backend.
type Model struct {
	ModelName     string         `json:"model_name"`
	States        []State        `json:"states"`
	Transitions   []Transition   `json:"transitions"`
	RateFunctions []RateFunction `json:"rate_functions,omitempty"`
	Stimulus      Stimulus       `json:"stimulus"`
	Parameters    Parameters     `json:"parameters"`
}

// StateByID returns the state with the given id, or nil.
func (m *Model) StateByID(id int) *State {
	for i := range m.States {
		if m.States[i].ID == id {
			return &m.States[i]
		}
	}
	return nil
}

// TransitionByID returns the transition with the given id, or nil.
func (m *Model) TransitionByID(id int) *Transition {
	for i := range m.Transitions {
		if m.Transitions[i].ID == id {
			return &m.Transitions[i]
		}
	}
	return nil
}

// DisplayName returns the state's name, falling back to its numeric id.
func (s State) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return strconv.Itoa(s.ID)
}
