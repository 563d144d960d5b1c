// Derived pairing view: groups opposite-direction transitions between
// the same two states into a single renderable line with offset label
// anchors for the two rate equations.

package kinetic

import (
	"fmt"
	"math"
	"sort"
)

// LabelOffset is the distance from the line midpoint to each rate
// label anchor, along the unit normal.
const LabelOffset = 14.0

// Line is the merged bidirectional view of up to two opposite-direction
// transitions between one unordered state pair.
type Line struct {
	Key string // "min-max" pair key

	// Endpoint state centers. (X1,Y1) belongs to the lower-id state.
	X1, Y1 float64
	X2, Y2 float64

	// Midpoint and unit normal (90° rotation of the direction vector).
	MidX, MidY float64
	NX, NY     float64

	// Label anchors: Top for the forward rate, Bottom for the backward.
	TopX, TopY       float64
	BottomX, BottomY float64

	// Forward runs from the lower-id state to the higher-id state.
	// Either may be nil when only one direction exists.
	Forward  *Transition
	Backward *Transition
}

// ComputePairing derives the line view from the current states and
// transitions. It is a pure function: idempotent, independent of
// insertion order, and tolerant of transitions whose endpoints have
// disappeared (those groups are skipped).
func ComputePairing(states []State, transitions []Transition) []Line {
	byID := make(map[int]State, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}

	type group struct {
		lo, hi            int
		forward, backward *Transition
	}
	groups := make(map[string]*group)

	for i := range transitions {
		t := &transitions[i]
		lo, hi := t.From, t.To
		if lo > hi {
			lo, hi = hi, lo
		}
		key := fmt.Sprintf("%d-%d", lo, hi)
		g := groups[key]
		if g == nil {
			g = &group{lo: lo, hi: hi}
			groups[key] = g
		}
		if t.From <= t.To {
			g.forward = t
		} else {
			g.backward = t
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]Line, 0, len(groups))
	for _, key := range keys {
		g := groups[key]
		a, ok1 := byID[g.lo]
		b, ok2 := byID[g.hi]
		if !ok1 || !ok2 {
			continue
		}

		l := Line{
			Key:      key,
			X1:       a.CenterX(),
			Y1:       a.CenterY(),
			X2:       b.CenterX(),
			Y2:       b.CenterY(),
			Forward:  g.forward,
			Backward: g.backward,
		}
		l.MidX = (l.X1 + l.X2) / 2
		l.MidY = (l.Y1 + l.Y2) / 2

		dx := l.X2 - l.X1
		dy := l.Y2 - l.Y1
		length := math.Hypot(dx, dy)
		if length < 1 {
			// Coincident states: keep the normal well-defined.
			length = 1
		}
		l.NX = -dy / length
		l.NY = dx / length

		l.TopX = l.MidX + l.NX*LabelOffset
		l.TopY = l.MidY + l.NY*LabelOffset
		l.BottomX = l.MidX - l.NX*LabelOffset
		l.BottomY = l.MidY - l.NY*LabelOffset

		lines = append(lines, l)
	}
	return lines
}
