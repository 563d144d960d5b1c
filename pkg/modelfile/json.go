// Package modelfile handles kinetic model persistence and diagram
// export. Model files are plain JSON matching the payload the
// simulation backend consumes.
package modelfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/patchclamp/kinedit/pkg/kinetic"
)

// Parse decodes a model from JSON. Missing gate statuses default to
// closed; anything structurally invalid is reported as an error.
func Parse(data []byte) (*kinetic.Model, error) {
	var m kinetic.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}

	seen := make(map[int]bool, len(m.States))
	for i := range m.States {
		s := &m.States[i]
		if s.ID <= 0 {
			return nil, fmt.Errorf("parse model: state %d has non-positive id %d", i, s.ID)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("parse model: duplicate state id %d", s.ID)
		}
		seen[s.ID] = true
		if s.GateStatus == "" {
			s.GateStatus = kinetic.GateClosed
		}
	}

	for i, t := range m.Transitions {
		if t.From == t.To {
			return nil, fmt.Errorf("parse model: transition %d is a self-loop on state %d", i, t.From)
		}
	}

	return &m, nil
}

// Marshal encodes a model to JSON.
func Marshal(m *kinetic.Model, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(m, "", "  ")
	}
	return json.Marshal(m)
}

// LoadFile reads and parses a model file.
func LoadFile(path string) (*kinetic.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// SaveFile writes a model to a file, pretty-printed for hand editing.
func SaveFile(path string, m *kinetic.Model) error {
	data, err := Marshal(m, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
