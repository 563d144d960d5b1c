package kinetic

import "fmt"

// Report is the result of validating a model's connectivity. It is
// what gates submission to the simulation backend: a model may only be
// submitted while IsValid is true.
type Report struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

// Validate checks that the graph is simulatable: non-empty, with every
// state reachable and leavable through at least one transition. It is
// total and deterministic; it never fails.
func Validate(m *Model) Report {
	if len(m.States) == 0 {
		return Report{Issues: []string{"Model must have at least one state."}}
	}

	exists := make(map[int]bool, len(m.States))
	for _, s := range m.States {
		exists[s.ID] = true
	}

	incoming := make(map[int]int, len(m.States))
	outgoing := make(map[int]int, len(m.States))
	for _, t := range m.Transitions {
		// Dangling transitions carry no connectivity.
		if !exists[t.From] || !exists[t.To] {
			continue
		}
		outgoing[t.From]++
		incoming[t.To]++
	}

	var issues []string
	for _, s := range m.States {
		if incoming[s.ID] < 1 {
			issues = append(issues, fmt.Sprintf("State '%s' needs at least one incoming transition.", s.DisplayName()))
		}
		if outgoing[s.ID] < 1 {
			issues = append(issues, fmt.Sprintf("State '%s' needs at least one outgoing transition.", s.DisplayName()))
		}
	}

	return Report{IsValid: len(issues) == 0, Issues: issues}
}
