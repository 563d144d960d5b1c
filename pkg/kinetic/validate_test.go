package kinetic

import (
	"strings"
	"testing"
)

func TestValidateEmptyModel(t *testing.T) {
	rep := Validate(&Model{})
	if rep.IsValid {
		t.Error("Empty model reported valid")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "Model must have at least one state." {
		t.Errorf("Unexpected issues: %v", rep.Issues)
	}
}

func TestValidateDisconnectedState(t *testing.T) {
	s := NewStore()
	a := s.AddState()
	b := s.AddState()
	s.AddState() // state 3, disconnected
	s.AddTransitionPair(a.ID, b.ID)

	rep := s.Validate()
	if rep.IsValid {
		t.Fatal("Model with a disconnected state reported valid")
	}
	if len(rep.Issues) != 2 {
		t.Fatalf("Expected 2 issues for state 3, got %d: %v", len(rep.Issues), rep.Issues)
	}
	for _, issue := range rep.Issues {
		if !strings.Contains(issue, "'3'") {
			t.Errorf("Issue does not mention state 3: %q", issue)
		}
	}
	if !strings.Contains(rep.Issues[0], "incoming") || !strings.Contains(rep.Issues[1], "outgoing") {
		t.Errorf("Expected incoming and outgoing issues, got %v", rep.Issues)
	}
}

func TestValidateFullyConnectedCycle(t *testing.T) {
	s := NewStore()
	a := s.AddState()
	b := s.AddState()
	c := s.AddState()
	s.AddTransitionPair(a.ID, b.ID)
	s.AddTransitionPair(b.ID, c.ID)
	s.AddTransitionPair(c.ID, a.ID)

	if n := len(s.Model().Transitions); n != 6 {
		t.Fatalf("Expected 6 transitions, got %d", n)
	}
	rep := s.Validate()
	if !rep.IsValid {
		t.Errorf("Cycle reported invalid: %v", rep.Issues)
	}
	if len(rep.Issues) != 0 {
		t.Errorf("Expected no issues, got %v", rep.Issues)
	}
}

func TestValidateAfterCascadeDelete(t *testing.T) {
	s := NewStore()
	a := s.AddState()
	b := s.AddState()
	c := s.AddState()
	s.AddTransitionPair(a.ID, b.ID)
	s.AddTransitionPair(b.ID, c.ID)
	s.AddTransitionPair(c.ID, a.ID)

	s.DeleteState(b.ID)

	// States 1 and 3 remain, connected both ways via the (3,1) pair.
	rep := s.Validate()
	if !rep.IsValid {
		t.Errorf("Remaining two-state cycle reported invalid: %v", rep.Issues)
	}
}

func TestValidateUsesDisplayName(t *testing.T) {
	m := &Model{
		States: []State{{ID: 1, Name: "Open"}},
	}
	rep := Validate(m)
	if rep.IsValid {
		t.Fatal("Lone state reported valid")
	}
	for _, issue := range rep.Issues {
		if !strings.Contains(issue, "'Open'") {
			t.Errorf("Issue does not use display name: %q", issue)
		}
	}
}

func TestValidateIgnoresDanglingTransitions(t *testing.T) {
	// A transition to a missing state must not count as connectivity.
	m := &Model{
		States: []State{{ID: 1}},
		Transitions: []Transition{
			{ID: 1, From: 1, To: 9},
			{ID: 2, From: 9, To: 1},
		},
	}
	rep := Validate(m)
	if rep.IsValid {
		t.Error("Dangling transitions counted as connectivity")
	}
	if len(rep.Issues) != 2 {
		t.Errorf("Expected 2 issues, got %v", rep.Issues)
	}
}
