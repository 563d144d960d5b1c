package kinetic

import "testing"

func TestAllocatorMonotonic(t *testing.T) {
	a := NewIDAllocator()
	prev := 0
	for i := 0; i < 100; i++ {
		id := a.NextStateID()
		if id <= prev {
			t.Fatalf("State id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestAllocatorCountersIndependent(t *testing.T) {
	a := NewIDAllocator()
	if got := a.NextStateID(); got != 1 {
		t.Errorf("First state id %d, want 1", got)
	}
	if got := a.NextTransitionID(); got != 1 {
		t.Errorf("First transition id %d, want 1", got)
	}
	a.NextStateID()
	if got := a.NextTransitionID(); got != 2 {
		t.Errorf("Transition counter affected by state counter: %d", got)
	}
}

func TestAllocatorSeed(t *testing.T) {
	a := NewIDAllocator()
	m := &Model{
		States:      []State{{ID: 5}, {ID: 2}},
		Transitions: []Transition{{ID: 9}},
	}
	a.Seed(m)
	if got := a.NextStateID(); got != 6 {
		t.Errorf("Seeded state id %d, want 6", got)
	}
	if got := a.NextTransitionID(); got != 10 {
		t.Errorf("Seeded transition id %d, want 10", got)
	}

	// Seeding with smaller ids must not move counters backwards.
	a.Seed(&Model{States: []State{{ID: 1}}})
	if got := a.NextStateID(); got != 7 {
		t.Errorf("Seed moved counter backwards: %d", got)
	}
}
