package sequencing

import "testing"

func TestMinimumEmptySliceReturnsFloor(t *testing.T) {
	if got := Minimum(nil, 42); got != 42 {
		t.Fatalf("Minimum(nil, 42) = %d, want 42", got)
	}
}

func TestMinimumPicksSmallest(t *testing.T) {
	sequences := []*Sequence{NewSequence(10), NewSequence(3), NewSequence(7)}
	if got := Minimum(sequences, 100); got != 3 {
		t.Fatalf("Minimum = %d, want 3", got)
	}
}

func TestMinimumFloorWinsWhenSmaller(t *testing.T) {
	sequences := []*Sequence{NewSequence(10), NewSequence(20)}
	if got := Minimum(sequences, 1); got != 1 {
		t.Fatalf("Minimum = %d, want 1 (floor)", got)
	}
}

func TestLog2(t *testing.T) {
	cases := map[int64]uint{1: 0, 2: 1, 8: 3, 1024: 10}
	for n, want := range cases {
		if got := Log2(n); got != want {
			t.Errorf("Log2(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int64]bool{0: false, 1: true, 2: true, 3: false, 1024: true, 1023: false, -4: false}
	for n, want := range cases {
		if got := IsPowerOfTwo(n); got != want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestSequenceGroupEmpty(t *testing.T) {
	g := NewSequenceGroup()
	if got := g.Get(); got != InitialSequenceValue {
		t.Fatalf("empty group Get() = %d, want %d", got, InitialSequenceValue)
	}
	if g.Len() != 0 {
		t.Fatalf("empty group Len() = %d, want 0", g.Len())
	}
}

func TestSequenceGroupMinimum(t *testing.T) {
	a, b, c := NewSequence(5), NewSequence(2), NewSequence(9)
	g := NewSequenceGroup(a, b, c)

	if got := g.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}

	b.Set(100)
	if got := g.Get(); got != 5 {
		t.Fatalf("Get() after b moves ahead = %d, want 5", got)
	}
}

func TestSequenceGroupIsolatedFromCallerSliceMutation(t *testing.T) {
	sequences := []*Sequence{NewSequence(1), NewSequence(2)}
	g := NewSequenceGroup(sequences...)
	sequences[0] = NewSequence(999)

	if got := g.Get(); got != 1 {
		t.Fatalf("Get() = %d, want 1 (group should hold its own copy)", got)
	}
}
