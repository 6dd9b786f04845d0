package gallery

import "testing"

func TestCalculateOffset(t *testing.T) {
	tests := []struct {
		name             string
		from, to, length int
		forward          int
		backward         int
	}{
		{"self", 0, 0, 5, 0, 5},
		{"ascending", 1, 3, 5, 2, 3},
		{"descending", 3, 1, 5, 3, 2},
		{"wrap forward", 4, 0, 5, 1, 4},
		{"wrap backward", 0, 4, 5, 4, 1},
		{"adjacent", 2, 3, 5, 1, 4},
		{"length one", 0, 0, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := CalculateOffset(tt.from, tt.to, tt.length)
			if o.Forward != tt.forward || o.Backward != tt.backward {
				t.Errorf("CalculateOffset(%d, %d, %d) = {%d, %d}, want {%d, %d}",
					tt.from, tt.to, tt.length, o.Forward, o.Backward, tt.forward, tt.backward)
			}
			if o.Forward+o.Backward != tt.length {
				t.Errorf("forward %d + backward %d != length %d", o.Forward, o.Backward, tt.length)
			}
		})
	}
}

func TestOffset_InRange(t *testing.T) {
	// Offset from an index to itself is within any window.
	self := CalculateOffset(0, 0, 5)
	if !self.InRange(0, 0) {
		t.Error("self offset should be in range (0, 0)")
	}

	o := CalculateOffset(1, 3, 5) // forward 2, backward 3
	if !o.InRange(2, 0) {
		t.Error("forward 2 should be within forward window 2")
	}
	if o.InRange(1, 0) {
		t.Error("forward 2 should not be within forward window 1")
	}
	if !o.InRange(0, 3) {
		t.Error("backward 3 should be within backward window 3")
	}
	if o.InRange(1, 2) {
		t.Error("offset {2, 3} should not be within window (1, 2)")
	}
}

func TestOffset_Key(t *testing.T) {
	// Forward offsets order strictly before equal backward offsets:
	// forward 2 < backward 2 < forward 3.
	forward2 := Offset{Forward: 2, Backward: 8}
	backward2 := Offset{Forward: 8, Backward: 2}
	forward3 := Offset{Forward: 3, Backward: 7}

	if !(forward2.Key() < backward2.Key()) {
		t.Errorf("forward 2 (key %d) should sort before backward 2 (key %d)",
			forward2.Key(), backward2.Key())
	}
	if !(backward2.Key() < forward3.Key()) {
		t.Errorf("backward 2 (key %d) should sort before forward 3 (key %d)",
			backward2.Key(), forward3.Key())
	}

	// The zero offset sorts before everything.
	zero := Offset{Forward: 0, Backward: 10}
	if zero.Key() != 0 {
		t.Errorf("zero offset key = %d, want 0", zero.Key())
	}
}
