package gallery

// Offset is the pair of cyclic distances between two positions in an
// ordered list of fixed length.
//
// Forward counts the steps moving upward through the list (wrapping at
// the end); Backward counts the steps the other way. For a list of
// length N they always satisfy Forward + Backward == N, so the offset
// from a position to itself is {0, N}.
type Offset struct {
	Forward  int
	Backward int
}

// CalculateOffset computes the offset from one index to another over a
// list of the given length.
//
// Both indices must be in [0, length).
func CalculateOffset(from, to, length int) Offset {
	// Work with the low and high of the pair, then swap the result if
	// the direction was reversed.
	ascending := from <= to
	low, high := from, to
	if !ascending {
		low, high = to, from
	}

	forward := high - low
	backward := length - forward

	if ascending {
		return Offset{Forward: forward, Backward: backward}
	}
	return Offset{Forward: backward, Backward: forward}
}

// InRange reports whether the offset falls within a window of the
// given forward and backward extents.
func (o Offset) InRange(forward, backward int) bool {
	return o.Forward <= forward || o.Backward <= backward
}

// Key produces a total order over offsets in which a forward distance
// beats the equal backward distance, and both beat anything farther:
// forward k maps to 2k, backward k to 2k+1.
func (o Offset) Key() int {
	if o.Forward <= o.Backward {
		return o.Forward * 2
	}
	return o.Backward*2 + 1
}
