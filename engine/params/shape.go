package params

import (
	"fmt"
	"strings"
)

// MaxDims is the maximum tensor rank the engine supports. Parameter records
// that carry a shape inline (ReshapeParams) use fixed-size arrays of this
// length so they stay comparable and usable as map keys.
const MaxDims = 4

// Shape is the dimension list of a tensor, outermost axis first.
// Example: Shape{32, 3, 224, 224} is a 4D batch of images.
type Shape []int

// Volume returns the total element count, or 0 for an empty shape.
func (s Shape) Volume() int {
	if len(s) == 0 {
		return 0
	}
	v := 1
	for _, d := range s {
		v *= d
	}
	return v
}

// Equal reports whether two shapes have identical rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// wellFormed reports whether every dimension is positive and the rank is
// within MaxDims.
func (s Shape) wellFormed() bool {
	if len(s) == 0 || len(s) > MaxDims {
		return false
	}
	for _, d := range s {
		if d <= 0 {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
