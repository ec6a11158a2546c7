package params

import "fmt"

// ConcatParams configures a concatenation along one axis. All inputs must
// have the same rank and identical dimensions on every non-concat axis.
type ConcatParams struct {
	Axis      int
	NumInputs int
}

func (p ConcatParams) Kind() OpKind { return KindConcat }
func (p ConcatParams) sealed()      {}

func (p ConcatParams) OutputShape(inputs []Shape) (Shape, error) {
	if p.NumInputs < 2 {
		return nil, configErrf(KindConcat, "need at least 2 inputs, configured %d", p.NumInputs)
	}
	if len(inputs) != p.NumInputs {
		return nil, configErrf(KindConcat, "expected %d inputs, got %d", p.NumInputs, len(inputs))
	}
	first := inputs[0]
	if !first.wellFormed() {
		return nil, configErrf(KindConcat, "malformed input shape %s", first)
	}
	if p.Axis < 0 || p.Axis >= len(first) {
		return nil, configErrf(KindConcat, "axis %d out of range for rank %d", p.Axis, len(first))
	}
	out := first.Clone()
	for i, in := range inputs[1:] {
		if len(in) != len(first) || !in.wellFormed() {
			return nil, configErrf(KindConcat, "input %d rank mismatch: %s vs %s", i+1, in, first)
		}
		for d := range in {
			if d == p.Axis {
				continue
			}
			if in[d] != first[d] {
				return nil, configErrf(KindConcat, "input %d dim %d mismatch: %s vs %s", i+1, d, in, first)
			}
		}
		out[p.Axis] += in[p.Axis]
	}
	return out, nil
}

func (p ConcatParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p ConcatParams) Fingerprint() string {
	return fmt.Sprintf("concat(axis=%d,n=%d)", p.Axis, p.NumInputs)
}
