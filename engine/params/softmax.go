package params

import "fmt"

// SoftmaxParams configures a softmax along one axis. Shape-preserving.
type SoftmaxParams struct {
	Axis int
}

func (p SoftmaxParams) Kind() OpKind { return KindSoftmax }
func (p SoftmaxParams) sealed()      {}

func (p SoftmaxParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 1 {
		return nil, configErrf(KindSoftmax, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if !in.wellFormed() {
		return nil, configErrf(KindSoftmax, "malformed input shape %s", in)
	}
	if p.Axis < 0 || p.Axis >= len(in) {
		return nil, configErrf(KindSoftmax, "axis %d out of range for rank %d", p.Axis, len(in))
	}
	return in.Clone(), nil
}

func (p SoftmaxParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p SoftmaxParams) Fingerprint() string {
	return fmt.Sprintf("softmax(axis=%d)", p.Axis)
}
