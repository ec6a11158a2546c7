package params

import "fmt"

// LinearParams configures a fully connected layer. The last input axis is the
// feature axis; it is replaced by OutFeatures in the output shape, all
// leading axes are preserved.
type LinearParams struct {
	OutFeatures int
	UseBias     bool
	Activation  bool
}

func (p LinearParams) Kind() OpKind { return KindLinear }
func (p LinearParams) sealed()      {}

func (p LinearParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 1 {
		return nil, configErrf(KindLinear, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if len(in) < 2 || !in.wellFormed() {
		return nil, configErrf(KindLinear, "expected input of rank >= 2, got %s", in)
	}
	if p.OutFeatures <= 0 {
		return nil, configErrf(KindLinear, "out features must be positive, got %d", p.OutFeatures)
	}
	out := in.Clone()
	out[len(out)-1] = p.OutFeatures
	return out, nil
}

func (p LinearParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p LinearParams) Fingerprint() string {
	return fmt.Sprintf("linear(of=%d,b=%t,a=%t)", p.OutFeatures, p.UseBias, p.Activation)
}
