package params

import "fmt"

// ElementBinaryOp selects the elementwise binary operation.
type ElementBinaryOp int

const (
	EBAdd ElementBinaryOp = iota
	EBSub
	EBMul
	EBDiv
	EBMax
	EBMin
)

func (op ElementBinaryOp) String() string {
	switch op {
	case EBAdd:
		return "add"
	case EBSub:
		return "sub"
	case EBMul:
		return "mul"
	case EBDiv:
		return "div"
	case EBMax:
		return "max"
	case EBMin:
		return "min"
	}
	return fmt.Sprintf("ebop(%d)", int(op))
}

// ElementBinaryParams configures an elementwise binary operator. Both inputs
// must have exactly the same shape; broadcasting is not supported.
type ElementBinaryParams struct {
	Op ElementBinaryOp
}

func (p ElementBinaryParams) Kind() OpKind { return KindElementBinary }
func (p ElementBinaryParams) sealed()      {}

func (p ElementBinaryParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 2 {
		return nil, configErrf(KindElementBinary, "expected 2 inputs, got %d", len(inputs))
	}
	a, b := inputs[0], inputs[1]
	if !a.wellFormed() || !b.wellFormed() {
		return nil, configErrf(KindElementBinary, "malformed input shapes %s, %s", a, b)
	}
	if !a.Equal(b) {
		return nil, configErrf(KindElementBinary, "shape mismatch: %s vs %s", a, b)
	}
	if p.Op < EBAdd || p.Op > EBMin {
		return nil, configErrf(KindElementBinary, "unknown op %d", int(p.Op))
	}
	return a.Clone(), nil
}

func (p ElementBinaryParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p ElementBinaryParams) Fingerprint() string {
	return fmt.Sprintf("element_binary(op=%s)", p.Op)
}
