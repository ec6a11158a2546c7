package params

import "fmt"

// PoolType selects the pooling reduction.
type PoolType int

const (
	PoolMax PoolType = iota
	PoolAvg
)

func (t PoolType) String() string {
	switch t {
	case PoolMax:
		return "max"
	case PoolAvg:
		return "avg"
	}
	return fmt.Sprintf("pool(%d)", int(t))
}

// Pool2DParams configures a 2D pooling layer. Channels are preserved; the
// spatial output size follows the same formula as Conv2D.
type Pool2DParams struct {
	Pool       PoolType
	KernelH    int
	KernelW    int
	StrideH    int
	StrideW    int
	PaddingH   int
	PaddingW   int
	Activation bool
}

func (p Pool2DParams) Kind() OpKind { return KindPool2D }
func (p Pool2DParams) sealed()      {}

func (p Pool2DParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 1 {
		return nil, configErrf(KindPool2D, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if len(in) != 4 || !in.wellFormed() {
		return nil, configErrf(KindPool2D, "expected 4D input [N,C,H,W], got %s", in)
	}
	if p.KernelH <= 0 || p.KernelW <= 0 || p.StrideH <= 0 || p.StrideW <= 0 {
		return nil, configErrf(KindPool2D, "non-positive kernel/stride attribute")
	}
	if p.PaddingH < 0 || p.PaddingW < 0 {
		return nil, configErrf(KindPool2D, "negative padding")
	}
	outH := (in[2]+2*p.PaddingH-p.KernelH)/p.StrideH + 1
	outW := (in[3]+2*p.PaddingW-p.KernelW)/p.StrideW + 1
	if outH <= 0 || outW <= 0 {
		return nil, configErrf(KindPool2D, "kernel %dx%d does not fit input %s", p.KernelH, p.KernelW, in)
	}
	return Shape{in[0], in[1], outH, outW}, nil
}

func (p Pool2DParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p Pool2DParams) Fingerprint() string {
	return fmt.Sprintf("pool2d(t=%s,k=%dx%d,s=%dx%d,p=%dx%d,a=%t)",
		p.Pool, p.KernelH, p.KernelW, p.StrideH, p.StrideW, p.PaddingH, p.PaddingW, p.Activation)
}
