package params

import "fmt"

// Conv2DParams configures a 2D convolution.
//
// Input shape:  [batch, in_channels, height, width]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding_h - kernel_h) / stride_h + 1
//	out_w = (width + 2*padding_w - kernel_w) / stride_w + 1
//
// The input channel count is read from the input shape; it must be divisible
// by Groups.
type Conv2DParams struct {
	OutChannels int
	KernelH     int
	KernelW     int
	StrideH     int
	StrideW     int
	PaddingH    int
	PaddingW    int
	Groups      int
	UseBias     bool
	Activation  bool
}

func (p Conv2DParams) Kind() OpKind { return KindConv2D }
func (p Conv2DParams) sealed()      {}

func (p Conv2DParams) OutputShape(inputs []Shape) (Shape, error) {
	if len(inputs) != 1 {
		return nil, configErrf(KindConv2D, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if len(in) != 4 || !in.wellFormed() {
		return nil, configErrf(KindConv2D, "expected 4D input [N,C,H,W], got %s", in)
	}
	if p.OutChannels <= 0 || p.KernelH <= 0 || p.KernelW <= 0 || p.StrideH <= 0 || p.StrideW <= 0 {
		return nil, configErrf(KindConv2D, "non-positive kernel/stride/channel attribute")
	}
	if p.PaddingH < 0 || p.PaddingW < 0 {
		return nil, configErrf(KindConv2D, "negative padding")
	}
	groups := p.Groups
	if groups <= 0 {
		return nil, configErrf(KindConv2D, "groups must be positive, got %d", groups)
	}
	if in[1]%groups != 0 || p.OutChannels%groups != 0 {
		return nil, configErrf(KindConv2D, "channels %d/%d not divisible by groups %d", in[1], p.OutChannels, groups)
	}
	outH := (in[2]+2*p.PaddingH-p.KernelH)/p.StrideH + 1
	outW := (in[3]+2*p.PaddingW-p.KernelW)/p.StrideW + 1
	if outH <= 0 || outW <= 0 {
		return nil, configErrf(KindConv2D, "kernel %dx%d does not fit input %s", p.KernelH, p.KernelW, in)
	}
	return Shape{in[0], p.OutChannels, outH, outW}, nil
}

func (p Conv2DParams) IsValid(inputs []Shape) bool { return validOrErr(p, inputs) }

func (p Conv2DParams) Fingerprint() string {
	return fmt.Sprintf("conv2d(oc=%d,k=%dx%d,s=%dx%d,p=%dx%d,g=%d,b=%t,a=%t)",
		p.OutChannels, p.KernelH, p.KernelW, p.StrideH, p.StrideW,
		p.PaddingH, p.PaddingW, p.Groups, p.UseBias, p.Activation)
}
