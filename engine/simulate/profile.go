package simulate

import (
	"github.com/shardflow/shardflow/engine/params"
)

// kernelProfile is the analytical work profile of one partition's kernels:
// how many FLOPs it executes and how many bytes it moves, forward and
// backward, plus any workspace the kernel needs beyond its output buffer.
type kernelProfile struct {
	FwdFlops       float64
	BwdFlops       float64
	FwdBytes       float64
	BwdBytes       float64
	WorkspaceBytes int64
}

// profileFor computes the per-partition kernel profile for one operator
// kind. partOut is the per-partition output shape; inputs are the full
// input shapes, whose traffic is assumed evenly split across partitions.
// The switch is exhaustive over the closed catalog.
func profileFor(p params.OperatorParams, inputs []params.Shape, partOut params.Shape, parts int, dt params.DataType) (kernelProfile, error) {
	elem := float64(dt.SizeBytes())
	outVol := float64(partOut.Volume())
	outBytes := outVol * elem

	var inVol float64
	for _, in := range inputs {
		inVol += float64(in.Volume())
	}
	inVol /= float64(parts)
	inBytes := inVol * elem

	var prof kernelProfile
	switch p := p.(type) {
	case params.Conv2DParams:
		inC := inputs[0][1]
		macsPerOut := float64(inC/p.Groups) * float64(p.KernelH*p.KernelW)
		flops := 2 * outVol * macsPerOut
		if p.UseBias {
			flops += outVol
		}
		if p.Activation {
			flops += outVol
		}
		weightBytes := float64(p.OutChannels*(inC/p.Groups)*p.KernelH*p.KernelW) * elem
		prof = kernelProfile{
			FwdFlops: flops,
			BwdFlops: 2 * flops,
			FwdBytes: inBytes + outBytes + weightBytes,
			BwdBytes: 2 * (inBytes + outBytes + weightBytes),
			// im2col staging buffer
			WorkspaceBytes: int64(outVol * macsPerOut * elem),
		}
	case params.LinearParams:
		inF := inputs[0][len(inputs[0])-1]
		flops := 2 * outVol * float64(inF)
		if p.UseBias {
			flops += outVol
		}
		if p.Activation {
			flops += outVol
		}
		weightBytes := float64(inF*p.OutFeatures) * elem
		prof = kernelProfile{
			FwdFlops: flops,
			BwdFlops: 2 * flops,
			FwdBytes: inBytes + outBytes + weightBytes,
			BwdBytes: 2 * (inBytes + outBytes + weightBytes),
		}
	case params.ConcatParams:
		prof = kernelProfile{
			FwdBytes: inBytes + outBytes,
			BwdBytes: inBytes + outBytes,
		}
	case params.ElementBinaryParams:
		prof = kernelProfile{
			FwdFlops: outVol,
			BwdFlops: 2 * outVol,
			FwdBytes: inBytes + outBytes,
			BwdBytes: 2 * (inBytes + outBytes),
		}
	case params.ReshapeParams:
		prof = kernelProfile{
			FwdBytes: inBytes + outBytes,
			BwdBytes: inBytes + outBytes,
		}
	case params.Pool2DParams:
		flops := outVol * float64(p.KernelH*p.KernelW)
		if p.Activation {
			flops += outVol
		}
		prof = kernelProfile{
			FwdFlops: flops,
			BwdFlops: 2 * flops,
			FwdBytes: inBytes + outBytes,
			BwdBytes: 2 * (inBytes + outBytes),
		}
	case params.SoftmaxParams:
		// exp + running max + sum + two normalization passes
		flops := 5 * outVol
		prof = kernelProfile{
			FwdFlops: flops,
			BwdFlops: 2 * flops,
			FwdBytes: inBytes + outBytes,
			BwdBytes: 2 * (inBytes + outBytes),
		}
	default:
		return kernelProfile{}, measureErrf("no kernel profile for kind %s", p.Kind())
	}
	return prof, nil
}
