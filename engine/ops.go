package engine

import (
	"github.com/shardflow/shardflow/engine/params"
)

// One type per operator kind. Each embeds the shared lifecycle controller
// and contributes kernel dispatch: which kernels its tasks name and how much
// workspace those kernels need.

// Conv2D is a 2D convolution node.
type Conv2D struct {
	opCore
	p params.Conv2DParams
}

func newConv2D(name string, p params.Conv2DParams, inputs []*TensorDesc) *Conv2D {
	op := &Conv2D{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Conv2D) forwardKernel() string  { return "conv2d_fwd_im2col" }
func (op *Conv2D) backwardKernel() string { return "conv2d_bwd_im2col" }

// im2col staging buffer: one column per output element.
func (op *Conv2D) workspaceBytes(partOut params.Shape, inputs []params.Shape, dt params.DataType) int64 {
	inC := inputs[0][1]
	cols := int64(partOut.Volume()) * int64(inC/op.p.Groups) * int64(op.p.KernelH*op.p.KernelW)
	return cols * dt.SizeBytes()
}

// Linear is a fully connected node.
type Linear struct {
	opCore
	p params.LinearParams
}

func newLinear(name string, p params.LinearParams, inputs []*TensorDesc) *Linear {
	op := &Linear{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Linear) forwardKernel() string  { return "linear_fwd_gemm" }
func (op *Linear) backwardKernel() string { return "linear_bwd_gemm" }
func (op *Linear) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}

// Concat concatenates its inputs along one axis.
type Concat struct {
	opCore
	p params.ConcatParams
}

func newConcat(name string, p params.ConcatParams, inputs []*TensorDesc) *Concat {
	op := &Concat{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Concat) forwardKernel() string  { return "concat_fwd_copy" }
func (op *Concat) backwardKernel() string { return "concat_bwd_scatter" }
func (op *Concat) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}

// ElementBinary applies an elementwise binary operation.
type ElementBinary struct {
	opCore
	p params.ElementBinaryParams
}

func newElementBinary(name string, p params.ElementBinaryParams, inputs []*TensorDesc) *ElementBinary {
	op := &ElementBinary{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *ElementBinary) forwardKernel() string  { return "ewise_" + op.p.Op.String() + "_fwd" }
func (op *ElementBinary) backwardKernel() string { return "ewise_" + op.p.Op.String() + "_bwd" }
func (op *ElementBinary) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}

// Reshape reinterprets its input with a new shape.
type Reshape struct {
	opCore
	p params.ReshapeParams
}

func newReshape(name string, p params.ReshapeParams, inputs []*TensorDesc) *Reshape {
	op := &Reshape{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Reshape) forwardKernel() string  { return "reshape_fwd_copy" }
func (op *Reshape) backwardKernel() string { return "reshape_bwd_copy" }
func (op *Reshape) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}

// Pool2D is a 2D pooling node.
type Pool2D struct {
	opCore
	p params.Pool2DParams
}

func newPool2D(name string, p params.Pool2DParams, inputs []*TensorDesc) *Pool2D {
	op := &Pool2D{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Pool2D) forwardKernel() string  { return "pool2d_" + op.p.Pool.String() + "_fwd" }
func (op *Pool2D) backwardKernel() string { return "pool2d_" + op.p.Pool.String() + "_bwd" }
func (op *Pool2D) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}

// Softmax normalizes along one axis.
type Softmax struct {
	opCore
	p params.SoftmaxParams
}

func newSoftmax(name string, p params.SoftmaxParams, inputs []*TensorDesc) *Softmax {
	op := &Softmax{p: p}
	op.opCore = newOpCore(name, p, inputs, op)
	return op
}

func (op *Softmax) forwardKernel() string  { return "softmax_fwd" }
func (op *Softmax) backwardKernel() string { return "softmax_bwd" }
func (op *Softmax) workspaceBytes(params.Shape, []params.Shape, params.DataType) int64 {
	return 0
}
