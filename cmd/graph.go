package cmd

import (
	"fmt"

	"github.com/shardflow/shardflow/engine"
	"github.com/shardflow/shardflow/engine/params"
)

// referenceGraph is a small training graph exercising every operator kind in
// the catalog: conv → pool → reshape → linear, an elementwise-add and concat
// against an auxiliary input, and a final softmax.
type referenceGraph struct {
	Sources   []*engine.TensorDesc
	Operators []engine.Operator // topological order
}

func buildReferenceGraph(batch int) (*referenceGraph, error) {
	image := engine.NewSource("image", params.Shape{batch, 3, 32, 32}, params.Float32)
	aux := engine.NewSource("aux", params.Shape{batch, 64}, params.Float32)

	conv, err := engine.NewOperator("conv1", params.Conv2DParams{
		OutChannels: 16,
		KernelH:     3, KernelW: 3,
		StrideH: 1, StrideW: 1,
		PaddingH: 1, PaddingW: 1,
		Groups:  1,
		UseBias: true, Activation: true,
	}, []*engine.TensorDesc{image})
	if err != nil {
		return nil, err
	}

	pool, err := engine.NewOperator("pool1", params.Pool2DParams{
		Pool:    params.PoolMax,
		KernelH: 2, KernelW: 2,
		StrideH: 2, StrideW: 2,
	}, []*engine.TensorDesc{conv.Output()})
	if err != nil {
		return nil, err
	}

	flatten, err := params.NewReshapeParams(params.Shape{batch, 16 * 16 * 16})
	if err != nil {
		return nil, err
	}
	reshape, err := engine.NewOperator("flatten", flatten, []*engine.TensorDesc{pool.Output()})
	if err != nil {
		return nil, err
	}

	linear, err := engine.NewOperator("fc1", params.LinearParams{
		OutFeatures: 64,
		UseBias:     true,
	}, []*engine.TensorDesc{reshape.Output()})
	if err != nil {
		return nil, err
	}

	add, err := engine.NewOperator("residual", params.ElementBinaryParams{Op: params.EBAdd},
		[]*engine.TensorDesc{linear.Output(), aux})
	if err != nil {
		return nil, err
	}

	concat, err := engine.NewOperator("merge", params.ConcatParams{Axis: 1, NumInputs: 2},
		[]*engine.TensorDesc{add.Output(), aux})
	if err != nil {
		return nil, err
	}

	softmax, err := engine.NewOperator("probs", params.SoftmaxParams{Axis: 1},
		[]*engine.TensorDesc{concat.Output()})
	if err != nil {
		return nil, err
	}

	ops := []engine.Operator{conv, pool, reshape, linear, add, concat, softmax}
	for _, op := range ops {
		if op.Output().Shape == nil {
			return nil, fmt.Errorf("operator %q has unresolved output shape", op.Name())
		}
	}
	return &referenceGraph{
		Sources:   []*engine.TensorDesc{image, aux},
		Operators: ops,
	}, nil
}
