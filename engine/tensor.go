package engine

import (
	"fmt"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/params"
	"github.com/shardflow/shardflow/engine/runtime"
)

// TensorDesc describes one logical tensor flowing between operators: its
// shape and element type, plus the per-partition data and gradient buffers
// published by whoever produces it. Consumers hold references only; the
// producing operator (or the graph layer, for source tensors) owns the
// buffers.
type TensorDesc struct {
	Name  string
	Shape params.Shape
	DType params.DataType

	// Data[p] and Grad[p] are partition p's buffers under Config. Empty
	// until the producer initializes.
	Data   []*runtime.Buffer
	Grad   []*runtime.Buffer
	Config parallel.Config
}

// NewSource creates a graph-input tensor descriptor with no producer.
func NewSource(name string, shape params.Shape, dtype params.DataType) *TensorDesc {
	return &TensorDesc{Name: name, Shape: shape.Clone(), DType: dtype}
}

// Materialize allocates per-partition data and gradient buffers for a source
// tensor. Operator outputs are materialized by their operator's Initialize
// instead.
func (td *TensorDesc) Materialize(ctx *runtime.Context, cfg parallel.Config) error {
	if len(td.Data) > 0 {
		return fmt.Errorf("tensor %q: already materialized", td.Name)
	}
	if !cfg.Divides(td.Shape) {
		return fmt.Errorf("tensor %q: config %s does not divide shape %s", td.Name, cfg.Fingerprint(), td.Shape)
	}
	partBytes := int64(cfg.PartitionShape(td.Shape).Volume()) * td.DType.SizeBytes()
	parts := cfg.NumPartitions()
	for p := 0; p < parts; p++ {
		data, err := ctx.Pool.Allocate(cfg.DeviceFor(p), partBytes)
		if err != nil {
			td.release(ctx)
			return fmt.Errorf("tensor %q: %w", td.Name, err)
		}
		td.Data = append(td.Data, data)
		grad, err := ctx.Pool.Allocate(cfg.DeviceFor(p), partBytes)
		if err != nil {
			td.release(ctx)
			return fmt.Errorf("tensor %q: %w", td.Name, err)
		}
		td.Grad = append(td.Grad, grad)
	}
	td.Config = cfg
	return nil
}

// release frees whatever buffers were allocated so far.
func (td *TensorDesc) release(ctx *runtime.Context) {
	for _, b := range td.Data {
		ctx.Pool.Release(b)
	}
	for _, b := range td.Grad {
		ctx.Pool.Release(b)
	}
	td.Data = nil
	td.Grad = nil
}

// partitionData returns the data buffers a consumer of partition p must
// read: partition p's buffer when the producer used the same partition
// count, otherwise all of them.
func (td *TensorDesc) partitionData(p, parts int) []*runtime.Buffer {
	if len(td.Data) == parts {
		return []*runtime.Buffer{td.Data[p]}
	}
	return td.Data
}

// partitionGrad is partitionData for gradient buffers.
func (td *TensorDesc) partitionGrad(p, parts int) []*runtime.Buffer {
	if len(td.Grad) == parts {
		return []*runtime.Buffer{td.Grad[p]}
	}
	return td.Grad
}
