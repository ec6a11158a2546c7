package engine

import "github.com/shardflow/shardflow/engine/runtime"

// OpMeta is one partition's runtime state, created by Initialize and owned
// exclusively by the operator instance that created it. No two operators and
// no two partitions ever share a buffer.
type OpMeta struct {
	Partition int
	Device    int

	Output     *runtime.Buffer // this partition's slice of the output tensor
	OutputGrad *runtime.Buffer // gradient w.r.t. the output slice
	Workspace  *runtime.Buffer // kernel scratch, nil when the kind needs none
}

// release frees the partition's buffers back to the pool.
func (m *OpMeta) release(ctx *runtime.Context) {
	ctx.Pool.Release(m.Output)
	ctx.Pool.Release(m.OutputGrad)
	ctx.Pool.Release(m.Workspace)
}
