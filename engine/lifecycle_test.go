package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/params"
	"github.com/shardflow/shardflow/engine/runtime"
	"github.com/shardflow/shardflow/engine/simulate"
)

func testContext(capacity int64) *runtime.Context {
	return runtime.NewContext(runtime.NewLocalExecutor(), runtime.NewMemoryPool(capacity))
}

// newReshapeOp builds a reshape [8,16] -> [128] over a materialized source.
func newReshapeOp(t *testing.T, ctx *runtime.Context) (Operator, *TensorDesc) {
	t.Helper()
	src := NewSource("x", params.Shape{8, 16}, params.Float32)
	srcCfg, err := parallel.DataParallel(2, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, src.Materialize(ctx, srcCfg))

	p, err := params.NewReshapeParams(params.Shape{128})
	require.NoError(t, err)
	op, err := NewOperator("reshape0", p, []*TensorDesc{src})
	require.NoError(t, err)
	return op, src
}

func TestInitialize_HappyPath(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1})
	require.NoError(t, err)

	require.NoError(t, op.Initialize(ctx, cfg))

	assert.Equal(t, StateReady, op.State())
	assert.Equal(t, params.Shape{128}, op.Output().Shape)
	assert.Len(t, op.Output().Data, 2, "one output buffer per partition")
	assert.Len(t, op.Output().Grad, 2)
	assert.Equal(t, 1, op.Output().Data[1].Device)
}

// TestInitialize_NotReenterable verifies the exactly-once contract: a second
// Initialize without Destroy fails fast with AlreadyInitializedError.
func TestInitialize_NotReenterable(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, op.Initialize(ctx, cfg))

	err = op.Initialize(ctx, cfg)

	var alreadyErr *AlreadyInitializedError
	require.ErrorAs(t, err, &alreadyErr)
	assert.Equal(t, "reshape0", alreadyErr.Op)
}

// TestInitialize_InvalidShapes verifies invalid params/shape combinations
// fail with ConfigurationError and allocate nothing.
func TestInitialize_InvalidShapes(t *testing.T) {
	ctx := testContext(0)
	// GIVEN a concat whose inputs disagree on a non-concat axis
	a := NewSource("a", params.Shape{4, 8}, params.Float32)
	b := NewSource("b", params.Shape{5, 8}, params.Float32)
	op, err := NewOperator("concat0", params.ConcatParams{Axis: 1, NumInputs: 2}, []*TensorDesc{a, b})
	require.NoError(t, err)
	cfg, err := parallel.DataParallel(2, []int{0})
	require.NoError(t, err)

	before := ctx.Pool.Used(0)
	err = op.Initialize(ctx, cfg)

	var cfgErr *params.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, StateConstructed, op.State())
	assert.Equal(t, before, ctx.Pool.Used(0), "no partial OpMeta allocation")
}

func TestInitialize_IndivisibleConfig(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1, 2}) // 128 % 3 != 0
	require.NoError(t, err)

	err = op.Initialize(ctx, cfg)

	var cfgErr *params.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

// TestInitialize_AllocationFailureRollsBack verifies a mid-initialization
// allocation failure releases everything already allocated.
func TestInitialize_AllocationFailureRollsBack(t *testing.T) {
	// Pool sized so the source fits but the second partition's buffers
	// cannot all be allocated on device 0.
	ctx := testContext(1600)
	src := NewSource("x", params.Shape{8, 16}, params.Float32)
	srcCfg, err := parallel.DataParallel(2, []int{0, 0})
	require.NoError(t, err)
	require.NoError(t, src.Materialize(ctx, srcCfg)) // 4*256B on device 0

	p, err := params.NewReshapeParams(params.Shape{128})
	require.NoError(t, err)
	op, err := NewOperator("reshape0", p, []*TensorDesc{src})
	require.NoError(t, err)
	cfg, err := parallel.DataParallel(1, []int{0, 0})
	require.NoError(t, err)

	before := ctx.Pool.Used(0)
	err = op.Initialize(ctx, cfg)

	var cfgErr *params.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, StateConstructed, op.State())
	assert.Equal(t, before, ctx.Pool.Used(0), "rollback must release partial allocations")
}

func TestForward_RequiresReady(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)

	err := op.Forward(ctx)

	var lcErr *LifecycleError
	require.ErrorAs(t, err, &lcErr)
	assert.Equal(t, "forward", lcErr.Action)
}

// TestForwardBackward_TaskOrdering runs a two-operator chain and verifies
// the declared regions order B's forward after A's, and backward after
// forward, without any explicit waits.
func TestForwardBackward_TaskOrdering(t *testing.T) {
	ctx := testContext(0)
	var order []string
	ctx.RunKernel = func(kernel string, device int) error {
		order = append(order, fmt.Sprintf("%s@%d", kernel, device))
		return nil
	}

	src := NewSource("x", params.Shape{8, 16}, params.Float32)
	cfg, err := parallel.DataParallel(2, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, src.Materialize(ctx, cfg))

	reshapeParams, err := params.NewReshapeParams(params.Shape{8, 16})
	require.NoError(t, err)
	a, err := NewOperator("a", reshapeParams, []*TensorDesc{src})
	require.NoError(t, err)
	require.NoError(t, a.Initialize(ctx, cfg))

	b, err := NewOperator("b", params.SoftmaxParams{Axis: 1}, []*TensorDesc{a.Output()})
	require.NoError(t, err)
	require.NoError(t, b.Initialize(ctx, cfg))

	// WHEN a forward step and a backward step are submitted and drained
	require.NoError(t, a.Forward(ctx))
	require.NoError(t, b.Forward(ctx))
	require.NoError(t, b.Backward(ctx))
	require.NoError(t, a.Backward(ctx))
	require.NoError(t, ctx.Exec.Sync())

	// THEN per device: a_fwd < b_fwd < b_bwd < a_bwd
	require.Len(t, order, 8, "2 partitions x 4 phases")
	pos := map[string]int{}
	for i, k := range order {
		pos[k] = i
	}
	for dev := 0; dev < 2; dev++ {
		fwdA := pos[fmt.Sprintf("reshape_fwd_copy@%d", dev)]
		fwdB := pos[fmt.Sprintf("softmax_fwd@%d", dev)]
		bwdB := pos[fmt.Sprintf("softmax_bwd@%d", dev)]
		bwdA := pos[fmt.Sprintf("reshape_bwd_copy@%d", dev)]
		assert.Less(t, fwdA, fwdB, "device %d: consumer runs after producer", dev)
		assert.Less(t, fwdB, bwdB, "device %d: backward after forward", dev)
		assert.Less(t, bwdB, bwdA, "device %d: upstream backward waits for grads", dev)
	}
}

// TestForward_KernelFaultAbortsStep verifies a faulting kernel surfaces as a
// single StepError at the synchronization point.
func TestForward_KernelFaultAbortsStep(t *testing.T) {
	ctx := testContext(0)
	fault := errors.New("device fault")
	ctx.RunKernel = func(kernel string, device int) error {
		if device == 1 {
			return fault
		}
		return nil
	}

	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, op.Initialize(ctx, cfg))
	require.NoError(t, op.Forward(ctx))

	err = ctx.Exec.Sync()

	var stepErr *runtime.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Len(t, stepErr.Failures, 1)
	assert.Equal(t, 1, stepErr.Failures[0].Device)
	assert.ErrorIs(t, stepErr.Failures[0], fault)
}

func TestDestroy_EndsLifecycle(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, op.Initialize(ctx, cfg))

	used0 := ctx.Pool.Used(0)
	op.Destroy(ctx)

	assert.Equal(t, StateDestroyed, op.State())
	assert.Less(t, ctx.Pool.Used(0), used0, "OpMeta buffers released")

	var lcErr *LifecycleError
	require.ErrorAs(t, op.Forward(ctx), &lcErr)
	require.ErrorAs(t, op.Initialize(ctx, cfg), &lcErr)
}

// TestMeasureCost_NeverTouchesOpMeta verifies measurement uses scratch
// accounting only: the real pool and lifecycle state are untouched, and an
// unusable candidate is a recoverable MeasurementError.
func TestMeasureCost_NeverTouchesOpMeta(t *testing.T) {
	ctx := testContext(0)
	op, _ := newReshapeOp(t, ctx)
	cfg, err := parallel.DataParallel(1, []int{0, 1})
	require.NoError(t, err)
	require.NoError(t, op.Initialize(ctx, cfg))

	calib, ok := simulate.CalibFor("h100")
	require.True(t, ok)
	sim := simulate.New(calib, 42)
	usedBefore := ctx.Pool.Used(0) + ctx.Pool.Used(1)

	metrics, err := op.MeasureCost(sim, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(512), metrics.MemoryBytes)
	assert.Equal(t, StateReady, op.State())
	assert.Equal(t, usedBefore, ctx.Pool.Used(0)+ctx.Pool.Used(1))

	// An indivisible candidate is recoverable, not fatal.
	bad, err := parallel.DataParallel(1, []int{0, 1, 2})
	require.NoError(t, err)
	_, err = op.MeasureCost(sim, bad)
	var mErr *simulate.MeasurementError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, StateReady, op.State())
}

// TestNewOperator_CoversCatalog verifies the factory switch handles every
// kind in the closed catalog.
func TestNewOperator_CoversCatalog(t *testing.T) {
	reshape, err := params.NewReshapeParams(params.Shape{64})
	require.NoError(t, err)

	records := map[params.OpKind]struct {
		p      params.OperatorParams
		inputs []*TensorDesc
	}{
		params.KindConv2D: {
			params.Conv2DParams{OutChannels: 8, KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1, Groups: 1},
			[]*TensorDesc{NewSource("x", params.Shape{2, 4, 8, 8}, params.Float32)},
		},
		params.KindLinear: {
			params.LinearParams{OutFeatures: 16},
			[]*TensorDesc{NewSource("x", params.Shape{4, 8}, params.Float32)},
		},
		params.KindConcat: {
			params.ConcatParams{Axis: 1, NumInputs: 2},
			[]*TensorDesc{NewSource("a", params.Shape{4, 8}, params.Float32), NewSource("b", params.Shape{4, 8}, params.Float32)},
		},
		params.KindElementBinary: {
			params.ElementBinaryParams{Op: params.EBAdd},
			[]*TensorDesc{NewSource("a", params.Shape{4, 8}, params.Float32), NewSource("b", params.Shape{4, 8}, params.Float32)},
		},
		params.KindReshape: {
			reshape,
			[]*TensorDesc{NewSource("x", params.Shape{8, 8}, params.Float32)},
		},
		params.KindPool2D: {
			params.Pool2DParams{Pool: params.PoolMax, KernelH: 2, KernelW: 2, StrideH: 2, StrideW: 2},
			[]*TensorDesc{NewSource("x", params.Shape{2, 4, 8, 8}, params.Float32)},
		},
		params.KindSoftmax: {
			params.SoftmaxParams{Axis: 1},
			[]*TensorDesc{NewSource("x", params.Shape{4, 8}, params.Float32)},
		},
	}
	require.Len(t, records, len(params.AllKinds()), "every catalog kind needs a factory case")

	for kind, tc := range records {
		op, err := NewOperator(kind.String()+"0", tc.p, tc.inputs)

		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, op.Params().Kind())
		assert.Equal(t, StateConstructed, op.State())
		assert.NotNil(t, op.Output().Shape, "output shape precomputed for valid inputs")
	}
}
