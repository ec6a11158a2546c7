package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shardflow/shardflow/engine/parallel"
	"github.com/shardflow/shardflow/engine/params"
	"github.com/shardflow/shardflow/engine/runtime"
	"github.com/shardflow/shardflow/engine/simulate"
)

// LifecycleState tracks an operator through its execution lifecycle.
type LifecycleState string

const (
	// StateConstructed: built by the graph layer, no device state yet.
	StateConstructed LifecycleState = "constructed"
	// StateInitialized: per-partition allocation in progress.
	StateInitialized LifecycleState = "initialized"
	// StateReady: all OpMeta allocated; Forward/Backward may repeat.
	StateReady LifecycleState = "ready"
	// StateDestroyed: device state released; no further transitions.
	StateDestroyed LifecycleState = "destroyed"
)

// CostMetrics is re-exported for callers that never import simulate.
type CostMetrics = simulate.CostMetrics

// Operator is one computation node of the training graph. It owns its
// parameter record and the per-partition OpMeta created at Initialize;
// input tensors are referenced, not owned.
//
// Lifecycle: Initialize exactly once, then Forward/Backward repeatedly,
// then Destroy. MeasureCost is out-of-band: valid in any live state and
// never touches the operator's real OpMeta.
type Operator interface {
	Name() string
	Params() params.OperatorParams
	State() LifecycleState
	Inputs() []*TensorDesc
	Output() *TensorDesc

	// Initialize validates params against input shapes, then allocates one
	// OpMeta per partition of cfg. Fails with *params.ConfigurationError on
	// invalid shapes or allocation failure (nothing partially allocated
	// survives), and with *AlreadyInitializedError when called twice.
	Initialize(ctx *runtime.Context, cfg parallel.Config) error

	// Forward submits one task per partition reading the inputs' regions
	// and writing this partition's output region. It never blocks; ordering
	// is inferred by the runtime from the declared regions.
	Forward(ctx *runtime.Context) error

	// Backward submits one task per partition reading the upstream gradient
	// and this operator's activations, writing the input gradients.
	Backward(ctx *runtime.Context) error

	// MeasureCost scores a candidate config on the simulator. A
	// *simulate.MeasurementError is recoverable: the search loop discards
	// the candidate and continues.
	MeasureCost(sim *simulate.Simulator, cfg parallel.Config) (CostMetrics, error)

	// Destroy releases all OpMeta. The operator cannot be used afterwards.
	Destroy(ctx *runtime.Context)
}

// kernelDispatch is the per-kind half of an operator: kernel names for task
// submission and the workspace its kernels need beyond the output buffer.
type kernelDispatch interface {
	forwardKernel() string
	backwardKernel() string
	workspaceBytes(partOut params.Shape, inputs []params.Shape, dt params.DataType) int64
}

// opCore is the shared lifecycle controller. Per-kind operator types embed
// it and contribute kernel dispatch only.
type opCore struct {
	name     string
	prm      params.OperatorParams
	inputs   []*TensorDesc
	output   *TensorDesc
	state    LifecycleState
	cfg      parallel.Config
	metas    []*OpMeta
	dispatch kernelDispatch
}

func newOpCore(name string, prm params.OperatorParams, inputs []*TensorDesc, dispatch kernelDispatch) opCore {
	dtype := params.Float32
	if len(inputs) > 0 {
		dtype = inputs[0].DType
	}
	out := &TensorDesc{Name: name + ".out", DType: dtype}
	if shape, err := prm.OutputShape(inputShapes(inputs)); err == nil {
		out.Shape = shape
	}
	return opCore{
		name:     name,
		prm:      prm,
		inputs:   inputs,
		output:   out,
		state:    StateConstructed,
		dispatch: dispatch,
	}
}

func inputShapes(inputs []*TensorDesc) []params.Shape {
	shapes := make([]params.Shape, len(inputs))
	for i, in := range inputs {
		shapes[i] = in.Shape
	}
	return shapes
}

func (o *opCore) Name() string                  { return o.name }
func (o *opCore) Params() params.OperatorParams { return o.prm }
func (o *opCore) State() LifecycleState         { return o.state }
func (o *opCore) Inputs() []*TensorDesc         { return o.inputs }
func (o *opCore) Output() *TensorDesc           { return o.output }

func (o *opCore) Initialize(ctx *runtime.Context, cfg parallel.Config) error {
	switch o.state {
	case StateInitialized, StateReady:
		return &AlreadyInitializedError{Op: o.name}
	case StateDestroyed:
		return &LifecycleError{Op: o.name, State: o.state, Action: "initialize"}
	}

	shapes := inputShapes(o.inputs)
	outShape, err := o.prm.OutputShape(shapes)
	if err != nil {
		return err
	}
	if !cfg.Divides(outShape) {
		return &params.ConfigurationError{
			Kind:   o.prm.Kind(),
			Reason: fmt.Sprintf("config %s does not evenly divide output shape %s", cfg.Fingerprint(), outShape),
		}
	}

	o.state = StateInitialized
	partOut := cfg.PartitionShape(outShape)
	partBytes := int64(partOut.Volume()) * o.output.DType.SizeBytes()
	wsBytes := o.dispatch.workspaceBytes(partOut, shapes, o.output.DType)

	parts := cfg.NumPartitions()
	metas := make([]*OpMeta, 0, parts)
	rollback := func() {
		for _, m := range metas {
			m.release(ctx)
		}
		o.state = StateConstructed
	}
	for p := 0; p < parts; p++ {
		meta := &OpMeta{Partition: p, Device: cfg.DeviceFor(p)}
		if meta.Output, err = ctx.Pool.Allocate(meta.Device, partBytes); err == nil {
			meta.OutputGrad, err = ctx.Pool.Allocate(meta.Device, partBytes)
		}
		if err == nil && wsBytes > 0 {
			meta.Workspace, err = ctx.Pool.Allocate(meta.Device, wsBytes)
		}
		if err != nil {
			meta.release(ctx)
			rollback()
			return &params.ConfigurationError{
				Kind:   o.prm.Kind(),
				Reason: fmt.Sprintf("device allocation failed for partition %d: %v", p, err),
			}
		}
		metas = append(metas, meta)
	}

	o.cfg = cfg
	o.metas = metas
	o.output.Shape = outShape
	o.output.Config = cfg
	o.output.Data = make([]*runtime.Buffer, parts)
	o.output.Grad = make([]*runtime.Buffer, parts)
	for p, m := range metas {
		o.output.Data[p] = m.Output
		o.output.Grad[p] = m.OutputGrad
	}
	o.state = StateReady
	logrus.Debugf("operator %q initialized: %d partitions of %s", o.name, parts, partOut)
	return nil
}

func (o *opCore) Forward(ctx *runtime.Context) error {
	if o.state != StateReady {
		return &LifecycleError{Op: o.name, State: o.state, Action: "forward"}
	}
	parts := o.cfg.NumPartitions()
	kernel := o.dispatch.forwardKernel()
	for p, meta := range o.metas {
		var reads []*runtime.Buffer
		for _, in := range o.inputs {
			reads = append(reads, in.partitionData(p, parts)...)
		}
		writes := []*runtime.Buffer{meta.Output}
		if meta.Workspace != nil {
			writes = append(writes, meta.Workspace)
		}
		device := meta.Device
		ctx.Exec.Submit(runtime.Task{
			Kernel: kernel,
			Device: device,
			Reads:  reads,
			Writes: writes,
			Run:    func() error { return ctx.RunKernel(kernel, device) },
		})
	}
	return nil
}

func (o *opCore) Backward(ctx *runtime.Context) error {
	if o.state != StateReady {
		return &LifecycleError{Op: o.name, State: o.state, Action: "backward"}
	}
	parts := o.cfg.NumPartitions()
	kernel := o.dispatch.backwardKernel()
	for p, meta := range o.metas {
		// Reads: upstream gradient plus this partition's activations and
		// the forward inputs the kernel re-reads.
		reads := []*runtime.Buffer{meta.OutputGrad, meta.Output}
		var writes []*runtime.Buffer
		for _, in := range o.inputs {
			reads = append(reads, in.partitionData(p, parts)...)
			writes = append(writes, in.partitionGrad(p, parts)...)
		}
		if meta.Workspace != nil {
			writes = append(writes, meta.Workspace)
		}
		device := meta.Device
		ctx.Exec.Submit(runtime.Task{
			Kernel: kernel,
			Device: device,
			Reads:  reads,
			Writes: writes,
			Run:    func() error { return ctx.RunKernel(kernel, device) },
		})
	}
	return nil
}

func (o *opCore) MeasureCost(sim *simulate.Simulator, cfg parallel.Config) (CostMetrics, error) {
	return sim.Measure(simulate.MeasureSpec{
		Params: o.prm,
		Inputs: inputShapes(o.inputs),
		DType:  o.output.DType,
		Config: cfg,
	})
}

func (o *opCore) Destroy(ctx *runtime.Context) {
	if o.state == StateDestroyed {
		return
	}
	for _, m := range o.metas {
		m.release(ctx)
	}
	o.metas = nil
	o.output.Data = nil
	o.output.Grad = nil
	o.state = StateDestroyed
	logrus.Debugf("operator %q destroyed", o.name)
}

// NewOperator builds the operator for a parameter record. The switch is
// exhaustive over the closed catalog; the catalog test fails when a kind
// has no case here.
func NewOperator(name string, p params.OperatorParams, inputs []*TensorDesc) (Operator, error) {
	switch p := p.(type) {
	case params.Conv2DParams:
		return newConv2D(name, p, inputs), nil
	case params.LinearParams:
		return newLinear(name, p, inputs), nil
	case params.ConcatParams:
		return newConcat(name, p, inputs), nil
	case params.ElementBinaryParams:
		return newElementBinary(name, p, inputs), nil
	case params.ReshapeParams:
		return newReshape(name, p, inputs), nil
	case params.Pool2DParams:
		return newPool2D(name, p, inputs), nil
	case params.SoftmaxParams:
		return newSoftmax(name, p, inputs), nil
	}
	return nil, fmt.Errorf("engine: no operator for params %T", p)
}
