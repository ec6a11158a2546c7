// Package engine is the operator-execution core of the training engine.
//
// # Reading Guide
//
// Start with these three files:
//   - operator.go: the Operator lifecycle (constructed → initialized →
//     ready → destroyed), shared controller, and the exhaustive factory
//   - tensor.go: tensor descriptors linking producers to consumers
//   - ops.go: the per-kind operator types and their kernel dispatch
//
// A graph builder constructs Operators from params records, Initialize
// allocates one OpMeta per partition of the chosen parallel.Config, and
// Forward/Backward submit region-annotated tasks to a runtime.Executor each
// iteration. MeasureCost scores candidate configs on a simulate.Simulator
// out of band, so a parallelization search can rank layouts before one is
// bound for real execution.
package engine
