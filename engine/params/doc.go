// Package params defines the closed catalog of operator parameter records.
//
// Each operator kind in the training graph has exactly one record type
// (Conv2DParams, LinearParams, ConcatParams, ElementBinaryParams,
// ReshapeParams, Pool2DParams, SoftmaxParams). Records are immutable
// comparable values: they carry shape/attribute configuration only, never
// tensors or device state, and they fully determine the operator's output
// shape given its input shapes.
//
// The catalog is sealed: OperatorParams has an unexported method, so no
// other package can add a variant. Consumers switch exhaustively over
// AllKinds(); the catalog test constructs one record per kind, which forces
// every switch to be revisited when a kind is added.
package params
