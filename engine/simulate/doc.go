// Package simulate predicts the execution cost of operators under candidate
// parallelization configs before any layout is committed to hardware.
//
// The Simulator replays each operator's analytical kernel profile (FLOPs and
// bytes moved per partition) against a per-device calibration table, applies
// the documented warmup-then-time loop with bounded jitter, and reports a
// CostMetrics record per (operator, config) pair. Unusable candidates fail
// with a MeasurementError the search loop can skip; measurement never
// touches real training state.
package simulate
