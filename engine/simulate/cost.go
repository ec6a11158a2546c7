package simulate

import "fmt"

// CostMetrics is the measured cost of running one operator under one
// parallelization candidate. It has no identity beyond the
// (operator, config) pair that produced it and is safe to cache.
type CostMetrics struct {
	ForwardTime  float64 // microseconds per forward pass
	BackwardTime float64 // microseconds per backward pass
	SyncTime     float64 // microseconds of cross-partition gradient sync
	MemoryBytes  int64   // total bytes across all partitions
}

// Total returns forward + backward + sync time in microseconds.
func (c CostMetrics) Total() float64 {
	return c.ForwardTime + c.BackwardTime + c.SyncTime
}

func (c CostMetrics) String() string {
	return fmt.Sprintf("cost(fwd=%.2fus, bwd=%.2fus, sync=%.2fus, mem=%dB)",
		c.ForwardTime, c.BackwardTime, c.SyncTime, c.MemoryBytes)
}

// MeasurementError reports a candidate config that is structurally unusable
// for cost estimation (for example, a partition count that does not divide
// the operator's shape). It is a recoverable signal: the search loop should
// discard the candidate and continue. It never reaches real training.
type MeasurementError struct {
	Reason string
}

func (e *MeasurementError) Error() string {
	return "measurement rejected: " + e.Reason
}

func measureErrf(format string, args ...any) error {
	return &MeasurementError{Reason: fmt.Sprintf(format, args...)}
}
