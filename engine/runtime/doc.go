// Package runtime defines the task-dependency protocol between the operator
// engine and the distributed runtime, and a deterministic in-process
// executor that implements it.
//
// Submitters declare the regions each task reads and writes; the runtime
// infers ordering from those declarations. Tasks on the same device run in
// submission order, tasks with no shared region may run in any order, and a
// read-after-write dependency on a region is always observed. Submission
// never blocks; failures are collected at Sync and reported as one StepError
// per step.
package runtime
