package runtime

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Task is one distributed task submission: the kernel to run, the device it
// targets, and the regions it reads and writes. The runtime infers execution
// order from the declared regions; submitters never express ordering
// directly.
type Task struct {
	ID     uuid.UUID
	Kernel string
	Device int
	Reads  []*Buffer
	Writes []*Buffer
	// Run is the in-process kernel body. The real engine dispatches device
	// kernels here; tests substitute deterministic functions.
	Run func() error
}

// Executor is the task-submission contract the engine conforms to. Submit
// never blocks; Sync is the single synchronization point where the step's
// task failures are collected and reported.
type Executor interface {
	// Submit enqueues a task. Tasks on the same device execute in
	// submission order; tasks with a read-after-write dependency on a
	// region observe the writer's result; unrelated tasks may execute in
	// any order.
	Submit(task Task)

	// Sync drains all submitted tasks. If any task failed, the whole step
	// is reported as a single *StepError and the remaining tasks of the
	// step are not run.
	Sync() error
}

// TaskFailure reports a device kernel or distributed task faulting at
// runtime. It is fatal for the in-flight training step.
type TaskFailure struct {
	TaskID uuid.UUID
	Kernel string
	Device int
	Err    error
}

func (f *TaskFailure) Error() string {
	return fmt.Sprintf("task %s (%s, device %d) failed: %v", f.TaskID.String()[:8], f.Kernel, f.Device, f.Err)
}

func (f *TaskFailure) Unwrap() error { return f.Err }

// StepError aggregates the task failures of one training step into the
// single failure reported at the synchronization point. The step has no
// partial-result semantics; recovery is the caller's concern.
type StepError struct {
	Failures []*TaskFailure
}

func (e *StepError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("step failed (%d task failures): %s", len(e.Failures), strings.Join(parts, "; "))
}
