package runtime

import (
	"container/heap"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// pendingTask is one submitted task plus its inferred dependency edges.
type pendingTask struct {
	task       Task
	seq        int
	waiting    int            // unfinished upstream tasks
	dependents []*pendingTask // tasks to release when this one finishes
}

// readyQueue implements heap.Interface and orders runnable tasks by
// submission sequence, which keeps execution deterministic.
type readyQueue []*pendingTask

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return q[i].seq < q[j].seq }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x any)        { *q = append(*q, x.(*pendingTask)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// LocalExecutor is a deterministic in-process Executor. It stands in for the
// distributed runtime: it honors the same region protocol (read-after-write
// and write-after-write on a buffer order the writer first, write-after-read
// waits for prior readers, same-device tasks run in submission order) and
// runs task bodies synchronously inside Sync.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type LocalExecutor struct {
	pending      []*pendingTask
	lastWriter   map[uuid.UUID]*pendingTask
	readersSince map[uuid.UUID][]*pendingTask
	lastOnDevice map[int]*pendingTask
	nextSeq      int
}

// NewLocalExecutor creates an empty executor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{
		lastWriter:   make(map[uuid.UUID]*pendingTask),
		readersSince: make(map[uuid.UUID][]*pendingTask),
		lastOnDevice: make(map[int]*pendingTask),
	}
}

// Submit records the task and infers its dependency edges from the declared
// regions. It never blocks and never runs the task body.
func (e *LocalExecutor) Submit(task Task) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	pt := &pendingTask{task: task, seq: e.nextSeq}
	e.nextSeq++

	edges := make(map[*pendingTask]bool)

	// Same-device tasks execute in submission order.
	if prev := e.lastOnDevice[task.Device]; prev != nil {
		edges[prev] = true
	}
	e.lastOnDevice[task.Device] = pt

	// Read-after-write: wait for the last writer of each read region.
	for _, buf := range task.Reads {
		if w := e.lastWriter[buf.ID]; w != nil {
			edges[w] = true
		}
		e.readersSince[buf.ID] = append(e.readersSince[buf.ID], pt)
	}

	// Write-after-write and write-after-read on each written region.
	for _, buf := range task.Writes {
		if w := e.lastWriter[buf.ID]; w != nil {
			edges[w] = true
		}
		for _, r := range e.readersSince[buf.ID] {
			if r != pt {
				edges[r] = true
			}
		}
		e.lastWriter[buf.ID] = pt
		e.readersSince[buf.ID] = nil
	}

	for up := range edges {
		up.dependents = append(up.dependents, pt)
		pt.waiting++
	}
	e.pending = append(e.pending, pt)
	logrus.Debugf("submit task %s (%s, device %d, deps=%d)",
		task.ID.String()[:8], task.Kernel, task.Device, pt.waiting)
}

// Sync drains the submitted tasks in dependency order. The first task
// failure aborts the rest of the step; all failures observed before the
// abort are reported as one *StepError. The executor is reusable for the
// next step afterwards.
func (e *LocalExecutor) Sync() error {
	ready := readyQueue{}
	for _, pt := range e.pending {
		if pt.waiting == 0 {
			heap.Push(&ready, pt)
		}
	}

	var failures []*TaskFailure
	executed := 0
	for ready.Len() > 0 {
		pt := heap.Pop(&ready).(*pendingTask)
		executed++

		if len(failures) == 0 && pt.task.Run != nil {
			if err := pt.task.Run(); err != nil {
				failures = append(failures, &TaskFailure{
					TaskID: pt.task.ID,
					Kernel: pt.task.Kernel,
					Device: pt.task.Device,
					Err:    err,
				})
				logrus.Warnf("task %s (%s) failed, aborting step", pt.task.ID.String()[:8], pt.task.Kernel)
			}
		}

		for _, dep := range pt.dependents {
			dep.waiting--
			if dep.waiting == 0 {
				heap.Push(&ready, dep)
			}
		}
	}
	logrus.Debugf("sync: %d/%d tasks drained, %d failures", executed, len(e.pending), len(failures))

	e.pending = nil
	e.lastWriter = make(map[uuid.UUID]*pendingTask)
	e.readersSince = make(map[uuid.UUID][]*pendingTask)
	e.lastOnDevice = make(map[int]*pendingTask)

	if len(failures) > 0 {
		return &StepError{Failures: failures}
	}
	return nil
}
