package runtime

// Context is the distributed-execution context threaded explicitly through
// every operator lifecycle call. It carries the task-submission API and the
// device memory pool; nothing in the engine reaches for global runtime
// state.
type Context struct {
	Exec Executor
	Pool *MemoryPool

	// RunKernel is the kernel body bound into submitted tasks. The default
	// completes immediately; a real deployment dispatches device kernels
	// here, and tests inject failures.
	RunKernel func(kernel string, device int) error
}

// NewContext builds a context around an executor and a memory pool.
func NewContext(exec Executor, pool *MemoryPool) *Context {
	return &Context{
		Exec: exec,
		Pool: pool,
		RunKernel: func(string, int) error {
			return nil
		},
	}
}
