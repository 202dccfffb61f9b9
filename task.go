package eos

import "github.com/dlova/eos/internal/task"

// TaskHandle identifies a task created through EosTaskCreate.
type TaskHandle = task.Handle

// TaskFunc is the body of a task's entry point.
type TaskFunc = task.Func

// EosTaskCreate allocates a task descriptor from the default kernel's
// fixed pool and prepares it to run entry(data) at priority (0 highest).
// Returns (None, false) when the pool is exhausted, emitting
// CREATING_TASK to the error callback.
func EosTaskCreate(entry TaskFunc, data any, priority int) (TaskHandle, bool) {
	return Default().TaskCreate(entry, data, priority)
}

// TaskCreate is the Kernel method EosTaskCreate delegates to.
func (k *Kernel) TaskCreate(entry TaskFunc, data any, priority int) (TaskHandle, bool) {
	return k.trap.CreateTask(entry, data, priority)
}

// TaskState returns a task's current state, for diagnostics and tests.
func (k *Kernel) TaskState(h TaskHandle) task.State {
	return k.tasks.State(h)
}

// TaskCurrent returns the handle the kernel believes is RUNNING.
func (k *Kernel) TaskCurrent() TaskHandle {
	return k.trap.Current()
}
