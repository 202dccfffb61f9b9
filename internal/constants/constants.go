package constants

import "time"

// Default configuration constants
const (
	// DefaultNTask is the default size of the task descriptor pool.
	DefaultNTask = 8

	// DefaultStackSize is the default per-task stack size hint in bytes.
	// Go goroutine stacks grow dynamically and are managed by the runtime;
	// this value is retained for config compatibility with the
	// microcontroller original and for bounds validation only.
	DefaultStackSize = 512

	// DefaultPMax is the default number of distinct task priorities.
	DefaultPMax = 4

	// DefaultNSemaphores is the default size of the semaphore pool.
	DefaultNSemaphores = 16

	// DefaultNQueues is the default size of the queue descriptor pool.
	DefaultNQueues = 4

	// MinNTask is the minimum allowed task pool size.
	MinNTask = 2

	// MinStackSize is the minimum allowed stack size hint.
	MinStackSize = 128

	// MaxPMax is the maximum number of priority levels.
	MaxPMax = 16

	// MaxPoolSize bounds the semaphore and queue pools.
	MaxPoolSize = 64

	// NoLink is the sentinel "not linked into any FIFO" value for a task's
	// next-link field, and the sentinel "empty" head value for a FIFO.
	NoLink = -1

	// DefaultNIRQ is the default size of the interrupt handler table.
	DefaultNIRQ = 32
)

// DefaultTickPeriod mirrors the design default from the original firmware
// (200 microseconds). Driving a host-process goroutine at 200us is not a
// hard real-time guarantee the way a hardware timer interrupt is; the trap
// layer exposes Tick so in-module tests can drive ticks directly instead of
// relying on the wall-clock ticker.
const (
	DefaultTickPeriod = 200 * time.Microsecond
)
