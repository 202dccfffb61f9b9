// Package semaphore implements the kernel's counting semaphores: a fixed
// pool of descriptors, each holding a signed value and a FIFO waiter list
// built from the task package's intrusive next-link primitive — the same
// arena-plus-index shape as the scheduler's ready queues (spec.md §9).
package semaphore

import (
	"sync"

	"github.com/dlova/eos/internal/task"
)

// Handle identifies a semaphore: its index in the fixed pool.
type Handle int

// None is returned by Create when the pool is exhausted.
const None Handle = -1

type descriptor struct {
	mu      sync.Mutex
	value   int
	waiters task.Handle
}

// Waker is implemented by the trap layer: Wake moves a task from WAITING to
// READY (re-enqueuing it on the scheduler) without blocking the caller.
type Waker interface {
	Wake(h task.Handle)
}

// Pool is the fixed-size semaphore arena.
type Pool struct {
	allocMu sync.Mutex
	next    int
	sems    []descriptor

	tasks *task.Manager
	waker Waker
}

// NewPool allocates a pool of n semaphore descriptors.
func NewPool(n int, tasks *task.Manager) *Pool {
	p := &Pool{
		sems:  make([]descriptor, n),
		tasks: tasks,
	}
	for i := range p.sems {
		p.sems[i].waiters = task.None
	}
	return p
}

// SetWaker wires the trap layer in. Must be called once before any Take
// can block.
func (p *Pool) SetWaker(w Waker) {
	p.waker = w
}

// Create allocates the next free semaphore initialized to initial. Returns
// (None, false) when the pool is exhausted (spec error kind
// CREATING_SEMAPHORE).
func (p *Pool) Create(initial int) (Handle, bool) {
	p.allocMu.Lock()
	if p.next >= len(p.sems) {
		p.allocMu.Unlock()
		return None, false
	}
	h := Handle(p.next)
	p.next++
	p.allocMu.Unlock()

	d := &p.sems[h]
	d.mu.Lock()
	d.value = initial
	d.waiters = task.None
	d.mu.Unlock()
	return h, true
}

// Value returns a semaphore's current count, for metrics and tests. It does
// not reflect a task mid-operation.
func (p *Pool) Value(h Handle) int {
	d := &p.sems[h]
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// WaiterLen returns the current length of h's waiter list, for tests
// asserting FIFO fairness and invariant I6.
func (p *Pool) WaiterLen(h Handle) int {
	d := &p.sems[h]
	d.mu.Lock()
	head := d.waiters
	d.mu.Unlock()

	n := 0
	for head != task.None {
		n++
		head = p.tasks.PeekNext(head)
	}
	return n
}

// Take acquires the semaphore for the given task from task context. If the
// value is positive it decrements and returns immediately. Otherwise the
// caller is linked at the tail of the waiter list and set WAITING; Take
// returns immediately in both cases — the kernel's blocking semantics are
// realized by the trap layer suspending the caller's goroutine once Take
// returns having placed it on the waiter list (see internal/trap). The
// return value is always true from task context, matching spec.md §4.4.
func (p *Pool) Take(h Handle, caller task.Handle) bool {
	d := &p.sems[h]
	d.mu.Lock()
	if d.value > 0 {
		d.value--
		d.mu.Unlock()
		return true
	}
	p.tasks.Enqueue(&d.waiters, caller)
	d.mu.Unlock()

	p.tasks.SetState(caller, task.Waiting)
	return true
}

// TakeISR is the non-blocking ISR-context variant: it never links the
// caller into a waiter list. Returns false immediately when the semaphore
// has no units, which queues rely on to detect fullness/emptiness without
// blocking in a handler.
func (p *Pool) TakeISR(h Handle) bool {
	d := &p.sems[h]
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.value > 0 {
		d.value--
		return true
	}
	return false
}

// Give releases the semaphore. If a task is waiting, the FIFO head is
// unlinked and woken directly (re-enqueued on the scheduler at its
// priority) rather than incrementing value — invariant I6 (value > 0 only
// when no waiters). Otherwise value is incremented. Callable from either
// task or ISR context; Give never fails.
func (p *Pool) Give(h Handle) {
	d := &p.sems[h]
	d.mu.Lock()
	woken, ok := p.tasks.Dequeue(&d.waiters)
	if !ok {
		d.value++
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	p.tasks.SetState(woken, task.Ready)
	if p.waker != nil {
		p.waker.Wake(woken)
	}
}
