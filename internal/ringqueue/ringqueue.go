// Package ringqueue implements the kernel's bounded FIFO of fixed-size
// elements, built from a pair of counting semaphores ("slots" and "items")
// exactly as spec.md §4.5 describes. The queue descriptor owns no
// synchronization of its own beyond the two semaphores: all blocking,
// FIFO-fairness, and ISR non-blocking semantics are inherited from
// internal/semaphore.
package ringqueue

import (
	"sync"

	"github.com/dlova/eos/internal/semaphore"
	"github.com/dlova/eos/internal/task"
)

// Handle identifies a queue: its index in the fixed pool.
type Handle int

// None is returned by Create when the pool is exhausted.
const None Handle = -1

type descriptor struct {
	mu        sync.Mutex
	storage   []byte
	elemSize  int
	capacity  int
	giveIndex int
	takeIndex int
	slots     semaphore.Handle
	items     semaphore.Handle
	live      bool
}

// Pool is the fixed-size queue arena. Each queue allocates its two
// semaphores from the shared semaphore pool handed to NewPool.
type Pool struct {
	allocMu sync.Mutex
	next    int
	queues  []descriptor

	sems  *semaphore.Pool
	tasks *task.Manager

	suspend func(h task.Handle)
}

// NewPool allocates a pool of n queue descriptors backed by sems for their
// slots/items semaphores.
func NewPool(n int, sems *semaphore.Pool, tasks *task.Manager) *Pool {
	return &Pool{
		queues: make([]descriptor, n),
		sems:   sems,
		tasks:  tasks,
	}
}

// SetSuspender wires the trap layer in: after a blocking task-context
// Give/Take links the caller onto a semaphore's waiter list, suspend hands
// the CPU back to the scheduling loop exactly as a direct semaphore Take
// would. Must be called once before any task-context Give/Take blocks.
func (p *Pool) SetSuspender(suspend func(h task.Handle)) {
	p.suspend = suspend
}

// Create allocates the next free queue descriptor over storage, which must
// be at least count*elemSize bytes and owned by the caller for the queue's
// lifetime. Creates two semaphores — slots at count, items at 0 — from the
// shared semaphore pool. Fails (returns None, false) when either pool is
// exhausted (spec error kind CREATING_QUEUE).
func (p *Pool) Create(storage []byte, count, elemSize int) (Handle, bool) {
	p.allocMu.Lock()
	if p.next >= len(p.queues) {
		p.allocMu.Unlock()
		return None, false
	}
	h := Handle(p.next)
	p.next++
	p.allocMu.Unlock()

	slots, ok := p.sems.Create(count)
	if !ok {
		return None, false
	}
	items, ok := p.sems.Create(0)
	if !ok {
		return None, false
	}

	d := &p.queues[h]
	d.mu.Lock()
	d.storage = storage
	d.elemSize = elemSize
	d.capacity = count
	d.giveIndex = 0
	d.takeIndex = 0
	d.slots = slots
	d.items = items
	d.live = true
	d.mu.Unlock()
	return h, true
}

// Give copies elemSize bytes from src into the queue from task context,
// blocking the caller if the queue is full. Returns true on success; the
// task-context path never fails once Create succeeded.
func (p *Pool) Give(h Handle, src []byte, caller task.Handle) bool {
	d := &p.queues[h]
	if !p.sems.Take(d.slots, caller) {
		return false
	}
	if p.tasks.State(caller) == task.Waiting && p.suspend != nil {
		p.suspend(caller)
	}
	return p.commitGive(d, src)
}

// GiveISR is the ISR-context variant: returns false immediately, leaving
// the queue unchanged, when the queue is full rather than blocking — spec
// scenario 3 ("queue full from ISR").
func (p *Pool) GiveISR(h Handle, src []byte) bool {
	d := &p.queues[h]
	if !p.sems.TakeISR(d.slots) {
		return false
	}
	return p.commitGive(d, src)
}

func (p *Pool) commitGive(d *descriptor, src []byte) bool {
	d.mu.Lock()
	off := d.giveIndex * d.elemSize
	copy(d.storage[off:off+d.elemSize], src[:d.elemSize])
	d.giveIndex = (d.giveIndex + 1) % d.capacity
	items := d.items
	d.mu.Unlock()

	p.sems.Give(items)
	return true
}

// Take copies the oldest element into dst from task context, blocking the
// caller if the queue is empty.
func (p *Pool) Take(h Handle, dst []byte, caller task.Handle) bool {
	d := &p.queues[h]
	if !p.sems.Take(d.items, caller) {
		return false
	}
	if p.tasks.State(caller) == task.Waiting && p.suspend != nil {
		p.suspend(caller)
	}
	return p.commitTake(d, dst)
}

// TakeISR is the ISR-context variant: returns false immediately, leaving
// the queue unchanged, when the queue is empty.
func (p *Pool) TakeISR(h Handle, dst []byte) bool {
	d := &p.queues[h]
	if !p.sems.TakeISR(d.items) {
		return false
	}
	return p.commitTake(d, dst)
}

func (p *Pool) commitTake(d *descriptor, dst []byte) bool {
	d.mu.Lock()
	off := d.takeIndex * d.elemSize
	copy(dst[:d.elemSize], d.storage[off:off+d.elemSize])
	d.takeIndex = (d.takeIndex + 1) % d.capacity
	slots := d.slots
	d.mu.Unlock()

	p.sems.Give(slots)
	return true
}

// Occupancy returns items.value, the number of fully committed elements
// currently queued. Used by tests and metrics; meaningless mid-operation.
func (p *Pool) Occupancy(h Handle) int {
	d := &p.queues[h]
	d.mu.Lock()
	items := d.items
	d.mu.Unlock()
	return p.sems.Value(items)
}

// Destroy zeroes the descriptor and marks it not live. Create allocates
// descriptors monotonically, so a destroyed descriptor is not handed out
// again. The two contained semaphores are not returned to the semaphore
// pool either.
func (p *Pool) Destroy(h Handle) {
	d := &p.queues[h]
	d.mu.Lock()
	defer d.mu.Unlock()
	d.storage = nil
	d.elemSize = 0
	d.capacity = 0
	d.giveIndex = 0
	d.takeIndex = 0
	d.live = false
}
