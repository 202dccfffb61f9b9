package task

import "sync"

// descriptor holds one task's mutable state, guarded by its own mutex —
// the same per-slot critical section shape as the teacher's
// tagStates[tag]/tagMutexes[tag] pair, generalized here from I/O tag state
// to task state.
type descriptor struct {
	mu        sync.Mutex
	state     State
	priority  int
	waitTicks int
	next      Handle
	entry     Func
	data      any
}

// Manager owns the fixed task arena, the dedicated idle descriptor, and the
// monotonic allocation cursor. It is the sole writer of task state and of
// the next-link field used by the scheduler's ready queues and the
// semaphore package's waiter lists (invariant I1).
type Manager struct {
	allocMu sync.Mutex
	next    int
	tasks   []descriptor

	idle descriptor

	curMu   sync.Mutex
	current Handle

	ready ReadyEnqueuer
}

// NewManager allocates a fixed arena of n task descriptors plus one idle
// descriptor running idleEntry. n must be >= 1.
func NewManager(n int, idleEntry Func, idleData any) *Manager {
	m := &Manager{
		tasks:   make([]descriptor, n),
		current: IdleHandle,
	}
	m.idle.state = Ready
	m.idle.entry = idleEntry
	m.idle.data = idleData
	m.idle.next = None
	for i := range m.tasks {
		m.tasks[i].next = None
	}
	return m
}

// SetReadyEnqueuer wires the scheduler into the state machine. Must be
// called once, before any task transitions into Ready.
func (m *Manager) SetReadyEnqueuer(e ReadyEnqueuer) {
	m.ready = e
}

// NTask returns the size of the user task arena (excludes the idle task).
func (m *Manager) NTask() int {
	return len(m.tasks)
}

func (m *Manager) descriptorOf(h Handle) *descriptor {
	if h == IdleHandle {
		return &m.idle
	}
	return &m.tasks[h]
}

// Create allocates the next free descriptor and prepares it to run entry(data)
// at the given priority. Returns (None, false) when the arena is exhausted
// (spec invariant I5: descriptors are allocated monotonically and never
// freed, so a returned handle is valid for the kernel's lifetime).
func (m *Manager) Create(entry Func, data any, priority int) (Handle, bool) {
	m.allocMu.Lock()
	if m.next >= len(m.tasks) {
		m.allocMu.Unlock()
		return None, false
	}
	h := Handle(m.next)
	m.next++
	m.allocMu.Unlock()

	d := m.descriptorOf(h)
	d.mu.Lock()
	d.state = Creating
	d.priority = priority
	d.waitTicks = 0
	d.next = None
	d.entry = entry
	d.data = data
	d.mu.Unlock()

	m.SetState(h, Ready)
	return h, true
}

// SetState is the only way a task's state changes. Transitioning a user
// task into Ready appends it to the scheduler's ready queue for its
// priority; the idle task is never enqueued. Setting a task to the state
// it is already in is a no-op (it does not re-enqueue) — spec §8's
// idempotence property.
func (m *Manager) SetState(h Handle, s State) {
	d := m.descriptorOf(h)

	d.mu.Lock()
	if d.state == s {
		d.mu.Unlock()
		return
	}
	d.state = s
	priority := d.priority
	d.mu.Unlock()

	if s == Ready && h != IdleHandle && m.ready != nil {
		m.ready.EnqueueReady(h, priority)
	}
}

// State returns a task's current state.
func (m *Manager) State(h Handle) State {
	d := m.descriptorOf(h)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Priority returns a task's static priority (0 is highest).
func (m *Manager) Priority(h Handle) int {
	d := m.descriptorOf(h)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.priority
}

// WaitTicks returns the remaining delay ticks for a Waiting task. Only
// meaningful while the task is Waiting on a delay rather than a semaphore
// (invariant I3).
func (m *Manager) WaitTicks(h Handle) int {
	d := m.descriptorOf(h)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waitTicks
}

// SetWaitTicks sets the remaining delay tick count for a task about to
// transition into Waiting on a delay.
func (m *Manager) SetWaitTicks(h Handle, ticks int) {
	d := m.descriptorOf(h)
	d.mu.Lock()
	d.waitTicks = ticks
	d.mu.Unlock()
}

// Entry returns the task's entry function and argument, for the port to
// start or resume the task's goroutine.
func (m *Manager) Entry(h Handle) (Func, any) {
	d := m.descriptorOf(h)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entry, d.data
}

// Current returns the handle of the task the kernel considers RUNNING.
func (m *Manager) Current() Handle {
	m.curMu.Lock()
	defer m.curMu.Unlock()
	return m.current
}

// SetCurrent records which task the kernel considers RUNNING. It does not
// itself change that task's state — the caller (the trap layer) is
// responsible for invariant I2.
func (m *Manager) SetCurrent(h Handle) {
	m.curMu.Lock()
	m.current = h
	m.curMu.Unlock()
}

// Tick decrements WaitTicks on every Waiting task with a nonzero delay,
// promotes any that reach zero to Ready, and returns the handles woken this
// tick. Tasks Waiting on a semaphore (WaitTicks == 0, linked into a waiter
// list instead) are left untouched, per invariant I3.
func (m *Manager) Tick() []Handle {
	var woken []Handle
	for i := range m.tasks {
		h := Handle(i)
		d := &m.tasks[i]

		d.mu.Lock()
		if d.state != Waiting || d.waitTicks <= 0 {
			d.mu.Unlock()
			continue
		}
		d.waitTicks--
		reachedZero := d.waitTicks == 0
		d.mu.Unlock()

		if reachedZero {
			m.SetState(h, Ready)
			woken = append(woken, h)
		}
	}
	return woken
}

// Enqueue appends h to the tail of the intrusive FIFO rooted at *head,
// using the task's own next-link field. It is the sole producer of that
// field alongside Dequeue, enforcing invariant I1 (a task is linked into at
// most one list at a time).
func (m *Manager) Enqueue(head *Handle, h Handle) {
	d := m.descriptorOf(h)
	d.mu.Lock()
	d.next = None
	d.mu.Unlock()

	if *head == None {
		*head = h
		return
	}

	cur := *head
	for {
		cd := m.descriptorOf(cur)
		cd.mu.Lock()
		nxt := cd.next
		if nxt == None {
			cd.next = h
			cd.mu.Unlock()
			return
		}
		cd.mu.Unlock()
		cur = nxt
	}
}

// PeekNext returns h's current next-link without mutating anything. Used
// by read-only length/diagnostic queries over a FIFO (e.g. ready-queue
// depth sampling for metrics) that must not disturb ordering.
func (m *Manager) PeekNext(h Handle) Handle {
	d := m.descriptorOf(h)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

// Dequeue removes and returns the head of the intrusive FIFO rooted at
// *head, clearing the removed task's next-link field (invariant I1).
func (m *Manager) Dequeue(head *Handle) (Handle, bool) {
	if *head == None {
		return None, false
	}
	h := *head
	d := m.descriptorOf(h)

	d.mu.Lock()
	nxt := d.next
	d.next = None
	d.mu.Unlock()

	*head = nxt
	return h, true
}
