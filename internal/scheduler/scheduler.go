// Package scheduler implements the fixed-priority round-robin ready queues
// described in spec.md §4.2: one FIFO per priority level, user priority 0
// is highest, and Schedule returns the idle task when every level is empty.
package scheduler

import (
	"sync"

	"github.com/dlova/eos/internal/task"
)

// Scheduler holds one ready-queue head per internal priority level and a
// reference to the manager that owns the intrusive FIFO links.
type Scheduler struct {
	mu      sync.Mutex
	pMax    int
	heads   []task.Handle
	tasks   *task.Manager
	idle    task.Handle
}

// New creates a scheduler with pMax priority levels (1..16, user priority 0
// is highest) backed by the given task manager.
func New(tasks *task.Manager, pMax int) *Scheduler {
	heads := make([]task.Handle, pMax)
	for i := range heads {
		heads[i] = task.None
	}
	return &Scheduler{
		pMax:  pMax,
		heads: heads,
		tasks: tasks,
		idle:  task.IdleHandle,
	}
}

// level maps a user priority (0 = highest) to the internal queue index.
func (s *Scheduler) level(priority int) int {
	return s.pMax - 1 - priority
}

// EnqueueReady implements task.ReadyEnqueuer: it appends h to the ready
// queue for priority, via the task manager's intrusive FIFO.
func (s *Scheduler) EnqueueReady(h task.Handle, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl := s.level(priority)
	s.tasks.Enqueue(&s.heads[lvl], h)
}

// Schedule scans internal levels from pMax-1 (user priority 0) down to 0
// and returns the head of the first non-empty level (round-robin within
// that level), or the idle handle if every level is empty. Schedule does
// not itself change any task's state — the caller (the trap layer) sets
// RUNNING.
func (s *Scheduler) Schedule() task.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	for lvl := s.pMax - 1; lvl >= 0; lvl-- {
		if h, ok := s.tasks.Dequeue(&s.heads[lvl]); ok {
			return h
		}
	}
	return s.idle
}

// ReadyDepth returns the total number of READY tasks across every priority
// level, for metrics sampling.
func (s *Scheduler) ReadyDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for lvl := range s.heads {
		h := s.heads[lvl]
		seen := make(map[task.Handle]bool)
		for h != task.None && !seen[h] {
			seen[h] = true
			total++
			h = s.tasks.PeekNext(h)
		}
	}
	return total
}

// ReadyLen returns the number of tasks currently queued at a user
// priority level. Used by metrics sampling and by tests asserting ready
// queue invariants; it does not mutate scheduler state.
func (s *Scheduler) ReadyLen(priority int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	lvl := s.level(priority)
	n := 0
	h := s.heads[lvl]
	seen := make(map[task.Handle]bool)
	for h != task.None && !seen[h] {
		seen[h] = true
		n++
		// Peek without mutating: walk via a throwaway dequeue/enqueue pair
		// would disturb ordering, so ReadyLen instead asks the manager for
		// the link directly through a read-only accessor.
		h = s.tasks.PeekNext(h)
	}
	return n
}
