package task

import "testing"

type fakeScheduler struct {
	enqueued []struct {
		h        Handle
		priority int
	}
}

func (f *fakeScheduler) EnqueueReady(h Handle, priority int) {
	f.enqueued = append(f.enqueued, struct {
		h        Handle
		priority int
	}{h, priority})
}

func TestCreateExhaustsPool(t *testing.T) {
	m := NewManager(2, func(any) {}, nil)
	sched := &fakeScheduler{}
	m.SetReadyEnqueuer(sched)

	h1, ok := m.Create(func(any) {}, nil, 0)
	if !ok || h1 != 0 {
		t.Fatalf("expected first task handle 0, got %v ok=%v", h1, ok)
	}
	h2, ok := m.Create(func(any) {}, nil, 1)
	if !ok || h2 != 1 {
		t.Fatalf("expected second task handle 1, got %v ok=%v", h2, ok)
	}
	if _, ok := m.Create(func(any) {}, nil, 0); ok {
		t.Fatal("expected pool exhaustion to fail Create")
	}
	if len(sched.enqueued) != 2 {
		t.Fatalf("expected 2 ready enqueues from Create, got %d", len(sched.enqueued))
	}
}

func TestSetStateIdempotentNoOp(t *testing.T) {
	m := NewManager(2, func(any) {}, nil)
	sched := &fakeScheduler{}
	m.SetReadyEnqueuer(sched)

	h, _ := m.Create(func(any) {}, nil, 0)
	if got := m.State(h); got != Ready {
		t.Fatalf("expected Ready after Create, got %v", got)
	}

	before := len(sched.enqueued)
	m.SetState(h, Ready) // already Ready: must not re-enqueue
	if len(sched.enqueued) != before {
		t.Fatalf("SetState to same state re-enqueued: before=%d after=%d", before, len(sched.enqueued))
	}
}

func TestIdleNeverEnqueued(t *testing.T) {
	m := NewManager(1, func(any) {}, nil)
	sched := &fakeScheduler{}
	m.SetReadyEnqueuer(sched)

	m.SetState(IdleHandle, Waiting)
	m.SetState(IdleHandle, Ready)
	for _, e := range sched.enqueued {
		if e.h == IdleHandle {
			t.Fatal("idle task must never be enqueued on the scheduler")
		}
	}
}

func TestFIFOOrderAndI1(t *testing.T) {
	m := NewManager(3, func(any) {}, nil)
	a, _ := m.Create(func(any) {}, nil, 0)
	b, _ := m.Create(func(any) {}, nil, 0)
	c, _ := m.Create(func(any) {}, nil, 0)

	var head Handle = None
	m.Enqueue(&head, a)
	m.Enqueue(&head, b)
	m.Enqueue(&head, c)

	for _, want := range []Handle{a, b, c} {
		got, ok := m.Dequeue(&head)
		if !ok || got != want {
			t.Fatalf("FIFO order violated: want %v got %v ok=%v", want, got, ok)
		}
	}
	if head != None {
		t.Fatalf("expected empty list after draining, got head=%v", head)
	}

	// Dequeue must clear next-link so a drained task is linked nowhere.
	d := m.descriptorOf(a)
	if d.next != None {
		t.Fatalf("expected dequeued task's next-link cleared, got %v", d.next)
	}
}

func TestTickWakesOnlyDelayWaiters(t *testing.T) {
	m := NewManager(2, func(any) {}, nil)
	sched := &fakeScheduler{}
	m.SetReadyEnqueuer(sched)

	delayed, _ := m.Create(func(any) {}, nil, 0)
	blocked, _ := m.Create(func(any) {}, nil, 0)

	m.SetState(delayed, Waiting)
	m.SetWaitTicks(delayed, 2)

	m.SetState(blocked, Waiting)
	m.SetWaitTicks(blocked, 0) // blocked on a semaphore instead, per I3

	if woken := m.Tick(); len(woken) != 0 {
		t.Fatalf("tick 1: expected no wakes yet, got %v", woken)
	}
	woken := m.Tick()
	if len(woken) != 1 || woken[0] != delayed {
		t.Fatalf("tick 2: expected delayed task to wake, got %v", woken)
	}
	if got := m.State(delayed); got != Ready {
		t.Fatalf("expected delayed task Ready after its ticks expired, got %v", got)
	}
	if got := m.State(blocked); got != Waiting {
		t.Fatalf("semaphore-blocked task must not be woken by tick, got %v", got)
	}
}
