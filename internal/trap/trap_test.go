package trap

import (
	"testing"
	"time"

	"github.com/dlova/eos/internal/irq"
	"github.com/dlova/eos/internal/port"
	"github.com/dlova/eos/internal/scheduler"
	"github.com/dlova/eos/internal/semaphore"
	"github.com/dlova/eos/internal/task"
)

func newHarness(t *testing.T, nTask, pMax, nSem int, tickPeriod time.Duration) *Trap {
	t.Helper()
	tasks := task.NewManager(nTask, func(any) {}, nil)
	sched := scheduler.New(tasks, pMax)
	tasks.SetReadyEnqueuer(sched)
	sems := semaphore.NewPool(nSem, tasks)
	irqs := irq.NewTable(4)
	prt := port.NewHostPort()

	tr := New(Config{
		Tasks:      tasks,
		Scheduler:  sched,
		Semaphores: sems,
		Interrupts: irqs,
		Port:       prt,
		TickPeriod: tickPeriod,
	})
	return tr
}

func TestPriorityPreemptionScenario(t *testing.T) {
	tr := newHarness(t, 2, 4, 2, 2*time.Millisecond)
	defer tr.Stop()

	var events []string
	evCh := make(chan string, 16)

	tr.CreateTask(func(any) {
		evCh <- "A-run"
		tr.Delay(1) // let B run first tick
		evCh <- "A-resumed"
	}, nil, 1)

	tr.CreateTask(func(any) {
		evCh <- "B-run"
		tr.Delay(10)
		evCh <- "B-resumed"
	}, nil, 0)

	go tr.Run()

	timeout := time.After(2 * time.Second)
	for len(events) < 2 {
		select {
		case e := <-evCh:
			events = append(events, e)
		case <-timeout:
			t.Fatalf("timed out collecting events, got %v", events)
		}
	}

	if events[0] != "B-run" {
		t.Fatalf("expected higher priority task B to run first, got %v", events)
	}
}

func TestYieldCedesToEqualPriorityTask(t *testing.T) {
	tr := newHarness(t, 2, 4, 2, 5*time.Millisecond)
	defer tr.Stop()

	order := make(chan string, 8)
	tr.CreateTask(func(any) {
		order <- "A"
		tr.Yield()
		order <- "A-again"
	}, nil, 2)
	tr.CreateTask(func(any) {
		order <- "B"
	}, nil, 2)

	go tr.Run()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case e := <-order:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected A then B (round robin after yield), got %v", got)
	}
}

func TestSemaphoreHandoffFromISR(t *testing.T) {
	tr := newHarness(t, 1, 4, 1, 5*time.Millisecond)
	defer tr.Stop()

	h, ok := tr.sems.Create(0)
	if !ok {
		t.Fatal("expected semaphore creation to succeed")
	}

	done := make(chan bool, 1)
	tr.CreateTask(func(any) {
		ok := tr.SemTake(h)
		done <- ok
	}, nil, 0)

	tr.irqs.Install(0, 0, func(any) {
		tr.SemGive(h)
	}, nil)

	go tr.Run()

	time.Sleep(20 * time.Millisecond) // let the task reach SemTake and block
	tr.DispatchIRQ(0)

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected SemTake to report true after being given")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for semaphore handoff")
	}
}

func TestDelayInHandlerIsRejected(t *testing.T) {
	tr := newHarness(t, 1, 4, 1, 5*time.Millisecond)
	defer tr.Stop()

	var gotKind ErrorKind
	tr.onError = func(k ErrorKind) { gotKind = k }

	tr.irqs.Install(0, 0, func(any) {
		tr.Delay(5)
	}, nil)

	tr.irqs.Dispatch(0)
	if gotKind != ErrDelayInHandler {
		t.Fatalf("expected DELAY_IN_HANDLER, got %v", gotKind)
	}
}

func TestTickCountAdvances(t *testing.T) {
	tr := newHarness(t, 1, 4, 1, 5*time.Millisecond)
	tr.Tick()
	tr.Tick()
	if got := tr.TickCount(); got != 2 {
		t.Fatalf("expected tick count 2, got %d", got)
	}
}
