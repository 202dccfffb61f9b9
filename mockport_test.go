package eos

import (
	"testing"
	"time"

	"github.com/dlova/eos/internal/irq"
	"github.com/dlova/eos/internal/scheduler"
	"github.com/dlova/eos/internal/semaphore"
	"github.com/dlova/eos/internal/task"
	"github.com/dlova/eos/internal/trap"
)

// TestMockPortRecordsSuspendOrder wires MockPort in place of the real
// HostPort directly into a Trap (bypassing Boot, which always builds a
// real HostPort), and asserts that the higher-priority task runs first and
// that the MockPort recorded nonzero Prepare/Restore/Suspend counts and at
// least two entries in SuspendOrder.
func TestMockPortRecordsSuspendOrder(t *testing.T) {
	tasks := task.NewManager(4, func(any) {}, nil)
	sched := scheduler.New(tasks, 4)
	tasks.SetReadyEnqueuer(sched)
	sems := semaphore.NewPool(4, tasks)
	irqs := irq.NewTable(4)

	mp := NewMockPort()

	tr := trap.New(trap.Config{
		Tasks:      tasks,
		Scheduler:  sched,
		Semaphores: sems,
		Interrupts: irqs,
		Port:       mp,
		TickPeriod: 2 * time.Millisecond,
	})
	defer tr.Stop()

	order := make(chan string, 4)
	tr.CreateTask(func(any) {
		order <- "low-run"
		tr.Delay(1)
	}, nil, 1)
	tr.CreateTask(func(any) {
		order <- "high-run"
		tr.Delay(1)
	}, nil, 0)

	go tr.Run()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case e := <-order:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("timed out collecting events, got %v", got)
		}
	}
	if got[0] != "high-run" {
		t.Fatalf("expected higher priority task to run first, got %v", got)
	}

	time.Sleep(20 * time.Millisecond) // let both tasks reach Delay and suspend

	prepare, restore, suspend := mp.Counts()
	if prepare == 0 || restore == 0 || suspend == 0 {
		t.Fatalf("expected nonzero Prepare/Restore/Suspend counts, got %d/%d/%d", prepare, restore, suspend)
	}

	order2 := mp.SuspendOrder()
	if len(order2) < 2 {
		t.Fatalf("expected at least 2 recorded suspends, got %v", order2)
	}
}
