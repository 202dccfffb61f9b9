package irq

import (
	"errors"
	"testing"
)

func TestInstallAndDispatchInvokesEntry(t *testing.T) {
	tab := NewTable(4)
	var called bool
	var gotData any
	if err := tab.Install(2, 1, func(data any) { called = true; gotData = data }, "payload"); err != nil {
		t.Fatalf("expected Install to succeed, got %v", err)
	}

	if !tab.Installed(2) {
		t.Fatal("expected slot 2 installed")
	}
	if got := tab.Priority(2); got != 1 {
		t.Fatalf("expected priority 1 recorded, got %d", got)
	}
	if ok := tab.Dispatch(2); !ok {
		t.Fatal("expected Dispatch to report installed handler ran")
	}
	if !called {
		t.Fatal("expected entry to be invoked")
	}
	if gotData != "payload" {
		t.Fatalf("expected data passed through, got %v", gotData)
	}
}

func TestDispatchUninstalledReturnsFalse(t *testing.T) {
	tab := NewTable(4)
	if ok := tab.Dispatch(1); ok {
		t.Fatal("expected Dispatch on uninstalled slot to return false")
	}
}

func TestRemoveClearsSlot(t *testing.T) {
	tab := NewTable(4)
	tab.Install(0, 0, func(any) {}, nil)
	tab.Remove(0)
	if tab.Installed(0) {
		t.Fatal("expected slot uninstalled after Remove")
	}
	if got := tab.Priority(0); got != 0 {
		t.Fatalf("expected priority reset after Remove, got %d", got)
	}
}

func TestActiveTracksNestingAcrossDispatch(t *testing.T) {
	tab := NewTable(4)
	if tab.Active() {
		t.Fatal("expected not active before any dispatch")
	}

	var activeDuringEntry bool
	tab.Install(0, 0, func(any) { activeDuringEntry = tab.Active() }, nil)
	tab.Dispatch(0)

	if !activeDuringEntry {
		t.Fatal("expected Active() true while entry is running")
	}
	if tab.Active() {
		t.Fatal("expected not active after dispatch returns")
	}
}

func TestActiveTracksNestedDispatch(t *testing.T) {
	tab := NewTable(4)
	var nestedActive bool

	tab.Install(1, 0, func(any) { nestedActive = tab.Active() }, nil)
	tab.Install(0, 0, func(any) { tab.Dispatch(1) }, nil)
	tab.Dispatch(0)

	if !nestedActive {
		t.Fatal("expected Active() true during a nested ISR")
	}
}

func TestOutOfRangeIRQIsNoOp(t *testing.T) {
	tab := NewTable(2)
	if err := tab.Install(5, 0, func(any) {}, nil); !errors.Is(err, ErrIRQOutOfRange) {
		t.Fatalf("expected ErrIRQOutOfRange, got %v", err)
	}
	if tab.Installed(5) {
		t.Fatal("expected out-of-range IRQ to never report installed")
	}
	if ok := tab.Dispatch(5); ok {
		t.Fatal("expected out-of-range dispatch to return false")
	}
}

func TestInstallRejectsOutOfRangePriority(t *testing.T) {
	tab := NewTable(4)
	if err := tab.Install(0, MaxPriority+1, func(any) {}, nil); !errors.Is(err, ErrPriorityOutOfRange) {
		t.Fatalf("expected ErrPriorityOutOfRange, got %v", err)
	}
	if tab.Installed(0) {
		t.Fatal("expected rejected Install to leave the slot uninstalled")
	}
}
