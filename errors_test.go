package eos

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("TaskCreate", KindCreatingTask, "task pool exhausted")

	if err.Op != "TaskCreate" {
		t.Errorf("expected Op=TaskCreate, got %s", err.Op)
	}
	if err.Kind != KindCreatingTask {
		t.Errorf("expected Kind=CREATING_TASK, got %s", err.Kind)
	}

	want := "eos: TaskCreate: task pool exhausted"
	if got := err.Error(); got != want {
		t.Errorf("expected message %q, got %q", want, got)
	}
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	err := NewError("SemaphoreTake", KindTakingSemaphore, "")
	want := "eos: SemaphoreTake: TAKING_SEMAPHORE"
	if got := err.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := NewError("TaskCreate", KindCreatingTask, "pool A exhausted")
	b := NewError("TaskCreate", KindCreatingTask, "pool B exhausted")
	c := NewError("QueueCreate", KindCreatingQueue, "pool exhausted")

	if !errors.Is(a, b) {
		t.Error("expected two errors of the same kind to match via errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("expected errors of different kinds not to match")
	}
}

func TestWrapErrorPreservesKind(t *testing.T) {
	inner := NewError("SemaphoreTake", KindTakingSemaphore, "empty")
	wrapped := WrapError("QueueTake", inner)

	if wrapped.Op != "QueueTake" {
		t.Errorf("expected Op overwritten to QueueTake, got %s", wrapped.Op)
	}
	if wrapped.Kind != KindTakingSemaphore {
		t.Errorf("expected Kind preserved, got %s", wrapped.Kind)
	}
}

func TestWrapErrorNilReturnsNil(t *testing.T) {
	if WrapError("op", nil) != nil {
		t.Error("expected WrapError(op, nil) to return nil")
	}
}

func TestIsKindHelper(t *testing.T) {
	err := NewError("QueueCreate", KindCreatingQueue, "exhausted")
	if !IsKind(err, KindCreatingQueue) {
		t.Error("expected IsKind to match")
	}
	if IsKind(err, KindCreatingTask) {
		t.Error("expected IsKind not to match a different kind")
	}
	if IsKind(errors.New("plain"), KindCreatingQueue) {
		t.Error("expected IsKind to return false for a non-*Error")
	}
}
