package eos

import "github.com/dlova/eos/internal/semaphore"

// SemHandle identifies a semaphore created through EosSemaphoreCreate.
type SemHandle = semaphore.Handle

// EosSemaphoreCreate allocates a counting semaphore initialized to
// initial. Returns (None, false) when the pool is exhausted, emitting
// CREATING_SEMAPHORE.
func EosSemaphoreCreate(initial int) (SemHandle, bool) {
	return Default().SemaphoreCreate(initial)
}

// SemaphoreCreate is the Kernel method EosSemaphoreCreate delegates to.
func (k *Kernel) SemaphoreCreate(initial int) (SemHandle, bool) {
	h, ok := k.sems.Create(initial)
	if !ok {
		if k.cfg.OnErrorCallback != nil {
			k.cfg.OnErrorCallback(KindCreatingSemaphore)
		}
		return semaphore.None, false
	}
	return h, true
}

// EosSemaphoreGive releases sem, waking the longest-waiting blocked task
// if any, from either task or ISR context.
func EosSemaphoreGive(sem SemHandle) {
	Default().SemaphoreGive(sem)
}

// SemaphoreGive is the Kernel method EosSemaphoreGive delegates to.
func (k *Kernel) SemaphoreGive(sem SemHandle) {
	k.trap.SemGive(sem)
	k.metrics.RecordSemaphoreGive()
}

// EosSemaphoreTake acquires sem. From task context it blocks until given
// and always returns true; from ISR context it never blocks, returning
// false immediately when sem has no units (reported as
// TAKING_SEMAPHORE).
func EosSemaphoreTake(sem SemHandle) bool {
	return Default().SemaphoreTake(sem)
}

// SemaphoreTake is the Kernel method EosSemaphoreTake delegates to.
func (k *Kernel) SemaphoreTake(sem SemHandle) bool {
	ok := k.trap.SemTake(sem)
	k.metrics.RecordSemaphoreTake(!ok)
	return ok
}
