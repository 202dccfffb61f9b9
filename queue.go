package eos

import "github.com/dlova/eos/internal/ringqueue"

// QueueHandle identifies a queue created through EosQueueCreate.
type QueueHandle = ringqueue.Handle

// EosQueueCreate allocates a bounded queue of count elements of elemSize
// bytes each, backed by storage (which must be at least count*elemSize
// bytes and remain valid for the queue's lifetime). Fails when either the
// queue pool or its two semaphores are exhausted, emitting CREATING_QUEUE.
func EosQueueCreate(storage []byte, count, elemSize int) (QueueHandle, bool) {
	return Default().QueueCreate(storage, count, elemSize)
}

// QueueCreate is the Kernel method EosQueueCreate delegates to.
func (k *Kernel) QueueCreate(storage []byte, count, elemSize int) (QueueHandle, bool) {
	h, ok := k.queues.Create(storage, count, elemSize)
	if !ok {
		if k.cfg.OnErrorCallback != nil {
			k.cfg.OnErrorCallback(KindCreatingQueue)
		}
		return ringqueue.None, false
	}
	return h, true
}

// EosQueueGive copies an element into q. From task context it blocks when
// full; from ISR context it returns false immediately instead.
func EosQueueGive(q QueueHandle, src []byte) bool {
	return Default().QueueGive(q, src)
}

// QueueGive is the Kernel method EosQueueGive delegates to.
func (k *Kernel) QueueGive(q QueueHandle, src []byte) bool {
	var ok bool
	if k.irqs.Active() {
		ok = k.queues.GiveISR(q, src)
	} else {
		ok = k.queues.Give(q, src, k.trap.Current())
	}
	k.metrics.RecordQueueGive(!ok)
	return ok
}

// EosQueueTake copies the oldest element out of q into dst. From task
// context it blocks when empty; from ISR context it returns false
// immediately instead.
func EosQueueTake(q QueueHandle, dst []byte) bool {
	return Default().QueueTake(q, dst)
}

// QueueTake is the Kernel method EosQueueTake delegates to.
func (k *Kernel) QueueTake(q QueueHandle, dst []byte) bool {
	var ok bool
	if k.irqs.Active() {
		ok = k.queues.TakeISR(q, dst)
	} else {
		ok = k.queues.Take(q, dst, k.trap.Current())
	}
	k.metrics.RecordQueueTake(!ok)
	return ok
}

// EosQueueDestroy zeroes q's descriptor. The descriptor is not reused by
// later EosQueueCreate calls, and its two semaphores remain reserved.
func EosQueueDestroy(q QueueHandle) {
	Default().QueueDestroy(q)
}

// QueueDestroy is the Kernel method EosQueueDestroy delegates to.
func (k *Kernel) QueueDestroy(q QueueHandle) {
	k.queues.Destroy(q)
}
