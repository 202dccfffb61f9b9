package eos

// EosWaitDelay blocks the calling task for ticks system ticks. Calling
// this from an interrupt handler is rejected and reported via the error
// callback as DELAY_IN_HANDLER rather than blocking.
func EosWaitDelay(ticks int) {
	Default().WaitDelay(ticks)
}

// WaitDelay is the Kernel method EosWaitDelay delegates to.
func (k *Kernel) WaitDelay(ticks int) {
	k.trap.Delay(ticks)
}

// EosCpuYield cooperatively relinquishes the CPU, requesting rescheduling
// without blocking. Task-context only; from a handler it is rejected and
// reported as YIELD_IN_HANDLER.
func EosCpuYield() {
	Default().CpuYield()
}

// CpuYield is the Kernel method EosCpuYield delegates to.
func (k *Kernel) CpuYield() {
	k.trap.Yield()
}
