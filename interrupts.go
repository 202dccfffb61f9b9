package eos

import "github.com/dlova/eos/internal/irq"

// InterruptEntry is a user interrupt service routine.
type InterruptEntry = irq.Entry

// EosHandlerInstall records entry/data for irqNum at priority (0 most
// urgent, irq.MaxPriority least) in the default kernel's interrupt
// registry.
func EosHandlerInstall(irqNum, priority int, entry InterruptEntry, data any) error {
	return Default().HandlerInstall(irqNum, priority, entry, data)
}

// HandlerInstall is the Kernel method EosHandlerInstall delegates to.
// Rejects an out-of-range irqNum or priority with INSTALLING_HANDLER
// rather than silently dropping the handler.
func (k *Kernel) HandlerInstall(irqNum, priority int, entry InterruptEntry, data any) error {
	if err := k.irqs.Install(irqNum, priority, entry, data); err != nil {
		kerr := WrapError("HandlerInstall", err)
		kerr.Kind = KindInstallingHandler
		if k.cfg.OnErrorCallback != nil {
			k.cfg.OnErrorCallback(KindInstallingHandler)
		}
		return kerr
	}
	return nil
}

// EosHandlerRemove clears irqNum's slot in the default kernel's interrupt
// registry.
func EosHandlerRemove(irqNum int) {
	Default().HandlerRemove(irqNum)
}

// HandlerRemove is the Kernel method EosHandlerRemove delegates to.
func (k *Kernel) HandlerRemove(irqNum int) {
	k.irqs.Remove(irqNum)
}

// DispatchIRQ routes irqNum through the interrupt registry's trampoline.
// Test harnesses and the architecture port call this to simulate (or
// deliver) a hardware interrupt.
func (k *Kernel) DispatchIRQ(irqNum int) bool {
	return k.trap.DispatchIRQ(irqNum)
}
