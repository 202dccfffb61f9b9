package eos

import (
	"sync"

	"github.com/dlova/eos/internal/port"
	"github.com/dlova/eos/internal/task"
)

// MockPort wraps a real HostPort and records every Prepare/Restore/Suspend
// call, for tests asserting scheduling behavior without depending on
// wall-clock timing of the tick goroutine.
type MockPort struct {
	*port.HostPort

	mu           sync.Mutex
	prepareCalls int
	restoreCalls int
	suspendCalls int
	suspendOrder []task.Handle
}

// NewMockPort constructs a MockPort ready to Prepare tasks.
func NewMockPort() *MockPort {
	return &MockPort{HostPort: port.NewHostPort()}
}

// Prepare implements port.Port, recording the call before delegating.
func (p *MockPort) Prepare(h task.Handle, entry task.Func, data any) port.Context {
	p.mu.Lock()
	p.prepareCalls++
	p.mu.Unlock()
	return p.HostPort.Prepare(h, entry, data)
}

// Restore implements port.Port, recording the call before delegating.
func (p *MockPort) Restore(ctx port.Context) {
	p.mu.Lock()
	p.restoreCalls++
	p.mu.Unlock()
	p.HostPort.Restore(ctx)
}

// Suspend implements port.Suspender, recording the call and the handle
// before delegating.
func (p *MockPort) Suspend(h task.Handle) {
	p.mu.Lock()
	p.suspendCalls++
	p.suspendOrder = append(p.suspendOrder, h)
	p.mu.Unlock()
	p.HostPort.Suspend(h)
}

// Counts returns the number of Prepare/Restore/Suspend calls observed so
// far.
func (p *MockPort) Counts() (prepare, restore, suspend int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prepareCalls, p.restoreCalls, p.suspendCalls
}

// SuspendOrder returns the sequence of task handles that have called
// Suspend, in order, for asserting dispatch ordering.
func (p *MockPort) SuspendOrder() []task.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]task.Handle{}, p.suspendOrder...)
}

// NewTestConfig returns a Config tuned for small, fast tests: a small pool
// and a short tick period. Every hook defaults to nil; tests wire the ones
// they assert on.
func NewTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.NTask = 8
	cfg.PMax = 4
	cfg.NSemaphores = 8
	cfg.NQueues = 2
	return cfg
}
