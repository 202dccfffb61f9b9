package port

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dlova/eos/internal/logging"
	"github.com/dlova/eos/internal/task"
)

// hostContext is the Context this port hands back from Prepare: a pair of
// unbuffered channels forming the baton a task and the kernel pass back
// and forth. At most one side ever holds it.
type hostContext struct {
	resume chan struct{}
	yield  chan struct{}
}

// HostPort is the concrete port this module runs on. It has no hardware to
// target, so it maps the contract's "save/restore a register frame" onto
// Go's actual preemption primitive: a goroutine per task and a channel
// handoff at every scheduling point. The baton handoff ensures that, as on
// the target single-core part, only one task ever actually executes at a
// time; Start additionally locks the scheduling loop's goroutine to its OS
// thread.
type HostPort struct {
	mu  sync.Mutex
	ctx map[task.Handle]*hostContext

	logger *logging.Logger
}

// NewHostPort constructs a port ready to Prepare tasks.
func NewHostPort() *HostPort {
	return &HostPort{
		ctx:    make(map[task.Handle]*hostContext),
		logger: logging.Default(),
	}
}

// Prepare starts h's goroutine parked waiting for its first turn, and
// returns the baton pair the kernel will Restore against.
func (p *HostPort) Prepare(h task.Handle, entry task.Func, data any) Context {
	hc := &hostContext{
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}

	p.mu.Lock()
	p.ctx[h] = hc
	p.mu.Unlock()

	go p.run(hc, entry, data)
	return hc
}

// run is a task's goroutine body. It never executes until the kernel's
// first Restore, and after entry returns (the task-error sentinel path)
// it parks forever rather than exiting, so a stray Restore against a
// finished task never panics on a closed channel.
func (p *HostPort) run(hc *hostContext, entry task.Func, data any) {
	<-hc.resume
	entry(data)
	for {
		hc.yield <- struct{}{}
		<-hc.resume
	}
}

// Restore hands the baton to ctx's task and blocks until that task yields
// it back at its next scheduling point.
func (p *HostPort) Restore(ctx Context) {
	hc := ctx.(*hostContext)
	hc.resume <- struct{}{}
	<-hc.yield
}

// Suspend hands the baton for h back to whoever is blocked in Restore. It
// must be called from inside h's own goroutine — the trap layer calls it
// on Delay, Yield, a blocking semaphore or queue operation, and each pass
// of the idle loop. Ticks and ISRs do not call it.
func (p *HostPort) Suspend(h task.Handle) {
	p.mu.Lock()
	hc := p.ctx[h]
	p.mu.Unlock()
	if hc == nil {
		return
	}
	hc.yield <- struct{}{}
	<-hc.resume
}

// Start pins the scheduling loop to a single OS thread and, where the host
// supports it, a single CPU — the closest a goroutine-based port can get
// to the target's actual single-core guarantee. Failure to set affinity is
// logged and otherwise ignored: it narrows an assumption, it does not
// violate kernel correctness.
func (p *HostPort) Start(idle Context) {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(0)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		p.logger.Warn("failed to pin scheduling loop to a single CPU", "error", err)
	}
}
