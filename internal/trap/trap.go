// Package trap implements the syscall and trap layer of spec.md §4.3: tick
// handling, supervisor-trap dispatch of DELAY/YIELD/SEM_GIVE/SEM_TAKE
// (discriminating task context from ISR context via the interrupt
// registry's nesting counter), and the pendable context-switch request
// that coalesces a burst of wakeups into a single scheduling decision.
package trap

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dlova/eos/internal/irq"
	"github.com/dlova/eos/internal/logging"
	"github.com/dlova/eos/internal/port"
	"github.com/dlova/eos/internal/scheduler"
	"github.com/dlova/eos/internal/semaphore"
	"github.com/dlova/eos/internal/task"
)

// ErrorKind names one of the context-violation or allocation failures
// spec.md §7 and §6 require the kernel to surface to the user error
// callback.
type ErrorKind string

const (
	ErrCreatingTask      ErrorKind = "CREATING_TASK"
	ErrCreatingSemaphore ErrorKind = "CREATING_SEMAPHORE"
	ErrCreatingQueue     ErrorKind = "CREATING_QUEUE"
	ErrTakingSemaphore   ErrorKind = "TAKING_SEMAPHORE"
	ErrDelayInHandler    ErrorKind = "DELAY_IN_HANDLER"
	ErrYieldInHandler    ErrorKind = "YIELD_IN_HANDLER"
)

// Observer receives scheduling events for metrics collection. A pared-down
// view of the root package's Observer so this package isn't forced to
// import back up to it; any eos.Observer-typed value satisfies this too,
// since its method set is a superset.
type Observer interface {
	ObserveContextSwitch(preempted bool)
	ObserveTick()
	ObserveReadyDepth(depth uint32)
}

type noOpObserver struct{}

func (noOpObserver) ObserveContextSwitch(bool) {}
func (noOpObserver) ObserveTick()              {}
func (noOpObserver) ObserveReadyDepth(uint32)  {}

// Trap owns the scheduling loop and every path that can request it run
// again. It is the sole caller of the port's Restore/Suspend pair.
type Trap struct {
	tasks *task.Manager
	sched *scheduler.Scheduler
	sems  *semaphore.Pool
	irqs  *irq.Table
	prt   port.Port
	susp  port.Suspender

	ctxMu sync.Mutex
	ctx   map[task.Handle]port.Context

	switchRequested atomic.Bool
	tickCount       atomic.Int64

	mu         sync.Mutex
	current    task.Handle
	running    bool
	sysTick    func()
	inactive   func()
	endTask    func(task.Handle)
	onError    func(ErrorKind)
	tickPeriod time.Duration
	stopTick   chan struct{}

	logger *logging.Logger
	obs    Observer
}

// Config bundles the collaborators and user hooks a Trap is built from.
type Config struct {
	Tasks      *task.Manager
	Scheduler  *scheduler.Scheduler
	Semaphores *semaphore.Pool
	Interrupts *irq.Table
	Port       port.Port
	TickPeriod time.Duration

	SysTickCallback  func()
	InactiveCallback func()
	EndTaskCallback  func(task.Handle)
	OnErrorCallback  func(ErrorKind)

	Observer Observer
}

// New builds a Trap. Port must also implement port.Suspender — every port
// this module ships does, since none of them have a real hardware pendable
// exception to drive the switch instead.
func New(cfg Config) *Trap {
	susp, _ := cfg.Port.(port.Suspender)
	t := &Trap{
		tasks:      cfg.Tasks,
		sched:      cfg.Scheduler,
		sems:       cfg.Semaphores,
		irqs:       cfg.Interrupts,
		prt:        cfg.Port,
		susp:       susp,
		ctx:        make(map[task.Handle]port.Context),
		current:    task.IdleHandle,
		sysTick:    cfg.SysTickCallback,
		inactive:   cfg.InactiveCallback,
		endTask:    cfg.EndTaskCallback,
		onError:    cfg.OnErrorCallback,
		tickPeriod: cfg.TickPeriod,
		stopTick:   make(chan struct{}),
		logger:     logging.Default(),
		obs:        cfg.Observer,
	}
	if t.obs == nil {
		t.obs = noOpObserver{}
	}
	if t.sysTick == nil {
		t.sysTick = func() {}
	}
	if t.inactive == nil {
		t.inactive = func() {}
	}
	if t.endTask == nil {
		t.endTask = func(task.Handle) {}
	}
	if t.onError == nil {
		t.onError = func(ErrorKind) {}
	}
	cfg.Semaphores.SetWaker(t)
	return t
}

// CreateTask allocates a descriptor and prepares its execution context.
// Returns (None, false) on pool exhaustion, emitting CREATING_TASK.
func (t *Trap) CreateTask(entry task.Func, data any, priority int) (task.Handle, bool) {
	wrapped := t.wrapEntry(entry)
	h, ok := t.tasks.Create(wrapped, data, priority)
	if !ok {
		t.logger.Error("task creation failed", "priority", priority)
		t.onError(ErrCreatingTask)
		return task.None, false
	}
	ctx := t.prt.Prepare(h, wrapped, data)
	t.ctxMu.Lock()
	t.ctx[h] = ctx
	t.ctxMu.Unlock()
	t.logger.Debug("task created", "task", h, "priority", priority)
	return h, true
}

// wrapEntry installs the task-error sentinel: a task returning from its
// entry function is observed by the kernel rather than silently exiting.
func (t *Trap) wrapEntry(entry task.Func) task.Func {
	return func(data any) {
		entry(data)
		t.mu.Lock()
		h := t.current
		t.mu.Unlock()
		t.tasks.SetState(h, task.Creating)
		t.endTask(h)
	}
}

// bootIdle prepares the idle descriptor's context — a loop invoking the
// inactive callback and handing the CPU back each pass — and primes the
// port. Must be called once before Run.
func (t *Trap) bootIdle() {
	idle := func(any) {
		for {
			t.inactive()
			t.susp.Suspend(task.IdleHandle)
		}
	}
	ctx := t.prt.Prepare(task.IdleHandle, idle, nil)
	t.ctxMu.Lock()
	t.ctx[task.IdleHandle] = ctx
	t.ctxMu.Unlock()
	t.prt.Start(ctx)
}

// RequestSwitch latches a pendable context-switch request. Safe to call
// from task or ISR context; redundant calls within one burst coalesce.
func (t *Trap) RequestSwitch() {
	t.switchRequested.Store(true)
}

// Wake implements semaphore.Waker: a released waiter always needs the
// scheduler consulted again, so this simply requests a switch. The actual
// re-enqueue already happened via task.SetState inside semaphore.Give.
func (t *Trap) Wake(h task.Handle) {
	t.RequestSwitch()
}

// Tick is the periodic tick trap: wake expired delay-waiters, invoke the
// user tick callback, and request a switch. Called by the ticker goroutine
// Run starts, but exposed directly so tests can drive ticks deterministically.
func (t *Trap) Tick() {
	n := t.tickCount.Add(1)
	t.tasks.Tick()
	t.sysTick()
	t.RequestSwitch()
	t.obs.ObserveTick()
	t.logger.Debug("tick", "count", n)
}

// TickCount returns the number of ticks processed so far.
func (t *Trap) TickCount() int64 {
	return t.tickCount.Load()
}

// SwitchPending reports whether a context switch has been requested and
// not yet serviced. Exposed for tests and metrics; Run clears it itself.
func (t *Trap) SwitchPending() bool {
	return t.switchRequested.Load()
}

// Run is the pendable context-switch trap's home: it repeatedly restores
// the current task, and when that task relinquishes the CPU at a
// scheduling point, demotes it if still RUNNING, asks the scheduler for
// the next task, and restores that one instead. It never returns.
func (t *Trap) Run() {
	t.bootIdle()

	t.mu.Lock()
	t.running = true
	t.mu.Unlock()

	go t.tickLoop()

	t.tasks.SetState(task.IdleHandle, task.Running)
	t.mu.Lock()
	t.current = task.IdleHandle
	t.mu.Unlock()

	for {
		t.ctxMu.Lock()
		ctx := t.ctx[t.current]
		t.ctxMu.Unlock()

		t.prt.Restore(ctx)

		t.switchRequested.Store(false)
		preempted := t.tasks.State(t.current) == task.Running
		if preempted {
			t.tasks.SetState(t.current, task.Ready)
		}
		next := t.sched.Schedule()
		t.tasks.SetState(next, task.Running)
		t.tasks.SetCurrent(next)
		t.mu.Lock()
		prev := t.current
		t.current = next
		t.mu.Unlock()
		if next != prev {
			t.logger.Debug("context switch", "from", prev, "to", next)
			t.obs.ObserveContextSwitch(preempted)
			t.obs.ObserveReadyDepth(uint32(t.sched.ReadyDepth()))
		}
	}
}

func (t *Trap) tickLoop() {
	ticker := time.NewTicker(t.tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Tick()
		case <-t.stopTick:
			return
		}
	}
}

// Stop halts the periodic tick goroutine. The scheduling loop itself is
// not stoppable, matching EosStartScheduler's "never returns" contract.
func (t *Trap) Stop() {
	close(t.stopTick)
}

// Current returns the handle the trap layer believes is RUNNING.
func (t *Trap) Current() task.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// suspendCurrent is the common tail of every task-context syscall: hand
// the CPU back to Run so it can re-evaluate Schedule().
func (t *Trap) suspendCurrent() {
	t.mu.Lock()
	cur := t.current
	t.mu.Unlock()
	t.SuspendTask(cur)
}

// SuspendTask hands h's baton back to Run. Exposed so collaborators built
// on top of the semaphore primitive (the queue pool's blocking Give/Take)
// can suspend their caller exactly as a direct semaphore Take would,
// without reimplementing the request-switch-then-hand-back sequence.
func (t *Trap) SuspendTask(h task.Handle) {
	t.RequestSwitch()
	t.susp.Suspend(h)
}

// Delay implements EosWaitDelay: only valid from task context. From ISR
// context it is rejected and DELAY_IN_HANDLER is emitted.
func (t *Trap) Delay(ticks int) {
	if t.irqs.Active() {
		t.logger.Error("WaitDelay called from ISR context", "ticks", ticks)
		t.onError(ErrDelayInHandler)
		return
	}
	t.mu.Lock()
	cur := t.current
	t.mu.Unlock()

	t.tasks.SetWaitTicks(cur, ticks)
	t.tasks.SetState(cur, task.Waiting)
	t.suspendCurrent()
}

// Yield implements EosCpuYield: a no-op beyond requesting rescheduling.
// Task-context only; ISR context emits YIELD_IN_HANDLER.
func (t *Trap) Yield() {
	if t.irqs.Active() {
		t.logger.Error("CpuYield called from ISR context")
		t.onError(ErrYieldInHandler)
		return
	}
	t.suspendCurrent()
}

// SemTake implements EosSemaphoreTake, routing to the blocking task-context
// path or the non-blocking ISR-context path via the interrupt registry's
// nesting counter.
func (t *Trap) SemTake(h semaphore.Handle) bool {
	if t.irqs.Active() {
		ok := t.sems.TakeISR(h)
		if !ok {
			t.logger.Error("SemaphoreTake failed in ISR context", "sem", h)
			t.onError(ErrTakingSemaphore)
		}
		return ok
	}

	t.mu.Lock()
	cur := t.current
	t.mu.Unlock()

	ok := t.sems.Take(h, cur)
	if t.tasks.State(cur) == task.Waiting {
		t.suspendCurrent()
	}
	return ok
}

// SemGive implements EosSemaphoreGive, valid from either context.
func (t *Trap) SemGive(h semaphore.Handle) {
	t.sems.Give(h)
	if !t.irqs.Active() {
		t.RequestSwitch()
	}
}

// DispatchIRQ routes irqNum through the interrupt registry's trampoline.
// If the handler's work (typically a SemGive) made a higher-priority task
// READY, the switch is requested on return from the outermost ISR; this
// port has no way to forcibly interrupt the goroutine actually holding the
// CPU mid-instruction, so the preemption takes effect the next time that
// goroutine hands the CPU back itself (its next Delay, Yield or blocking
// take; SemGive and a non-blocking take do not hand it back) — the same
// cooperative-checkpoint limitation documented on port.Suspender.
func (t *Trap) DispatchIRQ(irqNum int) bool {
	ok := t.irqs.Dispatch(irqNum)
	if ok && !t.irqs.Active() {
		t.RequestSwitch()
	}
	return ok
}
