// Package eos is a small preemptive real-time kernel for a single-core
// target, adapted here onto a goroutine-per-task host port. The kernel is
// unapologetically a process-wide singleton (spec.md §9): Boot constructs
// one, and Default/SetDefault manage the instance the EosXxx package
// functions operate against, mirroring the logging package's own
// singleton pattern.
package eos

import (
	"sync"

	"github.com/dlova/eos/internal/constants"
	"github.com/dlova/eos/internal/irq"
	"github.com/dlova/eos/internal/logging"
	"github.com/dlova/eos/internal/port"
	"github.com/dlova/eos/internal/ringqueue"
	"github.com/dlova/eos/internal/scheduler"
	"github.com/dlova/eos/internal/semaphore"
	"github.com/dlova/eos/internal/task"
	"github.com/dlova/eos/internal/trap"
)

// Kernel owns every kernel collaborator: the task pool, scheduler,
// semaphore and queue pools, interrupt registry, architecture port, the
// syscall/trap layer, and the kernel's own metrics.
type Kernel struct {
	cfg     *Config
	tasks   *task.Manager
	sched   *scheduler.Scheduler
	sems    *semaphore.Pool
	queues  *ringqueue.Pool
	irqs    *irq.Table
	port    *port.HostPort
	trap    *trap.Trap
	metrics *Metrics
	logger  *logging.Logger
}

var (
	defaultMu     sync.RWMutex
	defaultKernel *Kernel
)

// Default returns the process-wide kernel instance, or nil if Boot has not
// been called (or SetDefault has not been used).
func Default() *Kernel {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultKernel
}

// SetDefault installs k as the default kernel. Exposed for tests that
// build a Kernel directly rather than through Boot.
func SetDefault(k *Kernel) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultKernel = k
}

// Boot validates cfg, constructs every kernel collaborator, wires them
// together, and installs the result as the default kernel. It does not
// start the scheduler — call Start for that.
func Boot(cfg *Config) (*Kernel, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tasks := task.NewManager(cfg.NTask, func(any) {}, nil)
	sched := scheduler.New(tasks, cfg.PMax)
	tasks.SetReadyEnqueuer(sched)

	sems := semaphore.NewPool(cfg.NSemaphores, tasks)
	queues := ringqueue.NewPool(cfg.NQueues, sems, tasks)
	irqs := irq.NewTable(constants.DefaultNIRQ)
	hostPort := port.NewHostPort()

	onError := func(k trap.ErrorKind) {
		if cfg.OnErrorCallback != nil {
			cfg.OnErrorCallback(Kind(k))
		}
	}

	metrics := NewMetrics()

	tr := trap.New(trap.Config{
		Tasks:            tasks,
		Scheduler:        sched,
		Semaphores:       sems,
		Interrupts:       irqs,
		Port:             hostPort,
		TickPeriod:       cfg.TickPeriod,
		SysTickCallback:  cfg.SysTickCallback,
		InactiveCallback: cfg.InactiveCallback,
		EndTaskCallback:  cfg.EndTaskCallback,
		OnErrorCallback:  onError,
		Observer:         NewMetricsObserver(metrics),
	})
	queues.SetSuspender(tr.SuspendTask)

	k := &Kernel{
		cfg:     cfg,
		tasks:   tasks,
		sched:   sched,
		sems:    sems,
		queues:  queues,
		irqs:    irqs,
		port:    hostPort,
		trap:    tr,
		metrics: metrics,
		logger:  logging.Default(),
	}
	SetDefault(k)
	return k, nil
}

// Start brings the scheduler up and never returns on success, per
// spec.md §6's EosStartScheduler contract.
func (k *Kernel) Start() {
	k.logger.Info("starting scheduler", "n_task", k.cfg.NTask, "p_max", k.cfg.PMax)
	k.trap.Run()
}

// Metrics returns the kernel's built-in metrics collector.
func (k *Kernel) Metrics() *Metrics {
	return k.metrics
}

// EosStartScheduler starts the default kernel's scheduler. Never returns
// on success.
func EosStartScheduler() {
	Default().Start()
}
