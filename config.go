package eos

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dlova/eos/internal/task"
)

// Config holds the kernel's compile-time configuration constants and
// user-supplied hooks. Bounds match spec.md §6.
type Config struct {
	NTask       int           `yaml:"n_task"`
	StackSize   int           `yaml:"stack_size"`
	PMax        int           `yaml:"p_max"`
	NSemaphores int           `yaml:"n_semaphores"`
	NQueues     int           `yaml:"n_queues"`
	TickPeriod  time.Duration `yaml:"tick_period"`

	SysTickCallback  func()             `yaml:"-"`
	InactiveCallback func()             `yaml:"-"`
	EndTaskCallback  func(task.Handle)  `yaml:"-"`
	OnErrorCallback  func(Kind)         `yaml:"-"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		NTask:       DefaultNTask,
		StackSize:   DefaultStackSize,
		PMax:        DefaultPMax,
		NSemaphores: DefaultNSemaphores,
		NQueues:     DefaultNQueues,
		TickPeriod:  DefaultTickPeriod,
	}
}

// Validate enforces the compile-time bounds of spec.md §6:
// N_TASK >= 2, STACK_SZ >= 128, P_MAX in [1,16], N_SEMAPHORES in [0,64],
// N_QUEUES in [0,64], and N_SEMAPHORES >= 2*N_QUEUES.
func (c *Config) Validate() error {
	if c.NTask < MinNTask {
		return NewError("Config.Validate", KindCreatingTask, fmt.Sprintf("n_task must be >= %d, got %d", MinNTask, c.NTask))
	}
	if c.StackSize < MinStackSize {
		return NewError("Config.Validate", KindCreatingTask, fmt.Sprintf("stack_size must be >= %d, got %d", MinStackSize, c.StackSize))
	}
	if c.PMax < 1 || c.PMax > MaxPMax {
		return NewError("Config.Validate", KindCreatingTask, fmt.Sprintf("p_max must be in [1,%d], got %d", MaxPMax, c.PMax))
	}
	if c.NSemaphores < 0 || c.NSemaphores > MaxPoolSize {
		return NewError("Config.Validate", KindCreatingSemaphore, fmt.Sprintf("n_semaphores must be in [0,%d], got %d", MaxPoolSize, c.NSemaphores))
	}
	if c.NQueues < 0 || c.NQueues > MaxPoolSize {
		return NewError("Config.Validate", KindCreatingQueue, fmt.Sprintf("n_queues must be in [0,%d], got %d", MaxPoolSize, c.NQueues))
	}
	if c.NSemaphores < 2*c.NQueues {
		return NewError("Config.Validate", KindCreatingQueue, fmt.Sprintf("n_semaphores (%d) must be >= 2*n_queues (%d)", c.NSemaphores, 2*c.NQueues))
	}
	if c.TickPeriod <= 0 {
		return NewError("Config.Validate", KindCreatingTask, "tick_period must be positive")
	}
	return nil
}

// LoadConfigYAML reads and validates a Config from a YAML file, layered
// over DefaultConfig so unspecified fields keep their defaults. Hooks
// (SysTickCallback etc.) are never read from YAML — wire them in code
// after loading.
func LoadConfigYAML(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError("LoadConfigYAML", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, WrapError("LoadConfigYAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
