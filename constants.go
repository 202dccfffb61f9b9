package eos

import "github.com/dlova/eos/internal/constants"

// Re-export compile-time configuration bounds for the public API.
const (
	DefaultNTask       = constants.DefaultNTask
	DefaultStackSize   = constants.DefaultStackSize
	DefaultPMax        = constants.DefaultPMax
	DefaultNSemaphores = constants.DefaultNSemaphores
	DefaultNQueues     = constants.DefaultNQueues

	MinNTask     = constants.MinNTask
	MinStackSize = constants.MinStackSize
	MaxPMax      = constants.MaxPMax
	MaxPoolSize  = constants.MaxPoolSize
	DefaultNIRQ  = constants.DefaultNIRQ

	DefaultTickPeriod = constants.DefaultTickPeriod
)
