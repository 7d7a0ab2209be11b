package wasmhost

import "go.uber.org/zap"

const (
	DefaultModuleName = "objabi"
	DefaultMaxHandles = 4096
	DefaultMaxData    = 16 << 20
)

// Option configures a Host.
type Option func(*Host)

// WithMaxHandles limits how many handles the guest may hold at once.
func WithMaxHandles(n int) Option {
	return func(h *Host) { h.maxHandles = n }
}

// WithMaxData limits the total bytes of buffers moved by one invocation.
func WithMaxData(n int) Option {
	return func(h *Host) { h.maxData = n }
}

// WithLogger sets the host's logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.log = l }
}

// WithModuleName sets the name guests import invoke from.
func WithModuleName(name string) Option {
	return func(h *Host) { h.name = name }
}
