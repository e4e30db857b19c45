// Package dlog defines the kernel's logging seam. The kernel never imports
// a concrete logging library directly into its core types; instead it
// depends on the small Logger interface below, following the same
// indirection the teacher framework uses (modular.Logger) so a host
// application can redirect kernel diagnostics into whatever structured
// logger it already runs. A zap-backed default is provided for
// convenience.
package dlog

// Logger is the structured logging interface the kernel writes every
// diagnostic through: scheduling errors, dropped messages, module panics,
// and termination notices (spec.md §7). Key-value pairs follow the
// variadic convention (logger.Info("msg", "key1", v1, "key2", v2)),
// compatible with slog, zap's SugaredLogger, and logrus alike.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// noop discards everything; used when Builder.WithQuiet(true) is set.
type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}

// Noop returns a Logger that discards all messages.
func Noop() Logger { return noop{} }
