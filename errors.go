package des

import "errors"

// RuntimeErrorKind classifies a RuntimeError by the taxonomy in spec.md §7.
// TerminationByLimit is not really an error — it is carried on the success
// path alongside Profile.FinalTime — and has no corresponding RuntimeError
// constructor; it exists here only so callers can name it in switch
// statements without importing a second package.
type RuntimeErrorKind string

const (
	// KindSchedulingInPast: a deferred op or direct enqueue supplied a
	// deadline before the current virtual time. Always fatal.
	KindSchedulingInPast RuntimeErrorKind = "scheduling_in_past"
	// KindNoSuchGate: a send referenced a gate that does not exist.
	// Recoverable: the message is dropped and the run continues.
	KindNoSuchGate RuntimeErrorKind = "no_such_gate"
	// KindNoSuchModule: a lookup referenced a module that does not exist.
	// Recoverable.
	KindNoSuchModule RuntimeErrorKind = "no_such_module"
	// KindChannelDropBusy: a Drop-policy channel discarded a message
	// because it was already busy. Not an error condition in the
	// ordinary sense — logged at Debug and counted in metrics — but
	// carried as a RuntimeErrorKind so the same diagnostic plumbing
	// serves it.
	KindChannelDropBusy RuntimeErrorKind = "channel_drop_busy"
	// KindModulePanic: a user handler panicked. Whether this is fatal
	// depends on the owning module's stereotype (OnPanicCatch).
	KindModulePanic RuntimeErrorKind = "module_panic"
	// KindTerminationByLimit is a normal termination indicator, not a
	// fatal error; see Profile instead.
	KindTerminationByLimit RuntimeErrorKind = "termination_by_limit"
)

// RuntimeError is the typed error Runtime.Run returns on the fatal-error
// exit path, and the payload carried (but not necessarily returned) for a
// recoverable error under a panic-catching stereotype.
type RuntimeError struct {
	Kind       RuntimeErrorKind
	ModulePath string
	Cause      error
}

func (e *RuntimeError) Error() string {
	msg := string(e.Kind)
	if e.ModulePath != "" {
		msg += " (module " + e.ModulePath + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// Static sentinel errors, following the package-level-var idiom used
// throughout this codebase instead of ad-hoc fmt.Errorf strings at every
// call site.
var (
	ErrApplicationNil    = errors.New("des: application is nil")
	ErrLoggerNotSet      = errors.New("des: logger is nil")
	ErrAlreadyRun        = errors.New("des: Runtime.Run called more than once")
	ErrDeadlineInPast    = errors.New("des: deferred op or direct enqueue scheduled before current virtual time")
	ErrNoActiveRuntime   = errors.New("des: no runtime is currently executing (free function called outside a handler)")
	ErrNoCurrentModule   = errors.New("des: no module is currently executing (free function called outside a module callback)")
	ErrDeadlockNoEvents  = errors.New("des: future event set is empty and no limit fired")
	ErrInvalidFESVariant = errors.New("des: unknown FES variant requested")
)
