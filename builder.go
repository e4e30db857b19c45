package des

import (
	"time"

	"github.com/GoCodeAlone/des/dlog"
	"github.com/GoCodeAlone/des/fes"
	"github.com/GoCodeAlone/des/internal/ctx"
	"github.com/GoCodeAlone/des/metrics"
	"github.com/GoCodeAlone/des/simtime"
)

// FESVariant selects which Future Event Set implementation a Runtime uses.
type FESVariant int

const (
	// VariantHeap is the binary-heap FES (fes.Heap), the default.
	VariantHeap FESVariant = iota
	// VariantCalendar is the bucketed calendar-queue FES (fes.Calendar).
	VariantCalendar
)

// Builder assembles a Runtime from an Application plus the functional
// options below, following the same Option/Builder pattern this codebase
// uses for application assembly (see the teacher-grounded rationale in
// DESIGN.md). Prefer NewRuntime(app, opts...) for the common case; use
// Builder directly when options need to be computed or merged from
// multiple sources (e.g. a config file layered under CLI overrides).
type Builder struct {
	maxItr     int64
	maxTime    simtime.Time
	hasMaxItr  bool
	hasMaxTime bool
	startTime  simtime.Time
	seed       uint64
	hasSeed    bool
	quiet      bool
	variant    FESVariant
	cqBuckets  int
	cqSpan     time.Duration
	logger     dlog.Logger
	emitter    EventEmitter
}

// Option configures a Builder.
type Option func(*Builder) error

// NewBuilder returns a Builder with every option at its spec.md §6 default:
// unbounded iterations and simulated time, start time Zero, OS-random
// seed, non-quiet, and the binary-heap FES.
func NewBuilder() *Builder {
	return &Builder{
		startTime: simtime.Zero,
		variant:   VariantHeap,
		cqBuckets: fes.DefaultCalendarBuckets,
		cqSpan:    fes.DefaultCalendarTimespan,
	}
}

// WithMaxIterations sets RuntimeLimit's EventCount component.
func WithMaxIterations(n int64) Option {
	return func(b *Builder) error { b.maxItr, b.hasMaxItr = n, true; return nil }
}

// WithMaxTime sets RuntimeLimit's SimTime component.
func WithMaxTime(t simtime.Time) Option {
	return func(b *Builder) error { b.maxTime, b.hasMaxTime = t, true; return nil }
}

// WithStartTime sets the initial clock value.
func WithStartTime(t simtime.Time) Option {
	return func(b *Builder) error { b.startTime = t; return nil }
}

// WithSeed seeds the deterministic RNG.
func WithSeed(seed uint64) Option {
	return func(b *Builder) error { b.seed, b.hasSeed = seed, true; return nil }
}

// WithQuiet suppresses diagnostic messages (routes the logger to a Nop
// implementation instead of whatever WithLogger configured).
func WithQuiet(quiet bool) Option {
	return func(b *Builder) error { b.quiet = quiet; return nil }
}

// WithFESVariant selects the Future Event Set implementation.
func WithFESVariant(v FESVariant) Option {
	return func(b *Builder) error { b.variant = v; return nil }
}

// WithCalendarQueueBuckets sets the calendar-queue build's bucket count N.
// Ignored when the FES variant is not VariantCalendar.
func WithCalendarQueueBuckets(n int) Option {
	return func(b *Builder) error { b.cqBuckets = n; return nil }
}

// WithCalendarQueueTimespan sets the calendar-queue build's bucket width T.
// Ignored when the FES variant is not VariantCalendar.
func WithCalendarQueueTimespan(d time.Duration) Option {
	return func(b *Builder) error { b.cqSpan = d; return nil }
}

// WithLogger installs a custom Logger instead of the zap-backed default.
func WithLogger(l dlog.Logger) Option {
	return func(b *Builder) error { b.logger = l; return nil }
}

// WithEventEmitter installs an optional lifecycle-event emitter (see
// eventemit.go); sim-start/sim-end/panic notifications are forwarded to it
// as CloudEvents in addition to being logged.
func WithEventEmitter(e EventEmitter) Option {
	return func(b *Builder) error { b.emitter = e; return nil }
}

// NewRuntime applies opts over the spec.md §6 defaults and constructs a
// Runtime bound to app. It acquires the process-wide runtime-exclusion
// lock (spec.md §4.2): if a previous holder is still running, this call
// blocks and — once the logger is known — emits a diagnostic noting the
// wait. Run (or an early construction failure) is responsible for
// eventually releasing it.
func NewRuntime(app Application, opts ...Option) (*Runtime, error) {
	if app == nil {
		return nil, ErrApplicationNil
	}
	b := NewBuilder()
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b.Build(app)
}

// Build constructs the Runtime described by b, bound to app.
func (b *Builder) Build(app Application) (*Runtime, error) {
	if app == nil {
		return nil, ErrApplicationNil
	}

	logger := b.logger
	if logger == nil {
		var err error
		logger, err = dlog.NewZapLogger(b.quiet)
		if err != nil {
			return nil, err
		}
	}
	if b.quiet {
		logger = dlog.Noop()
	}

	if !ctx.Global.TryAcquire() {
		logger.Warn(ctx.ErrAlreadyRunning("another Runtime in this process"))
		ctx.Global.Acquire()
	}

	seed := b.seed
	if !b.hasSeed {
		seed = osRandomSeed()
	}

	var limit RuntimeLimit = NoLimit{}
	var limits []RuntimeLimit
	if b.hasMaxItr {
		limits = append(limits, EventCountLimit{N: b.maxItr})
	}
	if b.hasMaxTime {
		limits = append(limits, SimTimeLimit{T: b.maxTime})
	}
	if len(limits) == 1 {
		limit = limits[0]
	} else if len(limits) > 1 {
		limit = AllLimits(limits)
	}

	var set fes.Set
	switch b.variant {
	case VariantCalendar:
		set = fes.NewCalendar(b.startTime, b.cqBuckets, b.cqSpan)
	default:
		set = fes.NewHeap(b.startTime)
	}

	rt := &Runtime{
		app:     app,
		set:     set,
		clock:   b.startTime,
		limit:   limit,
		rng:     NewRNG(seed),
		logger:  logger,
		quiet:   b.quiet,
		profile: metrics.NewProfile(),
		emitter: b.emitter,
	}
	return rt, nil
}
