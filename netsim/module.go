package netsim

import "github.com/GoCodeAlone/des"

// Behavior is the minimal contract every simulated module implements.
// Modules implementing only Behavior are legal: every other lifecycle
// hook (staged start, message handling, teardown, par changes) is
// optional, mirroring the core framework's Module/Configurable/Startable
// split — the driver (C9) checks for each optional interface via a type
// assertion and simply skips the call when a module doesn't implement it.
type Behavior interface {
	// ModuleName returns a short, human-readable label for diagnostics; it
	// is not the module's path (Module.Path is assigned by the Graph at
	// registration and is authoritative for lookup).
	ModuleName() string
}

// Resettable is implemented by modules that need to clear per-run state on
// restart (spec.md §4.6, shutdown_and_restart_in). Reset runs before the
// stage-0 at_sim_start call that follows a restart.
type Resettable interface {
	Reset()
}

// StagedStarter is implemented by modules with sim-start initialisation
// logic. NumSimStartStages declares how many stages this module
// participates in; AtSimStart is invoked once per stage in 0..N-1, with
// every module's stage-k call completing before any stage-(k+1) call
// begins (spec.md §4.6).
type StagedStarter interface {
	NumSimStartStages() int
	AtSimStart(rt *des.Runtime, stage int)
}

// MessageHandler is implemented by modules that receive deliveries.
// HandleMessage is invoked once a message has traversed its last hop
// (spec.md §4.3, HandleMessage variant).
type MessageHandler interface {
	HandleMessage(rt *des.Runtime, msg *Message)
}

// Stopper is implemented by modules with run-end teardown logic.
type Stopper interface {
	AtSimEnd(rt *des.Runtime) error
}

// ParChangeHandler is implemented by modules that react to a par (parameter)
// store mutation (spec.md §6, handle_par_change), applied between runs via
// ParStore.Set rather than mid-run.
type ParChangeHandler interface {
	HandleParChange(name string, value any)
}

// Stereotype governs cross-cutting behaviour attached to a module,
// presently just panic-catching policy (spec.md §3, §7).
type Stereotype struct {
	// Name labels the stereotype for diagnostics, e.g. "HOST".
	Name string
	// CatchPanics selects whether a panic inside this module's callbacks
	// is caught and recorded as a degraded-module RuntimeError (true, the
	// HOST default) or propagated to terminate the run (false).
	CatchPanics bool
}

// HostStereotype is the default stereotype: panics are caught.
var HostStereotype = Stereotype{Name: "HOST", CatchPanics: true}

// Module is a node in the network graph: a stable path, a numeric id, an
// optional parent (resolved by path through the Graph, never by pointer
// cycle — spec.md §9), a set of owned gates, and a user-supplied Behavior.
type Module struct {
	Path       string
	ID         int64
	ParentPath string // "" for a root module
	Children   []string

	Gates map[gateKey]*Gate

	Stereotype Stereotype
	Behavior   Behavior
	Pars       *ParStore

	// Active is false between a shutdown_and_restart_in request committing
	// and the matching RestartEvent running the module's stage-0
	// at_sim_start again; while false, deliveries addressed to this module
	// are drained rather than handled (spec.md §4.6).
	Active bool

	graph *Graph
}

type gateKey struct {
	name  string
	index int
}

func newModule(path string, id int64, parentPath string, behavior Behavior, stereo Stereotype) *Module {
	return &Module{
		Path:       path,
		ID:         id,
		ParentPath: parentPath,
		Gates:      make(map[gateKey]*Gate),
		Stereotype: stereo,
		Behavior:   behavior,
		Pars:       NewParStore(),
		Active:     true,
	}
}

// AddGate registers a gate named name (index 0 for an un-clustered gate) on
// the module. Must be called during graph build, before the Runtime
// driving the graph enters at_sim_start.
func (m *Module) AddGate(name string, index int, service ServiceType) *Gate {
	g := &Gate{Owner: m, Name: name, Index: index, Service: service}
	m.Gates[gateKey{name, index}] = g
	return g
}

// Gate looks up a previously-added gate by name and index.
func (m *Module) Gate(name string, index int) (*Gate, bool) {
	g, ok := m.Gates[gateKey{name, index}]
	return g, ok
}

// Parent resolves the module's parent through the owning Graph by path
// (spec.md §9: parent is a non-owning back-reference resolved by id/path,
// never a pointer that would close an ownership cycle).
func (m *Module) Parent() (*Module, bool) {
	if m.ParentPath == "" || m.graph == nil {
		return nil, false
	}
	return m.graph.ByPath(m.ParentPath)
}

// CatchPanics reports whether the module's stereotype catches panics from
// its own callbacks; it implements des.PanicPolicy together with
// ModulePath so the runtime's dispatch loop can apply §7's recoverable
// vs. fatal split without importing netsim.
func (m *Module) CatchPanics() bool  { return m.Stereotype.CatchPanics }
func (m *Module) ModulePath() string { return m.Path }
