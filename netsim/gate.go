package netsim

// ServiceType classifies a gate's direction of travel. Undefined gates are
// legal (spec.md §3) and simply never participate in send/deliver checks
// that care about direction.
type ServiceType int

const (
	Undefined ServiceType = iota
	Input
	Output
)

func (s ServiceType) String() string {
	switch s {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "undefined"
	}
}

// GateRef identifies a gate by its owning module's path, its name, and its
// index within a same-named cluster (size >= 1 for an un-clustered gate).
// GateRef is a value type so Message headers can carry one without pinning
// a *Gate.
type GateRef struct {
	ModulePath string
	Name       string
	Index      int
}

func (r GateRef) IsZero() bool { return r.ModulePath == "" && r.Name == "" }

// Gate is a named port on a Module: at most one outgoing hop, optionally
// decorated with a Channel. A gate with no NextGate is a terminus.
type Gate struct {
	Owner       *Module
	Name        string
	Index       int
	Service     ServiceType
	NextGate    *GateRef // nil: terminus
	ChannelName string   // "" if the hop to NextGate is undecorated
}

// Ref returns the GateRef identifying this gate.
func (g *Gate) Ref() GateRef {
	path := ""
	if g.Owner != nil {
		path = g.Owner.Path
	}
	return GateRef{ModulePath: path, Name: g.Name, Index: g.Index}
}
