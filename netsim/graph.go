package netsim

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

const defaultPathCacheSize = 256

// Graph is the network topology: modules, gates, and channels. It is
// mutable only during the build phase (before the first dispatched event,
// spec.md §4.4); once handed to a des.Builder-constructed Runtime it is
// treated as immutable. Lookups are O(1) amortised by path and by id, with
// a small LRU in front of the dotted-path walk (ByPath) for simulations
// that repeatedly resolve a hot set of routing paths — grounded on the
// teacher's registry.Registry map-based service index, generalised to an
// LRU since a long-running simulation's working set of paths is expected
// to be far smaller than its total module count.
type Graph struct {
	modules  map[string]*Module
	byID     map[int64]*Module
	channels map[string]*Channel
	nextID   int64

	pathCache    *lru.Cache
	interceptors []Interceptor
}

// NewGraph returns an empty, buildable Graph.
func NewGraph() *Graph {
	cache, err := lru.New(defaultPathCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultPathCacheSize never triggers.
		panic(err)
	}
	return &Graph{
		modules:   make(map[string]*Module),
		byID:      make(map[int64]*Module),
		channels:  make(map[string]*Channel),
		pathCache: cache,
	}
}

// AddModule registers a new module at path, owned by the optional parent
// (identified by path; "" for a root module), backed by behavior and
// running under stereo. Returns ErrDuplicatePath if path is already taken,
// or ErrNoSuchModule if parentPath is non-empty and unknown.
func (g *Graph) AddModule(path string, parentPath string, behavior Behavior, stereo Stereotype) (*Module, error) {
	if _, exists := g.modules[path]; exists {
		return nil, fmt.Errorf("netsim: %w: %s", ErrDuplicatePath, path)
	}
	if parentPath != "" {
		parent, ok := g.modules[parentPath]
		if !ok {
			return nil, fmt.Errorf("netsim: %w: parent %s of %s", ErrNoSuchModule, parentPath, path)
		}
		parent.Children = append(parent.Children, path)
	}
	g.nextID++
	m := newModule(path, g.nextID, parentPath, behavior, stereo)
	m.graph = g
	g.modules[path] = m
	g.byID[m.ID] = m
	g.pathCache.Remove(path)
	return m, nil
}

// Connect wires src's outgoing hop to dst, optionally decorated with a
// named channel already added via AddChannel. A connection is directional;
// traversal during translation follows src.NextGate.
func (g *Graph) Connect(src, dst GateRef, channelName string) error {
	srcGate, ok := g.gate(src)
	if !ok {
		return fmt.Errorf("netsim: %w: %s", ErrNoSuchGate, describeGateRef(src))
	}
	if _, ok := g.gate(dst); !ok {
		return fmt.Errorf("netsim: %w: %s", ErrNoSuchGate, describeGateRef(dst))
	}
	if channelName != "" {
		if _, ok := g.channels[channelName]; !ok {
			return fmt.Errorf("netsim: unknown channel %q for hop %s->%s", channelName, describeGateRef(src), describeGateRef(dst))
		}
	}
	dstCopy := dst
	srcGate.NextGate = &dstCopy
	srcGate.ChannelName = channelName
	return nil
}

// AddChannel registers a named channel, later referenced by Connect.
func (g *Graph) AddChannel(c *Channel) {
	g.channels[c.Name] = c
}

// Channel looks up a previously-added channel by name.
func (g *Graph) Channel(name string) (*Channel, bool) {
	c, ok := g.channels[name]
	return c, ok
}

// ByID resolves a module by its numeric id.
func (g *Graph) ByID(id int64) (*Module, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// ByPath resolves a module by its dotted path (e.g. "net.alice.stack"),
// consulting the LRU before falling back to the direct map lookup. Unlike
// a true recursive dotted-name walk through parent/child links, paths are
// stored and indexed in full at AddModule time, so resolution is O(1)
// either way; the cache exists to keep the hot set cheap to re-validate
// under cache eviction policies that matter once ModuleCount grows large.
func (g *Graph) ByPath(path string) (*Module, bool) {
	if v, ok := g.pathCache.Get(path); ok {
		return v.(*Module), true
	}
	m, ok := g.modules[path]
	if ok {
		g.pathCache.Add(path, m)
	}
	return m, ok
}

// Gate resolves a gate by its GateRef.
func (g *Graph) Gate(ref GateRef) (*Gate, bool) { return g.gate(ref) }

func (g *Graph) gate(ref GateRef) (*Gate, bool) {
	m, ok := g.modules[ref.ModulePath]
	if !ok {
		return nil, false
	}
	return m.Gate(ref.Name, ref.Index)
}

// Modules returns every module registered in the graph, in no particular
// order; callers that need a deterministic order should sort by Path.
func (g *Graph) Modules() []*Module {
	out := make([]*Module, 0, len(g.modules))
	for _, m := range g.modules {
		out = append(out, m)
	}
	return out
}

// Teardown drains every channel's queue, resolving Open Question (b):
// messages still buffered when the run ends are dropped, not delivered.
func (g *Graph) Teardown() {
	for _, c := range g.channels {
		c.Teardown()
	}
}

func describeGateRef(r GateRef) string {
	if r.Index == 0 {
		return fmt.Sprintf("%s.%s", r.ModulePath, r.Name)
	}
	return fmt.Sprintf("%s.%s[%d]", r.ModulePath, r.Name, r.Index)
}
