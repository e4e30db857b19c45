package netsim

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// topologyFile is the YAML shape LoadTopologyYAML reads: a plain-data
// summary of modules, gates, channels, and connections, offered as an
// alternative to hand-wiring a Graph in Go (SPEC_FULL.md §2). Module
// behavior (the Go-side Behavior implementation) cannot live in YAML, so
// callers supply it via the behaviors map, keyed by module path.
type topologyFile struct {
	Modules     []topologyModule     `yaml:"modules"`
	Channels    []topologyChannel    `yaml:"channels"`
	Connections []topologyConnection `yaml:"connections"`
}

type topologyModule struct {
	Path   string         `yaml:"path"`
	Parent string         `yaml:"parent"`
	Gates  []topologyGate `yaml:"gates"`
}

type topologyGate struct {
	Name    string `yaml:"name"`
	Index   int    `yaml:"index"`
	Service string `yaml:"service"` // "input", "output", or "" (undefined)
}

type topologyChannel struct {
	Name          string  `yaml:"name"`
	BitrateBPS    float64 `yaml:"bitrate"`
	Latency       string  `yaml:"latency"`
	Jitter        string  `yaml:"jitter"`
	Policy        string  `yaml:"policy"` // "drop" (default) or "queue"
	QueueCapacity int     `yaml:"queue_capacity"`
}

type topologyConnection struct {
	SrcModule string `yaml:"src_module"`
	SrcGate   string `yaml:"src_gate"`
	SrcIndex  int    `yaml:"src_index"`
	DstModule string `yaml:"dst_module"`
	DstGate   string `yaml:"dst_gate"`
	DstIndex  int    `yaml:"dst_index"`
	Channel   string `yaml:"channel"`
}

// LoadTopologyYAML builds a Graph from a YAML topology summary. Modules
// are registered in file order (so a module's "parent" must appear
// earlier in the file); behaviors supplies each module's Go-side Behavior,
// keyed by path, falling back to a bare no-op Behavior (ModuleName only)
// for any path absent from the map, so a topology can be loaded and
// inspected even before every module's real logic is wired up.
func LoadTopologyYAML(path string, behaviors map[string]Behavior) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("netsim: read topology %s: %w", path, err)
	}
	var tf topologyFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("netsim: parse topology %s: %w", path, err)
	}

	g := NewGraph()

	for _, tm := range tf.Modules {
		behavior := behaviors[tm.Path]
		if behavior == nil {
			behavior = bareBehavior{name: tm.Path}
		}
		m, err := g.AddModule(tm.Path, tm.Parent, behavior, HostStereotype)
		if err != nil {
			return nil, err
		}
		for _, tg := range tm.Gates {
			m.AddGate(tg.Name, tg.Index, parseServiceType(tg.Service))
		}
	}

	for _, tc := range tf.Channels {
		latency, err := parseOptionalDuration(tc.Latency)
		if err != nil {
			return nil, fmt.Errorf("netsim: channel %s latency: %w", tc.Name, err)
		}
		jitter, err := parseOptionalDuration(tc.Jitter)
		if err != nil {
			return nil, fmt.Errorf("netsim: channel %s jitter: %w", tc.Name, err)
		}
		g.AddChannel(NewChannel(tc.Name, tc.BitrateBPS, latency, jitter, parseDropPolicy(tc.Policy), tc.QueueCapacity))
	}

	for _, conn := range tf.Connections {
		src := GateRef{ModulePath: conn.SrcModule, Name: conn.SrcGate, Index: conn.SrcIndex}
		dst := GateRef{ModulePath: conn.DstModule, Name: conn.DstGate, Index: conn.DstIndex}
		if err := g.Connect(src, dst, conn.Channel); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func parseServiceType(s string) ServiceType {
	switch s {
	case "input":
		return Input
	case "output":
		return Output
	default:
		return Undefined
	}
}

func parseDropPolicy(s string) DropPolicy {
	if s == "queue" {
		return Queue
	}
	return Drop
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// bareBehavior is the fallback Behavior for a topology-declared module with
// no Go-side logic registered yet; it only reports a name.
type bareBehavior struct{ name string }

func (b bareBehavior) ModuleName() string { return b.name }
