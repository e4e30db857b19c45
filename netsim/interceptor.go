package netsim

import "github.com/GoCodeAlone/des"

// Interceptor observes message delivery without participating in it: a
// module (commonly a metrics exporter or a test harness) may register one
// with Graph.AddInterceptor to see every delivered message in order,
// without that module itself owning the gate the message arrived on
// (original_source's net/plugin and net/hooks give this the name
// Interceptor; see SPEC_FULL.md §4).
type Interceptor interface {
	BeforeHandleMessage(rt *des.Runtime, module *Module, msg *Message)
	AfterHandleMessage(rt *des.Runtime, module *Module, msg *Message)
}

// AddInterceptor registers an Interceptor, invoked around every
// HandleMessageEvent dispatch regardless of which module it targets.
func (g *Graph) AddInterceptor(i Interceptor) {
	g.interceptors = append(g.interceptors, i)
}

func (g *Graph) notifyBefore(rt *des.Runtime, m *Module, msg *Message) {
	for _, i := range g.interceptors {
		i.BeforeHandleMessage(rt, m, msg)
	}
}

func (g *Graph) notifyAfter(rt *des.Runtime, m *Module, msg *Message) {
	for _, i := range g.interceptors {
		i.AfterHandleMessage(rt, m, msg)
	}
}
