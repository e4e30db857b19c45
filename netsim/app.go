package netsim

import (
	"errors"

	"github.com/GoCodeAlone/des"
)

// ErrNoGraphProvider is returned when an Application's Lifecycle is driving
// netsim events but the Application itself does not expose a *Graph.
var ErrNoGraphProvider = errors.New("netsim: des.Application does not implement GraphProvider")

// GraphProvider is implemented by an Application whose event set is built
// from this package's variants. It is how the translator and event
// handlers, which only ever see a generic *des.Runtime, reach the network
// topology without the root des package needing to know about netsim at
// all (des/netsim depends on des, never the reverse).
type GraphProvider interface {
	NetGraph() *Graph
}

func graphFromApp(rt *des.Runtime) (*Graph, error) {
	gp, ok := rt.App().(GraphProvider)
	if !ok {
		return nil, ErrNoGraphProvider
	}
	return gp.NetGraph(), nil
}
