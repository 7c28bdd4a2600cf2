package physical

import "github.com/cloudsim/cloudsim/sim/engine"

// Gateway is the sole ingress/egress point for traffic leaving the
// simulated topology toward users. It performs no RAM accounting for
// packets and has no CPU of its own to decode them — it is a pure
// sink/source (§3).
func NewGateway(sched *engine.Scheduler, topo *Topology, id, label string, at float64, packetDelay float64) *Gateway {
	pe := NewPhysicalEntity(sched, topo, "gateway", id, label, at, NewCPU(sched, 0, 0, 0, 1), 0, 0, packetDelay, 0, 0, 0, true)
	return &Gateway{PhysicalEntity: pe}
}

// Gateway is a PhysicalEntity specialization; see NewGateway.
type Gateway struct {
	*PhysicalEntity
}
