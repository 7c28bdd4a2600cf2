package physical

import "github.com/cloudsim/cloudsim/sim/engine"

// Router relays packets across subnets. Unlike a Switch, its interfaces may
// carry IPv4 addresses (set directly on the NIC after construction) (§3).
type Router struct {
	*PhysicalEntity
}

// NewRouter constructs a Router.
func NewRouter(sched *engine.Scheduler, topo *Topology, id, label string, at float64, spec HostSpec, cpuAcceleration int) *Router {
	cpu := NewCPU(sched, spec.Cores, spec.IPC, spec.FrequencyHz, cpuAcceleration)
	pe := NewPhysicalEntity(sched, topo, "router", id, label, at, cpu,
		spec.RAMGiB*1<<30, spec.ROMGiB*1<<30, spec.PacketDelay, spec.IdlePower, spec.CPUTDP, spec.RAMTDP, false)
	return &Router{PhysicalEntity: pe}
}
