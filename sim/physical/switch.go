package physical

import "github.com/cloudsim/cloudsim/sim/engine"

// Switch relays packets between directly connected devices. It has no IP
// addresses on its ports and does no container/volume admission (§3).
type Switch struct {
	*PhysicalEntity
}

// NewSwitch constructs a Switch. Switches still run a CPU and RAM/ROM pool
// because they host PacketHandler processes and queue packets like any
// other PhysicalEntity.
func NewSwitch(sched *engine.Scheduler, topo *Topology, id, label string, at float64, spec HostSpec, cpuAcceleration int) *Switch {
	cpu := NewCPU(sched, spec.Cores, spec.IPC, spec.FrequencyHz, cpuAcceleration)
	pe := NewPhysicalEntity(sched, topo, "switch", id, label, at, cpu,
		spec.RAMGiB*1<<30, spec.ROMGiB*1<<30, spec.PacketDelay, spec.IdlePower, spec.CPUTDP, spec.RAMTDP, false)
	return &Switch{PhysicalEntity: pe}
}
