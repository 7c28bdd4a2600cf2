package physical

import (
	"math"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/resource"
)

func logN(x, base float64) float64 { return math.Log(x) / math.Log(base) }

// Host is a physical machine that can run containers and volumes. Beyond
// the shared PhysicalEntity fields it carries admission-control reservoirs
// (distinct from the runtime utilization Resources), a taint for affinity
// placement, and a sticky PRIVISIONED flag (§3).
type Host struct {
	*PhysicalEntity

	Cores int

	CPUReservor *resource.Resource // millicore capacity = cores * 1000
	RAMReservor *resource.Resource // MiB capacity = ramGiB * 1024

	Taint       string
	privisioned bool
	poweredOn   bool
}

// HostSpec describes a Host's physical capacity.
type HostSpec struct {
	Cores           int
	IPC             float64
	FrequencyHz     float64
	RAMGiB          float64
	ROMGiB          float64
	PacketDelay     float64
	IdlePower       float64
	CPUTDP          float64
	RAMTDP          float64
	Taint           string
}

// NewHost constructs a powered-off Host. Power-on is a separate step
// (§4.7 Host Provisioner).
func NewHost(sched *engine.Scheduler, topo *Topology, id, label string, at float64, spec HostSpec, cpuAcceleration int) *Host {
	cpu := NewCPU(sched, spec.Cores, spec.IPC, spec.FrequencyHz, cpuAcceleration)
	pe := NewPhysicalEntity(sched, topo, "host", id, label, at, cpu,
		spec.RAMGiB*1<<30, spec.ROMGiB*1<<30, spec.PacketDelay, spec.IdlePower, spec.CPUTDP, spec.RAMTDP, false)

	now := func() int64 { return int64(sched.Clock * 1e6) }
	h := &Host{
		PhysicalEntity: pe,
		Cores:          spec.Cores,
		CPUReservor:    resource.New(float64(spec.Cores)*1000, now),
		RAMReservor:    resource.New(spec.RAMGiB*1024, now),
		Taint:          spec.Taint,
	}
	return h
}

// PoweredOn reports whether the host is currently powered on.
func (h *Host) PoweredOn() bool { return h.poweredOn }

// PowerOn powers the host on, cascading to its CPU and NICs. Idempotent.
func (h *Host) PowerOn() {
	if h.poweredOn {
		return
	}
	h.poweredOn = true
	h.SetStatus(entity.PoweredOn)
	h.CPU.PoweredOn = true
	for _, n := range h.nics {
		n.PoweredOn = true
	}
}

// PowerOff powers the host off, cascading to its CPU and NICs (§4.7
// Host Provisioner: "Power-off must cascade to CPU and NICs"). Cascading
// here means the host stops accepting new CPU/packet work; in-flight
// reservations are left to drain naturally since cancellation is not
// modeled (§5).
func (h *Host) PowerOff() {
	h.poweredOn = false
	h.ClearStatus(entity.PoweredOn)
	h.CPU.PoweredOn = false
	for _, n := range h.nics {
		n.PoweredOn = false
	}
}

// Privisioned reports whether this host has ever been selected by the
// Host Provisioner. The flag is sticky: once set it is never cleared.
func (h *Host) Privisioned() bool { return h.privisioned }

// MarkPrivisioned sets the sticky PRIVISIONED flag.
func (h *Host) MarkPrivisioned() { h.privisioned = true }

// CPUUtilization reports the host's aggregate CPU-request reservoir
// utilization, used by the container scheduler's bestfit/worstfit ordering.
func (h *Host) CPUUtilization() float64 { return h.CPUReservor.Utilization() }

// RAMUtilization reports the host's aggregate RAM-request reservoir
// utilization.
func (h *Host) RAMUtilization() float64 { return h.RAMReservor.Utilization() }

// PowerUsage evaluates the selected power formula (§6) given the instantaneous
// CPU/RAM reservoir utilization fractions.
func (h *Host) PowerUsage(logarithmic bool) float64 {
	cpuPct := h.CPUUtilization() * 100
	ramPct := h.RAMUtilization() * 100
	if logarithmic {
		return logBase100(cpuPct+1)*h.CPUTDP + logBase100(ramPct+1)*h.RAMTDP + h.IdlePower
	}
	return cpuPct/100*h.CPUTDP + ramPct/100*h.RAMTDP + h.IdlePower
}

func logBase100(x float64) float64 { return logN(x, 100) }
