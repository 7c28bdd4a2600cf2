// Package control implements the simulation's control-plane actors: the
// container scheduler, volume allocator, host provisioner, and microservice
// evaluator (§4.7-§4.9). Each follows the coalesced-singleton-actor
// scheduling pattern used throughout the physical layer.
package control

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
)

// HostProvisioner powers on additional hosts from a fixed pool on demand
// and powers them back off once idle, to save simulated energy (§4.7).
type HostProvisioner struct {
	sched              *engine.Scheduler
	hosts              []*physical.Host
	evaluationInterval float64
}

// NewHostProvisioner constructs a HostProvisioner over a fixed host pool.
func NewHostProvisioner(sched *engine.Scheduler, hosts []*physical.Host, evaluationInterval float64) *HostProvisioner {
	return &HostProvisioner{sched: sched, hosts: hosts, evaluationInterval: evaluationInterval}
}

// Provision powers on the first powered-off host in the pool, marking it
// PRIVISIONED (sticky, §3), and returns it. Returns nil if every host is
// already powered on.
func (p *HostProvisioner) Provision(now float64) *physical.Host {
	for _, h := range p.hosts {
		if !h.PoweredOn() {
			h.PowerOn()
			h.MarkPrivisioned()
			return h
		}
	}
	return nil
}

// StartAutoOff begins the recurring power-saving evaluation: every
// evaluationInterval, any privisioned, powered-on, currently idle host
// (zero CPU and RAM reservoir utilization — no containers scheduled on it)
// is powered back off (§4.7).
func (p *HostProvisioner) StartAutoOff(now float64) {
	p.scheduleEval(now)
}

func (p *HostProvisioner) scheduleEval(now float64) {
	p.sched.Schedule(engine.NewActor(now+p.evaluationInterval, engine.HostEvaluation, "host-provisioner/eval", func(now float64) {
		for _, h := range p.hosts {
			if h.PoweredOn() && h.Privisioned() && h.CPUUtilization() == 0 && h.RAMUtilization() == 0 {
				h.PowerOff()
			}
		}
		p.scheduleEval(now)
	}))
}
