package control

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/rng"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// HostPicker ranks candidate hosts for a new container's request (§4.7:
// bestfit/worstfit/random host schedulers, mirroring the replica-level load
// balancers in the service package).
type HostPicker interface {
	Select(hosts []*physical.Host) *physical.Host
}

// BestFitHosts prefers the most CPU-utilized powered-on host, consolidating
// placement. It does not check headroom itself; ContainerScheduler moves on
// to the next pick when the chosen host cannot take the container.
type BestFitHosts struct{}

func (BestFitHosts) Select(hosts []*physical.Host) *physical.Host {
	var best *physical.Host
	bestUtil := -1.0
	for _, h := range hosts {
		if !h.PoweredOn() {
			continue
		}
		u := h.CPUUtilization()
		if u > bestUtil {
			best = h
			bestUtil = u
		}
	}
	return best
}

// WorstFitHosts prefers the least-utilized host, spreading placement.
type WorstFitHosts struct{}

func (WorstFitHosts) Select(hosts []*physical.Host) *physical.Host {
	var worst *physical.Host
	worstUtil := 2.0
	for _, h := range hosts {
		if !h.PoweredOn() {
			continue
		}
		u := h.CPUUtilization()
		if u < worstUtil {
			worst = h
			worstUtil = u
		}
	}
	return worst
}

// RandomHosts picks uniformly among powered-on hosts using the simulation's
// seeded Generator.
type RandomHosts struct{ RNG *rng.Generator }

func (r RandomHosts) Select(hosts []*physical.Host) *physical.Host {
	var candidates []*physical.Host
	for _, h := range hosts {
		if h.PoweredOn() {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[r.RNG.Intn(len(candidates))]
}

type pendingContainer struct {
	ms        *service.Microservice
	container *workload.Container
}

// ContainerScheduler places freshly-requested containers onto hosts, with
// taint affinity and a coalesced singleton scheduling pass (§4.7, §9). When
// no powered-on host has headroom it falls back to the HostProvisioner
// before giving up until the next pass.
type ContainerScheduler struct {
	sched       *engine.Scheduler
	hosts       []*physical.Host
	picker      HostPicker
	provisioner *HostProvisioner

	pending []*pendingContainer
	armed   *engine.Actor
}

// NewContainerScheduler constructs a ContainerScheduler over a fixed host
// pool.
func NewContainerScheduler(sched *engine.Scheduler, hosts []*physical.Host, picker HostPicker, provisioner *HostProvisioner) *ContainerScheduler {
	return &ContainerScheduler{sched: sched, hosts: hosts, picker: picker, provisioner: provisioner}
}

// RequestReplica builds a new Container from ms's spec and enqueues it for
// placement on this scheduler's next coalesced pass (§4.9 scale-up path).
func (cs *ContainerScheduler) RequestReplica(ms *service.Microservice, now float64) *workload.Container {
	id, spec := ms.NewContainerSpec()
	c := workload.NewContainer(cs.sched, id, id, now, spec, ms)
	cs.pending = append(cs.pending, &pendingContainer{ms: ms, container: c})
	cs.arm(now)
	return c
}

func (cs *ContainerScheduler) arm(now float64) {
	if cs.armed != nil && cs.armed.Active() {
		return
	}
	cs.armed = engine.NewActor(now, engine.ContainerScheduler, "container-scheduler/pass", func(now float64) {
		cs.armed = nil
		cs.pass(now)
	})
	cs.sched.Schedule(cs.armed)
}

func (cs *ContainerScheduler) pass(now float64) {
	remaining := cs.pending[:0]
	for _, pc := range cs.pending {
		if cs.place(pc, now) {
			pc.ms.AddContainer(pc.container)
			continue
		}
		remaining = append(remaining, pc)
	}
	cs.pending = remaining
	if len(cs.pending) > 0 {
		cs.arm(now)
	}
}

func (cs *ContainerScheduler) place(pc *pendingContainer, now float64) bool {
	candidates := cs.hosts
	if pc.container.Spec.Taint != "" {
		candidates = filterTaint(cs.hosts, pc.container.Spec.Taint)
	}
	for len(candidates) > 0 {
		h := cs.picker.Select(candidates)
		if h == nil {
			break
		}
		if pc.container.ScheduleOnto(h, now) == nil {
			return true
		}
		rest := make([]*physical.Host, 0, len(candidates)-1)
		for _, c := range candidates {
			if c != h {
				rest = append(rest, c)
			}
		}
		candidates = rest
	}
	if cs.provisioner != nil {
		if h := cs.provisioner.Provision(now); h != nil {
			return pc.container.ScheduleOnto(h, now) == nil
		}
	}
	return false
}

func filterTaint(hosts []*physical.Host, taint string) []*physical.Host {
	out := make([]*physical.Host, 0, len(hosts))
	for _, h := range hosts {
		if h.Taint == taint {
			out = append(out, h)
		}
	}
	return out
}
