package workload

import (
	"math"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/resource"
)

// MicroserviceRef is the narrow slice of service.Microservice's behavior a
// Container needs to notify on crash or readiness, kept here (rather than
// importing the service package) to keep workload -> service one-directional.
type MicroserviceRef interface {
	ID() string
	NotifyContainerCrashed(c *Container, now float64)
	NotifyContainerScheduled(c *Container, now float64)
}

// ContainerSpec describes the requested and limit resources of a container
// (§3: containers carry both a request, used for admission control, and a
// limit, used as the hard CPU/RAM quota once running).
type ContainerSpec struct {
	CPURequestMillicores float64
	CPULimitMillicores   float64
	RAMRequestBytes      float64
	RAMLimitBytes        float64
	ImageSizeBytes       float64
	Taint                string
}

// Container is a scheduled unit of compute: a CPU/RAM quota, an image
// occupying host ROM, an optional set of attached Volumes, and the set of
// Processes currently running inside it (§3, §4.4).
type Container struct {
	*entity.Entity

	Spec ContainerSpec

	Microservice MicroserviceRef
	Host         *physical.Host
	Volumes      []*Volume
	Processes    []*Process

	cpuQuota *resource.Resource // bucket sized in millicores, mirrors core.power's instantaneous-bucket trick
	ramQuota *resource.Resource // bucket sized in bytes, capacity = Spec.RAMLimitBytes

	scheduled bool
	crashed   bool

	sched *engine.Scheduler
}

// NewContainer constructs a Container in the CREATED state, not yet
// scheduled onto any host.
func NewContainer(sched *engine.Scheduler, id, label string, at float64, spec ContainerSpec, ms MicroserviceRef) *Container {
	now := func() int64 { return int64(sched.Clock * 1e6) }
	c := &Container{
		Spec:         spec,
		Microservice: ms,
		cpuQuota:     resource.New(spec.CPULimitMillicores, now),
		ramQuota:     resource.New(spec.RAMLimitBytes, now),
		sched:        sched,
	}
	c.Entity = entity.New(sched, id, label, at, nil, nil)
	return c
}

// Scheduled reports whether the container has been placed on a host.
func (c *Container) Scheduled() bool { return c.scheduled }

// Crashed reports whether the container has crashed (§4.4).
func (c *Container) Crashed() bool { return c.crashed }

// CPUQuotaUtilization reports the fraction of the container's millicore
// limit currently claimed by its running processes, used by the bestfit/
// worstfit load balancers (§4.8) to rank replicas.
func (c *Container) CPUQuotaUtilization() float64 {
	if c.Spec.CPULimitMillicores <= 0 {
		return 0
	}
	return c.cpuQuota.Utilization()
}

// RAMQuotaUtilization reports the fraction of the container's RAM limit
// currently claimed by its running processes, the RAM-side counterpart to
// CPUQuotaUtilization the autoscaler consults alongside CPU (§4.9).
func (c *Container) RAMQuotaUtilization() float64 {
	if c.Spec.RAMLimitBytes <= 0 {
		return 0
	}
	return c.ramQuota.Utilization()
}

// ProcessCount reports the number of processes currently running in the
// container, the signal the autoscaler's scale-down victim selection ranks
// replicas by (§4.9).
func (c *Container) ProcessCount() int { return len(c.Processes) }

// ScheduleOnto places the container on h: reserves its CPU/RAM request from
// the host's admission reservoirs, reserves its image size from host ROM,
// attaches any pre-declared volumes, and sets SCHEDULED (§4.4 accept_process
// precondition — a container must be scheduled before it can accept work).
func (c *Container) ScheduleOnto(h *physical.Host, now float64) error {
	if err := h.CPUReservor.Distribute(c.ID, c.Spec.CPURequestMillicores); err != nil {
		return err
	}
	if err := h.RAMReservor.Distribute(c.ID, c.Spec.RAMRequestBytes); err != nil {
		h.CPUReservor.Release(c.ID, c.Spec.CPURequestMillicores)
		return err
	}
	if err := h.ROM.Distribute(c.ID, c.Spec.ImageSizeBytes); err != nil {
		h.CPUReservor.Release(c.ID, c.Spec.CPURequestMillicores)
		h.RAMReservor.Release(c.ID, c.Spec.RAMRequestBytes)
		return err
	}
	c.Host = h
	c.scheduled = true
	c.SetStatus(entity.Scheduled)
	for _, v := range c.Volumes {
		if !v.Allocated() {
			v.Allocate(h, now)
		}
		v.Attach(c)
	}
	if c.Microservice != nil {
		c.Microservice.NotifyContainerScheduled(c, now)
	}
	return nil
}

// AcceptProcess admits p into the container's CPU scheduling pool. The
// process's RAM usage is first claimed against the container's own RAM
// quota (capacity = Spec.RAMLimitBytes) and, if that succeeds, against the
// host's byte-scale RAM resource. Either claim failing crashes the
// container, carrying its processes and volumes down with it (§4.4: "a
// container whose process demands more RAM than its limit, or than the host
// can supply, crashes"). The claim is released, against both resources,
// when p terminates — see releaseRAM.
func (c *Container) AcceptProcess(p *Process, ramBytes float64, now float64) {
	if c.crashed {
		p.Fail(now)
		return
	}
	if ramBytes > 0 {
		if err := c.ramQuota.Distribute(p.ID(), ramBytes); err != nil {
			c.Crash(now)
			p.Fail(now)
			return
		}
		if c.Host != nil {
			if err := c.Host.RAM.Distribute(p.ID(), ramBytes); err != nil {
				c.ramQuota.Release(p.ID(), ramBytes)
				c.Crash(now)
				p.Fail(now)
				return
			}
		}
		p.ramBytes = ramBytes
	}
	p.container = c
	c.Processes = append(c.Processes, p)
	if c.Host != nil {
		c.Host.CPU.CacheProcess(p)
	}
}

// releaseRAM returns a process's RAM claim to both the container's own RAM
// quota and the host's RAM resource. Called exactly once per process, from
// Process.Fail/CompleteCheck, regardless of whether the process succeeded
// or failed (mirrors the unconditional release-on-terminate in
// original_source/PyCloudSim/entity/v_process.py's release_resources).
func (c *Container) releaseRAM(id string, ramBytes float64) {
	c.ramQuota.Release(id, ramBytes)
	if c.Host != nil {
		c.Host.RAM.Release(id, ramBytes)
	}
}

// Crash terminates the container and, cascading, fails every in-flight
// process and detaches (but does not deallocate, unless !Retain) every
// attached volume (§4.4). Idempotent.
func (c *Container) Crash(now float64) {
	if c.crashed {
		return
	}
	c.crashed = true
	c.SetStatus(entity.Failed)
	for _, p := range c.Processes {
		p.Fail(now)
	}
	for _, v := range c.Volumes {
		v.Detach()
		if !v.Retain {
			v.Deallocate()
		}
	}
	if c.Host != nil {
		c.Host.CPUReservor.Release(c.ID, c.Spec.CPURequestMillicores)
		c.Host.RAMReservor.Release(c.ID, c.Spec.RAMRequestBytes)
		c.Host.ROM.Release(c.ID, c.Spec.ImageSizeBytes)
	}
	if c.Microservice != nil {
		c.Microservice.NotifyContainerCrashed(c, now)
	}
	c.Terminate(now)
}

// Decommission gracefully removes a container chosen for scale-down:
// releases its host reservations, detaches (deallocating non-retained)
// volumes, and terminates the entity, without marking it FAILED or
// notifying the microservice of a crash (§4.9 scale-down path, distinct
// from the §4.4 crash cascade).
func (c *Container) Decommission(now float64) {
	if c.crashed {
		return
	}
	for _, v := range c.Volumes {
		v.Detach()
		if !v.Retain {
			v.Deallocate()
		}
	}
	if c.Host != nil {
		c.Host.CPUReservor.Release(c.ID, c.Spec.CPURequestMillicores)
		c.Host.RAMReservor.Release(c.ID, c.Spec.RAMRequestBytes)
		c.Host.ROM.Release(c.ID, c.Spec.ImageSizeBytes)
	}
	c.Terminate(now)
}

// cpuBudgetInstructions converts the container's remaining millicore quota
// into an instruction budget at coreCapacity (instructions/second),
// implementing physical.Process.ContainerMillicoreBudget for every process
// the container owns.
func (c *Container) cpuBudgetInstructions(coreCapacity float64) float64 {
	if c.Spec.CPULimitMillicores <= 0 {
		return math.Inf(1)
	}
	return c.cpuQuota.Available() / 1000 * coreCapacity
}

func (c *Container) reserveCPU(id string, millicoreSeconds float64) {
	if c.Spec.CPULimitMillicores <= 0 {
		return
	}
	_ = c.cpuQuota.Distribute(id, millicoreSeconds)
}

func (c *Container) releaseCPU(id string, millicoreSeconds float64) {
	if c.Spec.CPULimitMillicores <= 0 {
		return
	}
	c.cpuQuota.Release(id, millicoreSeconds)
}
