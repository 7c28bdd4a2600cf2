// Package service groups containers into horizontally-scaled Microservices,
// exposes them through a Service behind a pluggable LoadBalancer, and chains
// them into Service Function Chains (§3 Microservice/Service/SFC, §4.8).
package service

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// Microservice is a named, horizontally-scaled group of identically-specced
// Containers (§3). It implements workload.MicroserviceRef.
type Microservice struct {
	*entity.Entity

	Name        string
	Spec        workload.ContainerSpec
	MinReplicas int
	MaxReplicas int
	Taint       string

	// CPUUpperBound/CPULowerBound/RAMUpperBound/RAMLowerBound are this
	// microservice's own four autoscaling bounds (§6 default autoscaler):
	// scale up when either average utilization exceeds its upper bound,
	// scale down when both fall below their lower bounds. Left at zero they
	// are filled in by MicroserviceEvaluator from its construction-time
	// defaults, but may be set per-microservice before StartControlPlane.
	CPUUpperBound float64
	CPULowerBound float64
	RAMUpperBound float64
	RAMLowerBound float64

	containers []*workload.Container

	sched    *engine.Scheduler
	replicaN int
}

// NewMicroservice constructs a Microservice with no replicas yet; the
// control package's container scheduler brings it up to MinReplicas.
func NewMicroservice(sched *engine.Scheduler, id, name string, at float64, spec workload.ContainerSpec, minReplicas, maxReplicas int, taint string) *Microservice {
	m := &Microservice{
		Name: name, Spec: spec, MinReplicas: minReplicas, MaxReplicas: maxReplicas, Taint: taint,
		sched: sched,
	}
	m.Entity = entity.New(sched, id, name, at, nil, nil)
	return m
}

// ID implements workload.MicroserviceRef.
func (m *Microservice) ID() string { return m.Entity.ID }

// Containers returns the microservice's current replica set.
func (m *Microservice) Containers() []*workload.Container { return m.containers }

// ReplicaCount reports the number of live (non-crashed) containers.
func (m *Microservice) ReplicaCount() int { return len(m.containers) }

// NeedsScaleUp reports whether the microservice is below MaxReplicas and
// should be considered for a new replica by the evaluator (§4.9).
func (m *Microservice) NeedsScaleUp() bool {
	return m.MaxReplicas <= 0 || len(m.containers) < m.MaxReplicas
}

// NeedsScaleDown reports whether the microservice is above MinReplicas.
func (m *Microservice) NeedsScaleDown() bool {
	return len(m.containers) > m.MinReplicas
}

// NewContainerSpec returns a copy of the microservice's ContainerSpec tagged
// with a fresh ordinal, for the control package's container scheduler to
// construct the next replica's Container.
func (m *Microservice) NewContainerSpec() (string, workload.ContainerSpec) {
	m.replicaN++
	id := fmt.Sprintf("%s/replica-%d", m.Entity.ID, m.replicaN)
	return id, m.Spec
}

// AddContainer registers c as one of this microservice's replicas and sets
// its back-reference.
func (m *Microservice) AddContainer(c *workload.Container) {
	c.Microservice = m
	m.containers = append(m.containers, c)
}

// NotifyContainerScheduled implements workload.MicroserviceRef: re-derives
// READY from the live scheduled-replica count against MinReplicas (§3/
// §4.7), rather than latching true on the first scheduled container.
func (m *Microservice) NotifyContainerScheduled(c *workload.Container, now float64) {
	m.RefreshReady()
}

// RemoveContainer drops c from the replica set without touching its host
// reservations (used after the evaluator has already called
// c.Decommission), and re-derives READY. No-op if c is not a current
// replica.
func (m *Microservice) RemoveContainer(c *workload.Container) {
	for i, existing := range m.containers {
		if existing == c {
			m.containers = append(m.containers[:i], m.containers[i+1:]...)
			m.RefreshReady()
			return
		}
	}
}

// NotifyContainerCrashed implements workload.MicroserviceRef: drops c from
// the replica set and re-derives READY (§4.4 cascade, §3/§4.7).
func (m *Microservice) NotifyContainerCrashed(c *workload.Container, now float64) {
	for i, existing := range m.containers {
		if existing == c {
			m.containers = append(m.containers[:i], m.containers[i+1:]...)
			break
		}
	}
	m.RefreshReady()
}

// AverageCPUUtilization is the mean CPU-quota utilization across replicas,
// one of the two signals the microservice evaluator scales on (§4.9).
func (m *Microservice) AverageCPUUtilization() float64 {
	if len(m.containers) == 0 {
		return 0
	}
	var sum float64
	for _, c := range m.containers {
		sum += c.CPUQuotaUtilization()
	}
	return sum / float64(len(m.containers))
}

// AverageRAMUtilization is the mean RAM-quota utilization across replicas,
// consulted alongside AverageCPUUtilization by the default four-bound
// autoscaler (§6).
func (m *Microservice) AverageRAMUtilization() float64 {
	if len(m.containers) == 0 {
		return 0
	}
	var sum float64
	for _, c := range m.containers {
		sum += c.RAMQuotaUtilization()
	}
	return sum / float64(len(m.containers))
}

// readyThreshold is the scheduled-replica count required for READY, per
// §3/§4.7 ("scheduled-container count ≥ min_num_containers").
func (m *Microservice) readyThreshold() int {
	if m.MinReplicas <= 0 {
		return 1
	}
	return m.MinReplicas
}

// scheduledCount returns the number of replicas currently placed on a host.
func (m *Microservice) scheduledCount() int {
	n := 0
	for _, c := range m.containers {
		if c.Scheduled() {
			n++
		}
	}
	return n
}

// RefreshReady re-derives READY from the live scheduled-replica count
// against MinReplicas (§3/§4.7: "READY when scheduled-container count ≥
// min_num_containers"), rather than latching on the first scheduled
// container. Called on every scheduling/crash/removal transition and on
// every evaluator pass.
func (m *Microservice) RefreshReady() {
	if m.scheduledCount() >= m.readyThreshold() {
		m.SetStatus(entity.Ready)
	} else {
		m.ClearStatus(entity.Ready)
	}
}
