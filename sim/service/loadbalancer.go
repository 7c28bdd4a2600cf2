package service

import (
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/rng"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// LoadBalancer selects which replica of a Microservice handles the next
// request (§4.8). Implementations must tolerate an empty slice by returning
// nil.
type LoadBalancer interface {
	Select(containers []*workload.Container) *workload.Container
}

// RoundRobinLB cycles through replicas in order, skipping crashed ones.
type RoundRobinLB struct {
	next int
}

func NewRoundRobinLB() *RoundRobinLB { return &RoundRobinLB{} }

func (lb *RoundRobinLB) Select(containers []*workload.Container) *workload.Container {
	live := liveContainers(containers)
	if len(live) == 0 {
		return nil
	}
	c := live[lb.next%len(live)]
	lb.next++
	return c
}

// BestFitLB routes to the replica with the lowest current CPU utilization
// among those below their full CPU quota, steering new work to the least
// busy container; when every replica is full it returns the first (§4.8).
type BestFitLB struct{}

func NewBestFitLB() *BestFitLB { return &BestFitLB{} }

func (lb *BestFitLB) Select(containers []*workload.Container) *workload.Container {
	live := liveContainers(containers)
	var best *workload.Container
	bestUtil := 2.0
	for _, c := range live {
		u := c.CPUQuotaUtilization()
		if u < 1 && u < bestUtil {
			best = c
			bestUtil = u
		}
	}
	if best == nil && len(live) > 0 {
		best = live[0]
	}
	return best
}

// WorstFitLB routes to the replica with the highest current CPU
// utilization, concentrating load on the busiest container (§4.8).
type WorstFitLB struct{}

func NewWorstFitLB() *WorstFitLB { return &WorstFitLB{} }

func (lb *WorstFitLB) Select(containers []*workload.Container) *workload.Container {
	live := liveContainers(containers)
	var worst *workload.Container
	worstUtil := -1.0
	for _, c := range live {
		u := c.CPUQuotaUtilization()
		if u > worstUtil {
			worst = c
			worstUtil = u
		}
	}
	return worst
}

// RandomLB routes to a uniformly random live replica, using the
// simulation's seeded Generator for determinism.
type RandomLB struct {
	rng *rng.Generator
}

func NewRandomLB(g *rng.Generator) *RandomLB { return &RandomLB{rng: g} }

func (lb *RandomLB) Select(containers []*workload.Container) *workload.Container {
	live := liveContainers(containers)
	if len(live) == 0 {
		return nil
	}
	return live[lb.rng.Intn(len(live))]
}

// liveContainers filters to scheduled, non-crashed replicas not currently
// cordoned for scale-down drain: a cordoned container keeps serving the
// requests it already holds but stops receiving new ones (§4.9).
func liveContainers(containers []*workload.Container) []*workload.Container {
	out := make([]*workload.Container, 0, len(containers))
	for _, c := range containers {
		if !c.Crashed() && c.Scheduled() && !c.HasStatus(entity.Cordon) {
			out = append(out, c)
		}
	}
	return out
}
