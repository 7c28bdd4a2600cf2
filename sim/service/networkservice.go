package service

import (
	"net/netip"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
)

// NetworkService wraps a Service with a fixed-at-creation virtual IP,
// the unit other SFC stages and external users address (§9 supplemented:
// service IP is assigned once at creation and never changes).
type NetworkService struct {
	*entity.Entity

	Name    string
	IP      netip.Addr
	Service *Service
}

// NewNetworkService constructs a NetworkService with the given virtual IP;
// Simulator.AddNetworkService draws that IP from the simulation's virtual
// network pool.
func NewNetworkService(sched *engine.Scheduler, id string, at float64, name string, ip netip.Addr, svc *Service) *NetworkService {
	ns := &NetworkService{Name: name, IP: ip, Service: svc}
	ns.Entity = entity.New(sched, id, name, at, nil, nil)
	return ns
}
