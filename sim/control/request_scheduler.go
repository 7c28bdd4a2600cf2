package control

import (
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// RequestScheduler resolves each SFC stage's NetworkService to a concrete
// workload.Endpoint through that stage's load balancer, and records every
// (workflow, stage) pair it has resolved, as reported by AlreadyScheduled.
// It sets no status on the Workflow, and Resolve does not refuse a pair that
// was already resolved.
type RequestScheduler struct {
	scheduled map[string]bool
}

// NewRequestScheduler constructs an empty RequestScheduler.
func NewRequestScheduler() *RequestScheduler {
	return &RequestScheduler{scheduled: map[string]bool{}}
}

// Resolve implements flow.Resolver: selects a replica for ns via its
// Service's load balancer and records the (workflow, stage) pair as
// scheduled.
func (rs *RequestScheduler) Resolve(workflowID string, ns *service.NetworkService) (workload.Endpoint, error) {
	ep, err := ns.Service.Resolve()
	if err != nil {
		return workload.Endpoint{}, err
	}
	rs.scheduled[workflowID+"/"+ns.Name] = true
	return ep, nil
}

// AlreadyScheduled reports whether (workflowID, ns) has already been
// resolved once.
func (rs *RequestScheduler) AlreadyScheduled(workflowID string, ns *service.NetworkService) bool {
	return rs.scheduled[workflowID+"/"+ns.Name]
}
