package service

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/workload"
)

// Service exposes a Microservice's replica set behind a LoadBalancer,
// resolving each request to a concrete workload.Endpoint (§3 Service,
// §4.8 load balancing).
type Service struct {
	Name         string
	Microservice *Microservice
	Balancer     LoadBalancer

	// RAMPerRequestBytes is reserved on the target container's host for
	// the duration of handling one inbound request (buffers beyond the
	// container's baseline RAM request/limit).
	RAMPerRequestBytes float64
}

// NewService constructs a Service fronting ms with the given balancer.
func NewService(name string, ms *Microservice, lb LoadBalancer, ramPerRequest float64) *Service {
	return &Service{Name: name, Microservice: ms, Balancer: lb, RAMPerRequestBytes: ramPerRequest}
}

// Resolve selects a replica via the load balancer and builds the
// workload.Endpoint a Request targets. Fails if the microservice currently
// has no schedulable replica (§4.9 Open Question: requests arriving before
// the first replica is ready are rejected rather than queued).
func (s *Service) Resolve() (workload.Endpoint, error) {
	c := s.Balancer.Select(s.Microservice.Containers())
	if c == nil {
		return workload.Endpoint{}, fmt.Errorf("service %s: no ready replica", s.Name)
	}
	return workload.Endpoint{
		Container: c,
		Device:    c.Host,
		RAMBytes:  s.RAMPerRequestBytes,
	}, nil
}
