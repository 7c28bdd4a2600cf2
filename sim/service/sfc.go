package service

import "fmt"

// SFC is a Service Function Chain: an ordered sequence of NetworkService
// stages a request's traffic is steered through (§3 SFC). A request entering
// the chain is routed to Stages[0] and, once handled, forwarded to
// Stages[1], and so on; the user only ever addresses the entry stage.
type SFC struct {
	Name   string
	Stages []*NetworkService

	// SkipHead/SkipTail mark the chain's first/last stage as purely
	// structural (e.g. an ingress/egress shim internal to the chain). They
	// are stored as given; nothing in the simulator reads them.
	SkipHead bool
	SkipTail bool
}

// NewSFC constructs an SFC from an ordered stage list.
func NewSFC(name string, stages []*NetworkService, skipHead, skipTail bool) *SFC {
	return &SFC{Name: name, Stages: stages, SkipHead: skipHead, SkipTail: skipTail}
}

// Validate checks the chain has at least one stage and no nil entries
// (§7: a malformed SFC is a fatal configuration error).
func (s *SFC) Validate() error {
	if len(s.Stages) == 0 {
		return fmt.Errorf("sfc %s: no stages", s.Name)
	}
	for i, st := range s.Stages {
		if st == nil {
			return fmt.Errorf("sfc %s: nil stage at index %d", s.Name, i)
		}
	}
	return nil
}

// Entry returns the chain's first stage, the one external users address.
func (s *SFC) Entry() *NetworkService { return s.Stages[0] }

// Exit returns the chain's last stage.
func (s *SFC) Exit() *NetworkService { return s.Stages[len(s.Stages)-1] }

// Next returns the stage following cur, or nil if cur is the chain's exit.
func (s *SFC) Next(cur *NetworkService) *NetworkService {
	for i, st := range s.Stages {
		if st == cur {
			if i+1 < len(s.Stages) {
				return s.Stages[i+1]
			}
			return nil
		}
	}
	return nil
}

// Ready reports whether every stage's microservice currently holds at least
// one container in its replica list (§3 SFC). The microservices' own READY
// status is not consulted.
func (s *SFC) Ready() bool {
	for _, st := range s.Stages {
		if len(st.Service.Microservice.Containers()) == 0 {
			return false
		}
	}
	return true
}
