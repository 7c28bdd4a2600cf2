package physical

import (
	"net/netip"

	"github.com/cloudsim/cloudsim/sim/resource"
)

// NIC is a network interface attached to exactly one physical entity and
// connected to at most one peer NIC (§3). Uplink/downlink are independent
// half-duplex pools of capacity=bandwidth bytes/second.
type NIC struct {
	ID              string
	Owner           string // owning physical entity's ID
	Bandwidth       float64 // bytes/second
	ProcessingDelay float64 // seconds

	Address netip.Addr // only set for host/router interfaces

	ConnectedTo *NIC
	PoweredOn   bool

	Uplink   *resource.Resource
	Downlink *resource.Resource
}

// NewNIC creates a disconnected NIC of the given bandwidth and processing
// delay. now is the clock accessor used to timestamp utilization samples.
func NewNIC(id, owner string, bandwidth, processingDelay float64, now func() int64) *NIC {
	return &NIC{
		ID:              id,
		Owner:           owner,
		Bandwidth:       bandwidth,
		ProcessingDelay: processingDelay,
		Uplink:          resource.New(bandwidth, now),
		Downlink:        resource.New(bandwidth, now),
	}
}

// Connect links two NICs bidirectionally. Each NIC may have at most one
// peer; re-connecting replaces any prior peer link on both sides.
func Connect(a, b *NIC) {
	a.ConnectedTo = b
	b.ConnectedTo = a
}

// LinkBandwidth is the effective bandwidth of a link: the minimum of the
// two ports' bandwidths (§3 Topology graph).
func LinkBandwidth(a, b *NIC) float64 {
	if a.Bandwidth < b.Bandwidth {
		return a.Bandwidth
	}
	return b.Bandwidth
}
