package physical

// Packet is the subset of workload.Packet behavior the physical layer needs
// to queue, decode, and transmit it, keeping physical -> workload
// one-directional (see process.go for the same pattern applied to Process).
type Packet interface {
	ID() string
	SizeBytes() float64
	SchedPriority() float64

	CurrentHopID() string
	NextHopID() string
	IsLastHop() bool

	// SetCurrentHop advances current_hop to nodeID. Implementations must
	// never regress current_hop (§3 invariant).
	SetCurrentHop(nodeID string, now float64)

	IsLoopback() bool
	IsTerminated() bool
	IsDecoded() bool
	IsTransmitting() bool

	MarkScheduledOnce(now float64)
	MarkQueued()
	ClearQueued()
	MarkDecoded(now float64)
	MarkTransmitting()
	ClearTransmitting()
	MarkDropped(now float64)
	MarkArrived(now float64) // last node on path reached

	// HandlerLength returns the instruction length of the PacketHandler
	// process this node will run to decode the packet: host delay
	// expressed in instructions at the given single-core capacity
	// (§3 Process variants: PacketHandler).
	HandlerLength(coreCapacity float64) float64
}
