package workload

import "github.com/cloudsim/cloudsim/sim/physical"

// PacketRequestRef is the narrow Request-facing interface a Packet notifies
// on arrival or drop.
type PacketRequestRef interface {
	ID() string
	OnPacketArrived(p *Packet, now float64)
	OnPacketDropped(p *Packet, now float64)
}

// Packet is a unit of network transport between two devices along a
// precomputed shortest path (§3, §4.5). It implements physical.Packet.
type Packet struct {
	id       string
	Size     float64 // bytes
	Priority float64

	Path     []physical.Device
	hopIndex int

	Request PacketRequestRef

	// DelaySeconds is the decode delay charged at each hop, set from the
	// hop's configured PacketProcessingDelay when the packet is created
	// (§3 Host/Switch/Router fields).
	DelaySeconds float64

	scheduledOnce bool
	queued        bool
	decoded       bool
	transmitting  bool
	dropped       bool
	arrived       bool
}

// NewPacket constructs a Packet that will travel along path (inclusive of
// source and destination), decoding at delaySeconds per hop.
func NewPacket(id string, size, priority, delaySeconds float64, path []physical.Device, req PacketRequestRef) *Packet {
	return &Packet{id: id, Size: size, Priority: priority, DelaySeconds: delaySeconds, Path: path, Request: req}
}

func (p *Packet) ID() string             { return p.id }
func (p *Packet) SizeBytes() float64     { return p.Size }
func (p *Packet) SchedPriority() float64 { return p.Priority }

func (p *Packet) CurrentHopID() string {
	if p.hopIndex >= len(p.Path) {
		return ""
	}
	return p.Path[p.hopIndex].DeviceID()
}

func (p *Packet) NextHopID() string {
	if p.hopIndex+1 >= len(p.Path) {
		return ""
	}
	return p.Path[p.hopIndex+1].DeviceID()
}

func (p *Packet) IsLastHop() bool { return p.hopIndex == len(p.Path)-1 }
func (p *Packet) IsLoopback() bool { return len(p.Path) == 1 }

// SetCurrentHop advances current_hop to the matching index in Path. The
// invariant that current_hop never regresses (§3) holds because the
// physical layer only calls this when a packet is handed to its next hop
// in path order.
func (p *Packet) SetCurrentHop(nodeID string, now float64) {
	for i, d := range p.Path {
		if d.DeviceID() == nodeID && i >= p.hopIndex {
			p.hopIndex = i
			return
		}
	}
}

func (p *Packet) IsTerminated() bool   { return p.dropped || p.arrived }
func (p *Packet) IsDecoded() bool      { return p.decoded }
func (p *Packet) IsTransmitting() bool { return p.transmitting }

func (p *Packet) MarkScheduledOnce(now float64) { p.scheduledOnce = true }
func (p *Packet) MarkQueued()                   { p.queued = true }
func (p *Packet) ClearQueued()                  { p.queued = false }
func (p *Packet) MarkDecoded(now float64)       { p.decoded = true }
func (p *Packet) MarkTransmitting()             { p.transmitting = true }
func (p *Packet) ClearTransmitting()            { p.transmitting = false }

func (p *Packet) MarkDropped(now float64) {
	if p.dropped || p.arrived {
		return
	}
	p.dropped = true
	if p.Request != nil {
		p.Request.OnPacketDropped(p, now)
	}
}

func (p *Packet) MarkArrived(now float64) {
	if p.dropped || p.arrived {
		return
	}
	p.arrived = true
	p.decoded = true
	if p.Request != nil {
		p.Request.OnPacketArrived(p, now)
	}
}

// HandlerLength returns the instruction length of the PacketHandler process
// a node runs to decode this packet: DelaySeconds expressed as instructions
// at coreCapacity (§3 Process variants: PacketHandler).
func (p *Packet) HandlerLength(coreCapacity float64) float64 {
	return coreCapacity * p.DelaySeconds
}
