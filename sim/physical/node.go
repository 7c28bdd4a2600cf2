package physical

import (
	"fmt"
	"sort"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/resource"
)

// PhysicalEntity is the common base for Host, Switch, Router, and Gateway:
// a CPU, RAM, ROM, a list of NICs, a queue of packets awaiting
// transmission, and a singleton packet-scheduler flag (§3).
type PhysicalEntity struct {
	*entity.Entity

	Kind string // "host", "switch", "router", "gateway"

	CPU *CPU
	RAM *resource.Resource
	ROM *resource.Resource

	PacketProcessingDelay float64 // seconds per hop
	IdlePower             float64
	CPUTDP                float64
	RAMTDP                float64

	nics []*NIC

	isGateway bool
	queue     []Packet
	sendArmed bool

	topo  *Topology
	sched *engine.Scheduler

	handlerSeq int
}

// NewPhysicalEntity wires up the shared fields. RAM/ROM capacities are in
// bytes; they are nil for a gateway, which performs no RAM accounting for
// packets (it is a pure sink/source, §3).
func NewPhysicalEntity(sched *engine.Scheduler, topo *Topology, kind string, id, label string, at float64,
	cpu *CPU, ramBytes, romBytes float64, packetDelay, idlePower, cpuTDP, ramTDP float64, isGateway bool) *PhysicalEntity {

	now := func() int64 { return int64(sched.Clock * 1e6) }
	pe := &PhysicalEntity{
		Kind:                  kind,
		CPU:                   cpu,
		PacketProcessingDelay: packetDelay,
		IdlePower:             idlePower,
		CPUTDP:                cpuTDP,
		RAMTDP:                ramTDP,
		isGateway:             isGateway,
		topo:                  topo,
		sched:                 sched,
	}
	if !isGateway {
		pe.RAM = resource.New(ramBytes, now)
		pe.ROM = resource.New(romBytes, now)
	}
	pe.Entity = entity.New(sched, id, label, at, nil, nil)
	return pe
}

// DeviceID implements Device.
func (pe *PhysicalEntity) DeviceID() string { return pe.Entity.ID }

// PacketDelay returns the device's configured per-hop decode delay in
// seconds, used by workload.Request to size PacketHandler processes.
func (pe *PhysicalEntity) PacketDelay() float64 { return pe.PacketProcessingDelay }

// NICs implements Device.
func (pe *PhysicalEntity) NICs() []*NIC { return pe.nics }

// AddNIC attaches a new NIC to this device. The device joins the topology
// graph through Topology.AddDevice or Topology.ConnectDevice, which register
// the outer device (Host, Switch, Router, Gateway), not this embedded base.
func (pe *PhysicalEntity) AddNIC(n *NIC) {
	pe.nics = append(pe.nics, n)
}

// CachePacket implements §4.5 cache_packet: reserves RAM (skipped for the
// gateway and for a loopback packet), enqueues p, marks it SCHEDULED (first
// time) and QUEUED, sets current_hop to this node, and spawns a
// PacketHandler process on this node's CPU.
func (pe *PhysicalEntity) CachePacket(p Packet, now float64) {
	p.MarkScheduledOnce(now)
	p.SetCurrentHop(pe.Entity.ID, now)

	if p.IsLoopback() {
		p.MarkArrived(now)
		return
	}

	if p.IsLastHop() {
		// Final destination: still double-debits RAM while "decoding"
		// (§5 shared-resource policy) but there is nothing further to
		// transmit, so it is released immediately on arrival.
		if !pe.isGateway {
			if err := pe.RAM.Distribute(p.ID(), p.SizeBytes()); err != nil {
				p.MarkDropped(now)
				return
			}
		}
		p.MarkArrived(now)
		if !pe.isGateway {
			pe.RAM.Release(p.ID(), p.SizeBytes())
		}
		return
	}

	if pe.isGateway {
		// The gateway is a sink/source with no RAM/CPU accounting: a
		// packet passing through it (not yet at its destination) is
		// immediately ready to transmit onward.
		pe.queue = append(pe.queue, p)
		p.MarkQueued()
		p.MarkDecoded(now)
		pe.armSend()
		return
	}

	if err := pe.RAM.Distribute(p.ID(), p.SizeBytes()); err != nil {
		p.MarkDropped(now)
		return
	}
	pe.queue = append(pe.queue, p)
	p.MarkQueued()

	pe.handlerSeq++
	handlerID := fmt.Sprintf("%s/packet-handler/%d", pe.Entity.ID, pe.handlerSeq)
	coreCap := 0.0
	if len(pe.CPU.Cores) > 0 {
		coreCap = pe.CPU.Cores[0].Capacity
	}
	h := newPacketHandler(handlerID, p, coreCap, func(now float64) { pe.armSend() })
	pe.CPU.CacheProcess(h)
}

func (pe *PhysicalEntity) removeFromQueue(p Packet) {
	for i, q := range pe.queue {
		if q.ID() == p.ID() {
			pe.queue = append(pe.queue[:i], pe.queue[i+1:]...)
			return
		}
	}
}

// armSend arms a single pending send_packets pass (§5 coalesced
// scheduling).
func (pe *PhysicalEntity) armSend() {
	if pe.sendArmed {
		return
	}
	pe.sendArmed = true
	pe.sched.Schedule(engine.NewActor(pe.sched.Clock, engine.HostSchedulePacket, pe.Entity.Label+"/send", func(now float64) {
		pe.sendArmed = false
		pe.sendPackets(now)
	}))
}

// sendPackets implements §4.5 send_packets: packets are visited
// priority-ascending; a DECODED, non-terminated, non-transmitting packet
// whose next hop has a matching connected NIC pair with enough downlink/
// uplink headroom is handed off, reserving bandwidth on both sides and
// scheduling release/arrival at the transmission's completion time.
func (pe *PhysicalEntity) sendPackets(now float64) {
	ordered := make([]Packet, len(pe.queue))
	copy(ordered, pe.queue)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SchedPriority() < ordered[j].SchedPriority() })

	for _, p := range ordered {
		if p.IsTerminated() || p.IsTransmitting() || !p.IsDecoded() {
			continue
		}
		nextHop := p.NextHopID()
		var out, in *NIC
		for _, n := range pe.nics {
			if n.ConnectedTo != nil && n.ConnectedTo.Owner == nextHop {
				out = n
				in = n.ConnectedTo
				break
			}
		}
		if out == nil {
			continue
		}
		if out.Downlink.Available() < p.SizeBytes() || in.Uplink.Available() < p.SizeBytes() {
			continue
		}
		if err := out.Downlink.Distribute(p.ID(), p.SizeBytes()); err != nil {
			continue
		}
		if err := in.Uplink.Distribute(p.ID(), p.SizeBytes()); err != nil {
			out.Downlink.Release(p.ID(), p.SizeBytes())
			continue
		}
		p.MarkTransmitting()
		p.ClearQueued()
		pe.removeFromQueue(p)

		bw := LinkBandwidth(out, in)
		dt := p.SizeBytes() / bw
		arriveAt := now + dt

		pe.sched.Schedule(engine.NewActor(arriveAt, engine.Termination, pe.Entity.Label+"/tx-release", func(now float64) {
			out.Downlink.Release(p.ID(), p.SizeBytes())
			if !pe.isGateway {
				pe.RAM.Release(p.ID(), p.SizeBytes())
			}
		}))
		peerID := in.Owner
		pe.sched.Schedule(engine.NewActor(arriveAt, engine.HostSchedulePacket, pe.Entity.Label+"/tx-arrive", func(now float64) {
			in.Uplink.Release(p.ID(), p.SizeBytes())
			p.ClearTransmitting()
			peer, ok := pe.topo.DeviceByID(peerID)
			if !ok {
				return
			}
			relay, ok := peer.(Relay)
			if !ok {
				return
			}
			relay.CachePacket(p, now)
		}))
	}
}

// Relay is implemented by every PhysicalEntity-embedding device: it can
// accept a hop of packet transport.
type Relay interface {
	Device
	CachePacket(p Packet, now float64)
}
