package physical

import "math"

// packetHandler is the host-affine process spawned to decode a queued
// packet (§3 Process variants: PacketHandler). Its length is derived from
// the host's processing delay and a single core's capacity, and it bypasses
// container CPU quotas entirely.
type packetHandler struct {
	id       string
	packet   Packet
	length   float64
	progress float64
	scheduled float64
	cores    map[*Core]bool
	failed   bool
	onDone   func(now float64)
}

func newPacketHandler(id string, p Packet, coreCapacity float64, onDone func(now float64)) *packetHandler {
	return &packetHandler{
		id:     id,
		packet: p,
		length: p.HandlerLength(coreCapacity),
		cores:  map[*Core]bool{},
		onDone: onDone,
	}
}

func (h *packetHandler) ID() string            { return h.id }
func (h *packetHandler) SchedPriority() float64 { return math.Inf(-1) } // host-affine, runs ASAP
func (h *packetHandler) Remaining() float64    { return h.length - h.progress - h.scheduled }
func (h *packetHandler) ContainerMillicoreBudget(float64) float64 { return math.Inf(1) } // bypasses container quota
func (h *packetHandler) ReserveContainerCPU(float64)              {}
func (h *packetHandler) ReleaseContainerCPU(float64)              {}
func (h *packetHandler) AddScheduled(chunk float64)               { h.scheduled += chunk }
func (h *packetHandler) MarkExecuting(c *Core)                    { h.cores[c] = true }
func (h *packetHandler) ClearExecuting(c *Core) int {
	delete(h.cores, c)
	return len(h.cores)
}
func (h *packetHandler) Advance(n float64) { h.progress += n }
func (h *packetHandler) Failed() bool      { return h.failed }
func (h *packetHandler) CompleteCheck(now float64) {
	if h.progress < h.length {
		return
	}
	h.packet.MarkDecoded(now)
	if h.onDone != nil {
		h.onDone(now)
	}
}
