package workload

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
)

// Kind is the request's CRUD-style verb (§4.6).
type Kind string

const (
	GET  Kind = "GET"
	POST Kind = "POST"
	LIST Kind = "LIST"
)

// WorkflowRef is the narrow slice of flow.Workflow behavior a Request
// notifies when it finishes, kept here to avoid workload importing flow.
type WorkflowRef interface {
	ID() string
	OnRequestCompleted(r *Request, now float64)
	OnRequestFailed(r *Request, now float64)
}

// RequestRecorder is the narrow telemetry hook a Request notifies on
// completion or failure, implemented by monitor.RequestMonitor.
type RequestRecorder interface {
	RecordCompleted(now float64)
	RecordFailed(now float64)
}

// Endpoint identifies one side of a Request: either a container reachable
// through a host, or an external user reachable through the gateway.
type Endpoint struct {
	IsUser    bool
	Container *Container
	Device    physical.Device // host or gateway the endpoint is reachable at
	RAMBytes  float64         // RAM the target container claims per request, held while its Process runs (0 for a user endpoint)
}

// Request is one GET/POST/LIST exchange between a source and target
// Endpoint, expanded into a chain of Packets and a Process on the target
// container (§4.6). Knobs come from the owning Workflow's per-flow
// distributions: Priority and the response packet size are sampled once at
// Expand time, each inbound packet samples its own size, ProcessLength is
// sampled when the Process is admitted, and NumPackets is sampled at Expand
// for POST and when the Process completes for LIST.
type Request struct {
	id   string
	Kind Kind

	Source Endpoint
	Target Endpoint

	ProcessLength knob.Float
	PacketSize    knob.Float
	NumPackets    knob.Int
	Priority      knob.Float

	Workflow WorkflowRef

	// Recorder is an optional telemetry hook (monitor.RequestRecorder)
	// notified alongside Workflow on completion/failure.
	Recorder RequestRecorder

	topo *physical.Topology

	path        []physical.Device
	reversePath []physical.Device
	priority    float64
	respSize    float64

	inboundPending  int
	outboundPending int
	process         *Process
	failed          bool
	completed       bool

	packetSeq int
}

// NewRequest constructs an unexpanded Request.
func NewRequest(id string, kind Kind, src, dst Endpoint, topo *physical.Topology,
	processLength knob.Float, packetSize knob.Float, numPackets knob.Int, priority knob.Float, wf WorkflowRef) *Request {
	return &Request{
		id: id, Kind: kind, Source: src, Target: dst, topo: topo,
		ProcessLength: processLength, PacketSize: packetSize, NumPackets: numPackets, Priority: priority,
		Workflow: wf,
	}
}

func (r *Request) ID() string { return r.id }

// WithRecorder attaches a telemetry Recorder, returning r for chaining.
func (r *Request) WithRecorder(rec RequestRecorder) *Request {
	r.Recorder = rec
	return r
}
func (r *Request) Failed() bool    { return r.failed }
func (r *Request) Completed() bool { return r.completed }

// Expand materializes the request's packet/process chain (§4.6):
//   - GET: one inbound packet triggers a Process on the target container;
//     completion sends one outbound response packet.
//   - POST: NumPackets inbound payload packets; the last to arrive triggers
//     the Process; completion sends one outbound ack packet.
//   - LIST: one inbound packet triggers the Process; completion sends
//     NumPackets outbound result packets.
func (r *Request) Expand(now float64) error {
	path, err := r.topo.ShortestPath(r.Source.Device.DeviceID(), r.Target.Device.DeviceID())
	if err != nil {
		return fmt.Errorf("request %s: %w", r.id, err)
	}
	r.path = path
	r.reversePath = reversed(path)
	r.priority = r.Priority.Sample()
	r.respSize = r.PacketSize.Sample()

	inbound := 1
	if r.Kind == POST {
		inbound = max1(r.NumPackets.Sample())
	}
	r.inboundPending = inbound
	for i := 0; i < inbound; i++ {
		r.sendPacket(r.path, r.PacketSize.Sample(), true, now)
	}
	return nil
}

func (r *Request) sendPacket(path []physical.Device, size float64, inbound bool, now float64) {
	r.packetSeq++
	dir := "out"
	if inbound {
		dir = "in"
	}
	id := fmt.Sprintf("%s/%s/%d", r.id, dir, r.packetSeq)
	delay := hopDelay(path[0])
	pkt := NewPacket(id, size, r.priority, delay, path, r)
	if rel, ok := path[0].(physical.Relay); ok {
		rel.CachePacket(pkt, now)
	}
}

// hopDelay reads the originating device's configured per-hop decode delay
// when available (every PhysicalEntity exposes one); falls back to zero for
// a bare Device implementation.
func hopDelay(d physical.Device) float64 {
	type delayer interface{ PacketDelay() float64 }
	if dd, ok := d.(delayer); ok {
		return dd.PacketDelay()
	}
	return 0
}

// OnPacketArrived implements PacketRequestRef: once every inbound packet has
// arrived, a Process is admitted into the target container. Once every
// outbound packet has arrived back at the source, the request completes.
func (r *Request) OnPacketArrived(p *Packet, now float64) {
	if r.failed || r.completed {
		return
	}
	if r.process == nil {
		r.inboundPending--
		if r.inboundPending > 0 {
			return
		}
		r.admitProcess(now)
		return
	}
	r.outboundPending--
	if r.outboundPending <= 0 {
		r.completed = true
		if r.Recorder != nil {
			r.Recorder.RecordCompleted(now)
		}
		if r.Workflow != nil {
			r.Workflow.OnRequestCompleted(r, now)
		}
	}
}

// OnPacketDropped implements PacketRequestRef: a dropped packet fails the
// whole request (§4.6, §7 failure propagation).
func (r *Request) OnPacketDropped(p *Packet, now float64) {
	r.Fail(now)
}

func (r *Request) admitProcess(now float64) {
	length := r.ProcessLength.Sample()
	id := r.id + "/process"
	proc := NewProcess(id, id, length, r.priority, r.Target.Container, r)
	r.process = proc
	if r.Target.Container != nil {
		r.Target.Container.AcceptProcess(proc, r.Target.RAMBytes, now)
	}
}

// OnProcessCompleted implements RequestRef: the target's Process finished,
// so the response packet(s) are sent back toward the source.
func (r *Request) OnProcessCompleted(p *Process, now float64) {
	if r.failed || r.completed {
		return
	}
	outbound := 1
	if r.Kind == LIST {
		outbound = max1(r.NumPackets.Sample())
	}
	r.outboundPending = outbound
	for i := 0; i < outbound; i++ {
		r.sendPacket(r.reversePath, r.respSize, false, now)
	}
}

// OnProcessFailed implements RequestRef: a failed target process fails the
// whole request.
func (r *Request) OnProcessFailed(p *Process, now float64) {
	r.Fail(now)
}

// Fail marks the request FAILED and notifies its owning workflow. Idempotent.
func (r *Request) Fail(now float64) {
	if r.failed || r.completed {
		return
	}
	r.failed = true
	if r.Recorder != nil {
		r.Recorder.RecordFailed(now)
	}
	if r.Workflow != nil {
		r.Workflow.OnRequestFailed(r, now)
	}
}

func reversed(path []physical.Device) []physical.Device {
	out := make([]physical.Device, len(path))
	for i, d := range path {
		out[len(path)-1-i] = d
	}
	return out
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
