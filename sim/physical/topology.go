package physical

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Device is anything that can sit in the topology graph: hosts, switches,
// routers, and the gateway.
type Device interface {
	DeviceID() string
	NICs() []*NIC
}

// Topology is the directed, weighted graph over physical devices. Edges are
// created in pairs by ConnectDevice, weighted by per-link bandwidth
// (§3 Topology graph). Shortest-path resolution uses gonum's Dijkstra
// implementation over a graph.Weighted, so path cost is edge weight =
// 1e9/bandwidth (lower-bandwidth links cost more hops-equivalent).
type Topology struct {
	g      *simple.WeightedDirectedGraph
	nodeOf map[string]int64
	devOf  map[int64]Device
	next   int64
}

// NewTopology creates an empty topology graph.
func NewTopology() *Topology {
	return &Topology{
		g:      simple.NewWeightedDirectedGraph(0, 0),
		nodeOf: map[string]int64{},
		devOf:  map[int64]Device{},
	}
}

// AddDevice registers d as a node, if not already present.
func (t *Topology) AddDevice(d Device) {
	if _, ok := t.nodeOf[d.DeviceID()]; ok {
		return
	}
	id := t.next
	t.next++
	t.nodeOf[d.DeviceID()] = id
	t.devOf[id] = d
	t.g.AddNode(simple.Node(id))
}

// ConnectDevice links two NICs (one on each device) and adds a pair of
// directed, weighted edges between the owning devices so shortest-path
// resolution is stable by the time any packet queries it (§5 ordering
// guarantees: edges are added under CREATION priority by the caller).
func (t *Topology) ConnectDevice(a Device, nicA *NIC, b Device, nicB *NIC) {
	t.AddDevice(a)
	t.AddDevice(b)
	Connect(nicA, nicB)

	bw := LinkBandwidth(nicA, nicB)
	weight := 1.0
	if bw > 0 {
		weight = 1e9 / bw // lower bandwidth => higher edge cost
	}
	idA, idB := t.nodeOf[a.DeviceID()], t.nodeOf[b.DeviceID()]
	t.g.SetWeightedEdge(t.g.NewWeightedEdge(simple.Node(idA), simple.Node(idB), weight))
	t.g.SetWeightedEdge(t.g.NewWeightedEdge(simple.Node(idB), simple.Node(idA), weight))
}

// ShortestPath returns the device sequence from src to dst inclusive. A
// source equal to destination returns a single-element path (the loopback
// case, §3 Packet). Returns an error (path-not-found, fatal at packet
// creation per §7) when no path exists.
func (t *Topology) ShortestPath(srcID, dstID string) ([]Device, error) {
	srcNode, ok := t.nodeOf[srcID]
	if !ok {
		return nil, fmt.Errorf("topology: unknown device %q", srcID)
	}
	dstNode, ok := t.nodeOf[dstID]
	if !ok {
		return nil, fmt.Errorf("topology: unknown device %q", dstID)
	}
	if srcID == dstID {
		return []Device{t.devOf[srcNode]}, nil
	}

	shortest := path.DijkstraFrom(simple.Node(srcNode), t.g)
	nodes, _ := shortest.To(dstNode)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("topology: no path from %q to %q", srcID, dstID)
	}
	devices := make([]Device, 0, len(nodes))
	for _, n := range nodes {
		devices = append(devices, t.devOf[n.ID()])
	}
	return devices, nil
}

// DeviceByID looks up a registered device by its ID.
func (t *Topology) DeviceByID(id string) (Device, bool) {
	nodeID, ok := t.nodeOf[id]
	if !ok {
		return nil, false
	}
	d, ok := t.devOf[nodeID]
	return d, ok
}

// Neighbors returns the set of devices directly connected to d.
func (t *Topology) Neighbors(d Device) []Device {
	id, ok := t.nodeOf[d.DeviceID()]
	if !ok {
		return nil
	}
	var out []Device
	nodes := t.g.From(id)
	for nodes.Next() {
		out = append(out, t.devOf[nodes.Node().ID()])
	}
	return out
}

var _ graph.Graph = (*simple.WeightedDirectedGraph)(nil)
