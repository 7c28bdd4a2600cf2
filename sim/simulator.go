// Package sim wires every subsystem — engine, physical, workload, service,
// flow, control, monitor — into the single driver API a caller (the cmd/
// CLI, or a test) uses to build and run a simulation (§6).
package sim

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cloudsim/cloudsim/sim/config"
	"github.com/cloudsim/cloudsim/sim/control"
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/flow"
	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/monitor"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/rng"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// Simulator owns every live entity in a run and exposes the builder
// methods used to assemble a topology and service graph before calling
// Simulate.
type Simulator struct {
	Config *config.Simulation
	Sched  *engine.Scheduler
	Topo   *physical.Topology
	RNG    *rng.Generator

	hosts    []*physical.Host
	switches []*physical.Switch
	routers  []*physical.Router
	gateway  *physical.Gateway

	volumes  []*workload.Volume
	services []*service.Microservice

	provisioner *control.HostProvisioner
	containers  *control.ContainerScheduler
	volAlloc    *control.VolumeAllocator
	evaluator   *control.MicroserviceEvaluator
	requests    *control.RequestScheduler

	users []*flow.User

	sinks []*monitor.CSVSink
}

// New constructs an empty Simulator bound to cfg, whose Accuracy sets the
// clock accuracy (fractional decimal digits of virtual-time resolution),
// with the given RNG seed.
func New(cfg *config.Simulation, seed int64) *Simulator {
	return &Simulator{
		Config: cfg,
		Sched:  engine.NewScheduler(cfg.Accuracy),
		Topo:   physical.NewTopology(),
		RNG:    rng.New(seed),
	}
}

// AddHost creates and registers a powered-off Host (§4.7: power-on is a
// separate Provisioner step).
func (s *Simulator) AddHost(id, label string, at float64, spec physical.HostSpec) *physical.Host {
	h := physical.NewHost(s.Sched, s.Topo, id, label, at, spec, s.Config.CPUAcceleration)
	s.hosts = append(s.hosts, h)
	return h
}

// AddSwitch creates and registers a Switch.
func (s *Simulator) AddSwitch(id, label string, at float64, spec physical.HostSpec) *physical.Switch {
	sw := physical.NewSwitch(s.Sched, s.Topo, id, label, at, spec, s.Config.CPUAcceleration)
	s.switches = append(s.switches, sw)
	return sw
}

// AddRouter creates and registers a Router.
func (s *Simulator) AddRouter(id, label string, at float64, spec physical.HostSpec) *physical.Router {
	r := physical.NewRouter(s.Sched, s.Topo, id, label, at, spec, s.Config.CPUAcceleration)
	s.routers = append(s.routers, r)
	return r
}

// SetGateway creates the single ingress/egress Gateway. Calling it twice
// replaces the prior gateway reference without detaching its NICs — callers
// should only ever call it once per Simulator.
func (s *Simulator) SetGateway(id, label string, at float64, packetDelay float64) *physical.Gateway {
	g := physical.NewGateway(s.Sched, s.Topo, id, label, at, packetDelay)
	s.gateway = g
	return g
}

// Gateway returns the simulation's ingress/egress point.
func (s *Simulator) Gateway() *physical.Gateway { return s.gateway }

// Hosts returns every registered host.
func (s *Simulator) Hosts() []*physical.Host { return s.hosts }

// ConnectDevice links two device NICs of the given bandwidth/delay and
// registers the pair as a topology edge (§4: connect_device).
func (s *Simulator) ConnectDevice(a physical.Device, b physical.Device, bandwidthBytesPerSec, nicDelay float64) {
	now := func() int64 { return int64(s.Sched.Clock * 1e6) }
	nicA := physical.NewNIC(fmt.Sprintf("%s/nic/%d", a.DeviceID(), len(a.NICs())), a.DeviceID(), bandwidthBytesPerSec, nicDelay, now)
	nicB := physical.NewNIC(fmt.Sprintf("%s/nic/%d", b.DeviceID(), len(b.NICs())), b.DeviceID(), bandwidthBytesPerSec, nicDelay, now)
	type nicAdder interface{ AddNIC(*physical.NIC) }
	a.(nicAdder).AddNIC(nicA)
	b.(nicAdder).AddNIC(nicB)
	s.Topo.ConnectDevice(a, nicA, b, nicB)
}

// AddVolume creates and registers a Volume, left unallocated until passed
// to a VolumeAllocator.
func (s *Simulator) AddVolume(id, label string, at float64, tag, path string, size float64, retain bool, taint string) *workload.Volume {
	v := workload.NewVolume(s.Sched, id, label, at, tag, path, size, retain, taint)
	s.volumes = append(s.volumes, v)
	return v
}

// AddMicroservice creates and registers a Microservice.
func (s *Simulator) AddMicroservice(id, name string, at float64, spec workload.ContainerSpec, minReplicas, maxReplicas int, taint string) *service.Microservice {
	ms := service.NewMicroservice(s.Sched, id, name, at, spec, minReplicas, maxReplicas, taint)
	s.services = append(s.services, ms)
	return ms
}

// Microservices returns every registered microservice.
func (s *Simulator) Microservices() []*service.Microservice { return s.services }

// AddService wraps a Microservice with a LoadBalancer and per-request RAM
// cost, producing the Service a NetworkService fronts.
func (s *Simulator) AddService(name string, ms *service.Microservice, lb service.LoadBalancer, ramPerRequest float64) *service.Service {
	return service.NewService(name, ms, lb, ramPerRequest)
}

// AddNetworkService mints the Service's next virtual IP and wraps it as a
// NetworkService — the unit an SFC stage references.
func (s *Simulator) AddNetworkService(id string, at float64, name string, svc *service.Service) *service.NetworkService {
	return service.NewNetworkService(s.Sched, id, at, name, s.Config.NextServiceIP(), svc)
}

// NewSFC constructs a service function chain over the given stages.
func (s *Simulator) NewSFC(name string, stages []*service.NetworkService, skipHead, skipTail bool) *service.SFC {
	return service.NewSFC(name, stages, skipHead, skipTail)
}

// StartControlPlane brings up the background control actors: host
// provisioning auto-off, container placement, volume allocation, and
// microservice autoscaling evaluation. Call once, after the topology and
// service graph are built, before starting any User traffic.
func (s *Simulator) StartControlPlane(now float64, hostPicker control.HostPicker, evalInterval, scaleUp, scaleDown, coolDown float64) {
	s.provisioner = control.NewHostProvisioner(s.Sched, s.hosts, evalInterval)
	s.provisioner.StartAutoOff(now)

	s.containers = control.NewContainerScheduler(s.Sched, s.hosts, hostPicker, s.provisioner)
	s.volAlloc = control.NewVolumeAllocator(s.hosts)
	s.requests = control.NewRequestScheduler()

	s.evaluator = control.NewMicroserviceEvaluator(s.Sched, s.containers, s.services, evalInterval, scaleUp, scaleDown, coolDown)
	s.evaluator.Start(now)

	for _, v := range s.volumes {
		if err := s.volAlloc.Allocate(v, now); err != nil {
			logrus.WithError(err).WithField("volume", v.ID()).Warn("sim: volume allocation failed")
		}
	}
}

// Provision forces an on-demand replica for ms (normally driven by the
// autoscaling evaluator), returning the new container; the container
// scheduler places it on a host in its next pass.
func (s *Simulator) Provision(ms *service.Microservice, now float64) *workload.Container {
	return s.containers.RequestReplica(ms, now)
}

// Resolver returns the RequestScheduler built by StartControlPlane, usable
// as the flow.Resolver passed to AddUser.
func (s *Simulator) Resolver() *control.RequestScheduler { return s.requests }

// AddUser creates and registers a synthetic traffic source bound to sfc,
// wiring the shared RequestScheduler resolver and the three telemetry
// recorders so the monitor subsystem observes every request it issues.
func (s *Simulator) AddUser(id, name string, at float64, sfc *service.SFC, kind workload.Kind,
	interArrival, processLength, packetSize, priority, backoff knob.Float, numPackets knob.Int, maxRetries int,
	urRec flow.UserRequestRecorder, wfRec flow.WorkflowRecorder, reqRec workload.RequestRecorder) *flow.User {
	u := flow.NewUser(s.Sched, s.Topo, id, name, at, s.gateway, sfc, kind,
		interArrival, processLength, packetSize, priority, backoff, numPackets, maxRetries).
		WithResolver(s.requests).WithRecorder(urRec, wfRec, reqRec)
	s.users = append(s.users, u)
	return u
}

// Users returns every registered traffic source.
func (s *Simulator) Users() []*flow.User { return s.users }

// AttachRecorders rewires the telemetry recorders on every already-built
// User, for the common case of building the topology (and its users) before
// the output directory/Prometheus registry needed by StartMonitors is known.
func (s *Simulator) AttachRecorders(urRec flow.UserRequestRecorder, wfRec flow.WorkflowRecorder, reqRec workload.RequestRecorder) {
	for _, u := range s.users {
		u.WithRecorder(urRec, wfRec, reqRec)
	}
}

// StartMonitors wires up one CSVSink per monitor class at the given
// directory, plus an optional live Prometheus view, all sampling every
// interval seconds of simulated time. Returns the three request-lifecycle
// recorders to pass into AddUser/AttachRecorders.
func (s *Simulator) StartMonitors(now float64, outDir string, interval float64, reg *prometheus.Registry) (flow.UserRequestRecorder, flow.WorkflowRecorder, workload.RequestRecorder, error) {
	hostFile, err := os.Create(outDir + "/hosts.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening host monitor sink: %w", err)
	}
	hm := monitor.NewHostMonitor(s.Sched, s.hosts, monitor.NewCSVSink(hostFile, monitor.HostMonitorHeader), interval, s.Config.PowerFormula == config.PowerFormulaLog)
	hm.Start(now)

	msFile, err := os.Create(outDir + "/microservices.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening microservice monitor sink: %w", err)
	}
	msm := monitor.NewMSMonitor(s.Sched, s.services, monitor.NewCSVSink(msFile, monitor.MSMonitorHeader), interval)
	msm.Start(now)

	pktFile, err := os.Create(outDir + "/links.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening packet monitor sink: %w", err)
	}
	pm := monitor.NewPacketMonitor(s.Sched, s.allDevices(), monitor.NewCSVSink(pktFile, monitor.PacketMonitorHeader), interval)
	pm.Start(now)

	reqFile, err := os.Create(outDir + "/requests.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening request monitor sink: %w", err)
	}
	rm := monitor.NewRequestMonitor(s.Sched, monitor.NewCSVSink(reqFile, monitor.RequestMonitorHeader), interval)
	rm.Start(now)

	wfFile, err := os.Create(outDir + "/workflows.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening workflow monitor sink: %w", err)
	}
	wfm := monitor.NewWorkflowMonitor(s.Sched, monitor.NewCSVSink(wfFile, monitor.WorkflowMonitorHeader), interval)
	wfm.Start(now)

	urFile, err := os.Create(outDir + "/user_requests.csv")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sim: opening user-request monitor sink: %w", err)
	}
	urm := monitor.NewUserRequestMonitor(s.Sched, monitor.NewCSVSink(urFile, monitor.UserRequestMonitorHeader), interval)
	urm.Start(now)

	if reg != nil {
		ps := monitor.NewPromSink(s.Sched, reg, s.hosts, s.services, interval, s.Config.PowerFormula == config.PowerFormulaLog)
		ps.Start(now)
	}

	return urm, wfm, rm, nil
}

func (s *Simulator) allDevices() []physical.Device {
	devices := make([]physical.Device, 0, len(s.hosts)+len(s.switches)+len(s.routers)+1)
	for _, h := range s.hosts {
		devices = append(devices, h)
	}
	for _, sw := range s.switches {
		devices = append(devices, sw)
	}
	for _, r := range s.routers {
		devices = append(devices, r)
	}
	if s.gateway != nil {
		devices = append(devices, s.gateway)
	}
	return devices
}

// Simulate runs the scheduler until no actor remains with a fire time at or
// before till, returning the final simulated clock value (§6 simulate).
func (s *Simulator) Simulate(till float64) float64 {
	return s.Sched.Simulate(till)
}
