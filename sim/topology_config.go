package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloudsim/cloudsim/sim/config"
	"github.com/cloudsim/cloudsim/sim/control"
	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// TopologyBundle is the declarative, YAML-loadable description of an entire
// simulation run: platform config, physical devices and links, volumes,
// microservices/services/SFCs, and user traffic sources. Grounded on the
// teacher's PolicyBundle (strict unknown-field rejection via yaml.v3's
// KnownFields) — this is the cloud/edge analogue of that policy file.
type TopologyBundle struct {
	Platform            string  `yaml:"platform"`
	CPUAcceleration     int     `yaml:"cpu_acceleration"`
	RAMAmplifier        int     `yaml:"ram_amplifier"`
	PacketSizeAmplifier int     `yaml:"packet_size_amplifier"`
	Accuracy            int     `yaml:"accuracy"`
	PowerFormula        string  `yaml:"power_formula"`
	VirtualNetwork      string  `yaml:"virtual_network"`
	Seed                int64   `yaml:"seed"`

	Hosts    []HostConfig    `yaml:"hosts"`
	Switches []HostConfig    `yaml:"switches"`
	Routers  []HostConfig    `yaml:"routers"`
	Gateway  GatewayConfig   `yaml:"gateway"`
	Links    []LinkConfig    `yaml:"links"`

	Volumes       []VolumeConfig       `yaml:"volumes"`
	Microservices []MicroserviceConfig `yaml:"microservices"`
	SFCs          []SFCConfig          `yaml:"sfcs"`
	Users         []UserConfig         `yaml:"users"`

	ControlPlane ControlPlaneConfig `yaml:"control_plane"`
}

// HostConfig describes one host/switch/router's physical capacity.
type HostConfig struct {
	ID          string  `yaml:"id"`
	Label       string  `yaml:"label"`
	Cores       int     `yaml:"cores"`
	IPC         float64 `yaml:"ipc"`
	FrequencyHz float64 `yaml:"frequency_hz"`
	RAMGiB      float64 `yaml:"ram_gib"`
	ROMGiB      float64 `yaml:"rom_gib"`
	PacketDelay float64 `yaml:"packet_delay"`
	IdlePower   float64 `yaml:"idle_power"`
	CPUTDP      float64 `yaml:"cpu_tdp"`
	RAMTDP      float64 `yaml:"ram_tdp"`
	Taint       string  `yaml:"taint"`
}

func (h HostConfig) spec() physical.HostSpec {
	return physical.HostSpec{
		Cores: h.Cores, IPC: h.IPC, FrequencyHz: h.FrequencyHz,
		RAMGiB: h.RAMGiB, ROMGiB: h.ROMGiB, PacketDelay: h.PacketDelay,
		IdlePower: h.IdlePower, CPUTDP: h.CPUTDP, RAMTDP: h.RAMTDP, Taint: h.Taint,
	}
}

// GatewayConfig describes the single ingress/egress point.
type GatewayConfig struct {
	ID          string  `yaml:"id"`
	Label       string  `yaml:"label"`
	PacketDelay float64 `yaml:"packet_delay"`
}

// LinkConfig connects two already-declared devices by ID.
type LinkConfig struct {
	A                    string  `yaml:"a"`
	B                    string  `yaml:"b"`
	BandwidthBytesPerSec float64 `yaml:"bandwidth_bytes_per_sec"`
	Delay                float64 `yaml:"delay"`
}

// VolumeConfig describes a pre-declared, unallocated volume.
type VolumeConfig struct {
	ID      string  `yaml:"id"`
	Tag     string  `yaml:"tag"`
	Path    string  `yaml:"path"`
	SizeGiB float64 `yaml:"size_gib"`
	Retain  bool    `yaml:"retain"`
	Taint   string  `yaml:"taint"`
}

// MicroserviceConfig describes a microservice and the Service/NetworkService
// fronting it.
type MicroserviceConfig struct {
	ID                  string  `yaml:"id"`
	Name                string  `yaml:"name"`
	CPURequestMillicores float64 `yaml:"cpu_request_millicores"`
	CPULimitMillicores   float64 `yaml:"cpu_limit_millicores"`
	RAMRequestMiB        float64 `yaml:"ram_request_mib"`
	RAMLimitMiB          float64 `yaml:"ram_limit_mib"`
	ImageSizeGiB         float64 `yaml:"image_size_gib"`
	MinReplicas          int     `yaml:"min_replicas"`
	MaxReplicas          int     `yaml:"max_replicas"`
	Taint                string  `yaml:"taint"`
	LoadBalancer         string  `yaml:"load_balancer"` // round-robin|bestfit|worstfit|random
	RAMPerRequestBytes   float64 `yaml:"ram_per_request_bytes"`

	// CPUUpperBound/CPULowerBound/RAMUpperBound/RAMLowerBound override the
	// control plane's default scale-up/scale-down thresholds for this
	// microservice alone (§6 default autoscaler's four bounds). Zero means
	// "use the control_plane default".
	CPUUpperBound float64 `yaml:"cpu_upper_bound"`
	CPULowerBound float64 `yaml:"cpu_lower_bound"`
	RAMUpperBound float64 `yaml:"ram_upper_bound"`
	RAMLowerBound float64 `yaml:"ram_lower_bound"`
}

// SFCConfig chains previously-declared microservice IDs into an ordered
// service function chain.
type SFCConfig struct {
	Name     string   `yaml:"name"`
	Stages   []string `yaml:"stages"`
	SkipHead bool     `yaml:"skip_head"`
	SkipTail bool     `yaml:"skip_tail"`
}

// UserConfig describes a synthetic traffic source targeting an SFC.
type UserConfig struct {
	ID                  string  `yaml:"id"`
	Name                string  `yaml:"name"`
	SFC                 string  `yaml:"sfc"`
	Kind                string  `yaml:"kind"` // GET|POST|LIST
	InterArrivalSeconds float64 `yaml:"inter_arrival_seconds"`
	ProcessLength       float64 `yaml:"process_length"`
	PacketSizeBytes     float64 `yaml:"packet_size_bytes"`
	NumPackets          int     `yaml:"num_packets"`
	Priority            float64 `yaml:"priority"`
	BackoffSeconds      float64 `yaml:"backoff_seconds"`
	MaxRetries          int     `yaml:"max_retries"`
}

// ControlPlaneConfig tunes the periodic control-loop evaluators.
type ControlPlaneConfig struct {
	HostPicker         string  `yaml:"host_picker"` // bestfit|worstfit|random
	EvaluationInterval float64 `yaml:"evaluation_interval"`
	ScaleUpThreshold   float64 `yaml:"scale_up_threshold"`
	ScaleDownThreshold float64 `yaml:"scale_down_threshold"`
	CoolDownPeriod     float64 `yaml:"cool_down_period"`
}

// LoadTopologyBundle reads and strictly parses a YAML topology file:
// unrecognized keys are rejected rather than silently ignored.
func LoadTopologyBundle(path string) (*TopologyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology config: %w", err)
	}
	var b TopologyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing topology config: %w", err)
	}
	return &b, nil
}

// Build materializes a TopologyBundle into a fully wired Simulator, ready
// for StartMonitors and Simulate. at is the creation timestamp used for
// every entity (typically 0).
func (b *TopologyBundle) Build(at float64) (*Simulator, error) {
	cfg := config.Default()
	if b.Platform != "" {
		cfg.Platform = config.Platform(b.Platform)
	}
	if b.CPUAcceleration > 0 {
		cfg.CPUAcceleration = b.CPUAcceleration
	}
	if b.RAMAmplifier > 0 {
		cfg.RAMAmplifier = b.RAMAmplifier
	}
	if b.PacketSizeAmplifier > 0 {
		cfg.PacketSizeAmplifier = b.PacketSizeAmplifier
	}
	if b.Accuracy > 0 {
		cfg.Accuracy = b.Accuracy
	}
	if b.PowerFormula != "" {
		cfg.PowerFormula = config.PowerFormula(b.PowerFormula)
	}
	if b.VirtualNetwork != "" {
		if err := cfg.SetVirtualNetwork(b.VirtualNetwork); err != nil {
			return nil, err
		}
	}

	s := New(cfg, b.Seed)

	devices := map[string]physical.Device{}
	for _, h := range b.Hosts {
		host := s.AddHost(h.ID, label(h.Label, h.ID), at, h.spec())
		devices[h.ID] = host
	}
	for _, sw := range b.Switches {
		switchDev := s.AddSwitch(sw.ID, label(sw.Label, sw.ID), at, sw.spec())
		devices[sw.ID] = switchDev
	}
	for _, r := range b.Routers {
		routerDev := s.AddRouter(r.ID, label(r.Label, r.ID), at, r.spec())
		devices[r.ID] = routerDev
	}
	if b.Gateway.ID != "" {
		gw := s.SetGateway(b.Gateway.ID, label(b.Gateway.Label, b.Gateway.ID), at, b.Gateway.PacketDelay)
		devices[b.Gateway.ID] = gw
	}

	for _, l := range b.Links {
		a, ok := devices[l.A]
		if !ok {
			return nil, fmt.Errorf("topology config: link references unknown device %q", l.A)
		}
		bDev, ok := devices[l.B]
		if !ok {
			return nil, fmt.Errorf("topology config: link references unknown device %q", l.B)
		}
		s.ConnectDevice(a, bDev, l.BandwidthBytesPerSec, l.Delay)
	}

	for _, v := range b.Volumes {
		s.AddVolume(v.ID, v.ID, at, v.Tag, v.Path, v.SizeGiB*(1<<30), v.Retain, v.Taint)
	}

	microservices := map[string]*service.Microservice{}
	networkServices := map[string]*service.NetworkService{}
	for _, m := range b.Microservices {
		spec := workload.ContainerSpec{
			CPURequestMillicores: m.CPURequestMillicores,
			CPULimitMillicores:   m.CPULimitMillicores,
			RAMRequestBytes:      m.RAMRequestMiB * (1 << 20),
			RAMLimitBytes:        m.RAMLimitMiB * (1 << 20),
			ImageSizeBytes:       m.ImageSizeGiB * (1 << 30),
			Taint:                m.Taint,
		}
		ms := s.AddMicroservice(m.ID, m.Name, at, spec, m.MinReplicas, m.MaxReplicas, m.Taint)
		ms.CPUUpperBound, ms.CPULowerBound = m.CPUUpperBound, m.CPULowerBound
		ms.RAMUpperBound, ms.RAMLowerBound = m.RAMUpperBound, m.RAMLowerBound
		microservices[m.ID] = ms

		svc := s.AddService(m.Name, ms, replicaLoadBalancer(m.LoadBalancer, s), m.RAMPerRequestBytes)
		networkServices[m.ID] = s.AddNetworkService(m.ID+"/ns", at, m.Name, svc)
	}

	sfcs := map[string]*service.SFC{}
	for _, sc := range b.SFCs {
		stages := make([]*service.NetworkService, 0, len(sc.Stages))
		for _, stageID := range sc.Stages {
			ns, ok := networkServices[stageID]
			if !ok {
				return nil, fmt.Errorf("topology config: sfc %q references unknown microservice %q", sc.Name, stageID)
			}
			stages = append(stages, ns)
		}
		sfcs[sc.Name] = s.NewSFC(sc.Name, stages, sc.SkipHead, sc.SkipTail)
	}

	cp := b.ControlPlane
	s.StartControlPlane(at, hostPicker(cp.HostPicker, s), nonZero(cp.EvaluationInterval, 30), cp.ScaleUpThreshold, cp.ScaleDownThreshold, cp.CoolDownPeriod)

	for _, u := range b.Users {
		sfc, ok := sfcs[u.SFC]
		if !ok {
			return nil, fmt.Errorf("topology config: user %q references unknown sfc %q", u.ID, u.SFC)
		}
		s.AddUser(u.ID, label(u.Name, u.ID), at, sfc, workload.Kind(u.Kind),
			knob.Fixed(u.InterArrivalSeconds), knob.Fixed(u.ProcessLength), knob.Fixed(u.PacketSizeBytes),
			knob.Fixed(u.Priority), knob.Fixed(u.BackoffSeconds), knob.FixedInt(u.NumPackets), u.MaxRetries,
			nil, nil, nil)
	}

	return s, nil
}

func label(l, id string) string {
	if l != "" {
		return l
	}
	return id
}

func nonZero(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func replicaLoadBalancer(name string, s *Simulator) service.LoadBalancer {
	switch name {
	case "bestfit":
		return service.NewBestFitLB()
	case "worstfit":
		return service.NewWorstFitLB()
	case "random":
		return service.NewRandomLB(s.RNG)
	default:
		return service.NewRoundRobinLB()
	}
}

func hostPicker(name string, s *Simulator) control.HostPicker {
	switch name {
	case "worstfit":
		return control.WorstFitHosts{}
	case "random":
		return control.RandomHosts{RNG: s.RNG}
	default:
		return control.BestFitHosts{}
	}
}
