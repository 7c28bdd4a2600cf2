package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
)

// PromSink exposes a live, additive view of simulation state as Prometheus
// gauges alongside the CSV sinks, one GaugeVec per host/microservice metric
// in the style of a cluster-manager metrics registry. It does not replace
// the CSV sink: CSV remains the durable record of the run, Prometheus is a
// live dashboard surface for watching a simulation in progress.
type PromSink struct {
	sched    *engine.Scheduler
	hosts    []*physical.Host
	services []*service.Microservice
	interval float64
	logPower bool

	hostCPU   *prometheus.GaugeVec
	hostRAM   *prometheus.GaugeVec
	hostPower *prometheus.GaugeVec
	hostUp    *prometheus.GaugeVec
	msReplicas *prometheus.GaugeVec
	msCPU      *prometheus.GaugeVec
}

// NewPromSink registers a fresh gauge set on reg for the given hosts and
// microservices.
func NewPromSink(sched *engine.Scheduler, reg *prometheus.Registry, hosts []*physical.Host, services []*service.Microservice, interval float64, logarithmicPower bool) *PromSink {
	s := &PromSink{sched: sched, hosts: hosts, services: services, interval: interval, logPower: logarithmicPower}

	s.hostCPU = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "host", Name: "cpu_utilization",
		Help: "Fraction of reserved host CPU currently in use.",
	}, []string{"host_id"})
	s.hostRAM = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "host", Name: "ram_utilization",
		Help: "Fraction of reserved host RAM currently in use.",
	}, []string{"host_id"})
	s.hostPower = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "host", Name: "power_watts",
		Help: "Instantaneous host power draw.",
	}, []string{"host_id"})
	s.hostUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "host", Name: "powered_on",
		Help: "1 if the host is powered on, else 0.",
	}, []string{"host_id"})
	s.msReplicas = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "microservice", Name: "replicas",
		Help: "Live container replica count.",
	}, []string{"microservice_id", "name"})
	s.msCPU = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudsim", Subsystem: "microservice", Name: "avg_cpu_utilization",
		Help: "Average container CPU quota utilization across replicas.",
	}, []string{"microservice_id", "name"})

	reg.MustRegister(s.hostCPU, s.hostRAM, s.hostPower, s.hostUp, s.msReplicas, s.msCPU)
	return s
}

// Start begins the recurring gauge refresh pass.
func (s *PromSink) Start(now float64) { s.scheduleNext(now) }

func (s *PromSink) scheduleNext(now float64) {
	s.sched.Schedule(engine.NewActor(now+s.interval, engine.MonitorPriority, "prom-sink/sample", func(now float64) {
		s.sample()
		s.scheduleNext(now)
	}))
}

func (s *PromSink) sample() {
	for _, h := range s.hosts {
		s.hostCPU.WithLabelValues(h.DeviceID()).Set(h.CPUUtilization())
		s.hostRAM.WithLabelValues(h.DeviceID()).Set(h.RAMUtilization())
		s.hostPower.WithLabelValues(h.DeviceID()).Set(h.PowerUsage(s.logPower))
		on := 0.0
		if h.PoweredOn() {
			on = 1.0
		}
		s.hostUp.WithLabelValues(h.DeviceID()).Set(on)
	}
	for _, ms := range s.services {
		s.msReplicas.WithLabelValues(ms.ID(), ms.Name).Set(float64(ms.ReplicaCount()))
		s.msCPU.WithLabelValues(ms.ID(), ms.Name).Set(ms.AverageCPUUtilization())
	}
}
