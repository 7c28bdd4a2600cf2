package monitor

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
)

// HostMonitor periodically samples every host's CPU/RAM utilization,
// power draw, and power state (§6 telemetry CSV schema).
type HostMonitor struct {
	sched    *engine.Scheduler
	hosts    []*physical.Host
	sink     *CSVSink
	interval float64
	logPower bool
}

// NewHostMonitor constructs a HostMonitor writing to sink every interval
// seconds of simulated time.
func NewHostMonitor(sched *engine.Scheduler, hosts []*physical.Host, sink *CSVSink, interval float64, logarithmicPower bool) *HostMonitor {
	return &HostMonitor{sched: sched, hosts: hosts, sink: sink, interval: interval, logPower: logarithmicPower}
}

// Start begins the recurring sampling pass.
func (m *HostMonitor) Start(now float64) {
	m.scheduleNext(now)
}

func (m *HostMonitor) scheduleNext(now float64) {
	m.sched.Schedule(engine.NewActor(now+m.interval, engine.MonitorPriority, "host-monitor/sample", func(now float64) {
		m.sample(now)
		m.scheduleNext(now)
	}))
}

func (m *HostMonitor) sample(now float64) {
	for _, h := range m.hosts {
		m.sink.Write([]string{
			f(now), h.DeviceID(), b(h.PoweredOn()), b(h.Privisioned()),
			f(h.CPUUtilization()), f(h.RAMUtilization()), f(h.PowerUsage(m.logPower)),
		})
	}
}

// HostMonitorHeader is the column header NewCSVSink should be constructed
// with for a HostMonitor's sink.
var HostMonitorHeader = []string{"time", "host_id", "powered_on", "privisioned", "cpu_utilization", "ram_utilization", "power_watts"}
