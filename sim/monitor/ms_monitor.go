package monitor

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/service"
)

// MSMonitor periodically samples every microservice's replica count and
// average CPU utilization (§6, the autoscaling-visibility telemetry).
type MSMonitor struct {
	sched    *engine.Scheduler
	services []*service.Microservice
	sink     *CSVSink
	interval float64
}

// NewMSMonitor constructs an MSMonitor writing to sink every interval
// seconds.
func NewMSMonitor(sched *engine.Scheduler, services []*service.Microservice, sink *CSVSink, interval float64) *MSMonitor {
	return &MSMonitor{sched: sched, services: services, sink: sink, interval: interval}
}

func (m *MSMonitor) Start(now float64) { m.scheduleNext(now) }

func (m *MSMonitor) scheduleNext(now float64) {
	m.sched.Schedule(engine.NewActor(now+m.interval, engine.MonitorPriority, "ms-monitor/sample", func(now float64) {
		m.sample(now)
		m.scheduleNext(now)
	}))
}

func (m *MSMonitor) sample(now float64) {
	for _, ms := range m.services {
		m.sink.Write([]string{f(now), ms.ID(), ms.Name, i(ms.ReplicaCount()), f(ms.AverageCPUUtilization())})
	}
}

// MSMonitorHeader is the column header for an MSMonitor's sink.
var MSMonitorHeader = []string{"time", "microservice_id", "name", "replicas", "avg_cpu_utilization"}
