package monitor

import "github.com/cloudsim/cloudsim/sim/engine"

// RequestMonitor implements workload.RequestRecorder: every Request created
// by a Workflow that was given this monitor (via Request.WithRecorder, set
// transitively from Workflow.WithRecorder) reports its outcome here. A
// recurring actor flushes the accumulated counts as one CSV row per
// interval and resets them (§6 telemetry).
type RequestMonitor struct {
	sched    *engine.Scheduler
	sink     *CSVSink
	interval float64

	completed int
	failed    int
}

// NewRequestMonitor constructs a RequestMonitor.
func NewRequestMonitor(sched *engine.Scheduler, sink *CSVSink, interval float64) *RequestMonitor {
	return &RequestMonitor{sched: sched, sink: sink, interval: interval}
}

// RecordCompleted implements workload.RequestRecorder.
func (m *RequestMonitor) RecordCompleted(now float64) { m.completed++ }

// RecordFailed implements workload.RequestRecorder.
func (m *RequestMonitor) RecordFailed(now float64) { m.failed++ }

// Start begins the recurring flush pass.
func (m *RequestMonitor) Start(now float64) { m.scheduleNext(now) }

func (m *RequestMonitor) scheduleNext(now float64) {
	m.sched.Schedule(engine.NewActor(now+m.interval, engine.MonitorPriority, "request-monitor/flush", func(now float64) {
		m.sink.Write([]string{f(now - m.interval), i(m.completed), i(m.failed)})
		m.completed, m.failed = 0, 0
		m.scheduleNext(now)
	}))
}

// RequestMonitorHeader is the column header for a RequestMonitor's sink.
var RequestMonitorHeader = []string{"time", "completed", "failed"}
