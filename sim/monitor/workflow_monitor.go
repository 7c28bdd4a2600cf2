package monitor

import "github.com/cloudsim/cloudsim/sim/engine"

// WorkflowMonitor implements flow.WorkflowRecorder, accumulating completed
// and failed Workflow counts and periodically flushing them as a CSV row.
type WorkflowMonitor struct {
	sched    *engine.Scheduler
	sink     *CSVSink
	interval float64

	completed int
	failed    int
}

// NewWorkflowMonitor constructs a WorkflowMonitor.
func NewWorkflowMonitor(sched *engine.Scheduler, sink *CSVSink, interval float64) *WorkflowMonitor {
	return &WorkflowMonitor{sched: sched, sink: sink, interval: interval}
}

// RecordCompleted implements flow.WorkflowRecorder.
func (m *WorkflowMonitor) RecordCompleted(now float64) { m.completed++ }

// RecordFailed implements flow.WorkflowRecorder.
func (m *WorkflowMonitor) RecordFailed(now float64) { m.failed++ }

// Start begins the recurring flush pass.
func (m *WorkflowMonitor) Start(now float64) { m.scheduleNext(now) }

func (m *WorkflowMonitor) scheduleNext(now float64) {
	m.sched.Schedule(engine.NewActor(now+m.interval, engine.MonitorPriority, "workflow-monitor/flush", func(now float64) {
		m.sink.Write([]string{f(now - m.interval), i(m.completed), i(m.failed)})
		m.completed, m.failed = 0, 0
		m.scheduleNext(now)
	}))
}

// WorkflowMonitorHeader is the column header for a WorkflowMonitor's sink.
var WorkflowMonitorHeader = []string{"time", "completed", "failed"}
