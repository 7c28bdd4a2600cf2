package monitor

import "github.com/cloudsim/cloudsim/sim/engine"

// UserRequestMonitor implements flow.UserRequestRecorder, accumulating
// completed (eventually succeeded) and failed (retries exhausted)
// UserRequest counts and periodically flushing them as a CSV row.
type UserRequestMonitor struct {
	sched    *engine.Scheduler
	sink     *CSVSink
	interval float64

	completed int
	failed    int
}

// NewUserRequestMonitor constructs a UserRequestMonitor.
func NewUserRequestMonitor(sched *engine.Scheduler, sink *CSVSink, interval float64) *UserRequestMonitor {
	return &UserRequestMonitor{sched: sched, sink: sink, interval: interval}
}

// RecordCompleted implements flow.UserRequestRecorder.
func (m *UserRequestMonitor) RecordCompleted(now float64) { m.completed++ }

// RecordFailed implements flow.UserRequestRecorder.
func (m *UserRequestMonitor) RecordFailed(now float64) { m.failed++ }

// Start begins the recurring flush pass.
func (m *UserRequestMonitor) Start(now float64) { m.scheduleNext(now) }

func (m *UserRequestMonitor) scheduleNext(now float64) {
	m.sched.Schedule(engine.NewActor(now+m.interval, engine.MonitorPriority, "user-request-monitor/flush", func(now float64) {
		m.sink.Write([]string{f(now - m.interval), i(m.completed), i(m.failed)})
		m.completed, m.failed = 0, 0
		m.scheduleNext(now)
	}))
}

// UserRequestMonitorHeader is the column header for a UserRequestMonitor's sink.
var UserRequestMonitorHeader = []string{"time", "completed", "failed"}
