package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

func testHostSpec() physical.HostSpec {
	return physical.HostSpec{
		Cores: 4, IPC: 2, FrequencyHz: 1e9, RAMGiB: 4, ROMGiB: 100,
		PacketDelay: 0.001, IdlePower: 10, CPUTDP: 100, RAMTDP: 20,
	}
}

func newHost(sched *engine.Scheduler, id string) *physical.Host {
	h := physical.NewHost(sched, physical.NewTopology(), id, id, 0, testHostSpec(), 1)
	h.PowerOn()
	return h
}

func rows(buf *bytes.Buffer) []string {
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}

func TestCSVSink_WritesHeaderOnceThenOneRowPerWrite(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink(&buf, []string{"a", "b"})

	s.Write([]string{"1", "2"})
	s.Write([]string{"3", "4"})

	got := rows(&buf)
	require.Len(t, got, 3)
	assert.Equal(t, "a,b", got[0])
	assert.Equal(t, "1,2", got[1])
	assert.Equal(t, "3,4", got[2])
}

func TestCSVSink_RejectsMismatchedRowLength(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink(&buf, []string{"a", "b"})

	s.Write([]string{"only-one"})

	got := rows(&buf)
	require.Len(t, got, 1, "header written but the malformed row must be rejected")
	assert.Equal(t, "a,b", got[0])
}

func TestHostMonitor_SamplesEachHostEveryInterval(t *testing.T) {
	sched := engine.NewScheduler(4)
	h1 := newHost(sched, "h1")
	h2 := newHost(sched, "h2")
	var buf bytes.Buffer
	sink := NewCSVSink(&buf, HostMonitorHeader)

	m := NewHostMonitor(sched, []*physical.Host{h1, h2}, sink, 1, false)
	m.Start(0)
	sched.Simulate(1)

	got := rows(&buf)
	require.Len(t, got, 3, "header + one row per host on the first sample")
	assert.Contains(t, got[1], "h1")
	assert.Contains(t, got[2], "h2")
}

func TestMSMonitor_ReportsReplicaCountAndUtilization(t *testing.T) {
	sched := engine.NewScheduler(4)
	ms := service.NewMicroservice(sched, "ms1", "checkout", 0, workload.ContainerSpec{
		CPURequestMillicores: 100, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, 1, 3, "")
	h := newHost(sched, "h1")
	c := workload.NewContainer(sched, "c1", "c1", 0, workload.ContainerSpec{
		CPURequestMillicores: 100, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)
	require.NoError(t, c.ScheduleOnto(h, 0))
	ms.AddContainer(c)

	var buf bytes.Buffer
	sink := NewCSVSink(&buf, MSMonitorHeader)
	m := NewMSMonitor(sched, []*service.Microservice{ms}, sink, 1)
	m.Start(0)
	sched.Simulate(1)

	got := rows(&buf)
	require.Len(t, got, 2)
	assert.Contains(t, got[1], "checkout")
	assert.Contains(t, got[1], ",1,") // replica count
}

func TestPacketMonitor_SamplesEveryNICOnEveryDevice(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newHost(sched, "h1")

	var buf bytes.Buffer
	sink := NewCSVSink(&buf, PacketMonitorHeader)
	m := NewPacketMonitor(sched, []physical.Device{h}, sink, 1)
	m.Start(0)
	sched.Simulate(1)

	got := rows(&buf)
	require.Len(t, got, 1+len(h.NICs()))
}

func TestRequestMonitor_FlushesAndResetsCounts(t *testing.T) {
	sched := engine.NewScheduler(4)
	var buf bytes.Buffer
	sink := NewCSVSink(&buf, RequestMonitorHeader)
	m := NewRequestMonitor(sched, sink, 1)
	m.Start(0)

	m.RecordCompleted(0.1)
	m.RecordCompleted(0.2)
	m.RecordFailed(0.3)

	sched.Simulate(1)
	got := rows(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "0.000000,2,1", got[1])

	m.RecordCompleted(1.1)
	sched.Simulate(2)
	got = rows(&buf)
	require.Len(t, got, 3)
	assert.Equal(t, "1.000000,1,0", got[2], "counts must reset after each flush")
}

func TestUserRequestMonitor_FlushesAndResetsCounts(t *testing.T) {
	sched := engine.NewScheduler(4)
	var buf bytes.Buffer
	sink := NewCSVSink(&buf, UserRequestMonitorHeader)
	m := NewUserRequestMonitor(sched, sink, 1)
	m.Start(0)

	m.RecordCompleted(0.1)
	m.RecordFailed(0.2)
	m.RecordFailed(0.3)

	sched.Simulate(1)
	got := rows(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "0.000000,1,2", got[1])
}

func TestWorkflowMonitor_FlushesAndResetsCounts(t *testing.T) {
	sched := engine.NewScheduler(4)
	var buf bytes.Buffer
	sink := NewCSVSink(&buf, WorkflowMonitorHeader)
	m := NewWorkflowMonitor(sched, sink, 1)
	m.Start(0)

	m.RecordCompleted(0.1)

	sched.Simulate(1)
	got := rows(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "0.000000,1,0", got[1])
}

func TestPromSink_RegistersAndSamplesHostAndMicroserviceGauges(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newHost(sched, "h1")
	ms := service.NewMicroservice(sched, "ms1", "checkout", 0, workload.ContainerSpec{}, 1, 3, "")
	reg := prometheus.NewRegistry()

	s := NewPromSink(sched, reg, []*physical.Host{h}, []*service.Microservice{ms}, 1, false)
	s.Start(0)
	sched.Simulate(1)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	var sawHostUp bool
	for _, mf := range mfs {
		if mf.GetName() == "cloudsim_host_powered_on" {
			sawHostUp = true
			require.Len(t, mf.Metric, 1)
			assert.Equal(t, 1.0, mf.Metric[0].GetGauge().GetValue())
		}
	}
	assert.True(t, sawHostUp, "host powered_on gauge must be registered and sampled")
}
