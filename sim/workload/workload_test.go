package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/physical"
)

type stubMicroservice struct {
	crashedContainers   []*Container
	scheduledContainers []*Container
}

func (s *stubMicroservice) ID() string { return "ms-stub" }
func (s *stubMicroservice) NotifyContainerCrashed(c *Container, now float64) {
	s.crashedContainers = append(s.crashedContainers, c)
}
func (s *stubMicroservice) NotifyContainerScheduled(c *Container, now float64) {
	s.scheduledContainers = append(s.scheduledContainers, c)
}

type stubRequest struct {
	completed []*Process
	failed    []*Process
}

func (s *stubRequest) ID() string { return "req-stub" }
func (s *stubRequest) OnProcessCompleted(p *Process, now float64) {
	s.completed = append(s.completed, p)
}
func (s *stubRequest) OnProcessFailed(p *Process, now float64) {
	s.failed = append(s.failed, p)
}

func testSpec() physical.HostSpec {
	return physical.HostSpec{
		Cores: 4, IPC: 2, FrequencyHz: 1e9, RAMGiB: 1, ROMGiB: 10,
		PacketDelay: 0.001, IdlePower: 10, CPUTDP: 100, RAMTDP: 20,
	}
}

func newTestHost(sched *engine.Scheduler) *physical.Host {
	h := physical.NewHost(sched, physical.NewTopology(), "h1", "h1", 0, testSpec(), 1)
	h.PowerOn()
	return h
}

func TestContainer_ScheduleOntoReservesHostCapacity(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	ms := &stubMicroservice{}
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)

	require.NoError(t, c.ScheduleOnto(h, 0))
	assert.True(t, c.Scheduled())
	assert.Len(t, ms.scheduledContainers, 1)
	assert.InDelta(t, 500.0/4000.0, h.CPUUtilization(), 1e-9)
}

func TestContainer_ScheduleOntoFailsWhenCapacityExceeded(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 99999, CPULimitMillicores: 99999,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, nil)

	err := c.ScheduleOnto(h, 0)
	assert.Error(t, err)
	assert.False(t, c.Scheduled())
}

func TestContainer_AcceptProcessCrashesOnRAMOverload(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	ms := &stubMicroservice{}
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)
	require.NoError(t, c.ScheduleOnto(h, 0))

	req := &stubRequest{}
	p := NewProcess("p1", "p1", 100, 1, c, req)
	c.AcceptProcess(p, 1e18, 5) // far exceeds remaining host RAM

	assert.True(t, c.Crashed())
	assert.Len(t, ms.crashedContainers, 1)
	assert.Len(t, req.failed, 1)
}

func TestContainer_AcceptProcessReservesAndReleasesRAMOnCompletion(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	ms := &stubMicroservice{}
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)
	require.NoError(t, c.ScheduleOnto(h, 0))

	hostRAMBefore := h.RAM.Available()
	req := &stubRequest{}
	p := NewProcess("p1", "p1", 10, 1, c, req)
	c.AcceptProcess(p, 512, 0)

	assert.InDelta(t, hostRAMBefore-512, h.RAM.Available(), 1e-9, "host RAM must be debited on admission")
	assert.InDelta(t, 512.0/2048.0, c.RAMQuotaUtilization(), 1e-9, "container RAM quota must be debited on admission")

	p.Advance(10)
	p.CompleteCheck(1)

	assert.InDelta(t, hostRAMBefore, h.RAM.Available(), 1e-9, "host RAM must be returned on process completion")
	assert.InDelta(t, 0, c.RAMQuotaUtilization(), 1e-9, "container RAM quota must be returned on process completion")
}

func TestContainer_AcceptProcessReleasesRAMOnFailure(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, nil)
	require.NoError(t, c.ScheduleOnto(h, 0))

	p := NewProcess("p1", "p1", 10, 1, c, nil)
	c.AcceptProcess(p, 512, 0)
	require.InDelta(t, 2048-512, c.ramQuota.Available(), 1e-9)

	p.Fail(1)

	assert.InDelta(t, 2048, c.ramQuota.Available(), 1e-9, "a failed process's RAM claim must still be released")
}

func TestContainer_CrashCascadesToProcessesAndNonRetainedVolumes(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	ms := &stubMicroservice{}
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)
	require.NoError(t, c.ScheduleOnto(h, 0))

	vol := NewVolume(sched, "v1", "v1", 0, "data", "/data", 100, false, "")
	require.True(t, vol.Allocate(h, 0))
	vol.Attach(c)
	c.Volumes = append(c.Volumes, vol)

	req := &stubRequest{}
	p := NewProcess("p1", "p1", 100, 1, c, req)
	c.Processes = append(c.Processes, p)

	c.Crash(1)

	assert.True(t, c.Crashed())
	assert.True(t, p.Failed())
	assert.False(t, vol.Attached())
	assert.False(t, vol.Allocated(), "non-retained volume must be deallocated on crash")
	assert.InDelta(t, 0, h.CPUUtilization(), 1e-9)
}

func TestContainer_CrashRetainsRetainedVolumes(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, nil)
	require.NoError(t, c.ScheduleOnto(h, 0))

	vol := NewVolume(sched, "v1", "v1", 0, "data", "/data", 100, true, "")
	require.True(t, vol.Allocate(h, 0))
	vol.Attach(c)
	c.Volumes = append(c.Volumes, vol)

	c.Crash(1)

	assert.False(t, vol.Attached())
	assert.True(t, vol.Allocated(), "retained volume must survive container crash")
}

func TestContainer_CrashIsIdempotent(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, nil)
	require.NoError(t, c.ScheduleOnto(h, 0))
	c.Crash(1)
	assert.NotPanics(t, func() { c.Crash(2) })
}

func TestContainer_DecommissionReleasesHostCapacityWithoutFailing(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{
		CPURequestMillicores: 500, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, nil)
	require.NoError(t, c.ScheduleOnto(h, 0))

	c.Decommission(1)

	assert.False(t, c.Crashed())
	assert.InDelta(t, 0, h.CPUUtilization(), 1e-9)
	assert.True(t, c.IsTerminated())
}

func TestVolume_AllocateFailsWhenHostROMExhausted(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	v := NewVolume(sched, "v1", "v1", 0, "data", "/data", 1e18, false, "")
	assert.False(t, v.Allocate(h, 0))
	assert.False(t, v.Allocated())
}

func TestVolume_DetachDoesNotDeallocate(t *testing.T) {
	sched := engine.NewScheduler(4)
	h := newTestHost(sched)
	v := NewVolume(sched, "v1", "v1", 0, "data", "/data", 100, true, "")
	require.True(t, v.Allocate(h, 0))
	c := NewContainer(sched, "c1", "c1", 0, ContainerSpec{}, nil)
	v.Attach(c)

	v.Detach()

	assert.False(t, v.Attached())
	assert.True(t, v.Allocated())
}

func TestProcess_CompleteCheckFiresOnceAtFullProgress(t *testing.T) {
	req := &stubRequest{}
	p := NewProcess("p1", "p1", 10, 1, nil, req)

	p.Advance(5)
	p.CompleteCheck(1)
	assert.False(t, p.Completed())

	p.Advance(5)
	p.CompleteCheck(2)
	assert.True(t, p.Completed())
	assert.Len(t, req.completed, 1)

	p.CompleteCheck(3)
	assert.Len(t, req.completed, 1, "completion notification must fire exactly once")
}

func TestProcess_FailDoesNotFireAfterCompletion(t *testing.T) {
	req := &stubRequest{}
	p := NewProcess("p1", "p1", 10, 1, nil, req)
	p.Advance(10)
	p.CompleteCheck(1)
	require.True(t, p.Completed())

	p.Fail(2)
	assert.Len(t, req.failed, 0)
}

func TestProcess_ContainerlessBudgetIsUnbounded(t *testing.T) {
	p := NewProcess("p1", "p1", 10, 1, nil, nil)
	assert.True(t, p.ContainerMillicoreBudget(1000) > 1e300)
}

func TestProcess_RemainingAccountsForScheduledAndProgress(t *testing.T) {
	p := NewProcess("p1", "p1", 100, 1, nil, nil)
	p.AddScheduled(20)
	assert.InDelta(t, 80, p.Remaining(), 1e-9)
	p.Advance(10)
	assert.InDelta(t, 80, p.Remaining(), 1e-9) // 100 - 10(progress) - 10(remaining scheduled)
}

func TestProcess_ClearExecutingReturnsRemainingCoreCount(t *testing.T) {
	p := NewProcess("p1", "p1", 10, 1, nil, nil)
	c1 := &physical.Core{}
	c2 := &physical.Core{}
	p.MarkExecuting(c1)
	p.MarkExecuting(c2)
	assert.Equal(t, 1, p.ClearExecuting(c1))
	assert.Equal(t, 0, p.ClearExecuting(c2))
}
