package flow

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// loopbackDevice is a minimal physical.Relay that captures every packet
// handed to it instead of transmitting it, letting a test drive a request
// chain without a running CPU/NIC simulation.
type loopbackDevice struct {
	id       string
	captured []*workload.Packet
}

func (d *loopbackDevice) DeviceID() string     { return d.id }
func (d *loopbackDevice) NICs() []*physical.NIC { return nil }
func (d *loopbackDevice) CachePacket(p physical.Packet, now float64) {
	d.captured = append(d.captured, p.(*workload.Packet))
}

type stubResolver struct {
	device    physical.Device
	byStage   map[string]*workload.Container
	ramBytes  float64
}

func (r *stubResolver) Resolve(workflowID string, ns *service.NetworkService) (workload.Endpoint, error) {
	return workload.Endpoint{Container: r.byStage[ns.Name], Device: r.device, RAMBytes: r.ramBytes}, nil
}

type stubUserOwner struct {
	completed int
	failed    int
}

func (o *stubUserOwner) ID() string { return "owner" }
func (o *stubUserOwner) OnUserRequestCompleted(ur *UserRequest, now float64) { o.completed++ }
func (o *stubUserOwner) OnUserRequestFailed(ur *UserRequest, now float64)    { o.failed++ }

func testHostSpec() physical.HostSpec {
	return physical.HostSpec{
		Cores: 4, IPC: 2, FrequencyHz: 1e9, RAMGiB: 4, ROMGiB: 100,
		PacketDelay: 0.001, IdlePower: 10, CPUTDP: 100, RAMTDP: 20,
	}
}

func newReadyStage(t *testing.T, sched *engine.Scheduler, name string) (*service.NetworkService, *workload.Container) {
	t.Helper()
	h := physical.NewHost(sched, physical.NewTopology(), name+"-host", name+"-host", 0, testHostSpec(), 1)
	h.PowerOn()
	ms := service.NewMicroservice(sched, name+"-ms", name+"-ms", 0, workload.ContainerSpec{
		CPURequestMillicores: 100, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, 1, 1, "")
	c := workload.NewContainer(sched, name+"-c1", name+"-c1", 0, workload.ContainerSpec{
		CPURequestMillicores: 100, CPULimitMillicores: 1000,
		RAMRequestBytes: 1024, RAMLimitBytes: 2048, ImageSizeBytes: 4096,
	}, ms)
	require.NoError(t, c.ScheduleOnto(h, 0))
	ms.AddContainer(c)
	svc := service.NewService(name+"-svc", ms, service.NewRoundRobinLB(), 0)
	ns := service.NewNetworkService(sched, name+"-ns", 0, name, netip.Addr{}, svc)
	return ns, c
}

func notReadySFC(sched *engine.Scheduler) *service.SFC {
	ms := service.NewMicroservice(sched, "ms-unready", "ms-unready", 0, workload.ContainerSpec{}, 1, 1, "")
	svc := service.NewService("svc-unready", ms, service.NewRoundRobinLB(), 0)
	ns := service.NewNetworkService(sched, "ns-unready", 0, "ns-unready", netip.Addr{}, svc)
	return service.NewSFC("chain-unready", []*service.NetworkService{ns}, false, false)
}

func TestWorkflow_StartFailsWhenSFCNotReady(t *testing.T) {
	sched := engine.NewScheduler(4)
	sfc := notReadySFC(sched)
	wf := NewWorkflow("wf1", sfc, workload.GET, workload.Endpoint{}, physical.NewTopology(),
		knob.Fixed(1), knob.Fixed(1), knob.FixedInt(1), knob.Fixed(1), nil)

	err := wf.Start(0)
	assert.Error(t, err)
	assert.False(t, wf.Completed())
}

func TestWorkflow_OnRequestCompletedAtLastStageCompletes(t *testing.T) {
	sched := engine.NewScheduler(4)
	dev := &loopbackDevice{id: "dev"}
	topo := physical.NewTopology()
	topo.AddDevice(dev)
	ns, c := newReadyStage(t, sched, "only")
	sfc := service.NewSFC("chain", []*service.NetworkService{ns}, false, false)
	resolver := &stubResolver{device: dev, byStage: map[string]*workload.Container{"only": c}}

	wf := NewWorkflow("wf1", sfc, workload.GET, workload.Endpoint{IsUser: true, Device: dev}, topo,
		knob.Fixed(10), knob.Fixed(5), knob.FixedInt(1), knob.Fixed(1), nil).WithResolver(resolver)

	require.NoError(t, wf.Start(0))
	require.Len(t, wf.requests, 1)

	wf.OnRequestCompleted(wf.requests[0], 1)

	assert.True(t, wf.Completed())
	assert.False(t, wf.Failed())
}

func TestWorkflow_OnRequestCompletedAdvancesThroughMultipleStages(t *testing.T) {
	sched := engine.NewScheduler(4)
	dev := &loopbackDevice{id: "dev"}
	topo := physical.NewTopology()
	topo.AddDevice(dev)
	ns1, c1 := newReadyStage(t, sched, "stage1")
	ns2, c2 := newReadyStage(t, sched, "stage2")
	sfc := service.NewSFC("chain", []*service.NetworkService{ns1, ns2}, false, false)
	resolver := &stubResolver{device: dev, byStage: map[string]*workload.Container{"stage1": c1, "stage2": c2}}

	wf := NewWorkflow("wf1", sfc, workload.GET, workload.Endpoint{IsUser: true, Device: dev}, topo,
		knob.Fixed(10), knob.Fixed(5), knob.FixedInt(1), knob.Fixed(1), nil).WithResolver(resolver)

	require.NoError(t, wf.Start(0))
	require.Len(t, wf.requests, 1)
	assert.Equal(t, 0, wf.stageIdx)

	wf.OnRequestCompleted(wf.requests[0], 1)

	require.Len(t, wf.requests, 2, "completing stage 1 must expand stage 2's request")
	assert.Equal(t, 1, wf.stageIdx)
	assert.False(t, wf.Completed())

	wf.OnRequestCompleted(wf.requests[1], 2)

	assert.True(t, wf.Completed())
}

func TestWorkflow_OnRequestFailedPropagatesToOwner(t *testing.T) {
	sched := engine.NewScheduler(4)
	sfc := notReadySFC(sched)
	owner := &stubUserRequestOwner{}
	wf := NewWorkflow("wf1", sfc, workload.GET, workload.Endpoint{}, physical.NewTopology(),
		knob.Fixed(1), knob.Fixed(1), knob.FixedInt(1), knob.Fixed(1), owner)

	wf.OnRequestFailed(nil, 1)

	assert.True(t, wf.Failed())
	assert.Equal(t, 1, owner.failedCalls)

	wf.OnRequestFailed(nil, 2)
	assert.Equal(t, 1, owner.failedCalls, "fail must be idempotent")
}

type stubUserRequestOwner struct {
	completedCalls int
	failedCalls    int
}

func (o *stubUserRequestOwner) ID() string { return "ur-owner" }
func (o *stubUserRequestOwner) OnWorkflowCompleted(w *Workflow, now float64) { o.completedCalls++ }
func (o *stubUserRequestOwner) OnWorkflowFailed(w *Workflow, now float64)    { o.failedCalls++ }

func TestUserRequest_OnWorkflowCompletedNotifiesOwnerOnce(t *testing.T) {
	sched := engine.NewScheduler(4)
	owner := &stubUserOwner{}
	ur := NewUserRequest("ur1", sched, physical.NewTopology(), notReadySFC(sched), workload.GET, workload.Endpoint{},
		knob.Fixed(1), knob.Fixed(1), knob.FixedInt(1), knob.Fixed(1), knob.Fixed(0.1), 2, owner)

	ur.OnWorkflowCompleted(nil, 5)

	assert.True(t, ur.Succeeded())
	assert.Equal(t, 1, owner.completed)

	ur.OnWorkflowCompleted(nil, 6)
	assert.Equal(t, 1, owner.completed, "success notification must fire exactly once")
}

func TestUserRequest_RetriesUpToMaxRetriesThenFails(t *testing.T) {
	sched := engine.NewScheduler(4)
	sfc := notReadySFC(sched)
	owner := &stubUserOwner{}
	ur := NewUserRequest("ur1", sched, physical.NewTopology(), sfc, workload.GET, workload.Endpoint{},
		knob.Fixed(1), knob.Fixed(1), knob.FixedInt(1), knob.Fixed(1), knob.Fixed(0.1), 2, owner)

	ur.Start(0) // attempt 1 fails immediately (sfc never ready), schedules retry at t=0.1

	sched.Simulate(10)

	assert.True(t, ur.Failed())
	assert.Equal(t, 1, owner.failed)
	assert.Equal(t, 3, ur.attempt, "MaxRetries=2 means 3 total attempts before giving up")
}

func TestUser_StartRecurringIssuesOneArrivalPerInterval(t *testing.T) {
	sched := engine.NewScheduler(4)
	sfc := notReadySFC(sched)
	topo := physical.NewTopology()
	gateway := &loopbackDevice{id: "gw"}
	topo.AddDevice(gateway)

	u := NewUser(sched, topo, "u1", "u1", 0, gateway, sfc, workload.GET,
		knob.Fixed(1), knob.Fixed(1), knob.Fixed(1), knob.Fixed(1), knob.Fixed(0), knob.FixedInt(1), 0)

	u.StartRecurring(0)
	sched.Simulate(3.5)

	assert.Equal(t, 4, u.FailedCount(), "arrivals at t=0,1,2,3 each fail immediately with MaxRetries=0")
	assert.Equal(t, 0, u.Completed())
}

func TestUser_StopHaltsFutureArrivals(t *testing.T) {
	sched := engine.NewScheduler(4)
	sfc := notReadySFC(sched)
	topo := physical.NewTopology()
	gateway := &loopbackDevice{id: "gw"}
	topo.AddDevice(gateway)

	u := NewUser(sched, topo, "u1", "u1", 0, gateway, sfc, workload.GET,
		knob.Fixed(1), knob.Fixed(1), knob.Fixed(1), knob.Fixed(1), knob.Fixed(0), knob.FixedInt(1), 0)

	u.StartRecurring(0)
	sched.Simulate(1.5) // arrivals at t=0 and t=1
	assert.Equal(t, 2, u.FailedCount())

	u.Stop()
	sched.Simulate(10)

	assert.Equal(t, 2, u.FailedCount(), "no further arrivals after Stop")
}
