package flow

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// User is a synthetic traffic source: it repeatedly issues UserRequests
// against a target SFC at an inter-arrival time drawn from InterArrival,
// starting at the gateway Device (§3 User, §6 request_sfc).
type User struct {
	*entity.Entity

	Name string
	SFC  *service.SFC
	Kind workload.Kind
	Gateway physical.Device

	InterArrival knob.Float
	ProcessLength knob.Float
	PacketSize    knob.Float
	NumPackets    knob.Int
	Priority      knob.Float
	Backoff       knob.Float
	MaxRetries    int

	topo        *physical.Topology
	sched       *engine.Scheduler
	resolver    Resolver
	urRecorder  UserRequestRecorder
	wfRecorder  WorkflowRecorder
	reqRecorder workload.RequestRecorder

	requestSeq int
	completed  int
	failed     int
	stopped    bool
}

// NewUser constructs a User and does not start traffic; call RequestSFC to
// begin (or StartRecurring for the periodic driver).
func NewUser(sched *engine.Scheduler, topo *physical.Topology, id, name string, at float64, gateway physical.Device, sfc *service.SFC, kind workload.Kind,
	interArrival, processLength, packetSize, priority, backoff knob.Float, numPackets knob.Int, maxRetries int) *User {
	u := &User{
		Name: name, SFC: sfc, Kind: kind, Gateway: gateway,
		InterArrival: interArrival, ProcessLength: processLength, PacketSize: packetSize,
		NumPackets: numPackets, Priority: priority, Backoff: backoff, MaxRetries: maxRetries,
		topo: topo, sched: sched,
	}
	u.Entity = entity.New(sched, id, name, at, nil, nil)
	return u
}

func (u *User) ID() string { return u.Entity.ID }

// WithResolver attaches a Resolver every UserRequest this User issues will
// use, returning u for chaining.
func (u *User) WithResolver(r Resolver) *User {
	u.resolver = r
	return u
}

// WithRecorder attaches telemetry Recorders propagated to every UserRequest
// (and its Workflow attempts, and their per-stage Requests) this User
// issues, returning u for chaining.
func (u *User) WithRecorder(urRec UserRequestRecorder, wfRec WorkflowRecorder, reqRec workload.RequestRecorder) *User {
	u.urRecorder = urRec
	u.wfRecorder = wfRec
	u.reqRecorder = reqRec
	return u
}

// RequestSFC issues a single UserRequest immediately (§6 driver API).
func (u *User) RequestSFC(now float64) *UserRequest {
	u.requestSeq++
	src := workload.Endpoint{IsUser: true, Device: u.Gateway}
	ur := NewUserRequest(fmt.Sprintf("%s/req-%d", u.Entity.ID, u.requestSeq), u.sched, u.topo, u.SFC, u.Kind, src,
		u.ProcessLength, u.PacketSize, u.NumPackets, u.Priority, u.Backoff, u.MaxRetries, u).
		WithResolver(u.resolver).WithRecorder(u.urRecorder, u.wfRecorder, u.reqRecorder)
	ur.Start(now)
	return ur
}

// StartRecurring begins issuing UserRequests at InterArrival intervals
// starting at `now`, stopping only when Stop is called.
func (u *User) StartRecurring(now float64) {
	u.scheduleNext(now)
}

func (u *User) scheduleNext(now float64) {
	if u.stopped {
		return
	}
	u.RequestSFC(now)
	delay := u.InterArrival.Sample()
	u.sched.Schedule(engine.NewActor(now+delay, engine.RequestScheduler, u.Entity.Label+"/arrival", func(now float64) {
		u.scheduleNext(now)
	}))
}

// Stop halts future arrivals; in-flight UserRequests are unaffected.
func (u *User) Stop() { u.stopped = true }

// OnUserRequestCompleted implements UserOwner.
func (u *User) OnUserRequestCompleted(ur *UserRequest, now float64) { u.completed++ }

// OnUserRequestFailed implements UserOwner.
func (u *User) OnUserRequestFailed(ur *UserRequest, now float64) { u.failed++ }

// Completed reports the running count of successful UserRequests.
func (u *User) Completed() int { return u.completed }

// FailedCount reports the running count of exhausted-retry UserRequests.
func (u *User) FailedCount() int { return u.failed }
