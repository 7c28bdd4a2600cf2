package flow

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// UserOwner is the narrow User-facing interface a UserRequest notifies when
// it finally succeeds or exhausts its retries.
type UserOwner interface {
	ID() string
	OnUserRequestCompleted(ur *UserRequest, now float64)
	OnUserRequestFailed(ur *UserRequest, now float64)
}

// UserRequestRecorder is the narrow telemetry hook a UserRequest notifies
// on final success or exhausted retries, implemented by
// monitor.UserRequestMonitor.
type UserRequestRecorder interface {
	RecordCompleted(now float64)
	RecordFailed(now float64)
}

// UserRequest is one logical request a User wants satisfied: it retries a
// failing Workflow up to MaxRetries times, waiting Backoff.Sample() seconds
// between attempts (§3 UserRequest).
type UserRequest struct {
	id  string
	SFC *service.SFC
	Kind workload.Kind
	Source workload.Endpoint

	ProcessLength knob.Float
	PacketSize    knob.Float
	NumPackets    knob.Int
	Priority      knob.Float
	Backoff       knob.Float
	MaxRetries    int

	topo     *physical.Topology
	sched    *engine.Scheduler
	owner    UserOwner
	resolver Resolver
	recorder UserRequestRecorder
	wfRecorder  WorkflowRecorder
	reqRecorder workload.RequestRecorder

	attempt   int
	current   *Workflow
	succeeded bool
	failed    bool
}

// NewUserRequest constructs a UserRequest bound to a target SFC.
func NewUserRequest(id string, sched *engine.Scheduler, topo *physical.Topology, sfc *service.SFC, kind workload.Kind, source workload.Endpoint,
	processLength knob.Float, packetSize knob.Float, numPackets knob.Int, priority knob.Float, backoff knob.Float, maxRetries int, owner UserOwner) *UserRequest {
	return &UserRequest{
		id: id, SFC: sfc, Kind: kind, Source: source, topo: topo, sched: sched, owner: owner,
		ProcessLength: processLength, PacketSize: packetSize, NumPackets: numPackets, Priority: priority,
		Backoff: backoff, MaxRetries: maxRetries,
	}
}

// WithResolver attaches a Resolver every Workflow this UserRequest creates
// will use, returning ur for chaining.
func (ur *UserRequest) WithResolver(r Resolver) *UserRequest {
	ur.resolver = r
	return ur
}

// WithRecorder attaches telemetry Recorders: rec is notified when this
// UserRequest finally succeeds or exhausts its retries, wfRec is propagated
// to every Workflow attempt it spawns, and reqRec is propagated further to
// every per-stage Request each Workflow attempt creates. Any may be nil.
func (ur *UserRequest) WithRecorder(rec UserRequestRecorder, wfRec WorkflowRecorder, reqRec workload.RequestRecorder) *UserRequest {
	ur.recorder = rec
	ur.wfRecorder = wfRec
	ur.reqRecorder = reqRec
	return ur
}

func (ur *UserRequest) ID() string { return ur.id }

// Start issues the first attempt.
func (ur *UserRequest) Start(now float64) {
	ur.attemptOnce(now)
}

func (ur *UserRequest) attemptOnce(now float64) {
	ur.attempt++
	wf := NewWorkflow(fmt.Sprintf("%s/attempt-%d", ur.id, ur.attempt), ur.SFC, ur.Kind, ur.Source, ur.topo,
		ur.ProcessLength, ur.PacketSize, ur.NumPackets, ur.Priority, ur).
		WithResolver(ur.resolver).WithRecorder(ur.wfRecorder).WithRequestRecorder(ur.reqRecorder)
	ur.current = wf
	if err := wf.Start(now); err != nil {
		ur.OnWorkflowFailed(wf, now)
	}
}

// OnWorkflowCompleted implements flow.UserRequestRef.
func (ur *UserRequest) OnWorkflowCompleted(w *Workflow, now float64) {
	if ur.succeeded || ur.failed {
		return
	}
	ur.succeeded = true
	if ur.recorder != nil {
		ur.recorder.RecordCompleted(now)
	}
	if ur.owner != nil {
		ur.owner.OnUserRequestCompleted(ur, now)
	}
}

// OnWorkflowFailed implements flow.UserRequestRef: retries with backoff, up
// to MaxRetries, otherwise fails the whole UserRequest (§4.6 retry/backoff).
func (ur *UserRequest) OnWorkflowFailed(w *Workflow, now float64) {
	if ur.succeeded || ur.failed {
		return
	}
	if ur.attempt > ur.MaxRetries {
		ur.failed = true
		if ur.recorder != nil {
			ur.recorder.RecordFailed(now)
		}
		if ur.owner != nil {
			ur.owner.OnUserRequestFailed(ur, now)
		}
		return
	}
	delay := ur.Backoff.Sample()
	ur.sched.Schedule(engine.NewActor(now+delay, engine.RequestScheduler, ur.id+"/retry", func(now float64) {
		ur.attemptOnce(now)
	}))
}

func (ur *UserRequest) Succeeded() bool { return ur.succeeded }
func (ur *UserRequest) Failed() bool    { return ur.failed }
