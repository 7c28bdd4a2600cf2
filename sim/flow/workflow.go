// Package flow implements the user-facing request lifecycle: a Workflow
// walks a request through every stage of an SFC, a UserRequest retries a
// failed Workflow with backoff, and a User repeatedly issues UserRequests
// against a target SFC (§3 Workflow/UserRequest/User, §4.6, §6).
package flow

import (
	"fmt"

	"github.com/cloudsim/cloudsim/sim/knob"
	"github.com/cloudsim/cloudsim/sim/physical"
	"github.com/cloudsim/cloudsim/sim/service"
	"github.com/cloudsim/cloudsim/sim/workload"
)

// UserRequestRef is the narrow slice of UserRequest behavior a Workflow
// notifies on completion or failure.
type UserRequestRef interface {
	ID() string
	OnWorkflowCompleted(w *Workflow, now float64)
	OnWorkflowFailed(w *Workflow, now float64)
}

// Resolver resolves an SFC stage to a concrete endpoint for a given
// workflow, implemented by control.RequestScheduler. Workflow falls back to
// calling the stage's Service directly when none is supplied, so a Resolver
// is optional.
type Resolver interface {
	Resolve(workflowID string, ns *service.NetworkService) (workload.Endpoint, error)
}

// WorkflowRecorder is the narrow telemetry hook a Workflow notifies on
// completion or failure, implemented by monitor.WorkflowMonitor.
type WorkflowRecorder interface {
	RecordCompleted(now float64)
	RecordFailed(now float64)
}

// Workflow drives one traversal of an SFC's stages for a single
// UserRequest attempt. Its Request list grows one stage at a time: Start
// creates the first stage's Request and each completed Request creates the
// next one. The list is not built up front from the SFC's stage sequence.
type Workflow struct {
	id  string
	SFC *service.SFC
	Kind workload.Kind

	ProcessLength knob.Float
	PacketSize    knob.Float
	NumPackets    knob.Int
	Priority      knob.Float

	topo        *physical.Topology
	resolver    Resolver
	recorder    WorkflowRecorder
	reqRecorder workload.RequestRecorder

	owner UserRequestRef

	stageIdx int
	requests []*workload.Request
	source   workload.Endpoint

	failed    bool
	completed bool
}

// NewWorkflow constructs a Workflow for one attempt at sfc, starting from
// source (typically the user's gateway endpoint).
func NewWorkflow(id string, sfc *service.SFC, kind workload.Kind, source workload.Endpoint, topo *physical.Topology,
	processLength knob.Float, packetSize knob.Float, numPackets knob.Int, priority knob.Float, owner UserRequestRef) *Workflow {
	return &Workflow{
		id: id, SFC: sfc, Kind: kind, source: source, topo: topo,
		ProcessLength: processLength, PacketSize: packetSize, NumPackets: numPackets, Priority: priority,
		owner: owner,
	}
}

func (w *Workflow) ID() string { return w.id }

// WithResolver attaches a control.RequestScheduler (or any Resolver) to
// route stage resolution through, returning w for chaining.
func (w *Workflow) WithResolver(r Resolver) *Workflow {
	w.resolver = r
	return w
}

// WithRecorder attaches a telemetry Recorder notified once per whole
// workflow attempt, returning w for chaining.
func (w *Workflow) WithRecorder(rec WorkflowRecorder) *Workflow {
	w.recorder = rec
	return w
}

// WithRequestRecorder attaches a finer-grained telemetry Recorder,
// propagated to every per-stage Request this workflow creates, returning w
// for chaining.
func (w *Workflow) WithRequestRecorder(rec workload.RequestRecorder) *Workflow {
	w.reqRecorder = rec
	return w
}

// Start expands the first SFC stage's request. Fails immediately if the
// chain is not READY (§3 SFC: all stages must be ready).
func (w *Workflow) Start(now float64) error {
	if !w.SFC.Ready() {
		return fmt.Errorf("workflow %s: sfc %s not ready", w.id, w.SFC.Name)
	}
	return w.advance(w.source, now)
}

func (w *Workflow) advance(src workload.Endpoint, now float64) error {
	stage := w.SFC.Stages[w.stageIdx]
	var dst workload.Endpoint
	var err error
	if w.resolver != nil {
		dst, err = w.resolver.Resolve(w.id, stage)
	} else {
		dst, err = stage.Service.Resolve()
	}
	if err != nil {
		w.fail(now)
		return err
	}
	req := workload.NewRequest(fmt.Sprintf("%s/stage-%d", w.id, w.stageIdx), w.Kind, src, dst, w.topo,
		w.ProcessLength, w.PacketSize, w.NumPackets, w.Priority, w)
	if w.reqRecorder != nil {
		req.WithRecorder(w.reqRecorder)
	}
	w.requests = append(w.requests, req)
	if err := req.Expand(now); err != nil {
		w.fail(now)
		return err
	}
	return nil
}

// OnRequestCompleted implements workload.WorkflowRef: advances to the next
// SFC stage, or completes the workflow if this was the last one.
func (w *Workflow) OnRequestCompleted(r *workload.Request, now float64) {
	if w.failed || w.completed {
		return
	}
	w.stageIdx++
	if w.stageIdx >= len(w.SFC.Stages) {
		w.completed = true
		if w.recorder != nil {
			w.recorder.RecordCompleted(now)
		}
		if w.owner != nil {
			w.owner.OnWorkflowCompleted(w, now)
		}
		return
	}
	// The next stage's source is the previous stage's resolved endpoint,
	// chaining the request through the SFC (§3 SFC).
	w.advance(r.Target, now)
}

// OnRequestFailed implements workload.WorkflowRef.
func (w *Workflow) OnRequestFailed(r *workload.Request, now float64) {
	w.fail(now)
}

func (w *Workflow) fail(now float64) {
	if w.failed || w.completed {
		return
	}
	w.failed = true
	if w.recorder != nil {
		w.recorder.RecordFailed(now)
	}
	if w.owner != nil {
		w.owner.OnWorkflowFailed(w, now)
	}
}

func (w *Workflow) Failed() bool    { return w.failed }
func (w *Workflow) Completed() bool { return w.completed }
