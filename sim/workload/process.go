package workload

import (
	"math"

	"github.com/cloudsim/cloudsim/sim/physical"
)

// RequestRef is the narrow slice of flow.Workflow/Request-owner behavior a
// Process needs to report completion or failure, kept here to avoid
// workload importing the higher-level flow package.
type RequestRef interface {
	ID() string
	OnProcessCompleted(p *Process, now float64)
	OnProcessFailed(p *Process, now float64)
}

// Process is a unit of CPU work belonging to a container: a length in
// instructions, a scheduling priority, and the progress/scheduled/executing
// bookkeeping the CPU scheduler mutates (§3, §4.3). It implements
// physical.Process.
type Process struct {
	id       string
	Label    string
	Length   float64
	Priority float64
	IsDaemon bool

	container *Container
	request   RequestRef

	progress  float64
	scheduled float64
	executing map[*physical.Core]bool
	ramBytes  float64 // RAM claimed against container/host on admission, released on terminate

	failed    bool
	completed bool

	onComplete func(now float64)
}

// NewProcess constructs a Process owned by c, with length instructions and
// the given scheduling priority. req is nil for daemon/setup processes with
// no owning Request.
func NewProcess(id, label string, length, priority float64, c *Container, req RequestRef) *Process {
	return &Process{
		id:        id,
		Label:     label,
		Length:    length,
		Priority:  priority,
		container: c,
		request:   req,
		executing: map[*physical.Core]bool{},
	}
}

// OnComplete registers a callback invoked exactly once when the process
// reaches COMPLETED.
func (p *Process) OnComplete(cb func(now float64)) { p.onComplete = cb }

func (p *Process) ID() string            { return p.id }
func (p *Process) SchedPriority() float64 { return p.Priority }
func (p *Process) Remaining() float64    { return p.Length - p.progress - p.scheduled }
func (p *Process) Failed() bool          { return p.failed }
func (p *Process) Completed() bool       { return p.completed }

// ContainerMillicoreBudget implements physical.Process by delegating to the
// owning container's quota, or returning +Inf for container-less processes
// (daemon setup before scheduling, which must never be throttled).
func (p *Process) ContainerMillicoreBudget(coreCapacity float64) float64 {
	if p.container == nil {
		return math.Inf(1)
	}
	return p.container.cpuBudgetInstructions(coreCapacity)
}

func (p *Process) ReserveContainerCPU(millicoreSeconds float64) {
	if p.container == nil {
		return
	}
	p.container.reserveCPU(p.id, millicoreSeconds)
}

func (p *Process) ReleaseContainerCPU(millicoreSeconds float64) {
	if p.container == nil {
		return
	}
	p.container.releaseCPU(p.id, millicoreSeconds)
}

func (p *Process) AddScheduled(chunk float64) { p.scheduled += chunk }

func (p *Process) MarkExecuting(c *physical.Core) {
	p.executing[c] = true
}

func (p *Process) ClearExecuting(c *physical.Core) int {
	delete(p.executing, c)
	return len(p.executing)
}

func (p *Process) Advance(n float64) {
	p.progress += n
	p.scheduled -= n
}

// Fail marks the process FAILED and notifies its owning request, if any
// (§4.4 crash cascade, §7 failure propagation). Idempotent.
func (p *Process) Fail(now float64) {
	if p.failed || p.completed {
		return
	}
	p.failed = true
	p.releaseRAM()
	if p.request != nil {
		p.request.OnProcessFailed(p, now)
	}
}

// CompleteCheck implements physical.Process: marks the process COMPLETED
// once progress reaches length and notifies its owning request.
func (p *Process) CompleteCheck(now float64) {
	if p.failed || p.completed {
		return
	}
	if p.progress+1e-9 < p.Length {
		return
	}
	p.completed = true
	p.releaseRAM()
	if p.request != nil {
		p.request.OnProcessCompleted(p, now)
	}
	if p.onComplete != nil {
		p.onComplete(now)
	}
}

// releaseRAM returns this process's RAM claim to its owning container, if
// any was made at admission. Safe to call even when no RAM was claimed.
func (p *Process) releaseRAM() {
	if p.ramBytes <= 0 || p.container == nil {
		return
	}
	p.container.releaseRAM(p.ID(), p.ramBytes)
	p.ramBytes = 0
}
