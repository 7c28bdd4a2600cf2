package physical

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/resource"
)

// Core is a CPU core: a Resource of instructions/second wrapped with the
// set of processes currently executing on it (§3).
type Core struct {
	Index    int
	Capacity float64 // instructions/second = (IPC * frequency) / CPU_ACCELERATION

	power *resource.Resource // available_quantity in instructions/second "in flight"

	executing map[string]Process

	sched *engine.Scheduler
}

// NewCore creates a Core of the given capacity (instructions/second).
func NewCore(index int, ipc float64, frequencyHz float64, cpuAcceleration int, sched *engine.Scheduler) *Core {
	capacity := ipc * frequencyHz
	if cpuAcceleration > 0 {
		capacity /= float64(cpuAcceleration)
	}
	c := &Core{Index: index, Capacity: capacity, sched: sched, executing: map[string]Process{}}
	c.power = resource.New(capacity, func() int64 { return int64(sched.Clock * 1e6) })
	return c
}

// AvailableInstructions reports the core's currently unclaimed
// instruction-rate budget.
func (c *Core) AvailableInstructions() float64 { return c.power.Available() }

// Execute reserves n instructions on the core for n/capacity seconds of
// virtual time, marks p EXECUTING, and schedules the clearance actor that
// releases the reservation and advances p's progress (§4.3 core.execute).
// onCleared is invoked after clearance (used by CPU to re-arm its
// scheduling pass).
func (c *Core) Execute(p Process, n float64, onCleared func(now float64)) {
	if n <= 0 {
		return
	}
	if err := c.power.Distribute(p.ID(), n); err != nil {
		panic("core: scheduler offered more than available capacity")
	}
	c.executing[p.ID()] = p
	p.MarkExecuting(c)

	dt := n / c.Capacity
	clearAt := c.sched.Clock + dt
	c.sched.Schedule(engine.NewActor(clearAt, engine.CoreClearInstructions, "core/clear", func(now float64) {
		if p.Failed() {
			// §4.3: if the process has failed before clearance, no
			// releases are performed at all, including the core's own
			// instruction-rate reservation.
			return
		}
		c.power.Release(p.ID(), n)
		delete(c.executing, p.ID())
		p.ClearExecuting(c)
		p.Advance(n)
		p.ReleaseContainerCPU(n / c.Capacity * 1000)
		p.CompleteCheck(now)
		if onCleared != nil {
			onCleared(now)
		}
	}))
}
