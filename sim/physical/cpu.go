package physical

import (
	"math"
	"sort"

	"github.com/cloudsim/cloudsim/sim/engine"
)

// CPU owns an ordered list of cores, a cached ready-queue of processes, and
// a singleton "schedule-in-progress" flag so bursts of CacheProcess calls
// collapse into a single scheduling pass (§3, §4.3).
type CPU struct {
	Cores []*Core

	queue   []Process
	pending *engine.Actor

	PoweredOn bool

	sched *engine.Scheduler
}

// NewCPU builds a CPU with numCores cores of the given per-core
// instructions/second capacity.
func NewCPU(sched *engine.Scheduler, numCores int, ipc, frequencyHz float64, cpuAcceleration int) *CPU {
	cpu := &CPU{sched: sched, PoweredOn: false}
	for i := 0; i < numCores; i++ {
		cpu.Cores = append(cpu.Cores, NewCore(i, ipc, frequencyHz, cpuAcceleration, sched))
	}
	return cpu
}

// CacheProcess appends p to the CPU's queue and arms a single pending
// schedule pass if one is not already pending (§4.3). It records no CACHED
// status on p.
func (cpu *CPU) CacheProcess(p Process) {
	cpu.queue = append(cpu.queue, p)
	cpu.arm()
}

func (cpu *CPU) arm() {
	if cpu.pending != nil && cpu.pending.Active() {
		return
	}
	cpu.pending = engine.NewActor(cpu.sched.Clock, engine.CPUScheduleProcess, "cpu/schedule", func(now float64) {
		cpu.pending = nil
		cpu.schedule(now)
	})
	cpu.sched.Schedule(cpu.pending)
}

// schedule runs one pass of the CPU scheduling algorithm (§4.3): processes
// are visited priority-ascending, and for each, every core in order is
// offered a chunk bounded by remaining work, container quota, and core
// budget.
func (cpu *CPU) schedule(now float64) {
	ordered := make([]Process, len(cpu.queue))
	copy(ordered, cpu.queue)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SchedPriority() < ordered[j].SchedPriority()
	})

	remainingQueue := make([]Process, 0, len(cpu.queue))

	for _, p := range ordered {
		for _, core := range cpu.Cores {
			remaining := p.Remaining()
			if remaining <= 0 {
				break
			}
			containerBudget := p.ContainerMillicoreBudget(core.Capacity)
			coreBudget := core.AvailableInstructions()
			chunk := math.Floor(math.Min(remaining, math.Min(containerBudget, coreBudget)))
			if chunk <= 0 {
				continue
			}
			core.Execute(p, chunk, func(now float64) { cpu.arm() })
			p.AddScheduled(chunk)
			p.ReserveContainerCPU(chunk / core.Capacity * 1000)
		}
		if p.Remaining() > 0 {
			remainingQueue = append(remainingQueue, p)
		}
	}
	cpu.queue = remainingQueue
}
