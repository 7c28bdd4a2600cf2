package physical

// Process is the subset of workload.Process's behavior the CPU scheduler
// needs. Defining it here (rather than importing the workload package)
// keeps physical -> workload a one-directional dependency: workload.Process
// implements this interface, physical.CPU consumes it. This mirrors the
// design notes' "replace pointers with handles" guidance without forcing a
// full arena rewrite — an interface boundary is the idiomatic Go handle.
type Process interface {
	ID() string
	SchedPriority() float64

	// Remaining reports length - progress - currentScheduledLength, in
	// instructions.
	Remaining() float64

	// ContainerMillicoreBudget reports how many instructions' worth of
	// core-capacity the owning container's CPU quota still allows, or
	// math.Inf(1) for processes that bypass container quotas (packet
	// handlers, daemon setup before a container exists).
	ContainerMillicoreBudget(coreCapacity float64) float64

	// ReserveContainerCPU reserves millicoreSeconds on the owning
	// container's CPU Resource. No-op for processes with no container.
	ReserveContainerCPU(millicoreSeconds float64)
	// ReleaseContainerCPU releases a prior reservation.
	ReleaseContainerCPU(millicoreSeconds float64)

	// AddScheduled increments currentScheduledLength by chunk.
	AddScheduled(chunk float64)

	// MarkExecuting records that core is now executing this process and
	// sets the EXECUTING status.
	MarkExecuting(core *Core)
	// ClearExecuting removes core from the process's executing-core set
	// and clears EXECUTING if no core remains. Returns the number of
	// cores still executing the process afterward.
	ClearExecuting(core *Core) int

	// Advance adds n to progress and subtracts n from
	// currentScheduledLength, the effect of a core clearance.
	Advance(n float64)

	// Failed reports whether the process has already failed (clearance
	// performs no releases for a failed process, per §4.3).
	Failed() bool

	// CompleteCheck is invoked after every clearance at
	// ProcessCompleteCheck priority; it marks the process COMPLETED if
	// progress >= length and runs completion side effects.
	CompleteCheck(now float64)
}
