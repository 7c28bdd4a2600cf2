// Package engine implements the priority-ordered discrete-event scheduler
// that drives every state change in the simulation at simulated time points.
package engine

// Priority orders actors that fire at the same simulated time. Lower values
// fire first.
type Priority int

const (
	Termination           Priority = -1
	Creation               Priority = 0
	Powering               Priority = 1
	HostPrivisioning       Priority = 2
	VolumeAllocation       Priority = 3
	VolumeAllocator        Priority = 4
	VolumeAttachDetach     Priority = 5
	ContainerAllocation    Priority = 6
	ContainerScheduler     Priority = 7
	MicroserviceEvaluation Priority = 8
	ProcessCompleteCheck   Priority = 8
	CoreClearInstructions  Priority = 9
	CoreExecuteProcess     Priority = 10
	CPUScheduleProcess     Priority = 11
	HostSchedulePacket     Priority = 12
	RequestScheduler       Priority = 13
	HostEvaluation         Priority = 14
	MonitorPriority        Priority = 15
)
