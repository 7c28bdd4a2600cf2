package entity

// Status is one flag in an entity's status set. Entities may hold several
// statuses at once (e.g. a container may be SCHEDULED and CORDON).
type Status string

const (
	Created      Status = "CREATED"
	Started      Status = "STARTED"
	Scheduled    Status = "SCHEDULED"
	Cached       Status = "CACHED"
	Executing    Status = "EXECUTING"
	Completed    Status = "COMPLETED"
	Failed       Status = "FAILED"
	Terminated   Status = "TERMINATED"
	Ready        Status = "READY"
	Cordon       Status = "CORDON"
	PoweredOn    Status = "POWERED_ON"
	Queued       Status = "QUEUED"
	Decoded      Status = "DECODED"
	Transmitting Status = "TRANSMITTING"
	Dropped      Status = "DROPPED"
	Privisioned  Status = "PRIVISIONED"
)
