// Package workload implements the virtual workload units — Volume,
// Container, Process (daemon processes included, flagged by IsDaemon), Packet, and Request —
// along with their ownership and failure-propagation rules (§3, §4.4-§4.6).
package workload

import (
	"github.com/cloudsim/cloudsim/sim/engine"
	"github.com/cloudsim/cloudsim/sim/entity"
	"github.com/cloudsim/cloudsim/sim/physical"
)

// Volume is a unit of persistent storage that can be allocated to a host's
// ROM pool and attached to a container (§3).
type Volume struct {
	*entity.Entity

	Tag    string
	Path   string
	Size   float64 // bytes
	Retain bool
	Taint  string

	Container *Container
	Host      *physical.Host

	attached  bool
	allocated bool
}

// NewVolume constructs a Volume in the CREATED state.
func NewVolume(sched *engine.Scheduler, id, label string, at float64, tag, path string, size float64, retain bool, taint string) *Volume {
	v := &Volume{Tag: tag, Path: path, Size: size, Retain: retain, Taint: taint}
	v.Entity = entity.New(sched, id, label, at, nil, nil)
	return v
}

// Allocated reports whether the volume has been assigned a host's ROM.
func (v *Volume) Allocated() bool { return v.allocated }

// Attached reports whether the volume is currently attached to a container.
func (v *Volume) Attached() bool { return v.attached }

// Allocate reserves Size bytes of h's ROM and records h as the hosting
// host. Returns false if h lacks headroom.
func (v *Volume) Allocate(h *physical.Host, now float64) bool {
	if err := h.ROM.Distribute(v.ID, v.Size); err != nil {
		return false
	}
	v.Host = h
	v.allocated = true
	return true
}

// Deallocate releases the volume's ROM claim on its host.
func (v *Volume) Deallocate() {
	if v.Host != nil {
		v.Host.ROM.Release(v.ID, v.Size)
	}
	v.Host = nil
	v.allocated = false
}

// Attach binds the volume to c.
func (v *Volume) Attach(c *Container) {
	v.Container = c
	v.attached = true
}

// Detach unbinds the volume from its container without deallocating its
// host ROM reservation (used when a retained volume survives a container
// crash, §4.4).
func (v *Volume) Detach() {
	v.Container = nil
	v.attached = false
}
