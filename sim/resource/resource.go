// Package resource implements the capacity-bounded quantity pool with
// reservations and utilization history (§4.2).
package resource

import (
	"fmt"
)

// Sample is a single utilization observation: the quantity of capacity
// claimed (Capacity minus available) at a point in virtual time.
type Sample struct {
	Time int64 // ticks (engine.Actor.FireTime scaled by the owning clock)
	Used float64
}

// ErrCapacityExceeded is returned by Distribute when the requested quantity
// exceeds what is currently available.
var ErrCapacityExceeded = fmt.Errorf("capacity exceeded")

// Resource is a non-negative capacity with outstanding claims and a time
// series of utilization samples. Every Resource has exactly one implicit
// owner (the embedding entity) and is mutated only from within an actor's
// action, so no internal locking is needed (§5).
type Resource struct {
	Capacity  float64
	available float64
	claims    map[string]float64
	samples   []Sample

	now func() int64 // clock accessor, injected by the owner
}

// New creates a Resource at full capacity with the given clock accessor.
// now is called to timestamp utilization samples; it is typically the
// owning simulator's current tick.
func New(capacity float64, now func() int64) *Resource {
	return &Resource{
		Capacity:  capacity,
		available: capacity,
		claims:    make(map[string]float64),
		now:       now,
	}
}

// Available returns the currently unclaimed quantity.
func (r *Resource) Available() float64 { return r.available }

// Claimed returns the quantity currently claimed by owner.
func (r *Resource) Claimed(owner string) float64 { return r.claims[owner] }

// Distribute reserves q units of capacity for owner. It fails with
// ErrCapacityExceeded when q exceeds Available(); no partial reservation is
// ever made.
func (r *Resource) Distribute(owner string, q float64) error {
	if q < 0 {
		panic("resource: negative distribute")
	}
	if q > r.available {
		return ErrCapacityExceeded
	}
	r.available -= q
	r.claims[owner] += q
	r.sample()
	return nil
}

// Release returns q units previously claimed by owner. If q is omitted
// (zero and owner has a claim), the owner's entire claim is released.
func (r *Resource) Release(owner string, q float64) float64 {
	held := r.claims[owner]
	if q <= 0 || q > held {
		q = held
	}
	if q == 0 {
		return 0
	}
	r.claims[owner] -= q
	if r.claims[owner] <= 0 {
		delete(r.claims, owner)
	}
	r.available += q
	r.sample()
	return q
}

// ReleaseAll releases every outstanding claim held by owner and returns the
// quantity returned.
func (r *Resource) ReleaseAll(owner string) float64 {
	return r.Release(owner, r.claims[owner])
}

func (r *Resource) sample() {
	used := r.Capacity - r.available
	t := int64(0)
	if r.now != nil {
		t = r.now()
	}
	if n := len(r.samples); n > 0 && r.samples[n-1].Used == used {
		// Coalesce equal-value samples (allowed by §4.2).
		r.samples[n-1].Time = t
		return
	}
	r.samples = append(r.samples, Sample{Time: t, Used: used})
}

// UtilizationInPast returns the time-weighted mean of used/capacity over the
// window [now-window, now]. A Resource with zero capacity reports 0.
func (r *Resource) UtilizationInPast(window int64) float64 {
	if r.Capacity <= 0 {
		return 0
	}
	now := int64(0)
	if r.now != nil {
		now = r.now()
	}
	from := now - window
	if len(r.samples) == 0 {
		return 0
	}

	// Find the utilization in effect at `from`: the last sample at or before
	// it, or the first sample if all samples are after `from`.
	var acc float64
	var lastUsed float64
	var lastT int64
	started := false
	for _, s := range r.samples {
		if s.Time <= from {
			lastUsed = s.Used
			lastT = from
			started = true
			continue
		}
		if !started {
			lastUsed = s.Used
			lastT = from
			started = true
		}
		if s.Time > now {
			break
		}
		acc += lastUsed * float64(s.Time-lastT)
		lastUsed = s.Used
		lastT = s.Time
	}
	if now > lastT {
		acc += lastUsed * float64(now-lastT)
	}
	span := now - from
	if span <= 0 {
		return lastUsed / r.Capacity
	}
	return (acc / float64(span)) / r.Capacity
}

// Utilization returns the instantaneous utilization fraction.
func (r *Resource) Utilization() float64 {
	if r.Capacity <= 0 {
		return 0
	}
	return (r.Capacity - r.available) / r.Capacity
}
