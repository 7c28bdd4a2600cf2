// Package entity implements the Entity base: the created/started/terminated
// lifecycle, after-dependencies, and status set shared by every physical and
// virtual object in the simulation (§3).
package entity

import (
	"github.com/google/uuid"

	"github.com/cloudsim/cloudsim/sim/engine"
)

// Entity is embedded by every physical and virtual simulation object. It
// owns two scheduled actors: a creator firing at `at` (optionally after
// another entity terminates) and a terminator, initially dormant, fired
// explicitly by Terminate.
type Entity struct {
	ID    string
	Label string

	statuses map[Status]bool

	CreatedAt          float64
	TerminatedAt       float64
	created            bool
	ended              bool
	terminationPending bool

	sched      *engine.Scheduler
	creator    *engine.Actor
	terminator *engine.Actor

	onCreate    []func(now float64)
	onTerminate []func(now float64)
}

// New constructs an Entity and schedules its creator actor at `at` on sched.
// If after is non-nil, the creator will not fire until after's terminator
// actor has fired. label is used verbatim if non-empty; otherwise ID is
// used as the label. onCreate runs when the creator actor fires, after the
// Created status is set.
func New(sched *engine.Scheduler, id, label string, at float64, after *Entity, onCreate func(now float64)) *Entity {
	if id == "" {
		id = uuid.NewString()
	}
	if label == "" {
		label = id
	}
	e := &Entity{
		ID:       id,
		Label:    label,
		statuses: map[Status]bool{},
		sched:    sched,
	}
	e.creator = engine.NewActor(at, engine.Creation, label+"/create", func(now float64) {
		e.CreatedAt = now
		e.created = true
		e.setStatus(Created)
		for _, cb := range e.onCreate {
			cb(now)
		}
		if onCreate != nil {
			onCreate(now)
		}
	})
	if after != nil {
		e.creator.After(after.terminator)
	}
	sched.Schedule(e.creator)

	e.terminator = engine.NewActor(at, engine.Termination, label+"/terminate", func(now float64) {
		e.TerminatedAt = now
		e.ended = true
		e.setStatus(Terminated)
		for _, cb := range e.onTerminate {
			cb(now)
		}
	})
	e.terminator.Deactivate() // dormant until Terminate schedules and activates it
	return e
}

// OnCreate registers a callback invoked when the entity's creator actor
// fires.
func (e *Entity) OnCreate(cb func(now float64)) { e.onCreate = append(e.onCreate, cb) }

// OnTerminate registers a callback invoked when the entity terminates.
func (e *Entity) OnTerminate(cb func(now float64)) { e.onTerminate = append(e.onTerminate, cb) }

// CreatorActor exposes the creator actor so other entities can depend on it
// (After) or inspect whether creation has already fired.
func (e *Entity) CreatorActor() *engine.Actor { return e.creator }

// TerminatorActor exposes the terminator actor as an After-dependency target
// for entities that must wait for this one to terminate.
func (e *Entity) TerminatorActor() *engine.Actor { return e.terminator }

// HasStatus reports whether s is currently set.
func (e *Entity) HasStatus(s Status) bool { return e.statuses[s] }

// SetStatus adds s to the status set.
func (e *Entity) SetStatus(s Status) { e.setStatus(s) }

func (e *Entity) setStatus(s Status) { e.statuses[s] = true }

// ClearStatus removes s from the status set.
func (e *Entity) ClearStatus(s Status) { delete(e.statuses, s) }

// Statuses returns a snapshot of all currently set statuses.
func (e *Entity) Statuses() []Status {
	out := make([]Status, 0, len(e.statuses))
	for s := range e.statuses {
		out = append(out, s)
	}
	return out
}

// Created reports whether the entity's creator actor has fired.
func (e *Entity) Created() bool { return e.created }

// IsTerminated reports whether the entity has terminated.
func (e *Entity) IsTerminated() bool { return e.ended }

// Terminate schedules the terminator actor to fire immediately at `now`,
// unless the entity has already terminated or termination is already
// pending (idempotent, per §7 cascade-failure rules).
func (e *Entity) Terminate(now float64) {
	if e.ended || e.terminationPending {
		return
	}
	e.terminationPending = true
	e.terminator.FireTime = now
	e.terminator.Activate()
	e.sched.Schedule(e.terminator)
}
