package engine

// Actor is a unit of deferred work: an action that fires once the clock
// reaches FireTime, provided its optional After dependency has already
// fired. Actors are the only way state changes in the simulation —
// actions never block and express delay by scheduling further actors.
type Actor struct {
	FireTime float64
	Prio     Priority
	Label    string
	Action   func(now float64)

	active bool
	fired  bool
	after  *Actor

	seq int // insertion order, breaks ties at equal (FireTime, Prio)
}

// NewActor constructs an Actor. It is inert until handed to Scheduler.Schedule.
func NewActor(fireTime float64, prio Priority, label string, action func(now float64)) *Actor {
	return &Actor{FireTime: fireTime, Prio: prio, Label: label, Action: action, active: true}
}

// After makes this actor wait until dep has fired before it is eligible to
// fire, even if its FireTime has already passed.
func (a *Actor) After(dep *Actor) *Actor {
	a.after = dep
	return a
}

// Deactivate prevents a pending actor from firing. Used by coalesced
// schedulers to drop redundant re-entrant passes.
func (a *Actor) Deactivate() { a.active = false }

// Activate makes a dormant actor eligible to fire again once scheduled.
func (a *Actor) Activate() { a.active = true }

// Active reports whether the actor is still eligible to fire.
func (a *Actor) Active() bool { return a.active }

// Fired reports whether the actor's action has already executed.
func (a *Actor) Fired() bool { return a.fired }

func (a *Actor) ready() bool {
	if !a.active {
		return false
	}
	if a.after != nil && !a.after.fired {
		return false
	}
	return true
}
