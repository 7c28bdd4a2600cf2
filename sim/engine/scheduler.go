package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scheduler is the single-threaded cooperative virtual-time dispatcher.
// Exactly one actor action executes at a time; all state mutation happens
// inside an action, so the simulation is linearized by construction.
type Scheduler struct {
	Clock    float64
	Accuracy int

	queue actorQueue
	seq   int
}

// NewScheduler creates a Scheduler with the given clock-accuracy (number of
// decimal digits kept in fire times; default 4 -> quantum 0.0001).
func NewScheduler(accuracy int) *Scheduler {
	return &Scheduler{Accuracy: accuracy}
}

// At rounds t to the scheduler's quantum.
func (s *Scheduler) At(t float64) float64 { return Round(t, s.Accuracy) }

// Schedule enqueues a for dispatch. a.FireTime is rounded to the scheduler's
// quantum. Scheduling in the past (FireTime < Clock) is clamped to Clock,
// matching "actions schedule further actors at now or now+delta".
func (s *Scheduler) Schedule(a *Actor) *Actor {
	a.FireTime = s.At(a.FireTime)
	if a.FireTime < s.Clock {
		a.FireTime = s.Clock
	}
	a.seq = s.seq
	s.seq++
	s.queue.push(a)
	return a
}

// Simulate repeatedly pops the earliest ready actor, advances the clock to
// its fire time, and invokes its action, until the queue is drained or till
// is reached. Returns the clock at which simulation stopped.
func (s *Scheduler) Simulate(till float64) float64 {
	for {
		a := s.queue.popReady()
		if a == nil {
			if s.queue.hasPending() {
				// Every remaining actor is blocked on an unfired dependency
				// that will never fire (its predecessor was itself dropped
				// or deactivated). Nothing more can happen.
				logrus.Warnf("scheduler stalled with %d unreachable actor(s) pending", len(s.queue.items))
			}
			break
		}
		fireAt := s.Clock
		if a.FireTime > fireAt {
			// An After-dependency can hold an actor ready past its own
			// nominal FireTime; it then fires at the current clock, not
			// its stale FireTime, so the clock never runs backward.
			fireAt = a.FireTime
		}
		if fireAt > till {
			// Simulation horizon reached before this actor's time: it goes
			// back on the queue, so a later Simulate call can still fire it.
			s.queue.push(a)
			s.Clock = till
			break
		}
		s.Clock = fireAt
		a.fired = true
		logrus.Debugf("[t=%.4f] firing %s (prio=%d)", s.Clock, label(a), a.Prio)
		a.Action(s.Clock)
	}
	if s.Clock > till {
		s.Clock = till
	}
	return s.Clock
}

func label(a *Actor) string {
	if a.Label == "" {
		return fmt.Sprintf("actor@%p", a)
	}
	return a.Label
}
