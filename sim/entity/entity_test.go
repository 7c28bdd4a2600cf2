package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim/cloudsim/sim/engine"
)

func TestEntity_CreatesAtScheduledTime(t *testing.T) {
	sched := engine.NewScheduler(4)
	e := New(sched, "host-1", "", 3, nil, nil)
	assert.False(t, e.Created())
	sched.Simulate(10)
	assert.True(t, e.Created())
	assert.Equal(t, 3.0, e.CreatedAt)
	assert.True(t, e.HasStatus(Created))
	assert.Equal(t, "host-1", e.Label)
}

func TestEntity_EmptyLabelDefaultsToID(t *testing.T) {
	sched := engine.NewScheduler(4)
	e := New(sched, "host-2", "", 0, nil, nil)
	assert.Equal(t, "host-2", e.Label)
}

func TestEntity_GeneratesIDWhenAbsent(t *testing.T) {
	sched := engine.NewScheduler(4)
	e1 := New(sched, "", "", 0, nil, nil)
	e2 := New(sched, "", "", 0, nil, nil)
	require.NotEmpty(t, e1.ID)
	assert.NotEqual(t, e1.ID, e2.ID)
}

func TestEntity_OnCreateCallbackFires(t *testing.T) {
	sched := engine.NewScheduler(4)
	fired := false
	e := New(sched, "x", "", 0, nil, nil)
	e.OnCreate(func(now float64) { fired = true })
	sched.Simulate(10)
	assert.True(t, fired)
}

func TestEntity_AfterDependencyWaitsForPredecessorTermination(t *testing.T) {
	sched := engine.NewScheduler(4)
	pred := New(sched, "pred", "", 0, nil, nil)
	succ := New(sched, "succ", "", 0, pred, nil)

	sched.Simulate(0)
	assert.True(t, pred.Created())
	assert.False(t, succ.Created())

	pred.Terminate(1)
	sched.Simulate(10)
	assert.True(t, succ.Created())
	assert.Equal(t, 1.0, succ.CreatedAt)
}

func TestEntity_TerminateIsIdempotent(t *testing.T) {
	sched := engine.NewScheduler(4)
	calls := 0
	e := New(sched, "x", "", 0, nil, nil)
	e.OnTerminate(func(now float64) { calls++ })
	e.Terminate(5)
	e.Terminate(6) // second call is a no-op: termination already pending
	sched.Simulate(10)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5.0, e.TerminatedAt)
	assert.True(t, e.IsTerminated())
}

func TestEntity_StatusSetClearAndSnapshot(t *testing.T) {
	sched := engine.NewScheduler(4)
	e := New(sched, "x", "", 0, nil, nil)
	e.SetStatus(Scheduled)
	e.SetStatus(Cordon)
	assert.True(t, e.HasStatus(Scheduled))
	assert.True(t, e.HasStatus(Cordon))
	e.ClearStatus(Cordon)
	assert.False(t, e.HasStatus(Cordon))
	assert.ElementsMatch(t, []Status{Scheduled}, e.Statuses())
}
