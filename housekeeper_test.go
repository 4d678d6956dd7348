// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnotch/rtsched/internal/simulate"
)

func TestRegisterHousekeeper_BootstrapsWithoutArrivalDeadlock(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	hk, err := s.RegisterHousekeeper(200, 20, simulate.NewThreadHandle("housekeeper"))
	require.NoError(t, err)
	assert.Same(t, hk, s.Housekeeper())
	// the housekeeper must already be parked on an admitted queue, not
	// stuck on arrival waiting for itself to run.
	assert.NotEqual(t, ArrivalQueue, hk.CurrentQueue)
	assert.Equal(t, Admitted, hk.Status())
}

func TestRunHousekeeperPass_AdmitsArrivals(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	d, err := s.Create(Periodic, &PeriodicConstraints{Period: 1000, Slice: 10}, 0, simulate.NewThreadHandle("a"))
	require.NoError(t, err)
	assert.Equal(t, ArrivalQueue, d.CurrentQueue)

	err = s.RunHousekeeperPass()
	require.NoError(t, err)
	assert.Equal(t, Admitted, d.Status())
	assert.NotEqual(t, ArrivalQueue, d.CurrentQueue)
}

func TestRunHousekeeperPass_ReapsExited(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	d, err := s.Create(Periodic, &PeriodicConstraints{Period: 1000, Slice: 10}, 0, simulate.NewThreadHandle("a"))
	require.NoError(t, err)
	ok, err := s.Admit(d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PendingQueue, d.CurrentQueue)

	require.NoError(t, s.Exit(d))
	assert.Equal(t, ToBeRemoved, d.Status())

	err = s.RunHousekeeperPass()
	require.NoError(t, err)
	assert.Equal(t, Removed, d.Status())
	assert.Nil(t, d.Handle)
	assert.Equal(t, 0, s.pending.Len())
}

func TestRunHousekeeperPass_ExitFromRunningHasNothingToRemove(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	d, err := s.Create(Periodic, &PeriodicConstraints{Period: 1000, Slice: 10}, 0, simulate.NewThreadHandle("a"))
	require.NoError(t, err)
	d.Deadline = 0
	ok, err := s.Admit(d)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Set(0)
	s.Reschedule()
	require.Same(t, d, s.Current())

	// d is Running, so its priorQueue is NoQueue; Exit should still
	// succeed and the housekeeper should treat it as a no-op removal.
	require.NoError(t, s.Exit(d))
	err = s.RunHousekeeperPass()
	require.NoError(t, err)
	assert.Equal(t, Removed, d.Status())
}

func TestRunHousekeeperPass_AccumulatesAdmissionErrors(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	greedy, err := s.Create(Periodic, &PeriodicConstraints{Period: 1000, Slice: 900}, 0, simulate.NewThreadHandle("greedy"))
	require.NoError(t, err)

	err = s.RunHousekeeperPass()
	require.Error(t, err, "a denied arrival surfaces through the returned multierror")
	assert.Equal(t, Arrived, greedy.Status(), "a denied candidate keeps its pre-admission status")
}
