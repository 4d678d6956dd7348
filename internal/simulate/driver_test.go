// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnotch/rtsched"
)

func TestDriver_RunTracesDispatchDecisions(t *testing.T) {
	clock := NewClock(0)
	timer := NewTimer()
	boot := NewThreadHandle("idle")

	sched, err := rtsched.InitScheduler(0, clock, timer, boot)
	require.NoError(t, err)

	a, err := sched.Create(rtsched.Periodic, &rtsched.PeriodicConstraints{Period: 100, Slice: 10}, 0, NewThreadHandle("A"))
	require.NoError(t, err)
	ok, err := sched.Admit(a)
	require.NoError(t, err)
	require.True(t, ok)

	driver := NewDriver(sched, clock, timer)
	steps := driver.Run(3)
	require.Len(t, steps, 3)

	for _, step := range steps {
		assert.NotEmpty(t, step.String())
	}
	// the clock only ever moves forward by what was armed.
	assert.True(t, steps[1].Now >= steps[0].Now)
	assert.True(t, steps[2].Now >= steps[1].Now)
}
