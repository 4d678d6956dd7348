// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command rtsched-demo runs the two-periodic-thread (S1) and
// periodic-plus-aperiodic (S2) scenarios from the scheduler's test
// suite against the fake simulate collaborators, printing a trace of
// every dispatcher decision. It is the folded-back replacement for the
// original's duplicate simulator: all dispatch logic lives in
// rtsched.Scheduler.Reschedule, this command only supplies fakes and
// prints what came back.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/cnotch/rtsched"
	"github.com/cnotch/rtsched/internal/simulate"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "rtsched-demo",
		Level: hclog.Info,
	})

	fmt.Println("=== S1: two periodic threads ===")
	runS1(logger)

	fmt.Println()
	fmt.Println("=== S2: one periodic thread plus the idle aperiodic fallback ===")
	runS2(logger)
}

func runS1(logger hclog.Logger) {
	clock := simulate.NewClock(0)
	timer := simulate.NewTimer()
	boot := simulate.NewThreadHandle("idle")

	sched, err := rtsched.InitScheduler(0, clock, timer, boot, rtsched.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a, _ := sched.Create(rtsched.Periodic, &rtsched.PeriodicConstraints{Period: 1000, Slice: 100}, 0, simulate.NewThreadHandle("A"))
	b, _ := sched.Create(rtsched.Periodic, &rtsched.PeriodicConstraints{Period: 500, Slice: 50}, 0, simulate.NewThreadHandle("B"))
	sched.Admit(a)
	sched.Admit(b)

	driver := simulate.NewDriver(sched, clock, timer)
	for _, step := range driver.Run(6) {
		fmt.Println(step)
	}
}

func runS2(logger hclog.Logger) {
	clock := simulate.NewClock(0)
	timer := simulate.NewTimer()
	boot := simulate.NewThreadHandle("idle")

	sched, err := rtsched.InitScheduler(0, clock, timer, boot, rtsched.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a, _ := sched.Create(rtsched.Periodic, &rtsched.PeriodicConstraints{Period: 1000, Slice: 100}, 0, simulate.NewThreadHandle("A"))
	sched.Admit(a)

	driver := simulate.NewDriver(sched, clock, timer)
	for _, step := range driver.Run(6) {
		fmt.Println(step)
	}
}
