// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import "sync"

// registry resolves a CPU index to its Scheduler instance. Per §9's
// design note on per-CPU globals: "pass the scheduler handle explicitly
// where possible; where the caller crosses an interrupt boundary,
// resolve it via a per-CPU lookup." Registration is the only thing that
// needs locking here — once registered, a Scheduler is touched only by
// the CPU that owns it (§5).
type registry struct {
	mu     sync.Mutex
	byCPU  map[int]*Scheduler
}

func newRegistry() *registry {
	return &registry{byCPU: make(map[int]*Scheduler)}
}

func (r *registry) register(s *Scheduler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCPU[s.CPU()] = s
}

func (r *registry) current(cpu int) (*Scheduler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byCPU[cpu]
	return s, ok
}

var defaultRegistry = newRegistry()

// RegisterCPU makes s resolvable by PerCPUCurrent(s.CPU()). Called once
// by whatever sets up a CPU's scheduler (mirrors init_scheduler's
// external caller establishing the per-CPU binding).
func RegisterCPU(s *Scheduler) {
	defaultRegistry.register(s)
}

// PerCPUCurrent is the consumed per_cpu_current() collaborator of spec
// §6: retrieve the calling CPU's scheduler instance from an interrupt
// context that doesn't already have the handle threaded through.
func PerCPUCurrent(cpu int) (*Scheduler, bool) {
	return defaultRegistry.current(cpu)
}
