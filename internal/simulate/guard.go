// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simulate

import "github.com/hashicorp/go-set/v3"

// FreeGuard tracks which descriptor IDs a fake exited-queue consumer has
// already freed, so fault-injection tests can assert the housekeeper
// never frees the same descriptor twice.
type FreeGuard struct {
	freed *set.Set[uint64]
}

// NewFreeGuard returns an empty FreeGuard.
func NewFreeGuard() *FreeGuard {
	return &FreeGuard{freed: set.New[uint64](16)}
}

// MarkFreed records id as freed. It returns false if id was already
// marked, which a test should treat as a double-free bug.
func (g *FreeGuard) MarkFreed(id uint64) bool {
	if g.freed.Contains(id) {
		return false
	}
	g.freed.Insert(id)
	return true
}

// Count returns how many distinct IDs have been marked freed.
func (g *FreeGuard) Count() int { return g.freed.Size() }
