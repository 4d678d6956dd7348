// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simulate

// ThreadHandle is a stand-in for the real context-switch primitive's
// opaque thread handle (out of scope per spec §1: "the core only
// chooses the next thread and returns its handle"). It carries just
// enough to make a trace readable.
type ThreadHandle struct {
	Name string
}

func NewThreadHandle(name string) *ThreadHandle {
	return &ThreadHandle{Name: name}
}

func (h *ThreadHandle) String() string { return h.Name }
