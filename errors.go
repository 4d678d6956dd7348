// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import "fmt"

// Kind classifies a scheduler error so callers can branch on it without
// string matching.
type Kind int

const (
	// KindQueueFull: enqueue onto a queue already at capacity.
	KindQueueFull Kind = iota
	// KindQueueEmpty: dequeue on a queue with nothing in it.
	KindQueueEmpty
	// KindNotFound: remove-by-identity found no matching descriptor.
	KindNotFound
	// KindAdmissionDenied: admission would push a class over its
	// utilization bound.
	KindAdmissionDenied
)

// Error is the scheduler's non-fatal error type. All of KindQueueFull,
// KindQueueEmpty, KindNotFound and KindAdmissionDenied are non-fatal: the
// dispatch path logs and drops them, and the public entry points
// (Create, Admit, Exit, Enqueue, Dequeue, ...) return them to the caller.
type Error struct {
	Kind  Kind
	Queue QueueID
	msg   string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	switch e.Kind {
	case KindQueueFull:
		return fmt.Sprintf("rtsched: queue %s is full", e.Queue)
	case KindQueueEmpty:
		return fmt.Sprintf("rtsched: queue %s is empty", e.Queue)
	case KindNotFound:
		return fmt.Sprintf("rtsched: descriptor not found in queue %s", e.Queue)
	case KindAdmissionDenied:
		return "rtsched: admission denied, utilization bound exceeded"
	default:
		return "rtsched: error"
	}
}

func errQueueFull(q QueueID) error  { return &Error{Kind: KindQueueFull, Queue: q} }
func errQueueEmpty(q QueueID) error { return &Error{Kind: KindQueueEmpty, Queue: q} }
func errNotFound(q QueueID) error   { return &Error{Kind: KindNotFound, Queue: q} }
func errAdmissionDenied() error     { return &Error{Kind: KindAdmissionDenied} }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

// Fatal is panicked by the dispatcher when it cannot find any thread to
// run at all (the aperiodic queue, which must always carry at least the
// idle/bootstrap fallback, turned up empty). There is no recovering from
// this inside the core; it reflects a corrupted scheduler invariant.
type Fatal struct {
	msg string
}

func (f *Fatal) Error() string { return "rtsched: fatal: " + f.msg }

func panicFatal(msg string) {
	panic(&Fatal{msg: msg})
}
