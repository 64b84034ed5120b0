// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts reading the current time for testability. Production
// code injects Real(); tests inject Fake() with deterministic control.
// Timers are not part of the interface: the board schedules them
// through its message loop and tests deliver the timer messages
// directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
