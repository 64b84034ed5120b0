// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("Now = %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Errorf("Now after Advance = %v, want %v", fake.Now(), want)
	}

	fake.Advance(10 * time.Second)
	if got := fake.Now(); !got.Equal(want.Add(10 * time.Second)) {
		t.Errorf("Now after second Advance = %v", got)
	}
}
