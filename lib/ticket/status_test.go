// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input  string
		want   Status
		wantOK bool
	}{
		{"pending", StatusPending, true},
		{"in_progress", StatusInProgress, true},
		{"completed", StatusCompleted, true},
		{"PENDING", StatusPending, true},
		{"  In_Progress  ", StatusInProgress, true},
		{"done", StatusUnknown, false},
		{"", StatusUnknown, false},
		{"in progress", StatusUnknown, false},
	}
	for _, testCase := range cases {
		got, ok := ParseStatus(testCase.input)
		if got != testCase.want || ok != testCase.wantOK {
			t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)",
				testCase.input, got, ok, testCase.want, testCase.wantOK)
		}
	}
}

func TestStatusNext(t *testing.T) {
	next, ok := StatusPending.Next()
	if !ok || next != StatusInProgress {
		t.Errorf("pending.Next() = (%v, %v), want (in_progress, true)", next, ok)
	}

	next, ok = StatusInProgress.Next()
	if !ok || next != StatusCompleted {
		t.Errorf("in_progress.Next() = (%v, %v), want (completed, true)", next, ok)
	}

	if _, ok := StatusCompleted.Next(); ok {
		t.Error("completed must have no successor")
	}
	if _, ok := StatusUnknown.Next(); ok {
		t.Error("unknown must have no successor")
	}
}

func TestCanTransitionTo(t *testing.T) {
	if !StatusPending.CanTransitionTo(StatusInProgress) {
		t.Error("pending -> in_progress should be legal")
	}
	if StatusPending.CanTransitionTo(StatusCompleted) {
		t.Error("pending -> completed must be illegal")
	}
	if StatusInProgress.CanTransitionTo(StatusPending) {
		t.Error("backward transitions must be illegal")
	}
	if StatusCompleted.CanTransitionTo(StatusPending) {
		t.Error("no transition out of completed")
	}
}

func TestParsePriority(t *testing.T) {
	if got, ok := ParsePriority("Urgent"); !ok || got != PriorityUrgent {
		t.Errorf("ParsePriority(Urgent) = (%v, %v)", got, ok)
	}
	if _, ok := ParsePriority("medium"); ok {
		t.Error("medium is not a recognized priority")
	}
}

func TestFollowerSet(t *testing.T) {
	base := Ticket{ID: 5, Followers: []int{10}}

	followed := base.WithFollower(20)
	if !followed.FollowedBy(20) || !followed.FollowedBy(10) {
		t.Errorf("WithFollower: followers = %v", followed.Followers)
	}
	if base.FollowedBy(20) {
		t.Error("WithFollower must not mutate the receiver")
	}

	// Adding an existing follower is a no-op.
	again := followed.WithFollower(20)
	if len(again.Followers) != 2 {
		t.Errorf("duplicate follower added: %v", again.Followers)
	}

	unfollowed := followed.WithoutFollower(10)
	if unfollowed.FollowedBy(10) || !unfollowed.FollowedBy(20) {
		t.Errorf("WithoutFollower: followers = %v", unfollowed.Followers)
	}
}
