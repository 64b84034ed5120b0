// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import "slices"

// Priority is informational only — it is not part of the status state
// machine and never gates a transition.
type Priority int

const (
	// PriorityUnknown marks an unrecognized priority string.
	PriorityUnknown Priority = iota
	// PriorityLow is routine work.
	PriorityLow
	// PriorityHigh needs attention soon.
	PriorityHigh
	// PriorityUrgent needs attention now.
	PriorityUrgent
)

// priorityNames maps canonical priorities to their wire strings.
var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
}

// ParsePriority canonicalizes a wire priority string,
// case-insensitively. Returns (PriorityUnknown, false) for anything
// unrecognized.
func ParsePriority(raw string) (Priority, bool) {
	normalized := normalize(raw)
	for priority, name := range priorityNames {
		if name == normalized {
			return priority, true
		}
	}
	return PriorityUnknown, false
}

// String returns the canonical wire string, or "unknown".
func (priority Priority) String() string {
	if name, ok := priorityNames[priority]; ok {
		return name
	}
	return "unknown"
}

// Assignee is one entry in a ticket's ordered assignee list.
type Assignee struct {
	UserID      int
	DisplayName string
}

// Ticket is the client-side view of a backend ticket record. It is a
// value type: lifecycle operations take a copy and return the updated
// copy, so in-flight backend calls never share mutable state with the
// rendering loop.
type Ticket struct {
	// ID is assigned by the backend and immutable.
	ID int

	Title    string
	Status   Status
	Priority Priority

	// RawStatus preserves the backend's original status string for
	// tickets that failed canonicalization (Status == StatusUnknown).
	RawStatus string

	// Assignees is ordered; empty means unassigned.
	Assignees []Assignee

	// Followers holds the user IDs following this ticket for
	// notifications.
	Followers []int

	Category  string
	CreatedAt string
	UpdatedAt string
}

// FollowedBy reports whether userID is in the follower set.
func (t Ticket) FollowedBy(userID int) bool {
	return slices.Contains(t.Followers, userID)
}

// WithFollower returns a copy of the ticket with userID added to the
// follower set. Adding an existing follower is a no-op.
func (t Ticket) WithFollower(userID int) Ticket {
	if t.FollowedBy(userID) {
		return t
	}
	t.Followers = append(slices.Clone(t.Followers), userID)
	return t
}

// WithoutFollower returns a copy of the ticket with userID removed
// from the follower set. Removing an absent follower is a no-op.
func (t Ticket) WithoutFollower(userID int) Ticket {
	if !t.FollowedBy(userID) {
		return t
	}
	followers := make([]int, 0, len(t.Followers)-1)
	for _, follower := range t.Followers {
		if follower != userID {
			followers = append(followers, follower)
		}
	}
	t.Followers = followers
	return t
}

// WithStatus returns a copy of the ticket with the given status.
func (t Ticket) WithStatus(status Status) Ticket {
	t.Status = status
	return t
}
