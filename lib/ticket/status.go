// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a ticket's position in the workflow. The zero value is
// StatusUnknown, used for backend strings that don't map to a
// canonical status; unknown tickets fall into no board column.
type Status int

const (
	// StatusUnknown marks an unrecognized or legacy status string.
	StatusUnknown Status = iota
	// StatusPending is the initial state of a newly created ticket.
	StatusPending
	// StatusInProgress means work has started.
	StatusInProgress
	// StatusCompleted is terminal: no transition is defined out of it.
	StatusCompleted
)

// statusNames maps canonical statuses to their wire strings.
var statusNames = map[Status]string{
	StatusPending:    "pending",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
}

// successors is the forward-only transition table. A status absent
// from the table has no legal successor.
var successors = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// ParseStatus canonicalizes a wire status string. Matching is
// case-insensitive and tolerates surrounding whitespace. Returns
// (StatusUnknown, false) for anything unrecognized.
func ParseStatus(raw string) (Status, bool) {
	normalized := normalize(raw)
	for status, name := range statusNames {
		if name == normalized {
			return status, true
		}
	}
	return StatusUnknown, false
}

// normalize lowercases and trims a wire enum string before matching.
func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// String returns the canonical wire string, or "unknown" for
// StatusUnknown.
func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// Label returns the human-readable form shown in the UI, e.g.
// "In Progress".
func (status Status) Label() string {
	switch status {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Next returns the single legal successor of this status. The second
// return value is false for StatusCompleted and StatusUnknown, which
// have no successor.
func (status Status) Next() (Status, bool) {
	next, ok := successors[status]
	return next, ok
}

// CanTransitionTo reports whether target is the legal successor of
// this status.
func (status Status) CanTransitionTo(target Status) bool {
	next, ok := successors[status]
	return ok && next == target
}

// BoardStatuses returns the three canonical statuses in column order.
func BoardStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// InvalidTransitionError reports a status change request that is not
// the legal successor of the ticket's current status. It is raised
// before any network call; the ticket is unchanged.
type InvalidTransitionError struct {
	TicketID int
	From     Status
	To       Status
}

func (err *InvalidTransitionError) Error() string {
	return fmt.Sprintf("ticket %d: invalid transition %s -> %s", err.TicketID, err.From, err.To)
}

// IsInvalidTransition reports whether err is an *InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var invalid *InvalidTransitionError
	return errors.As(err, &invalid)
}
