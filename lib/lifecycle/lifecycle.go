// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle owns a ticket's workflow transitions. A Machine
// validates a requested status change against the forward-only
// transition table, persists it through an [Updater], and commits the
// new status to the returned ticket value only after the backend
// confirms.
//
// Tickets are passed and returned by value: a transition in flight on
// a background goroutine never shares mutable state with the render
// loop. The caller applies the returned ticket on success and keeps
// its previous value on failure, which is exactly the
// commit-after-success contract — the UI never shows a status the
// backend has not confirmed.
//
// Follow/unfollow deliberately inverts that contract: it is low-risk
// and high-frequency, so the board model flips the visible flag before
// calling [Machine.SetFollowing] and rolls it back if the call fails.
// The Machine itself only performs the backend coordination; the
// optimistic presentation belongs to the view layer.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// Updater is the backend surface the state machine needs. Implemented
// by *opsapi.Client; tests substitute a fake.
type Updater interface {
	// UpdateTicketStatus persists a status change. The updatedBy user
	// ID is recorded by the backend for audit.
	UpdateTicketStatus(ctx context.Context, ticketID int, status ticket.Status, updatedBy int) error

	// AddFollower subscribes userID to the ticket's notifications.
	AddFollower(ctx context.Context, ticketID, userID int) error

	// RemoveFollower unsubscribes userID from the ticket's
	// notifications.
	RemoveFollower(ctx context.Context, ticketID, userID int) error
}

// Machine coordinates lifecycle mutations for one acting user. It is
// stateless between calls; the ticket values passed in carry all the
// state.
type Machine struct {
	updater      Updater
	actingUserID int
	logger       *slog.Logger
}

// NewMachine creates a Machine acting on behalf of actingUserID. The
// acting user is passed explicitly rather than read from ambient
// session storage.
func NewMachine(updater Updater, actingUserID int, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		updater:      updater,
		actingUserID: actingUserID,
		logger:       logger,
	}
}

// ActingUserID returns the user the machine mutates on behalf of.
func (machine *Machine) ActingUserID() int {
	return machine.actingUserID
}

// Transition moves t to target. target must be the single legal
// successor of t.Status; anything else fails with
// *ticket.InvalidTransitionError before any network call.
//
// On backend success the returned ticket carries the new status. On
// backend failure the returned ticket equals the input — no partial or
// optimistic commit. The operation is never retried automatically.
func (machine *Machine) Transition(ctx context.Context, t ticket.Ticket, target ticket.Status) (ticket.Ticket, error) {
	if !t.Status.CanTransitionTo(target) {
		return t, &ticket.InvalidTransitionError{TicketID: t.ID, From: t.Status, To: target}
	}

	if err := machine.updater.UpdateTicketStatus(ctx, t.ID, target, machine.actingUserID); err != nil {
		machine.logger.Warn("ticket status update failed",
			"ticket_id", t.ID,
			"from", t.Status.String(),
			"to", target.String(),
			"error", err,
		)
		return t, fmt.Errorf("updating ticket %d status: %w", t.ID, err)
	}

	machine.logger.Info("ticket status updated",
		"ticket_id", t.ID,
		"from", t.Status.String(),
		"to", target.String(),
		"updated_by", machine.actingUserID,
	)
	return t.WithStatus(target), nil
}

// Advance transitions t to its unique successor (pending to
// in_progress, in_progress to completed). Fails with
// *ticket.InvalidTransitionError when t has no successor; the UI
// normally never offers the control in that case.
func (machine *Machine) Advance(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	next, ok := t.Status.Next()
	if !ok {
		return t, &ticket.InvalidTransitionError{TicketID: t.ID, From: t.Status, To: t.Status}
	}
	return machine.Transition(ctx, t, next)
}

// SetFollowing sets the acting user's follow state on t. Toggling to
// the state the ticket already has is a no-op that skips the network
// round trip. On backend success the returned ticket carries the
// updated follower set; on failure the returned ticket equals the
// input so the caller can roll back its optimistic display.
func (machine *Machine) SetFollowing(ctx context.Context, t ticket.Ticket, following bool) (ticket.Ticket, error) {
	userID := machine.actingUserID
	if following == t.FollowedBy(userID) {
		return t, nil
	}

	if following {
		if err := machine.updater.AddFollower(ctx, t.ID, userID); err != nil {
			machine.logger.Warn("follow failed", "ticket_id", t.ID, "user_id", userID, "error", err)
			return t, fmt.Errorf("following ticket %d: %w", t.ID, err)
		}
		return t.WithFollower(userID), nil
	}

	if err := machine.updater.RemoveFollower(ctx, t.ID, userID); err != nil {
		machine.logger.Warn("unfollow failed", "ticket_id", t.ID, "user_id", userID, "error", err)
		return t, fmt.Errorf("unfollowing ticket %d: %w", t.ID, err)
	}
	return t.WithoutFollower(userID), nil
}
