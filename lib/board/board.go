// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package board implements the optimistic card engine behind the
// three-column ticket board. It tracks per-card drag phases and the
// divergence between a card's displayed column and its ticket's
// confirmed status while a move is being persisted.
//
// Per card the phase machine is:
//
//	Idle -> Dragging -> Committing -> Idle            (success)
//	                    Committing -> Idle (reverted) (failure/timeout)
//
// A drop into a new column moves the card immediately (optimistic) and
// opens a commit window; the card cannot be grabbed again until the
// window settles. Settlement comes through [Board.Resolve], stamped
// with the commit sequence issued at drop time so a stale timeout can
// never clobber a later commit on the same card.
//
// The engine holds no network or rendering concerns and is driven
// entirely by the board model; different cards' commits are fully
// independent.
package board

import (
	"errors"
	"fmt"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// Phase is a card's position in the drag lifecycle.
type Phase int

const (
	// PhaseIdle means the card is at rest and grabbable.
	PhaseIdle Phase = iota
	// PhaseDragging means the card has been grabbed and not yet
	// dropped.
	PhaseDragging
	// PhaseCommitting means an optimistic move is awaiting backend
	// settlement. The card is not grabbable.
	PhaseCommitting
)

// ErrCommitPending is returned by Grab while the card has an open
// commit window.
var ErrCommitPending = errors.New("board: card has a commit in flight")

// ErrNotDragging is returned by Drop when the card was never grabbed.
var ErrNotDragging = errors.New("board: card is not being dragged")

// ErrCommitTimeout marks a commit window force-closed by the bounded
// settlement timer rather than a backend response.
var ErrCommitTimeout = errors.New("board: commit timed out awaiting backend")

// Card is the view-model state for one ticket on the drag surface.
type Card struct {
	TicketID int

	// Column mirrors the ticket's status but diverges from it while a
	// commit is in flight.
	Column ticket.Status

	// Phase is the card's drag lifecycle position.
	Phase Phase

	// origin is the column to revert to if the in-flight commit fails.
	origin ticket.Status

	// commitSeq identifies the open commit window. Resolve calls
	// carrying any other sequence are ignored.
	commitSeq uint64
}

// PendingCommit reports whether the card has an open commit window.
func (card Card) PendingCommit() bool {
	return card.Phase == PhaseCommitting
}

// Drop describes the outcome of dropping a dragged card.
type Drop struct {
	// NoChange is true when the card was dropped back into its origin
	// column; nothing to persist.
	NoChange bool

	// From and To are the origin and target statuses of a real move.
	From ticket.Status
	To   ticket.Status

	// Seq stamps the commit window opened by this drop. Pass it to
	// Resolve when the backend call settles (or times out).
	Seq uint64
}

// Board tracks card state for the set of tickets currently displayed.
type Board struct {
	cards   map[int]*Card
	nextSeq uint64
}

// New creates an empty board.
func New() *Board {
	return &Board{cards: make(map[int]*Card)}
}

// Sync reconciles the card set with the authoritative ticket list.
// Idle cards follow their ticket's status; cards with an in-flight
// commit keep their optimistic column until settlement. Cards whose
// ticket disappeared are dropped; new tickets get idle cards.
func (board *Board) Sync(tickets []ticket.Ticket) {
	seen := make(map[int]bool, len(tickets))
	for _, t := range tickets {
		seen[t.ID] = true
		card, exists := board.cards[t.ID]
		if !exists {
			board.cards[t.ID] = &Card{TicketID: t.ID, Column: t.Status}
			continue
		}
		if card.Phase != PhaseCommitting {
			card.Column = t.Status
		}
	}
	for ticketID := range board.cards {
		if !seen[ticketID] {
			delete(board.cards, ticketID)
		}
	}
}

// Card returns a copy of the card state for a ticket.
func (board *Board) Card(ticketID int) (Card, bool) {
	card, exists := board.cards[ticketID]
	if !exists {
		return Card{}, false
	}
	return *card, true
}

// Grab starts a drag. Rejected with ErrCommitPending while the card's
// previous move is still settling — at most one commit window per card
// may be open at a time.
func (board *Board) Grab(ticketID int) error {
	card, exists := board.cards[ticketID]
	if !exists {
		return fmt.Errorf("board: no card for ticket %d", ticketID)
	}
	if card.Phase == PhaseCommitting {
		return ErrCommitPending
	}
	card.Phase = PhaseDragging
	card.origin = card.Column
	return nil
}

// CancelDrag abandons a drag without a drop, returning the card to
// idle in its origin column. No-op unless the card is dragging.
func (board *Board) CancelDrag(ticketID int) {
	card, exists := board.cards[ticketID]
	if !exists || card.Phase != PhaseDragging {
		return
	}
	card.Column = card.origin
	card.Phase = PhaseIdle
}

// Drop releases a dragged card into the target column. Dropping into
// the origin column is a no-op returning to idle. Otherwise the card
// moves immediately and a commit window opens; the caller persists the
// move and reports settlement through Resolve with the returned Seq.
func (board *Board) Drop(ticketID int, target ticket.Status) (Drop, error) {
	card, exists := board.cards[ticketID]
	if !exists {
		return Drop{}, fmt.Errorf("board: no card for ticket %d", ticketID)
	}
	if card.Phase != PhaseDragging {
		return Drop{}, ErrNotDragging
	}

	if target == card.origin {
		card.Column = card.origin
		card.Phase = PhaseIdle
		return Drop{NoChange: true}, nil
	}

	board.nextSeq++
	card.Column = target
	card.Phase = PhaseCommitting
	card.commitSeq = board.nextSeq

	return Drop{From: card.origin, To: target, Seq: board.nextSeq}, nil
}

// Resolution describes how a commit window settled.
type Resolution struct {
	// Applied is true when the Resolve call matched an open commit
	// window; false means it was stale and ignored.
	Applied bool

	// Reverted is true when the card was moved back to its origin
	// column because the commit failed.
	Reverted bool
}

// Resolve settles the commit window identified by seq. On success the
// card stays in its new column; on failure (including
// ErrCommitTimeout) it reverts to its origin. Calls whose sequence
// does not match the card's open window — a timeout firing after the
// backend already answered, or after a later drop — are ignored.
func (board *Board) Resolve(ticketID int, seq uint64, commitErr error) Resolution {
	card, exists := board.cards[ticketID]
	if !exists || card.Phase != PhaseCommitting || card.commitSeq != seq {
		return Resolution{}
	}

	card.Phase = PhaseIdle
	if commitErr != nil {
		card.Column = card.origin
		return Resolution{Applied: true, Reverted: true}
	}
	return Resolution{Applied: true}
}

// Partition buckets tickets into the three canonical columns. A
// card's optimistic column wins over the ticket's status while a
// commit is in flight. Tickets with an unrecognized status fall into
// no bucket — they are hidden from the board rather than crashing it.
func (board *Board) Partition(tickets []ticket.Ticket) map[ticket.Status][]ticket.Ticket {
	columns := make(map[ticket.Status][]ticket.Ticket, 3)
	for _, status := range ticket.BoardStatuses() {
		columns[status] = nil
	}
	for _, t := range tickets {
		column := t.Status
		if card, exists := board.cards[t.ID]; exists {
			column = card.Column
		}
		if _, recognized := columns[column]; !recognized {
			continue
		}
		columns[column] = append(columns[column], t)
	}
	return columns
}
