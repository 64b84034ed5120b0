// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clinicdesk/clinicdesk/lib/board"
	"github.com/clinicdesk/clinicdesk/lib/clock"
	"github.com/clinicdesk/clinicdesk/lib/lifecycle"
	"github.com/clinicdesk/clinicdesk/lib/remotesearch"
	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// Source is the read/search surface the board needs from the backend.
// Implemented by the opsapi client adapter in cmd/clinicdesk; tests
// substitute a fake.
type Source interface {
	// Tickets fetches the ticket set for the board, already narrowed
	// by any server-side filter the caller configured.
	Tickets(ctx context.Context) ([]ticket.Ticket, error)

	// SearchTeam queries the clinic team directory for assignment
	// candidates.
	SearchTeam(ctx context.Context, query string) ([]remotesearch.Candidate, error)

	// AssignTicket replaces a ticket's assignee set.
	AssignTicket(ctx context.Context, ticketID int, userIDs []int, updatedBy int) error
}

const (
	// commitTimeout bounds how long a dropped card may wait for the
	// backend before the move is force-reverted.
	commitTimeout = 15 * time.Second

	// clickWindow separates a click from a drag: press and release
	// within this interval (and without leaving the origin column)
	// opens the card instead of moving it. It also suppresses the
	// spurious click a drag release would otherwise register.
	clickWindow = 200 * time.Millisecond

	// noticeFadeDelay is how long a status bar notice stays visible.
	noticeFadeDelay = 3 * time.Second
)

// FocusRegion identifies which part of the UI receives keyboard input.
type FocusRegion int

const (
	FocusBoard FocusRegion = iota
	FocusFilter
	FocusDetail
	FocusPicker
)

// refreshTickMsg triggers a backend refresh. Sent by Init and then
// rescheduled after each poll interval.
type refreshTickMsg struct{}

// ticketsLoadedMsg delivers a refresh result. The generation stamp
// identifies the refresh that requested it; results from a superseded
// refresh are discarded.
type ticketsLoadedMsg struct {
	generation uint64
	tickets    []ticket.Ticket
	err        error
}

// commitResultMsg delivers the backend settlement of a card drop.
type commitResultMsg struct {
	ticketID int
	seq      uint64
	result   ticket.Ticket
	err      error
}

// commitTimeoutMsg fires when a card drop's commit window has been
// open for commitTimeout. Ignored when the window already settled.
type commitTimeoutMsg struct {
	ticketID int
	seq      uint64
}

// advanceResultMsg delivers the result of a detail-view status advance.
type advanceResultMsg struct {
	ticketID int
	result   ticket.Ticket
	err      error
}

// followResultMsg delivers the result of a follow toggle. original is
// the pre-toggle ticket for rolling back the optimistic flip.
type followResultMsg struct {
	ticketID int
	original ticket.Ticket
	result   ticket.Ticket
	err      error
}

// assignResultMsg delivers the result of an assignment mutation.
type assignResultMsg struct {
	ticketID int
	result   ticket.Ticket
	err      error
}

// noticeFadeMsg clears the status bar notice identified by seq.
type noticeFadeMsg struct {
	seq int
}

// searchDebounceMsg fires when the picker's debounce quiet period
// elapses. The sequence identifies the keystroke that armed it; the
// session identifies the picker instance, so a timer armed by a
// dismissed picker cannot act on its successor.
type searchDebounceMsg struct {
	session int
	seq     uint64
}

// searchResultMsg delivers a team search response stamped with the
// picker session and lookup generation that requested it. Generations
// restart at 1 for every picker, so the session stamp is what keeps a
// dismissed picker's in-flight response out of a later one.
type searchResultMsg struct {
	session    int
	generation uint64
	candidates []remotesearch.Candidate
	err        error
}

// Options configures a board model.
type Options struct {
	Source  Source
	Machine *lifecycle.Machine

	// Clock drives the click-vs-drag window. Defaults to clock.Real().
	Clock clock.Clock

	// RefreshInterval is the backend poll period. Defaults to 30s.
	RefreshInterval time.Duration

	Logger *slog.Logger
	Theme  Theme
	Keys   KeyMap
}

// Model is the top-level bubbletea model for the ticket board.
type Model struct {
	source  Source
	machine *lifecycle.Machine
	clock   clock.Clock
	logger  *slog.Logger
	theme   Theme
	keys    KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Authoritative ticket set plus confirmed mutation results.
	tickets []ticket.Ticket
	board   *board.Board

	// Refresh state. generation stamps outgoing fetches so a slow
	// response never overwrites a newer one.
	refreshGen      uint64
	refreshInterval time.Duration
	loaded          bool

	focusRegion FocusRegion
	filter      FilterModel

	// Board cursor: column index (0-2) and row within that column's
	// visible cards.
	columnCursor int
	rowCursor    int

	// Drag state. grabbedID is the ticket being moved (keyboard or
	// mouse); dragTarget is the column index the card would drop into.
	grabbedID  int
	dragTarget int

	// Mouse press bookkeeping for click-vs-drag discrimination.
	pressID     int
	pressColumn int
	pressedAt   time.Time
	lastDragEnd time.Time

	// Detail view. Zero when closed.
	detailID int

	// mutationPending guards detail-view mutations (advance, follow,
	// assign): at most one in flight per ticket.
	mutationPending map[int]bool

	picker *PickerModel

	// pickerSeq numbers picker sessions; see searchResultMsg.
	pickerSeq int

	// Status bar notice. The sequence invalidates stale fade timers.
	notice      string
	noticeIsErr bool
	noticeSeq   int
}

// NewModel creates a board model. Options.Source and Options.Machine
// are required.
func NewModel(options Options) Model {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.RefreshInterval <= 0 {
		options.RefreshInterval = 30 * time.Second
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Keys.Quit.Keys() == nil {
		options.Keys = DefaultKeyMap
	}
	if options.Theme == (Theme{}) {
		options.Theme = DefaultTheme
	}

	return Model{
		source:          options.Source,
		machine:         options.Machine,
		clock:           options.Clock,
		logger:          options.Logger,
		theme:           options.Theme,
		keys:            options.Keys,
		board:           board.New(),
		refreshInterval: options.RefreshInterval,
		mutationPending: make(map[int]bool),
	}
}

// Init implements tea.Model. Kicks off the first refresh.
func (model Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshTickMsg{} }
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.MouseMsg:
		return model.handleMouse(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true

	case refreshTickMsg:
		return model.startRefresh()

	case ticketsLoadedMsg:
		return model.handleTicketsLoaded(message)

	case commitResultMsg:
		return model.handleCommitResult(message)

	case commitTimeoutMsg:
		return model.handleCommitTimeout(message)

	case advanceResultMsg:
		delete(model.mutationPending, message.ticketID)
		if message.err != nil {
			return model, model.setNotice(message.err.Error(), true)
		}
		model.applyTicket(message.result)
		model.clampCursor()
		return model, model.setNotice("moved to "+message.result.Status.Label(), false)

	case followResultMsg:
		delete(model.mutationPending, message.ticketID)
		if message.err != nil {
			// Roll back the optimistic flip.
			model.applyTicket(message.original)
			return model, model.setNotice("follow change failed: "+message.err.Error(), true)
		}
		model.applyTicket(message.result)

	case assignResultMsg:
		delete(model.mutationPending, message.ticketID)
		if message.err != nil {
			return model, model.setNotice("assignment failed: "+message.err.Error(), true)
		}
		model.applyTicket(message.result)

	case noticeFadeMsg:
		if message.seq == model.noticeSeq {
			model.notice = ""
			model.noticeIsErr = false
		}

	case searchDebounceMsg:
		return model.handleSearchDebounce(message)

	case searchResultMsg:
		model.handleSearchResult(message)
	}
	return model, nil
}

// handleKey routes keyboard input by focus region.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.focusRegion {
	case FocusFilter:
		return model.handleFilterKeys(message)
	case FocusPicker:
		return model.handlePickerKeys(message)
	case FocusDetail:
		return model.handleDetailKeys(message)
	}
	return model.handleBoardKeys(message)
}

// handleBoardKeys handles input while the board has focus.
func (model Model) handleBoardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.rowCursor > 0 {
			model.rowCursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.rowCursor < len(model.columnTickets(model.columnCursor))-1 {
			model.rowCursor++
		}

	case key.Matches(message, model.keys.Left):
		if model.grabbedID != 0 {
			if model.dragTarget > 0 {
				model.dragTarget--
			}
		} else if model.columnCursor > 0 {
			model.columnCursor--
			model.clampCursor()
		}

	case key.Matches(message, model.keys.Right):
		if model.grabbedID != 0 {
			if model.dragTarget < len(ticket.BoardStatuses())-1 {
				model.dragTarget++
			}
		} else if model.columnCursor < len(ticket.BoardStatuses())-1 {
			model.columnCursor++
			model.clampCursor()
		}

	case key.Matches(message, model.keys.Grab):
		if model.grabbedID != 0 {
			return model.dropGrabbed()
		}
		return model.grabSelected()

	case key.Matches(message, model.keys.Cancel):
		if model.grabbedID != 0 {
			model.board.CancelDrag(model.grabbedID)
			model.grabbedID = 0
			return model, nil
		}
		if model.filter.Input != "" {
			model.filter.Clear()
			model.clampCursor()
		}

	case key.Matches(message, model.keys.Open):
		if model.grabbedID != 0 {
			return model.dropGrabbed()
		}
		if selected, ok := model.selectedTicket(); ok {
			model.openDetail(selected.ID)
		}

	case key.Matches(message, model.keys.FilterActivate):
		model.focusRegion = FocusFilter
		model.filter.Active = true

	case key.Matches(message, model.keys.Refresh):
		return model.startRefresh()
	}
	return model, nil
}

// handleFilterKeys handles input while the filter bar has focus.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEscape:
		model.filter.Clear()
		model.focusRegion = FocusBoard
		model.clampCursor()

	case tea.KeyEnter:
		model.filter.Active = false
		model.focusRegion = FocusBoard
		model.clampCursor()

	case tea.KeyBackspace:
		model.filter.HandleBackspace()
		model.clampCursor()

	case tea.KeyRunes, tea.KeySpace:
		for _, r := range message.Runes {
			model.filter.HandleRune(r)
		}
		if message.Type == tea.KeySpace {
			model.filter.HandleRune(' ')
		}
		model.clampCursor()
	}
	return model, nil
}

// handleDetailKeys handles input while the detail view is open.
func (model Model) handleDetailKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Cancel):
		model.closeDetail()

	case key.Matches(message, model.keys.Advance):
		return model.advanceDetail()

	case key.Matches(message, model.keys.Follow):
		return model.toggleFollow()

	case key.Matches(message, model.keys.Assign):
		return model.openPicker()
	}
	return model, nil
}

// grabSelected starts a keyboard drag on the selected card.
func (model Model) grabSelected() (tea.Model, tea.Cmd) {
	selected, ok := model.selectedTicket()
	if !ok {
		return model, nil
	}
	if err := model.board.Grab(selected.ID); err != nil {
		if errors.Is(err, board.ErrCommitPending) {
			return model, model.setNotice("previous move is still saving", false)
		}
		return model, model.setNotice(err.Error(), true)
	}
	model.grabbedID = selected.ID
	model.dragTarget = model.columnCursor
	return model, nil
}

// dropGrabbed releases the keyboard-dragged card into the target
// column and, for a real move, dispatches the commit.
func (model Model) dropGrabbed() (tea.Model, tea.Cmd) {
	grabbedID := model.grabbedID
	model.grabbedID = 0

	t, ok := model.ticketByID(grabbedID)
	if !ok {
		model.board.CancelDrag(grabbedID)
		return model, nil
	}

	target := ticket.BoardStatuses()[model.dragTarget]
	drop, err := model.board.Drop(grabbedID, target)
	if err != nil {
		return model, model.setNotice(err.Error(), true)
	}
	if drop.NoChange {
		return model, nil
	}

	model.columnCursor = model.dragTarget
	model.clampCursor()
	return model, model.commitCmd(t, drop)
}

// commitCmd dispatches the backend call for a dropped card plus the
// bounded settlement timer, both stamped with the drop's commit
// sequence.
func (model *Model) commitCmd(t ticket.Ticket, drop board.Drop) tea.Cmd {
	machine := model.machine
	return tea.Batch(
		func() tea.Msg {
			result, err := machine.Transition(context.Background(), t, drop.To)
			return commitResultMsg{ticketID: t.ID, seq: drop.Seq, result: result, err: err}
		},
		tea.Tick(commitTimeout, func(time.Time) tea.Msg {
			return commitTimeoutMsg{ticketID: t.ID, seq: drop.Seq}
		}),
	)
}

// handleCommitResult settles a card drop with the backend's answer.
func (model Model) handleCommitResult(message commitResultMsg) (tea.Model, tea.Cmd) {
	resolution := model.board.Resolve(message.ticketID, message.seq, message.err)

	if message.err == nil {
		// Apply the confirmed status even if the window was already
		// force-closed by the timeout; the next Sync snaps the card to
		// the confirmed column.
		model.applyTicket(message.result)
		model.clampCursor()
		if !resolution.Applied {
			// The timeout notice already explained the revert; the
			// sync above quietly corrects the card.
			return model, nil
		}
		return model, model.setNotice("moved to "+message.result.Status.Label(), false)
	}

	if !resolution.Applied {
		// The timeout already reverted this window and showed a notice.
		return model, nil
	}
	model.clampCursor()
	if ticket.IsInvalidTransition(message.err) {
		return model, model.setNotice(message.err.Error(), true)
	}
	return model, model.setNotice("move failed: "+message.err.Error(), true)
}

// handleCommitTimeout force-closes a commit window that outlived the
// settlement timer. Stale timers (the backend already answered, or a
// later drop reopened the window) resolve to a no-op.
func (model Model) handleCommitTimeout(message commitTimeoutMsg) (tea.Model, tea.Cmd) {
	resolution := model.board.Resolve(message.ticketID, message.seq, board.ErrCommitTimeout)
	if !resolution.Applied {
		return model, nil
	}
	model.logger.Warn("card commit timed out", "ticket_id", message.ticketID, "seq", message.seq)
	model.clampCursor()
	return model, model.setNotice("move timed out and was reverted", true)
}

// startRefresh dispatches a stamped backend fetch and schedules the
// next poll.
func (model Model) startRefresh() (tea.Model, tea.Cmd) {
	model.refreshGen++
	generation := model.refreshGen
	source := model.source

	fetch := func() tea.Msg {
		tickets, err := source.Tickets(context.Background())
		return ticketsLoadedMsg{generation: generation, tickets: tickets, err: err}
	}
	next := tea.Tick(model.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
	return model, tea.Batch(fetch, next)
}

// handleTicketsLoaded applies a refresh result.
func (model Model) handleTicketsLoaded(message ticketsLoadedMsg) (tea.Model, tea.Cmd) {
	if message.generation != model.refreshGen {
		return model, nil
	}
	if message.err != nil {
		model.logger.Warn("ticket refresh failed", "error", message.err)
		// Keep showing the last-known-good board.
		return model, model.setNotice("refresh failed: "+message.err.Error(), true)
	}

	model.tickets = message.tickets
	model.loaded = true
	model.board.Sync(model.tickets)
	model.clampCursor()

	// Close the detail view if its ticket vanished from the listing.
	if model.detailID != 0 {
		if _, ok := model.ticketByID(model.detailID); !ok {
			model.closeDetail()
		}
	}
	return model, nil
}

// openDetail opens the detail view for a ticket.
func (model *Model) openDetail(ticketID int) {
	model.detailID = ticketID
	model.focusRegion = FocusDetail
}

// closeDetail returns focus to the board.
func (model *Model) closeDetail() {
	model.detailID = 0
	model.focusRegion = FocusBoard
}

// advanceDetail moves the detail ticket to its next status,
// committing only after the backend confirms.
func (model Model) advanceDetail() (tea.Model, tea.Cmd) {
	t, ok := model.ticketByID(model.detailID)
	if !ok {
		return model, nil
	}
	if _, hasNext := t.Status.Next(); !hasNext {
		return model, nil
	}
	if model.mutationPending[t.ID] {
		return model, model.setNotice("previous change is still saving", false)
	}
	if card, exists := model.board.Card(t.ID); exists && card.PendingCommit() {
		return model, model.setNotice("previous move is still saving", false)
	}

	model.mutationPending[t.ID] = true
	machine := model.machine
	return model, func() tea.Msg {
		result, err := machine.Advance(context.Background(), t)
		return advanceResultMsg{ticketID: t.ID, result: result, err: err}
	}
}

// toggleFollow flips the acting user's follow state on the detail
// ticket optimistically and rolls back if the backend rejects it.
func (model Model) toggleFollow() (tea.Model, tea.Cmd) {
	t, ok := model.ticketByID(model.detailID)
	if !ok {
		return model, nil
	}
	if model.mutationPending[t.ID] {
		return model, nil
	}

	userID := model.machine.ActingUserID()
	desired := !t.FollowedBy(userID)

	// Optimistic flip: show the new state immediately.
	if desired {
		model.applyTicket(t.WithFollower(userID))
	} else {
		model.applyTicket(t.WithoutFollower(userID))
	}

	model.mutationPending[t.ID] = true
	machine := model.machine
	return model, func() tea.Msg {
		result, err := machine.SetFollowing(context.Background(), t, desired)
		return followResultMsg{ticketID: t.ID, original: t, result: result, err: err}
	}
}

// handleMouse implements drag, drop, and click-to-open with the
// press/release discrimination described on clickWindow.
func (model Model) handleMouse(message tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Overlays are keyboard-driven; a click outside them dismisses.
	if model.focusRegion == FocusPicker || model.focusRegion == FocusDetail {
		return model, nil
	}
	if message.Button != tea.MouseButtonLeft && message.Action != tea.MouseActionMotion {
		return model, nil
	}

	switch message.Action {
	case tea.MouseActionPress:
		column, row, ok := model.cardAt(message.X, message.Y)
		if !ok {
			return model, nil
		}
		tickets := model.columnTickets(column)
		if row >= len(tickets) {
			return model, nil
		}
		model.columnCursor = column
		model.rowCursor = row
		model.pressID = tickets[row].ID
		model.pressColumn = column
		model.pressedAt = model.clock.Now()

	case tea.MouseActionMotion:
		if model.pressID == 0 {
			return model, nil
		}
		column := model.columnAt(message.X)
		if model.grabbedID == 0 {
			if column == model.pressColumn {
				return model, nil
			}
			// Crossed a column boundary: this press is a drag.
			if err := model.board.Grab(model.pressID); err != nil {
				pressID := model.pressID
				model.pressID = 0
				if errors.Is(err, board.ErrCommitPending) {
					model.logger.Debug("drag rejected, commit pending", "ticket_id", pressID)
					return model, model.setNotice("previous move is still saving", false)
				}
				return model, model.setNotice(err.Error(), true)
			}
			model.grabbedID = model.pressID
		}
		model.dragTarget = column

	case tea.MouseActionRelease:
		pressID := model.pressID
		model.pressID = 0

		if model.grabbedID != 0 {
			model.dragTarget = model.columnAt(message.X)
			model.lastDragEnd = model.clock.Now()
			return model.dropGrabbed()
		}
		if pressID == 0 {
			return model, nil
		}
		now := model.clock.Now()
		if now.Sub(model.pressedAt) <= clickWindow && now.Sub(model.lastDragEnd) > clickWindow {
			model.openDetail(pressID)
		}
	}
	return model, nil
}

// applyTicket replaces the stored copy of a ticket and reconciles the
// card set.
func (model *Model) applyTicket(updated ticket.Ticket) {
	for i, t := range model.tickets {
		if t.ID == updated.ID {
			model.tickets[i] = updated
			break
		}
	}
	model.board.Sync(model.tickets)
}

// ticketByID looks up a ticket in the stored set.
func (model *Model) ticketByID(ticketID int) (ticket.Ticket, bool) {
	for _, t := range model.tickets {
		if t.ID == ticketID {
			return t, true
		}
	}
	return ticket.Ticket{}, false
}

// visibleTickets returns the stored tickets matching the client-side
// filter.
func (model *Model) visibleTickets() []ticket.Ticket {
	if model.filter.Input == "" {
		return model.tickets
	}
	var visible []ticket.Ticket
	for _, t := range model.tickets {
		if model.filter.Matches(t) {
			visible = append(visible, t)
		}
	}
	return visible
}

// columnTickets returns the visible cards in one column, honoring
// in-flight optimistic positions.
func (model *Model) columnTickets(column int) []ticket.Ticket {
	statuses := ticket.BoardStatuses()
	if column < 0 || column >= len(statuses) {
		return nil
	}
	partition := model.board.Partition(model.visibleTickets())
	return partition[statuses[column]]
}

// selectedTicket returns the ticket under the board cursor.
func (model *Model) selectedTicket() (ticket.Ticket, bool) {
	tickets := model.columnTickets(model.columnCursor)
	if model.rowCursor < 0 || model.rowCursor >= len(tickets) {
		return ticket.Ticket{}, false
	}
	return tickets[model.rowCursor], true
}

// clampCursor keeps the row cursor inside the focused column.
func (model *Model) clampCursor() {
	tickets := model.columnTickets(model.columnCursor)
	if model.rowCursor >= len(tickets) {
		model.rowCursor = len(tickets) - 1
	}
	if model.rowCursor < 0 {
		model.rowCursor = 0
	}
}

// setNotice shows a status bar notice and schedules its fade.
func (model *Model) setNotice(text string, isError bool) tea.Cmd {
	model.notice = text
	model.noticeIsErr = isError
	model.noticeSeq++
	seq := model.noticeSeq
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{seq: seq}
	})
}
