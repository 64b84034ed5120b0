// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicdesk/lib/remotesearch"
	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// PickerModel is the assignee search overlay. Typing feeds the
// debounce coordinator; only the last keystroke in a burst reaches
// the backend, and responses arriving out of order cannot replace
// newer results.
type PickerModel struct {
	ticketID    int
	session     int
	input       textinput.Model
	coordinator *remotesearch.Coordinator
	cursor      int
	notice      string
}

// newPicker creates a picker for assigning ticketID. The session
// number stamps this picker's debounce and lookup messages.
func newPicker(ticketID, session int) *PickerModel {
	input := textinput.New()
	input.Placeholder = "search clinic team"
	input.Prompt = "assign> "
	input.CharLimit = 64
	input.Focus()

	return &PickerModel{
		ticketID:    ticketID,
		session:     session,
		input:       input,
		coordinator: remotesearch.New(),
	}
}

// openPicker opens the assignee picker for the detail ticket. Every
// open starts a fresh search session.
func (model Model) openPicker() (tea.Model, tea.Cmd) {
	if _, ok := model.ticketByID(model.detailID); !ok {
		return model, nil
	}
	model.pickerSeq++
	model.picker = newPicker(model.detailID, model.pickerSeq)
	model.focusRegion = FocusPicker
	return model, textinput.Blink
}

// closePicker destroys the search session and returns focus to the
// detail view.
func (model *Model) closePicker() {
	if model.picker != nil {
		model.picker.coordinator.Reset()
	}
	model.picker = nil
	model.focusRegion = FocusDetail
}

// handlePickerKeys handles input while the picker is open.
func (model Model) handlePickerKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	picker := model.picker
	if picker == nil {
		model.focusRegion = FocusDetail
		return model, nil
	}

	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEscape:
		model.closePicker()
		return model, nil

	case tea.KeyUp:
		if picker.cursor > 0 {
			picker.cursor--
		}
		return model, nil

	case tea.KeyDown:
		if picker.cursor < len(picker.coordinator.Results())-1 {
			picker.cursor++
		}
		return model, nil

	case tea.KeyEnter:
		return model.selectCandidate()
	}

	before := picker.input.Value()
	var inputCmd tea.Cmd
	picker.input, inputCmd = picker.input.Update(message)
	after := picker.input.Value()
	if after == before {
		return model, inputCmd
	}

	picker.cursor = 0
	action := picker.coordinator.Input(after)
	if !action.Debounce {
		// Blank query: results were cleared immediately, no request.
		return model, inputCmd
	}
	seq := action.Seq
	session := picker.session
	return model, tea.Batch(inputCmd, tea.Tick(remotesearch.DebounceDelay, func(time.Time) tea.Msg {
		return searchDebounceMsg{session: session, seq: seq}
	}))
}

// handleSearchDebounce dispatches a team lookup if the debounce
// firing belongs to the live picker session and is still current.
func (model Model) handleSearchDebounce(message searchDebounceMsg) (tea.Model, tea.Cmd) {
	if model.picker == nil || model.picker.session != message.session {
		return model, nil
	}
	lookup, ok := model.picker.coordinator.Settle(message.seq)
	if !ok {
		return model, nil
	}

	source := model.source
	session := model.picker.session
	return model, func() tea.Msg {
		candidates, err := source.SearchTeam(context.Background(), lookup.Query)
		return searchResultMsg{session: session, generation: lookup.Generation, candidates: candidates, err: err}
	}
}

// handleSearchResult feeds a lookup response through the coordinator.
// Responses from a dismissed picker session are dropped outright: the
// new session's coordinator restarts its generations, so only the
// session stamp distinguishes its lookups from the old session's.
func (model *Model) handleSearchResult(message searchResultMsg) {
	picker := model.picker
	if picker == nil || picker.session != message.session {
		return
	}
	outcome := picker.coordinator.Apply(message.generation, message.candidates, message.err)
	switch {
	case outcome.Failed:
		model.logger.Warn("team search failed", "error", message.err)
		picker.notice = "search unavailable, try again"
	case outcome.Updated:
		picker.notice = ""
		if picker.cursor >= len(picker.coordinator.Results()) {
			picker.cursor = 0
		}
	}
	// Stale outcomes are dropped without touching the visible results.
}

// selectCandidate assigns the highlighted candidate to the picker's
// ticket, committing the visible assignee list only after the backend
// confirms.
func (model Model) selectCandidate() (tea.Model, tea.Cmd) {
	picker := model.picker
	results := picker.coordinator.Results()
	if picker.cursor < 0 || picker.cursor >= len(results) {
		return model, nil
	}
	candidate := results[picker.cursor]

	t, ok := model.ticketByID(picker.ticketID)
	if !ok {
		model.closePicker()
		return model, nil
	}
	for _, assignee := range t.Assignees {
		if assignee.UserID == candidate.UserID {
			picker.notice = candidate.DisplayName() + " is already assigned"
			return model, nil
		}
	}
	if model.mutationPending[t.ID] {
		return model, model.setNotice("previous change is still saving", false)
	}

	userIDs := make([]int, 0, len(t.Assignees)+1)
	for _, assignee := range t.Assignees {
		userIDs = append(userIDs, assignee.UserID)
	}
	userIDs = append(userIDs, candidate.UserID)

	updated := t
	updated.Assignees = append(append([]ticket.Assignee(nil), t.Assignees...), ticket.Assignee{
		UserID:      candidate.UserID,
		DisplayName: candidate.DisplayName(),
	})

	model.mutationPending[t.ID] = true
	model.closePicker()

	source := model.source
	updatedBy := model.machine.ActingUserID()
	return model, func() tea.Msg {
		err := source.AssignTicket(context.Background(), t.ID, userIDs, updatedBy)
		return assignResultMsg{ticketID: t.ID, result: updated, err: err}
	}
}

// View renders the picker overlay box.
func (picker *PickerModel) View(theme Theme, width int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColumnInProgress).
		Padding(0, 1).
		Width(width)

	lines := []string{picker.input.View()}

	results := picker.coordinator.Results()
	for i, candidate := range results {
		line := fmt.Sprintf("%s  %s", candidate.DisplayName(), candidate.Email)
		style := lipgloss.NewStyle().Foreground(theme.NormalText)
		if i == picker.cursor {
			style = style.Background(theme.SelectedBackground).Foreground(theme.SelectedForeground)
		}
		lines = append(lines, style.Render(line))
	}
	if len(results) == 0 && picker.notice == "" && picker.coordinator.Query() != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.FaintText).Render("no matches"))
	}
	if picker.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ErrorForeground).Render(picker.notice))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
