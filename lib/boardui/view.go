// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// Board layout rows. Row 0 is the header/filter bar, row 1 the column
// titles, row 2 the separator; cards start at boardTopRows, each
// occupying cardRowHeight rows. The mouse hit-testing in columnAt and
// cardAt depends on renderBoard keeping this layout.
const (
	boardTopRows  = 3
	cardRowHeight = 3
)

// columnAt maps a screen X coordinate to a column index.
func (model *Model) columnAt(x int) int {
	width := model.columnWidth()
	column := x / width
	if column < 0 {
		return 0
	}
	if last := len(ticket.BoardStatuses()) - 1; column > last {
		return last
	}
	return column
}

// cardAt maps screen coordinates to a column and card row. ok is
// false for coordinates above the card area.
func (model *Model) cardAt(x, y int) (column, row int, ok bool) {
	if y < boardTopRows {
		return 0, 0, false
	}
	return model.columnAt(x), (y - boardTopRows) / cardRowHeight, true
}

// columnWidth returns the rendered width of one column.
func (model *Model) columnWidth() int {
	width := model.width / len(ticket.BoardStatuses())
	if width < 8 {
		width = 8
	}
	return width
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "starting..."
	}
	if !model.loaded {
		// Show the notice line so a failed first load is visible.
		return lipgloss.JoinVertical(lipgloss.Left, "loading tickets...", model.renderStatusBar())
	}

	var body string
	if model.detailID != 0 {
		body = model.renderDetail()
	} else {
		body = model.renderBoard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.renderHeader(),
		body,
		model.renderStatusBar(),
	)
}

// renderHeader renders the top bar: the app title, or the filter
// input while filtering.
func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)

	if model.filter.Active || model.filter.Input != "" {
		filterStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		cursor := ""
		if model.filter.Active {
			cursor = "▌"
		}
		return filterStyle.Render("/" + model.filter.Input + cursor)
	}
	return titleStyle.Render("clinicdesk")
}

// renderBoard renders the three columns side by side.
func (model Model) renderBoard() string {
	statuses := ticket.BoardStatuses()
	partition := model.board.Partition(model.visibleTickets())
	width := model.columnWidth()

	bodyRows := model.height - boardTopRows - 1
	if bodyRows < cardRowHeight {
		bodyRows = cardRowHeight
	}

	columns := make([]string, 0, len(statuses))
	for i, status := range statuses {
		columns = append(columns, model.renderColumn(i, status, partition[status], width, bodyRows))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// renderColumn renders one column: header, separator, cards, padding.
func (model Model) renderColumn(index int, status ticket.Status, tickets []ticket.Ticket, width, bodyRows int) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(model.theme.ColumnColor(status)).
		Bold(true).
		Width(width)

	header := fmt.Sprintf(" %s (%d)", status.Label(), len(tickets))
	if model.grabbedID != 0 && index == model.dragTarget {
		header = "▼" + header[1:]
		headerStyle = headerStyle.Underline(true)
	}

	lines := []string{
		headerStyle.Render(ansi.Truncate(header, width, "…")),
		lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(strings.Repeat("─", width)),
	}

	for row, t := range tickets {
		lines = append(lines, model.renderCard(t, index, row, width)...)
	}
	for len(lines) < bodyRows+2 {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderCard renders one card as cardRowHeight lines.
func (model Model) renderCard(t ticket.Ticket, column, row, width int) []string {
	card, _ := model.board.Card(t.ID)
	selected := model.focusRegion == FocusBoard &&
		column == model.columnCursor && row == model.rowCursor

	titleStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width)
	metaStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText).Width(width)

	prefix := "  "
	switch {
	case t.ID == model.grabbedID:
		prefix = "▒ "
		titleStyle = titleStyle.Foreground(model.theme.DraggingForeground)
	case card.PendingCommit():
		titleStyle = titleStyle.Foreground(model.theme.CommittingForeground)
	}
	if selected {
		titleStyle = titleStyle.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
		metaStyle = metaStyle.Background(model.theme.SelectedBackground)
	}

	meta := make([]string, 0, 4)
	marker := ""
	switch t.Priority {
	case ticket.PriorityUrgent:
		marker = "!!"
	case ticket.PriorityHigh:
		marker = "!"
	}
	if marker != "" {
		meta = append(meta, lipgloss.NewStyle().Foreground(model.theme.PriorityColor(t.Priority)).Render(marker))
	}
	if t.Category != "" {
		meta = append(meta, t.Category)
	}
	if len(t.Assignees) > 0 {
		meta = append(meta, t.Assignees[0].DisplayName)
	}
	if t.FollowedBy(model.machine.ActingUserID()) {
		meta = append(meta, "★")
	}
	if card.PendingCommit() {
		meta = append(meta, "saving…")
	}

	return []string{
		titleStyle.Render(ansi.Truncate(prefix+t.Title, width, "…")),
		metaStyle.Render(ansi.Truncate("  "+strings.Join(meta, " · "), width, "…")),
		strings.Repeat(" ", width),
	}
}

// renderDetail renders the full-width detail view for the open
// ticket, with the picker overlay appended while it is active.
func (model Model) renderDetail() string {
	t, ok := model.ticketByID(model.detailID)
	if !ok {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText).Width(10)
	valueStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	titleStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)

	field := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	assignees := "unassigned"
	if len(t.Assignees) > 0 {
		names := make([]string, 0, len(t.Assignees))
		for _, assignee := range t.Assignees {
			names = append(names, assignee.DisplayName)
		}
		assignees = strings.Join(names, ", ")
	}

	following := "no (f to follow)"
	if t.FollowedBy(model.machine.ActingUserID()) {
		following = "yes (f to unfollow)"
	}

	statusValue := lipgloss.NewStyle().
		Foreground(model.theme.ColumnColor(t.Status)).
		Render(t.Status.Label())
	if model.mutationPending[t.ID] {
		statusValue += lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  saving…")
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("#%d  %s", t.ID, t.Title)),
		"",
		labelStyle.Render("status") + statusValue,
		field("priority", t.Priority.String()),
		field("category", t.Category),
		field("assignees", assignees),
		field("following", following),
		field("updated", t.UpdatedAt),
	}

	if next, hasNext := t.Status.Next(); hasNext {
		lines = append(lines, "",
			lipgloss.NewStyle().Foreground(model.theme.HelpText).
				Render(fmt.Sprintf("s: move to %s · a: assign · Esc: back", next.Label())))
	} else {
		lines = append(lines, "",
			lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("a: assign · Esc: back"))
	}

	if model.picker != nil {
		pickerWidth := model.width - 4
		if pickerWidth > 60 {
			pickerWidth = 60
		}
		lines = append(lines, "", model.picker.View(model.theme, pickerWidth))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.NewStyle().Padding(0, 1).Height(model.height - 2).Render(body)
}

// renderStatusBar renders the bottom notice/help line.
func (model Model) renderStatusBar() string {
	if model.notice != "" {
		color := model.theme.NoticeForeground
		if model.noticeIsErr {
			color = model.theme.ErrorForeground
		}
		return lipgloss.NewStyle().Foreground(color).Render(" " + model.notice)
	}

	help := " Space: grab/drop · Enter: open · /: filter · r: refresh · q: quit"
	if model.grabbedID != 0 {
		help = " ←/→: choose column · Space: drop · Esc: cancel"
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(ansi.Truncate(help, model.width, "…"))
}
