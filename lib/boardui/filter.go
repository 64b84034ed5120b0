// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"strings"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// FilterModel narrows the visible ticket set client-side with
// case-insensitive substring matching across title, category, and
// assignee names. The backend filter (status/priority query params)
// chooses the base set; this filter refines it without a round trip.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true when the filter input has keyboard focus.
	Active bool
}

// Matches reports whether t matches the current filter. An empty
// filter matches everything.
func (filter *FilterModel) Matches(t ticket.Ticket) bool {
	if filter.Input == "" {
		return true
	}
	query := strings.ToLower(filter.Input)

	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Category), query) {
		return true
	}
	for _, assignee := range t.Assignees {
		if strings.Contains(strings.ToLower(assignee.DisplayName), query) {
			return true
		}
	}
	return false
}

// HandleRune appends a typed character to the filter input.
func (filter *FilterModel) HandleRune(r rune) {
	filter.Input += string(r)
}

// HandleBackspace removes the last character from the filter input.
func (filter *FilterModel) HandleBackspace() {
	if len(filter.Input) > 0 {
		runes := []rune(filter.Input)
		filter.Input = string(runes[:len(runes)-1])
	}
}

// Clear resets the filter to the inactive empty state.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}
