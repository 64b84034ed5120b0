// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// Theme defines the color palette for the board. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected card.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Card being dragged or awaiting commit.
	DraggingForeground   lipgloss.Color
	CommittingForeground lipgloss.Color

	// Column headers by status.
	ColumnPending    lipgloss.Color
	ColumnInProgress lipgloss.Color
	ColumnCompleted  lipgloss.Color

	// Priority markers.
	PriorityHigh   lipgloss.Color
	PriorityUrgent lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	HelpText         lipgloss.Color

	// Status bar notices.
	NoticeForeground lipgloss.Color
	ErrorForeground  lipgloss.Color
}

// ColumnColor returns the header color for a board column.
func (theme Theme) ColumnColor(status ticket.Status) lipgloss.Color {
	switch status {
	case ticket.StatusPending:
		return theme.ColumnPending
	case ticket.StatusInProgress:
		return theme.ColumnInProgress
	case ticket.StatusCompleted:
		return theme.ColumnCompleted
	default:
		return theme.FaintText
	}
}

// PriorityColor returns the marker color for a priority, or NormalText
// for priorities that carry no marker.
func (theme Theme) PriorityColor(priority ticket.Priority) lipgloss.Color {
	switch priority {
	case ticket.PriorityUrgent:
		return theme.PriorityUrgent
	case ticket.PriorityHigh:
		return theme.PriorityHigh
	default:
		return theme.NormalText
	}
}

// DefaultTheme is a dark-background palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("255"),

	DraggingForeground:   lipgloss.Color("214"),
	CommittingForeground: lipgloss.Color("243"),

	ColumnPending:    lipgloss.Color("110"),
	ColumnInProgress: lipgloss.Color("179"),
	ColumnCompleted:  lipgloss.Color("108"),

	PriorityHigh:   lipgloss.Color("179"),
	PriorityUrgent: lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	HelpText:         lipgloss.Color("243"),

	NoticeForeground: lipgloss.Color("110"),
	ErrorForeground:  lipgloss.Color("203"),
}
