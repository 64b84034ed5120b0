// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board TUI.
type KeyMap struct {
	// Navigation. Left/Right move between columns when no card is
	// grabbed and move the drop target while one is.
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Card actions.
	Grab key.Binding // Grab the selected card; drop it when dragging.
	Open key.Binding // Open the selected card's detail view.

	// Detail actions.
	Advance key.Binding // Move the ticket to its next status.
	Follow  key.Binding // Toggle following the ticket.
	Assign  key.Binding // Open the assignee search picker.

	// Filter. Escape (Cancel) clears it.
	FilterActivate key.Binding

	Refresh key.Binding
	Cancel  key.Binding // Cancel a drag, close an overlay.
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (h/j/k/l) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "column left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "column right"),
	),
	Grab: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "grab/drop"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Advance: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "next status"),
	),
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "follow"),
	),
	Assign: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assign"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
