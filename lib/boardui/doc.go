// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package boardui is the bubbletea model for the clinicdesk ticket
// board. Three columns (Pending, In Progress, Completed) show the
// filtered ticket set; cards move between columns by keyboard grab
// or mouse drag, with the optimistic commit machinery delegated to
// lib/board and status/follow mutations to lib/lifecycle.
//
// The model is a plain Elm-architecture state machine: all I/O runs
// as tea.Cmd closures over value copies, and every async result
// re-enters through a typed message stamped with the sequence or
// generation it belongs to. Stale results (a commit timeout racing a
// backend reply, an old refresh overtaking a newer one, a superseded
// search response) are discarded by the stamp check rather than by
// cancellation.
package boardui
