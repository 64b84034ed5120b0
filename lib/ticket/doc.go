// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticket defines the domain model shared by the board, the
// lifecycle state machine, and the ops backend client: the Ticket
// record, the canonical Status enum with its forward-only transition
// table, priorities, assignees, and the follower set.
//
// Status strings arriving from the backend are canonicalized through
// [ParseStatus]; the rest of the codebase works with the typed enum so
// an illegal transition is a type-level impossibility rather than a
// string comparison scattered through view code.
package ticket
