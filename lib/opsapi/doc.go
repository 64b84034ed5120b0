// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package opsapi is a typed client for the clinic ops REST backend.
// It covers the endpoints the board needs: the ticket filter listing,
// ticket status transitions, follow/unfollow mutations (multipart, as
// the backend expects), and the team directory search behind the
// assignee picker.
//
// Every request carries the bearer token and API key from an
// explicitly injected read-only [Session]; nothing is read from
// ambient storage. Non-2xx responses become a typed *APIError so
// callers can distinguish failure classes with errors.As helpers.
package opsapi
