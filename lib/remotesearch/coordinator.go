// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package remotesearch turns rapid keystroke input into a minimal,
// race-safe set of backend lookups. One Coordinator backs one
// autocomplete control for the control's lifetime.
//
// Two counters make the pattern safe without cancelling anything:
//
//   - The input sequence advances on every keystroke. The debounce
//     timer the caller schedules carries the sequence it was armed
//     with; when it fires, [Coordinator.Settle] dispatches a lookup
//     only if no later keystroke has arrived. Restarting the timer is
//     thus expressed as ignoring stale firings — only the last
//     keystroke in a burst triggers a request.
//
//   - The lookup generation advances on every dispatched request.
//     [Coordinator.Apply] discards any response stamped with an older
//     generation, so out-of-order network arrival can never replace
//     newer results with older ones.
//
// The coordinator is a plain single-threaded state machine: the board
// model drives it from the message loop, scheduling the debounce tick
// and running the lookup as a command. It performs no I/O itself.
package remotesearch

import (
	"strings"
	"time"
)

// DebounceDelay is the quiet period after the last keystroke before a
// lookup is dispatched.
const DebounceDelay = 400 * time.Millisecond

// Candidate is a read-only directory entry returned by the team
// search endpoint. Selecting one feeds a separate assignment
// mutation; the search session does not own it.
type Candidate struct {
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// DisplayName returns "First Last", falling back to the username when
// both name fields are blank.
func (candidate Candidate) DisplayName() string {
	name := strings.TrimSpace(candidate.FirstName + " " + candidate.LastName)
	if name == "" {
		return candidate.Username
	}
	return name
}

// InputAction tells the caller what to do after a keystroke: when
// Debounce is true, schedule a timer for DebounceDelay carrying Seq
// and feed the firing back through Settle.
type InputAction struct {
	Seq      uint64
	Debounce bool
}

// Lookup describes a dispatched request. The caller performs the
// network call and feeds the response back through Apply stamped with
// Generation.
type Lookup struct {
	Query      string
	Generation uint64
}

// Outcome reports how Apply treated a response.
type Outcome struct {
	// Updated means the response replaced the visible results.
	Updated bool

	// Stale means the response belonged to a superseded generation
	// and was discarded silently. Expected, not exceptional.
	Stale bool

	// Failed means the current generation's request failed: results
	// were cleared and the caller should surface a non-blocking
	// notice.
	Failed bool
}

// Coordinator is the per-control search session state. The zero value
// is ready to use.
type Coordinator struct {
	query          string
	inputSeq       uint64
	generation     uint64
	lastDispatched string
	results        []Candidate
}

// New creates an empty Coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// Input records a keystroke's settled text. A blank (empty or
// whitespace-only) query clears the results immediately and issues no
// request — the returned action has Debounce false. Any earlier timer
// firing is implicitly cancelled because its sequence is now stale.
func (coordinator *Coordinator) Input(text string) InputAction {
	coordinator.inputSeq++
	coordinator.query = text

	if strings.TrimSpace(text) == "" {
		coordinator.results = nil
		// Forget the dedup anchor: retyping the previous query after a
		// clear must dispatch again.
		coordinator.lastDispatched = ""
		return InputAction{Seq: coordinator.inputSeq}
	}
	return InputAction{Seq: coordinator.inputSeq, Debounce: true}
}

// Settle handles a debounce timer firing. Returns a Lookup to
// dispatch when the firing is current; stale firings (a newer
// keystroke arrived while the timer was pending) and queries equal to
// the immediately preceding dispatch return ok == false.
func (coordinator *Coordinator) Settle(seq uint64) (Lookup, bool) {
	if seq != coordinator.inputSeq {
		return Lookup{}, false
	}
	if coordinator.query == coordinator.lastDispatched {
		return Lookup{}, false
	}

	coordinator.generation++
	coordinator.lastDispatched = coordinator.query
	return Lookup{Query: coordinator.query, Generation: coordinator.generation}, true
}

// Apply handles a lookup response. Responses stamped with a stale
// generation are discarded unconditionally, whatever their arrival
// order; a failed response is only acted on when its generation is
// still current, in which case the results are cleared (a stale
// failure leaves the last-known-good results in place).
func (coordinator *Coordinator) Apply(generation uint64, candidates []Candidate, err error) Outcome {
	if generation != coordinator.generation {
		return Outcome{Stale: true}
	}
	if err != nil {
		coordinator.results = nil
		// Allow an identical retry to dispatch a fresh request.
		coordinator.lastDispatched = ""
		return Outcome{Failed: true}
	}
	coordinator.results = candidates
	return Outcome{Updated: true}
}

// Results returns the currently visible candidates.
func (coordinator *Coordinator) Results() []Candidate {
	return coordinator.results
}

// Query returns the latest input text.
func (coordinator *Coordinator) Query() string {
	return coordinator.query
}

// Reset clears the session, as when the owning control is dismissed.
func (coordinator *Coordinator) Reset() {
	*coordinator = Coordinator{}
}
