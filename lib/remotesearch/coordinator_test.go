// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package remotesearch

import (
	"errors"
	"testing"
)

func TestBlankInputShortCircuits(t *testing.T) {
	coordinator := New()
	coordinator.Input("jo")
	settled, ok := coordinator.Settle(1)
	if !ok {
		t.Fatal("expected dispatch for non-blank query")
	}
	coordinator.Apply(settled.Generation, []Candidate{{UserID: 1, FirstName: "Jo"}}, nil)

	for _, blank := range []string{"", "   ", "\t"} {
		action := coordinator.Input(blank)
		if action.Debounce {
			t.Errorf("Input(%q) requested a debounce timer", blank)
		}
		if coordinator.Results() != nil {
			t.Errorf("Input(%q) did not clear results", blank)
		}
	}
}

func TestOnlyLastKeystrokeDispatches(t *testing.T) {
	coordinator := New()

	// "jo" typed, then "john" before the timer fires.
	first := coordinator.Input("jo")
	second := coordinator.Input("john")

	if _, ok := coordinator.Settle(first.Seq); ok {
		t.Error("stale timer firing dispatched a lookup")
	}

	lookup, ok := coordinator.Settle(second.Seq)
	if !ok {
		t.Fatal("current timer firing did not dispatch")
	}
	if lookup.Query != "john" {
		t.Errorf("dispatched query = %q, want john", lookup.Query)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	coordinator := New()

	action := coordinator.Input("jo")
	lookupOld, _ := coordinator.Settle(action.Seq)

	action = coordinator.Input("john")
	lookupNew, _ := coordinator.Settle(action.Seq)

	// The newer response arrives first.
	newResults := []Candidate{{UserID: 2, FirstName: "John", LastName: "Arden"}}
	outcome := coordinator.Apply(lookupNew.Generation, newResults, nil)
	if !outcome.Updated {
		t.Fatalf("current response not applied: %+v", outcome)
	}

	// The stale response straggles in afterward.
	outcome = coordinator.Apply(lookupOld.Generation, []Candidate{{UserID: 1, FirstName: "Jo"}}, nil)
	if !outcome.Stale {
		t.Fatalf("stale response not discarded: %+v", outcome)
	}

	results := coordinator.Results()
	if len(results) != 1 || results[0].UserID != 2 {
		t.Errorf("results = %+v, want john's payload", results)
	}
}

func TestCurrentFailureClearsResults(t *testing.T) {
	coordinator := New()

	action := coordinator.Input("mar")
	lookup, _ := coordinator.Settle(action.Seq)
	coordinator.Apply(lookup.Generation, []Candidate{{UserID: 3}}, nil)

	action = coordinator.Input("maria")
	lookup, _ = coordinator.Settle(action.Seq)
	outcome := coordinator.Apply(lookup.Generation, nil, errors.New("HTTP 503"))
	if !outcome.Failed {
		t.Fatalf("current failure not reported: %+v", outcome)
	}
	if coordinator.Results() != nil {
		t.Errorf("results = %+v after current-generation failure, want nil", coordinator.Results())
	}
}

func TestStaleFailureLeavesResults(t *testing.T) {
	coordinator := New()

	action := coordinator.Input("mar")
	lookupOld, _ := coordinator.Settle(action.Seq)

	action = coordinator.Input("maria")
	lookupNew, _ := coordinator.Settle(action.Seq)

	good := []Candidate{{UserID: 4, FirstName: "Maria"}}
	coordinator.Apply(lookupNew.Generation, good, nil)

	outcome := coordinator.Apply(lookupOld.Generation, nil, errors.New("HTTP 500"))
	if !outcome.Stale {
		t.Fatalf("stale failure = %+v, want Stale", outcome)
	}
	if len(coordinator.Results()) != 1 {
		t.Error("stale failure clobbered last-known-good results")
	}
}

func TestDuplicateQuerySkipped(t *testing.T) {
	coordinator := New()

	action := coordinator.Input("anna")
	lookup, _ := coordinator.Settle(action.Seq)
	coordinator.Apply(lookup.Generation, []Candidate{{UserID: 5}}, nil)

	// A keystroke cycle that lands on the same text again.
	coordinator.Input("ann")
	action = coordinator.Input("anna")
	if _, ok := coordinator.Settle(action.Seq); ok {
		t.Error("identical consecutive dispatch was not deduplicated")
	}
}

func TestRetypeAfterClearDispatches(t *testing.T) {
	coordinator := New()

	action := coordinator.Input("anna")
	coordinator.Settle(action.Seq)

	coordinator.Input("")
	action = coordinator.Input("anna")
	if _, ok := coordinator.Settle(action.Seq); !ok {
		t.Error("retyping the query after a clear must dispatch again")
	}
}

func TestDisplayName(t *testing.T) {
	full := Candidate{FirstName: "Dana", LastName: "Reyes", Username: "dreyes"}
	if got := full.DisplayName(); got != "Dana Reyes" {
		t.Errorf("DisplayName = %q", got)
	}
	bare := Candidate{Username: "frontdesk2"}
	if got := bare.DisplayName(); got != "frontdesk2" {
		t.Errorf("DisplayName fallback = %q", got)
	}
}
