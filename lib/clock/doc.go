// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of
// calling time.Now directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that advances only when Advance is called.
//
// The board model uses a Clock for the click-vs-drag disambiguation
// window; tests advance a FakeClock past the window boundary instead of
// sleeping.
package clock
