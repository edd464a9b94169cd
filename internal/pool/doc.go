// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling on top of [sync.Pool].
//
// The SSE decoder borrows a [*bytes.Buffer] from [Buffer] for every event it
// assembles, and response text rendering borrows a [*strings.Builder] from [String].
// Values are reset on [Pool.Put] when they implement a Reset method.
package pool
