// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package rest sends JSON requests to the Generative Language REST API.
//
// It builds model task and resource URLs, sets the client identification and
// authentication headers, maps non-success responses onto [*types.RequestError]
// and decodes server-sent event streams.
package rest
