// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the value types and errors shared by the googleai packages.
//
// # Errors
//
// Every error produced by the SDK renders with the "[GoogleGenerativeAI Error]: "
// prefix and is one of:
//
//   - [*InputError]: the caller passed malformed parameters. No request was sent.
//   - [*RequestError]: the API answered with a non-success status, or the transport
//     failed before a response was available.
//   - [*AbortError]: the request context was cancelled or the request timed out.
//   - [*ResponseError]: the response was blocked and carries no usable candidate.
//   - [*Error]: any other client side failure, such as an unparsable stream.
//
// Use [errors.As] to inspect them:
//
//	var reqErr *types.RequestError
//	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusTooManyRequests {
//		// back off
//	}
//
// # Cached content
//
// [CachedContent] is a stored context that generation calls reference by name.
// Its lifetime is an [Expiration], which holds either a TTL or an absolute
// expire time:
//
//	params := &types.CachedContentCreateParams{
//		Model:      "gemini-1.5-flash-001",
//		Contents:   contents,
//		Expiration: types.TTL(10 * time.Minute),
//	}
package types
