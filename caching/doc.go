// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package caching manages cached content resources of the Google Generative
// Language API.
//
// Cached content stores a large prompt prefix (contents, system instruction,
// tools) on the server so later requests can reference it by name instead of
// resending it.
//
//	cm := caching.NewCacheManager(apiKey)
//	cc, err := cm.Create(ctx, &types.CachedContentCreateParams{
//		Model:      "gemini-1.5-flash-001",
//		Contents:   contents,
//		Expiration: types.TTL(5 * time.Minute),
//	})
//	if err != nil {
//		return err
//	}
//	m, err := model.NewFromCachedContent(cc, model.WithAPIKey(apiKey))
//
// Resource names may be given either as "cachedContents/{id}" or as the bare id.
package caching
