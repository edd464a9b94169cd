// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package googleai is a Go client for the Google Generative Language API.
//
// A [Client] creates generative models and a cache manager that share one API
// key and one set of request options:
//
//	client, err := googleai.NewClient(os.Getenv("GOOGLE_API_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := client.GenerativeModel("gemini-1.5-flash")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cs, err := m.StartChat()
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := cs.SendText(ctx, "Hello!")
//
// The transport is configured with the options of package option, e.g. a base
// URL, an API version, a request timeout, extra headers, an oauth2 token source,
// a rate limiter and Prometheus metrics. Package model holds generation, chat,
// token counting and embeddings, and package caching holds cached content
// management. Errors are the types of package types.
package googleai
