// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging utilities using Go's standard slog package.
//
// Loggers are stored in and retrieved from [context.Context] values, so a caller can
// scope the SDK's request logs to a single operation:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
//	ctx = logging.NewContext(ctx, logger)
//
//	resp, err := chat.SendMessage(ctx, model.Text("hello"))
//
// # Default Behavior
//
// When no logger is found in the context, [FromContext] returns a logger backed by
// [slog.DiscardHandler]. A library must stay silent unless its caller opts in.
//
// # Command line tools
//
// [New] builds a text or JSON logger for command line programs, and [ParseLevel]
// parses the usual level names:
//
//	level, err := logging.ParseLevel("debug")
//	logger, err := logging.New(os.Stderr, level, logging.FormatJSON)
//
// # Thread Safety
//
// The logging package is safe for concurrent use.
package logging
