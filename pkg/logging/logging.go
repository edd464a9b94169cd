// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

// discard is returned when no logger was configured.
var discard = slog.New(slog.DiscardHandler)

// NewContext returns a new [context.Context], derived from ctx, which carries the provided [*slog.Logger].
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// Lookup returns the [*slog.Logger] carried by ctx, and whether one was found.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	logger, ok := ctx.Value(contextKey{}).(*slog.Logger)
	return logger, ok && logger != nil
}

// FromContext returns a [slog.Logger] from ctx.
//
// If no [*slog.Logger] is found, this returns a logger with [slog.DiscardHandler].
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	return discard
}

// Resolve returns the logger carried by ctx, else fallback, else a discarding logger.
func Resolve(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return discard
}

// Format is the output format of a logger built by [New].
type Format string

const (
	// FormatText writes logfmt style key=value records.
	FormatText Format = "text"

	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ParseLevel parses a level name such as "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// New returns a [*slog.Logger] writing to w in the given format.
func New(w io.Writer, level slog.Level, format Format) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch Format(strings.ToLower(string(format))) {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
