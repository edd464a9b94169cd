// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type expirationKind uint8

const (
	expirationUnset expirationKind = iota
	expirationTTL
	expirationSeconds
	expirationTime
)

// Expiration is the lifetime of a cached content resource.
//
// It is either a relative time-to-live or an absolute expiry timestamp, never
// both. The zero value is unset. Use [TTL], [TTLSeconds] or [ExpireAt] to build one.
type Expiration struct {
	kind       expirationKind
	ttl        time.Duration
	seconds    int64
	expireTime time.Time
}

// TTL returns an [Expiration] relative to the time the request is applied.
func TTL(d time.Duration) Expiration {
	return Expiration{kind: expirationTTL, ttl: d}
}

// TTLSeconds returns an [Expiration] of n seconds.
//
// The count is kept as is and sent as "<n>s", so it may exceed the range of a
// [time.Duration].
func TTLSeconds(n int64) Expiration {
	return Expiration{kind: expirationSeconds, seconds: n}
}

// ExpireAt returns an [Expiration] at the absolute time t.
func ExpireAt(t time.Time) Expiration {
	return Expiration{kind: expirationTime, expireTime: t}
}

// IsZero reports whether e is unset.
func (e Expiration) IsZero() bool {
	return e.kind == expirationUnset
}

// TTL returns the relative time-to-live and whether e holds one.
//
// A [TTLSeconds] count beyond the range of [time.Duration] is clamped.
func (e Expiration) TTL() (time.Duration, bool) {
	switch e.kind {
	case expirationTTL:
		return e.ttl, true
	case expirationSeconds:
		const maxSeconds = math.MaxInt64 / int64(time.Second)
		switch {
		case e.seconds > maxSeconds:
			return math.MaxInt64, true
		case e.seconds < -maxSeconds:
			return math.MinInt64, true
		}
		return time.Duration(e.seconds) * time.Second, true
	default:
		return 0, false
	}
}

// ExpireTime returns the absolute expiry time and whether e holds one.
func (e Expiration) ExpireTime() (time.Time, bool) {
	return e.expireTime, e.kind == expirationTime
}

// Field returns the wire field name set by e: "ttl", "expireTime", or "" when unset.
func (e Expiration) Field() string {
	switch e.kind {
	case expirationTTL, expirationSeconds:
		return "ttl"
	case expirationTime:
		return "expireTime"
	default:
		return ""
	}
}

// String implements [fmt.Stringer].
func (e Expiration) String() string {
	switch e.kind {
	case expirationTTL, expirationSeconds:
		return "ttl=" + e.ttlString()
	case expirationTime:
		return "expireTime=" + e.expireTime.UTC().Format(time.RFC3339Nano)
	default:
		return "unset"
	}
}

// Validate reports an [*InputError] when e holds a negative TTL.
func (e Expiration) Validate() error {
	if (e.kind == expirationTTL && e.ttl < 0) || (e.kind == expirationSeconds && e.seconds < 0) {
		return NewInputError("ttl must not be negative, got %s", e.ttlString())
	}
	return nil
}

func (e Expiration) ttlString() string {
	if e.kind == expirationSeconds {
		return strconv.FormatInt(e.seconds, 10) + "s"
	}
	return FormatDuration(e.ttl)
}

// wire fills the ttl/expireTime pair of a wire struct.
func (e Expiration) wire() (ttl string, expireTime *time.Time) {
	switch e.kind {
	case expirationTTL, expirationSeconds:
		return e.ttlString(), nil
	case expirationTime:
		t := e.expireTime.UTC()
		return "", &t
	default:
		return "", nil
	}
}

// FormatDuration formats d in the protobuf JSON duration form: seconds with an "s" suffix.
//
// Whole seconds are rendered without a fraction, e.g. 300s; sub-second precision
// is kept, e.g. 1.5s.
func FormatDuration(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

// ParseDuration parses the protobuf JSON duration form produced by [FormatDuration].
func ParseDuration(s string) (time.Duration, error) {
	num, ok := strings.CutSuffix(s, "s")
	if !ok {
		return 0, fmt.Errorf("duration %q must end with %q", s, "s")
	}
	secs, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
