// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-a2a/googleai-go/types"
)

func TestErrorMessages(t *testing.T) {
	errConn := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "input error",
			err:  types.NewInputError("bad %s", "input"),
			want: "[GoogleGenerativeAI Error]: bad input",
		},
		{
			name: "generic error",
			err:  &types.Error{Message: "Failed to parse stream"},
			want: "[GoogleGenerativeAI Error]: Failed to parse stream",
		},
		{
			name: "wrapped generic error",
			err:  &types.Error{Message: "failed to encode request body", Err: errConn},
			want: "[GoogleGenerativeAI Error]: failed to encode request body: connection refused",
		},
		{
			name: "transport failure",
			err:  &types.RequestError{URL: "https://example.com/v1beta/cachedContents", Err: errConn},
			want: "[GoogleGenerativeAI Error]: Error fetching from https://example.com/v1beta/cachedContents: connection refused",
		},
		{
			name: "status with message and details",
			err: &types.RequestError{
				URL:        "https://example.com/x",
				StatusCode: 400,
				Status:     "400 Bad Request",
				Message:    "API key not valid.",
				Details:    []types.ErrorDetail{{"reason": "API_KEY_INVALID", "@type": "type.googleapis.com/google.rpc.ErrorInfo"}},
			},
			want: `[GoogleGenerativeAI Error]: Error fetching from https://example.com/x: [400 Bad Request] API key not valid. [{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID"}]`,
		},
		{
			name: "abort",
			err:  &types.AbortError{URL: "https://example.com/x", Err: context.DeadlineExceeded},
			want: "[GoogleGenerativeAI Error]: Request aborted when fetching https://example.com/x: context deadline exceeded",
		},
		{
			name: "response error",
			err:  &types.ResponseError{Message: "Candidate was blocked due to SAFETY"},
			want: "[GoogleGenerativeAI Error]: Candidate was blocked due to SAFETY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	errConn := errors.New("connection refused")

	if err := error(&types.RequestError{Err: errConn}); !errors.Is(err, errConn) {
		t.Error("RequestError does not unwrap its transport error")
	}
	if err := error(&types.AbortError{Err: context.Canceled}); !errors.Is(err, context.Canceled) {
		t.Error("AbortError does not unwrap its context error")
	}
	if err := error(&types.Error{Err: errConn}); !errors.Is(err, errConn) {
		t.Error("Error does not unwrap its cause")
	}
}

func TestParseAPIError(t *testing.T) {
	got, ok := types.ParseAPIError([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	if !ok {
		t.Fatal("ParseAPIError() reported no envelope")
	}
	if got.Code != 429 || got.Status != "RESOURCE_EXHAUSTED" || got.Message != "Resource has been exhausted" {
		t.Errorf("ParseAPIError() = %+v", got)
	}

	for _, body := range []string{``, `not json`, `{"candidates":[]}`} {
		if _, ok := types.ParseAPIError([]byte(body)); ok {
			t.Errorf("ParseAPIError(%q) reported an envelope", body)
		}
	}
}
