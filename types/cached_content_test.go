// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/types"
)

func TestCachedContentCreateParamsMarshalJSON(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	contents := []*genai.Content{genai.NewContentFromText("hello", genai.RoleUser)}

	tests := []struct {
		name   string
		params *types.CachedContentCreateParams
		want   string
	}{
		{
			name: "ttl",
			params: &types.CachedContentCreateParams{
				Model:       "models/gemini-1.5-flash",
				DisplayName: "doc",
				Contents:    contents,
				Expiration:  types.TTLSeconds(300),
			},
			want: `{"displayName":"doc","model":"models/gemini-1.5-flash","contents":[{"parts":[{"text":"hello"}],"role":"user"}],"ttl":"300s"}`,
		},
		{
			name: "ttl seconds beyond duration range",
			params: &types.CachedContentCreateParams{
				Model:      "m",
				Expiration: types.TTLSeconds(10_000_000_000),
			},
			want: `{"model":"m","ttl":"10000000000s"}`,
		},
		{
			name: "expire time is sent in UTC",
			params: &types.CachedContentCreateParams{
				Model:      "models/gemini-1.5-flash",
				Expiration: types.ExpireAt(at),
			},
			want: `{"model":"models/gemini-1.5-flash","expireTime":"2025-06-01T03:00:00Z"}`,
		},
		{
			name: "system instruction",
			params: &types.CachedContentCreateParams{
				Model:             "models/gemini-1.5-flash",
				SystemInstruction: types.SystemInstruction("be brief"),
			},
			want: `{"model":"models/gemini-1.5-flash","systemInstruction":{"parts":[{"text":"be brief"}],"role":"system"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.params)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
			}
			if strings.Contains(string(got), "ttlSeconds") {
				t.Errorf("Marshal() = %s, must never send ttlSeconds", got)
			}
		})
	}
}

func TestCachedContentUpdateParams(t *testing.T) {
	tests := []struct {
		name     string
		params   *types.CachedContentUpdateParams
		wantBody string
		wantMask []string
		wantErr  bool
	}{
		{
			name:     "ttl derives mask",
			params:   &types.CachedContentUpdateParams{Expiration: types.TTL(time.Hour)},
			wantBody: `{"ttl":"3600s"}`,
			wantMask: []string{"ttl"},
		},
		{
			name:     "expire time derives mask",
			params:   &types.CachedContentUpdateParams{Expiration: types.ExpireAt(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC))},
			wantBody: `{"expireTime":"2030-01-02T03:04:05Z"}`,
			wantMask: []string{"expireTime"},
		},
		{
			name: "explicit mask wins",
			params: &types.CachedContentUpdateParams{
				Expiration: types.TTL(time.Minute),
				UpdateMask: []string{"ttl", "displayName"},
			},
			wantBody: `{"ttl":"60s"}`,
			wantMask: []string{"ttl", "displayName"},
		},
		{
			name:    "empty update",
			params:  &types.CachedContentUpdateParams{},
			wantErr: true,
		},
		{
			name:    "negative ttl",
			params:  &types.CachedContentUpdateParams{Expiration: types.TTL(-time.Minute)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				var inputErr *types.InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("Validate() error = %v, want *types.InputError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			body, err := json.Marshal(tt.params)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, string(body)); diff != "" {
				t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMask, tt.params.Mask()); diff != "" {
				t.Errorf("Mask() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCachedContentCreateParams(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		check   func(t *testing.T, p *types.CachedContentCreateParams)
		wantErr string
	}{
		{
			name: "ttl seconds",
			in:   `{"model":"gemini-1.5-flash","ttlSeconds":300,"displayName":"doc"}`,
			check: func(t *testing.T, p *types.CachedContentCreateParams) {
				d, ok := p.Expiration.TTL()
				if !ok || d != 300*time.Second {
					t.Errorf("Expiration.TTL() = %v, %v; want 5m0s, true", d, ok)
				}
				if p.DisplayName != "doc" {
					t.Errorf("DisplayName = %q, want doc", p.DisplayName)
				}
			},
		},
		{
			name: "expire time",
			in:   `{"model":"gemini-1.5-flash","expireTime":"2030-01-02T03:04:05Z"}`,
			check: func(t *testing.T, p *types.CachedContentCreateParams) {
				at, ok := p.Expiration.ExpireTime()
				if !ok || !at.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)) {
					t.Errorf("Expiration.ExpireTime() = %v, %v", at, ok)
				}
			},
		},
		{
			name: "system instruction as text",
			in:   `{"model":"gemini-1.5-flash","systemInstruction":"be brief"}`,
			check: func(t *testing.T, p *types.CachedContentCreateParams) {
				if diff := cmp.Diff(types.SystemInstruction("be brief"), p.SystemInstruction); diff != "" {
					t.Errorf("SystemInstruction mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "system instruction as content",
			in:   `{"model":"gemini-1.5-flash","systemInstruction":{"role":"system","parts":[{"text":"be brief"}]},"contents":[{"role":"user","parts":[{"text":"doc"}]}]}`,
			check: func(t *testing.T, p *types.CachedContentCreateParams) {
				if diff := cmp.Diff(types.SystemInstruction("be brief"), p.SystemInstruction); diff != "" {
					t.Errorf("SystemInstruction mismatch (-want +got):\n%s", diff)
				}
				want := []*genai.Content{genai.NewContentFromText("doc", genai.RoleUser)}
				if diff := cmp.Diff(want, p.Contents); diff != "" {
					t.Errorf("Contents mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:    "both ttl and expire time",
			in:      `{"model":"gemini-1.5-flash","ttlSeconds":300,"expireTime":"2030-01-02T03:04:05Z"}`,
			wantErr: "You cannot specify both `ttlSeconds` and `expireTime`",
		},
		{
			name: "large ttl seconds",
			in:   `{"model":"m","ttlSeconds":10000000000}`,
			check: func(t *testing.T, p *types.CachedContentCreateParams) {
				body, err := json.Marshal(p)
				if err != nil {
					t.Fatalf("Marshal() error = %v", err)
				}
				if diff := cmp.Diff(`{"model":"m","ttl":"10000000000s"}`, string(body)); diff != "" {
					t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:    "negative ttl seconds",
			in:      `{"model":"m","ttlSeconds":-5}`,
			wantErr: "ttl must not be negative, got -5s",
		},
		{
			name:    "missing model",
			in:      `{"ttlSeconds":300}`,
			wantErr: "Cached content must contain a `model` field.",
		},
		{
			name:    "malformed",
			in:      `{"model":`,
			wantErr: "invalid cached content payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseCachedContentCreateParams([]byte(tt.in))
			if tt.wantErr != "" {
				var inputErr *types.InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("error = %v, want *types.InputError", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCachedContentCreateParams() error = %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestCachedContentUnmarshalJSON(t *testing.T) {
	in := `{
		"name": "cachedContents/abc123",
		"displayName": "doc",
		"model": "models/gemini-1.5-flash-001",
		"createTime": "2025-06-01T12:00:00.123456Z",
		"updateTime": "2025-06-01T12:00:00.123456Z",
		"expireTime": "2025-06-01T13:00:00.123456Z",
		"usageMetadata": {"totalTokenCount": 43130}
	}`

	var got types.CachedContent
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := types.CachedContent{
		Name:          "cachedContents/abc123",
		DisplayName:   "doc",
		Model:         "models/gemini-1.5-flash-001",
		CreateTime:    time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC),
		UpdateTime:    time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC),
		ExpireTime:    time.Date(2025, 6, 1, 13, 0, 0, 123456000, time.UTC),
		UsageMetadata: &genai.CachedContentUsageMetadata{TotalTokenCount: 43130},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(&got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(out), `"ttl"`) {
		t.Errorf("Marshal() = %s, want no ttl field on a stored cache", out)
	}
}
