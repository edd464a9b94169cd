// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package googleai_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	googleai "github.com/go-a2a/googleai-go"
	"github.com/go-a2a/googleai-go/internal/fakeapi"
	"github.com/go-a2a/googleai-go/model"
	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/types"
)

const helloResponse = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi"}]},"finishReason":"STOP","index":0}]}`

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		env     string
		opts    []option.RequestOption
		wantErr bool
	}{
		{
			name:   "explicit key",
			apiKey: "key",
		},
		{
			name: "key from environment",
			env:  "env-key",
		},
		{
			name: "token source",
			opts: []option.RequestOption{option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))},
		},
		{
			name:    "no credentials",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(googleai.EnvAPIKey, tt.env)

			client, err := googleai.NewClient(tt.apiKey, tt.opts...)
			if tt.wantErr {
				var inputErr *types.InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("NewClient() error = %v, want *types.InputError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if client == nil {
				t.Fatal("NewClient() returned nil client")
			}
		})
	}
}

func TestClientGenerativeModel(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, "/v1beta/models/gemini-1.5-flash:generateContent", http.StatusOK, helloResponse)
	srv.HandleJSON(http.MethodPost, "/v1/models/gemini-1.5-pro:generateContent", http.StatusOK, helloResponse)

	t.Setenv(googleai.EnvAPIKey, "env-key")
	client, err := googleai.NewClient("", option.WithBaseURL(srv.URL), option.WithAPIClient("my-app/1.0"))
	if err != nil {
		t.Fatal(err)
	}

	m, err := client.GenerativeModel("gemini-1.5-flash")
	if err != nil {
		t.Fatalf("GenerativeModel() error = %v", err)
	}
	if _, err := m.GenerateContent(t.Context(), model.Text("hi")); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	req := srv.LastRequest()
	if got := req.Header.Get("x-goog-api-key"); got != "env-key" {
		t.Errorf("x-goog-api-key = %q, want %q", got, "env-key")
	}
	wantClient := "googleai-go/" + googleai.Version + " my-app/1.0"
	if got := req.Header.Get("x-goog-api-client"); got != wantClient {
		t.Errorf("x-goog-api-client = %q, want %q", got, wantClient)
	}

	pro, err := client.GenerativeModel("gemini-1.5-pro", model.WithRequestOptions(option.WithAPIVersion("v1")))
	if err != nil {
		t.Fatalf("GenerativeModel() error = %v", err)
	}
	if _, err := pro.GenerateContent(t.Context(), model.Text("hi")); err != nil {
		t.Fatalf("GenerateContent() with per-model options error = %v", err)
	}
	if got := srv.LastRequest().Path; got != "/v1/models/gemini-1.5-pro:generateContent" {
		t.Errorf("path = %q, want the v1 endpoint", got)
	}
}

func TestClientTokenSource(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, "/v1beta/models/gemini-1.5-flash:generateContent", http.StatusOK, helloResponse)

	t.Setenv(googleai.EnvAPIKey, "")
	client, err := googleai.NewClient("",
		option.WithBaseURL(srv.URL),
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-token", TokenType: "Bearer"})),
	)
	if err != nil {
		t.Fatal(err)
	}
	m, err := client.GenerativeModel("gemini-1.5-flash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GenerateContent(t.Context(), model.Text("hi")); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	req := srv.LastRequest()
	if got := req.Header.Get("Authorization"); got != "Bearer access-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer access-token")
	}
	if got := req.Header.Get("x-goog-api-key"); got != "" {
		t.Errorf("x-goog-api-key = %q, want none", got)
	}
}

func TestClientCacheManagerAndCachedModel(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodGet, "/v1beta/cachedContents/abc", http.StatusOK, `{
		"name": "cachedContents/abc",
		"model": "models/gemini-1.5-flash-001",
		"systemInstruction": {"role": "system", "parts": [{"text": "Be brief."}]}
	}`)
	srv.HandleJSON(http.MethodPost, "/v1beta/models/gemini-1.5-flash-001:generateContent", http.StatusOK, helloResponse)

	client, err := googleai.NewClient("key", option.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	cc, err := client.CacheManager().Get(t.Context(), "abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	m, err := client.GenerativeModelFromCachedContent(cc)
	if err != nil {
		t.Fatalf("GenerativeModelFromCachedContent() error = %v", err)
	}
	if _, err := m.GenerateContent(t.Context(), model.Text("summarize")); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	body := gjson.ParseBytes(srv.LastRequest().Body)
	if got := body.Get("cachedContent").String(); got != "cachedContents/abc" {
		t.Errorf("cachedContent = %q, want %q", got, "cachedContents/abc")
	}
	if got := body.Get("systemInstruction.parts.0.text").String(); got != "Be brief." {
		t.Errorf("systemInstruction = %q, want the cached instruction", got)
	}

	_, err = client.GenerativeModelFromCachedContent(cc, model.WithSystemInstructionText("Be verbose."))
	var inputErr *types.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("conflicting system instruction error = %v, want *types.InputError", err)
	}
}
