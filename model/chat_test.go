// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/internal/fakeapi"
	"github.com/go-a2a/googleai-go/model"
	"github.com/go-a2a/googleai-go/pkg/logging"
	"github.com/go-a2a/googleai-go/types"
)

func mustHistory(t *testing.T, cs *model.ChatSession) []*genai.Content {
	t.Helper()
	h, err := cs.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	return h
}

func TestChatSessionSendMessage(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, helloResponse)
	m := newTestModel(t, srv)

	seed := []*genai.Content{
		genai.NewContentFromText("My name is Gopher.", genai.RoleUser),
		genai.NewContentFromText("Nice to meet you, Gopher.", genai.RoleModel),
	}
	cs, err := m.StartChat(seed...)
	if err != nil {
		t.Fatalf("StartChat() error = %v", err)
	}

	resp, err := cs.SendText(t.Context(), "hello")
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if text, _ := resp.Text(); text != "Hi there" {
		t.Errorf("Text() = %q, want %q", text, "Hi there")
	}

	body := gjson.ParseBytes(srv.LastRequest().Body)
	var sent []string
	for _, c := range body.Get("contents").Array() {
		sent = append(sent, c.Get("role").String()+": "+c.Get("parts.0.text").String())
	}
	wantSent := []string{
		"user: My name is Gopher.",
		"model: Nice to meet you, Gopher.",
		"user: hello",
	}
	if diff := cmp.Diff(wantSent, sent); diff != "" {
		t.Errorf("request contents mismatch (-want +got):\n%s", diff)
	}

	want := append(seed,
		genai.NewContentFromText("hello", genai.RoleUser),
		genai.NewContentFromText("Hi there", genai.RoleModel),
	)
	if diff := cmp.Diff(want, mustHistory(t, cs)); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
}

func TestChatSessionHistoryIsCopied(t *testing.T) {
	m, err := model.New("gemini-1.5-flash")
	if err != nil {
		t.Fatal(err)
	}

	seed := genai.NewContentFromText("original", genai.RoleUser)
	cs, err := m.StartChat(seed)
	if err != nil {
		t.Fatalf("StartChat() error = %v", err)
	}

	seed.Parts[0].Text = "mutated by caller"
	h := mustHistory(t, cs)
	h[0].Parts[0].Text = "mutated by reader"

	if got := mustHistory(t, cs)[0].Parts[0].Text; got != "original" {
		t.Errorf("history entry = %q, want %q", got, "original")
	}
}

func TestChatSessionStartChatInvalidHistory(t *testing.T) {
	m, err := model.New("gemini-1.5-flash")
	if err != nil {
		t.Fatal(err)
	}

	_, err = m.StartChat(genai.NewContentFromText("I start", genai.RoleModel))
	var inputErr *types.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("StartChat() error = %v, want *types.InputError", err)
	}
}

func TestChatSessionBlockedPrompt(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`)

	var logs bytes.Buffer
	ctx := logging.NewContext(t.Context(), slog.New(slog.NewTextHandler(&logs, nil)))

	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := cs.SendText(ctx, "something unsafe")
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if _, err := resp.Text(); err == nil {
		t.Error("Text() of a blocked prompt expected error")
	}
	if h := mustHistory(t, cs); len(h) != 0 {
		t.Errorf("History() has %d entries after a blocked prompt, want 0", len(h))
	}
	if !strings.Contains(logs.String(), "sendMessage() was unsuccessful. Response was blocked due to SAFETY") {
		t.Errorf("logs = %q, want a blocked warning", logs.String())
	}
}

func TestChatSessionRequestError(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)

	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	_, err = cs.SendText(t.Context(), "hello")
	var reqErr *types.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("SendText() error = %v, want *types.RequestError", err)
	}
	if h := mustHistory(t, cs); len(h) != 0 {
		t.Errorf("History() has %d entries after a failed send, want 0", len(h))
	}
}

func TestChatSessionFunctionResponse(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, helloResponse)

	m := newTestModel(t, srv)
	cs, err := m.StartChat(
		genai.NewContentFromText("weather in Tokyo?", genai.RoleUser),
		genai.NewContentFromFunctionCall("weather", map[string]any{"city": "Tokyo"}, genai.RoleModel),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cs.SendMessage(t.Context(), model.FunctionResponse{Name: "weather", Response: map[string]any{"sky": "clear"}}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	body := gjson.ParseBytes(srv.LastRequest().Body)
	last := body.Get("contents.2")
	if got := last.Get("role").String(); got != model.RoleFunction {
		t.Errorf("message role = %q, want %q", got, model.RoleFunction)
	}
	if got := last.Get("parts.0.functionResponse.response.sky").String(); got != "clear" {
		t.Errorf("functionResponse = %s", last.Raw)
	}
}

func TestChatSessionSendMessageStream(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleSSE(http.MethodPost, streamPath,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Once upon"}]},"index":0}]}`,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":" a time"}]},"finishReason":"STOP","index":0}]}`,
	)
	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	res, err := cs.SendMessageStream(t.Context(), model.Text("tell me a story"), model.ImageData("png", []byte("png-bytes")))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	var got []string
	for chunk, err := range res.Stream() {
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		text, _ := chunk.Text()
		got = append(got, text)
	}
	if diff := cmp.Diff([]string{"Once upon", " a time"}, got); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}

	want := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("tell me a story"),
			genai.NewPartFromBytes([]byte("png-bytes"), "image/png"),
		}, genai.RoleUser),
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Once upon"),
			genai.NewPartFromText(" a time"),
		}, genai.RoleModel),
	}
	if diff := cmp.Diff(want, mustHistory(t, cs)); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}

	body := gjson.ParseBytes(srv.LastRequest().Body)
	if got := body.Get("contents.0.parts.1.inlineData.mimeType").String(); got != "image/png" {
		t.Errorf("inlineData.mimeType = %q, want image/png", got)
	}
}

func TestChatSessionStreamErrorKeepsHistory(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleSSE(http.MethodPost, streamPath,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"partial"}]},"index":0}]}`,
		`{not json}`,
	)
	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	res, err := cs.SendMessageStream(t.Context(), model.Text("hello"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}
	if _, err := res.Response(); err == nil {
		t.Fatal("Response() expected a parse error")
	}
	if h := mustHistory(t, cs); len(h) != 0 {
		t.Errorf("History() has %d entries after a failed stream, want 0", len(h))
	}
}

func TestChatSessionSerializesTurns(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleSSE(http.MethodPost, streamPath,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"first answer"}]},"finishReason":"STOP","index":0}]}`,
	)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, helloResponse)

	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	res, err := cs.SendMessageStream(t.Context(), model.Text("first"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	if _, err := cs.SendText(ctx, "second"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("SendText() during a streamed turn error = %v, want context.DeadlineExceeded", err)
	}

	if _, err := res.Response(); err != nil {
		t.Fatalf("Response() error = %v", err)
	}
	if _, err := cs.SendText(t.Context(), "second"); err != nil {
		t.Fatalf("SendText() after the streamed turn error = %v", err)
	}

	body := gjson.ParseBytes(srv.LastRequest().Body)
	var roles []string
	for _, c := range body.Get("contents").Array() {
		roles = append(roles, c.Get("role").String())
	}
	if diff := cmp.Diff([]string{"user", "model", "user"}, roles); diff != "" {
		t.Errorf("second request roles mismatch (-want +got):\n%s", diff)
	}
	if n := len(mustHistory(t, cs)); n != 4 {
		t.Errorf("len(History()) = %d, want 4", n)
	}
}

func TestChatSessionStreamClose(t *testing.T) {
	srv := fakeapi.New(t)
	srv.HandleSSE(http.MethodPost, streamPath,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"one"}]},"index":0}]}`,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"two"}]},"index":0}]}`,
	)
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, helloResponse)

	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	res, err := cs.SendMessageStream(t.Context(), model.Text("count"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}
	for range res.Stream() {
		break
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if h := mustHistory(t, cs); len(h) != 0 {
		t.Errorf("History() has %d entries after an abandoned stream, want 0", len(h))
	}

	if _, err := cs.SendText(t.Context(), "again"); err != nil {
		t.Fatalf("SendText() after Close() error = %v", err)
	}
}

func TestChatSessionStreamCloseWhileReading(t *testing.T) {
	srv := fakeapi.New(t)
	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })
	srv.Handle(http.MethodPost, streamPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, fakeapi.SSE(`{"candidates":[{"content":{"role":"model","parts":[{"text":"one"}]},"index":0}]}`))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-hold:
		}
	})
	srv.HandleJSON(http.MethodPost, generatePath, http.StatusOK, helloResponse)

	m := newTestModel(t, srv)
	cs, err := m.StartChat()
	if err != nil {
		t.Fatal(err)
	}

	res, err := cs.SendMessageStream(t.Context(), model.Text("count"))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	first := make(chan struct{}, 1)
	consumed := make(chan error, 1)
	go func() {
		var streamErr error
		for _, err := range res.Stream() {
			if err != nil {
				streamErr = err
				break
			}
			select {
			case first <- struct{}{}:
			default:
			}
		}
		consumed <- streamErr
	}()

	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("first chunk was not delivered")
	}

	closed := make(chan struct{})
	go func() {
		res.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() blocked while Stream() waits for the next chunk")
	}

	select {
	case err := <-consumed:
		var sdkErr *types.Error
		if err != nil && !errors.As(err, &sdkErr) {
			t.Errorf("Stream() error = %v, want nil or *types.Error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream() did not return after Close()")
	}

	if _, err := res.Response(); err == nil {
		t.Error("Response() after Close() error = nil, want an error")
	}
	if h := mustHistory(t, cs); len(h) != 0 {
		t.Errorf("History() has %d entries after an abandoned stream, want 0", len(h))
	}
	if _, err := cs.SendText(t.Context(), "again"); err != nil {
		t.Fatalf("SendText() after Close() error = %v", err)
	}
}
