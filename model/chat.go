// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tiendc/go-deepcopy"
	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/pkg/logging"
)

// ChatSession is a multi-turn conversation with a [GenerativeModel].
//
// Every send carries the whole history followed by the new message. A turn is
// added to the history only when the model answered with at least one
// candidate. Sends on one session are serialized, so the session may be shared
// between goroutines.
type ChatSession struct {
	model *GenerativeModel

	// turn holds a token while a message is in flight.
	turn chan struct{}

	mu      sync.Mutex
	history []*genai.Content
}

// StartChat starts a [ChatSession] seeded with history.
//
// The history is validated with [ValidateHistory] and copied.
func (m *GenerativeModel) StartChat(history ...*genai.Content) (*ChatSession, error) {
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}

	cs := &ChatSession{
		model: m,
		turn:  make(chan struct{}, 1),
	}
	if len(history) > 0 {
		if err := deepcopy.Copy(&cs.history, history); err != nil {
			return nil, fmt.Errorf("copy chat history: %w", err)
		}
	}
	return cs, nil
}

// History returns a copy of the conversation so far.
func (cs *ChatSession) History() ([]*genai.Content, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var out []*genai.Content
	if err := deepcopy.Copy(&out, cs.history); err != nil {
		return nil, fmt.Errorf("copy chat history: %w", err)
	}
	return out, nil
}

// acquire waits for the previous turn to complete.
func (cs *ChatSession) acquire(ctx context.Context) error {
	select {
	case cs.turn <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for the previous message: %w", context.Cause(ctx))
	}
}

func (cs *ChatSession) release() {
	<-cs.turn
}

// contents returns the history followed by msg.
func (cs *ChatSession) contents(msg *genai.Content) []*genai.Content {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return append(slices.Clone(cs.history), msg)
}

// commit records a completed turn.
func (cs *ChatSession) commit(ctx context.Context, msg *genai.Content, resp *Response, method string) {
	logger := logging.Resolve(ctx, cs.model.client.Options().Logger)

	if resp == nil || resp.GenerateContentResponse == nil || len(resp.Candidates) == 0 {
		if blockMsg := resp.BlockMessage(); blockMsg != "" {
			logger.WarnContext(ctx, method+"() was unsuccessful. "+blockMsg+". Inspect response object for details.")
		}
		return
	}

	reply := &genai.Content{Role: RoleModel, Parts: []*genai.Part{}}
	if c := resp.Candidates[0].Content; c != nil {
		if c.Role != "" {
			reply.Role = c.Role
		}
		if c.Parts != nil {
			reply.Parts = c.Parts
		}
	}

	var turn []*genai.Content
	if err := deepcopy.Copy(&turn, []*genai.Content{msg, reply}); err != nil {
		logger.ErrorContext(ctx, "failed to copy chat turn", slog.Any("error", err))
		return
	}

	cs.mu.Lock()
	cs.history = append(cs.history, turn...)
	cs.mu.Unlock()
}

// SendMessage sends a message built from parts and waits for the complete response.
func (cs *ChatSession) SendMessage(ctx context.Context, parts ...Part) (*Response, error) {
	msg, err := NewMessage(parts...)
	if err != nil {
		return nil, err
	}

	if err := cs.acquire(ctx); err != nil {
		return nil, err
	}
	defer cs.release()

	resp, err := cs.model.Generate(ctx, cs.contents(msg))
	if err != nil {
		return nil, err
	}
	cs.commit(ctx, msg, resp, "sendMessage")
	return resp, nil
}

// SendText sends a plain text message.
func (cs *ChatSession) SendText(ctx context.Context, text string) (*Response, error) {
	return cs.SendMessage(ctx, Text(text))
}

// SendMessageStream sends a message built from parts and streams the response.
//
// The request carries the whole history followed by the new message. Chunks are
// read lazily through [StreamResult.Stream], and [StreamResult.Response] returns
// their aggregate:
//
//	res, err := cs.SendMessageStream(ctx, model.Text("Tell me a story"))
//	if err != nil {
//		return err
//	}
//	defer res.Close()
//	for chunk, err := range res.Stream() {
//		if err != nil {
//			return err
//		}
//		text, _ := chunk.Text()
//		fmt.Print(text)
//	}
//
// The turn is added to the history once the stream completes with at least one
// candidate. A stream that fails or is closed early leaves the history unchanged.
// Further sends on the session wait until the result is drained or closed.
func (cs *ChatSession) SendMessageStream(ctx context.Context, parts ...Part) (*StreamResult, error) {
	msg, err := NewMessage(parts...)
	if err != nil {
		return nil, err
	}

	if err := cs.acquire(ctx); err != nil {
		return nil, err
	}

	onDone := func(resp *Response, err error) {
		defer cs.release()
		if err != nil {
			logging.Resolve(ctx, cs.model.client.Options().Logger).WarnContext(ctx, "sendMessageStream() was unsuccessful", slog.Any("error", err))
			return
		}
		cs.commit(ctx, msg, resp, "sendMessageStream")
	}

	res, err := cs.model.generateStream(ctx, cs.contents(msg), onDone)
	if err != nil {
		cs.release()
		return nil, err
	}
	return res, nil
}
