// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"iter"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/internal/rest"
	"github.com/go-a2a/googleai-go/internal/xiter"
	"github.com/go-a2a/googleai-go/types"
)

// errStreamClosed finishes a stream closed before its last chunk.
var errStreamClosed = &types.Error{Message: "stream was closed before the response completed"}

// StreamResult is the result of a streamed generation.
//
// [StreamResult.Stream] yields chunks as they arrive and [StreamResult.Response]
// returns the aggregated response. Both read from the same stream, so
// Response may be called after, or instead of, consuming Stream.
type StreamResult struct {
	stream *rest.Stream[genai.GenerateContentResponse]

	mu     sync.Mutex
	next   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	chunks []*genai.GenerateContentResponse
	done   bool
	resp   *Response
	err    error

	// onDone is called once with the aggregated response or the error that ended the stream.
	onDone func(*Response, error)

	iterated atomic.Bool
	closed   atomic.Bool
}

func newStreamResult(s *rest.Stream[genai.GenerateContentResponse], onDone func(*Response, error)) *StreamResult {
	next, stop := iter.Pull2(s.All())
	return &StreamResult{
		stream: s,
		next:   next,
		stop:   stop,
		onDone: onDone,
	}
}

// pull reads the next chunk. It reports false once the stream has ended.
func (r *StreamResult) pull() (*genai.GenerateContentResponse, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return nil, false, nil
	}

	chunk, err, ok := r.next()
	switch {
	case r.closed.Load():
		// Close released the body while this read was pending.
		r.finish(errStreamClosed)
		return nil, false, errStreamClosed
	case !ok:
		r.finish(nil)
		return nil, false, nil
	case err != nil:
		r.finish(err)
		return nil, false, err
	}
	r.chunks = append(r.chunks, chunk)
	return chunk, true, nil
}

// finish must be called with r.mu held.
func (r *StreamResult) finish(err error) {
	r.done = true
	r.err = err
	r.stop()
	if err == nil {
		r.resp = &Response{aggregate(r.chunks)}
	}
	if r.onDone != nil {
		r.onDone(r.resp, err)
	}
}

// Stream returns an iterator over the response chunks in arrival order.
//
// Stream can be called once. Breaking out of it early leaves the remaining
// chunks for [StreamResult.Response].
func (r *StreamResult) Stream() iter.Seq2[*Response, error] {
	if r.iterated.Swap(true) {
		return xiter.Error[Response](rest.ErrStreamConsumed)
	}
	return func(yield func(*Response, error) bool) {
		for {
			chunk, ok, err := r.pull()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok || !yield(&Response{chunk}, nil) {
				return
			}
		}
	}
}

// Response drains the stream and returns the aggregated response.
func (r *StreamResult) Response() (*Response, error) {
	for {
		_, ok, err := r.pull()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resp, r.err
}

// Close abandons the stream. A chat turn that has not completed is not added to
// the history.
//
// Close may be called from another goroutine while [StreamResult.Stream] or
// [StreamResult.Response] waits for the next chunk; the pending read then ends
// with an error.
func (r *StreamResult) Close() error {
	r.closed.Store(true)
	err := r.stream.Close()

	r.mu.Lock()
	if !r.done {
		r.finish(errStreamClosed)
	}
	r.mu.Unlock()

	return err
}
