// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package rest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/go-a2a/googleai-go/internal/pool"
	"github.com/go-a2a/googleai-go/internal/xiter"
	"github.com/go-a2a/googleai-go/types"
)

// maxEventSize is the largest server-sent event accepted from the API.
const maxEventSize = 16 << 20

// ErrStreamConsumed is yielded when a stream is iterated more than once.
var ErrStreamConsumed = &types.Error{Message: "stream has already been consumed"}

var (
	dataField    = []byte("data:")
	commentField = []byte(":")
)

// Stream is a server-sent event response whose events decode into T.
//
// A Stream can be consumed once.
type Stream[T any] struct {
	client *Client
	resp   *http.Response
	call   *call

	used      atomic.Bool
	closeOnce sync.Once
}

// OpenStream sends req and returns the event stream of a successful response.
func OpenStream[T any](ctx context.Context, c *Client, req *Request) (*Stream[T], error) {
	resp, cl, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream[T]{
		client: c,
		resp:   resp,
		call:   cl,
	}, nil
}

// Close releases the response body. It is safe to call Close more than once.
func (s *Stream[T]) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.resp.Body.Close()
		s.call.cancel()
	})
	return err
}

// All returns an iterator over the decoded events in arrival order.
//
// The iterator closes the stream when it returns. Calling All a second time
// returns an iterator that yields a single error.
func (s *Stream[T]) All() iter.Seq2[*T, error] {
	if s.used.Swap(true) {
		return xiter.Error[T](ErrStreamConsumed)
	}
	return func(yield func(*T, error) bool) {
		defer s.Close()

		sc := bufio.NewScanner(s.resp.Body)
		sc.Buffer(make([]byte, 0, 64<<10), maxEventSize)

		buf := pool.Buffer.Get()
		defer pool.Buffer.Put(buf)

		for sc.Scan() {
			line := sc.Bytes()
			switch {
			case len(line) == 0:
				if buf.Len() == 0 {
					continue
				}
				v, err := s.decode(buf.Bytes())
				buf.Reset()
				if !yield(v, err) || err != nil {
					return
				}

			case bytes.HasPrefix(line, dataField):
				data := bytes.TrimPrefix(line[len(dataField):], []byte(" "))
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.Write(data)

			case bytes.HasPrefix(line, commentField):
				// keep-alive

			default:
				// event, id and retry fields carry nothing for this API.
			}
		}

		if err := sc.Err(); err != nil {
			yield(nil, s.client.transportError(s.call.ctx, s.call, err))
			return
		}
		if len(bytes.TrimSpace(buf.Bytes())) > 0 {
			yield(nil, &types.Error{Message: "Failed to parse stream"})
		}
	}
}

// decode parses the payload of one event.
func (s *Stream[T]) decode(data []byte) (*T, error) {
	if gjson.GetBytes(data, "error").Exists() {
		return nil, s.eventError(data)
	}

	v := new(T)
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return nil, &types.Error{Message: fmt.Sprintf("Error parsing JSON response: %q", data), Err: err}
	}
	return v, nil
}

// eventError maps an error record sent in place of a chunk.
func (s *Stream[T]) eventError(data []byte) error {
	rerr := &types.RequestError{
		URL:  s.call.url,
		Body: bytes.Clone(data),
	}
	if apiErr, ok := types.ParseAPIError(data); ok {
		rerr.StatusCode = apiErr.Code
		if apiErr.Code > 0 {
			rerr.Status = fmt.Sprintf("%d %s", apiErr.Code, http.StatusText(apiErr.Code))
		}
		rerr.Reason = apiErr.Status
		rerr.Message = apiErr.Message
		rerr.Details = apiErr.Details
	} else {
		rerr.Message = gjson.GetBytes(data, "error.message").String()
	}
	return rerr
}
