// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package fakeapi provides an in-process fake of the Generative Language API for tests.
package fakeapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Request is a request received by the [Server].
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is an [httptest.Server] that records every request and answers from
// the handlers registered on its router.
type Server struct {
	*httptest.Server

	router *mux.Router

	mu       sync.Mutex
	requests []*Request
}

// New starts a [Server] that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		router: mux.NewRouter(),
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"code":404,"message":"no route for `+r.Method+` `+r.URL.Path+`","status":"NOT_FOUND"}}`)
	})
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	s.router.ServeHTTP(w, r)
}

// Handle registers h for method and path. Paths may use gorilla/mux variables.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.router.Methods(method).Path(path).HandlerFunc(h)
}

// HandleJSON answers method and path with status and the JSON body.
func (s *Server) HandleJSON(method, path string, status int, body string) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

// HandleSSE answers method and path with one server-sent event per payload.
func (s *Server) HandleSSE(method, path string, payloads ...string) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, SSE(payloads...))
	})
}

// HandleRaw answers method and path with a 200 response of the given content type and body.
func (s *Server) HandleRaw(method, path, contentType, body string) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or nil.
func (s *Server) LastRequest() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// SSE encodes payloads as "data: <payload>" events separated by blank lines.
func SSE(payloads ...string) string {
	var sb strings.Builder
	for _, p := range payloads {
		sb.WriteString("data: ")
		sb.WriteString(p)
		sb.WriteString("\r\n\r\n")
	}
	return sb.String()
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
