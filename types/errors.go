// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"google.golang.org/genai"
)

const errorPrefix = "[GoogleGenerativeAI Error]: "

// Error is the generic client error returned by the SDK.
//
// It is used for failures that are neither caller input errors nor HTTP errors,
// such as an empty resource name or an unparsable stream record.
type Error struct {
	Message string
	Err     error
}

// Error returns a string representation of the [Error].
func (e *Error) Error() string {
	if e.Err != nil {
		return errorPrefix + e.Message + ": " + e.Err.Error()
	}
	return errorPrefix + e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// InputError is returned when the caller passes malformed parameters.
//
// An InputError is always raised locally, before any network call is made.
type InputError struct {
	Message string
}

// Error returns a string representation of the [InputError].
func (e *InputError) Error() string {
	return errorPrefix + e.Message
}

// NewInputError returns an [*InputError] with a formatted message.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// ErrorDetail is one entry of the "details" list in a Google API error payload.
type ErrorDetail map[string]any

// RequestError is returned when the remote service answers with a non-success
// status, or when the transport fails before a response is available.
type RequestError struct {
	// URL is the request URL without credentials.
	URL string

	// StatusCode is the HTTP status code, or 0 on transport failures.
	StatusCode int

	// Status is the HTTP status line text, e.g. "400 Bad Request".
	Status string

	// Reason is the canonical error status reported by the API, e.g. "INVALID_ARGUMENT".
	Reason string

	// Message is the human readable message reported by the API.
	Message string

	// Details holds the structured error details reported by the API.
	Details []ErrorDetail

	// Body is the raw response body.
	Body []byte

	// Err is the transport error, if any.
	Err error
}

// Error returns a string representation of the [RequestError].
func (e *RequestError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("%sError fetching from %s: %v", errorPrefix, e.URL, e.Err)
	}

	var sb strings.Builder
	sb.WriteString(errorPrefix)
	fmt.Fprintf(&sb, "Error fetching from %s: [%s]", e.URL, e.Status)
	switch {
	case e.Message != "":
		sb.WriteString(" " + e.Message)
	case len(e.Body) > 0:
		sb.WriteString(" " + strings.TrimSpace(string(e.Body)))
	}
	if len(e.Details) > 0 {
		if details, err := json.Marshal(e.Details, json.Deterministic(true)); err == nil {
			sb.WriteString(" " + string(details))
		}
	}
	return sb.String()
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when a response is unusable because the prompt or
// the candidate was blocked.
type ResponseError struct {
	Message  string
	Response *genai.GenerateContentResponse
}

// Error returns a string representation of the [ResponseError].
func (e *ResponseError) Error() string {
	return errorPrefix + e.Message
}

// AbortError is returned when a request is cancelled through its context or
// exceeds the configured request timeout.
type AbortError struct {
	URL string
	Err error
}

// Error returns a string representation of the [AbortError].
func (e *AbortError) Error() string {
	return fmt.Sprintf("%sRequest aborted when fetching %s: %v", errorPrefix, e.URL, e.Err)
}

// Unwrap returns the context error that aborted the request.
func (e *AbortError) Unwrap() error {
	return e.Err
}

// APIError is the error envelope returned by Google APIs.
type APIError struct {
	Code    int           `json:"code,omitzero"`
	Message string        `json:"message,omitzero"`
	Status  string        `json:"status,omitzero"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type apiErrorEnvelope struct {
	Error *APIError `json:"error"`
}

// ParseAPIError decodes a Google API error envelope of the form
// {"error": {"code": ..., "message": ..., "status": ..., "details": [...]}}.
//
// It reports false when body is not such an envelope.
func ParseAPIError(body []byte) (*APIError, bool) {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return nil, false
	}
	return env.Error, true
}
