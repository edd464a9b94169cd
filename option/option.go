// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package option configures how requests reach the Generative Language API.
package option

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/go-a2a/googleai-go/metrics"
)

const (
	// DefaultBaseURL is the default endpoint of the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultAPIVersion is the default API version.
	DefaultAPIVersion = "v1beta"
)

// RequestOptions holds the resolved settings of every request.
type RequestOptions struct {
	// BaseURL is the endpoint of the API, without the version path.
	BaseURL string

	// APIVersion is the version path segment, e.g. "v1beta".
	APIVersion string

	// APIClient is appended to the x-goog-api-client header.
	APIClient string

	// Timeout bounds each request, including the whole body of a stream. Zero means no timeout.
	Timeout time.Duration

	// CustomHeaders are added to every request.
	CustomHeaders http.Header

	HTTPClient  *http.Client
	RateLimiter *rate.Limiter

	// TokenSource supplies bearer tokens when no API key is set.
	TokenSource oauth2.TokenSource

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// RequestOption is a function that modifies the [RequestOptions].
type RequestOption interface {
	apply(RequestOptions) RequestOptions
}

type optionFunc func(RequestOptions) RequestOptions

func (f optionFunc) apply(o RequestOptions) RequestOptions { return f(o) }

// Resolve applies opts in order over the defaults.
func Resolve(opts ...RequestOption) RequestOptions {
	o := RequestOptions{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		HTTPClient: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			o = opt.apply(o)
		}
	}
	return o
}

// WithBaseURL sets the API endpoint, e.g. a regional endpoint or a test server.
func WithBaseURL(baseURL string) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		if baseURL != "" {
			o.BaseURL = baseURL
		}
		return o
	})
}

// WithAPIVersion sets the API version path segment.
func WithAPIVersion(version string) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		if version != "" {
			o.APIVersion = version
		}
		return o
	})
}

// WithAPIClient sets the caller identifier appended to the x-goog-api-client header.
func WithAPIClient(apiClient string) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.APIClient = apiClient
		return o
	})
}

// WithTimeout bounds every request to d.
func WithTimeout(d time.Duration) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.Timeout = d
		return o
	})
}

// WithHeader adds a custom header to every request.
//
// The x-goog-api-key and x-goog-api-client headers are reserved; requests
// carrying them fail with an input error.
func WithHeader(key, value string) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		h := cloneHeader(o.CustomHeaders)
		h.Add(key, value)
		o.CustomHeaders = h
		return o
	})
}

// WithHeaders merges custom headers into every request.
func WithHeaders(headers http.Header) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		h := cloneHeader(o.CustomHeaders)
		for k, vs := range headers {
			for _, v := range vs {
				h.Add(k, v)
			}
		}
		o.CustomHeaders = h
		return o
	})
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}

// WithHTTPClient sets the client used to send requests.
func WithHTTPClient(c *http.Client) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		if c != nil {
			o.HTTPClient = c
		}
		return o
	})
}

// WithRateLimiter makes every request wait for a token of l before it is sent.
func WithRateLimiter(l *rate.Limiter) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.RateLimiter = l
		return o
	})
}

// WithTokenSource authenticates requests with OAuth2 bearer tokens instead of an API key.
func WithTokenSource(ts oauth2.TokenSource) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.TokenSource = ts
		return o
	})
}

// WithMetrics records every request in m.
func WithMetrics(m *metrics.Metrics) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.Metrics = m
		return o
	})
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *slog.Logger) RequestOption {
	return optionFunc(func(o RequestOptions) RequestOptions {
		o.Logger = logger
		return o
	})
}
