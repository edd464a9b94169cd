// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus collectors for the requests issued by the SDK.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "googleai"

// CodeTransportError is the code label of requests that failed before a response was received.
const CodeTransportError = "error"

// Metrics holds the request collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the request collectors with reg.
//
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of Generative Language API requests by task and response code.",
		}, []string{"task", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of Generative Language API requests until the response headers arrive.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
	}
}

// Observe records one request of task that finished with the HTTP status code,
// or with 0 when no response was received.
func (m *Metrics) Observe(task string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := CodeTransportError
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(task, label).Inc()
	m.duration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// Requests returns the request counter.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}
