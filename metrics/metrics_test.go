// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-a2a/googleai-go/metrics"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := metrics.New(reg)

	m.Observe("generateContent", 200, 10*time.Millisecond)
	m.Observe("generateContent", 200, 20*time.Millisecond)
	m.Observe("generateContent", 0, time.Millisecond)
	m.Observe("countTokens", 400, time.Millisecond)

	tests := []struct {
		task string
		code string
		want float64
	}{
		{task: "generateContent", code: "200", want: 2},
		{task: "generateContent", code: metrics.CodeTransportError, want: 1},
		{task: "countTokens", code: "400", want: 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.Requests().WithLabelValues(tt.task, tt.code)); got != tt.want {
			t.Errorf("requests_total{task=%q,code=%q} = %v, want %v", tt.task, tt.code, got, tt.want)
		}
	}

	if got := testutil.CollectAndCount(reg, "googleai_request_duration_seconds"); got != 2 {
		t.Errorf("request_duration_seconds series = %d, want 2", got)
	}
}

func TestObserveNil(t *testing.T) {
	var m *metrics.Metrics
	m.Observe("generateContent", 200, time.Millisecond)
}
