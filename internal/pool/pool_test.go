// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pool_test

import (
	"testing"

	"github.com/go-a2a/googleai-go/internal/pool"
)

func TestBuffer(t *testing.T) {
	buf := pool.Buffer.Get()
	buf.WriteString("data: {}")
	pool.Buffer.Put(buf)

	got := pool.Buffer.Get()
	defer pool.Buffer.Put(got)
	if got.Len() != 0 {
		t.Errorf("Buffer.Get() returned a buffer with %d unread bytes", got.Len())
	}
}

func TestString(t *testing.T) {
	sb := pool.String.Get()
	sb.WriteString("hello")
	pool.String.Put(sb)

	got := pool.String.Get()
	defer pool.String.Put(got)
	if got.Len() != 0 {
		t.Errorf("String.Get() returned a builder of length %d", got.Len())
	}
}

func TestNew(t *testing.T) {
	type item struct{ n int }
	p := pool.New(func() *item { return &item{n: 42} })

	if got := p.Get(); got.n != 42 {
		t.Errorf("Get().n = %d, want 42", got.n)
	}
}
