// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"bytes"
	"strings"
	"sync"
)

// maxBufferSize bounds the capacity of buffers kept for reuse.
const maxBufferSize = 1 << 20

// Pool is a generics wrapper around [sync.Pool] to provide strongly-typed object pooling.
type Pool[T any] struct {
	pool sync.Pool
	keep func(T) bool
}

// New returns a new [Pool] for T, and will use fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

type resetter interface {
	Reset()
}

// Put resets x and returns it into the pool.
func (p *Pool[T]) Put(x T) {
	if p.keep != nil && !p.keep(x) {
		return
	}
	if r, ok := any(x).(resetter); ok {
		r.Reset()
	}
	p.pool.Put(x)
}

// Buffer provides the [*bytes.Buffer] pooling objects.
var Buffer = &Pool[*bytes.Buffer]{
	pool: sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	},
	keep: func(b *bytes.Buffer) bool { return b.Cap() <= maxBufferSize },
}

// String provides the [*strings.Builder] pooling objects.
var String = New(func() *strings.Builder {
	return &strings.Builder{}
})
