// Package pool adds type safety on top of sync.Pool.
package pool

import "sync"

// Pool is a typed free list backed by sync.Pool. Both listeners use it
// to recycle packet and length-prefix buffers between requests.
type Pool[T any] struct {
	inner sync.Pool
}

// New returns a pool that calls construct when empty.
func New[T any](construct func() T) *Pool[T] {
	return &Pool[T]{
		inner: sync.Pool{
			New: func() any {
				return construct()
			},
		},
	}
}

// Get takes an item from the pool, constructing one if none is free.
func (p *Pool[T]) Get() T {
	return p.inner.Get().(T)
}

// Put returns an item to the pool for reuse.
func (p *Pool[T]) Put(item T) {
	p.inner.Put(item)
}
