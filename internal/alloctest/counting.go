// Package alloctest provides allocator instrumentation for tests.
package alloctest

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/arckit/mem/alloc"
	"github.com/joshuapare/arckit/mem/layout"
)

// Counting wraps an Allocator and counts every call, so tests can assert
// properties like "exactly one allocation" or "freed exactly once". It can
// also be armed to fail allocation deterministically.
//
// Safe for concurrent use.
type Counting struct {
	inner alloc.Allocator

	mu        sync.Mutex
	allocs    int
	frees     int
	reallocs  int
	live      int
	failAfter int // negative: never fail
}

// NewCounting wraps inner. If inner is nil, a fresh GoAllocator is used.
func NewCounting(inner alloc.Allocator) *Counting {
	if inner == nil {
		inner = alloc.NewGoAllocator()
	}
	return &Counting{inner: inner, failAfter: -1}
}

// FailAfter arms the allocator to let n more allocations succeed and fail
// every one after that. FailAfter(0) fails the next allocation.
func (c *Counting) FailAfter(n int) {
	c.mu.Lock()
	c.failAfter = n
	c.mu.Unlock()
}

// Allocs returns the number of Allocate calls that were attempted.
func (c *Counting) Allocs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs
}

// Frees returns the number of Free calls.
func (c *Counting) Frees() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frees
}

// Reallocs returns the number of Reallocate calls. Each one also shows up
// as a derived Allocate and Free, since resizing is allocate-copy-free.
func (c *Counting) Reallocs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reallocs
}

// Live returns the number of allocations not yet freed.
func (c *Counting) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Allocate counts the call, honors the FailAfter arming, and delegates.
func (c *Counting) Allocate(l layout.Layout) unsafe.Pointer {
	c.mu.Lock()
	c.allocs++
	if c.failAfter == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.failAfter > 0 {
		c.failAfter--
	}
	c.mu.Unlock()

	p := c.inner.Allocate(l)
	if p != nil {
		c.mu.Lock()
		c.live++
		c.mu.Unlock()
	}
	return p
}

// Free counts the call and delegates.
func (c *Counting) Free(p unsafe.Pointer) {
	c.mu.Lock()
	c.frees++
	c.live--
	c.mu.Unlock()
	c.inner.Free(p)
}

// Reallocate counts the call and resizes through the wrapper itself, so the
// derived Allocate and Free are counted too.
func (c *Counting) Reallocate(p unsafe.Pointer, prev layout.Layout, newSize uintptr) unsafe.Pointer {
	c.mu.Lock()
	c.reallocs++
	c.mu.Unlock()
	return alloc.DefaultReallocate(c, p, prev, newSize)
}
