package alloc

import (
	"unsafe"

	"github.com/joshuapare/arckit/mem/layout"
)

// Allocator is the capability every owning handle is built on.
//
// Implementations:
//   - GoAllocator: slabs carved from the Go heap
//   - OSAllocator: anonymous page mappings outside the Go heap
//
// Implementations must be safe to copy by interface value and must tolerate
// being invoked through a copy stored inside one of their own allocations.
type Allocator interface {
	// Allocate returns storage of at least l.Size bytes aligned to at
	// least l.Align, or nil on failure. A zero-size request returns nil.
	Allocate(l layout.Layout) unsafe.Pointer

	// Free releases storage previously returned by Allocate or Reallocate
	// on this same instance. Passing any other address is undefined
	// behavior.
	Free(p unsafe.Pointer)

	// Reallocate resizes p, which was previously allocated on this same
	// instance with layout prev, to newSize bytes. On success the contents
	// up to min(prev.Size, newSize) are preserved and p is freed. On
	// failure (or newSize == 0) it returns nil and p remains valid and
	// owned by the caller.
	Reallocate(p unsafe.Pointer, prev layout.Layout, newSize uintptr) unsafe.Pointer
}

// Default is the allocator used by convenience constructors that do not
// take an explicit Allocator.
var Default Allocator = NewGoAllocator()

// DefaultReallocate derives Reallocate from Allocate and Free: it allocates
// newSize bytes at prev.Align, copies min(prev.Size, newSize) bytes, and
// frees p. On failure it returns nil without freeing p. Backends with no
// native resize primitive delegate to it.
func DefaultReallocate(a Allocator, p unsafe.Pointer, prev layout.Layout, newSize uintptr) unsafe.Pointer {
	ret := a.Allocate(layout.Layout{Size: newSize, Align: prev.Align})
	if ret == nil {
		return nil
	}
	n := prev.Size
	if newSize < n {
		n = newSize
	}
	if n > 0 {
		copy(unsafe.Slice((*byte)(ret), n), unsafe.Slice((*byte)(p), n))
	}
	a.Free(p)
	return ret
}
