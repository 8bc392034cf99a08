package alloc

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/arckit/mem/layout"
)

// slabAlign is the minimum alignment of every slab. Over-aligning leaves
// Init room to round payloads whose alignment exceeds the Header's.
const slabAlign = 64

// GoAllocator carves allocations out of Go-heap byte slices. Live slabs are
// retained in a registry: the raw pointers this package hands out are not
// traced by the collector, so the registry is what keeps the storage alive
// until Free.
//
// Safe for concurrent use.
type GoAllocator struct {
	mu    sync.Mutex
	slabs map[uintptr][]byte
}

// NewGoAllocator returns an empty Go-heap allocator.
func NewGoAllocator() *GoAllocator {
	return &GoAllocator{slabs: make(map[uintptr][]byte)}
}

// Allocate returns l.Size bytes aligned to at least max(l.Align, 64), or
// nil for a zero-size request.
func (g *GoAllocator) Allocate(l layout.Layout) unsafe.Pointer {
	if l.Size == 0 {
		return nil
	}
	align := l.Align
	if align < slabAlign {
		align = slabAlign
	}
	buf := make([]byte, l.Size+align)
	p := layout.NextAligned(unsafe.Pointer(unsafe.SliceData(buf)), align)
	g.mu.Lock()
	g.slabs[uintptr(p)] = buf
	g.mu.Unlock()
	return p
}

// Free drops the slab holding p from the registry, returning it to the
// collector. p must have come from Allocate or Reallocate on this instance.
func (g *GoAllocator) Free(p unsafe.Pointer) {
	g.mu.Lock()
	delete(g.slabs, uintptr(p))
	g.mu.Unlock()
}

// Reallocate resizes via allocate-copy-free.
func (g *GoAllocator) Reallocate(p unsafe.Pointer, prev layout.Layout, newSize uintptr) unsafe.Pointer {
	return DefaultReallocate(g, p, prev, newSize)
}
