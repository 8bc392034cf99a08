//go:build unix

package alloc

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/arckit/mem/layout"
)

// OSAllocator serves allocations from anonymous page mappings. Storage
// lives entirely outside the Go heap, so it suits long-lived allocations
// and payloads that must survive independently of collector behavior.
//
// Each allocation occupies a whole number of pages; mappings are
// page-aligned, which satisfies any alignment the layout can request up to
// the page size.
//
// Safe for concurrent use.
type OSAllocator struct {
	mu       sync.Mutex
	mappings map[uintptr][]byte
}

// NewOSAllocator returns an empty mmap-backed allocator.
func NewOSAllocator() *OSAllocator {
	return &OSAllocator{mappings: make(map[uintptr][]byte)}
}

// Allocate maps at least l.Size bytes of zeroed, page-aligned memory.
// Returns nil on mapping failure or for a zero-size request.
func (o *OSAllocator) Allocate(l layout.Layout) unsafe.Pointer {
	if l.Size == 0 {
		return nil
	}
	length := layout.AlignUp(l.Size, uintptr(os.Getpagesize()))
	b, err := unix.Mmap(-1, 0, int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	o.mu.Lock()
	o.mappings[uintptr(p)] = b
	o.mu.Unlock()
	return p
}

// Free unmaps the pages behind p. p must have come from Allocate or
// Reallocate on this instance.
func (o *OSAllocator) Free(p unsafe.Pointer) {
	o.mu.Lock()
	b, ok := o.mappings[uintptr(p)]
	delete(o.mappings, uintptr(p))
	o.mu.Unlock()
	if ok {
		// Treat unmap failure like a double-unmap: nothing useful to do.
		_ = unix.Munmap(b)
	}
}

// Reallocate resizes via allocate-copy-free.
func (o *OSAllocator) Reallocate(p unsafe.Pointer, prev layout.Layout, newSize uintptr) unsafe.Pointer {
	return DefaultReallocate(o, p, prev, newSize)
}
