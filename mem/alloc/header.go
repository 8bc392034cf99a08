package alloc

import (
	"sync/atomic"
	"unsafe"
)

// Header is the fixed-size record directly preceding every payload
// allocated through this package. All owning handle families share it,
// which is what makes their zero-copy conversions possible.
type Header struct {
	strong   atomic.Uintptr
	weak     atomic.Uintptr
	capacity atomic.Uintptr
	origin   unsafe.Pointer
	alloc    Allocator
}

// HeaderSize is the byte distance between a Header and its payload, before
// the payload's own alignment is applied.
const HeaderSize = unsafe.Sizeof(Header{})

// HeaderAlign is the alignment of the Header itself. It is at least
// pointer-size so the atomic counters are always safely addressable.
const HeaderAlign = unsafe.Alignof(Header{})

// Strong returns the strong reference counter.
func (h *Header) Strong() *atomic.Uintptr { return &h.strong }

// Weak returns the weak reference counter. While the allocation exists the
// weak count is never 0: the set of strong owners collectively holds one
// implicit weak reference.
func (h *Header) Weak() *atomic.Uintptr { return &h.weak }

// Capacity returns the capacity slot. Its meaning belongs to the owning
// container: a vector records its element capacity here when it is
// converted into a slice owner.
func (h *Header) Capacity() *atomic.Uintptr { return &h.capacity }

// Origin returns the raw address the allocator produced for this
// allocation. It is the address that must be freed, and may precede the
// Header due to alignment padding.
func (h *Header) Origin() unsafe.Pointer { return h.origin }

// Allocator returns the allocator stored in the header, or nil if no owner
// family has written one yet.
func (h *Header) Allocator() Allocator { return h.alloc }

// SetAllocator stores a into the header's allocator slot.
func (h *Header) SetAllocator(a Allocator) { h.alloc = a }

// TakeAllocator moves the allocator out of the header, leaving the slot
// unset.
func (h *Header) TakeAllocator() Allocator {
	a := h.alloc
	h.alloc = nil
	return a
}
