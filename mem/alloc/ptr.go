package alloc

import (
	"unsafe"

	"github.com/joshuapare/arckit/mem/layout"
)

// zerobase is the address dangling pointers point at. It is never
// dereferenced; it only gives empty handles a stable non-nil identity.
var zerobase uintptr

// Ptr is an owning address: a non-nil payload pointer guaranteed to be
// preceded by a valid Header unless the pointer is dangling. Copying a Ptr
// copies the address only; it does not touch the reference counts.
type Ptr[T any] struct {
	p unsafe.Pointer
}

// Dangling returns the sentinel owning address used by empty handles.
// It has no Header and must never be dereferenced or freed.
func Dangling[T any]() Ptr[T] {
	return Ptr[T]{p: unsafe.Pointer(&zerobase)}
}

// FromPayload wraps an existing payload address.
//
// p must be a payload address previously produced by Init (directly or via
// AllocPtr/AllocArray/Realloc) and still live, or the dangling sentinel.
func FromPayload[T any](p unsafe.Pointer) Ptr[T] {
	return Ptr[T]{p: p}
}

// IsNil reports whether p is the zero Ptr.
func (p Ptr[T]) IsNil() bool { return p.p == nil }

// IsDangling reports whether p is the dangling sentinel.
func (p Ptr[T]) IsDangling() bool { return p.p == unsafe.Pointer(&zerobase) }

// Raw returns the payload address.
func (p Ptr[T]) Raw() unsafe.Pointer { return p.p }

// Value returns the payload as a typed pointer.
func (p Ptr[T]) Value() *T { return (*T)(p.p) }

// Header returns the allocation header preceding the payload.
// p must not be nil or dangling.
func (p Ptr[T]) Header() *Header {
	return (*Header)(unsafe.Add(p.p, -int(HeaderSize)))
}

// Init carves a Header plus payload region out of raw storage and returns
// the owning address. This is the single choke point through which every
// owner family is constructed: the payload address is raw+HeaderSize
// rounded up to T's alignment, the Header sits immediately before the
// payload, and the counters are reset to strong=1, weak=1. The allocator
// slot is left unset; the owning family writes it.
//
// raw must be aligned to HeaderAlign and valid for at least the size of
// TotalLayout[T](capacity).
func Init[T any](raw unsafe.Pointer, capacity uintptr) Ptr[T] {
	var v T
	payload := layout.NextAligned(unsafe.Add(raw, HeaderSize), unsafe.Alignof(v))
	h := (*Header)(unsafe.Add(payload, -int(HeaderSize)))
	h.strong.Store(1)
	h.weak.Store(1)
	h.capacity.Store(capacity)
	h.origin = raw
	h.alloc = nil
	return Ptr[T]{p: payload}
}

// TotalLayout returns the layout of a Header followed by capacity elements
// of T, with the alignment forced to the Header's own. Payload alignment
// beyond HeaderAlign is absorbed by Init's rounding; both built-in backends
// over-align enough to leave room for it.
func TotalLayout[T any](capacity uintptr) layout.Layout {
	l := layout.Of[Header]().Concat(layout.Array[T](capacity))
	l.Align = HeaderAlign
	return l
}

// AllocPtr allocates storage for a single T preceded by a Header.
// The allocator is not consumed or mutated on failure.
func AllocPtr[T any](a Allocator) (Ptr[T], error) {
	return AllocArray[T](a, 1)
}

// AllocArray allocates storage for capacity elements of T preceded by a
// Header. The allocator is not consumed or mutated on failure.
func AllocArray[T any](a Allocator, capacity uintptr) (Ptr[T], error) {
	raw := a.Allocate(TotalLayout[T](capacity))
	if raw == nil {
		return Ptr[T]{}, ErrAllocFailed
	}
	return Init[T](raw, capacity), nil
}

// Realloc resizes the allocation behind p from prevCap to newCap elements
// and re-runs Init over the result, which re-establishes the counters at
// strong=1, weak=1. It is intended for a growable buffer rebuilding its own
// backing store, not for resizing a live reference-counted allocation: a
// caller that needs the old counter values must re-set them afterwards.
//
// On failure p is untouched and still owned by the caller.
func (p Ptr[T]) Realloc(a Allocator, prevCap, newCap uintptr) (Ptr[T], error) {
	raw := a.Reallocate(p.Header().origin, TotalLayout[T](prevCap), TotalLayout[T](newCap).Size)
	if raw == nil {
		return Ptr[T]{}, ErrReallocFailed
	}
	return Init[T](raw, newCap), nil
}

// Free releases the allocation behind p, handing the allocator the origin
// address rather than the payload address. p must not be dangling and must
// not be used afterwards.
func (p Ptr[T]) Free(a Allocator) {
	a.Free(p.Header().origin)
}

// Range is an owning range: a start owning address plus an exclusive end
// address, scoping one allocation's Header to a contiguous run of elements.
type Range[T any] struct {
	start Ptr[T]
	end   unsafe.Pointer
}

// MakeRange builds a Range of n elements starting at start. For zero-size
// element types the end address encodes the length in bytes, since no real
// backing memory separates the elements.
func MakeRange[T any](start Ptr[T], n uintptr) Range[T] {
	return Range[T]{start: start, end: unsafe.Add(start.p, n*stride[T]())}
}

// RangeBetween builds a Range from explicit start and end addresses.
func RangeBetween[T any](start Ptr[T], end unsafe.Pointer) Range[T] {
	return Range[T]{start: start, end: end}
}

// Start returns the range's owning start address.
func (r Range[T]) Start() Ptr[T] { return r.start }

// End returns the exclusive end address.
func (r Range[T]) End() unsafe.Pointer { return r.end }

// Len returns the number of elements in the range.
func (r Range[T]) Len() uintptr {
	return (uintptr(r.end) - uintptr(r.start.p)) / stride[T]()
}

// Slice returns the range as a Go slice view. The view is only valid while
// the underlying allocation is.
func (r Range[T]) Slice() []T {
	return unsafe.Slice(r.start.Value(), r.Len())
}

// Header returns the allocation header governing the range.
func (r Range[T]) Header() *Header { return r.start.Header() }

func stride[T any]() uintptr {
	var v T
	if s := unsafe.Sizeof(v); s != 0 {
		return s
	}
	return 1
}
