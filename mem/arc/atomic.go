package arc

import (
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/arckit/mem/alloc"
)

// AtomicArc is a single slot holding the ownership of at most one Arc,
// updated with atomic load/store/compare-exchange. Only the raw payload
// address lives in the slot; the reference counts stay in the allocation's
// Header, so loading is "read the address, then take a count" rather than
// moving a whole handle.
//
// The zero AtomicArc is an empty slot. All operations are sequentially
// consistent, per Go's memory model.
type AtomicArc[T any] struct {
	p atomic.Pointer[T]
}

// NewAtomicArc returns a slot holding v, consuming it. Pass the zero Arc
// for an empty slot.
func NewAtomicArc[T any](v Arc[T]) *AtomicArc[T] {
	var s AtomicArc[T]
	s.p.Store((*T)(v.Release().Raw()))
	return &s
}

// Load returns a freshly owned handle to the slot's current occupant, or
// false if the slot is empty. The strong count is incremented through the
// occupant's header; the slot keeps its own ownership.
func (s *AtomicArc[T]) Load() (Arc[T], bool) {
	p := s.p.Load()
	if p == nil {
		return Arc[T]{}, false
	}
	ptr := alloc.FromPayload[T](unsafe.Pointer(p))
	ptr.Header().Strong().Add(1)
	return Arc[T]{ptr: ptr}, true
}

// Store places v's ownership into the slot, consuming v. Ownership of the
// previous occupant, if any, transfers to the overwriting path: Store
// itself never decrements the outgoing occupant's count, so a caller that
// may be displacing a value it cannot account for should use Swap instead.
func (s *AtomicArc[T]) Store(v Arc[T]) {
	s.p.Store((*T)(v.Release().Raw()))
}

// Swap places v's ownership into the slot and returns ownership of the
// previous occupant (the zero Arc if the slot was empty). Unlike Store it
// cannot leak the displaced value.
func (s *AtomicArc[T]) Swap(v Arc[T]) Arc[T] {
	old := s.p.Swap((*T)(v.Release().Raw()))
	if old == nil {
		return Arc[T]{}
	}
	return Arc[T]{ptr: alloc.FromPayload[T](unsafe.Pointer(old))}
}

// Is reports whether the slot currently holds the same allocation as
// current, compared by payload address identity. An empty current matches
// an empty slot.
func (s *AtomicArc[T]) Is(current Arc[T]) bool {
	return s.p.Load() == (*T)(current.ptr.Raw())
}

// CompareExchange replaces the slot's occupant with next if the slot still
// holds the same allocation as current, compared by payload address
// identity, never by value.
//
// On success it returns the previous occupant with its ownership
// transferred to the caller (the zero Arc if the slot was empty), and next
// now belongs to the slot: the caller must not drop the handle it passed
// in. On failure it returns a freshly owned handle to the slot's actual
// occupant, so the caller always observes valid state, and next remains
// owned by the caller.
func (s *AtomicArc[T]) CompareExchange(current, next Arc[T]) (Arc[T], bool) {
	cur := (*T)(current.ptr.Raw())
	if s.p.CompareAndSwap(cur, (*T)(next.ptr.Raw())) {
		if cur == nil {
			return Arc[T]{}, true
		}
		return Arc[T]{ptr: current.ptr}, true
	}
	actual := s.p.Load()
	if actual == nil {
		return Arc[T]{}, false
	}
	ptr := alloc.FromPayload[T](unsafe.Pointer(actual))
	ptr.Header().Strong().Add(1)
	return Arc[T]{ptr: ptr}, false
}

// Drop empties the slot, releasing its ownership of the current occupant
// if any.
func (s *AtomicArc[T]) Drop() {
	old := s.p.Swap(nil)
	if old == nil {
		return
	}
	a := Arc[T]{ptr: alloc.FromPayload[T](unsafe.Pointer(old))}
	a.Drop()
}
