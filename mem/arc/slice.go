package arc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/arckit/mem/alloc"
	"github.com/joshuapare/arckit/mem/vec"
)

// ArcSlice is a strong, atomically reference-counted owner of a contiguous
// run of elements governed by a single Header. The zero ArcSlice is empty.
type ArcSlice[T any] struct {
	r alloc.Range[T]
}

// WeakSlice is the non-owning observer of an ArcSlice's allocation.
type WeakSlice[T any] struct {
	r alloc.Range[T]
}

// FromVec converts a growable buffer into an ArcSlice.
// Panics if the buffer is empty and the zero-length header allocation
// fails; use TryFromVec to handle that as a value.
func FromVec[T any](v *vec.Vec[T]) ArcSlice[T] {
	s, err := TryFromVec(v)
	if err != nil {
		panic(fmt.Sprintf("arc: %v", err))
	}
	return s
}

// TryFromVec converts a growable buffer into an ArcSlice, consuming the
// buffer.
//
// A buffer with nonzero capacity donates its backing store: the existing
// header is reused in place (counters reset to strong=1, weak=1, the
// buffer's capacity recorded, the allocator moved into the header slot)
// and the payload address and contents are untouched. No allocation or
// copy happens.
//
// An empty buffer has no backing store, so a zero-length header is
// allocated to keep header-relative bookkeeping valid. Its capacity slot
// holds 0 for ordinary element types; for zero-size element types, where
// no real backing memory can exist, it holds the maximum count still
// addressable from the payload.
func TryFromVec[T any](v *vec.Vec[T]) (ArcSlice[T], error) {
	start, length, capacity, a := v.RawComponents()
	if capacity != 0 {
		h := start.Header()
		h.Strong().Store(1)
		h.Weak().Store(1)
		h.Capacity().Store(capacity)
		h.SetAllocator(a)
		return ArcSlice[T]{r: alloc.MakeRange(start, length)}, nil
	}
	fresh, err := alloc.AllocArray[T](a, 0)
	if err != nil {
		return ArcSlice[T]{}, err
	}
	h := fresh.Header()
	var elem T
	if unsafe.Sizeof(elem) == 0 {
		h.Capacity().Store(^uintptr(0) - uintptr(fresh.Raw()))
	} else {
		h.Capacity().Store(0)
	}
	h.SetAllocator(a)
	return ArcSlice[T]{r: alloc.MakeRange(fresh, length)}, nil
}

// FromArc converts a single-value owner into a one-element ArcSlice,
// consuming it. The capacity slot is set to 1; counts are unchanged.
func FromArc[T any](a Arc[T]) ArcSlice[T] {
	p := a.Release()
	p.Header().Capacity().Store(1)
	return ArcSlice[T]{r: alloc.MakeRange(p, 1)}
}

// TryIntoVec converts the slice back into a growable buffer without
// copying, consuming the slice. It succeeds only when the element type has
// nonzero size and the slice is unique (strong==1, weak==1); the buffer's
// start, length and capacity are reconstructed from the header and the
// allocator is moved back out of the header slot. No finalizer runs and
// nothing is freed.
//
// On failure the slice is returned to the caller unchanged: the conversion
// is retryable and loses nothing.
func (s *ArcSlice[T]) TryIntoVec() (vec.Vec[T], bool) {
	var elem T
	if unsafe.Sizeof(elem) == 0 || !s.IsUnique() {
		return vec.Vec[T]{}, false
	}
	h := s.r.Header()
	capacity := h.Capacity().Load()
	a := h.TakeAllocator()
	v := vec.FromRawComponents(s.r.Start(), s.r.Len(), capacity, a)
	s.r = alloc.Range[T]{}
	return v, true
}

// IsNil reports whether s is the empty ArcSlice.
func (s ArcSlice[T]) IsNil() bool { return s.r.Start().IsNil() }

// Len returns the number of elements.
func (s ArcSlice[T]) Len() int { return int(s.r.Len()) }

// IsEmpty reports whether the slice has no elements.
func (s ArcSlice[T]) IsEmpty() bool { return s.Len() == 0 }

// Slice returns the elements as a Go slice view, valid while a strong
// handle lives.
func (s ArcSlice[T]) Slice() []T { return s.r.Slice() }

// SliceMut returns the elements for mutation, or false if any other strong
// or weak handle exists.
func (s ArcSlice[T]) SliceMut() ([]T, bool) {
	if !s.IsUnique() {
		return nil, false
	}
	return s.r.Slice(), true
}

// SliceMutUnchecked returns the elements for mutation without a uniqueness
// check. The caller must have independently proven uniqueness.
func (s ArcSlice[T]) SliceMutUnchecked() []T { return s.r.Slice() }

// Clone returns a new strong handle to the same range.
func (s ArcSlice[T]) Clone() ArcSlice[T] {
	s.r.Header().Strong().Add(1)
	return ArcSlice[T]{r: s.r}
}

// Drop gives up this strong handle. When the strong count reaches zero
// every element is finalized and the strong owners' shared weak reference
// is released. Dropping an empty ArcSlice is a no-op.
func (s *ArcSlice[T]) Drop() {
	if s.r.Start().IsNil() {
		return
	}
	r := s.r
	s.r = alloc.Range[T]{}
	if r.Header().Strong().Add(^uintptr(0)) != 0 {
		return
	}
	elems := r.Slice()
	for i := range elems {
		finalize(&elems[i])
	}
	w := WeakSlice[T]{r: r}
	w.Drop()
}

// Downgrade returns a new weak handle to the same range.
func (s ArcSlice[T]) Downgrade() WeakSlice[T] {
	s.r.Header().Weak().Add(1)
	return WeakSlice[T]{r: s.r}
}

// StrongCount returns the current strong count. Observational only.
func (s ArcSlice[T]) StrongCount() uintptr { return s.r.Header().Strong().Load() }

// WeakCount returns the current weak count. Observational only.
func (s ArcSlice[T]) WeakCount() uintptr { return s.r.Header().Weak().Load() }

// IsUnique reports whether s is the sole owner, counting weak observers.
func (s ArcSlice[T]) IsUnique() bool {
	return s.StrongCount() == 1 && s.WeakCount() == 1
}

// Release gives up tracked ownership and returns the raw owning range,
// leaving the counts untouched. Pair with AdoptSlice exactly once.
func (s *ArcSlice[T]) Release() alloc.Range[T] {
	r := s.r
	s.r = alloc.Range[T]{}
	return r
}

// AdoptSlice resumes tracked ownership of a range previously produced by
// Release.
func AdoptSlice[T any](r alloc.Range[T]) ArcSlice[T] {
	return ArcSlice[T]{r: r}
}

// Clone returns a new weak handle to the same range.
func (w WeakSlice[T]) Clone() WeakSlice[T] {
	w.r.Header().Weak().Add(1)
	return WeakSlice[T]{r: w.r}
}

// Drop gives up this weak handle, freeing the backing memory if it was the
// last one. Dropping an empty WeakSlice is a no-op.
func (w *WeakSlice[T]) Drop() {
	if w.r.Start().IsNil() {
		return
	}
	r := w.r
	w.r = alloc.Range[T]{}
	h := r.Header()
	if h.Weak().Add(^uintptr(0)) != 0 {
		return
	}
	a := h.TakeAllocator()
	r.Start().Free(a)
}

// Upgrade attempts to obtain a strong handle, using the same top-bit
// protocol as Weak.Upgrade: it never resurrects a range whose strong count
// has already reached zero.
func (w WeakSlice[T]) Upgrade() (ArcSlice[T], bool) {
	strong := w.r.Header().Strong()
	switch prev := strong.Or(topBit); prev {
	case 0, topBit:
		strong.Store(0)
		return ArcSlice[T]{}, false
	default:
		strong.Add(1)
		strong.And(^topBit)
		return ArcSlice[T]{r: w.r}, true
	}
}

// ForceUpgrade returns a strong handle even after every strong owner has
// dropped, by incrementing the strong count directly. For plain-data
// element types the memory stays readable until the weak count also
// reaches zero, which is the only thing that makes this defensible. It
// bypasses Upgrade's no-resurrection guarantee: elements needing
// finalization were already finalized, and a program that reaches for this
// usually has an ownership problem upstream. Not an upgrade path; an
// escape hatch.
func (w WeakSlice[T]) ForceUpgrade() ArcSlice[T] {
	h := w.r.Header()
	switch h.Strong().Add(1) - 1 {
	case 0, topBit:
		// The strong owners' shared weak reference was already released;
		// restore it for the handle being created.
		h.Weak().Add(1)
	}
	return ArcSlice[T]{r: w.r}
}
