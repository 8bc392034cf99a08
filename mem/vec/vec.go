// Package vec provides the minimal growable buffer the slice owner family
// converts to and from. Its backing store uses the same allocation-header
// convention as every other owning handle, which is what makes those
// conversions zero-copy.
package vec

import (
	"unsafe"

	"github.com/joshuapare/arckit/mem/alloc"
)

// Vec is a growable buffer of T backed by a Header-prefixed allocation.
// The allocator lives in the Vec itself; the header's allocator slot stays
// unset until the buffer is converted into a slice owner.
//
// A Vec is not safe for concurrent use.
type Vec[T any] struct {
	start    alloc.Ptr[T]
	length   uintptr
	capacity uintptr
	a        alloc.Allocator
}

// NewIn returns an empty Vec using a for its future allocations. No storage
// is allocated until the first push.
func NewIn[T any](a alloc.Allocator) Vec[T] {
	return Vec[T]{start: alloc.Dangling[T](), a: a}
}

// FromSliceIn allocates a Vec holding a copy of s. An empty s allocates
// nothing.
func FromSliceIn[T any](s []T, a alloc.Allocator) (Vec[T], error) {
	v := NewIn[T](a)
	if len(s) == 0 {
		return v, nil
	}
	if err := v.grow(uintptr(len(s))); err != nil {
		return Vec[T]{}, err
	}
	copy(v.sliceCap(), s)
	v.length = uintptr(len(s))
	return v, nil
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return int(v.length) }

// Cap returns the element capacity of the backing store.
func (v *Vec[T]) Cap() int { return int(v.capacity) }

// Slice returns the live elements as a Go slice view. The view is
// invalidated by Push and Free.
func (v *Vec[T]) Slice() []T {
	return unsafe.Slice(v.start.Value(), v.length)
}

// Push appends x, growing the backing store if needed.
func (v *Vec[T]) Push(x T) error {
	if v.length == v.capacity {
		newCap := v.capacity * 2
		if newCap < 4 {
			newCap = 4
		}
		if err := v.grow(newCap); err != nil {
			return err
		}
	}
	*(*T)(unsafe.Add(v.start.Raw(), v.length*unsafe.Sizeof(x))) = x
	v.length++
	return nil
}

// Free releases the backing store, if any. Elements are plain values; no
// finalizers run.
func (v *Vec[T]) Free() {
	if !v.start.IsDangling() && !v.start.IsNil() {
		v.start.Free(v.a)
	}
	*v = Vec[T]{start: alloc.Dangling[T](), a: v.a}
}

// RawComponents dismantles the Vec and returns its backing parts: the start
// owning address, element length and capacity, and the allocator. The Vec
// is left empty; ownership of the backing store passes to the caller.
func (v *Vec[T]) RawComponents() (start alloc.Ptr[T], length, capacity uintptr, a alloc.Allocator) {
	start, length, capacity, a = v.start, v.length, v.capacity, v.a
	*v = Vec[T]{start: alloc.Dangling[T](), a: a}
	return start, length, capacity, a
}

// FromRawComponents reassembles a Vec from parts previously produced by
// RawComponents or by a slice owner's conversion. The parts must describe a
// live Header-prefixed allocation owned by the caller.
func FromRawComponents[T any](start alloc.Ptr[T], length, capacity uintptr, a alloc.Allocator) Vec[T] {
	return Vec[T]{start: start, length: length, capacity: capacity, a: a}
}

// grow resizes the backing store to exactly newCap elements.
func (v *Vec[T]) grow(newCap uintptr) error {
	if v.capacity == 0 && v.start.IsDangling() {
		start, err := alloc.AllocArray[T](v.a, newCap)
		if err != nil {
			return err
		}
		v.start = start
	} else {
		start, err := v.start.Realloc(v.a, v.capacity, newCap)
		if err != nil {
			return err
		}
		v.start = start
	}
	v.capacity = newCap
	return nil
}

func (v *Vec[T]) sliceCap() []T {
	return unsafe.Slice(v.start.Value(), v.capacity)
}
