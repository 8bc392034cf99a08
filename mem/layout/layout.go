package layout

import (
	"fmt"
	"unsafe"
)

// Layout describes the size and alignment of an allocation request.
// Align must be a power of two; Size need not be a multiple of Align.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Of returns the Layout of a single value of type T.
func Of[T any]() Layout {
	var v T
	return Layout{
		Size:  unsafe.Sizeof(v),
		Align: unsafe.Alignof(v),
	}
}

// Array returns the Layout of n contiguous values of type T.
//
// Panics if n*size overflows uintptr. An under-sized layout handed to an
// allocator would corrupt memory, so overflow is treated as a fatal
// precondition violation rather than an error value.
func Array[T any](n uintptr) Layout {
	elem := Of[T]()
	if elem.Size != 0 && n > ^uintptr(0)/elem.Size {
		panic(fmt.Sprintf("layout: array of %d elements of size %d overflows", n, elem.Size))
	}
	return Layout{
		Size:  elem.Size * n,
		Align: elem.Align,
	}
}

// Concat places other directly after l, padding l's size up to other's
// alignment first. The resulting alignment is the larger of the two.
func (l Layout) Concat(other Layout) Layout {
	size := AlignUp(l.Size, other.Align) + other.Size
	align := l.Align
	if other.Align > align {
		align = other.Align
	}
	return Layout{Size: size, Align: align}
}

// Realign pads l's size up to the next multiple of newAlign and adopts
// newAlign as the layout's alignment.
func (l Layout) Realign(newAlign uintptr) Layout {
	return Layout{Size: AlignUp(l.Size, newAlign), Align: newAlign}
}

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// NextAligned returns the smallest address >= p that is aligned to align.
func NextAligned(p unsafe.Pointer, align uintptr) unsafe.Pointer {
	off := AlignUp(uintptr(p), align) - uintptr(p)
	return unsafe.Add(p, off)
}
