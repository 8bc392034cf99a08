//go:build !unix

package alloc

// OSAllocator falls back to Go-heap slabs on platforms without anonymous
// mappings.
type OSAllocator struct {
	*GoAllocator
}

// NewOSAllocator returns the fallback allocator.
func NewOSAllocator() *OSAllocator {
	return &OSAllocator{NewGoAllocator()}
}
