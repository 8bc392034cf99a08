package alloc

import "errors"

var (
	// ErrAllocFailed indicates the backing allocator returned nil for a
	// non-zero-size request.
	ErrAllocFailed = errors.New("alloc: allocation failed")

	// ErrReallocFailed indicates a resize failed; the original allocation
	// is still valid and owned by the caller.
	ErrReallocFailed = errors.New("alloc: reallocation failed")
)
