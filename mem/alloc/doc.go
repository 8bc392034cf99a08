// Package alloc provides the allocator capability and the shared
// allocation-header convention used by every owning handle in arckit.
//
// # Overview
//
// Every allocation made through this package is laid out as:
//
//	[ padding ][ Header ][ payload ... ]
//	^origin    ^          ^payload address
//
// The Header always sits immediately before the payload; the origin (the
// raw address the allocator returned) may precede the Header when the
// payload needs stronger alignment than the allocator provided. The Header
// carries the strong and weak reference counts, a capacity slot, the origin
// address, and the allocator instance that produced the storage, so that
// different owning handle types (vectors, single-value owners, slice
// owners, weak observers) can be converted into one another without copying
// or reallocating.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Allocate(layout): Return storage for the layout, or nil
//   - Free(ptr): Release storage previously returned by this instance
//   - Reallocate(ptr, prev, newSize): Resize, preserving contents
//
// A zero-size request always returns nil; callers must special-case empty
// layouts rather than treat nil as ambiguous. Free and Reallocate must only
// be handed addresses produced by a successful Allocate or Reallocate on
// the same instance; violating that is undefined behavior, not a detected
// error.
//
// # Implementations
//
// GoAllocator: Go-heap-backed allocator
//
//   - Over-aligned slabs carved from make([]byte)
//   - Retains every live slab in a registry so the collector never
//     reclaims storage that is only reachable through raw pointers
//
// OSAllocator (unix): page-granular anonymous mappings via mmap
//
//   - Storage lives entirely outside the Go heap
//   - Suited to long-lived allocations and payloads larger than a page
//
// # Owning Addresses
//
// Ptr[T] is a payload address guaranteed to be preceded by a valid Header
// unless it is dangling. Init is the single choke point through which every
// owning handle is constructed; it establishes the layout invariant above
// and resets the counters to strong=1, weak=1. Range[T] extends Ptr[T] with
// an exclusive end address for slice-valued handles.
//
// # Garbage Collector Contract
//
// Payload memory is invisible to the garbage collector. Payloads must not
// hold the only reference to a Go-managed object, and allocator instances
// stored in headers must remain reachable from ordinary Go memory for the
// lifetime of their allocations.
//
// # Thread Safety
//
// GoAllocator and OSAllocator are safe for concurrent use. The Header
// counters are atomic; everything else in a Header is owned by whichever
// handle family initialized it.
//
// # Related Packages
//
//   - github.com/joshuapare/arckit/mem/layout: size/alignment arithmetic
//   - github.com/joshuapare/arckit/mem/arc: reference-counted owners
//   - github.com/joshuapare/arckit/mem/vec: growable buffer collaborator
package alloc
