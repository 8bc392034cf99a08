// Package arc provides atomically reference-counted owning handles over
// Header-prefixed allocations: single-value owners (Arc, Weak), slice
// owners (ArcSlice, WeakSlice), and an atomically swappable single-slot
// owner (AtomicArc).
//
// # Ownership Model
//
// Go has no destructors or move semantics, so ownership is a runtime
// discipline: every handle obtained from a constructor, Clone, Downgrade,
// Upgrade, or a slot operation must be dropped exactly once. Dropping the
// last strong handle finalizes the payload (values implementing Dropper)
// and releases the implicit weak reference the strong owners share;
// dropping the last weak handle frees the memory through the allocator
// stored in the header.
//
// # Lifecycle
//
//	NewIn            strong=1 weak=1
//	Clone            strong+1
//	Downgrade        weak+1
//	Drop (strong)    strong-1; on 1->0: finalize payload, then weak-1
//	Drop (weak)      weak-1;   on 1->0: free via the header's allocator
//
// The payload is finalized exactly once, when the strong count reaches
// zero; the memory is freed exactly once, when the weak count reaches
// zero. The weak count is never observed at 0 while the allocation exists.
//
// # Exclusive Access
//
// Mutable access is gated on uniqueness: strong==1 and weak==1, re-checked
// on every call because a concurrent Clone or Drop invalidates any cached
// observation. GetMut and SliceMut perform the check; the Unchecked
// variants are for callers who have proven uniqueness by other means.
// Mutating without a passing check is a precondition violation, not a
// detected error.
//
// # Weak Upgrade
//
// Upgrade repurposes the strong counter's top bit as a transient marker so
// that a weak handle can never resurrect a payload whose strong count has
// already reached zero, without any lock. ForceUpgrade on WeakSlice
// knowingly bypasses that guarantee for plain-data elements and should be
// treated as an escape hatch, not an upgrade path.
//
// # Memory Ordering
//
// Go's sync/atomic operations are sequentially consistent, which is at
// least as strong as every ordering the counting protocol needs, so no
// operation takes an ordering parameter.
//
// # Thread Safety
//
// All count manipulation is lock-free and safe for concurrent use. A
// single handle value is not safe for concurrent method calls; share the
// allocation by giving each goroutine its own Clone.
//
// # Related Packages
//
//   - github.com/joshuapare/arckit/mem/alloc: header and owning addresses
//   - github.com/joshuapare/arckit/mem/vec: growable buffer conversions
package arc
