package arc

import (
	"fmt"

	"github.com/joshuapare/arckit/mem/alloc"
)

// topBit is the strong counter's transient upgrade-in-progress marker.
const topBit = ^(^uintptr(0) >> 1)

// Dropper is implemented by payload types that need finalization when the
// last strong handle is dropped.
type Dropper interface {
	DropValue()
}

// Arc is a strong, atomically reference-counted owner of a single value.
// The zero Arc is empty ("none"): it owns nothing and Drop on it is a
// no-op.
type Arc[T any] struct {
	ptr alloc.Ptr[T]
}

// Weak is a non-owning observer of an Arc's allocation. It keeps the
// backing memory alive but not the payload; Upgrade is required to access
// the value.
type Weak[T any] struct {
	ptr alloc.Ptr[T]
}

// New allocates an Arc holding value using the default allocator.
// Panics if allocation fails.
func New[T any](value T) Arc[T] {
	return NewIn(value, alloc.Default)
}

// NewIn allocates an Arc holding value using a.
// Panics if allocation fails; use TryNewIn to handle failure as a value.
func NewIn[T any](value T, a alloc.Allocator) Arc[T] {
	v, err := TryNewIn(value, a)
	if err != nil {
		panic(fmt.Sprintf("arc: %v", err))
	}
	return v
}

// TryNew allocates an Arc holding value using the default allocator.
func TryNew[T any](value T) (Arc[T], error) {
	return TryNewIn(value, alloc.Default)
}

// TryNewIn allocates an Arc holding value using a. On failure the caller
// still holds value and a; nothing is consumed.
func TryNewIn[T any](value T, a alloc.Allocator) (Arc[T], error) {
	v, _, err := TryMakeIn(a, func(slot *T) error {
		*slot = value
		return nil
	})
	return v, err
}

// TryMakeIn allocates storage and initializes it in place with ctor.
//
// On allocator failure it returns ErrAllocFailed without running ctor; the
// allocator is untouched. On ctor failure it returns ctor's error together
// with the still-allocated storage as a raw owning address (counters at
// strong=1, weak=1, allocator slot set) so the caller can reuse it or
// release it with Adopt followed by Drop, rather than losing the
// allocation.
func TryMakeIn[T any](a alloc.Allocator, ctor func(*T) error) (Arc[T], alloc.Ptr[T], error) {
	p, err := alloc.AllocPtr[T](a)
	if err != nil {
		return Arc[T]{}, alloc.Ptr[T]{}, err
	}
	p.Header().SetAllocator(a)
	if err := ctor(p.Value()); err != nil {
		return Arc[T]{}, p, err
	}
	return Arc[T]{ptr: p}, alloc.Ptr[T]{}, nil
}

// IsNil reports whether a is the empty Arc.
func (a Arc[T]) IsNil() bool { return a.ptr.IsNil() }

// Get returns the payload. a must not be empty.
func (a Arc[T]) Get() *T { return a.ptr.Value() }

// Clone returns a new strong handle to the same allocation.
func (a Arc[T]) Clone() Arc[T] {
	a.ptr.Header().Strong().Add(1)
	return Arc[T]{ptr: a.ptr}
}

// Drop gives up this strong handle. When the strong count reaches zero the
// payload is finalized and the strong owners' shared weak reference is
// released, which frees the memory once no weak observers remain. The
// handle is cleared; dropping an empty Arc is a no-op.
func (a *Arc[T]) Drop() {
	if a.ptr.IsNil() {
		return
	}
	p := a.ptr
	a.ptr = alloc.Ptr[T]{}
	if p.Header().Strong().Add(^uintptr(0)) != 0 {
		return
	}
	finalize(p.Value())
	w := Weak[T]{ptr: p}
	w.Drop()
}

// GetMut returns exclusive access to the payload, or false if any other
// strong or weak handle exists. The check is re-done on every call; a
// concurrent Clone or Downgrade invalidates previous observations.
func (a Arc[T]) GetMut() (*T, bool) {
	if !a.IsUnique() {
		return nil, false
	}
	return a.ptr.Value(), true
}

// GetMutUnchecked returns the payload for mutation without a uniqueness
// check. The caller must have independently proven uniqueness; mutating a
// shared payload is undefined behavior.
func (a Arc[T]) GetMutUnchecked() *T { return a.ptr.Value() }

// MakeMut returns exclusive access to the payload, copying the value into
// a freshly allocated Arc (using the same allocator) first if a is not
// unique. The copy is shallow; payloads holding shared state need their
// own deep-copy step. Panics if the copy's allocation fails.
func (a *Arc[T]) MakeMut() *T {
	if !a.IsUnique() {
		fresh := NewIn(*a.ptr.Value(), a.ptr.Header().Allocator())
		a.Drop()
		*a = fresh
	}
	return a.ptr.Value()
}

// Downgrade returns a new weak handle to the same allocation.
func (a Arc[T]) Downgrade() Weak[T] {
	a.ptr.Header().Weak().Add(1)
	return Weak[T]{ptr: a.ptr}
}

// StrongCount returns the current strong count. Observational only: it may
// be stale by the time it is read and must not gate correctness decisions.
func (a Arc[T]) StrongCount() uintptr { return a.ptr.Header().Strong().Load() }

// WeakCount returns the current weak count. Observational only.
func (a Arc[T]) WeakCount() uintptr { return a.ptr.Header().Weak().Load() }

// IsUnique reports whether a is the sole owner, counting weak observers.
func (a Arc[T]) IsUnique() bool {
	return a.StrongCount() == 1 && a.WeakCount() == 1
}

// Allocator returns the allocator that produced this allocation.
func (a Arc[T]) Allocator() alloc.Allocator { return a.ptr.Header().Allocator() }

// TryUnwrap moves the value out and releases the allocation if a is the
// sole owner. On failure a is unchanged and still owned by the caller. The
// payload finalizer does not run; the caller received the value.
func (a *Arc[T]) TryUnwrap() (T, bool) {
	if !a.IsUnique() {
		var zero T
		return zero, false
	}
	v := *a.ptr.Value()
	w := Weak[T]{ptr: a.ptr}
	a.ptr = alloc.Ptr[T]{}
	w.Drop()
	return v, true
}

// Release gives up tracked ownership and returns the raw owning address,
// leaving the counts untouched. Every Release must be matched by exactly
// one Adopt, or the allocation leaks.
func (a *Arc[T]) Release() alloc.Ptr[T] {
	p := a.ptr
	a.ptr = alloc.Ptr[T]{}
	return p
}

// Adopt resumes tracked ownership of an address previously produced by
// Release. p must not have been adopted already.
func Adopt[T any](p alloc.Ptr[T]) Arc[T] {
	return Arc[T]{ptr: p}
}

// Clone returns a new weak handle to the same allocation.
func (w Weak[T]) Clone() Weak[T] {
	w.ptr.Header().Weak().Add(1)
	return Weak[T]{ptr: w.ptr}
}

// Drop gives up this weak handle. When the weak count reaches zero the
// backing memory is freed through the allocator stored in the header.
// Dropping an empty Weak is a no-op.
func (w *Weak[T]) Drop() {
	if w.ptr.IsNil() {
		return
	}
	p := w.ptr
	w.ptr = alloc.Ptr[T]{}
	h := p.Header()
	if h.Weak().Add(^uintptr(0)) != 0 {
		return
	}
	a := h.TakeAllocator()
	p.Free(a)
}

// Upgrade attempts to obtain a strong handle. It fails, returning false,
// exactly when no strong handle currently exists: a destroyed payload is
// never resurrected.
//
// The strong counter's top bit serves as a transient marker. Setting it
// while observing a zero count (or a count where only the marker is set,
// meaning a concurrent attempt is resolving the same zero) proves the
// payload is gone; the counter is then restored to zero. Observing a real
// nonzero count admits the new owner before the marker is cleared.
func (w Weak[T]) Upgrade() (Arc[T], bool) {
	strong := w.ptr.Header().Strong()
	switch prev := strong.Or(topBit); prev {
	case 0, topBit:
		strong.Store(0)
		return Arc[T]{}, false
	default:
		strong.Add(1)
		strong.And(^topBit)
		return Arc[T]{ptr: w.ptr}, true
	}
}

// ReleaseWeak gives up tracked ownership of the weak handle, returning the
// raw owning address. Pair with AdoptWeak exactly once.
func (w *Weak[T]) ReleaseWeak() alloc.Ptr[T] {
	p := w.ptr
	w.ptr = alloc.Ptr[T]{}
	return p
}

// AdoptWeak resumes tracked ownership of a weak handle's address.
func AdoptWeak[T any](p alloc.Ptr[T]) Weak[T] {
	return Weak[T]{ptr: p}
}

func finalize[T any](v *T) {
	if d, ok := any(v).(Dropper); ok {
		d.DropValue()
	}
}
