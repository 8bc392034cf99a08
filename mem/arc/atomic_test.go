package arc_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arckit/internal/alloctest"
	"github.com/joshuapare/arckit/mem/arc"
)

func TestAtomicArcLoadIncrementsStrong(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	p := arc.NewIn(1, ca)
	slot := arc.NewAtomicArc(p.Clone())

	got, ok := slot.Load()
	require.True(t, ok)
	assert.Equal(t, 1, *got.Get())
	assert.Equal(t, uintptr(3), p.StrongCount(), "caller + slot + loaded handle")

	got.Drop()
	slot.Drop()
	p.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestAtomicArcEmptySlot(t *testing.T) {
	var slot arc.AtomicArc[int]

	_, ok := slot.Load()
	assert.False(t, ok)
	assert.True(t, slot.Is(arc.Arc[int]{}), "the zero Arc matches an empty slot")
	slot.Drop()
}

func TestAtomicArcSwap(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	p1 := arc.NewIn(1, ca)
	p2 := arc.NewIn(2, ca)

	slot := arc.NewAtomicArc(p1.Clone())
	old := slot.Swap(p2.Clone())
	require.False(t, old.IsNil())
	assert.Equal(t, 1, *old.Get(), "swap returns the displaced occupant's ownership")

	old.Drop()
	slot.Drop()
	p1.Drop()
	p2.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestAtomicArcCompareExchange(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	p1 := arc.NewIn(1, ca)
	p2 := arc.NewIn(2, ca)
	p3 := arc.NewIn(3, ca)

	slot := arc.NewAtomicArc(p1.Clone())

	// The slot holds P1, so exchanging P1 for P2 succeeds and hands back
	// ownership of the occupant.
	prev, ok := slot.CompareExchange(p1, p2.Clone())
	require.True(t, ok)
	assert.Equal(t, 1, *prev.Get())
	prev.Drop()

	// The slot now holds P2, so a second attempt against P1 fails; the
	// caller gets a freshly owned view of the actual occupant and keeps
	// the proposed value.
	p3c := p3.Clone()
	actual, ok := slot.CompareExchange(p1, p3c)
	require.False(t, ok)
	assert.Equal(t, 2, *actual.Get())
	actual.Drop()
	p3c.Drop()

	slot.Drop()
	p1.Drop()
	p2.Drop()
	p3.Drop()
	assert.Equal(t, 0, ca.Live(), "every handle accounted for across both outcomes")
}

func TestAtomicArcCompareExchangeFromEmpty(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	p := arc.NewIn(5, ca)

	var slot arc.AtomicArc[int]
	prev, ok := slot.CompareExchange(arc.Arc[int]{}, p.Clone())
	require.True(t, ok)
	assert.True(t, prev.IsNil(), "an empty slot has no previous occupant to return")

	slot.Drop()
	p.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestAtomicArcIs(t *testing.T) {
	p1 := arc.New(1)
	p2 := arc.New(1)
	slot := arc.NewAtomicArc(p1.Clone())

	assert.True(t, slot.Is(p1), "identity is by address")
	assert.False(t, slot.Is(p2), "equal values are still different allocations")

	slot.Drop()
	p1.Drop()
	p2.Drop()
}

func TestAtomicArcConcurrentLoadStore(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	p1 := arc.NewIn(1, ca)
	p2 := arc.NewIn(2, ca)

	slot := arc.NewAtomicArc(p1.Clone())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if got, ok := slot.Load(); ok {
					v := *got.Get()
					assert.True(t, v == 1 || v == 2)
					got.Drop()
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		old := slot.Swap(p2.Clone())
		old.Drop()
		old = slot.Swap(p1.Clone())
		old.Drop()
	}
	wg.Wait()

	slot.Drop()
	p1.Drop()
	p2.Drop()
	assert.Equal(t, 0, ca.Live())
}
