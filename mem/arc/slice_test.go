package arc_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arckit/internal/alloctest"
	"github.com/joshuapare/arckit/mem/arc"
	"github.com/joshuapare/arckit/mem/vec"
)

func TestFromVecReusesBackingStore(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{1, 2, 3}, ca)
	require.NoError(t, err)
	require.Equal(t, 1, ca.Allocs())
	require.Equal(t, 3, v.Cap())
	addr := &v.Slice()[0]

	s := arc.FromVec(&v)
	defer s.Drop()

	assert.Equal(t, 1, ca.Allocs(), "the conversion allocates nothing")
	assert.Equal(t, 0, ca.Reallocs())
	assert.Equal(t, []int{1, 2, 3}, s.Slice())
	assert.Same(t, addr, &s.Slice()[0], "payload address is unchanged")
	assert.Equal(t, uintptr(1), s.StrongCount())
	assert.Equal(t, uintptr(1), s.WeakCount())
}

func TestFromVecEmptyAllocatesHeaderOnly(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v := vec.NewIn[int](ca)

	s := arc.FromVec(&v)
	assert.Equal(t, 1, ca.Allocs(), "an empty buffer still needs a header for free bookkeeping")
	assert.Equal(t, 0, s.Len())

	s.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestTryIntoVecUniqueSucceeds(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{4, 5, 6}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)
	addr := &s.Slice()[0]

	back, ok := s.TryIntoVec()
	require.True(t, ok)
	assert.Equal(t, 1, ca.Allocs(), "round-trip never copies or reallocates")
	assert.Equal(t, []int{4, 5, 6}, back.Slice())
	assert.Equal(t, 3, back.Cap())
	assert.Same(t, addr, &back.Slice()[0])
	assert.True(t, s.IsNil(), "the slice was consumed")

	require.NoError(t, back.Push(7), "the reconstructed buffer can grow again")
	assert.Equal(t, []int{4, 5, 6, 7}, back.Slice())
	back.Free()
	assert.Equal(t, 0, ca.Live())
}

func TestTryIntoVecSharedFailsUnchanged(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{1, 2}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)
	c := s.Clone()

	_, ok := s.TryIntoVec()
	assert.False(t, ok, "a second strong handle blocks the conversion")
	assert.Equal(t, []int{1, 2}, s.Slice(), "failed conversion leaves the slice intact")
	assert.Equal(t, uintptr(2), s.StrongCount())

	c.Drop()
	w := s.Downgrade()
	_, ok = s.TryIntoVec()
	assert.False(t, ok, "a weak observer blocks the conversion too")
	w.Drop()

	back, ok := s.TryIntoVec()
	require.True(t, ok)
	back.Free()
	assert.Equal(t, 0, ca.Live())
}

func TestTryIntoVecZeroSizeElementFails(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v := vec.NewIn[struct{}](ca)
	require.NoError(t, v.Push(struct{}{}))
	s := arc.FromVec(&v)

	_, ok := s.TryIntoVec()
	assert.False(t, ok, "zero-size elements have no real backing store to reconstruct")
	assert.False(t, s.IsNil())
	s.Drop()
}

func TestFromArcSetsCapacityOne(t *testing.T) {
	a := arc.New(42)
	s := arc.FromArc(a)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, []int{42}, s.Slice())
	assert.Equal(t, uintptr(1), s.StrongCount())
	s.Drop()
}

func TestSliceCloneDropAndFinalizers(t *testing.T) {
	var drops atomic.Int32
	ca := alloctest.NewCounting(nil)

	v := vec.NewIn[tracked](ca)
	for i := 0; i < 3; i++ {
		require.NoError(t, v.Push(tracked{value: i, drops: &drops}))
	}
	s := arc.FromVec(&v)
	c := s.Clone()

	s.Drop()
	assert.Equal(t, int32(0), drops.Load())

	c.Drop()
	assert.Equal(t, int32(3), drops.Load(), "each element finalized exactly once")
	assert.Equal(t, 0, ca.Live())
}

func TestSliceMutRequiresUniqueness(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{1, 2, 3}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)

	m, ok := s.SliceMut()
	require.True(t, ok)
	m[0] = 10

	w := s.Downgrade()
	_, ok = s.SliceMut()
	assert.False(t, ok)
	w.Drop()

	assert.Equal(t, []int{10, 2, 3}, s.Slice())
	s.Drop()
}

func TestWeakSliceUpgrade(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]byte{0xaa}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)
	w := s.Downgrade()

	up, ok := w.Upgrade()
	require.True(t, ok)
	assert.Equal(t, uintptr(2), s.StrongCount())
	up.Drop()

	s.Drop()
	_, ok = w.Upgrade()
	assert.False(t, ok, "no strong handle left to join")

	w.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestForceUpgradeResurrectsPlainData(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{1, 2, 3}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)
	w := s.Downgrade()
	s.Drop()

	res := w.ForceUpgrade()
	assert.Equal(t, []int{1, 2, 3}, res.Slice(), "plain data stays readable while a weak handle lives")
	assert.Equal(t, uintptr(1), res.StrongCount())

	res.Drop()
	w.Drop()
	assert.Equal(t, 0, ca.Live())
}

func TestSliceReleaseAdoptRoundTrip(t *testing.T) {
	ca := alloctest.NewCounting(nil)
	v, err := vec.FromSliceIn([]int{8, 9}, ca)
	require.NoError(t, err)
	s := arc.FromVec(&v)

	r := s.Release()
	assert.True(t, s.IsNil())

	back := arc.AdoptSlice(r)
	assert.Equal(t, []int{8, 9}, back.Slice())
	back.Drop()
	assert.Equal(t, 0, ca.Live())
}
