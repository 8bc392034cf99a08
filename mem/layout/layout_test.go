package layout

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	l := Of[uint64]()
	assert.Equal(t, uintptr(8), l.Size)
	assert.Equal(t, uintptr(8), l.Align)

	type pair struct {
		a uint64
		b uint8
	}
	lp := Of[pair]()
	assert.Equal(t, uintptr(16), lp.Size, "struct size includes trailing padding")
	assert.Equal(t, uintptr(8), lp.Align)

	lz := Of[struct{}]()
	assert.Equal(t, uintptr(0), lz.Size)
	assert.Equal(t, uintptr(1), lz.Align)
}

func TestArray(t *testing.T) {
	l := Array[uint32](5)
	assert.Equal(t, uintptr(20), l.Size)
	assert.Equal(t, uintptr(4), l.Align)

	assert.Equal(t, uintptr(0), Array[uint32](0).Size, "zero-length array has zero size")
	assert.Equal(t, uintptr(0), Array[struct{}](1000).Size, "zero-size element array has zero size")
}

func TestArrayOverflowPanics(t *testing.T) {
	assert.Panics(t, func() {
		Array[uint64](^uintptr(0) / 2)
	}, "overflowing array layout must not be produced silently")
}

// Concat must pad the running size to the appended layout's alignment at the
// point of appending, and the result must carry the larger alignment.
func TestConcat(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Layout
		wantSize  uintptr
		wantAlign uintptr
	}{
		{"no padding needed", Layout{8, 8}, Layout{8, 8}, 16, 8},
		{"pad first to second's align", Layout{5, 1}, Layout{8, 8}, 16, 8},
		{"second smaller align", Layout{16, 8}, Layout{3, 1}, 19, 8},
		{"zero-size second", Layout{12, 4}, Layout{0, 1}, 12, 4},
		{"zero-size first", Layout{0, 1}, Layout{24, 8}, 24, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Concat(tt.b)
			assert.Equal(t, tt.wantSize, got.Size)
			assert.Equal(t, tt.wantAlign, got.Align)
		})
	}
}

func TestRealign(t *testing.T) {
	l := Layout{Size: 20, Align: 4}.Realign(16)
	assert.Equal(t, uintptr(32), l.Size)
	assert.Equal(t, uintptr(16), l.Align)

	// Already aligned sizes are unchanged.
	l = Layout{Size: 32, Align: 4}.Realign(16)
	assert.Equal(t, uintptr(32), l.Size)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uintptr(0), AlignUp(0, 8))
	assert.Equal(t, uintptr(8), AlignUp(1, 8))
	assert.Equal(t, uintptr(8), AlignUp(8, 8))
	assert.Equal(t, uintptr(16), AlignUp(9, 8))
	assert.Equal(t, uintptr(4096), AlignUp(1, 4096))
}

func TestNextAligned(t *testing.T) {
	buf := make([]byte, 128)
	base := unsafe.Pointer(&buf[0])

	p := NextAligned(base, 1)
	assert.Equal(t, base, p, "align 1 never moves the pointer")

	p = NextAligned(unsafe.Add(base, 1), 8)
	require.Zero(t, uintptr(p)%8)
	assert.LessOrEqual(t, uintptr(p)-uintptr(base), uintptr(9), "adjustment stays within one alignment unit")
}
