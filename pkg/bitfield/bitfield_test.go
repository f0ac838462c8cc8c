package bitfield

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name   string
		member Member
		mask   uint32
		mirror uint32
	}{
		{"low nibble", Member{0, 4}, 0x0000000F, 0xF0000000},
		{"middle", Member{4, 8}, 0x00000FF0, 0x0FF00000},
		{"single bit", Member{31, 1}, 0x80000000, 0x00000001},
		{"full", Member{0, 32}, 0xFFFFFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.mask, Mask[uint32](tt.member))
			assert.Equal(t, tt.mirror, MirrorMask[uint32](tt.member))
		})
	}
}

func TestLayout(t *testing.T) {
	l, err := NewLayout(16, 3, 5, 1, 7)
	require.NoError(t, err)

	assert.Equal(t, Member{0, 3}, l.Get(0))
	assert.Equal(t, Member{3, 5}, l.Get(1))
	assert.Equal(t, Member{8, 1}, l.Get(2))
	assert.Equal(t, Member{9, 7}, l.Get(3))
	assert.Equal(t, 16, l.TotalSize())
	assert.Equal(t, []Member{{0, 3}, {3, 5}, {8, 1}, {9, 7}}, l.Members())

	_, err = NewLayout(8, 4, 5)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestSetGetIdempotent(t *testing.T) {
	l, err := NewLayout(32, 4, 12, 1, 15)
	require.NoError(t, err)

	f := NewField[uint32](l)
	values := []uint32{0xA, 0x123, 1, 0x7ABC}
	for i, v := range values {
		f.Set(i, v)
	}
	for i, v := range values {
		assert.Equal(t, v, f.Get(i), "member %d", i)
	}

	// Rewriting one member leaves the others intact.
	f.Set(1, 0xFFF)
	assert.Equal(t, uint32(0xA), f.Get(0))
	assert.Equal(t, uint32(0xFFF), f.Get(1))
	assert.Equal(t, uint32(1), f.Get(2))
	assert.Equal(t, uint32(0x7ABC), f.Get(3))

	// Values wider than the member are truncated.
	f.Set(0, 0x1F)
	assert.Equal(t, uint32(0xF), f.Get(0))
	assert.Equal(t, uint32(0xFFF), f.Get(1))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-1), SignExtend(0x7, 3))
	assert.Equal(t, int64(3), SignExtend(0x3, 3))
	assert.Equal(t, int64(-4), SignExtend(0x4, 3))
	assert.Equal(t, int64(-1), SignExtend(^uint64(0), 64))
}

func TestSwapEndian(t *testing.T) {
	l, _ := NewLayout(16, 8, 8)
	f := NewField[uint16](l)
	f.Set(0, 0x12)
	f.Set(1, 0x34)
	f.SwapEndian()
	assert.Equal(t, uint16(0x34), f.Get(0))
	assert.Equal(t, uint16(0x12), f.Get(1))
}

func BenchmarkSet(b *testing.B) {
	var v uint64
	m := Member{Position: 13, Size: 9}
	for i := 0; i < b.N; i++ {
		Set(&v, m, uint64(i))
	}
}
