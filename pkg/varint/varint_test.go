package varint

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUint(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		got := AppendUint(nil, tt.value)
		assert.Equal(t, tt.want, got, "value %d", tt.value)
		assert.Equal(t, len(tt.want), UintLen(tt.value))

		v, n, err := Uint(got)
		require.NoError(t, err)
		assert.Equal(t, tt.value, v)
		assert.Equal(t, len(got), n)
	}
}

func TestAppendInt(t *testing.T) {
	tests := []struct {
		value int64
		want  []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-1, []byte{0x40}},
		{-64, []byte{0x7f}},
		{-65, []byte{0xc0, 0x40}},
		{math.MinInt64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}},
	}

	for _, tt := range tests {
		got := AppendInt(nil, tt.value)
		assert.Equal(t, tt.want, got, "value %d", tt.value)
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 63, -64, 64, -65, 1000, -1000,
		math.MaxInt32, math.MinInt32,
		1<<55 - 1, 1 << 55, -(1 << 55), -(1 << 55) - 1,
		math.MaxInt64, math.MinInt64,
	}

	var buf []byte
	for _, v := range values {
		buf = AppendInt(buf, v)
	}

	r := bytes.NewReader(buf)
	for _, want := range values {
		got, err := ReadInt(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ReadInt(r)
	assert.Equal(t, io.EOF, err)

	for _, v := range values {
		assert.LessOrEqual(t, len(AppendInt(nil, v)), MaxLen)
	}
}

func TestTruncated(t *testing.T) {
	_, err := ReadUint(bytes.NewReader([]byte{0x80}))
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	_, _, err = Int([]byte{0xc0})
	assert.ErrorIs(t, err, ErrOverflow)
}

func BenchmarkAppendInt(b *testing.B) {
	buf := make([]byte, 0, MaxLen)
	for i := 0; i < b.N; i++ {
		buf = AppendInt(buf[:0], int64(i)-int64(b.N/2))
	}
}
