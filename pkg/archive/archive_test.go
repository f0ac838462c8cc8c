package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(1024, 512)

		data, err := original.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, HeaderSize)
		assert.True(t, IsArchive(data))

		var decoded Header
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, original, decoded)
	})

	tests := []struct {
		name   string
		header Header
		want   error
	}{
		{"InvalidMagic", Header{HeaderLength: headerLength, Length: 1, CompressedLength: 1}, ErrInvalidMagic},
		{"HeaderLength", Header{Magic: Magic, HeaderLength: 8, Length: 1, CompressedLength: 1}, ErrHeaderLength},
		{"ZeroLength", NewHeader(0, 512), ErrEmpty},
		{"ZeroCompressed", NewHeader(512, 0), ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.header.Validate(), tt.want)
		})
	}

	t.Run("Short", func(t *testing.T) {
		var h Header
		assert.Error(t, h.UnmarshalBinary(make([]byte, HeaderSize-1)))
		assert.False(t, IsArchive([]byte("ZSTD")))
	})
}

func TestReadWrite(t *testing.T) {
	original := bytes.Repeat([]byte("record payload "), 64)

	t.Run("StreamRoundTrip", func(t *testing.T) {
		buf := NewBuffer(nil)
		require.NoError(t, Encode(buf, original, WithCompressionLevel(3)))

		var h Header
		require.NoError(t, h.UnmarshalBinary(buf.Bytes()))
		assert.Equal(t, uint64(len(original)), h.Length)
		assert.Equal(t, uint64(buf.Len()-HeaderSize), h.CompressedLength)

		decoded, err := ReadAll(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("InMemoryRoundTrip", func(t *testing.T) {
		data, err := EncodeBytes(original)
		require.NoError(t, err)
		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)

		// Both encoders produce interchangeable archives.
		streamed, err := ReadAll(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, original, streamed)
	})

	t.Run("AfterPrefix", func(t *testing.T) {
		buf := NewBuffer(nil)
		_, err := buf.Write([]byte("prefix"))
		require.NoError(t, err)
		require.NoError(t, Encode(buf, original))

		decoded, err := Decode(buf.Bytes()[len("prefix"):])
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("Truncated", func(t *testing.T) {
		data, err := EncodeBytes(original)
		require.NoError(t, err)
		_, err = Decode(data[:len(data)-1])
		assert.Error(t, err)
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		_, err := Decode(make([]byte, HeaderSize))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(nil)
	_, _ = b.Write([]byte("hello world"))
	_, err := b.Seek(0, 0)
	require.NoError(t, err)
	_, _ = b.Write([]byte("J"))
	pos, err := b.Seek(0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos)
	assert.Equal(t, "Jello world", string(b.Bytes()))

	_, err = b.Seek(-1, 0)
	assert.Error(t, err)
}
