package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
)

func benchData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// BenchmarkCompression compares compression levels on record-sized input.
func BenchmarkCompression(b *testing.B) {
	data := benchData(256 * 1024)

	for _, level := range []int{zstd.BestSpeed, zstd.DefaultCompression} {
		b.Run(zstdLevelName(level), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if _, err := EncodeBytes(data, WithCompressionLevel(level)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func zstdLevelName(level int) string {
	if level == zstd.BestSpeed {
		return "BestSpeed"
	}
	return "Default"
}

// BenchmarkHeader benchmarks header operations.
func BenchmarkHeader(b *testing.B) {
	header := NewHeader(1024*1024, 512*1024)

	b.Run("EncodeTo", func(b *testing.B) {
		buf := make([]byte, HeaderSize)
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	data, _ := header.MarshalBinary()
	b.Run("DecodeFrom", func(b *testing.B) {
		var h Header
		for i := 0; i < b.N; i++ {
			h.DecodeFrom(data)
		}
	})
}

// BenchmarkDecode compares the streaming and in-memory readers.
func BenchmarkDecode(b *testing.B) {
	encoded, err := EncodeBytes(benchData(1024 * 1024))
	if err != nil {
		b.Fatal(err)
	}

	b.Run("ReadAll", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Decode", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Decode(encoded); err != nil {
				b.Fatal(err)
			}
		}
	})
}
