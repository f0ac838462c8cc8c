package archive

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// Reader decompresses the stream of an archive.
type Reader struct {
	header  Header
	zReader io.ReadCloser
}

// NewReader reads and validates the header from r and returns a reader for
// the decompressed content.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	reader := &Reader{}
	if err := reader.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	reader.zReader = zstd.NewReader(io.LimitReader(r, int64(reader.header.CompressedLength)))
	return reader, nil
}

// Header returns the archive header.
func (r *Reader) Header() Header { return r.header }

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (int, error) { return r.zReader.Read(p) }

// Close releases the decompressor.
func (r *Reader) Close() error { return r.zReader.Close() }

// Length returns the uncompressed data length.
func (r *Reader) Length() int { return int(r.header.Length) }

// ReadAll reads and decompresses a whole archive.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data := make([]byte, reader.Length())
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// Decode decompresses an archive held in memory.
func Decode(data []byte) ([]byte, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	end := uint64(HeaderSize) + h.CompressedLength
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("read content: %w", io.ErrUnexpectedEOF)
	}

	out, err := zstd.Decompress(make([]byte, h.Length), data[HeaderSize:end])
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if uint64(len(out)) != h.Length {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, h.Length, len(out))
	}
	return out, nil
}
