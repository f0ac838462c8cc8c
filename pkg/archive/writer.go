package archive

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel is the level used when none is given.
const DefaultCompressionLevel = zstd.BestSpeed

// Writer compresses into an archive. The header is written up front and
// patched with the compressed size on Close.
type Writer struct {
	dst     io.WriteSeeker
	start   int64
	zWriter *zstd.Writer
	header  Header
	level   int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

func newWriter(opts []WriterOption) *Writer {
	w := &Writer{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewWriter starts an archive at the current position of dst for length
// bytes of uncompressed content.
func NewWriter(dst io.WriteSeeker, length uint64, opts ...WriterOption) (*Writer, error) {
	w := newWriter(opts)
	w.dst = dst
	w.header = NewHeader(length, 0)

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	w.start = start

	var buf [HeaderSize]byte
	w.header.EncodeTo(buf[:])
	if _, err := dst.Write(buf[:]); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

// Write compresses p.
func (w *Writer) Write(p []byte) (int, error) {
	return w.zWriter.Write(p)
}

// Close flushes the compressor and rewrites the header with the final
// compressed size.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}
	w.header.CompressedLength = uint64(end - w.start - HeaderSize)

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	var buf [HeaderSize]byte
	w.header.EncodeTo(buf[:])
	if _, err := w.dst.Write(buf[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.dst.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	return nil
}

// Encode compresses data and writes it as an archive to dst.
func Encode(dst io.WriteSeeker, data []byte, opts ...WriterOption) error {
	w, err := NewWriter(dst, uint64(len(data)), opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return w.Close()
}

// EncodeBytes compresses data in memory and returns the whole archive.
func EncodeBytes(data []byte, opts ...WriterOption) ([]byte, error) {
	w := newWriter(opts)
	compressed, err := zstd.CompressLevel(nil, data, w.level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	out := make([]byte, HeaderSize, HeaderSize+len(compressed))
	h := NewHeader(uint64(len(data)), uint64(len(compressed)))
	h.EncodeTo(out)
	return append(out, compressed...), nil
}
