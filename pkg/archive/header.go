// Package archive reads and writes the ZSTD container that wraps record
// files and descriptor databases: a fixed 24 byte header followed by a
// single zstd stream.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic bytes identifying a ZSTD archive header.
var Magic = [4]byte{0x5a, 0x53, 0x54, 0x44} // "ZSTD"

const (
	// HeaderSize is the fixed binary size of an archive header.
	HeaderSize = 24

	// headerLength is the number of header bytes after the length field.
	headerLength = 16
)

var (
	ErrInvalidMagic   = errors.New("invalid archive magic")
	ErrHeaderLength   = errors.New("invalid archive header length")
	ErrEmpty          = errors.New("archive is empty")
	ErrLengthMismatch = errors.New("decompressed length mismatch")
)

// Header describes the compressed stream that follows it.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // Uncompressed size
	CompressedLength uint64 // Compressed size, excluding the header
}

// NewHeader returns a header for a stream of the given sizes.
func NewHeader(length, compressedLength uint64) Header {
	return Header{
		Magic:            Magic,
		HeaderLength:     headerLength,
		Length:           length,
		CompressedLength: compressedLength,
	}
}

// Validate checks the magic, the header length and the sizes.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: %x", ErrInvalidMagic, h.Magic)
	}
	if h.HeaderLength != headerLength {
		return fmt.Errorf("%w: expected %d, got %d", ErrHeaderLength, headerLength, h.HeaderLength)
	}
	if h.Length == 0 || h.CompressedLength == 0 {
		return ErrEmpty
	}
	return nil
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(buf[4:8])
	h.Length = binary.LittleEndian.Uint64(buf[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[16:24])
}

// IsArchive reports whether data starts with an archive header.
func IsArchive(data []byte) bool {
	return len(data) >= HeaderSize && bytes.Equal(data[:4], Magic[:])
}
