// Package reflbin encodes reflected instances in the chunked binary form used
// by record files.
//
// A record starts with the little-endian class hash followed by a class
// chunk. A chunk is a buint128 byte length and a body holding a buint128
// member count and, per member, its name hash, a buint128 payload length and
// the payload. Readers skip members they do not know and leave members that
// are missing untouched, so records survive schema changes in either
// direction.
package reflbin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/EchoTools/evrReflect/pkg/varint"
)

var (
	// ErrClassMismatch is returned when a record holds a different class than
	// the instance it is loaded into.
	ErrClassMismatch = errors.New("class hash mismatch")
	// ErrUnsupported is returned for members that have no binary form.
	ErrUnsupported = errors.New("unsupported member type")
	// ErrCount is returned when a vector claims more elements than its
	// payload can hold.
	ErrCount = errors.New("element count exceeds payload")
)

const maxPooledBuffer = 1 << 20

var bufferPool = sync.Pool{New: func() interface{} { return bytes.NewBuffer(make([]byte, 0, 256)) }}

func getBuffer() *bytes.Buffer {
	b := bufferPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func putBuffer(b *bytes.Buffer) {
	if b.Cap() <= maxPooledBuffer {
		bufferPool.Put(b)
	}
}

func writeUvarint(b *bytes.Buffer, u uint64) {
	b.Write(varint.AppendUint(b.AvailableBuffer(), u))
}

func writeVarint(b *bytes.Buffer, i int64) {
	b.Write(varint.AppendInt(b.AvailableBuffer(), i))
}

func writeUint32(b *bytes.Buffer, u uint32) {
	b.Write(binary.LittleEndian.AppendUint32(b.AvailableBuffer(), u))
}

// writeRaw writes the low size bytes of word.
func writeRaw(b *bytes.Buffer, word uint64, size uint16) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], word)
	b.Write(tmp[:size])
}

// cursor reads a byte slice front to back.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) ReadByte() (byte, error) {
	if c.off >= len(c.buf) {
		return 0, io.EOF
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// Len returns the number of unread bytes.
func (c *cursor) Len() int { return len(c.buf) - c.off }

func (c *cursor) next(n uint64) ([]byte, error) {
	if n > uint64(c.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.off : c.off+int(n)]
	c.off += int(n)
	return b, nil
}

func (c *cursor) uvarint() (uint64, error) { return varint.ReadUint(c) }

func (c *cursor) varint() (int64, error) { return varint.ReadInt(c) }

func (c *cursor) uint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// raw reads size bytes as a little-endian word.
func (c *cursor) raw(size uint16) (uint64, error) {
	if size > 8 {
		return 0, ErrUnsupported
	}
	b, err := c.next(uint64(size))
	if err != nil {
		return 0, err
	}
	var tmp [8]byte
	copy(tmp[:], b)
	return binary.LittleEndian.Uint64(tmp[:]), nil
}
