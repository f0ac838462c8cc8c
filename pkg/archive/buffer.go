package archive

import (
	"errors"
	"io"
)

var errNegativeSeek = errors.New("seek before start of buffer")

// Buffer is an in-memory io.ReadWriteSeeker. Writes past the end grow it
// and writes in the middle overwrite.
type Buffer struct {
	buf []byte
	pos int64
}

// NewBuffer returns a Buffer holding data, positioned at its start.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Bytes returns the whole content.
func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Len() int { return len(b.buf) }

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	}
	if pos < 0 {
		return b.pos, errNegativeSeek
	}
	b.pos = pos
	return pos, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, len(b.buf), 2*end)
			copy(grown, b.buf)
			b.buf = grown
		}
		b.buf = b.buf[:end]
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}
