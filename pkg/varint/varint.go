// Package varint implements the variable length integers used by the
// reflected binary format.
//
// Unsigned values (buint128) are stored as little-endian groups of seven bits,
// with the high bit of every byte marking a continuation. Signed values
// (bint128) use the same groups, but the last byte carries six bits and a
// flag that tells the reader to invert the result, so small negative numbers
// stay small. Both forms end after at most nine bytes; the ninth byte always
// holds the top eight bits verbatim.
package varint

import (
	"errors"
	"io"
)

// MaxLen is the longest encoding of a 64-bit value.
const MaxLen = 9

const (
	continuation = 0x80
	invert       = 0x40
	signedMax    = 1 << 55
)

// ErrOverflow is reported by the slice decoders when the input ends
// before the number does.
var ErrOverflow = errors.New("varint: truncated value")

// AppendUint appends the buint128 encoding of v to dst.
func AppendUint(dst []byte, v uint64) []byte {
	for i := 0; ; i++ {
		if i == MaxLen-1 {
			return append(dst, byte(v))
		}
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|continuation)
	}
}

// AppendInt appends the bint128 encoding of v to dst.
func AppendInt(dst []byte, v int64) []byte {
	u := uint64(v)
	negative := false
	if v < 0 && ^u < signedMax {
		u = ^u
		negative = true
	}

	for i := 0; ; i++ {
		if i == MaxLen-1 {
			return append(dst, byte(u))
		}
		if u < invert {
			b := byte(u)
			if negative {
				b |= invert
			}
			return append(dst, b)
		}
		dst = append(dst, byte(u&0x7f)|continuation)
		u >>= 7
	}
}

// ReadUint decodes a buint128 value.
func ReadUint(r io.ByteReader) (uint64, error) {
	var v uint64
	for id := 0; id < MaxLen; id++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(id, err)
		}
		if id == MaxLen-1 {
			v |= uint64(b) << 56
			break
		}
		v |= uint64(b&0x7f) << (7 * id)
		if b&continuation == 0 {
			break
		}
	}
	return v, nil
}

// ReadInt decodes a bint128 value.
func ReadInt(r io.ByteReader) (int64, error) {
	var v uint64
	for id := 0; id < MaxLen; id++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eof(id, err)
		}
		if id == MaxLen-1 {
			v |= uint64(b) << 56
			break
		}
		if b&continuation != 0 {
			v |= uint64(b&0x7f) << (7 * id)
			continue
		}
		v |= uint64(b&0x3f) << (7 * id)
		if b&invert != 0 {
			v = ^v
		}
		break
	}
	return int64(v), nil
}

func eof(id int, err error) error {
	if id > 0 && err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

type sliceReader struct {
	buf []byte
	n   int
}

func (s *sliceReader) ReadByte() (byte, error) {
	if s.n >= len(s.buf) {
		return 0, io.EOF
	}
	b := s.buf[s.n]
	s.n++
	return b, nil
}

// Uint decodes a buint128 value from the start of buf and returns the
// number of bytes consumed.
func Uint(buf []byte) (uint64, int, error) {
	r := sliceReader{buf: buf}
	v, err := ReadUint(&r)
	if err != nil {
		return 0, 0, ErrOverflow
	}
	return v, r.n, nil
}

// Int decodes a bint128 value from the start of buf.
func Int(buf []byte) (int64, int, error) {
	r := sliceReader{buf: buf}
	v, err := ReadInt(&r)
	if err != nil {
		return 0, 0, ErrOverflow
	}
	return v, r.n, nil
}

// UintLen returns the encoded size of v.
func UintLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0 && n < MaxLen; v >>= 7 {
		n++
	}
	return n
}
