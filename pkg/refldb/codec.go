package refldb

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

const (
	hasNames uint8 = 1 << iota
	hasAliases
	hasDescs
	isBitField
)

// MarshalBinary encodes the database.
func (db *DB) MarshalBinary() ([]byte, error) {
	var w writer
	w.u32(Magic)
	w.u32(Version)
	w.u32(uint32(len(db.Classes)))
	w.u32(uint32(len(db.Enums)))

	for _, c := range db.Classes {
		if len(c.Members) > 0xffff {
			return nil, fmt.Errorf("class %s: %d members", c.Name, len(c.Members))
		}
		w.str(c.Name)
		w.u32(uint32(c.Hash))
		w.u32(uint32(c.Base))
		w.u32(uint32(c.BaseOffset))
		w.u32(uint32(c.Size))

		var flags uint8
		if len(c.Names) == len(c.Members) {
			flags |= hasNames
		}
		if len(c.Aliases) == len(c.Members) && len(c.Aliases) > 0 {
			flags |= hasAliases
		}
		if len(c.Descs) == len(c.Members) && len(c.Descs) > 0 {
			flags |= hasDescs
		}
		if c.IsBitField() {
			flags |= isBitField
		}
		w.buf = append(w.buf, flags)
		w.u16(uint16(len(c.Members)))

		for i := range c.Members {
			var d [refl.TypeDescSize]byte
			c.Members[i].EncodeTo(d[:])
			w.buf = append(w.buf, d[:]...)
		}
		if flags&hasNames != 0 {
			for _, s := range c.Names {
				w.str(s)
			}
		}
		if flags&hasAliases != 0 {
			for _, s := range c.Aliases {
				w.str(s)
			}
		}
		if flags&hasDescs != 0 {
			for _, d := range c.Descs {
				w.str(d.Short)
				w.str(d.Long)
			}
		}
	}

	for _, e := range db.Enums {
		w.str(e.Name)
		w.u32(uint32(e.Hash))
		w.u16(e.Size)
		w.u32(uint32(len(e.Names)))
		var flags uint8
		if len(e.Descs) == len(e.Names) && len(e.Descs) > 0 {
			flags |= hasDescs
		}
		w.buf = append(w.buf, flags)
		for i, name := range e.Names {
			w.str(name)
			w.buf = binary.LittleEndian.AppendUint64(w.buf, e.Values[i])
			if flags&hasDescs != 0 {
				w.str(e.Descs[i])
			}
		}
	}
	return w.buf, nil
}

// UnmarshalBinary decodes a database, replacing the content of db.
func (db *DB) UnmarshalBinary(data []byte) error {
	r := reader{buf: data}
	if m := r.u32(); r.err == nil && m != Magic {
		return fmt.Errorf("%w: %#x", ErrInvalidMagic, m)
	}
	if v := r.u32(); r.err == nil && v != Version {
		return fmt.Errorf("%w: %d", ErrVersion, v)
	}
	numClasses, numEnums := r.u32(), r.u32()
	if r.err != nil {
		return fmt.Errorf("read header: %w", r.err)
	}

	classes := make([]*refl.Class, 0, min(int(numClasses), r.remaining()))
	for i := uint32(0); i < numClasses; i++ {
		c, err := r.class()
		if err != nil {
			return fmt.Errorf("read class %d: %w", i, err)
		}
		classes = append(classes, c)
	}

	enums := make([]*refl.Enum, 0, min(int(numEnums), r.remaining()))
	for i := uint32(0); i < numEnums; i++ {
		e, err := r.enum()
		if err != nil {
			return fmt.Errorf("read enum %d: %w", i, err)
		}
		enums = append(enums, e)
	}

	*db = *New(classes, enums)
	return nil
}

type writer struct {
	buf []byte
}

func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// reader decodes little-endian fields. The first failure sticks and later
// reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.remaining() {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) str() string {
	n := r.u32()
	return string(r.next(int(n)))
}

func (r *reader) class() (*refl.Class, error) {
	c := &refl.Class{Name: r.str()}
	c.Hash = jenhash.Hash(r.u32())
	c.Base = jenhash.Hash(r.u32())
	c.BaseOffset = uintptr(r.u32())
	c.Size = uintptr(r.u32())
	flags := r.u8()
	n := int(r.u16())
	if r.err != nil {
		return nil, r.err
	}
	c.SetBitField(flags&isBitField != 0)

	c.Members = make([]refl.TypeDesc, n)
	for i := range c.Members {
		b := r.next(refl.TypeDescSize)
		if r.err != nil {
			return nil, r.err
		}
		if err := c.Members[i].UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
	}
	if flags&hasNames != 0 {
		c.Names = make([]string, n)
		for i := range c.Names {
			c.Names[i] = r.str()
		}
	}
	if flags&hasAliases != 0 {
		c.Aliases = make([]string, n)
		hashes := make([]jenhash.Hash, n)
		named := false
		for i := range c.Aliases {
			c.Aliases[i] = r.str()
			if c.Aliases[i] != "" {
				hashes[i] = jenhash.Sum(c.Aliases[i])
				named = true
			}
		}
		if named {
			c.AliasHashes = hashes
		}
	}
	if flags&hasDescs != 0 {
		c.Descs = make([]refl.Description, n)
		for i := range c.Descs {
			c.Descs[i] = refl.Description{Short: r.str(), Long: r.str()}
		}
	}
	return c, r.err
}

func (r *reader) enum() (*refl.Enum, error) {
	e := &refl.Enum{Name: r.str()}
	e.Hash = jenhash.Hash(r.u32())
	e.Size = r.u16()
	n := r.u32()
	flags := r.u8()
	if r.err != nil {
		return nil, r.err
	}
	if int(n) > r.remaining() {
		return nil, io.ErrUnexpectedEOF
	}

	e.Names = make([]string, n)
	e.Values = make([]uint64, n)
	if flags&hasDescs != 0 {
		e.Descs = make([]string, n)
	}
	for i := range e.Names {
		e.Names[i] = r.str()
		e.Values[i] = r.u64()
		if e.Descs != nil {
			e.Descs[i] = r.str()
		}
	}
	return e, r.err
}
