package reflbin

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/varint"
)

// Field is one framed member of a class body.
type Field struct {
	NameHash jenhash.Hash
	Payload  []byte
}

// Record is a record split into its class hash and member fields. Payloads
// alias the input.
type Record struct {
	ClassHash jenhash.Hash
	Fields    []Field
}

// Split parses the framing of a record without decoding any payload.
func Split(data []byte) (Record, error) {
	if len(data) < 4 {
		return Record{}, fmt.Errorf("read class hash: %w", io.ErrUnexpectedEOF)
	}
	rec := Record{ClassHash: jenhash.Hash(binary.LittleEndian.Uint32(data))}
	fields, _, err := SplitChunk(data[4:])
	if err != nil {
		return Record{}, err
	}
	rec.Fields = fields
	return rec, nil
}

// SplitChunk parses a length prefixed class chunk at the start of data and
// returns its fields and the number of bytes consumed.
func SplitChunk(data []byte) ([]Field, int, error) {
	c := &cursor{buf: data}
	size, err := c.uvarint()
	if err != nil {
		return nil, 0, fmt.Errorf("read chunk size: %w", err)
	}
	body, err := c.next(size)
	if err != nil {
		return nil, 0, fmt.Errorf("read chunk of %d bytes: %w", size, err)
	}
	fields, err := SplitBody(body)
	return fields, c.off, err
}

// SplitBody parses a class body: a member count followed by framed members.
func SplitBody(body []byte) ([]Field, error) {
	c := &cursor{buf: body}
	count, err := c.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read member count: %w", err)
	}
	if count > uint64(c.Len()) {
		return nil, fmt.Errorf("%w: %d members in %d bytes", ErrCount, count, c.Len())
	}

	fields := make([]Field, 0, count)
	for i := uint64(0); i < count; i++ {
		h, err := c.uint32()
		if err != nil {
			return fields, fmt.Errorf("read member %d hash: %w", i, err)
		}
		n, err := c.uvarint()
		if err != nil {
			return fields, fmt.Errorf("read member %d size: %w", i, err)
		}
		payload, err := c.next(n)
		if err != nil {
			return fields, fmt.Errorf("read member %d payload: %w", i, err)
		}
		fields = append(fields, Field{NameHash: jenhash.Hash(h), Payload: payload})
	}
	return fields, nil
}

// Append encodes the record and appends it to dst.
func (r Record) Append(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.ClassHash))
	return AppendChunk(dst, r.Fields)
}

// AppendChunk appends a length prefixed class chunk holding fields.
func AppendChunk(dst []byte, fields []Field) []byte {
	size := varint.UintLen(uint64(len(fields)))
	for _, f := range fields {
		size += 4 + varint.UintLen(uint64(len(f.Payload))) + len(f.Payload)
	}
	dst = varint.AppendUint(dst, uint64(size))
	dst = varint.AppendUint(dst, uint64(len(fields)))
	for _, f := range fields {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(f.NameHash))
		dst = varint.AppendUint(dst, uint64(len(f.Payload)))
		dst = append(dst, f.Payload...)
	}
	return dst
}

// Field returns the first field named h.
func (r Record) Field(h jenhash.Hash) (Field, bool) {
	for _, f := range r.Fields {
		if f.NameHash == h {
			return f, true
		}
	}
	return Field{}, false
}
