package reflbin

import (
	"bytes"
	"fmt"
	"io"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

// Marshal encodes the instance bound to r as a record.
func Marshal(r refl.Reflector) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the instance bound to r as a record.
func Save(w io.Writer, r refl.Reflector) error {
	if !r.IsValid() {
		return fmt.Errorf("save: %w", refl.ErrInvalidDestination)
	}
	out := getBuffer()
	defer putBuffer(out)

	writeUint32(out, uint32(r.Class().Hash))
	if err := writeClass(out, r); err != nil {
		return fmt.Errorf("save %s: %w", r.Class().Name, err)
	}
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// SaveCompressed writes the record inside a ZSTD archive container.
func SaveCompressed(dst io.WriteSeeker, r refl.Reflector, opts ...archive.WriterOption) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	return archive.Encode(dst, data, opts...)
}

// members lists the members of r followed by those of its base classes.
func members(r refl.Reflector) []refl.Member {
	var out []refl.Member
	for cur, ok := r, r.IsValid(); ok; cur, ok = cur.Base() {
		for _, m := range cur.Members() {
			out = append(out, m)
		}
	}
	return out
}

func writeClass(out *bytes.Buffer, r refl.Reflector) error {
	body := getBuffer()
	defer putBuffer(body)
	payload := getBuffer()
	defer putBuffer(payload)

	list := members(r)
	writeUvarint(body, uint64(len(list)))
	for _, m := range list {
		payload.Reset()
		if err := writeValue(payload, m.Value()); err != nil {
			return fmt.Errorf("member %s: %w", m.Name(), err)
		}
		writeUint32(body, uint32(m.Desc().NameHash))
		writeUvarint(body, uint64(payload.Len()))
		body.Write(payload.Bytes())
	}

	writeUvarint(out, uint64(body.Len()))
	out.Write(body.Bytes())
	return nil
}

func writeValue(b *bytes.Buffer, v refl.Value) error {
	d := v.Desc()
	switch {
	case v.IsDynamic():
		n := v.Len()
		writeUvarint(b, uint64(n))
		for i := 0; i < n; i++ {
			if err := writeValue(b, v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case d.Container == refl.ContainerVector:
		return ErrUnsupported
	case d.Kind == refl.KindArray || d.Kind == refl.KindVector:
		for i, n := 0, v.Len(); i < n; i++ {
			if err := writeValue(b, v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	kind := d.ValueKind()
	if d.Kind == refl.KindBitFieldMember {
		switch kind {
		case refl.KindBool:
			b.WriteByte(byte(v.Uint() & 1))
		case refl.KindInteger:
			writeVarint(b, v.Int())
		default:
			writeUvarint(b, v.Uint())
		}
		return nil
	}

	switch {
	case isSigned(kind) && d.Size > 1:
		writeVarint(b, v.Int())
	case isUnsigned(kind) && d.Size > 1:
		writeUvarint(b, v.Storage())
	case isSigned(kind) || isUnsigned(kind) || kind == refl.KindBool || kind == refl.KindFloat:
		if d.Size > 8 {
			return ErrUnsupported
		}
		writeRaw(b, v.Storage(), d.Size)
	case kind == refl.KindString:
		s := v.Str()
		writeUint32(b, uint32(len(s)))
		b.WriteString(s)
	case kind == refl.KindClass:
		sub, err := v.Class()
		if err != nil {
			return err
		}
		return writeClass(b, sub)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
	return nil
}

// isSigned reports kinds stored as bint128 when wider than a byte.
func isSigned(k refl.Kind) bool {
	return k == refl.KindInteger || k == refl.KindEnum
}

// isUnsigned reports kinds stored as buint128 when wider than a byte.
func isUnsigned(k refl.Kind) bool {
	return k == refl.KindUnsigned || k == refl.KindEnumFlags || k == refl.KindBitFieldClass
}
