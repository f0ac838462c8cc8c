package reflbin

import (
	"fmt"
	"io"
	"strings"
	"unsafe"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

// Resolver finds the descriptors of classes met in a record.
type Resolver interface {
	LookupClass(h jenhash.Hash) (*refl.Class, bool)
}

// Registry resolves classes from the process wide registry.
type Registry struct{}

func (Registry) LookupClass(h jenhash.Hash) (*refl.Class, bool) { return refl.LookupClass(h) }

// DumpOption configures Dump.
type DumpOption func(*dumper)

// ShowHashes prints name hashes next to resolved names.
func ShowHashes(on bool) DumpOption {
	return func(d *dumper) { d.hashes = on }
}

// WithNameStyle decorates member and class names, for example with colour.
func WithNameStyle(style func(a ...interface{}) string) DumpOption {
	return func(d *dumper) { d.style = style }
}

const maxHexBytes = 32

type dumper struct {
	w      io.Writer
	res    Resolver
	hashes bool
	style  func(a ...interface{}) string
	err    error
}

// Dump writes an indented listing of a record. Members and classes the
// resolver knows are decoded and named; the rest are shown as hex.
func Dump(w io.Writer, data []byte, res Resolver, opts ...DumpOption) error {
	rec, err := Split(data)
	if err != nil {
		return err
	}
	d := &dumper{w: w, res: res, style: fmt.Sprint}
	for _, opt := range opts {
		opt(d)
	}

	cls, _ := res.LookupClass(rec.ClassHash)
	d.printf(0, "%s\n", d.className(rec.ClassHash, cls))
	d.fields(1, cls, rec.Fields)
	return d.err
}

func (d *dumper) printf(depth int, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, strings.Repeat("  ", depth)+format, args...)
}

func (d *dumper) className(h jenhash.Hash, cls *refl.Class) string {
	if cls == nil {
		return d.style(h.String())
	}
	if d.hashes {
		return fmt.Sprintf("%s (%s)", d.style(cls.Name), h)
	}
	return d.style(cls.Name)
}

// member resolves h against cls and its base classes.
func (d *dumper) member(cls *refl.Class, h jenhash.Hash) (refl.TypeDesc, string, bool) {
	for cls != nil {
		if i, ok := cls.Find(h); ok {
			return cls.Members[i], cls.MemberName(i), true
		}
		if cls.Base == 0 {
			break
		}
		cls, _ = d.res.LookupClass(cls.Base)
	}
	return refl.TypeDesc{}, h.String(), false
}

func (d *dumper) fields(depth int, cls *refl.Class, fields []Field) {
	for _, f := range fields {
		desc, name, ok := d.member(cls, f.NameHash)
		label := d.style(name)
		if ok && d.hashes {
			label = fmt.Sprintf("%s (%s)", label, f.NameHash)
		}
		if !ok {
			d.printf(depth, "%s: %s\n", label, hexPreview(f.Payload))
			continue
		}
		d.value(depth, label, desc, f.Payload)
	}
}

func (d *dumper) value(depth int, label string, desc refl.TypeDesc, payload []byte) {
	if desc.Kind == refl.KindClass && desc.Container == refl.ContainerNone {
		d.class(depth, label, desc.TypeHash(), payload)
		return
	}
	if desc.Kind == refl.KindClass && desc.Container == refl.ContainerVector {
		c := &cursor{buf: payload}
		n, err := c.uvarint()
		if err != nil {
			d.printf(depth, "%s: <%v>\n", label, err)
			return
		}
		d.printf(depth, "%s: %d elements\n", label, n)
		for i := uint64(0); i < n; i++ {
			consumed := d.class(depth+1, fmt.Sprintf("[%d]", i), desc.TypeHash(), payload[c.off:])
			if consumed == 0 {
				return
			}
			c.off += consumed
		}
		return
	}

	text, err := render(&cursor{buf: payload}, desc)
	if err != nil {
		d.printf(depth, "%s: %s <%v>\n", label, hexPreview(payload), err)
		return
	}
	d.printf(depth, "%s: %s\n", label, text)
}

// class prints a nested class chunk and returns the bytes it used.
func (d *dumper) class(depth int, label string, h jenhash.Hash, data []byte) int {
	fields, n, err := SplitChunk(data)
	if err != nil {
		d.printf(depth, "%s: <%v>\n", label, err)
		return 0
	}
	cls, _ := d.res.LookupClass(h)
	d.printf(depth, "%s: %s\n", label, d.className(h, cls))
	d.fields(depth+1, cls, fields)
	return n
}

func hexPreview(b []byte) string {
	if len(b) > maxHexBytes {
		return fmt.Sprintf("%x... (%d bytes)", b[:maxHexBytes], len(b))
	}
	return fmt.Sprintf("%x", b)
}

// render decodes one value in the text syntax of refl.Value.String.
func render(c *cursor, d refl.TypeDesc) (string, error) {
	if d.IsArray() {
		n := uint64(d.Shape().Count)
		open, end := "[", "]"
		if d.Container != refl.ContainerNone {
			open, end = "{", "}"
		}
		if d.Container == refl.ContainerVector {
			var err error
			if n, err = c.uvarint(); err != nil {
				return "", err
			}
			if n > uint64(c.Len()) {
				return "", fmt.Errorf("%w: %d elements in %d bytes", ErrCount, n, c.Len())
			}
		}
		elem := d.Elem()
		parts := make([]string, 0, n)
		for i := uint64(0); i < n; i++ {
			s, err := render(c, elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return open + strings.Join(parts, ", ") + end, nil
	}

	var word uint64
	v := refl.ValueAt(d, unsafe.Pointer(&word))
	kind := d.ValueKind()
	switch {
	case d.Kind == refl.KindBitFieldMember && kind == refl.KindBool:
		b, err := c.ReadByte()
		if err != nil {
			return "", err
		}
		v.SetBool(b != 0)
	case d.Kind == refl.KindBitFieldMember && kind == refl.KindInteger:
		x, err := c.varint()
		if err != nil {
			return "", err
		}
		v.SetInt(x)
	case d.Kind == refl.KindBitFieldMember:
		u, err := c.uvarint()
		if err != nil {
			return "", err
		}
		v.SetUint(u)
	case isSigned(kind) && d.Size > 1:
		x, err := c.varint()
		if err != nil {
			return "", err
		}
		v.SetInt(x)
	case isUnsigned(kind) && d.Size > 1:
		u, err := c.uvarint()
		if err != nil {
			return "", err
		}
		v.SetStorage(u)
	case isSigned(kind) || isUnsigned(kind) || kind == refl.KindBool || kind == refl.KindFloat:
		w, err := c.raw(d.Size)
		if err != nil {
			return "", err
		}
		v.SetStorage(w)
	case kind == refl.KindString:
		n, err := c.uint32()
		if err != nil {
			return "", err
		}
		s, err := c.next(uint64(n))
		if err != nil {
			return "", err
		}
		return string(s), nil
	case kind == refl.KindClass:
		_, n, err := SplitChunk(c.buf[c.off:])
		if err != nil {
			return "", err
		}
		c.off += n
		return refl.SubclassPlaceholder, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
	return v.String(), nil
}
