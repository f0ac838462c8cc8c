package refl

import (
	"encoding/binary"
	"fmt"

	"github.com/EchoTools/evrReflect/pkg/bitfield"
	"github.com/EchoTools/evrReflect/pkg/esfloat"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// TypeDescSize is the binary size of a TypeDesc.
const TypeDescSize = 24

// maxOffset bounds member offsets and sizes stored in a TypeDesc.
const maxOffset = 0xffff

// FloatFormat describes a floating point member. Native floats carry their
// IEEE widths with Custom unset.
type FloatFormat struct {
	Mantissa uint8
	Exponent uint8
	Sign     bool
	Custom   bool
}

var (
	float32Format = FloatFormat{Mantissa: 23, Exponent: 8, Sign: true}
	float64Format = FloatFormat{Mantissa: 52, Exponent: 11, Sign: true}
)

func customFormat(l esfloat.Layout) FloatFormat {
	return FloatFormat{Mantissa: l.Mantissa, Exponent: l.Exponent, Sign: l.Sign, Custom: true}
}

// Layout returns the codec layout of a custom format.
func (f FloatFormat) Layout() esfloat.Layout {
	return esfloat.Layout{Mantissa: f.Mantissa, Exponent: f.Exponent, Sign: f.Sign}
}

func (f FloatFormat) put(b []byte) {
	b[0] = f.Mantissa
	b[1] = f.Exponent
	b[2] = 0
	if f.Sign {
		b[2] |= 1
	}
	if f.Custom {
		b[2] |= 2
	}
}

func floatFormatFrom(b []byte) FloatFormat {
	return FloatFormat{
		Mantissa: b[0],
		Exponent: b[1],
		Sign:     b[2]&1 != 0,
		Custom:   b[2]&2 != 0,
	}
}

// Shape is the element layout of an Array or Vector member.
type Shape struct {
	Stride uint16
	Kind   Kind
	Count  uint8
}

// TypeDesc describes one member: its kind, where it lives inside the
// instance and a kind specific payload. The payload holds exactly one of a
// float format, a linked class or enum hash, an element shape or a bit-field
// subtype; the accessors must only be used for the matching kind.
type TypeDesc struct {
	Kind      Kind
	Index     uint8
	NameHash  jenhash.Hash
	Size      uint16
	Container Container

	loc     uint16
	payload [12]byte
}

// Offset returns the byte offset of the member inside its instance.
func (t TypeDesc) Offset() uintptr { return uintptr(t.loc) }

// Bits returns the bit range of a BitFieldMember.
func (t TypeDesc) Bits() bitfield.Member {
	return bitfield.Member{Position: uint8(t.loc), Size: uint8(t.loc >> 8)}
}

// TypeHash returns the linked class or enum hash of Class, Enum, EnumFlags
// and BitFieldClass members, and of enum typed BitFieldMembers.
func (t TypeDesc) TypeHash() jenhash.Hash {
	return jenhash.Hash(binary.LittleEndian.Uint32(t.payload[0:4]))
}

// Float returns the format of a FloatingPoint member.
func (t TypeDesc) Float() FloatFormat { return floatFormatFrom(t.payload[0:3]) }

// Shape returns the element layout of Array and Vector members.
func (t TypeDesc) Shape() Shape {
	return Shape{
		Stride: binary.LittleEndian.Uint16(t.payload[0:2]),
		Kind:   Kind(t.payload[2]),
		Count:  t.payload[3],
	}
}

// BitKind returns the subtype of a BitFieldMember.
func (t TypeDesc) BitKind() Kind { return Kind(t.payload[4]) }

// BitFloat returns the float format of a float typed BitFieldMember.
func (t TypeDesc) BitFloat() FloatFormat { return floatFormatFrom(t.payload[5:8]) }

// ValueKind is the kind used to read and write a single value, resolving
// bit-field members to their subtype.
func (t TypeDesc) ValueKind() Kind {
	if t.Kind == KindBitFieldMember {
		return t.BitKind()
	}
	return t.Kind
}

// IsArray reports whether the member holds multiple elements.
func (t TypeDesc) IsArray() bool {
	return t.Container == ContainerVector || t.Kind == KindArray || t.Kind == KindVector
}

// Elem returns the descriptor of a single element of an array member.
func (t TypeDesc) Elem() TypeDesc {
	if t.Container == ContainerVector {
		e := t
		e.Container = ContainerNone
		e.loc = 0
		return e
	}
	s := t.Shape()
	e := TypeDesc{Kind: s.Kind, Index: t.Index, NameHash: t.NameHash, Size: s.Stride}
	copy(e.payload[:8], t.payload[4:12])
	return e
}

func (t *TypeDesc) setOffset(off uintptr) error {
	if off > maxOffset {
		return fmt.Errorf("offset %d exceeds %d", off, maxOffset)
	}
	t.loc = uint16(off)
	return nil
}

func (t *TypeDesc) setBits(m bitfield.Member) {
	t.loc = uint16(m.Position) | uint16(m.Size)<<8
}

func (t *TypeDesc) setTypeHash(h jenhash.Hash) {
	binary.LittleEndian.PutUint32(t.payload[0:4], uint32(h))
}

func (t *TypeDesc) setFloat(f FloatFormat) { f.put(t.payload[0:3]) }

func (t *TypeDesc) setShape(s Shape, elem TypeDesc) {
	binary.LittleEndian.PutUint16(t.payload[0:2], s.Stride)
	t.payload[2] = byte(s.Kind)
	t.payload[3] = s.Count
	copy(t.payload[4:12], elem.payload[:8])
}

func (t *TypeDesc) setBitKind(k Kind, f FloatFormat) {
	t.payload[4] = byte(k)
	f.put(t.payload[5:8])
}

// MarshalBinary encodes the descriptor into its 24 byte form.
func (t *TypeDesc) MarshalBinary() ([]byte, error) {
	buf := make([]byte, TypeDescSize)
	t.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the descriptor to buf, which must hold TypeDescSize bytes.
func (t *TypeDesc) EncodeTo(buf []byte) {
	buf[0] = byte(t.Kind)
	buf[1] = t.Index
	binary.LittleEndian.PutUint16(buf[2:4], t.loc)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(t.NameHash))
	binary.LittleEndian.PutUint16(buf[8:10], t.Size)
	buf[10] = byte(t.Container)
	buf[11] = 0
	copy(buf[12:24], t.payload[:])
}

// UnmarshalBinary decodes and validates a descriptor.
func (t *TypeDesc) UnmarshalBinary(data []byte) error {
	if len(data) < TypeDescSize {
		return fmt.Errorf("type descriptor too short: need %d, got %d", TypeDescSize, len(data))
	}
	t.DecodeFrom(data)
	return t.Validate()
}

// DecodeFrom reads the descriptor from buf without validating it.
func (t *TypeDesc) DecodeFrom(buf []byte) {
	t.Kind = Kind(buf[0])
	t.Index = buf[1]
	t.loc = binary.LittleEndian.Uint16(buf[2:4])
	t.NameHash = jenhash.Hash(binary.LittleEndian.Uint32(buf[4:8]))
	t.Size = binary.LittleEndian.Uint16(buf[8:10])
	t.Container = Container(buf[10])
	copy(t.payload[:], buf[12:24])
}

// Validate checks the kind and container ranges.
func (t *TypeDesc) Validate() error {
	if t.Kind >= kindCount {
		return fmt.Errorf("invalid kind %d", t.Kind)
	}
	if t.Container >= containerCount {
		return fmt.Errorf("invalid container %d", t.Container)
	}
	if t.IsArray() && t.Container != ContainerVector && t.Shape().Kind >= kindCount {
		return fmt.Errorf("invalid element kind %d", t.Shape().Kind)
	}
	return nil
}

func (t TypeDesc) String() string {
	switch {
	case t.Container == ContainerVector:
		return fmt.Sprintf("[]%s", t.Elem())
	case t.Kind == KindArray || t.Kind == KindVector:
		s := t.Shape()
		return fmt.Sprintf("%s<%s x%d>", t.Kind, t.Elem(), s.Count)
	case t.Kind == KindFloat:
		if f := t.Float(); f.Custom {
			return fmt.Sprintf("Float(%s)", f.Layout())
		}
		return fmt.Sprintf("Float%d", t.Size*8)
	case t.Kind == KindBitFieldMember:
		b := t.Bits()
		return fmt.Sprintf("%s:%d@%d", t.BitKind(), b.Size, b.Position)
	case t.Kind == KindClass || t.Kind == KindEnum || t.Kind == KindEnumFlags || t.Kind == KindBitFieldClass:
		return fmt.Sprintf("%s(%s)", t.Kind, t.TypeHash())
	}
	return fmt.Sprintf("%s%d", t.Kind, t.Size*8)
}
