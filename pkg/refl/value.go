package refl

import (
	"fmt"
	"unsafe"

	"github.com/EchoTools/evrReflect/pkg/bitfield"
)

// Value is a typed view of one member or array element inside a live
// instance. The zero Value is invalid.
type Value struct {
	desc TypeDesc
	ptr  unsafe.Pointer
	vec  VectorAdapter
}

// ValueAt returns a view of the value described by d stored at p. Dynamic
// vectors obtained this way have no adapter and cannot be resized.
func ValueAt(d TypeDesc, p unsafe.Pointer) Value { return Value{desc: d, ptr: p} }

// Desc returns the descriptor of the value.
func (v Value) Desc() TypeDesc { return v.desc }

// IsValid reports whether v refers to memory.
func (v Value) IsValid() bool { return v.ptr != nil }

// IsDynamic reports whether v is a resizable vector.
func (v Value) IsDynamic() bool { return v.desc.Container == ContainerVector && v.vec != nil }

// Len returns the number of elements of an array value, 0 otherwise.
func (v Value) Len() int {
	switch {
	case v.desc.Container == ContainerVector:
		if v.vec == nil {
			return 0
		}
		return v.vec.Len(v.ptr)
	case v.desc.Kind == KindArray || v.desc.Kind == KindVector:
		return int(v.desc.Shape().Count)
	}
	return 0
}

// Index returns element i of an array value. It panics if i is out of range.
func (v Value) Index(i int) Value {
	if i < 0 || i >= v.Len() {
		panic(fmt.Sprintf("refl: index %d out of range [0:%d]", i, v.Len()))
	}
	if v.desc.Container == ContainerVector {
		return Value{desc: v.desc.Elem(), ptr: v.vec.At(v.ptr, i)}
	}
	return Value{desc: v.desc.Elem(), ptr: element(v.ptr, v.desc.Shape().Stride, i)}
}

// Resize sets the length of a dynamic vector.
func (v Value) Resize(n int) error {
	if !v.IsDynamic() {
		return ErrNotVector
	}
	v.vec.Resize(v.ptr, n)
	return nil
}

// Vector returns the adapter of a dynamic vector, nil otherwise.
func (v Value) Vector() VectorAdapter { return v.vec }

// Storage returns the raw storage word of a value up to eight bytes wide.
// For bit-field members this is the whole word holding the member.
func (v Value) Storage() uint64 { return loadUint(v.ptr, v.desc.Size) }

// SetStorage overwrites the raw storage word.
func (v Value) SetStorage(u uint64) { storeUint(v.ptr, v.desc.Size, u) }

func (v Value) bits() uint64 {
	return bitfield.Get64(v.Storage(), v.desc.Bits())
}

func (v Value) setBits(u uint64) {
	s := v.Storage()
	bitfield.Set64(&s, v.desc.Bits(), u)
	v.SetStorage(s)
}

// Uint returns an integer value zero extended.
func (v Value) Uint() uint64 {
	if v.desc.Kind == KindBitFieldMember {
		return v.bits()
	}
	return v.Storage()
}

// Int returns an integer value sign extended from its width.
func (v Value) Int() int64 {
	if v.desc.Kind == KindBitFieldMember {
		return bitfield.SignExtend(v.bits(), v.desc.Bits().Size)
	}
	return loadInt(v.ptr, v.desc.Size)
}

// SetUint stores u truncated to the width of v.
func (v Value) SetUint(u uint64) {
	if v.desc.Kind == KindBitFieldMember {
		v.setBits(u)
		return
	}
	v.SetStorage(u)
}

// SetInt stores i truncated to the width of v.
func (v Value) SetInt(i int64) { v.SetUint(uint64(i)) }

// Bool returns a boolean value.
func (v Value) Bool() bool { return v.Uint() != 0 }

// SetBool stores b as 0 or 1.
func (v Value) SetBool(b bool) {
	if b {
		v.SetUint(1)
	} else {
		v.SetUint(0)
	}
}

func (v Value) floatFormat() FloatFormat {
	if v.desc.Kind == KindBitFieldMember {
		return v.desc.BitFloat()
	}
	return v.desc.Float()
}

// IsCustomFloat reports whether v stores a packed float.
func (v Value) IsCustomFloat() bool {
	return v.desc.ValueKind() == KindFloat && v.floatFormat().Custom
}

// Float returns a floating point value, decoding packed formats.
func (v Value) Float() float64 {
	if f := v.floatFormat(); f.Custom {
		return float64(f.Layout().Decode(uint32(v.Uint())))
	}
	return loadFloat(v.ptr, v.desc.Size)
}

// SetFloat stores f, encoding packed formats.
func (v Value) SetFloat(f float64) {
	if ff := v.floatFormat(); ff.Custom {
		v.SetUint(uint64(ff.Layout().Encode(float32(f))))
		return
	}
	storeFloat(v.ptr, v.desc.Size, f)
}

// Str returns the value of a String member.
func (v Value) Str() string { return loadString(v.ptr) }

// SetStr stores a String member.
func (v Value) SetStr(s string) { storeString(v.ptr, s) }

// Class binds a Class or BitFieldClass value to its descriptor.
func (v Value) Class() (Reflector, error) {
	switch v.desc.Kind {
	case KindClass, KindBitFieldClass:
	default:
		return Reflector{}, fmt.Errorf("%s value: %w", v.desc.Kind, ErrInvalidDestination)
	}
	c, ok := LookupClass(v.desc.TypeHash())
	if !ok {
		return Reflector{}, fmt.Errorf("class %s: %w", v.desc.TypeHash(), ErrInvalidDestination)
	}
	return Bind(c, v.ptr), nil
}

// Interface returns the value as a Go value for scalar kinds.
func (v Value) Interface() any {
	switch v.desc.ValueKind() {
	case KindBool:
		return v.Bool()
	case KindInteger:
		return v.Int()
	case KindUnsigned, KindEnum, KindEnumFlags, KindBitFieldClass:
		return v.Uint()
	case KindFloat:
		return v.Float()
	case KindString:
		return v.Str()
	}
	return nil
}

// valueWidth is the bit width available to an integer value.
func (v Value) valueWidth() uint8 {
	if v.desc.Kind == KindBitFieldMember {
		return v.desc.Bits().Size
	}
	return uint8(v.desc.Size * 8)
}
