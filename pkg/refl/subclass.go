package refl

import (
	"fmt"

	"github.com/EchoTools/evrReflect/pkg/bitfield"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

var vectorNames = [4]string{"x", "y", "z", "w"}

type pseudoKey struct {
	kind    Kind
	hash    jenhash.Hash
	size    uint16
	shape   Shape
	payload [8]byte
}

func bitsAt(i int) bitfield.Member {
	return bitfield.Member{Position: uint8(i), Size: 1}
}

// Sub binds a class, bit-field class, vector or flag set member to a
// Reflector over its storage.
func (m Member) Sub() (Reflector, error) { return m.SubAt(0) }

// SubAt is Sub for element i of an array member. Dynamic vectors grow when
// i is past their end.
func (m Member) SubAt(i int) (Reflector, error) {
	v := m.Value()
	if !v.IsValid() {
		return Reflector{}, fmt.Errorf("subclass: %w", ErrInvalidDestination)
	}
	d := v.Desc()
	switch {
	case v.IsDynamic():
		if i >= v.Len() {
			v.vec.Resize(v.ptr, i+1)
		}
		v = v.Index(i)
	case d.Kind == KindArray:
		if i < 0 || i >= v.Len() {
			return Reflector{}, fmt.Errorf("subclass %s[%d]: %w", m.Name(), i, ErrOutOfRange)
		}
		v = v.Index(i)
	}
	return v.Sub()
}

// Sub binds a single value to the class describing it.
func (v Value) Sub() (Reflector, error) {
	switch d := v.desc; d.Kind {
	case KindClass, KindBitFieldClass:
		return v.Class()
	case KindVector:
		return Bind(vectorClass(d), v.ptr), nil
	case KindEnumFlags:
		c, err := flagsClass(d)
		if err != nil {
			return Reflector{}, err
		}
		return Bind(c, v.ptr), nil
	}
	return Reflector{}, fmt.Errorf("%s is not a subclass: %w", v.desc.Kind, ErrInvalidDestination)
}

// vectorClass describes the components of a fixed vector as members named
// x, y, z and w.
func vectorClass(d TypeDesc) *Class {
	s := d.Shape()
	key := pseudoKey{kind: KindVector, shape: s}
	copy(key.payload[:], d.payload[4:12])

	return reg.pseudoClass(key, func() *Class {
		elem := d.Elem()
		name := fmt.Sprintf("Vector%d<%s>", s.Count, elem)
		c := &Class{Name: name, Hash: jenhash.Sum(name), Size: uintptr(s.Stride) * uintptr(s.Count)}
		for i := 0; i < int(s.Count) && i < len(vectorNames); i++ {
			m := elem
			m.Index = uint8(i)
			m.NameHash = jenhash.Sum(vectorNames[i])
			_ = m.setOffset(uintptr(s.Stride) * uintptr(i))
			c.Members = append(c.Members, m)
			c.Names = append(c.Names, vectorNames[i])
		}
		return c
	})
}

// flagsClass describes a flag set as one boolean member per enumerator.
func flagsClass(d TypeDesc) (*Class, error) {
	e, ok := LookupEnum(d.TypeHash())
	if !ok {
		return nil, fmt.Errorf("flags enum %s: %w", d.TypeHash(), ErrInvalidDestination)
	}
	key := pseudoKey{kind: KindEnumFlags, hash: e.Hash, size: d.Size}

	return reg.pseudoClass(key, func() *Class {
		c := &Class{Name: e.Name + "Flags", Hash: jenhash.Sum(e.Name + "Flags"), Size: uintptr(d.Size), bitField: true}
		for i, val := range e.Values {
			if val >= uint64(d.Size)*8 {
				continue
			}
			m := TypeDesc{
				Kind:     KindBitFieldMember,
				Index:    uint8(len(c.Members)),
				NameHash: jenhash.Sum(e.Names[i]),
				Size:     d.Size,
			}
			m.setBits(bitsAt(int(val)))
			m.setBitKind(KindBool, FloatFormat{})
			c.Members = append(c.Members, m)
			c.Names = append(c.Names, e.Names[i])
		}
		return c
	}), nil
}
