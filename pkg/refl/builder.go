package refl

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/EchoTools/evrReflect/pkg/bitfield"
	"github.com/EchoTools/evrReflect/pkg/esfloat"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// TagName is the struct tag read by RegisterClass. Its value is
// "name,alias=other,desc=short|long"; "-" skips the field.
const TagName = "refl"

const maxMembers = 0x100

var (
	customFloatType = reflect.TypeFor[esfloat.Custom]()
	flagSetType     = reflect.TypeFor[flagSet]()
)

// RegisterClass builds the descriptor of struct T from its exported fields
// and registers it under name. Field types must be registered before the
// structs that use them. The first embedded field whose type is a registered
// class becomes the base class.
func RegisterClass[T any](name string) (*Class, error) {
	c, err := buildClass(reflect.TypeFor[T](), name)
	if err != nil {
		return nil, fmt.Errorf("register class %s: %w", name, err)
	}
	reg.addClass(c)
	Logger().Debug("registered class",
		zap.String("name", name),
		zap.Stringer("hash", c.Hash),
		zap.Int("members", len(c.Members)))
	return c, nil
}

// MustRegisterClass is like RegisterClass but panics on error. It is meant
// for package initialization.
func MustRegisterClass[T any](name string) *Class {
	c, err := RegisterClass[T](name)
	if err != nil {
		panic(err)
	}
	return c
}

type fieldTag struct {
	name  string
	alias string
	desc  Description
}

func parseTag(f reflect.StructField) (fieldTag, bool) {
	tag := fieldTag{name: f.Name}
	raw, ok := f.Tag.Lookup(TagName)
	if !ok {
		return tag, true
	}
	if raw == "-" {
		return tag, false
	}
	parts := strings.Split(raw, ",")
	if parts[0] != "" {
		tag.name = parts[0]
	}
	for _, p := range parts[1:] {
		key, val, _ := strings.Cut(p, "=")
		switch key {
		case "alias":
			tag.alias = val
		case "desc":
			tag.desc.Short, tag.desc.Long, _ = strings.Cut(val, "|")
		}
	}
	return tag, true
}

func buildClass(t reflect.Type, name string) (*Class, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, t)
	}

	c := &Class{
		Name: name,
		Hash: jenhash.Sum(name),
		Size: t.Size(),
		typ:  t,
	}
	var hasAlias, hasDesc, hasVector bool

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, keep := parseTag(f)
		if !keep {
			continue
		}

		if f.Anonymous {
			base, ok := reg.classFor(f.Type)
			if !ok || c.Base != 0 {
				return nil, fmt.Errorf("%w: embedded field %s", ErrUnsupportedType, f.Name)
			}
			c.Base = base.Hash
			c.BaseOffset = f.Offset
			continue
		}
		if !f.IsExported() {
			continue
		}
		if len(c.Members) == maxMembers {
			return nil, fmt.Errorf("more than %d members", maxMembers)
		}

		desc, vec, err := describeField(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if err := desc.setOffset(f.Offset); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		desc.Index = uint8(len(c.Members))
		desc.NameHash = jenhash.Sum(tag.name)

		c.Members = append(c.Members, desc)
		c.Names = append(c.Names, tag.name)
		c.Aliases = append(c.Aliases, tag.alias)
		c.Descs = append(c.Descs, tag.desc)
		c.Vectors = append(c.Vectors, vec)
		hasAlias = hasAlias || tag.alias != ""
		hasDesc = hasDesc || tag.desc != Description{}
		hasVector = hasVector || vec != nil
	}

	if hasAlias {
		c.AliasHashes = make([]jenhash.Hash, len(c.Aliases))
		for i, a := range c.Aliases {
			if a != "" {
				c.AliasHashes[i] = jenhash.Sum(a)
			}
		}
	} else {
		c.Aliases = nil
	}
	if !hasDesc {
		c.Descs = nil
	}
	if !hasVector {
		c.Vectors = nil
	}

	c.New = func() unsafe.Pointer { return reflect.New(t).UnsafePointer() }
	c.Reset = func(p unsafe.Pointer) { reflect.NewAt(t, p).Elem().SetZero() }
	return c, nil
}

// describeField describes a struct field, including dynamic vectors.
func describeField(t reflect.Type) (TypeDesc, VectorAdapter, error) {
	if t.Kind() != reflect.Slice {
		d, err := describe(t)
		return d, nil, err
	}

	d, err := describe(t.Elem())
	if err != nil {
		return d, nil, err
	}
	if d.Kind == KindArray {
		return d, nil, fmt.Errorf("%w: vector of arrays %s", ErrUnsupportedType, t)
	}
	d.Container = ContainerVector
	return d, newSliceAdapter(t), nil
}

// describe maps a Go type to a descriptor without position information.
func describe(t reflect.Type) (TypeDesc, error) {
	var d TypeDesc
	if t.Size() > maxOffset {
		return d, fmt.Errorf("%w: %s is %d bytes", ErrUnsupportedType, t, t.Size())
	}
	d.Size = uint16(t.Size())

	if t.Implements(customFloatType) {
		l := reflect.Zero(t).Interface().(esfloat.Custom).FloatLayout()
		if err := l.Validate(); err != nil {
			return d, fmt.Errorf("float %s: %w", t, err)
		}
		if !isUnsigned(t.Kind()) || int(l.Bits()) > int(t.Size()*8) {
			return d, fmt.Errorf("%w: float %s does not fit %s", ErrUnsupportedType, l, t)
		}
		d.Kind = KindFloat
		d.setFloat(customFormat(l))
		return d, nil
	}
	if t.Implements(flagSetType) {
		et := reflect.Zero(t).Interface().(flagSet).flagsEnum()
		e, ok := reg.enumFor(et)
		if !ok {
			return d, fmt.Errorf("%w: flags enum %s", ErrNotRegistered, et)
		}
		d.Kind = KindEnumFlags
		d.setTypeHash(e.Hash)
		return d, nil
	}
	if e, ok := reg.enumFor(t); ok {
		d.Kind = KindEnum
		d.setTypeHash(e.Hash)
		return d, nil
	}
	if c, ok := reg.classFor(t); ok {
		d.Kind = KindClass
		if c.bitField {
			d.Kind = KindBitFieldClass
		}
		d.setTypeHash(c.Hash)
		return d, nil
	}

	switch k := t.Kind(); {
	case k == reflect.Bool:
		d.Kind = KindBool
	case isSigned(k):
		d.Kind = KindInteger
	case isUnsigned(k):
		d.Kind = KindUnsigned
	case k == reflect.Float32:
		d.Kind = KindFloat
		d.setFloat(float32Format)
	case k == reflect.Float64:
		d.Kind = KindFloat
		d.setFloat(float64Format)
	case k == reflect.String:
		d.Kind = KindString
	case k == reflect.Array:
		return describeArray(t, d)
	case k == reflect.Struct:
		return d, fmt.Errorf("%w: struct %s", ErrNotRegistered, t)
	default:
		return d, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return d, nil
}

func describeArray(t reflect.Type, d TypeDesc) (TypeDesc, error) {
	if t.Len() > 0xff {
		return d, fmt.Errorf("%w: array %s has more than 255 elements", ErrUnsupportedType, t)
	}
	if t.Elem().Kind() == reflect.Slice {
		return d, fmt.Errorf("%w: array of vectors %s", ErrUnsupportedType, t)
	}
	elem, err := describe(t.Elem())
	if err != nil {
		return d, err
	}
	if elem.Kind == KindArray {
		return d, fmt.Errorf("%w: nested array %s", ErrUnsupportedType, t)
	}

	shape := Shape{Stride: uint16(t.Elem().Size()), Kind: elem.Kind, Count: uint8(t.Len())}
	if isVectorElem(elem.Kind) && t.Len() >= 2 && t.Len() <= 4 {
		d.Kind = KindVector
	} else {
		d.Kind = KindArray
		d.Container = ContainerInlineArray
	}
	d.setShape(shape, elem)
	return d, nil
}

func isVectorElem(k Kind) bool {
	return k == KindInteger || k == KindUnsigned || k == KindFloat
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

// BitDecl declares one member of a bit-field class.
type BitDecl struct {
	Name  string
	Size  uint8
	Alias string
	Desc  Description

	kind  Kind
	float FloatFormat
	enum  reflect.Type
}

// BitOption customizes a BitDecl.
type BitOption func(*BitDecl)

// Bits declares a member of size bits. One bit members read as booleans,
// wider ones as unsigned integers.
func Bits(name string, size uint8, opts ...BitOption) BitDecl {
	b := BitDecl{Name: name, Size: size, kind: KindUnsigned}
	if size == 1 {
		b.kind = KindBool
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Signed reads the member as a two's complement integer.
func Signed() BitOption { return func(b *BitDecl) { b.kind = KindInteger } }

// Unsigned reads the member as an unsigned integer.
func Unsigned() BitOption { return func(b *BitDecl) { b.kind = KindUnsigned } }

// AsBool reads the member as a boolean.
func AsBool() BitOption { return func(b *BitDecl) { b.kind = KindBool } }

// AsFloat reads the member as a packed float. The layout must fill the member.
func AsFloat(l esfloat.Layout) BitOption {
	return func(b *BitDecl) {
		b.kind = KindFloat
		b.float = customFormat(l)
	}
}

// AsEnum reads the member as an enumerator of E.
func AsEnum[E constraints.Integer]() BitOption {
	return func(b *BitDecl) {
		b.kind = KindEnum
		b.enum = reflect.TypeFor[E]()
	}
}

// WithAlias attaches an alias name.
func WithAlias(alias string) BitOption { return func(b *BitDecl) { b.Alias = alias } }

// WithDesc attaches a description.
func WithDesc(short, long string) BitOption {
	return func(b *BitDecl) { b.Desc = Description{Short: short, Long: long} }
}

// RegisterBitField registers storage type T as a bit-field class whose
// members are packed from the least significant bit in declaration order.
func RegisterBitField[T constraints.Unsigned](name string, decls ...BitDecl) (*Class, error) {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return nil, fmt.Errorf("register bit-field %s: %w: %s is not a named type", name, ErrUnsupportedType, t)
	}

	sizes := make([]uint8, len(decls))
	for i, d := range decls {
		sizes[i] = d.Size
	}
	layout, err := bitfield.NewLayout(bitfield.Width[T](), sizes...)
	if err != nil {
		return nil, fmt.Errorf("register bit-field %s: %w", name, err)
	}

	c := &Class{
		Name:     name,
		Hash:     jenhash.Sum(name),
		Size:     t.Size(),
		typ:      t,
		bitField: true,
	}
	var hasAlias bool
	for i, m := range layout.Members() {
		decl := decls[i]
		d := TypeDesc{
			Kind:     KindBitFieldMember,
			Index:    uint8(i),
			NameHash: jenhash.Sum(decl.Name),
			Size:     uint16(t.Size()),
		}
		d.setBits(m)
		d.setBitKind(decl.kind, decl.float)

		switch decl.kind {
		case KindFloat:
			if decl.float.Layout().Bits() != decl.Size {
				return nil, fmt.Errorf("register bit-field %s: member %s: float %s needs %d bits",
					name, decl.Name, decl.float.Layout(), decl.float.Layout().Bits())
			}
		case KindEnum:
			e, ok := reg.enumFor(decl.enum)
			if !ok {
				return nil, fmt.Errorf("register bit-field %s: member %s: %w: enum %s",
					name, decl.Name, ErrNotRegistered, decl.enum)
			}
			d.setTypeHash(e.Hash)
		}

		c.Members = append(c.Members, d)
		c.Names = append(c.Names, decl.Name)
		c.Aliases = append(c.Aliases, decl.Alias)
		c.Descs = append(c.Descs, decl.Desc)
		hasAlias = hasAlias || decl.Alias != ""
	}
	if hasAlias {
		c.AliasHashes = jenhash.SumAll(c.Aliases...)
		for i, a := range c.Aliases {
			if a == "" {
				c.AliasHashes[i] = 0
			}
		}
	}

	c.New = func() unsafe.Pointer { return reflect.New(t).UnsafePointer() }
	c.Reset = func(p unsafe.Pointer) { reflect.NewAt(t, p).Elem().SetZero() }

	reg.addClass(c)
	Logger().Debug("registered bit-field", zap.String("name", name), zap.Int("bits", layout.TotalSize()))
	return c, nil
}

// MustRegisterBitField is like RegisterBitField but panics on error.
func MustRegisterBitField[T constraints.Unsigned](name string, decls ...BitDecl) *Class {
	c, err := RegisterBitField[T](name, decls...)
	if err != nil {
		panic(err)
	}
	return c
}
