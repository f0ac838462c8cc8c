package refl

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// Enum describes a named integer type.
type Enum struct {
	Name   string
	Hash   jenhash.Hash
	Size   uint16
	Names  []string
	Values []uint64
	Descs  []string

	typ reflect.Type
}

// EnumEntry declares one enumerator.
type EnumEntry struct {
	Name  string
	Value uint64
	Desc  string
}

// Entry declares enumerator v of E.
func Entry[E constraints.Integer](v E, name string, desc ...string) EnumEntry {
	e := EnumEntry{Name: name, Value: uint64(v)}
	if len(desc) > 0 {
		e.Desc = desc[0]
	}
	return e
}

// RegisterEnum builds the descriptor of E and adds it to the enum registry.
// Values are stored truncated to the width of E.
func RegisterEnum[E constraints.Integer](name string, entries ...EnumEntry) (*Enum, error) {
	t := reflect.TypeFor[E]()
	if t.PkgPath() == "" {
		return nil, fmt.Errorf("register enum %s: %w: %s is not a named type", name, ErrUnsupportedType, t)
	}

	e := &Enum{
		Name: name,
		Hash: jenhash.Sum(name),
		Size: uint16(t.Size()),
		typ:  t,
	}
	mask := sizeMask(e.Size)
	hasDesc := false
	for _, entry := range entries {
		e.Names = append(e.Names, entry.Name)
		e.Values = append(e.Values, entry.Value&mask)
		e.Descs = append(e.Descs, entry.Desc)
		hasDesc = hasDesc || entry.Desc != ""
	}
	if !hasDesc {
		e.Descs = nil
	}

	reg.addEnum(e)
	Logger().Debug("registered enum", zap.String("name", name), zap.Stringer("hash", e.Hash))
	return e, nil
}

// MustRegisterEnum is like RegisterEnum but panics on error.
func MustRegisterEnum[E constraints.Integer](name string, entries ...EnumEntry) *Enum {
	e, err := RegisterEnum[E](name, entries...)
	if err != nil {
		panic(err)
	}
	return e
}

// Type returns the Go type the enum was registered from, or nil for
// descriptors loaded from a database.
func (e *Enum) Type() reflect.Type { return e.typ }

// Lookup returns the value of the enumerator called name.
func (e *Enum) Lookup(name string) (uint64, bool) {
	for i, n := range e.Names {
		if n == name {
			return e.Values[i], true
		}
	}
	return 0, false
}

// NameOf returns the name of the enumerator with value v.
func (e *Enum) NameOf(v uint64) (string, bool) {
	v &= sizeMask(e.Size)
	for i, val := range e.Values {
		if val == v {
			return e.Names[i], true
		}
	}
	return "", false
}

// Desc returns the description of enumerator i.
func (e *Enum) Desc(i int) string {
	if i < len(e.Descs) {
		return e.Descs[i]
	}
	return ""
}

func sizeMask(size uint16) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return 1<<(size*8) - 1
}

// Flags is a set of enumerators of E stored as 1<<value bits.
type Flags[E constraints.Integer] uint32

func (f Flags[E]) Has(e E) bool { return f&(1<<uint(e)) != 0 }

func (f *Flags[E]) Set(e E) { *f |= 1 << uint(e) }

func (f *Flags[E]) Clear(e E) { *f &^= 1 << uint(e) }

// FlagsOf builds a flag set.
func FlagsOf[E constraints.Integer](values ...E) Flags[E] {
	var f Flags[E]
	for _, v := range values {
		f.Set(v)
	}
	return f
}

func (Flags[E]) flagsEnum() reflect.Type { return reflect.TypeFor[E]() }

type flagSet interface {
	flagsEnum() reflect.Type
}
