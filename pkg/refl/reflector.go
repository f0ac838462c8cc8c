package refl

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// Reflector binds a class descriptor to a live instance. It borrows the
// instance and never frees it.
type Reflector struct {
	class *Class
	ptr   unsafe.Pointer
}

// Bind returns a Reflector for the instance at p described by c.
func Bind(c *Class, p unsafe.Pointer) Reflector {
	return Reflector{class: c, ptr: p}
}

// Of returns a Reflector for v, whose type must be registered.
func Of[T any](v *T) (Reflector, error) {
	c, ok := ClassOf[T]()
	if !ok {
		var zero T
		return Reflector{}, fmt.Errorf("%w: %T", ErrNotRegistered, zero)
	}
	return Bind(c, unsafe.Pointer(v)), nil
}

// MustOf is like Of but panics if T is not registered.
func MustOf[T any](v *T) Reflector {
	r, err := Of(v)
	if err != nil {
		panic(err)
	}
	return r
}

// New allocates a zeroed instance of the class registered under h.
func New(h jenhash.Hash) (Reflector, error) {
	c, ok := LookupClass(h)
	if !ok {
		return Reflector{}, fmt.Errorf("class %s: %w", h, ErrInvalidDestination)
	}
	if c.New == nil {
		return Reflector{}, fmt.Errorf("class %s has no constructor: %w", c.Name, ErrInvalidDestination)
	}
	return Bind(c, c.New()), nil
}

func (r Reflector) IsValid() bool { return r.class != nil && r.ptr != nil }

func (r Reflector) Class() *Class { return r.class }

// Pointer returns the address of the bound instance.
func (r Reflector) Pointer() unsafe.Pointer { return r.ptr }

// Reset zeroes the bound instance.
func (r Reflector) Reset() {
	if r.IsValid() && r.class.Reset != nil {
		r.class.Reset(r.ptr)
	}
}

// NumMembers returns the number of members declared by the class itself.
func (r Reflector) NumMembers() int {
	if r.class == nil {
		return 0
	}
	return len(r.class.Members)
}

// Member returns member i, or an invalid Member when i is out of range.
func (r Reflector) Member(i int) Member {
	if i < 0 || i >= r.NumMembers() {
		return Member{}
	}
	return Member{owner: r, index: i}
}

// Base returns the embedded base class view.
func (r Reflector) Base() (Reflector, bool) {
	if !r.IsValid() || r.class.Base == 0 {
		return Reflector{}, false
	}
	c, ok := LookupClass(r.class.Base)
	if !ok {
		return Reflector{}, false
	}
	return Bind(c, at(r.ptr, r.class.BaseOffset)), true
}

// MemberByHash finds a member by the hash of its name or alias, searching
// base classes when the class itself has no match.
func (r Reflector) MemberByHash(h jenhash.Hash) Member {
	for cur, ok := r, r.IsValid(); ok; cur, ok = cur.Base() {
		if i, found := cur.class.Find(h); found {
			return Member{owner: cur, index: i}
		}
	}
	return Member{}
}

// MemberByName finds a member by name or alias.
func (r Reflector) MemberByName(name string) Member {
	return r.MemberByHash(jenhash.Sum(name))
}

// Members iterates over the members declared by the class itself.
func (r Reflector) Members() iter.Seq2[int, Member] {
	return func(yield func(int, Member) bool) {
		for i := 0; i < r.NumMembers(); i++ {
			if !yield(i, Member{owner: r, index: i}) {
				return
			}
		}
	}
}

// Get renders the member called name.
func (r Reflector) Get(name string) string {
	return r.MemberByName(name).Get()
}

// Set assigns x to the member called name.
func (r Reflector) Set(name string, x any) error {
	m := r.MemberByName(name)
	if !m.IsValid() {
		return &SetError{Member: name, Input: fmt.Sprint(x), Kind: ErrInvalidDestination}
	}
	return m.Set(x)
}

// Pairs renders every member of the class itself.
func (r Reflector) Pairs(useAlias bool) []Pair {
	out := make([]Pair, 0, r.NumMembers())
	for _, m := range r.Members() {
		out = append(out, m.Pair(useAlias))
	}
	return out
}

// Pair is a rendered member.
type Pair struct {
	Name  string
	Value string
}

// Member is a handle to one member of a bound instance. The zero Member is
// invalid and every operation on it fails softly.
type Member struct {
	owner Reflector
	index int
}

func (m Member) IsValid() bool { return m.owner.IsValid() }

// Index returns the position of the member in its declaring class.
func (m Member) Index() int { return m.index }

// Owner returns the view of the class declaring the member, which is a base
// class view for inherited members.
func (m Member) Owner() Reflector { return m.owner }

func (m Member) Desc() TypeDesc {
	if !m.IsValid() {
		return TypeDesc{}
	}
	return m.owner.class.Members[m.index]
}

func (m Member) Name() string {
	if !m.IsValid() {
		return ""
	}
	return m.owner.class.MemberName(m.index)
}

func (m Member) Alias() string {
	if !m.IsValid() {
		return ""
	}
	return m.owner.class.MemberAlias(m.index)
}

// Doc returns the member description.
func (m Member) Doc() Description {
	if !m.IsValid() {
		return Description{}
	}
	return m.owner.class.MemberDesc(m.index)
}

// Value returns the typed view of the member.
func (m Member) Value() Value {
	if !m.IsValid() {
		return Value{}
	}
	d := m.Desc()
	p := m.owner.ptr
	if d.Kind != KindBitFieldMember {
		p = at(p, d.Offset())
	}
	return Value{desc: d, ptr: p, vec: m.owner.class.vector(m.index)}
}

// IsArray reports whether the member holds multiple elements.
func (m Member) IsArray() bool { return m.Desc().IsArray() }

// Len returns the element count of an array member.
func (m Member) Len() int { return m.Value().Len() }

// Size returns the byte size of the member, or of one element for arrays.
func (m Member) Size() int {
	d := m.Desc()
	if d.IsArray() {
		return int(d.Elem().Size)
	}
	return int(d.Size)
}

// IsSubClass reports whether Sub can bind the member or its elements to a
// registered class.
func (m Member) IsSubClass() bool {
	d := m.Desc()
	if d.IsArray() {
		d = d.Elem()
	}
	return d.Kind == KindClass || d.Kind == KindBitFieldClass
}

// Get renders the member in text syntax.
func (m Member) Get() string { return m.Value().String() }

// GetAt renders element i of an array member, or bit i of a flag set.
func (m Member) GetAt(i int) string { return m.Value().At(i) }

// Set assigns x, a string in text syntax or a Go number or bool.
func (m Member) Set(x any) error {
	return m.wrap(x, m.Value().Set(x))
}

// SetAt assigns x to element i. Dynamic vectors grow to fit i; for a flag
// set, i selects the bit and x is a boolean.
func (m Member) SetAt(i int, x any) error {
	v := m.Value()
	if !v.IsValid() || i < 0 {
		return m.wrap(x, ErrInvalidDestination)
	}
	d := v.Desc()
	switch {
	case d.ValueKind() == KindEnumFlags && !d.IsArray():
		return m.wrap(x, v.setFlagBit(i, x))
	case v.IsDynamic():
		if i >= v.Len() {
			v.vec.Resize(v.ptr, i+1)
		}
	case d.IsArray():
		if i >= v.Len() {
			return m.wrap(x, ErrOutOfRange)
		}
	default:
		if i != 0 {
			return m.wrap(x, ErrOutOfRange)
		}
		return m.wrap(x, v.Set(x))
	}
	return m.wrap(x, v.Index(i).Set(x))
}

func (v Value) setFlagBit(i int, x any) ErrorKind {
	if i >= int(v.desc.Size)*8 {
		return ErrOutOfRange
	}
	bit := Value{desc: TypeDesc{Kind: KindBitFieldMember, Size: v.desc.Size}, ptr: v.ptr}
	bit.desc.setBits(bitsAt(i))
	bit.desc.setBitKind(KindBool, FloatFormat{})
	return bit.Set(x)
}

func (m Member) wrap(x any, kind ErrorKind) error {
	if kind == ErrNone {
		return nil
	}
	name := m.Name()
	if name == "" {
		name = "<invalid>"
	}
	return &SetError{Member: name, Input: fmt.Sprint(x), Kind: kind}
}

// Pair renders the member as a name and value, preferring the alias when
// useAlias is set and one exists.
func (m Member) Pair(useAlias bool) Pair {
	name := m.Name()
	if a := m.Alias(); useAlias && a != "" {
		name = a
	}
	return Pair{Name: name, Value: m.Get()}
}
