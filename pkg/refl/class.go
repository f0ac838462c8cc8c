package refl

import (
	"reflect"
	"unsafe"

	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// Description is the two part documentation attached to a member.
type Description struct {
	Short string
	Long  string
}

// Class describes a reflected struct or bit-field storage type. Descriptors
// are immutable once registered.
type Class struct {
	Name string
	Hash jenhash.Hash
	// Base is the hash of the embedded base class, zero if none.
	Base       jenhash.Hash
	BaseOffset uintptr
	Size       uintptr

	Members     []TypeDesc
	Names       []string
	Aliases     []string
	AliasHashes []jenhash.Hash
	Descs       []Description
	// Vectors holds one adapter per member, nil unless the member is a
	// dynamic vector.
	Vectors []VectorAdapter

	// New allocates a zeroed instance and Reset zeroes an existing one. Both
	// are nil for descriptors without a Go type.
	New   func() unsafe.Pointer
	Reset func(unsafe.Pointer)

	typ      reflect.Type
	bitField bool
}

// Type returns the Go type of the class, nil for loaded descriptors.
func (c *Class) Type() reflect.Type { return c.typ }

// IsBitField reports whether the class describes a bit-field storage word.
func (c *Class) IsBitField() bool { return c.bitField }

// SetBitField marks a loaded descriptor as a bit-field class.
func (c *Class) SetBitField(v bool) { c.bitField = v }

func (c *Class) NumMembers() int { return len(c.Members) }

// MemberName returns the declared name of member i, or its hash when names
// were not recorded.
func (c *Class) MemberName(i int) string {
	if i < len(c.Names) && c.Names[i] != "" {
		return c.Names[i]
	}
	return c.Members[i].NameHash.String()
}

// MemberAlias returns the alias of member i.
func (c *Class) MemberAlias(i int) string {
	if i < len(c.Aliases) {
		return c.Aliases[i]
	}
	return ""
}

// MemberDesc returns the description of member i.
func (c *Class) MemberDesc(i int) Description {
	if i < len(c.Descs) {
		return c.Descs[i]
	}
	return Description{}
}

func (c *Class) vector(i int) VectorAdapter {
	if i < len(c.Vectors) {
		return c.Vectors[i]
	}
	return nil
}

// Find returns the index of the member whose name or alias hashes to h.
// Base classes are not searched.
func (c *Class) Find(h jenhash.Hash) (int, bool) {
	for i := range c.Members {
		if c.Members[i].NameHash == h {
			return i, true
		}
	}
	for i, a := range c.AliasHashes {
		if a != 0 && a == h {
			return i, true
		}
	}
	return -1, false
}
