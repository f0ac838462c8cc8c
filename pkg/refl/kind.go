package refl

import "fmt"

// Kind identifies the primitive shape of a member.
type Kind uint8

const (
	KindNone Kind = iota
	KindInteger
	KindUnsigned
	KindFloat
	KindClass
	KindEnum
	KindBool
	KindCString
	KindString
	KindArray  // {} braces
	KindVector // [] braces
	KindArrayClass
	KindEnumFlags
	KindBitFieldMember
	KindBitFieldClass
	kindCount
)

var kindNames = [...]string{
	KindNone:           "None",
	KindInteger:        "Integer",
	KindUnsigned:       "UnsignedInteger",
	KindFloat:          "FloatingPoint",
	KindClass:          "Class",
	KindEnum:           "Enum",
	KindBool:           "Bool",
	KindCString:        "CString",
	KindString:         "String",
	KindArray:          "Array",
	KindVector:         "Vector",
	KindArrayClass:     "ArrayClass",
	KindEnumFlags:      "EnumFlags",
	KindBitFieldMember: "BitFieldMember",
	KindBitFieldClass:  "BitFieldClass",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Container identifies how a member stores multiple values.
type Container uint8

const (
	ContainerNone Container = iota
	ContainerPointer
	ContainerVector
	ContainerVectorMap
	ContainerInlineArray
	containerCount
)

var containerNames = [...]string{
	ContainerNone:        "None",
	ContainerPointer:     "Pointer",
	ContainerVector:      "Vector",
	ContainerVectorMap:   "VectorMap",
	ContainerInlineArray: "InlineArray",
}

func (c Container) String() string {
	if c < containerCount {
		return containerNames[c]
	}
	return fmt.Sprintf("Container(%d)", uint8(c))
}
