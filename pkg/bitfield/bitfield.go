// Package bitfield provides mask arithmetic and get/set helpers for members
// packed into a single unsigned storage word.
package bitfield

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// ErrOverflow is returned when a layout does not fit its storage word.
var ErrOverflow = errors.New("bit layout exceeds storage")

// Member locates a packed value inside a storage word.
type Member struct {
	Position uint8
	Size     uint8
}

// Width returns the bit width of T.
func Width[T constraints.Unsigned]() uint8 {
	var zero T
	return uint8(unsafe.Sizeof(zero) * 8)
}

func ones[T constraints.Unsigned](size uint8) T {
	if size == 0 {
		return 0
	}
	var all T
	all = ^all
	return all >> (Width[T]() - size)
}

// Mask returns the bits covered by m in storage of type T.
func Mask[T constraints.Unsigned](m Member) T {
	return ones[T](m.Size) << m.Position
}

// MirrorMask returns the mask of m measured from the most significant bit.
func MirrorMask[T constraints.Unsigned](m Member) T {
	return ones[T](m.Size) << (Width[T]() - m.Position - m.Size)
}

// Get extracts the value of m from storage.
func Get[T constraints.Unsigned](storage T, m Member) T {
	return (storage & Mask[T](m)) >> m.Position
}

// Set replaces the value of m inside storage. Bits of v above m.Size are
// dropped and other members are left untouched.
func Set[T constraints.Unsigned](storage *T, m Member, v T) {
	mask := Mask[T](m)
	*storage = (*storage &^ mask) | ((v << m.Position) & mask)
}

// Get64 and Set64 operate on a storage word widened to 64 bits, which is how
// reflected bit-field members of any storage size are accessed.
func Get64(storage uint64, m Member) uint64 { return Get(storage, m) }

func Set64(storage *uint64, m Member, v uint64) { Set(storage, m, v) }

// SignExtend interprets the low size bits of v as a two's complement value.
func SignExtend(v uint64, size uint8) int64 {
	if size == 0 || size >= 64 {
		return int64(v)
	}
	shift := 64 - size
	return int64(v<<shift) >> shift
}

// Layout is an ordered list of member sizes. Positions are assigned
// cumulatively from the least significant bit.
type Layout []uint8

// NewLayout validates that sizes fit in storage of width bits.
func NewLayout(width uint8, sizes ...uint8) (Layout, error) {
	l := Layout(sizes)
	if total := l.TotalSize(); total > int(width) {
		return nil, fmt.Errorf("%w: %d bits declared, %d available", ErrOverflow, total, width)
	}
	for i, s := range sizes {
		if s == 0 {
			return nil, fmt.Errorf("member %d has zero size", i)
		}
	}
	return l, nil
}

// Get returns the member at index with its resolved position.
func (l Layout) Get(index int) Member {
	var pos uint8
	for _, s := range l[:index] {
		pos += s
	}
	return Member{Position: pos, Size: l[index]}
}

// Members resolves every member position.
func (l Layout) Members() []Member {
	out := make([]Member, len(l))
	var pos uint8
	for i, s := range l {
		out[i] = Member{Position: pos, Size: s}
		pos += s
	}
	return out
}

// TotalSize returns the number of bits used.
func (l Layout) TotalSize() int {
	total := 0
	for _, s := range l {
		total += int(s)
	}
	return total
}

// Field pairs a storage word with its layout.
type Field[T constraints.Unsigned] struct {
	Value  T
	layout Layout
}

// NewField returns an empty field for layout. It panics if the layout does
// not fit T; layouts are static declarations.
func NewField[T constraints.Unsigned](layout Layout) Field[T] {
	if layout.TotalSize() > int(Width[T]()) {
		panic(fmt.Sprintf("bitfield: %d bits do not fit in %d", layout.TotalSize(), Width[T]()))
	}
	return Field[T]{layout: layout}
}

// Get returns member i.
func (f Field[T]) Get(i int) T {
	return Get(f.Value, f.layout.Get(i))
}

// Set stores v into member i.
func (f *Field[T]) Set(i int, v T) {
	Set(&f.Value, f.layout.Get(i), v)
}

// SwapEndian byte-swaps the storage word in place.
func (f *Field[T]) SwapEndian() {
	f.Value = SwapBytes(f.Value)
}

// SwapBytes reverses the byte order of v.
func SwapBytes[T constraints.Unsigned](v T) T {
	switch Width[T]() {
	case 8:
		return v
	case 16:
		return T(bits.ReverseBytes16(uint16(v)))
	case 32:
		return T(bits.ReverseBytes32(uint32(v)))
	default:
		return T(bits.ReverseBytes64(uint64(v)))
	}
}
