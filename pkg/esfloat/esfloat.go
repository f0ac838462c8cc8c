// Package esfloat encodes and decodes floating point values with a custom
// number of mantissa and exponent bits and an optional sign bit.
//
// Values are truncated towards zero when narrowing, except inside the
// denormal range where the hardware rounding of an added magic constant is
// used. Exponents that do not fit saturate to infinity.
package esfloat

import (
	"fmt"
	"math"
)

// Layout describes a packed float format. The fields map onto an IEEE-754
// single with the same meaning: the exponent bias is half the exponent range.
type Layout struct {
	Mantissa uint8
	Exponent uint8
	Sign     bool
}

var (
	HalfLayout     = Layout{Mantissa: 10, Exponent: 5, Sign: true}
	UFloat11Layout = Layout{Mantissa: 6, Exponent: 5}
	UFloat10Layout = Layout{Mantissa: 5, Exponent: 5}
)

// Custom is implemented by storage types holding a packed float.
type Custom interface {
	FloatLayout() Layout
}

// Bits returns the total width of the format.
func (l Layout) Bits() uint8 {
	n := l.Mantissa + l.Exponent
	if l.Sign {
		n++
	}
	return n
}

// Validate reports whether l can be represented through a float32.
func (l Layout) Validate() error {
	switch {
	case l.Mantissa == 0 || l.Mantissa > 23:
		return fmt.Errorf("mantissa bits %d out of range 1-23", l.Mantissa)
	case l.Exponent < 2 || l.Exponent > 8:
		return fmt.Errorf("exponent bits %d out of range 2-8", l.Exponent)
	case l.Bits() > 32:
		return fmt.Errorf("format needs %d bits", l.Bits())
	}
	return nil
}

func (l Layout) String() string {
	s := "u"
	if l.Sign {
		s = "s"
	}
	return fmt.Sprintf("%s%de%dm", s, l.Exponent, l.Mantissa)
}

func (l Layout) mantissaMask() uint32 { return 1<<l.Mantissa - 1 }
func (l Layout) exponentMax() uint32  { return 1<<l.Exponent - 1 }

func (l Layout) signMask() uint32 {
	if !l.Sign {
		return 0
	}
	return 1 << (l.Bits() - 1)
}

// expRef is the native bit pattern of the format's zero exponent field.
func (l Layout) expRef() uint32 {
	return 0x3f800000 - (l.exponentMax()>>1)<<23
}

// magic is a float whose unit in the last place equals the smallest
// denormal of the format.
func (l Layout) magic() uint32 {
	bias := int(l.exponentMax() >> 1)
	return uint32(127+24-bias-int(l.Mantissa)) << 23
}

// Decode expands packed bits into a float32.
func (l Layout) Decode(v uint32) float32 {
	shift := 23 - l.Mantissa
	mant := v & l.mantissaMask()
	exp := (v >> l.Mantissa) & l.exponentMax()

	var out uint32
	switch exp {
	case l.exponentMax():
		out = 0x7f800000 | mant<<shift
	case 0:
		m := l.magic()
		out = math.Float32bits(math.Float32frombits(m|mant) - math.Float32frombits(m))
	default:
		out = (exp<<23 + l.expRef()) | mant<<shift
	}

	out |= (v & l.signMask()) << (32 - l.Bits())
	return math.Float32frombits(out)
}

// Encode packs f. Unsigned formats store the magnitude.
func (l Layout) Encode(f float32) uint32 {
	shift := 23 - l.Mantissa
	b := math.Float32bits(f)
	sign := b & 0x80000000
	abs := b &^ 0x80000000

	var exp, mant uint32
	switch {
	case abs&0x7f800000 == 0x7f800000:
		exp = l.exponentMax()
		mant = (abs & 0x7fffff) >> shift
		if abs&0x7fffff != 0 && mant == 0 {
			mant = 1
		}
	case abs >= l.expRef()+1<<23:
		exp = (abs - l.expRef()) >> 23
		if exp >= l.exponentMax() {
			exp = l.exponentMax()
		} else {
			mant = (abs >> shift) & l.mantissaMask()
		}
	default:
		m := l.magic()
		caught := math.Float32bits(math.Float32frombits(abs) + math.Float32frombits(m))
		mant = caught - m
		if mant > l.mantissaMask() {
			exp, mant = 1, 0
		}
	}

	out := exp<<l.Mantissa | mant
	if sign != 0 {
		out |= l.signMask()
	}
	return out
}

// Max returns the largest finite value of the format.
func (l Layout) Max() float32 {
	return l.Decode((l.exponentMax()-1)<<l.Mantissa | l.mantissaMask())
}

// Half is an IEEE-754 binary16 value.
type Half uint16

func NewHalf(f float32) Half     { return Half(HalfLayout.Encode(f)) }
func (h Half) Float32() float32  { return HalfLayout.Decode(uint32(h)) }
func (Half) FloatLayout() Layout { return HalfLayout }
func (h Half) String() string    { return fmt.Sprint(h.Float32()) }

// UFloat11 is an unsigned 11-bit float as used by R11G11B10 textures.
type UFloat11 uint16

func NewUFloat11(f float32) UFloat11 { return UFloat11(UFloat11Layout.Encode(f)) }
func (u UFloat11) Float32() float32  { return UFloat11Layout.Decode(uint32(u)) }
func (UFloat11) FloatLayout() Layout { return UFloat11Layout }

// UFloat10 is an unsigned 10-bit float.
type UFloat10 uint16

func NewUFloat10(f float32) UFloat10 { return UFloat10(UFloat10Layout.Encode(f)) }
func (u UFloat10) Float32() float32  { return UFloat10Layout.Decode(uint32(u)) }
func (UFloat10) FloatLayout() Layout { return UFloat10Layout }

// R11G11B10 packs three unsigned floats into one word, red in the low bits.
type R11G11B10 uint32

// NewR11G11B10 packs an RGB triple.
func NewR11G11B10(v [3]float32) R11G11B10 {
	r := UFloat11Layout.Encode(v[0])
	g := UFloat11Layout.Encode(v[1])
	b := UFloat10Layout.Encode(v[2])
	return R11G11B10(r | g<<11 | b<<22)
}

// Vector unpacks the triple.
func (c R11G11B10) Vector() [3]float32 {
	v := uint32(c)
	return [3]float32{
		UFloat11Layout.Decode(v & 0x7ff),
		UFloat11Layout.Decode(v >> 11 & 0x7ff),
		UFloat10Layout.Decode(v >> 22 & 0x3ff),
	}
}
