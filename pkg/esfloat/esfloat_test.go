package esfloat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestHalfKnownValues(t *testing.T) {
	tests := []struct {
		value float32
		bits  uint32
	}{
		{0, 0x0000},
		{1, 0x3C00},
		{1.5, 0x3E00},
		{-2, 0xC000},
		{65504, 0x7BFF},
		{6.103515625e-05, 0x0400},
		{5.9604645e-08, 0x0001},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bits, HalfLayout.Encode(tt.value), "encode %g", tt.value)
		assert.Equal(t, tt.value, HalfLayout.Decode(tt.bits), "decode %#x", tt.bits)
	}
}

func TestRoundTripBounded(t *testing.T) {
	layouts := []Layout{HalfLayout, UFloat11Layout, UFloat10Layout, {Mantissa: 15, Exponent: 7, Sign: true}}
	values := []float64{0.1, 0.3333, 1, 2.5, 3.25, 17.17, 1000, 12345}

	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			tol := math.Ldexp(1, -int(l.Mantissa))
			for _, v := range values {
				if float32(v) > l.Max() {
					continue
				}
				got := l.Decode(l.Encode(float32(v)))
				if !scalar.EqualWithinRel(float64(got), v, tol) {
					t.Errorf("%g round-tripped to %g (tolerance %g)", v, got, tol)
				}
				if l.Sign {
					neg := l.Decode(l.Encode(float32(-v)))
					assert.Equal(t, -got, neg)
				}
			}
		})
	}
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, uint32(0x7C00), HalfLayout.Encode(70000))
	assert.True(t, math.IsInf(float64(HalfLayout.Decode(0x7C00)), 1))
	assert.True(t, math.IsInf(float64(HalfLayout.Decode(0xFC00)), -1))
	assert.True(t, math.IsInf(float64(HalfLayout.Decode(HalfLayout.Encode(float32(math.Inf(1))))), 1))
	assert.True(t, math.IsNaN(float64(HalfLayout.Decode(HalfLayout.Encode(float32(math.NaN()))))))
}

func TestDenormal(t *testing.T) {
	smallest := HalfLayout.Decode(1)
	assert.Equal(t, float32(math.Ldexp(1, -24)), smallest)

	// Values in the denormal range land on the nearest multiple of the
	// smallest denormal.
	v := float32(1e-5)
	got := HalfLayout.Decode(HalfLayout.Encode(v))
	assert.True(t, scalar.EqualWithinAbs(float64(got), float64(v), float64(smallest)))

	// The largest denormal rounds up into the first normal.
	assert.Equal(t, uint32(0x0400), HalfLayout.Encode(6.1033e-05))
}

func TestUnsignedDropsSign(t *testing.T) {
	assert.Equal(t, UFloat11Layout.Encode(1), UFloat11Layout.Encode(-1))
	assert.Equal(t, float32(1), NewUFloat11(-1).Float32())
}

func TestR11G11B10(t *testing.T) {
	in := [3]float32{1, 0.5, 3.25}
	c := NewR11G11B10(in)
	assert.Equal(t, in, c.Vector())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, HalfLayout.Validate())
	assert.Error(t, Layout{Mantissa: 24, Exponent: 8}.Validate())
	assert.Error(t, Layout{Mantissa: 10, Exponent: 1}.Validate())
	assert.Equal(t, uint8(16), HalfLayout.Bits())
	assert.Equal(t, uint8(11), UFloat11Layout.Bits())
}

func BenchmarkEncode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = HalfLayout.Encode(float32(i) * 0.25)
	}
}
