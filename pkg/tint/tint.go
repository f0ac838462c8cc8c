// Package tint describes chassis tint records.
//
// Tints are cosmetic colour schemes applied to player chassis. A tint entry
// holds a Symbol64 resource id and five RGBA colour blocks and is stored
// inside CR15NetRewardItemCS component data as a 0x60 byte block. The types
// here are registered with refl, so tints can be edited by member name,
// stored as records and rendered as CSS.
package tint

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/EchoTools/evrReflect/pkg/esfloat"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

// Color is an RGBA colour with float components in [0, 1].
type Color struct {
	R float32 `refl:"r,alias=red"`
	G float32 `refl:"g,alias=green"`
	B float32 `refl:"b,alias=blue"`
	A float32 `refl:"a,alias=alpha"`
}

// ColorSize is the encoded size of a Color.
const ColorSize = 16

// ColorFromBytes reads four little-endian floats.
func ColorFromBytes(data []byte) Color {
	if len(data) < ColorSize {
		return Color{}
	}
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[off:])) }
	return Color{R: f(0), G: f(4), B: f(8), A: f(12)}
}

// EncodeTo writes the colour to buf, which must hold ColorSize bytes.
func (c Color) EncodeTo(buf []byte) {
	for i, v := range [4]float32{c.R, c.G, c.B, c.A} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func (c Color) String() string {
	return fmt.Sprintf("RGBA(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

func (c Color) bytes() (r, g, b, a uint8) {
	return unit(c.R), unit(c.G), unit(c.B), unit(c.A)
}

// Hex returns the colour as #RRGGBBAA.
func (c Color) Hex() string {
	r, g, b, a := c.bytes()
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a)
}

// CSS returns the colour as a CSS rgba() value.
func (c Color) CSS() string {
	r, g, b, _ := c.bytes()
	return fmt.Sprintf("rgba(%d, %d, %d, %.3f)", r, g, b, clamp(c.A))
}

func clamp(v float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(v))))
}

func unit(v float32) uint8 { return uint8(clamp(v) * 255) }

// Slot names one of the five colour blocks of a tint.
type Slot uint8

const (
	SlotMain1 Slot = iota
	SlotAccent1
	SlotMain2
	SlotAccent2
	SlotBody
	numSlots
)

var slotCSS = [numSlots]string{"main-1", "accent-1", "main-2", "accent-2", "body"}

// CSSName returns the CSS variable suffix of the slot.
func (s Slot) CSSName() string {
	if s < numSlots {
		return slotCSS[s]
	}
	return fmt.Sprintf("slot-%d", s)
}

// Entry is a tint as stored in reward item component data.
type Entry struct {
	ResourceID uint64          `refl:"resourceID,alias=symbol"`
	Colors     [numSlots]Color `refl:"colors"`
	Reserved   [8]byte         `refl:"reserved"`
}

// EntrySize is the encoded size of an Entry (0x60).
const EntrySize = 0x60

const colorsOffset = 0x08

// ReadEntry reads one encoded Entry from r.
func ReadEntry(r io.Reader) (*Entry, error) {
	var buf [EntrySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read tint entry: %w", err)
	}
	e := &Entry{}
	e.DecodeFrom(buf[:])
	return e, nil
}

// MarshalBinary encodes the entry into its 0x60 byte block.
func (e *Entry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EntrySize)
	e.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the entry to buf, which must hold EntrySize bytes.
func (e *Entry) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], e.ResourceID)
	for i, c := range e.Colors {
		c.EncodeTo(buf[colorsOffset+i*ColorSize:])
	}
	copy(buf[0x58:0x60], e.Reserved[:])
}

// UnmarshalBinary decodes an entry.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < EntrySize {
		return fmt.Errorf("tint entry too short: need %d, got %d", EntrySize, len(data))
	}
	e.DecodeFrom(data)
	return nil
}

// DecodeFrom reads the entry from buf without checking its length.
func (e *Entry) DecodeFrom(buf []byte) {
	e.ResourceID = binary.LittleEndian.Uint64(buf[0:8])
	for i := range e.Colors {
		e.Colors[i] = ColorFromBytes(buf[colorsOffset+i*ColorSize:])
	}
	copy(e.Reserved[:], buf[0x58:0x60])
}

// Name returns the known name of the entry, or its resource id in hex.
func (e *Entry) Name() string {
	if name := LookupTintName(e.ResourceID); name != "" {
		return name
	}
	return fmt.Sprintf("%016x", e.ResourceID)
}

func (e *Entry) String() string {
	return fmt.Sprintf("Tint[%s]: Main=%s Accent=%s", e.Name(), e.Colors[SlotMain1], e.Colors[SlotAccent1])
}

// ToCSS renders the colours as CSS custom properties prefixed with name.
func (e *Entry) ToCSS(name string) string {
	cssName := strings.ToLower(strings.ReplaceAll(name, "_", "-"))

	var sb strings.Builder
	sb.WriteString(":root {\n")
	for i, c := range e.Colors {
		varName := fmt.Sprintf("--tint-%s-%s:", cssName, Slot(i).CSSName())
		fmt.Fprintf(&sb, "  %-40s %s;\n", varName, c.CSS())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Preset is an editable tint record: an entry plus the slots it overrides
// and a packed HDR glow colour.
type Preset struct {
	Name      string            `refl:"name"`
	Tint      Entry             `refl:"tint"`
	Overrides refl.Flags[Slot]  `refl:"overrides,desc=Slots replaced on the chassis"`
	Glow      esfloat.R11G11B10 `refl:"glow,desc=Emissive colour|Packed as R11G11B10 unsigned floats"`
	Tags      []string          `refl:"tags"`
}

func init() {
	refl.MustRegisterEnum[Slot]("TintSlot",
		refl.Entry(SlotMain1, "Main1"),
		refl.Entry(SlotAccent1, "Accent1"),
		refl.Entry(SlotMain2, "Main2"),
		refl.Entry(SlotAccent2, "Accent2"),
		refl.Entry(SlotBody, "Body"),
	)
	refl.MustRegisterBitField[esfloat.R11G11B10]("R11G11B10",
		refl.Bits("r", 11, refl.AsFloat(esfloat.UFloat11Layout)),
		refl.Bits("g", 11, refl.AsFloat(esfloat.UFloat11Layout)),
		refl.Bits("b", 10, refl.AsFloat(esfloat.UFloat10Layout)),
	)
	refl.MustRegisterClass[Color]("Color")
	refl.MustRegisterClass[Entry]("TintEntry")
	refl.MustRegisterClass[Preset]("TintPreset")
}

// KnownTints maps Symbol64 hashes to tint names.
var KnownTints = map[uint64]string{
	0x0bf4c0e4d2eaa06c: "rwd_tint_s2_a_default",
	0x3e474b60a9416aca: "rwd_tint_s1_a_default",
	0x43ac219540f9df74: "rwd_tint_s1_b_default",
	0x5d468c4263c586b8: "rwd_tint_s2_c_default",
	0x68f507c6186e4c1e: "rwd_tint_s1_c_default",
	0x74d228d09dc5dc86: "rwd_tint_0000",
	0x74d228d09dc5dc87: "rwd_tint_0001",
	0x74d228d09dc5dc84: "rwd_tint_0002",
	0x74d228d09dc5dc85: "rwd_tint_0003",
	0x74d228d09dc5dc82: "rwd_tint_0004",
	0x761faa113b5215d2: "rwd_tint_s2_b_default",
	0xa11587a1254c9507: "rwd_tint_s3_tint_a",
	0xa11587a1254c9504: "rwd_tint_s3_tint_b",
	0xb87af47e9388b408: "rwd_tint_s1_d_default",
}

// LookupTintName returns the name of a tint symbol, or "" if unknown.
func LookupTintName(symbol uint64) string {
	return KnownTints[symbol]
}
