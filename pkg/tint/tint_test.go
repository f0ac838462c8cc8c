package tint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/evrReflect/pkg/refl"
	"github.com/EchoTools/evrReflect/pkg/reflbin"
)

func sampleEntry() *Entry {
	return &Entry{
		ResourceID: 0x74d228d09dc5dc86,
		Colors: [5]Color{
			{1, 0, 0, 1},
			{0, 1, 0, 1},
			{0, 0, 1, 1},
			{1, 1, 0, 1},
			{1, 0, 1, 1},
		},
		Reserved: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
}

func TestColorBytes(t *testing.T) {
	white := []byte{
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0x3F,
	}
	assert.Equal(t, Color{1, 1, 1, 1}, ColorFromBytes(white))
	assert.Equal(t, Color{}, ColorFromBytes(white[:8]))

	c := Color{R: 1, G: 0.5, B: 0, A: 1}
	buf := make([]byte, ColorSize)
	c.EncodeTo(buf)
	assert.Equal(t, c, ColorFromBytes(buf))
}

func TestColorFormats(t *testing.T) {
	tests := []struct {
		color Color
		hex   string
	}{
		{Color{1, 1, 1, 1}, "#FFFFFFFF"},
		{Color{0, 0, 0, 1}, "#000000FF"},
		{Color{1, 0, 0, 1}, "#FF0000FF"},
		{Color{0.5, 0.5, 0.5, 0.5}, "#7F7F7F7F"},
		{Color{2, -1, 0, 1}, "#FF0000FF"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.hex, tt.color.Hex(), "%v", tt.color)
	}

	assert.Equal(t, "rgba(255, 127, 63, 0.800)", Color{R: 1, G: 0.5, B: 0.25, A: 0.8}.CSS())
}

func TestEntryBinary(t *testing.T) {
	original := sampleEntry()
	data, err := original.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, EntrySize)
	assert.Equal(t, []byte{0x86, 0xdc, 0xc5, 0x9d, 0xd0, 0x28, 0xd2, 0x74}, data[:8])

	parsed, err := ReadEntry(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	var short Entry
	assert.Error(t, short.UnmarshalBinary(data[:EntrySize-1]))
	_, err = ReadEntry(bytes.NewReader(data[:10]))
	assert.Error(t, err)
}

func TestEntryCSS(t *testing.T) {
	css := sampleEntry().ToCSS("rwd_tint_0000")

	assert.Contains(t, css, ":root {")
	assert.Contains(t, css, "--tint-rwd-tint-0000-main-1:")
	assert.Contains(t, css, "--tint-rwd-tint-0000-body:")
	assert.Contains(t, css, "rgba(255, 0, 0, 1.000)")
	assert.Equal(t, "slot-9", Slot(9).CSSName())
}

func TestLookupTintName(t *testing.T) {
	assert.Equal(t, "rwd_tint_0000", LookupTintName(0x74d228d09dc5dc86))
	assert.Equal(t, "rwd_tint_s1_a_default", LookupTintName(0x3e474b60a9416aca))
	assert.Equal(t, "", LookupTintName(0))

	e := sampleEntry()
	assert.Equal(t, "rwd_tint_0000", e.Name())
	e.ResourceID = 0xabc
	assert.Equal(t, "0000000000000abc", e.Name())
}

func TestReflectedEntry(t *testing.T) {
	e := sampleEntry()
	r := refl.MustOf(e)

	assert.Equal(t, "8417835529974176902", r.Get("symbol"))
	require.NoError(t, r.Set("resourceID", "0x3e474b60a9416aca"))
	assert.Equal(t, "rwd_tint_s1_a_default", e.Name())

	colors := r.MemberByName("colors")
	assert.Equal(t, 5, colors.Len())
	body, err := colors.SubAt(int(SlotBody))
	require.NoError(t, err)
	require.NoError(t, body.Set("green", "0.25"))
	assert.Equal(t, float32(0.25), e.Colors[SlotBody].G)

	require.NoError(t, r.Set("reserved", "{0, 0, 0, 0, 0, 0, 0, 0xff}"))
	assert.Equal(t, byte(0xff), e.Reserved[7])
}

func TestPresetRecord(t *testing.T) {
	p := &Preset{Name: "sunset", Tint: *sampleEntry()}
	r := refl.MustOf(p)

	require.NoError(t, r.Set("overrides", "Main1 | Body"))
	assert.True(t, p.Overrides.Has(SlotBody))
	assert.False(t, p.Overrides.Has(SlotMain2))

	glow, err := r.MemberByName("glow").Sub()
	require.NoError(t, err)
	require.NoError(t, glow.Set("r", "4"))
	require.NoError(t, glow.Set("b", "0.5"))
	assert.Equal(t, [3]float32{4, 0, 0.5}, p.Glow.Vector())
	assert.Equal(t, refl.ErrSignMismatch, refl.KindOf(glow.Set("g", "-1")))

	require.NoError(t, r.MemberByName("tags").Set("{event, season 3}"))

	data, err := reflbin.Marshal(r)
	require.NoError(t, err)
	got := &Preset{}
	require.NoError(t, reflbin.Unmarshal(data, refl.MustOf(got)))
	assert.Equal(t, p, got)
}
