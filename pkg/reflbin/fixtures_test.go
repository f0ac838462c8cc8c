package reflbin

import (
	"github.com/EchoTools/evrReflect/pkg/esfloat"
	"github.com/EchoTools/evrReflect/pkg/refl"
)

type itemKind uint16

const (
	kindWeapon itemKind = iota + 1
	kindArmor
	kindRelic itemKind = 400
)

type itemTrait uint8

const (
	traitRare itemTrait = iota
	traitBound
	traitCursed
)

type itemStats uint32

type part struct {
	Name   string
	Weight float32
}

type itemBase struct {
	ID    uint64
	Owner string `refl:"owner"`
}

type item struct {
	itemBase
	Kind    itemKind
	Level   int16
	Small   int8
	Count   uint32
	Scale   float64
	Half    esfloat.Half
	Glow    esfloat.UFloat11
	Enabled bool
	Traits  refl.Flags[itemTrait]
	Stats   itemStats
	Pos     [3]float32
	Grid    [5]uint16
	Names   []string
	Parts   []part
	Main    part
}

type tiny struct {
	A int16
	B bool
}

type tinyText struct {
	A int16
	S string
	B bool
}

type schemaV1 struct {
	A int32
	B string
}

type schemaV2 struct {
	A int32
	C float32
}

func init() {
	refl.MustRegisterEnum[itemKind]("itemKind",
		refl.Entry(kindWeapon, "Weapon"),
		refl.Entry(kindArmor, "Armor"),
		refl.Entry(kindRelic, "Relic"),
	)
	refl.MustRegisterEnum[itemTrait]("itemTrait",
		refl.Entry(traitRare, "Rare"),
		refl.Entry(traitBound, "Bound"),
		refl.Entry(traitCursed, "Cursed"),
	)
	refl.MustRegisterBitField[itemStats]("itemStats",
		refl.Bits("Power", 10),
		refl.Bits("Bonus", 6, refl.Signed()),
		refl.Bits("Sealed", 1),
		refl.Bits("Tint", 11, refl.AsFloat(esfloat.UFloat11Layout)),
	)
	refl.MustRegisterClass[part]("part")
	refl.MustRegisterClass[itemBase]("itemBase")
	refl.MustRegisterClass[item]("item")
	refl.MustRegisterClass[tiny]("tiny")
	refl.MustRegisterClass[tinyText]("tinyText")
}

func newItem() *item {
	it := &item{
		itemBase: itemBase{ID: 77, Owner: "echo"},
		Kind:     kindRelic,
		Level:    -300,
		Small:    -2,
		Count:    1 << 20,
		Scale:    0.125,
		Half:     esfloat.NewHalf(1.5),
		Glow:     esfloat.NewUFloat11(2),
		Enabled:  true,
		Traits:   refl.FlagsOf(traitRare, traitCursed),
		Pos:      [3]float32{1.5, 2.5, 3.5},
		Grid:     [5]uint16{1, 200, 3000, 40000, 5},
		Names:    []string{"a", "b"},
		Parts:    []part{{"wheel", 4}, {"", 0.5}},
		Main:     part{"wheel", 12},
	}
	it.Stats = itemStats(900 | 0x3f<<10 | 1<<16 | uint32(esfloat.NewUFloat11(1))<<17)
	return it
}
