package refl

import "github.com/EchoTools/evrReflect/pkg/esfloat"

type testMode uint8

const (
	modeOff testMode = iota
	modeOn
	modeAuto
)

type testFlag uint8

const (
	flagE1 testFlag = iota
	flagE2
	flagE3
)

type testPacked uint16

type testPoint struct {
	X int32
	Y int32
}

type testBase struct {
	ID    uint32 `refl:"id"`
	Label string `refl:"label,alias=name,desc=Display name|Shown in editors"`
}

type testRecord struct {
	testBase
	Small    int8
	Count    uint16
	Big      int64
	Ratio    float32
	Precise  float64
	Half     esfloat.Half
	On       bool
	Mode     testMode
	Flags    Flags[testFlag]
	Packed   testPacked
	Position [3]float32
	Raw      [6]uint8
	Corners  [2][2]int16
	Tags     []string
	Points   []testPoint
	Child    testPoint
	Ignored  int `refl:"-"`
	hidden   int
}

func init() {
	MustRegisterEnum[testMode]("testMode",
		Entry(modeOff, "Off"),
		Entry(modeOn, "On", "Always enabled"),
		Entry(modeAuto, "Auto"),
	)
	MustRegisterEnum[testFlag]("testFlag",
		Entry(flagE1, "E1"),
		Entry(flagE2, "E2"),
		Entry(flagE3, "E3"),
	)
	MustRegisterBitField[testPacked]("testPacked",
		Bits("Level", 4),
		Bits("Enabled", 1),
		Bits("Offset", 5, Signed()),
		Bits("Mode", 2, AsEnum[testMode]()),
		Bits("Spare", 4, WithAlias("reserved")),
	)
	MustRegisterClass[testPoint]("testPoint")
	MustRegisterClass[testBase]("testBase")
	MustRegisterClass[testRecord]("testRecord")
}
