package refldb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
	"github.com/EchoTools/evrReflect/pkg/refl"
	"github.com/EchoTools/evrReflect/pkg/reflbin"
)

type doorState uint8

const (
	doorClosed doorState = iota
	doorOpen
	doorLocked
)

type doorBits uint8

type hinge struct {
	Angle float32
}

type door struct {
	State  doorState `refl:"state,alias=status,desc=Current state|Updated by triggers"`
	Bits   doorBits
	Hinges []hinge
	Label  string
}

func init() {
	refl.MustRegisterEnum[doorState]("doorState",
		refl.Entry(doorClosed, "Closed"),
		refl.Entry(doorOpen, "Open", "Swung wide"),
		refl.Entry(doorLocked, "Locked"),
	)
	refl.MustRegisterBitField[doorBits]("doorBits",
		refl.Bits("Hinged", 1),
		refl.Bits("Side", 3, refl.WithAlias("face")),
	)
	refl.MustRegisterClass[hinge]("hinge")
	refl.MustRegisterClass[door]("door")
}

func testDB(t *testing.T) *DB {
	t.Helper()
	var classes []*refl.Class
	for _, name := range []string{"door", "hinge", "doorBits"} {
		c, ok := refl.LookupClass(jenhash.Sum(name))
		require.True(t, ok, name)
		classes = append(classes, c)
	}
	e, ok := refl.LookupEnum(jenhash.Sum("doorState"))
	require.True(t, ok)
	return New(classes, []*refl.Enum{e})
}

func assertSameClass(t *testing.T, want, got *refl.Class) {
	t.Helper()
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Hash, got.Hash)
	assert.Equal(t, want.Base, got.Base)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.Members, got.Members)
	assert.Equal(t, want.Names, got.Names)
	assert.Equal(t, want.Aliases, got.Aliases)
	assert.Equal(t, want.AliasHashes, got.AliasHashes)
	assert.Equal(t, want.Descs, got.Descs)
	assert.Equal(t, want.IsBitField(), got.IsBitField())
}

func TestMarshalRoundTrip(t *testing.T) {
	db := testDB(t)
	data, err := db.MarshalBinary()
	require.NoError(t, err)

	var got DB
	require.NoError(t, got.UnmarshalBinary(data))
	require.Len(t, got.Classes, 3)
	require.Len(t, got.Enums, 1)

	for i, c := range db.Classes {
		assertSameClass(t, c, got.Classes[i])
	}
	e := got.Enums[0]
	assert.Equal(t, "doorState", e.Name)
	assert.Equal(t, []string{"Closed", "Open", "Locked"}, e.Names)
	assert.Equal(t, []uint64{0, 1, 2}, e.Values)
	assert.Equal(t, "Swung wide", e.Desc(1))
}

func TestOrdering(t *testing.T) {
	db := testDB(t)
	for i := 1; i < len(db.Classes); i++ {
		assert.Less(t, db.Classes[i-1].Hash, db.Classes[i].Hash)
	}
}

func TestLookup(t *testing.T) {
	db := testDB(t)

	c, ok := db.LookupClass(jenhash.Sum("door"))
	require.True(t, ok)
	assert.Equal(t, "door", c.Name)
	_, ok = db.LookupEnum(jenhash.Sum("doorState"))
	assert.True(t, ok)

	tests := map[string]string{
		"door":   "door",
		"state":  "state",
		"status": "status",
		"face":   "face",
		"Locked": "Locked",
	}
	for in, want := range tests {
		got, ok := db.Name(jenhash.Sum(in))
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok = db.Name(jenhash.Sum("nothing here"))
	assert.False(t, ok)
}

func TestUnmarshalErrors(t *testing.T) {
	data, err := testDB(t).MarshalBinary()
	require.NoError(t, err)

	var db DB
	bad := append([]byte("XXXX"), data[4:]...)
	assert.ErrorIs(t, db.UnmarshalBinary(bad), ErrInvalidMagic)

	bad = append([]byte{}, data...)
	bad[4] = 0
	assert.ErrorIs(t, db.UnmarshalBinary(bad), ErrVersion)

	for _, n := range []int{2, 16, len(data) / 2, len(data) - 1} {
		assert.Error(t, db.UnmarshalBinary(data[:n]), "truncated to %d", n)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	db := testDB(t)

	path := filepath.Join(dir, "types.rfdb")
	require.NoError(t, db.WriteFile(path, archive.WithCompressionLevel(5)))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, archive.IsArchive(raw))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got.Classes, len(db.Classes))
	for i := range db.Classes {
		assertSameClass(t, db.Classes[i], got.Classes[i])
	}

	// Plain databases load as well.
	plain := filepath.Join(dir, "plain.rfdb")
	data, err := db.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(plain, data, 0o644))
	got, err = ReadFile(plain)
	require.NoError(t, err)
	assert.Len(t, got.Enums, 1)

	_, err = ReadFile(filepath.Join(dir, "missing.rfdb"))
	assert.Error(t, err)
}

func TestFromRegistry(t *testing.T) {
	db := FromRegistry()
	_, ok := db.LookupClass(jenhash.Sum("door"))
	assert.True(t, ok)
	assert.Equal(t, 0, db.Install())
}

func TestDumpWithDatabase(t *testing.T) {
	d := &door{State: doorLocked, Hinges: []hinge{{Angle: 90}}, Label: "front"}
	data, err := reflbin.Marshal(refl.MustOf(d))
	require.NoError(t, err)

	raw, err := testDB(t).MarshalBinary()
	require.NoError(t, err)
	var db DB
	require.NoError(t, db.UnmarshalBinary(raw))

	var out strings.Builder
	require.NoError(t, reflbin.Dump(&out, data, &db))
	text := out.String()
	assert.Contains(t, text, "door\n")
	assert.Contains(t, text, "  state: Locked\n")
	assert.Contains(t, text, "  Hinges: 1 elements\n")
	assert.Contains(t, text, "      Angle: 90\n")
	assert.Contains(t, text, "  Label: front\n")
}
