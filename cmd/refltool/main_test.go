package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EchoTools/evrReflect/pkg/archive"
	"github.com/EchoTools/evrReflect/pkg/jenhash"
)

// workspace switches to an empty directory holding a colourless config.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
	require.NoError(t, os.WriteFile("refltool.yaml", []byte("dump:\n  color: false\n"), 0o644))
	return dir
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err, "refltool %s", strings.Join(args, " "))
	return out
}

func TestVersion(t *testing.T) {
	workspace(t)
	out := run(t, "version")
	assert.Contains(t, out, "refltool version: dev")
	assert.Contains(t, out, "Go version: go")
}

func TestHash(t *testing.T) {
	workspace(t)
	out := run(t, "hash", "bug", "TintPreset")
	assert.Contains(t, out, "0x54908567  bug\n")
	assert.Contains(t, out, jenhash.Sum("TintPreset").String()+"  TintPreset\n")
}

func TestListings(t *testing.T) {
	workspace(t)
	out := run(t, "classes", "-v")
	assert.Contains(t, out, "TintPreset")
	assert.Contains(t, out, "bitfield R11G11B10")
	assert.Contains(t, out, "(alias symbol)")

	out = run(t, "enums", "-v")
	assert.Contains(t, out, "TintSlot")
	assert.Contains(t, out, "Accent2")
}

func TestEditRecord(t *testing.T) {
	workspace(t)
	run(t, "new", "TintPreset", "preset.bin")

	run(t, "set", "preset.bin", "name", "sunset")
	run(t, "set", "preset.bin", "overrides", "Main1 | Body")
	run(t, "set", "preset.bin", "tint.colors[4].red", "0.5")
	run(t, "set", "preset.bin", "glow.b", "2")
	run(t, "set", "preset.bin", "tags", "{event, season}")

	assert.Equal(t, "sunset\n", run(t, "get", "preset.bin", "name"))
	assert.Equal(t, "Main1 | Body\n", run(t, "get", "preset.bin", "overrides"))
	assert.Equal(t, "0.5\n", run(t, "get", "preset.bin", "tint.colors[4].red"))
	assert.Equal(t, "2\n", run(t, "get", "preset.bin", "glow.b"))
	assert.Equal(t, "{event, season}\n", run(t, "get", "preset.bin", "tags"))

	out := run(t, "set", "preset.bin", "tint.symbol", "-1")
	assert.Contains(t, out, "warning:")
	assert.Equal(t, "18446744073709551615\n", run(t, "get", "preset.bin", "tint.resourceID"))

	_, err := execute("set", "preset.bin", "overrides", "Sideways")
	assert.Error(t, err)
	_, err = execute("get", "preset.bin", "missing")
	assert.Error(t, err)
	_, err = execute("get", "preset.bin", "tint.colors[x]")
	assert.Error(t, err)
	_, err = execute("new", "NoSuchClass", "other.bin")
	assert.Error(t, err)
}

func TestCompressedRecord(t *testing.T) {
	workspace(t)
	run(t, "new", "-z", "TintPreset", "preset.zst")
	run(t, "set", "preset.zst", "name", "packed")

	data, err := os.ReadFile("preset.zst")
	require.NoError(t, err)
	assert.True(t, archive.IsArchive(data))
	assert.Equal(t, "packed\n", run(t, "get", "preset.zst", "name"))
}

func TestDumpAndDatabase(t *testing.T) {
	dir := workspace(t)
	run(t, "new", "TintPreset", "preset.bin")
	run(t, "set", "preset.bin", "name", "sunset")

	out := run(t, "dump", "preset.bin")
	assert.Contains(t, out, "TintPreset\n")
	assert.Contains(t, out, "  name: sunset\n")
	assert.Contains(t, out, "  tint: TintEntry\n")

	dbPath := filepath.Join(dir, "descriptors.db")
	out = run(t, "export", dbPath)
	assert.Contains(t, out, "wrote")

	data, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.True(t, archive.IsArchive(data))

	out = run(t, "inspect", "-v", dbPath)
	assert.Contains(t, out, "TintPreset")
	assert.Contains(t, out, "TintSlot")

	out = run(t, "dump", "--db", dbPath, "preset.bin")
	assert.Contains(t, out, "  name: sunset\n")

	_, err = execute("inspect", "preset.bin")
	assert.Error(t, err)
}
