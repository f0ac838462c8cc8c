package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, zstd.BestSpeed, cfg.Archive.CompressionLevel)
	assert.False(t, cfg.Dump.ShowHashes)
	assert.True(t, cfg.Dump.Color)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := `
log:
  level: debug
  development: true
archive:
  compression_level: 9
dump:
  show_hashes: true
  color: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refltool.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, 9, cfg.Archive.CompressionLevel)
	assert.True(t, cfg.Dump.ShowHashes)
	assert.False(t, cfg.Dump.Color)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestLoadExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dump:\n  show_hashes: true\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Dump.ShowHashes)
}

func TestEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REFLTOOL_LOG_LEVEL", "error")
	t.Setenv("REFLTOOL_ARCHIVE_COMPRESSION_LEVEL", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Archive.CompressionLevel)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Log: LogConfig{Level: "info"}, Archive: ArchiveConfig{CompressionLevel: 3}}, false},
		{"bad level", Config{Log: LogConfig{Level: "loud"}, Archive: ArchiveConfig{CompressionLevel: 3}}, true},
		{"low compression", Config{Log: LogConfig{Level: "info"}, Archive: ArchiveConfig{CompressionLevel: 0}}, true},
		{"high compression", Config{Log: LogConfig{Level: "info"}, Archive: ArchiveConfig{CompressionLevel: 23}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
