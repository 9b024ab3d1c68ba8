package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcd-emu/pcd-go/pkg/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDeviceCount, table.Len())

	dev, err := table.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, model.PermWriteOnly, dev.Permission())
	assert.Equal(t, "PCDXYZ_2_Q", dev.Serial())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
devices:
  - size: 64
    serial: A
    permission: rw
  - size: 128
    serial: B
    permission: rdonly
log_level: debug
trace:
  path: /tmp/x.trace
  console: true
`))
	require.NoError(t, err)

	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, Device{Size: 64, Serial: "A", Permission: model.PermReadWrite}, cfg.Devices[0])
	assert.Equal(t, model.PermReadOnly, cfg.Devices[1].Permission)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Trace{Path: "/tmp/x.trace", Console: true}, cfg.Trace)

	specs := cfg.Specs()
	assert.Equal(t, model.DeviceSpec{Size: 128, Serial: "B", Permission: model.PermReadOnly}, specs[1])
}

func TestParseKeepsDefaultDevices(t *testing.T) {
	cfg, err := Parse([]byte("log_level: warn\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Devices, model.DefaultDeviceCount)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		cause error
	}{
		{"bad yaml", "devices: [", nil},
		{"empty list", "devices: []\n", nil},
		{"zero size", "devices:\n  - {size: 0, serial: A, permission: rw}\n", model.ErrInvalidSize},
		{"huge size", "devices:\n  - {size: 2000000, serial: A, permission: rw}\n", model.ErrInvalidSize},
		{"no serial", "devices:\n  - {size: 1, permission: rw}\n", nil},
		{"duplicate serial", "devices:\n  - {size: 1, serial: A, permission: rw}\n  - {size: 1, serial: A, permission: ro}\n", model.ErrDuplicateSerial},
		{"no permission", "devices:\n  - {size: 1, serial: A}\n", model.ErrInvalidPermission},
		{"bad permission", "devices:\n  - {size: 1, serial: A, permission: exec}\n", model.ErrInvalidPermission},
		{"bad level", "log_level: loud\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var ce *Error
			assert.True(t, errors.As(err, &ce), "expected *config.Error, got %T", err)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "pcd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  - {size: 8, serial: X, permission: wo}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.PermWriteOnly, cfg.Devices[0].Permission)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("devices: []\n"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
