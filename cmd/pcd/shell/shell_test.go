package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcd-emu/pcd-go/pkg/model"
	"github.com/pcd-emu/pcd-go/pkg/service"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	drv := service.NewDriver(model.NewDefaultTable(), service.DefaultDriverConfig())
	sh := New(drv, &out)
	t.Cleanup(func() { _ = sh.Close() })
	return sh, &out
}

// run executes a command and returns only the output it produced.
func run(sh *Shell, out *bytes.Buffer, line string) string {
	out.Reset()
	sh.Execute(line)
	return out.String()
}

func TestShellWriteSeekRead(t *testing.T) {
	sh, out := newTestShell(t)

	assert.Contains(t, run(sh, out, "open 3 rw"), "Session 1: rw on minor 3 (PCDXYZ_4_Q)")
	assert.Contains(t, run(sh, out, "write hello world"), "Wrote 11 bytes, position 11")
	assert.Contains(t, run(sh, out, "seek 0 set"), "Position 0")

	got := run(sh, out, "read 5")
	assert.Contains(t, got, "5 bytes, position 5")
	assert.Contains(t, got, "|hello|")

	assert.Contains(t, run(sh, out, "seek -1 end"), "Position 511")
	assert.Contains(t, run(sh, out, "read 10"), "1 bytes, position 512")
	assert.Contains(t, run(sh, out, "read 10"), "0 bytes (end of device)")
}

func TestShellWriteHex(t *testing.T) {
	sh, out := newTestShell(t)

	run(sh, out, "open 2 rw")
	assert.Contains(t, run(sh, out, "writehex de ad be ef"), "Wrote 4 bytes")
	assert.Contains(t, run(sh, out, "writehex xyz"), "Invalid hex")

	dev := sh.sessions[0].Device()
	buf := make([]byte, 4)
	_, err := dev.CopyOut(0, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf)
}

func TestShellErrors(t *testing.T) {
	sh, out := newTestShell(t)

	assert.Contains(t, run(sh, out, "read 4"), "No current session")
	assert.Contains(t, run(sh, out, "open 9 r"), "-6 ENXIO")
	assert.Contains(t, run(sh, out, "open 0 w"), "-1 EPERM")
	assert.Contains(t, run(sh, out, "open 0 x"), "Invalid mode")
	assert.Contains(t, run(sh, out, "open"), "Usage: open")

	run(sh, out, "open 0 r")
	assert.Contains(t, run(sh, out, "write x"), "-9 EBADF")
	assert.Contains(t, run(sh, out, "seek 513 set"), "-22 EINVAL")
	assert.Contains(t, run(sh, out, "seek 1 middle"), "Invalid whence")

	run(sh, out, "open 3 w")
	run(sh, out, "seek 0 end")
	assert.Contains(t, run(sh, out, "write x"), "-12 ENOMEM")

	assert.Contains(t, run(sh, out, "frobnicate"), "Unknown command: frobnicate")
}

func TestShellPartialWrite(t *testing.T) {
	sh, out := newTestShell(t)

	run(sh, out, "open 1 w")
	run(sh, out, "seek 510 set")
	assert.Contains(t, run(sh, out, "write abcd"), "Wrote 2 of 4 bytes (device full), position 512")
}

func TestShellSessions(t *testing.T) {
	sh, out := newTestShell(t)

	assert.Contains(t, run(sh, out, "sessions"), "No open sessions")

	run(sh, out, "open 2 rw")
	run(sh, out, "open 3 r")

	got := run(sh, out, "sessions")
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  1: minor 2 rw"))
	assert.True(t, strings.HasPrefix(lines[1], "* 2: minor 3 r"))

	assert.Contains(t, run(sh, out, "use 1"), "Session 1 is current")
	assert.Contains(t, run(sh, out, "use 5"), "No such session")

	assert.Contains(t, run(sh, out, "info 2/open_sessions"), "open_sessions = 1")

	assert.Contains(t, run(sh, out, "close"), "Session 1 released")
	assert.Equal(t, 0, sh.driver.OpenCount(2))
	assert.Contains(t, run(sh, out, "info 2/open_sessions"), "open_sessions = 0")

	got = run(sh, out, "sessions")
	assert.Contains(t, got, "* 1: minor 3 r")
}

func TestShellListAndInfo(t *testing.T) {
	sh, out := newTestShell(t)

	got := run(sh, out, "list")
	assert.Contains(t, got, "MINOR")
	assert.Contains(t, got, "PCDXYZ_1_Q")
	assert.Contains(t, got, "PCDXYZ_4_Q")

	got = run(sh, out, "info PCDXYZ_2_Q")
	assert.Contains(t, got, "Device 1:")
	assert.Contains(t, got, "permission: WRONLY")

	assert.Contains(t, run(sh, out, "info 0/permission"), "permission = RDONLY")
	assert.Contains(t, run(sh, out, "info 0/owner"), "Invalid path")
	assert.Contains(t, run(sh, out, "info 7"), "device not found")
}

func TestShellQuit(t *testing.T) {
	sh, out := newTestShell(t)

	assert.True(t, sh.Execute(""))
	assert.True(t, sh.Execute("help"))
	assert.Contains(t, out.String(), "PCD Commands")
	assert.False(t, sh.Execute("quit"))
	assert.False(t, sh.Execute("EXIT"))
}

func TestShellCloseReleasesAll(t *testing.T) {
	sh, out := newTestShell(t)

	run(sh, out, "open 2 r")
	run(sh, out, "open 2 w")
	require.Equal(t, 2, sh.driver.OpenCount(2))

	require.NoError(t, sh.Close())
	assert.Equal(t, 0, sh.driver.OpenCount(2))
	assert.Contains(t, run(sh, out, "read 1"), "No current session")
}
