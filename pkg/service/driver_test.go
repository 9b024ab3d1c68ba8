package service

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pcd-emu/pcd-go/pkg/log"
	"github.com/pcd-emu/pcd-go/pkg/log/mocks"
	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Minor numbers of the reference table.
const (
	minorRO = 0
	minorWO = 1
	minorRW = 2
)

var allModes = []model.Mode{0, model.ModeRead, model.ModeWrite, model.ModeReadWrite}

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	return NewDriver(model.NewDefaultTable(), DefaultDriverConfig())
}

func TestOpenReadWriteDeviceAllowsEveryMode(t *testing.T) {
	drv := newTestDriver(t)

	for _, minor := range []int{2, 3} {
		for _, mode := range allModes {
			s, err := drv.Open(minor, mode)
			require.NoError(t, err, "minor %d mode %s", minor, mode)
			assert.True(t, s.Bound())
			assert.Zero(t, s.Position())
			require.NoError(t, s.Release())
		}
	}
}

func TestOpenReadOnlyDevice(t *testing.T) {
	drv := newTestDriver(t)

	for _, mode := range allModes {
		s, err := drv.Open(minorRO, mode)
		if mode == model.ModeRead {
			require.NoError(t, err)
			require.NoError(t, s.Release())
			continue
		}
		assert.ErrorIs(t, err, model.ErrPermissionDenied, "mode %s", mode)
		assert.Nil(t, s)
	}
}

func TestOpenWriteOnlyDevice(t *testing.T) {
	drv := newTestDriver(t)

	for _, mode := range allModes {
		s, err := drv.Open(minorWO, mode)
		if mode == model.ModeWrite {
			require.NoError(t, err)
			require.NoError(t, s.Release())
			continue
		}
		assert.ErrorIs(t, err, model.ErrPermissionDenied, "mode %s", mode)
		assert.Nil(t, s)
	}
}

func TestOpenDeniedCreatesNoSession(t *testing.T) {
	drv := newTestDriver(t)

	s, err := drv.Open(minorRO, model.ModeWrite)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Nil(t, s)
	assert.Empty(t, drv.Sessions())
	assert.Zero(t, drv.OpenCount(minorRO))
}

func TestOpenNoSuchDevice(t *testing.T) {
	drv := newTestDriver(t)

	for _, minor := range []int{-1, 4, 100} {
		s, err := drv.Open(minor, model.ModeRead)
		assert.ErrorIs(t, err, model.ErrNoSuchDevice)
		assert.Nil(t, s)
		assert.Equal(t, ENXIO, ToErrno(err))
	}
}

func TestOpenFlags(t *testing.T) {
	drv := newTestDriver(t)

	s, err := drv.OpenFlags(minorRO, os.O_RDONLY)
	require.NoError(t, err)
	assert.Equal(t, model.ModeRead, s.Mode())
	require.NoError(t, s.Release())

	_, err = drv.OpenFlags(minorRO, os.O_RDWR)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	s, err = drv.OpenFlags(minorWO, os.O_WRONLY|os.O_TRUNC)
	require.NoError(t, err)
	assert.Equal(t, model.ModeWrite, s.Mode())
	require.NoError(t, s.Release())
}

func TestOpenCountAndSessions(t *testing.T) {
	drv := newTestDriver(t)

	a, err := drv.Open(minorRW, model.ModeReadWrite)
	require.NoError(t, err)
	b, err := drv.Open(minorRW, model.ModeRead)
	require.NoError(t, err)
	c, err := drv.Open(minorRO, model.ModeRead)
	require.NoError(t, err)

	assert.Equal(t, 2, drv.OpenCount(minorRW))
	assert.Equal(t, 1, drv.OpenCount(minorRO))
	assert.Zero(t, drv.OpenCount(99))

	sessions := drv.Sessions()
	require.Len(t, sessions, 3)
	assert.Equal(t, c.ID(), sessions[0].ID(), "sessions are ordered by minor")
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Release())
	require.NoError(t, a.Release(), "release is idempotent")
	assert.Equal(t, 1, drv.OpenCount(minorRW))

	drv.ReleaseAll()
	assert.Empty(t, drv.Sessions())
	assert.Zero(t, drv.OpenCount(minorRW))
	assert.False(t, b.Bound())
	assert.False(t, c.Bound())
}

func TestOpenTracesEvents(t *testing.T) {
	logger := mocks.NewMockLogger(t)

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Op == log.OpOpen && e.Category == log.CategoryError &&
			e.Minor == minorRO && e.Error != nil && *e.Error.Errno == int(EPERM) &&
			e.Open.Permission == model.PermReadOnly && e.SessionID == ""
	})).Return().Once()

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Op == log.OpOpen && e.Category == log.CategoryError &&
			e.Minor == 9 && *e.Error.Errno == int(ENXIO)
	})).Return().Once()

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Op == log.OpOpen && e.Category == log.CategorySession &&
			e.Minor == minorRW && e.Serial == "PCDXYZ_3_Q" && e.SessionID != "" && e.Error == nil
	})).Return().Once()

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Op == log.OpRelease && e.Category == log.CategorySession && e.Minor == minorRW
	})).Return().Once()

	cfg := DefaultDriverConfig()
	cfg.AccessLogger = logger
	drv := NewDriver(model.NewDefaultTable(), cfg)

	_, err := drv.Open(minorRO, model.ModeWrite)
	require.Error(t, err)
	_, err = drv.Open(9, model.ModeRead)
	require.Error(t, err)

	s, err := drv.Open(minorRW, model.ModeReadWrite)
	require.NoError(t, err)
	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
}
