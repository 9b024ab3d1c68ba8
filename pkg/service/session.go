package service

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pcd-emu/pcd-go/pkg/fileops"
	"github.com/pcd-emu/pcd-go/pkg/log"
	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Session errors.
var (
	ErrNotOpen      = errors.New("session not open")
	ErrModeMismatch = errors.New("session not opened for this access")
)

// Session is one open of a device: a reference to the bound device plus a
// cursor. The device is shared with the table and every other session bound
// to it; the cursor belongs to the session alone.
//
// A Session is safe for concurrent use, though concurrent calls on one
// session race for the cursor just like concurrent calls on one file
// descriptor.
type Session struct {
	id     string
	driver *Driver
	minor  int
	mode   model.Mode

	mu     sync.Mutex
	device *model.Device // nil once released
	pos    int64
}

// ID returns the session identifier (a UUID).
func (s *Session) ID() string {
	return s.id
}

// Minor returns the minor number of the device the session was opened on.
func (s *Session) Minor() int {
	return s.minor
}

// Mode returns the access mode the session was opened with.
func (s *Session) Mode() model.Mode {
	return s.mode
}

// Bound returns true until the session is released.
func (s *Session) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device != nil
}

// Device returns the bound device, or nil after Release.
func (s *Session) Device() *model.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Position returns the cursor position.
func (s *Session) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Read copies bytes at the cursor into p and advances the cursor by the
// number of bytes copied. At the end of the device it returns 0 and a nil
// error; use Reader for io.EOF semantics.
func (s *Session) Read(p []byte) (int, error) {
	return s.transfer(log.OpRead, len(p), func(dev *model.Device, pos int64) (int, error) {
		return fileops.Read(dev, pos, p)
	})
}

// Write copies p to the device at the cursor and advances the cursor by the
// number of bytes copied. Bytes that do not fit are dropped; if nothing fits
// it fails with fileops.ErrOutOfSpace.
func (s *Session) Write(p []byte) (int, error) {
	return s.transfer(log.OpWrite, len(p), func(dev *model.Device, pos int64) (int, error) {
		return fileops.Write(dev, pos, p)
	})
}

// ReadTo copies up to count bytes at the cursor to w. A failing w is a
// fileops.ErrCopyFault and leaves the cursor unchanged.
func (s *Session) ReadTo(w io.Writer, count int) (int, error) {
	return s.transfer(log.OpRead, count, func(dev *model.Device, pos int64) (int, error) {
		return fileops.ReadTo(dev, pos, w, count)
	})
}

// WriteFrom copies up to count bytes from r to the device at the cursor.
// A failing r is a fileops.ErrCopyFault and leaves device and cursor
// unchanged.
func (s *Session) WriteFrom(r io.Reader, count int) (int, error) {
	return s.transfer(log.OpWrite, count, func(dev *model.Device, pos int64) (int, error) {
		return fileops.WriteFrom(dev, pos, r, count)
	})
}

// transfer runs one read or write at the cursor under the session lock.
func (s *Session) transfer(op log.Op, requested int, fn func(*model.Device, int64) (int, error)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(op); err != nil {
		s.driver.trace(log.Event{SessionID: s.id, Op: op, Minor: s.minor}, err)
		return 0, err
	}

	logger := s.driver.config.Logger
	if logger != nil {
		logger.Debug("transfer request",
			"op", op.String(),
			"session", s.id,
			"requested", requested,
			"position", s.pos)
	}

	from := s.pos
	n, err := fn(s.device, from)
	if err == nil {
		s.pos += int64(n)
	}

	s.driver.trace(log.Event{
		SessionID: s.id,
		Op:        op,
		Minor:     s.minor,
		Serial:    s.device.Serial(),
		Transfer: &log.TransferEvent{
			Requested: requested,
			Count:     n,
			Offset:    from,
			Position:  s.pos,
		},
	}, err)

	if err != nil {
		return 0, err
	}

	if logger != nil {
		logger.Debug("transfer done",
			"op", op.String(),
			"session", s.id,
			"count", n,
			"position", s.pos)
	}
	return n, nil
}

// check verifies that the session is bound and was opened for op.
// Callers hold s.mu.
func (s *Session) check(op log.Op) error {
	if s.device == nil {
		return ErrNotOpen
	}
	switch {
	case op == log.OpRead && !s.mode.CanRead():
		return fmt.Errorf("%w: read on %s session", ErrModeMismatch, s.mode)
	case op == log.OpWrite && !s.mode.CanWrite():
		return fmt.Errorf("%w: write on %s session", ErrModeMismatch, s.mode)
	}
	return nil
}

// Seek moves the cursor. whence is io.SeekStart, io.SeekCurrent or
// io.SeekEnd; the new position must lie within [0, size] of the device,
// otherwise Seek fails with fileops.ErrInvalidArgument and the cursor stays.
func (s *Session) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(log.OpSeek); err != nil {
		s.driver.trace(log.Event{SessionID: s.id, Op: log.OpSeek, Minor: s.minor}, err)
		return 0, err
	}

	from := s.pos
	pos, err := fileops.Seek(s.device, from, offset, whence)
	if err == nil {
		s.pos = pos
	}

	s.driver.trace(log.Event{
		SessionID: s.id,
		Op:        log.OpSeek,
		Minor:     s.minor,
		Serial:    s.device.Serial(),
		Seek: &log.SeekEvent{
			Offset:   offset,
			Whence:   whence,
			From:     from,
			Position: s.pos,
		},
	}, err)

	if err != nil {
		return 0, err
	}

	if logger := s.driver.config.Logger; logger != nil {
		logger.Debug("seek done", "session", s.id, "from", from, "position", s.pos)
	}
	return s.pos, nil
}

// Release unbinds the session from its device. It always succeeds and may be
// called more than once.
func (s *Session) Release() error {
	s.mu.Lock()
	dev := s.device
	s.device = nil
	s.mu.Unlock()

	if dev == nil {
		return nil
	}

	s.driver.forget(s)
	s.driver.trace(log.Event{
		SessionID: s.id,
		Op:        log.OpRelease,
		Minor:     s.minor,
		Serial:    dev.Serial(),
	}, nil)

	if logger := s.driver.config.Logger; logger != nil {
		logger.Debug("release", "session", s.id, "minor", s.minor)
	}
	return nil
}

// Close implements io.Closer. It is Release.
func (s *Session) Close() error {
	return s.Release()
}

// Reader returns an io.Reader over the session that reports io.EOF at the
// end of the device.
func (s *Session) Reader() io.Reader {
	return sessionReader{s}
}

// Writer returns an io.Writer over the session that reports
// io.ErrShortWrite when the device fills up mid-write.
func (s *Session) Writer() io.Writer {
	return sessionWriter{s}
}

type sessionReader struct{ s *Session }

func (r sessionReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.s.Read(p)
	if err == nil && n == 0 {
		return 0, io.EOF
	}
	return n, err
}

type sessionWriter struct{ s *Session }

func (w sessionWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.s.Write(p)
	if err == nil && n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, err
}

// Compile-time interface satisfaction checks.
var (
	_ io.Seeker = (*Session)(nil)
	_ io.Closer = (*Session)(nil)
)
