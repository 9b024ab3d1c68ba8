package fileops

import (
	"errors"
	"fmt"
	"io"

	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Operation errors.
var (
	ErrCopyFault       = errors.New("bad address")
	ErrOutOfSpace      = errors.New("no space left on device")
	ErrInvalidArgument = errors.New("invalid argument")
)

// available returns the number of bytes between pos and the end of dev.
func available(dev *model.Device, pos int64) int64 {
	return int64(dev.Size()) - pos
}

// clamp returns min(count, available), never negative.
func clamp(count int, avail int64) int {
	if avail <= 0 {
		return 0
	}
	if int64(count) > avail {
		return int(avail)
	}
	return count
}

// Read copies bytes starting at pos into dst.
// It returns 0 and no error when pos is at or past the end of the device.
func Read(dev *model.Device, pos int64, dst []byte) (int, error) {
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrInvalidArgument, pos)
	}
	count := clamp(len(dst), available(dev, pos))
	if count == 0 {
		return 0, nil
	}
	return dev.CopyOut(pos, dst[:count])
}

// Write copies src into the device starting at pos.
// Bytes that do not fit are dropped; if none fit, Write fails with
// ErrOutOfSpace.
func Write(dev *model.Device, pos int64, src []byte) (int, error) {
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrInvalidArgument, pos)
	}
	count := clamp(len(src), available(dev, pos))
	if count == 0 {
		return 0, fmt.Errorf("%w: position %d of %d", ErrOutOfSpace, pos, dev.Size())
	}
	return dev.CopyIn(pos, src[:count])
}

// Seek computes a new cursor position. whence is one of io.SeekStart,
// io.SeekCurrent or io.SeekEnd. The result must lie within [0, size].
func Seek(dev *model.Device, cur, offset int64, whence int) (int64, error) {
	size := int64(dev.Size())

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = cur + offset
	case io.SeekEnd:
		next = size + offset
	default:
		return cur, fmt.Errorf("%w: whence %d", ErrInvalidArgument, whence)
	}

	if next < 0 || next > size {
		return cur, fmt.Errorf("%w: position %d outside [0, %d]", ErrInvalidArgument, next, size)
	}
	return next, nil
}

// ReadTo copies up to count bytes starting at pos to w.
// A failing w is reported as ErrCopyFault; the returned count is then 0 and
// the caller must not advance its cursor.
func ReadTo(dev *model.Device, pos int64, w io.Writer, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrInvalidArgument, count)
	}
	if w == nil {
		return 0, fmt.Errorf("%w: nil destination", ErrCopyFault)
	}
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrInvalidArgument, pos)
	}

	buf := make([]byte, clamp(count, available(dev, pos)))
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := dev.CopyOut(pos, buf)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(buf[:n]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCopyFault, err)
	}
	return n, nil
}

// WriteFrom copies up to count bytes from r into the device starting at pos.
// The source is staged completely before the device buffer is touched, so a
// failing r leaves the device unchanged and is reported as ErrCopyFault.
// A reader that ends early (io.EOF) is also a fault: the region the caller
// described is not fully accessible.
func WriteFrom(dev *model.Device, pos int64, r io.Reader, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrInvalidArgument, count)
	}
	if r == nil {
		return 0, fmt.Errorf("%w: nil source", ErrCopyFault)
	}
	if pos < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrInvalidArgument, pos)
	}

	n := clamp(count, available(dev, pos))
	if n == 0 {
		return 0, fmt.Errorf("%w: position %d of %d", ErrOutOfSpace, pos, dev.Size())
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCopyFault, err)
	}
	return dev.CopyIn(pos, buf)
}
