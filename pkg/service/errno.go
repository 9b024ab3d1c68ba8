package service

import (
	"errors"
	"fmt"

	"github.com/pcd-emu/pcd-go/pkg/fileops"
	"github.com/pcd-emu/pcd-go/pkg/model"
)

// Errno is a character driver error number.
type Errno int

const (
	EPERM  Errno = 1
	EIO    Errno = 5
	ENXIO  Errno = 6
	EBADF  Errno = 9
	ENOMEM Errno = 12
	EFAULT Errno = 14
	EINVAL Errno = 22
)

var errnoNames = map[Errno]string{
	EPERM:  "EPERM",
	EIO:    "EIO",
	ENXIO:  "ENXIO",
	EBADF:  "EBADF",
	ENOMEM: "ENOMEM",
	EFAULT: "EFAULT",
	EINVAL: "EINVAL",
}

func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Errno(%d)", int(e))
}

// ToErrno maps an error returned by this package to the errno a character
// driver would return for it. It returns 0 for nil and EIO for errors it
// does not recognize.
func ToErrno(err error) Errno {
	var errno Errno
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrNoSuchDevice):
		return ENXIO
	case errors.Is(err, model.ErrPermissionDenied):
		return EPERM
	case errors.Is(err, fileops.ErrCopyFault):
		return EFAULT
	case errors.Is(err, fileops.ErrOutOfSpace):
		return ENOMEM
	case errors.Is(err, fileops.ErrInvalidArgument), errors.Is(err, model.ErrInvalidOffset):
		return EINVAL
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrModeMismatch):
		return EBADF
	case errors.As(err, &errno):
		return errno
	default:
		return EIO
	}
}
