package model

import (
	"errors"
	"fmt"
	"sync"
)

// Device errors.
var (
	ErrInvalidSize   = errors.New("invalid device size")
	ErrInvalidOffset = errors.New("offset outside device buffer")
)

// Device is one pseudo character device: a fixed-size buffer together with
// its identity, serial number and declared permission.
// Only the buffer contents are mutable after construction.
type Device struct {
	// mu serializes copies into and out of buffer.
	mu sync.Mutex

	// Minor is the device identity within its table.
	minor int

	// Serial is informational only.
	serial string

	// Perm is the declared access policy.
	perm Permission

	// Buffer holds the device contents; len(buffer) is the device size.
	buffer []byte
}

// NewDevice creates a device with a zeroed buffer of the given size.
func NewDevice(minor, size int, serial string, perm Permission) (*Device, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if !perm.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidPermission, uint8(perm))
	}
	return &Device{
		minor:  minor,
		serial: serial,
		perm:   perm,
		buffer: make([]byte, size),
	}, nil
}

// Minor returns the device identity.
func (d *Device) Minor() int {
	return d.minor
}

// Size returns the buffer capacity in bytes.
func (d *Device) Size() int {
	return len(d.buffer)
}

// Serial returns the device serial number.
func (d *Device) Serial() string {
	return d.serial
}

// Permission returns the declared access permission.
func (d *Device) Permission() Permission {
	return d.perm
}

// CopyOut copies buffer bytes starting at off into p and returns the number
// of bytes copied. It never copies past the end of the buffer.
func (d *Device) CopyOut(off int64, p []byte) (int, error) {
	if off < 0 || off > int64(len(d.buffer)) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOffset, off)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return copy(p, d.buffer[off:]), nil
}

// CopyIn copies p into the buffer starting at off and returns the number of
// bytes copied. Bytes that would land past the end of the buffer are dropped.
func (d *Device) CopyIn(off int64, p []byte) (int, error) {
	if off < 0 || off > int64(len(d.buffer)) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOffset, off)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return copy(d.buffer[off:], p), nil
}

// DeviceInfo is a read-only summary of a device.
type DeviceInfo struct {
	Minor      int        `cbor:"1,keyasint" json:"minor" yaml:"minor"`
	Serial     string     `cbor:"2,keyasint" json:"serial" yaml:"serial"`
	Size       int        `cbor:"3,keyasint" json:"size" yaml:"size"`
	Permission Permission `cbor:"4,keyasint" json:"permission" yaml:"permission"`
}

// Info returns the device summary.
func (d *Device) Info() DeviceInfo {
	return DeviceInfo{
		Minor:      d.minor,
		Serial:     d.serial,
		Size:       len(d.buffer),
		Permission: d.perm,
	}
}
