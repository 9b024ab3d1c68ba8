// Package fileops implements the bounds-checked read, write and seek
// operations of a pseudo character device.
//
// The functions operate on a device and a cursor position owned by the
// caller; they never keep state of their own. A successful Read or Write
// returns the number of bytes transferred and the caller advances its cursor
// by that amount. Seek returns the new cursor position.
//
// Bounds follow the character driver semantics:
//   - reads are clamped to the bytes left before the end of the buffer,
//     and a read at the end returns 0 bytes without error
//   - writes are clamped the same way, and a write with no room left fails
//     with ErrOutOfSpace
//   - seeks may land anywhere in [0, size], never past the end
package fileops
