package model

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Access errors.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidPermission = errors.New("invalid permission")
	ErrInvalidMode       = errors.New("invalid access mode")
)

// Permission is the declared access policy of a device.
type Permission uint8

const (
	// PermReadOnly allows opening for reading only.
	PermReadOnly Permission = 0x01

	// PermWriteOnly allows opening for writing only.
	PermWriteOnly Permission = 0x10

	// PermReadWrite allows any access mode.
	PermReadWrite Permission = 0x11
)

// Valid returns true for one of the three declared permissions.
func (p Permission) Valid() bool {
	switch p {
	case PermReadOnly, PermWriteOnly, PermReadWrite:
		return true
	default:
		return false
	}
}

// String returns the permission name.
func (p Permission) String() string {
	switch p {
	case PermReadOnly:
		return "RDONLY"
	case PermWriteOnly:
		return "WRONLY"
	case PermReadWrite:
		return "RDWR"
	default:
		return fmt.Sprintf("Permission(0x%02x)", uint8(p))
	}
}

// ParsePermission parses a permission name. Matching is case-insensitive.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ro", "rdonly", "readonly":
		return PermReadOnly, nil
	case "wo", "wronly", "writeonly":
		return PermWriteOnly, nil
	case "rw", "rdwr", "readwrite":
		return PermReadWrite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Permission) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidPermission, uint8(p))
	}
	return []byte(strings.ToLower(p.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Permission) UnmarshalText(text []byte) error {
	v, err := ParsePermission(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Permission) MarshalYAML() (any, error) {
	b, err := p.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Permission) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(s))
}

// Mode is the access capability set requested when opening a device.
type Mode uint8

const (
	// ModeRead requests read access.
	ModeRead Mode = 1 << iota

	// ModeWrite requests write access.
	ModeWrite

	// ModeReadWrite requests both.
	ModeReadWrite = ModeRead | ModeWrite
)

// CanRead returns true if the mode includes read access.
func (m Mode) CanRead() bool { return m&ModeRead != 0 }

// CanWrite returns true if the mode includes write access.
func (m Mode) CanWrite() bool { return m&ModeWrite != 0 }

// String returns the mode as "r", "w", "rw" or "-".
func (m Mode) String() string {
	var s string
	if m.CanRead() {
		s += "r"
	}
	if m.CanWrite() {
		s += "w"
	}
	if s == "" {
		return "-"
	}
	return s
}

// ParseMode parses a mode string such as "r", "w" or "rw".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "ro", "read":
		return ModeRead, nil
	case "w", "wo", "write":
		return ModeWrite, nil
	case "rw", "wr", "readwrite":
		return ModeReadWrite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ModeFromFlags translates the access bits of os.OpenFile style flags.
func ModeFromFlags(flags int) Mode {
	switch flags & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		return ModeWrite
	case os.O_RDWR:
		return ModeReadWrite
	default:
		return ModeRead
	}
}

// CheckAccess decides whether a device declaring perm may be opened with mode.
// It returns nil when access is allowed and an error wrapping
// ErrPermissionDenied otherwise.
func CheckAccess(perm Permission, mode Mode) error {
	switch {
	case perm == PermReadWrite:
		return nil
	case perm == PermReadOnly && mode.CanRead() && !mode.CanWrite():
		return nil
	case perm == PermWriteOnly && mode.CanWrite() && !mode.CanRead():
		return nil
	}
	return fmt.Errorf("%w: %s device opened with mode %s", ErrPermissionDenied, perm, mode)
}
