// Package inspect provides read-only device attributes and display helpers.
//
// The inspect package offers a unified interface for:
//   - Parsing attribute paths (e.g., "0/serial" or "PCDXYZ_2_Q/permission")
//   - Resolving attribute names
//   - Reading attribute values from a running driver
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
)

// Path represents a parsed inspection path.
// Format: device[/attribute], where device is a minor number or a serial.
type Path struct {
	// Minor is the device minor number (valid when Serial is empty).
	Minor int

	// Serial names the device by serial instead of minor.
	Serial string

	// Attribute is the canonical attribute name.
	Attribute string

	// IsPartial indicates the path has no attribute
	// (used to show all attributes of a device).
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "minor" or "serial" - partial (all attributes)
//   - "minor/attribute" or "serial/attribute"
//
// Minor numbers can be decimal or hex (0x prefix).
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	if len(parts) > 2 {
		return nil, ErrInvalidPath
	}

	p := &Path{Raw: input}

	if minor, err := parseMinor(parts[0]); err == nil {
		p.Minor = minor
	} else if isNumeric(parts[0]) {
		return nil, fmt.Errorf("device: %w: %s", ErrInvalidNumber, parts[0])
	} else {
		p.Serial = parts[0]
	}

	if len(parts) == 1 {
		p.IsPartial = true
		return p, nil
	}

	name, ok := ResolveAttributeName(parts[1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, parts[1])
	}
	p.Attribute = name

	return p, nil
}

// String returns the path as a string.
func (p *Path) String() string {
	var sb strings.Builder

	if p.Serial != "" {
		sb.WriteString(p.Serial)
	} else {
		sb.WriteString(strconv.Itoa(p.Minor))
	}

	if !p.IsPartial {
		sb.WriteString("/")
		sb.WriteString(p.Attribute)
	}

	return sb.String()
}

// isNumeric reports whether s looks like a number, valid or not.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return true
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// parseMinor parses a minor number from decimal or hex string.
func parseMinor(s string) (int, error) {
	var v uint64
	var err error

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		v, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
