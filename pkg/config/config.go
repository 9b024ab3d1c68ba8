// Package config loads the device table and driver settings from YAML.
//
// A configuration file looks like:
//
//	devices:
//	  - size: 512
//	    serial: PCDXYZ_1_Q
//	    permission: rdonly
//	  - size: 512
//	    serial: PCDXYZ_2_Q
//	    permission: wronly
//	log_level: info
//	trace:
//	  path: /var/log/pcd/access.trace
//	  console: false
//
// Devices get minor numbers in file order, starting at 0. Default returns
// the reference four-device table.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pcd-emu/pcd-go/pkg/model"
)

// MaxDeviceSize bounds the buffer size of a configured device.
const MaxDeviceSize = 1 << 20

// Config is the complete driver configuration.
type Config struct {
	// Devices lists the device table in minor order.
	Devices []Device `yaml:"devices"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Trace configures the access trace.
	Trace Trace `yaml:"trace,omitempty"`
}

// Device is one device table entry.
type Device struct {
	Size       int              `yaml:"size"`
	Serial     string           `yaml:"serial"`
	Permission model.Permission `yaml:"permission"`
}

// Trace configures where access events go.
type Trace struct {
	// Path is the CBOR trace file. Empty disables file tracing.
	Path string `yaml:"path,omitempty"`

	// Console mirrors access events to the operational log.
	Console bool `yaml:"console,omitempty"`
}

// Error describes a configuration that could not be loaded.
type Error struct {
	// File is the configuration path (empty for in-memory data).
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Default returns the reference configuration.
func Default() *Config {
	specs := model.DefaultSpecs()
	cfg := &Config{
		Devices:  make([]Device, 0, len(specs)),
		LogLevel: "info",
	}
	for _, s := range specs {
		cfg.Devices = append(cfg.Devices, Device{
			Size:       s.Size,
			Serial:     s.Serial,
			Permission: s.Permission,
		})
	}
	return cfg
}

// Parse parses and validates a configuration from YAML bytes.
// Omitted settings keep their defaults; a devices list replaces the
// reference table entirely.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Devices = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Message: "failed to parse YAML", Cause: err}
	}
	if cfg.Devices == nil {
		cfg.Devices = Default().Devices
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.File = path
			return nil, ce
		}
		return nil, &Error{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Devices) == 0 {
		return &Error{Message: "at least one device is required"}
	}

	serials := make(map[string]int, len(c.Devices))
	for i, d := range c.Devices {
		if d.Size <= 0 || d.Size > MaxDeviceSize {
			return &Error{
				Message: fmt.Sprintf("device %d: size must be 1-%d", i, MaxDeviceSize),
				Cause:   model.ErrInvalidSize,
			}
		}
		if d.Serial == "" {
			return &Error{Message: fmt.Sprintf("device %d: serial is required", i)}
		}
		if prev, ok := serials[d.Serial]; ok {
			return &Error{
				Message: fmt.Sprintf("device %d: serial %q already used by device %d", i, d.Serial, prev),
				Cause:   model.ErrDuplicateSerial,
			}
		}
		serials[d.Serial] = i
		if !d.Permission.Valid() {
			return &Error{
				Message: fmt.Sprintf("device %d: permission is required", i),
				Cause:   model.ErrInvalidPermission,
			}
		}
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &Error{Message: "invalid log_level", Cause: err}
	}
	return nil
}

// Specs converts the device list to table construction parameters.
func (c *Config) Specs() []model.DeviceSpec {
	specs := make([]model.DeviceSpec, 0, len(c.Devices))
	for _, d := range c.Devices {
		specs = append(specs, model.DeviceSpec{
			Size:       d.Size,
			Serial:     d.Serial,
			Permission: d.Permission,
		})
	}
	return specs
}

// Table builds the device table described by the configuration.
func (c *Config) Table() (*model.Table, error) {
	return model.NewTable(c.Specs()...)
}

// ParseLevel converts a level name to an slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
