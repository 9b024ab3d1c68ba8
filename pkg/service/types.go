package service

import (
	"log/slog"

	"github.com/pcd-emu/pcd-go/pkg/log"
)

// DriverConfig configures a Driver.
type DriverConfig struct {
	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// AccessLogger receives an event for every operation.
	// If nil, tracing is disabled.
	AccessLogger log.Logger
}

// DefaultDriverConfig returns a DriverConfig with logging and tracing disabled.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{}
}
