// Package log provides the access trace for pseudo character devices.
//
// This package defines the Logger interface and Event types for capturing
// every open, release, read, write and seek performed through a driver.
// It is separate from operational logging (slog): the access trace is a
// complete machine-readable record of what each session did to which device.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.AccessLogger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to a trace file
//	cfg.AccessLogger, _ = log.NewFileLogger("/var/log/pcd/access.trace")
//
//	// Both: use MultiLogger
//	cfg.AccessLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every event carries the session ID, device minor and operation. The
// operation-specific payload is one of:
//   - OpenEvent: requested mode and declared permission
//   - TransferEvent: requested and transferred byte counts for read/write
//   - SeekEvent: offset, whence and resulting position
//
// Failed operations additionally carry an ErrorEventData.
//
// # File Format
//
// Trace files are a sequence of CBOR-encoded events. The pcd-log CLI tool
// provides viewing, filtering, statistics and export.
package log
