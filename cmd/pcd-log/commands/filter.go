package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pcd-emu/pcd-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter and view commands.
type FilterOptions struct {
	SessionID string
	Minor     string
	Op        string
	Category  string
	TimeStart string
	TimeEnd   string
}

// BuildFilter converts command-line options into a trace filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{SessionID: opts.SessionID}

	if opts.Minor != "" {
		m, err := ParseMinorFlag(opts.Minor)
		if err != nil {
			return filter, err
		}
		filter.Minor = &m
	}

	if opts.Op != "" {
		op, err := parseOp(opts.Op)
		if err != nil {
			return filter, err
		}
		filter.Op = &op
	}

	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter filters the trace file and writes matching events to output.
// It returns the number of events written.
func RunFilter(path, output string, opts FilterOptions) (int, error) {
	filter, err := BuildFilter(opts)
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	// Create file logger to write filtered events
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}

	return count, nil
}
