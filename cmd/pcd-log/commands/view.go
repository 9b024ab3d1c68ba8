// Package commands implements the pcd-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pcd-emu/pcd-go/pkg/log"
	"github.com/pcd-emu/pcd-go/pkg/service"
)

// timestampFormat is used for all human-readable and CSV output.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [sess:id] OP minor (serial) CATEGORY
	ts := event.Timestamp.UTC().Format(timestampFormat)
	fmt.Fprintf(w, "%s [sess:%s] %-7s minor=%d", ts, shortenSessionID(event.SessionID), event.Op, event.Minor)
	if event.Serial != "" {
		fmt.Fprintf(w, " (%s)", event.Serial)
	}
	fmt.Fprintf(w, " %s\n", event.Category)

	switch {
	case event.Open != nil:
		formatOpenDetails(w, event.Open)
	case event.Transfer != nil:
		formatTransferDetails(w, event.Transfer)
	case event.Seek != nil:
		formatSeekDetails(w, event.Seek)
	}
	if event.Error != nil {
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatOpenDetails(w io.Writer, open *log.OpenEvent) {
	fmt.Fprintf(w, "  Mode: %s\n", open.Mode)
	if open.Permission != 0 {
		fmt.Fprintf(w, "  Permission: %s\n", open.Permission)
	}
}

func formatTransferDetails(w io.Writer, tr *log.TransferEvent) {
	fmt.Fprintf(w, "  Requested: %d bytes  Transferred: %d bytes\n", tr.Requested, tr.Count)
	fmt.Fprintf(w, "  Position: %d -> %d\n", tr.Offset, tr.Position)
}

func formatSeekDetails(w io.Writer, sk *log.SeekEvent) {
	fmt.Fprintf(w, "  Offset: %d from %s\n", sk.Offset, log.WhenceName(sk.Whence))
	fmt.Fprintf(w, "  Position: %d -> %d\n", sk.From, sk.Position)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Error: %s\n", err.Message)
	if err.Errno != nil {
		fmt.Fprintf(w, "  Errno: -%d (%s)\n", *err.Errno, service.Errno(*err.Errno))
	}
}

// ParseOpFlag parses an operation string from command-line flag (case-insensitive).
func ParseOpFlag(s string) (log.Op, error) {
	return parseOp(s)
}

func parseOp(s string) (log.Op, error) {
	switch strings.ToLower(s) {
	case "open":
		return log.OpOpen, nil
	case "release":
		return log.OpRelease, nil
	case "read":
		return log.OpRead, nil
	case "write":
		return log.OpWrite, nil
	case "seek":
		return log.OpSeek, nil
	default:
		return 0, fmt.Errorf("invalid op: %s (must be open, release, read, write, or seek)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "session":
		return log.CategorySession, nil
	case "io":
		return log.CategoryIO, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be session, io, or error)", s)
	}
}

// ParseMinorFlag parses a device minor number from command-line flag.
func ParseMinorFlag(s string) (int, error) {
	minor, err := strconv.Atoi(s)
	if err != nil || minor < 0 {
		return 0, fmt.Errorf("invalid minor: %s", s)
	}
	return minor, nil
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
