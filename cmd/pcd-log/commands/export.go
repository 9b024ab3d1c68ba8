package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pcd-emu/pcd-go/pkg/log"
)

// RunExport exports the trace file to the specified format.
func RunExport(path, format string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "op", "category", "minor", "serial", "requested", "count", "offset", "position", "errno", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var requested, count, offset, position, errno, message string
		switch {
		case event.Transfer != nil:
			requested = strconv.Itoa(event.Transfer.Requested)
			count = strconv.Itoa(event.Transfer.Count)
			offset = strconv.FormatInt(event.Transfer.Offset, 10)
			position = strconv.FormatInt(event.Transfer.Position, 10)
		case event.Seek != nil:
			offset = strconv.FormatInt(event.Seek.Offset, 10)
			position = strconv.FormatInt(event.Seek.Position, 10)
		}
		if event.Error != nil {
			message = event.Error.Message
			if event.Error.Errno != nil {
				errno = strconv.Itoa(*event.Error.Errno)
			}
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampFormat),
			event.SessionID,
			event.Op.String(),
			event.Category.String(),
			strconv.Itoa(event.Minor),
			event.Serial,
			requested,
			count,
			offset,
			position,
			errno,
			message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}
