package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pcd-emu/pcd-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByOp       map[log.Op]int
	EventsByCategory map[log.Category]int
	EventsByErrno    map[int]int
	Devices          map[int]*DeviceStats
	Sessions         int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds statistics for a single device.
type DeviceStats struct {
	Serial       string
	Opens        int
	Events       int
	BytesRead    int64
	BytesWritten int64
	Errors       int
}

// CollectStats reads the trace file and aggregates its events.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOp:       make(map[log.Op]int),
		EventsByCategory: make(map[log.Category]int),
		EventsByErrno:    make(map[int]int),
		Devices:          make(map[int]*DeviceStats),
	}
	sessions := make(map[string]struct{})

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByOp[event.Op]++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.SessionID != "" {
			sessions[event.SessionID] = struct{}{}
		}

		dev, ok := stats.Devices[event.Minor]
		if !ok {
			dev = &DeviceStats{}
			stats.Devices[event.Minor] = dev
		}
		dev.Events++
		if dev.Serial == "" {
			dev.Serial = event.Serial
		}

		if event.Error != nil {
			dev.Errors++
			if event.Error.Errno != nil {
				stats.EventsByErrno[*event.Error.Errno]++
			}
			continue
		}

		switch event.Op {
		case log.OpOpen:
			dev.Opens++
		case log.OpRead:
			if event.Transfer != nil {
				dev.BytesRead += int64(event.Transfer.Count)
			}
		case log.OpWrite:
			if event.Transfer != nil {
				dev.BytesWritten += int64(event.Transfer.Count)
			}
		}
	}

	stats.Sessions = len(sessions)
	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== PCD Access Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", stats.Sessions)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Op:")
	for _, op := range []log.Op{log.OpOpen, log.OpRelease, log.OpRead, log.OpWrite, log.OpSeek} {
		if count := stats.EventsByOp[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategorySession, log.CategoryIO, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices: %d\n", len(stats.Devices))
	minors := make([]int, 0, len(stats.Devices))
	for m := range stats.Devices {
		minors = append(minors, m)
	}
	sort.Ints(minors)
	for _, m := range minors {
		d := stats.Devices[m]
		serial := d.Serial
		if serial == "" {
			serial = "?"
		}
		fmt.Fprintf(w, "  [%d] %s: %d events, %d opens, %d bytes read, %d bytes written",
			m, serial, d.Events, d.Opens, d.BytesRead, d.BytesWritten)
		if d.Errors > 0 {
			fmt.Fprintf(w, ", %d errors", d.Errors)
		}
		fmt.Fprintln(w)
	}

	if len(stats.EventsByErrno) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors by errno:")
		errnos := make([]int, 0, len(stats.EventsByErrno))
		for e := range stats.EventsByErrno {
			errnos = append(errnos, e)
		}
		sort.Ints(errnos)
		for _, e := range errnos {
			fmt.Fprintf(w, "  -%-11d %d\n", e, stats.EventsByErrno[e])
		}
	}
}
