// Command pcd-log is a tool for viewing and analyzing pcd access trace files.
//
// Trace files are created by running pcd with the -trace flag or by setting
// trace.path in its configuration file.
//
// Usage:
//
//	pcd-log <command> [flags] <file.trace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	pcd-log view pcd.trace
//
//	# View only failed operations on minor 1
//	pcd-log view -category error -minor 1 pcd.trace
//
//	# Export to CSV
//	pcd-log export -format csv -o pcd.csv pcd.trace
//
//	# Keep only one session's writes
//	pcd-log filter -session 3f2a9c1e-... -op write -o writes.trace pcd.trace
//
//	# Show statistics
//	pcd-log stats pcd.trace
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pcd-emu/pcd-go/cmd/pcd-log/commands"
)

const usage = `pcd-log - PCD Access Trace Analyzer

Usage:
  pcd-log <command> [flags] <file.trace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "pcd-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Minor, "minor", "", "Filter by device minor number")
	fs.StringVar(&opts.Op, "op", "", "Filter by operation (open, release, read, write, seek)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (session, io, error)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Only events at or after this time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Only events before this time (RFC3339)")
	return opts
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `pcd-log %s - %s

Usage:
  pcd-log %s [flags] <file.trace>

Flags:
`, name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

// tracePath returns the single positional argument or exits.
func tracePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format")
	opts := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		fatal(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fatal(fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}

	if err := commands.RunExport(path, *format, w); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file")
	opts := filterFlags(fs)
	output := fs.String("o", "", "Output trace file (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file required (-o)")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, *output, *opts)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := tracePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
