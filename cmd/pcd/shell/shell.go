// Package shell provides the interactive command-line interface for pcd.
package shell

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/pcd-emu/pcd-go/pkg/inspect"
	"github.com/pcd-emu/pcd-go/pkg/model"
	"github.com/pcd-emu/pcd-go/pkg/service"
)

// MaxReadCount caps a single read command.
const MaxReadCount = 1 << 16

// Shell executes device commands against a driver. Sessions opened from the
// shell are numbered from 1 in open order; one of them is current.
type Shell struct {
	driver    *service.Driver
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	out       io.Writer

	sessions []*service.Session
	current  int
}

// New creates a shell writing its output to out.
func New(driver *service.Driver, out io.Writer) *Shell {
	return &Shell{
		driver:    driver,
		inspector: inspect.NewInspector(driver),
		formatter: inspect.NewFormatter(),
		out:       out,
		current:   -1,
	}
}

// Run reads commands with readline until quit, EOF, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pcd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if !s.Execute(line) {
			return nil
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	cmd, rest, _ := strings.Cut(input, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimLeft(rest, " ")
	args := strings.Fields(rest)

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "open", "o":
		s.cmdOpen(args)

	case "read", "r":
		s.cmdRead(args)

	case "write", "w":
		s.cmdWrite([]byte(rest))

	case "writehex", "wx":
		s.cmdWriteHex(args)

	case "seek":
		s.cmdSeek(args)

	case "close", "c":
		s.cmdClose()

	case "list", "ls":
		s.cmdList()

	case "info", "i":
		s.cmdInfo(args)

	case "sessions", "s":
		s.cmdSessions()

	case "use", "u":
		s.cmdUse(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
PCD Commands:
  Sessions:
    open <minor> <mode>   - Open a device (mode: r, w, rw)
    close                 - Release the current session
    sessions              - List open sessions
    use <n>               - Make session n current

  I/O (current session):
    read <n>              - Read up to n bytes
    write <text>          - Write text
    writehex <hex>        - Write raw bytes given as hex
    seek <off> <whence>   - Reposition (whence: set, cur, end)

  Devices:
    list                  - Show the device table
    info <minor|serial>[/attr] - Show device attributes

  General:
    help                  - Show this help
    quit                  - Exit`)
}

// printError prints err with the errno a character driver would report.
func (s *Shell) printError(err error) {
	errno := service.ToErrno(err)
	fmt.Fprintf(s.out, "Error: %v (-%d %s)\n", err, int(errno), errno)
}

// session returns the current session or prints why there is none.
func (s *Shell) session() *service.Session {
	if s.current < 0 || s.current >= len(s.sessions) {
		fmt.Fprintln(s.out, "No current session (use 'open' or 'use')")
		return nil
	}
	return s.sessions[s.current]
}

func (s *Shell) cmdOpen(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: open <minor> <mode>")
		fmt.Fprintln(s.out, "  Example: open 3 rw")
		return
	}

	minor, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid minor: %s\n", args[0])
		return
	}
	mode, err := model.ParseMode(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid mode: %v\n", err)
		return
	}

	sess, err := s.driver.Open(minor, mode)
	if err != nil {
		s.printError(err)
		return
	}

	s.sessions = append(s.sessions, sess)
	s.current = len(s.sessions) - 1
	fmt.Fprintf(s.out, "Session %d: %s on minor %d (%s)\n",
		s.current+1, mode, minor, sess.Device().Serial())
}

func (s *Shell) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: read <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > MaxReadCount {
		fmt.Fprintf(s.out, "Invalid count: %s (0-%d)\n", args[0], MaxReadCount)
		return
	}

	sess := s.session()
	if sess == nil {
		return
	}

	buf := make([]byte, n)
	got, err := sess.Read(buf)
	if err != nil {
		s.printError(err)
		return
	}
	if got == 0 && n > 0 {
		fmt.Fprintf(s.out, "0 bytes (end of device), position %d\n", sess.Position())
		return
	}

	fmt.Fprintf(s.out, "%d bytes, position %d\n", got, sess.Position())
	fmt.Fprint(s.out, hex.Dump(buf[:got]))
}

func (s *Shell) cmdWrite(data []byte) {
	if len(data) == 0 {
		fmt.Fprintln(s.out, "Usage: write <text>")
		return
	}
	s.write(data)
}

func (s *Shell) cmdWriteHex(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: writehex <hex>")
		fmt.Fprintln(s.out, "  Example: writehex deadbeef")
		return
	}
	data, err := hex.DecodeString(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(s.out, "Invalid hex: %v\n", err)
		return
	}
	s.write(data)
}

func (s *Shell) write(data []byte) {
	sess := s.session()
	if sess == nil {
		return
	}

	n, err := sess.Write(data)
	if err != nil {
		s.printError(err)
		return
	}
	if n < len(data) {
		fmt.Fprintf(s.out, "Wrote %d of %d bytes (device full), position %d\n", n, len(data), sess.Position())
		return
	}
	fmt.Fprintf(s.out, "Wrote %d bytes, position %d\n", n, sess.Position())
}

func (s *Shell) cmdSeek(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: seek <offset> <set|cur|end>")
		return
	}
	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid offset: %s\n", args[0])
		return
	}
	whence, err := parseWhence(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid whence: %v\n", err)
		return
	}

	sess := s.session()
	if sess == nil {
		return
	}

	pos, err := sess.Seek(offset, whence)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Position %d\n", pos)
}

func parseWhence(s string) (int, error) {
	switch strings.ToLower(s) {
	case "set", "0":
		return io.SeekStart, nil
	case "cur", "1":
		return io.SeekCurrent, nil
	case "end", "2":
		return io.SeekEnd, nil
	default:
		return 0, fmt.Errorf("unknown whence %q", s)
	}
}

func (s *Shell) cmdClose() {
	sess := s.session()
	if sess == nil {
		return
	}

	if err := sess.Release(); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Session %d released\n", s.current+1)

	s.sessions = append(s.sessions[:s.current], s.sessions[s.current+1:]...)
	s.current = len(s.sessions) - 1
}

func (s *Shell) cmdList() {
	fmt.Fprint(s.out, s.formatter.FormatDeviceTable(s.inspector.InspectTable()))
}

func (s *Shell) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: info <minor|serial>[/attribute]")
		fmt.Fprintln(s.out, "  Example: info 0/permission")
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid path: %v\n", err)
		return
	}

	if !path.IsPartial {
		value, err := s.inspector.ReadPath(path)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "%s = %s\n", path.Attribute, value)
		return
	}

	minor, err := s.inspector.Resolve(path)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	row, err := s.inspector.InspectDevice(minor)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatDevice(row))
}

func (s *Shell) cmdSessions() {
	if len(s.sessions) == 0 {
		fmt.Fprintln(s.out, "No open sessions")
		return
	}
	for i, sess := range s.sessions {
		marker := " "
		if i == s.current {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %d: minor %d %s position %d (%s)\n",
			marker, i+1, sess.Minor(), sess.Mode(), sess.Position(), sess.ID()[:8])
	}
}

func (s *Shell) cmdUse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: use <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(s.sessions) {
		fmt.Fprintf(s.out, "No such session: %s\n", args[0])
		return
	}
	s.current = n - 1
	fmt.Fprintf(s.out, "Session %d is current\n", n)
}

// Close releases every session opened from the shell.
func (s *Shell) Close() error {
	var errs []error
	for _, sess := range s.sessions {
		errs = append(errs, sess.Release())
	}
	s.sessions = nil
	s.current = -1
	return errors.Join(errs...)
}
