package inspect

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowHeader prints a column header row in tables.
	ShowHeader bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowHeader:  true,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatSize formats a byte count with a human-readable suffix.
func FormatSize(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d (%d MiB)", n, n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d (%d KiB)", n, n>>10)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatDeviceTable formats device rows as an aligned table.
func (f *Formatter) FormatDeviceTable(rows []DeviceRow) string {
	if len(rows) == 0 {
		return f.Indent(1, "(no devices)") + "\n"
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	if f.ShowHeader {
		fmt.Fprintln(tw, "MINOR\tSERIAL\tSIZE\tPERMISSION\tOPEN")
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n",
			row.Minor, row.Serial, row.Size, row.Permission, row.OpenSessions)
	}
	tw.Flush()
	return sb.String()
}

// FormatDevice formats all attributes of one device, one per line.
func (f *Formatter) FormatDevice(row *DeviceRow) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Device %d:\n", row.Minor))
	for _, name := range attributeOrder {
		value, _ := row.Value(name)
		if name == AttrSize {
			value = FormatSize(row.Size)
		}
		sb.WriteString(f.Indent(1, fmt.Sprintf("%s: %s\n", name, value)))
	}
	return sb.String()
}
