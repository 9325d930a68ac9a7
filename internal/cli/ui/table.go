package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// Table renders aligned columns with a colored header
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.noColor = opts.NoColor
	}
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	header := newColor(t.noColor, color.Bold, color.FgCyan)
	for i, h := range t.headers {
		header.Fprint(t.writer, t.cell(h, i, len(t.headers), widths[i]))
	}
	fmt.Fprintln(t.writer)

	rule := newColor(t.noColor, color.FgHiBlack)
	for i, w := range widths {
		rule.Fprint(t.writer, strings.Repeat("─", w))
		t.gap(i, len(widths))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		n := min(len(row), len(widths))
		for i := 0; i < n; i++ {
			fmt.Fprint(t.writer, t.cell(row[i], i, n, widths[i]))
		}
		fmt.Fprintln(t.writer)
	}
}

func (t *Table) gap(i, n int) {
	if i < n-1 {
		fmt.Fprint(t.writer, "  ")
	}
}

// cell pads every column but the last and appends the column gap
func (t *Table) cell(s string, i, n, width int) string {
	if i == n-1 {
		return s
	}
	return padRight(s, width) + "  "
}

// Mark renders a boolean cell as a colored check or dash
func Mark(on, noColor bool) string {
	if on {
		return newColor(noColor, color.FgGreen).Sprint("✓")
	}
	return newColor(noColor, color.FgHiBlack).Sprint("-")
}

// visibleLen measures s without ANSI color sequences
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

func padRight(s string, width int) string {
	if l := visibleLen(s); l < width {
		return s + strings.Repeat(" ", width-l)
	}
	return s
}

// KeyValueTable renders "key: value" lines with aligned values
type KeyValueTable struct {
	writer  io.Writer
	rows    [][2]string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render writes the table
func (t *KeyValueTable) Render() {
	width := 0
	for _, row := range t.rows {
		width = max(width, len(row[0]))
	}

	key := newColor(t.noColor, color.FgCyan)
	for _, row := range t.rows {
		key.Fprint(t.writer, padRight(row[0]+":", width+1))
		fmt.Fprintf(t.writer, " %s\n", row[1])
	}
}

// Section renders a bold title followed by indented lines
type Section struct {
	writer  io.Writer
	title   string
	lines   []string
	noColor bool
}

// NewSection creates a new section
func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{writer: w, title: title, noColor: noColor}
}

// AddLine adds a line to the section content
func (s *Section) AddLine(line string) {
	s.lines = append(s.lines, line)
}

// Render writes the section followed by a blank line
func (s *Section) Render() {
	newColor(s.noColor, color.Bold, color.FgCyan).Fprintln(s.writer, s.title)
	for _, line := range s.lines {
		fmt.Fprintf(s.writer, "  %s\n", line)
	}
	fmt.Fprintln(s.writer)
}
