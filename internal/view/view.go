// Package view provides output formatting for tocsite commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fatih/color"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ValidFormats returns the accepted output format names.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidateFormat checks an output format flag value. Empty means table.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range ValidFormats() {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(ValidFormats(), ", "))
}

// Renderer renders data in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		format:  format,
		writer:  os.Stdout,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// RenderTable renders data as a table with aligned columns.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	if r.format == FormatJSON {
		r.renderTableAsJSON(headers, rows)
		return
	}

	if r.format == FormatPlain {
		r.renderTableAsPlain(headers, rows)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) && len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}

	bold := color.New(color.Bold)
	writeRow := func(vals []string, header bool) {
		for i, val := range vals {
			if i > 0 {
				fmt.Fprint(r.writer, "  ")
			}
			if i < len(vals)-1 && i < len(widths) {
				val = val + strings.Repeat(" ", widths[i]-len(val))
			}
			if header {
				bold.Fprint(r.writer, val)
			} else {
				fmt.Fprint(r.writer, val)
			}
		}
		fmt.Fprintln(r.writer)
	}

	writeRow(headers, true)
	for _, row := range rows {
		writeRow(row, false)
	}
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.writer, string(data))
}

func (r *Renderer) renderTableAsPlain(headers []string, rows [][]string) {
	for _, row := range rows {
		for i, val := range row {
			if i > 0 {
				fmt.Fprint(r.writer, "\t")
			}
			fmt.Fprint(r.writer, val)
		}
		fmt.Fprintln(r.writer)
	}
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.writer, string(data))
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.writer, text)
}

// RenderKeyValue renders a key-value pair.
func (r *Renderer) RenderKeyValue(key, value string) {
	if r.format == FormatJSON {
		fmt.Fprintf(r.writer, `{"%s": "%s"}`+"\n", key, value)
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintf(r.writer, "%s: ", key)
	fmt.Fprintln(r.writer, value)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintln(r.writer, "✓ "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.writer, "✗ "+msg)
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(r.writer, "! "+msg)
}

// TreeNode is one entry of a rendered tree.
type TreeNode struct {
	Label    string     `json:"label"`
	Detail   string     `json:"detail,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

var (
	treeEnumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	treeRootStyle   = lipgloss.NewStyle().Bold(true)
	treeDetailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTree renders a hierarchy: drawn with box characters for tables,
// indented by two spaces per level for plain output, nested objects for JSON.
func (r *Renderer) RenderTree(root TreeNode) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(root)
	case FormatPlain:
		r.renderTreeAsPlain(root, 0)
		return nil
	}

	t := tree.Root(r.treeLabel(root)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumStyle)
	if !r.noColor {
		t = t.RootStyle(treeRootStyle)
	}
	for _, c := range root.Children {
		t.Child(r.subtree(c))
	}
	fmt.Fprintln(r.writer, t.String())
	return nil
}

func (r *Renderer) subtree(n TreeNode) any {
	if len(n.Children) == 0 {
		return r.treeLabel(n)
	}
	t := tree.Root(r.treeLabel(n))
	for _, c := range n.Children {
		t.Child(r.subtree(c))
	}
	return t
}

func (r *Renderer) treeLabel(n TreeNode) string {
	if n.Detail == "" {
		return n.Label
	}
	detail := "(" + n.Detail + ")"
	if !r.noColor {
		detail = treeDetailStyle.Render(detail)
	}
	return n.Label + " " + detail
}

func (r *Renderer) renderTreeAsPlain(n TreeNode, depth int) {
	line := strings.Repeat("  ", depth) + n.Label
	if n.Detail != "" {
		line += "\t" + n.Detail
	}
	fmt.Fprintln(r.writer, line)
	for _, c := range n.Children {
		r.renderTreeAsPlain(c, depth+1)
	}
}

// Truncate truncates a string to the specified length.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
