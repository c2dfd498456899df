package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Success writes a confirmation line.
func (r *Renderer) Success(text string) {
	if r.EffectiveMode() == ModeText {
		r.Println(okStyle.Render("✓ " + text))
		return
	}
	r.Println("✓ " + text)
}

// FormatHeader renders a markdown heading.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown key/value bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// KeyValue writes a key/value line in the renderer's mode.
func (r *Renderer) KeyValue(key, value string) {
	if r.EffectiveMode() == ModeText {
		r.Printf("%s %s\n", keyStyle.Render(key+":"), value)
		return
	}
	r.Println(FormatKeyValue(key, value))
}

// Dim writes a de-emphasized line in text mode, a plain line otherwise.
func (r *Renderer) Dim(text string) {
	if r.EffectiveMode() == ModeText {
		r.Println(dimStyle.Render(text))
		return
	}
	r.Println(text)
}

// Table renders a table: rounded and styled for terminals, pipe
// syntax for markdown.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleRounded)
		t.Render()
		return
	}
	t.RenderMarkdown()
}
