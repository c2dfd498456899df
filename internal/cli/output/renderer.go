// Package output renders command results in terminal, markdown, and
// JSON form.
//
// Mode auto picks by destination: a TTY gets styled text, anything
// piped gets markdown so scripted consumers see stable output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes formatted command output.
type Renderer struct {
	out      io.Writer
	errOut   io.Writer
	mode     Mode
	forceTTY *bool // overrides TTY detection in tests
}

// NewRenderer creates a renderer. An empty or unrecognized mode is
// treated as auto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	switch mode {
	case ModeText, ModeMarkdown, ModeJSON:
	default:
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode}
}

// NewRendererWithTTY creates a renderer with a fixed TTY state
// instead of detecting one. Used by tests.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	r := NewRenderer(out, errOut, mode)
	r.forceTTY = &isTTY
	return r
}

// EffectiveMode resolves auto against the actual destination.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY() {
		return ModeText
	}
	return ModeMarkdown
}

func (r *Renderer) isTTY() bool {
	if r.forceTTY != nil {
		return *r.forceTTY
	}
	f, ok := r.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Out exposes the destination writer for direct streaming.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// Println writes a line to the output stream.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header, styled in text mode and as a
// markdown heading otherwise.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		r.Println(headerStyle.Render(text))
		return
	}
	r.Println(FormatHeader(level, text))
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, warnStyle.Render("warning: "+text))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "warning: "+text)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
