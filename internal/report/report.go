// Package report prints "checking for X...  ok" style progress lines.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type Color string

const (
	Red    Color = "1"
	Green  Color = "2"
	Yellow Color = "3"
	Blue   Color = "4"
)

const stepWidth = 27

type Reporter struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	color    bool
}

// New returns a Reporter writing to out. Colour is used only when out is a
// terminal.
func New(out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: out, renderer: lipgloss.NewRenderer(out), color: color}
}

// Discard is a Reporter that prints nothing.
func Discard() *Reporter {
	return New(io.Discard)
}

// Tint renders text in color, or returns it unchanged without a terminal.
func (r *Reporter) Tint(text string, color Color) string {
	if !r.color || color == "" {
		return text
	}
	return r.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(text)
}

func (r *Reporter) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Reporter) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Step is one in-flight progress line.
type Step struct {
	r       *Reporter
	padding string
	done    bool
}

// Step starts a progress line. Exactly one of Fail or OK ends it.
func (r *Reporter) Step(message string) *Step {
	fmt.Fprint(r.out, message+"...")
	pad := stepWidth - len(message)
	if pad < 0 {
		pad = 0
	}
	return &Step{r: r, padding: strings.Repeat(" ", pad)}
}

func (s *Step) Fail(text string, color Color) {
	s.finish(text, color)
}

func (s *Step) OK() {
	s.finish("ok", Green)
}

func (s *Step) finish(text string, color Color) {
	if s.done {
		return
	}
	s.done = true
	fmt.Fprintln(s.r.out, s.padding+s.r.Tint(text, color))
}
