package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/wippyai/wasm-spectest/result"
)

type styles struct {
	pass   lipgloss.Style
	skip   lipgloss.Style
	fail   lipgloss.Style
	name   lipgloss.Style
	detail lipgloss.Style
	total  lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{}
	}
	return styles{
		pass:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#90EE90")),
		skip:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB")),
		fail:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		name:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		detail: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		total:  lipgloss.NewStyle().Bold(true),
	}
}

// reporter prints the plain-text run report.
type reporter struct {
	w      io.Writer
	styles styles
	// width truncates failure lines; 0 leaves them whole.
	width int
}

// newReporter colors output only when allowed and w is a terminal, and
// truncates failure lines to the terminal width.
func newReporter(w io.Writer, color bool) *reporter {
	r := &reporter{w: w}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		color = color && tty
		if tty {
			if width, _, err := term.GetSize(int(fd)); err == nil {
				r.width = width
			}
		}
	} else {
		color = false
	}
	r.styles = newStyles(color)
	return r
}

func (r *reporter) Summary(s *result.Summary) {
	for _, res := range s.Scripts {
		r.Script(res)
	}
	c := s.Counts
	fmt.Fprintf(r.w, "\n%s %d scripts, %d commands: %d passed, %d skipped, %d failed",
		r.styles.total.Render("Total:"), len(s.Scripts), c.Total, c.Passed, c.Skipped, c.Failed)
	if s.Errored > 0 {
		fmt.Fprintf(r.w, ", %d scripts errored", s.Errored)
	}
	fmt.Fprintln(r.w)
}

func (r *reporter) Script(res *result.ScriptResult) {
	c := res.Counts()
	switch {
	case res.Err != nil:
		fmt.Fprintf(r.w, "%s %s\n", r.styles.fail.Render("ERROR"), r.styles.name.Render(res.Name))
		r.line(res.Err.Error())
		return
	case c.Failed > 0:
		fmt.Fprintf(r.w, "%s ", r.styles.fail.Render("FAIL "))
	default:
		fmt.Fprintf(r.w, "%s ", r.styles.pass.Render("PASS "))
	}
	fmt.Fprintf(r.w, "%s %5d passed %5d skipped %5d failed  %s\n",
		r.styles.name.Render(fmt.Sprintf("%-24s", res.Name)), c.Passed, c.Skipped, c.Failed,
		r.styles.detail.Render(res.Duration.Round(100*time.Microsecond).String()))
	for _, f := range res.Failures() {
		r.line(f)
	}
}

func (r *reporter) line(s string) {
	s = "      " + s
	if r.width > 0 {
		s = lipgloss.NewStyle().MaxWidth(r.width).Render(s)
	}
	fmt.Fprintln(r.w, r.styles.detail.Render(s))
}
