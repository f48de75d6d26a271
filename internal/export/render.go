package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/roach88/learnlog/internal/query"
)

// DefaultWidth is the wrap width when the terminal size is unknown.
const DefaultWidth = 80

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Render styles markdown for a terminal of the given width.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// Write writes b to w, rendered when w is a terminal and plain markdown
// otherwise.
func Write(w io.Writer, b query.Bundle, opts Options) error {
	if !IsTerminal(w) {
		return Markdown(w, b, opts)
	}

	var sb strings.Builder
	if err := Markdown(&sb, b, opts); err != nil {
		return err
	}
	width := DefaultWidth
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	out, err := Render(sb.String(), width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
