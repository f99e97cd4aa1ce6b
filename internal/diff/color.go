package diff

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type lineKind int

const (
	kindContext lineKind = iota
	kindMeta
	kindHunk
	kindAdded
	kindRemoved
)

// classify looks only at the line prefix.
func classify(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
		strings.HasPrefix(line, HeaderPrefix), strings.HasPrefix(line, "index "):
		return kindMeta
	case strings.HasPrefix(line, "@@"):
		return kindHunk
	case strings.HasPrefix(line, "+"):
		return kindAdded
	case strings.HasPrefix(line, "-"):
		return kindRemoved
	default:
		return kindContext
	}
}

// Styles holds the style for each kind of diff line.
type Styles struct {
	Added   lipgloss.Style
	Context lipgloss.Style
	Hunk    lipgloss.Style
	Meta    lipgloss.Style
	Removed lipgloss.Style
}

// DefaultStyles returns the standard diff palette for r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return Styles{
		Added:   base.Foreground(lipgloss.Color("2")),
		Context: base.Foreground(lipgloss.Color("8")),
		Hunk:    base.Foreground(lipgloss.Color("6")),
		Meta:    base.Bold(true),
		Removed: base.Foreground(lipgloss.Color("1")),
	}
}

func (s Styles) forKind(k lineKind) lipgloss.Style {
	switch k {
	case kindMeta:
		return s.Meta
	case kindHunk:
		return s.Hunk
	case kindAdded:
		return s.Added
	case kindRemoved:
		return s.Removed
	default:
		return s.Context
	}
}

// Colorize renders doc with s. Line terminators are preserved.
func (s Styles) Colorize(doc Document) string {
	var b strings.Builder
	for _, f := range doc.Files {
		for _, line := range f.Lines {
			text, eol := cutEOL(line)
			if text != "" {
				text = s.forKind(classify(text)).Render(text)
			}
			b.WriteString(text)
			b.WriteString(eol)
		}
	}
	return b.String()
}

// Colorize renders doc with the default styles on the default renderer.
func Colorize(doc Document) string {
	return DefaultStyles(lipgloss.DefaultRenderer()).Colorize(doc)
}

func cutEOL(line string) (string, string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
