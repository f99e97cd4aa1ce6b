package terminal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes short status messages. Success and Info go to Out,
// warnings and errors to Err.
type Printer struct {
	Err io.Writer
	Out io.Writer

	errStyle  lipgloss.Style
	infoStyle lipgloss.Style
	okStyle   lipgloss.Style
	warnStyle lipgloss.Style
}

// NewPrinter creates a Printer whose colours follow each writer's capabilities.
func NewPrinter(out, errOut io.Writer) *Printer {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &Printer{
		Err:       errOut,
		Out:       out,
		errStyle:  errR.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		infoStyle: outR.NewStyle().Foreground(lipgloss.Color("4")),
		okStyle:   outR.NewStyle().Foreground(lipgloss.Color("2")),
		warnStyle: errR.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (p *Printer) Success(format string, args ...any) {
	_, _ = fmt.Fprintln(p.Out, p.okStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	_, _ = fmt.Fprintln(p.Out, p.infoStyle.Render("i")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	_, _ = fmt.Fprintln(p.Err, p.warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	_, _ = fmt.Fprintln(p.Err, p.errStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}
