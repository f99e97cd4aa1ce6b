package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	clog "github.com/charmbracelet/log"
)

// DefaultPager is used when neither BB_PAGER nor PAGER is set.
const DefaultPager = "less -R"

// PagerCommand returns the pager to use, reading BB_PAGER then PAGER.
func PagerCommand(getenv func(string) string) string {
	for _, key := range []string{"BB_PAGER", "PAGER"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return DefaultPager
}

// Pager sends long output through an external pager when Out is a terminal.
type Pager struct {
	Command string
	Err     io.Writer
	Out     io.Writer

	isTerminal func(io.Writer) bool
	log        *clog.Logger
}

// NewPager creates a Pager for out using the command from the environment.
func NewPager(logger *clog.Logger, out, errOut io.Writer) *Pager {
	return &Pager{
		Command:    PagerCommand(os.Getenv),
		Err:        errOut,
		Out:        out,
		isTerminal: IsTerminalWriter,
		log:        logger.WithPrefix("pager"),
	}
}

// Enabled reports whether Page would start a pager process.
func (p *Pager) Enabled() bool {
	if p.Command == "" || p.Command == "cat" {
		return false
	}
	return p.isTerminal != nil && p.isTerminal(p.Out)
}

// Page writes content through the pager. If the pager is disabled, fails
// to start, or exits with an error without writing anything, content is
// written to Out directly.
func (p *Pager) Page(content string) error {
	if !p.Enabled() {
		return p.writeDirect(content)
	}

	args := strings.Fields(p.Command)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(content)
	out := &countingWriter{w: p.Out}
	cmd.Stdout = out
	cmd.Stderr = p.Err
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=FRX")
	}

	p.log.Debug("Starting pager", "cmd", p.Command)
	if err := cmd.Start(); err != nil {
		p.log.Debug("Pager failed to start, printing directly", "cmd", p.Command, "error", err)
		return p.writeDirect(content)
	}
	if err := cmd.Wait(); err != nil {
		p.log.Debug("Pager exited with error", "cmd", p.Command, "error", err)
		if out.n == 0 {
			return p.writeDirect(content)
		}
	}
	return nil
}

// countingWriter records how many bytes the pager wrote.
type countingWriter struct {
	n int
	w io.Writer
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += n
	return n, err
}

func (p *Pager) writeDirect(content string) error {
	if _, err := io.WriteString(p.Out, content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
