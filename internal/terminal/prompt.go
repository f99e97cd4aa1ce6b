package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when the input stream ends before an answer.
var ErrNoInput = errors.New("no input")

// Prompter asks questions on Out and reads answers from In.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewPrompter creates a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out, reader: bufio.NewReader(in)}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Input asks for a line of text. An empty answer returns def.
func (p *Prompter) Input(label, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.Out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.Out, "%s: ", label)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Password asks for a secret without echoing it when In is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	_, _ = fmt.Fprintf(p.Out, "%s: ", label)
	if f, ok := p.In.(*os.File); ok && IsTTY(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Select shows a numbered list and returns the chosen index. An empty
// answer picks def.
func (p *Prompter) Select(label string, options []string, def int) (int, error) {
	_, _ = fmt.Fprintln(p.Out, label)
	for i, opt := range options {
		_, _ = fmt.Fprintf(p.Out, "  %d) %s\n", i+1, opt)
	}
	for {
		answer, err := p.Input("Choice", strconv.Itoa(def+1))
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		_, _ = fmt.Fprintf(p.Out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.Input(fmt.Sprintf("%s (%s)", label, hint), "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
