// Package terminal provides prompts for values typed at the terminal and helpers
// to erase them from the screen afterwards.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when a secret prompt is attempted without a TTY on stdin.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Prompter reads answers to prompts. The zero value is not usable; use NewPrompter.
type Prompter struct {
	in  io.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewPrompter returns a prompter bound to the process stdin and stderr.
func NewPrompter() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{in: os.Stdin, out: os.Stderr, fd: fd, tty: term.IsTerminal(fd)}
}

// NewPrompterFrom reads from r and writes prompts to w. Secret input is echoed,
// since r is not a terminal.
func NewPrompterFrom(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: r, out: w, fd: -1}
}

// Line prints prompt and returns one trimmed line of input.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret prints prompt and reads a value without echoing it.
func (p *Prompter) Secret(prompt string) (string, error) {
	if !p.tty {
		if p.fd >= 0 {
			return "", ErrNotTerminal
		}
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// ClearPreviousLines erases text that was previously printed to w.
// textLength is the prompt plus the typed answer; one extra line is cleared
// for the newline produced by Enter.
func ClearPreviousLines(w io.Writer, textLength int) {
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}
	linesToClear := totalLines + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
