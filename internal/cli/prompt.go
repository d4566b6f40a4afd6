package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// lineReader reads one line of user input at a time
type lineReader interface {
	ReadLine() (string, error)
}

// scanReader reads lines from a non-terminal input, echoing the prompt
type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
}

func (r *scanReader) ReadLine() (string, error) {
	if r.prompt != "" {
		fmt.Fprint(r.out, r.prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// newLineReader returns a line editor with history when in is a terminal,
// and a plain scanner otherwise. The returned restore func must be called
// before exiting.
func newLineReader(in *os.File, out io.Writer, prompt string) (lineReader, func(), error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return &scanReader{scanner: bufio.NewScanner(in), out: out, prompt: prompt}, func() {}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)

	if width, height, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(width, height)
	}

	return t, func() { _ = term.Restore(fd, state) }, nil
}

// promptLine asks a single question and returns the answer
func promptLine(in *os.File, out io.Writer, prompt string) (string, error) {
	reader, restore, err := newLineReader(in, out, prompt)
	if err != nil {
		return "", err
	}
	defer restore()

	line, err := reader.ReadLine()
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}
