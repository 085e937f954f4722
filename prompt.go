package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInputClosed is returned when the input stream is exhausted before a
// value was entered.
var ErrInputClosed = errors.New("input closed")

// Prompter asks for values the user did not pass as flags. Inject a custom
// reader/writer for tests.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a Prompter on stdin/stdout.
func NewPrompter() *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
}

// NewPrompterFromReader creates a Prompter with a custom reader/writer.
func NewPrompterFromReader(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(r),
		out:     w,
	}
}

// String prompts until a non-empty line is entered.
func (p *Prompter) String(prompt string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", prompt)
		if !p.scanner.Scan() {
			return "", fmt.Errorf("%s: %w", prompt, ErrInputClosed)
		}
		input := strings.TrimSpace(p.scanner.Text())
		if input != "" {
			return input, nil
		}
	}
}

// Float prompts until a parseable number is entered.
func (p *Prompter) Float(prompt string) (float64, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", prompt)
		if !p.scanner.Scan() {
			return 0, fmt.Errorf("%s: %w", prompt, ErrInputClosed)
		}
		input := strings.TrimSpace(p.scanner.Text())
		value, err := strconv.ParseFloat(input, 64)
		if err != nil {
			fmt.Fprintf(p.out, "invalid number %q, try again\n", input)
			continue
		}
		return value, nil
	}
}
