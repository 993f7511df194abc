// Package prompt handles interactive confirmation and selection.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks the user questions. Implementations report a cancelled or
// unreadable prompt the same way as an explicit refusal.
type Prompter interface {
	// Confirm asks a yes/no question. When requireYes is set only a literal
	// "yes" accepts; otherwise "y" does too.
	Confirm(msg string, requireYes bool) bool

	// Choose presents numbered options and returns the chosen index.
	// The second result is false when the user cancels.
	Choose(msg string, options []string) (int, bool)
}

// Terminal prompts on an input/output pair, normally stdin and stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Confirm(msg string, requireYes bool) bool {
	fmt.Fprintf(t.out, "%s ", msg)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if requireYes {
		return answer == "yes"
	}
	return answer == "yes" || answer == "y"
}

func (t *Terminal) Choose(msg string, options []string) (int, bool) {
	fmt.Fprintln(t.out, msg)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d. %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(t.out, "Enter a number (1-%d) or 'q' to cancel: ", len(options))

		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(t.out)
			return 0, false
		}
		answer := strings.TrimSpace(line)
		if answer == "" || strings.EqualFold(answer, "q") {
			return 0, false
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintln(t.out, "Invalid selection.")
			continue
		}
		return n - 1, true
	}
}

// Scripted is a test double that replays canned answers.
type Scripted struct {
	Confirms []bool
	Choices  []int

	ConfirmMsgs []string
	ChooseMsgs  []string
}

func (s *Scripted) Confirm(msg string, requireYes bool) bool {
	s.ConfirmMsgs = append(s.ConfirmMsgs, msg)
	if len(s.Confirms) == 0 {
		return false
	}
	v := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return v
}

func (s *Scripted) Choose(msg string, options []string) (int, bool) {
	s.ChooseMsgs = append(s.ChooseMsgs, msg)
	if len(s.Choices) == 0 {
		return 0, false
	}
	v := s.Choices[0]
	s.Choices = s.Choices[1:]
	if v < 0 || v >= len(options) {
		return 0, false
	}
	return v, true
}
