// Package selection drives the interactive console prompts used to pick items
// for a comparison.
package selection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/label"
)

// Kind is the category of items offered for selection.
type Kind int

const (
	Foods Kind = iota
	Adulterants
	Provinces
)

func (k Kind) String() string {
	switch k {
	case Foods:
		return "foods"
	case Adulterants:
		return "adulterants"
	case Provinces:
		return "provinces"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind resolves an outer-menu answer. The boolean is false for
// unrecognized input; deciding what to do about it is up to the caller.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "food", "foods":
		return Foods, true
	case "a", "adulterant", "adulterants":
		return Adulterants, true
	case "p", "province", "provinces":
		return Provinces, true
	default:
		return 0, false
	}
}

var (
	// ErrNoInput is returned when input ends before a valid answer was read.
	ErrNoInput = errors.New("selection: input ended before a valid choice was made")
	// ErrTooFewOptions is returned when fewer than two options are offered.
	ErrTooFewOptions = errors.New("selection: at least two options are required")
)

// InputError describes why an answer was rejected. Its message is shown to
// the user before prompting again.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter wraps a reader and writer, typically os.Stdin and os.Stdout.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Choose prints question and returns the next trimmed line.
func (p *Prompter) Choose(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// SelectTwo lists options 1-indexed and asks for two distinct numbers until a
// valid pair is entered. It returns the chosen options in the order typed.
// Non-province options are displayed through label.Format.
func (p *Prompter) SelectTwo(options []string, kind Kind) (string, string, error) {
	if len(options) < 2 {
		return "", "", ErrTooFewOptions
	}
	for {
		p.list(options, kind)
		fmt.Fprint(p.out, "Select 2 numbers separated by a space: ")
		line, err := p.readLine()
		if err != nil {
			return "", "", err
		}
		a, b, err := Validate(line, len(options))
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		return options[a-1], options[b-1], nil
	}
}

// Validate checks one answer against n options and returns the two 1-based
// indices. Failures are *InputError values carrying the user-facing message.
func Validate(line string, n int) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, &InputError{Msg: "Please enter 2 numbers separated by a space."}
	}
	a, errA := strconv.Atoi(fields[0])
	b, errB := strconv.Atoi(fields[1])
	if errA != nil || errB != nil {
		return 0, 0, &InputError{Msg: "Please enter 2 numbers separated by a space."}
	}
	if a < 1 || a > n || b < 1 || b > n {
		return 0, 0, &InputError{Msg: fmt.Sprintf("Please enter 2 valid numbers from 1 to %d.", n)}
	}
	if a == b {
		return 0, 0, &InputError{Msg: "Please enter 2 different numbers."}
	}
	return a, b, nil
}

func (p *Prompter) list(options []string, kind Kind) {
	fmt.Fprintf(p.out, "\nSelect 2 %s to compare:\n", kind)
	for i, o := range options {
		name := o
		if kind != Provinces {
			name = label.Format(o)
		}
		fmt.Fprintf(p.out, "%d. %s\n", i+1, name)
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}
