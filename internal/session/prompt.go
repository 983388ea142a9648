package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vvc-encoder/internal/transcoder"
)

// ErrCancelled is returned when input ends before the session completes.
var ErrCancelled = errors.New("session cancelled")

type prompter struct {
	r    *bufio.Reader
	w    io.Writer
	echo bool
	errf func(format string, args ...any)
}

// ask prints label and returns the trimmed answer.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.w, label)
	line, err := p.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	answer := strings.TrimSpace(line)
	if p.echo {
		fmt.Fprintln(p.w, answer)
	}
	return answer, nil
}

// askInt re-prompts until the answer is an integer in [lo, hi].
func (p *prompter) askInt(label string, lo, hi int) (int, error) {
	for {
		answer, err := p.ask(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			p.errf("Please enter a valid number!")
			continue
		}
		if n < lo || n > hi {
			p.errf("Please enter a value between %d and %d!", lo, hi)
			continue
		}
		return n, nil
	}
}

// askYesNo accepts y/yes and n/no; an empty answer selects def.
func (p *prompter) askYesNo(label string, def bool) (bool, error) {
	answer, err := p.ask(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

// CleanPath strips surrounding whitespace and quotes from a pasted path.
func CleanPath(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"'`)
}

// CheckQP enforces the quantization parameter range offered to users.
func CheckQP(qp int) error {
	if qp < MinQP || qp > MaxQP {
		return fmt.Errorf("%w: quality must be between %d and %d, got %d", transcoder.ErrValidation, MinQP, MaxQP, qp)
	}
	return nil
}

// CheckThreads enforces 1..cores.
func CheckThreads(threads, cores int) error {
	if threads < 1 || threads > cores {
		return fmt.Errorf("%w: threads must be between 1 and %d, got %d", transcoder.ErrValidation, cores, threads)
	}
	return nil
}

// DefaultThreads leaves one core free for the rest of the system.
func DefaultThreads(cores int) int {
	return max(1, cores-1)
}
