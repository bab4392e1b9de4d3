package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrPromptCancelled is returned when the user interrupts a prompt.
var ErrPromptCancelled = errors.New("cancelled")

// Prompter asks the user for a single line.
type Prompter interface {
	Prompt(label string) (string, error)
}

// ReadlinePrompter reads answers with line editing.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter creates a prompter over in and out.
func NewReadlinePrompter(in io.ReadCloser, out io.Writer) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:           in,
		Stdout:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		HistoryLimit:    -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

// Prompt shows label and returns the trimmed answer.
func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label + ": ")
	line, err := p.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
		return "", ErrPromptCancelled
	case err != nil:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Close releases the terminal.
func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

// PromptMissing fills *value from p when it is empty, asking until the
// answer passes validate.
func PromptMissing(p Prompter, label string, value *string, validate func(string) error) error {
	for strings.TrimSpace(*value) == "" {
		answer, err := p.Prompt(label)
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				continue
			}
		}
		*value = answer
	}
	return nil
}
