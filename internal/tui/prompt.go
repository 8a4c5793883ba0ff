package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/xmazu/envsync/internal/envfile"
	"github.com/xmazu/envsync/internal/updater"
)

// LinePrompter asks on w and reads answers line by line from r. It is used
// when stdin is not a terminal, so piped answers work.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

func (p *LinePrompter) Prompt(ctx context.Context, pr updater.Prompt) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	text := pr.Text()
	if pr.Sensitive && pr.Default != "" {
		text = strings.TrimSuffix(text, " ("+pr.Default+")") + " (" + envfile.Mask(pr.Default) + ")"
	}
	fmt.Fprintf(p.w, "%s: ", text)

	line, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("read answer: %w", err)
	}
	if line == "" && errors.Is(err, io.EOF) {
		fmt.Fprintln(p.w, Muted("(cleared)"))
		return "", false, nil
	}
	return strings.TrimRightFunc(line, isSpace), true, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// FormPrompter asks through a huh input. Sensitive keys are read with
// hidden echo; the current value is offered as the placeholder.
type FormPrompter struct {
	Accessible bool
}

func (p *FormPrompter) Prompt(ctx context.Context, pr updater.Prompt) (string, bool, error) {
	var value string
	placeholder := pr.Default
	if pr.Sensitive && placeholder != "" {
		placeholder = envfile.Mask(placeholder)
	}

	input := huh.NewInput().
		Title(pr.Key).
		Placeholder(placeholder).
		Value(&value)
	if len(pr.Comment) > 0 {
		input = input.Description(strings.Join(pr.Comment, "\n"))
	}
	if pr.Sensitive {
		input = input.EchoMode(huh.EchoModePassword)
	}

	form := huh.NewForm(huh.NewGroup(input)).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, fmt.Errorf("prompt: %w", context.Canceled)
		}
		return "", false, fmt.Errorf("prompt: %w", err)
	}
	return strings.TrimRightFunc(value, isSpace), true, nil
}

func Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
