package updater

import (
	"context"
	"fmt"
	"strings"
)

// Prompt describes one value request. Comment holds the comment lines that
// preceded the declaration in the template.
type Prompt struct {
	Key       string
	Comment   []string
	Default   string
	Sensitive bool
}

// Text renders the prompt the way a line-oriented terminal shows it:
// comment lines, then the key and its current value in parentheses.
func (p Prompt) Text() string {
	var b strings.Builder
	for _, c := range p.Comment {
		fmt.Fprintf(&b, "# %s\n", c)
	}
	b.WriteString(p.Key)
	if p.Default != "" {
		fmt.Fprintf(&b, " (%s)", p.Default)
	}
	return b.String()
}

// Prompter obtains a value for a key. ok is false when the input is closed;
// the value is then cleared. An empty value with ok set keeps the default.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) (value string, ok bool, err error)
}

type PrompterFunc func(ctx context.Context, p Prompt) (string, bool, error)

func (f PrompterFunc) Prompt(ctx context.Context, p Prompt) (string, bool, error) {
	return f(ctx, p)
}

// Defaults accepts every default without asking.
var Defaults Prompter = PrompterFunc(func(ctx context.Context, p Prompt) (string, bool, error) {
	return "", true, nil
})
