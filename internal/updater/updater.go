package updater

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/xmazu/envsync/internal/envfile"
	"github.com/xmazu/envsync/internal/log"
)

// Filter narrows which template keys are prompted for. A key is filled when
// the existing output declares it with a non-empty value.
type Filter struct {
	OnlyEmpty  bool
	OnlyFilled bool
}

func (f Filter) skip(filled bool) bool {
	if f.OnlyEmpty && filled {
		return true
	}
	return f.OnlyFilled && !filled
}

type Summary struct {
	Prompted []string
	Added    []string
	Changed  []string
	Cleared  []string
	Kept     []string
}

// Merge walks the template rows in order and asks p for every declaration the
// filter lets through. existing is the current output, or nil when there is
// none. The result follows the template layout, with keys that only the
// output declares appended at the end.
func Merge(ctx context.Context, input, existing *envfile.File, filter Filter, p Prompter) (*envfile.File, *Summary, error) {
	var previous *envfile.Env
	var outputEnv *envfile.Env
	if existing != nil {
		previous = existing.Env()
		output := existing.Clone()
		output.ApplyAssign(input.Env(), false)
		outputEnv = output.Env()
	} else {
		outputEnv = input.Clone().Env()
	}

	summary := &Summary{}
	var comments []string
	for row := range input.Stream() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		switch row.Kind {
		case envfile.RowComment:
			comments = append(comments, row.Comment)
			continue
		case envfile.RowEmpty:
			continue
		}

		key := row.Declaration.Name
		prev, _ := previous.Get(key)
		if filter.skip(prev != "") {
			log.Tracef("skip %s", key)
			comments = nil
			continue
		}

		def, _ := outputEnv.Get(key)
		prompt := Prompt{
			Key:       key,
			Comment:   comments,
			Default:   def,
			Sensitive: envfile.SensitiveKey(key) || envfile.IsSensitive(key, def),
		}
		comments = nil

		answer, ok, err := p.Prompt(ctx, prompt)
		if err != nil {
			return nil, nil, fmt.Errorf("prompt %s: %w", key, err)
		}
		summary.Prompted = append(summary.Prompted, key)

		value := answer
		switch {
		case !ok:
			value = ""
			summary.Cleared = append(summary.Cleared, key)
		case answer == "":
			value = def
		}
		outputEnv.Set(key, value)
	}

	result := input.Apply(outputEnv, true)

	templateKeys := input.Env()
	for k, v := range result.Env().All() {
		old, had := previous.Get(k)
		switch {
		case !templateKeys.Has(k):
			summary.Kept = append(summary.Kept, k)
		case existing == nil || !had:
			summary.Added = append(summary.Added, k)
		case old != v:
			summary.Changed = append(summary.Changed, k)
		}
	}

	return result, summary, nil
}

type Options struct {
	Input  string
	Output string
	Filter Filter
	DryRun bool

	// BeforeWrite receives the previous output content, or nil when the
	// output did not exist, right before it is replaced.
	BeforeWrite func(previous []byte) error
	LockTimeout time.Duration
}

type Result struct {
	Input    string
	Output   string
	Created  bool
	Written  bool
	Before   string
	After    string
	Document *envfile.File
	Summary  *Summary
}

var ErrOutputIsDir = errors.New("output is a directory")

// Run loads the template and the output, merges them through p and writes
// the output once, after every row has been handled.
func Run(ctx context.Context, opts Options, p Prompter) (*Result, error) {
	input, err := envfile.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to load input: %w", err)
	}

	info, err := os.Stat(opts.Output)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("%s: %w", opts.Output, ErrOutputIsDir)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to stat output: %w", err)
	}

	unlock, err := lockOutput(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res := &Result{Input: opts.Input, Output: opts.Output}

	var existing *envfile.File
	var previous []byte
	perm := os.FileMode(0600)
	previous, err = os.ReadFile(opts.Output)
	switch {
	case err == nil:
		existing, err = envfile.Parse(string(previous))
		if err != nil {
			return nil, fmt.Errorf("failed to load output %s: %w", opts.Output, err)
		}
		if info != nil {
			perm = info.Mode().Perm()
		}
		res.Before = string(previous)
	case errors.Is(err, fs.ErrNotExist):
		res.Created = true
		previous = nil
	default:
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	doc, summary, err := Merge(ctx, input, existing, opts.Filter, p)
	if err != nil {
		return nil, err
	}
	res.Document = doc
	res.Summary = summary
	res.After = doc.String()

	if opts.DryRun || (!res.Created && res.After == res.Before) {
		log.Debugf("nothing written to %s (dry run: %v)", opts.Output, opts.DryRun)
		return res, nil
	}

	if opts.BeforeWrite != nil {
		if err := opts.BeforeWrite(previous); err != nil {
			return nil, err
		}
	}

	if err := doc.Save(opts.Output, perm); err != nil {
		return nil, err
	}
	res.Written = true
	log.WithField("file", opts.Output).Infof("updated %d keys", len(summary.Added)+len(summary.Changed)+len(summary.Cleared))
	return res, nil
}

// lockOutput holds <output>.lock for the duration of a write. Dry runs never
// write, so they take no lock.
func lockOutput(ctx context.Context, opts Options) (func(), error) {
	if opts.DryRun {
		return func() {}, nil
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fl := flock.New(opts.Output + ".lock")
	locked, err := fl.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", opts.Output, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: held by another process", opts.Output)
	}
	return func() {
		_ = fl.Unlock()
		_ = os.Remove(fl.Path())
	}, nil
}
