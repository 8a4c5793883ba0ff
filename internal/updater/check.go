package updater

import (
	"github.com/xmazu/envsync/internal/envfile"
)

// Report compares an output against its template by key only.
type Report struct {
	Missing []string `json:"missing"`
	Empty   []string `json:"empty"`
	Extra   []string `json:"extra"`
}

// OK reports whether every template key is declared in the output.
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Check lists template keys absent from output, keys the output leaves empty
// while the template has a value, and output keys the template does not
// know. output may be nil when the file does not exist.
func Check(input, output *envfile.File) Report {
	var r Report
	template := input.Env()
	var current *envfile.Env
	if output != nil {
		current = output.Env()
	}

	for k, tv := range template.All() {
		v, ok := current.Get(k)
		switch {
		case !ok:
			r.Missing = append(r.Missing, k)
		case v == "" && tv != "":
			r.Empty = append(r.Empty, k)
		}
	}
	for _, k := range current.Keys() {
		if !template.Has(k) {
			r.Extra = append(r.Extra, k)
		}
	}
	return r
}
