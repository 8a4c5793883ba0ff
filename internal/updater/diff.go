package updater

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

type DiffLine struct {
	Op   DiffOp
	Text string
}

// Diff returns a line diff between before and after.
func Diff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// Changed reports whether the diff contains any insertion or deletion.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffEqual {
			return true
		}
	}
	return false
}
