package envfile

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// File is a parsed env document. Rows are the structural truth; env is the
// working mapping that ApplyAssign updates and Env snapshots.
type File struct {
	rows            []Row
	env             *Env
	trailingNewline bool
}

func New() *File {
	return &File{env: NewEnv(), trailingNewline: true}
}

// Parse reads a whole document. It fails on the first malformed line and
// never returns a partial File.
func Parse(text string) (*File, error) {
	f := &File{env: NewEnv()}
	if text == "" {
		f.trailingNewline = true
		return f, nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		f.trailingNewline = true
		lines = lines[:len(lines)-1]
	}

	f.rows = make([]Row, 0, len(lines))
	for i, line := range lines {
		row, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		f.rows = append(f.rows, row)
	}

	f.env = foldRows(f.rows)
	return f, nil
}

func ParseReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return Parse(string(data))
}

// Load parses the file at path. A missing file yields an error matching
// fs.ErrNotExist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func foldRows(rows []Row) *Env {
	env := NewEnv()
	for _, row := range rows {
		if row.Kind == RowDeclaration {
			env.Set(row.Declaration.Name, row.Declaration.Value)
		}
	}
	return env
}

func (f *File) Clone() *File {
	rows := make([]Row, len(f.rows))
	copy(rows, f.rows)
	return &File{
		rows:            rows,
		env:             f.env.Clone(),
		trailingNewline: f.trailingNewline,
	}
}

// Env returns a snapshot of the working mapping. Callers may mutate it
// freely.
func (f *File) Env() *Env {
	return f.env.Clone()
}

func (f *File) Get(key string) (string, bool) {
	return f.env.Get(key)
}

func (f *File) Keys() []string {
	return f.env.Keys()
}

// ApplyAssign merges src into the working mapping. Absent keys are added;
// present keys are replaced only when overwrite is set. Nothing is removed
// and rows are left alone.
func (f *File) ApplyAssign(src *Env, overwrite bool) {
	for k, v := range src.All() {
		if !overwrite && f.env.Has(k) {
			continue
		}
		f.env.Set(k, v)
	}
}

// Apply renders the rows against values into a new File. Declarations whose
// key is in values take that value; everything else passes through. Keys of
// values that no row declares are appended when includeMissing is set.
func (f *File) Apply(values *Env, includeMissing bool) *File {
	out := &File{
		rows:            make([]Row, 0, len(f.rows)),
		trailingNewline: f.trailingNewline || len(f.rows) == 0,
	}

	declared := make(map[string]bool)
	for _, row := range f.rows {
		if row.Kind == RowDeclaration {
			declared[row.Declaration.Name] = true
			if v, ok := values.Get(row.Declaration.Name); ok {
				row.Declaration = row.Declaration.WithValue(v)
			}
		}
		out.rows = append(out.rows, row)
	}

	if includeMissing {
		for k, v := range values.All() {
			if declared[k] {
				continue
			}
			out.rows = append(out.rows, DeclarationRow(NewDeclaration(k, v)))
		}
	}

	out.env = foldRows(out.rows)
	return out
}

// Stream yields the rows in document order. It can be ranged over any
// number of times.
func (f *File) Stream() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, row := range f.rows {
			if !yield(row) {
				return
			}
		}
	}
}

func (f *File) Rows() []Row {
	rows := make([]Row, len(f.rows))
	copy(rows, f.rows)
	return rows
}

func (f *File) String() string {
	var b strings.Builder
	for i, row := range f.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(row.String())
	}
	if f.trailingNewline && len(f.rows) > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *File) Render() string {
	return f.String()
}

// Save writes the rendered document to path through a temporary file in the
// same directory, so readers never observe a partial write.
func (f *File) Save(path string, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.WriteString(tmp, f.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
