package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type ignoreRule struct {
	pattern string
	dirOnly bool
	anchor  bool
}

// Ignore prunes directories during template discovery. It understands the
// subset of .gitignore syntax that matters for directories: globs, a
// trailing slash for directory-only rules and a leading slash for anchors.
type Ignore struct {
	rules []ignoreRule
}

// LoadGitignore reads root/.gitignore. It returns nil when there is nothing
// to ignore.
func LoadGitignore(root string) (*Ignore, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	var rules []ignoreRule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		r := ignoreRule{}
		line, r.dirOnly = strings.CutSuffix(line, "/")
		line, r.anchor = strings.CutPrefix(line, "/")
		if line == "" {
			continue
		}
		r.pattern = filepath.ToSlash(line)
		rules = append(rules, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &Ignore{rules: rules}, nil
}

// MatchDir reports whether the directory at rel (slash separated, relative
// to the root) is ignored.
func (m *Ignore) MatchDir(rel string) bool {
	if m == nil {
		return false
	}
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	base := rel[strings.LastIndex(rel, "/")+1:]

	for _, r := range m.rules {
		if r.anchor || strings.Contains(r.pattern, "/") {
			if ok, _ := doublestar.Match(r.pattern, rel); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(r.pattern, base); ok {
			return true
		}
	}
	return false
}

// MatchAny reports whether rel matches one of the doublestar patterns.
func MatchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if ok, err := doublestar.Match(filepath.ToSlash(p), rel); err == nil && ok {
			return true
		}
	}
	return false
}
