package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/log"
)

var templateSuffixes = []string{".example", ".sample", ".template", ".dist"}

// Pair is a template and the env file kept in sync with it. Paths are
// relative to the workspace root.
type Pair struct {
	Template string `json:"template"`
	Output   string `json:"output"`
}

// OutputFor derives the output path from a template path by dropping the
// template suffix: .env.example becomes .env, app.env.sample becomes app.env.
func OutputFor(template string) (string, bool) {
	dir, name := filepath.Split(template)
	for _, suffix := range templateSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && base != "" {
			return dir + base, true
		}
	}
	return "", false
}

// Discover walks root for files matching the template globs of s. Directories
// matched by an exclude glob or by root/.gitignore are skipped.
func Discover(root string, s *config.Settings) ([]Pair, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if s == nil {
		s = config.DefaultSettings()
	}

	ignore, err := LoadGitignore(root)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if MatchAny(s.Exclude, rel) || MatchAny(s.Exclude, rel+"/") || ignore.MatchDir(rel) {
				log.Tracef("skip dir %s", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if MatchAny(s.Exclude, rel) || !matchTemplate(s.Templates, rel) {
			return nil
		}
		out, ok := OutputFor(rel)
		if !ok {
			log.Debugf("template %s has no known suffix, skipped", rel)
			return nil
		}
		pairs = append(pairs, Pair{Template: rel, Output: out})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Template < pairs[j].Template })
	log.Debugf("discovered %d templates under %s", len(pairs), root)
	return pairs, nil
}

// matchTemplate also accepts files at the root for "**/" patterns.
func matchTemplate(patterns []string, rel string) bool {
	if MatchAny(patterns, rel) {
		return true
	}
	for _, p := range patterns {
		if after, ok := strings.CutPrefix(p, "**/"); ok && MatchAny([]string{after}, rel) {
			return true
		}
	}
	return false
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Join resolves a slash-separated root-relative path.
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
