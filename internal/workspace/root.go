package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xmazu/envsync/internal/config"
)

// MarkerFiles identify a workspace root, most specific first. The envsync
// settings file outranks repository and monorepo markers in the same
// directory.
var MarkerFiles = []string{
	config.SettingsFileName,
	"pnpm-workspace.yaml",
	"turbo.json",
	"lerna.json",
	"nx.json",
	"go.work",
	"settings.gradle",
	"settings.gradle.kts",
	".git",
}

var markerNames = map[string]string{
	config.SettingsFileName: "envsync settings",
	".git":                  "git repository",
	"pnpm-workspace.yaml":   "pnpm workspace",
	"go.work":               "Go workspace",
}

// FindRoot walks up from dir to the nearest directory holding a marker file.
// Without any marker, dir itself is the root.
func FindRoot(dir string) (string, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	for d := start; ; {
		if FindMarker(d) != "" {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return start, nil
		}
		d = parent
	}
}

// FindMarker returns the first marker present in root, or "".
func FindMarker(root string) string {
	for _, marker := range MarkerFiles {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return marker
		}
	}
	return ""
}

func FormatMarkerForDisplay(marker string) string {
	if marker == "" {
		return "unknown"
	}
	if name, ok := markerNames[marker]; ok {
		return name
	}
	return marker
}
