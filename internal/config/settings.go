package config

import (
	"fmt"
	"path/filepath"

	"github.com/xmazu/envsync/internal/storage"
)

const SettingsFileName = ".envsync.yaml"

type BackupSettings struct {
	Enabled bool `yaml:"enabled"`
	Keep    int  `yaml:"keep"`
}

// Settings are per-workspace options read from .envsync.yaml at the
// workspace root. Every field has a usable default.
type Settings struct {
	Templates []string       `yaml:"templates"`
	Exclude   []string       `yaml:"exclude"`
	Backup    BackupSettings `yaml:"backup"`
	Audit     bool           `yaml:"audit"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Templates: []string{"**/.env.example", "**/.env.sample", "**/.env.template", "**/.env.dist"},
		Exclude:   []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"},
		Backup:    BackupSettings{Enabled: true, Keep: 10},
		Audit:     true,
	}
}

func SettingsPath(root string) string {
	return filepath.Join(root, SettingsFileName)
}

// LoadSettings overlays .envsync.yaml on the defaults. A missing file is not
// an error.
func LoadSettings(root string) (*Settings, error) {
	s := DefaultSettings()
	if err := storage.NewYAMLFile(SettingsPath(root)).LoadOrCreate(s); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if len(s.Templates) == 0 {
		s.Templates = DefaultSettings().Templates
	}
	if s.Backup.Keep < 0 {
		return nil, fmt.Errorf("load settings: backup.keep must not be negative")
	}
	return s, nil
}

func WriteSettings(root string, s *Settings) error {
	return storage.NewYAMLFile(SettingsPath(root)).SaveWithPerm(s, 0644)
}
