package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	ConfigDirEnv = "ENVSYNC_CONFIG_DIR"
	StateDirEnv  = "ENVSYNC_STATE_DIR"
	AppName      = "envsync"
)

// ConfigDir holds user-level files such as the backup identity.
func ConfigDir() string {
	if d := os.Getenv(ConfigDirEnv); d != "" {
		return d
	}
	if xdg.ConfigHome == "" {
		return filepath.Join(".", AppName)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StateDir holds backups of overwritten env files.
func StateDir() string {
	if d := os.Getenv(StateDirEnv); d != "" {
		return d
	}
	if xdg.StateHome == "" {
		return filepath.Join(".", AppName, "state")
	}
	return filepath.Join(xdg.StateHome, AppName)
}
