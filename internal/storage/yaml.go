package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLFile reads and writes one YAML document. Writes go through a temp file
// so a crash never leaves half a document behind.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

func (y *YAMLFile) Path() string {
	return y.path
}

func (y *YAMLFile) Load(dest any) error {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file not found: %s: %w", y.path, err)
		}
		return fmt.Errorf("read file: %w", err)
	}
	return y.decode(data, dest)
}

// LoadOrCreate is Load that leaves dest untouched when the file is missing.
func (y *YAMLFile) LoadOrCreate(dest any) error {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read file: %w", err)
	}
	return y.decode(data, dest)
}

func (y *YAMLFile) decode(data []byte, dest any) error {
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse yaml %s: %w", y.path, err)
	}
	return nil
}

func (y *YAMLFile) Save(data any) error {
	return y.SaveWithPerm(data, 0600)
}

func (y *YAMLFile) SaveWithPerm(data any, perm os.FileMode) error {
	dir := filepath.Dir(y.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(y.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), y.path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
