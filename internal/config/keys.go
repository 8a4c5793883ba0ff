package config

import (
	"fmt"
	"path/filepath"

	"github.com/xmazu/envsync/internal/storage"
)

const KeysFileName = "keys.yaml"

// BackupKey is the age key pair used to encrypt backups.
type BackupKey struct {
	Public  string `yaml:"public"`
	Private string `yaml:"private"`
}

type KeysFile struct {
	Backup BackupKey `yaml:"backup"`
	file   *storage.YAMLFile
}

func KeysPath() string {
	return filepath.Join(ConfigDir(), KeysFileName)
}

func LoadKeysFile() (*KeysFile, error) {
	file := storage.NewYAMLFile(KeysPath())

	kf := &KeysFile{file: file}
	if err := file.LoadOrCreate(kf); err != nil {
		return nil, err
	}
	return kf, nil
}

func (k *KeysFile) HasBackupKey() bool {
	return k.Backup.Private != ""
}

func (k *KeysFile) SetBackupKey(publicKey, privateKey string) error {
	if publicKey == "" || privateKey == "" {
		return fmt.Errorf("public and private keys must not be empty")
	}
	k.Backup = BackupKey{Public: publicKey, Private: privateKey}
	return k.file.Save(k)
}
