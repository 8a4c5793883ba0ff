package backup

import (
	"fmt"
	"os"

	"filippo.io/age"

	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/log"
)

// IdentityEnv overrides the identity stored in keys.yaml.
const IdentityEnv = "ENVSYNC_BACKUP_IDENTITY"

func GenerateIdentity() (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate age identity: %w", err)
	}
	return identity, nil
}

func ParseIdentity(s string) (*age.X25519Identity, error) {
	identity, err := age.ParseX25519Identity(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity: %w", err)
	}
	return identity, nil
}

// LoadIdentity returns the backup identity from the environment or keys.yaml.
// A fresh identity is generated and stored on first use.
func LoadIdentity() (*age.X25519Identity, error) {
	if s := os.Getenv(IdentityEnv); s != "" {
		return ParseIdentity(s)
	}

	keys, err := config.LoadKeysFile()
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	if keys.HasBackupKey() {
		return ParseIdentity(keys.Backup.Private)
	}

	identity, err := GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if err := keys.SetBackupKey(identity.Recipient().String(), identity.String()); err != nil {
		return nil, fmt.Errorf("save backup key: %w", err)
	}
	log.Infof("generated backup key %s in %s", identity.Recipient(), config.KeysPath())
	return identity, nil
}
