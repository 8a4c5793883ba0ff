package backup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filippo.io/age"

	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/envfile"
	"github.com/xmazu/envsync/internal/log"
)

const (
	backupsDir = "backups"
	sourceFile = "source"
	extension  = ".env.age"
	timeLayout = "20060102T150405.000000000Z"
)

var ErrNoBackups = errors.New("no backups found")

// Snapshot is one encrypted copy of an env file.
type Snapshot struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	path   string
}

func (s Snapshot) Name() string {
	return filepath.Base(s.path)
}

// Store keeps age-encrypted copies of env files, one directory per source
// path.
type Store struct {
	dir      string
	identity *age.X25519Identity
	now      func() time.Time
}

func NewStore(dir string, identity *age.X25519Identity) *Store {
	return &Store{dir: dir, identity: identity, now: time.Now}
}

// Open returns the store under the state directory, loading or creating the
// backup identity.
func Open() (*Store, error) {
	identity, err := LoadIdentity()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(config.StateDir(), backupsDir), identity), nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) sourceDir(source string) (string, string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", source, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8])), abs, nil
}

// Save encrypts data as a new snapshot of source.
func (s *Store) Save(source string, data []byte) (Snapshot, error) {
	dir, abs, err := s.sourceDir(source)
	if err != nil {
		return Snapshot{}, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("create backup dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sourceFile), []byte(abs+"\n"), 0600); err != nil {
		return Snapshot{}, fmt.Errorf("write backup source: %w", err)
	}

	ts := s.now().UTC()
	path := filepath.Join(dir, ts.Format(timeLayout)+extension)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return Snapshot{}, fmt.Errorf("encrypt backup: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return Snapshot{}, fmt.Errorf("encrypt backup: %w", err)
	}
	if err := w.Close(); err != nil {
		return Snapshot{}, fmt.Errorf("encrypt backup: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return Snapshot{}, fmt.Errorf("write backup: %w", err)
	}

	log.Debugf("backed up %s to %s", abs, path)
	return Snapshot{Source: abs, Time: ts, path: path}, nil
}

// List returns the snapshots of source, newest first.
func (s *Store) List(source string) ([]Snapshot, error) {
	dir, abs, err := s.sourceDir(source)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), extension)
		if !ok || e.IsDir() {
			continue
		}
		ts, err := time.Parse(timeLayout, name)
		if err != nil {
			log.Warnf("ignoring backup %s: %v", e.Name(), err)
			continue
		}
		snaps = append(snaps, Snapshot{Source: abs, Time: ts, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Time.After(snaps[j].Time) })
	return snaps, nil
}

// Read decrypts a snapshot.
func (s *Store) Read(snap Snapshot) ([]byte, error) {
	f, err := os.Open(snap.path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	r, err := age.Decrypt(f, s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup %s: %w", snap.Name(), err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup %s: %w", snap.Name(), err)
	}
	return data, nil
}

// Find returns the snapshot of source with the given name, or the newest
// when name is empty.
func (s *Store) Find(source, name string) (Snapshot, error) {
	snaps, err := s.List(source)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, fmt.Errorf("%s: %w", source, ErrNoBackups)
	}
	if name == "" {
		return snaps[0], nil
	}
	for _, snap := range snaps {
		if snap.Name() == name || snap.Name() == name+extension {
			return snap, nil
		}
	}
	return Snapshot{}, fmt.Errorf("backup %q of %s not found", name, source)
}

// Restore replaces source with the snapshot contents. The snapshot must still
// parse as an env document.
func (s *Store) Restore(snap Snapshot) error {
	data, err := s.Read(snap)
	if err != nil {
		return err
	}
	doc, err := envfile.Parse(string(data))
	if err != nil {
		return fmt.Errorf("backup %s is not a valid env file: %w", snap.Name(), err)
	}

	perm := os.FileMode(0600)
	if info, err := os.Stat(snap.Source); err == nil {
		perm = info.Mode().Perm()
	}
	if err := doc.Save(snap.Source, perm); err != nil {
		return err
	}
	log.Infof("restored %s from %s", snap.Source, snap.Name())
	return nil
}

// Prune removes all but the newest keep snapshots of source. keep <= 0
// disables pruning.
func (s *Store) Prune(source string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	snaps, err := s.List(source)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, snap := range snaps[min(keep, len(snaps)):] {
		if err := os.Remove(snap.path); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}
