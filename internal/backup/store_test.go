package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xmazu/envsync/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	s := NewStore(t.TempDir(), identity)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	return s
}

func TestStore(t *testing.T) {
	t.Run("save and read round-trips", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")

		snap, err := s.Save(source, []byte("A=1\n"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		raw, err := os.ReadFile(snap.path)
		if err != nil {
			t.Fatal(err)
		}
		if string(raw) == "A=1\n" {
			t.Error("backup is stored in plaintext")
		}

		data, err := s.Read(snap)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(data) != "A=1\n" {
			t.Errorf("Read = %q, want %q", data, "A=1\n")
		}
	})

	t.Run("list is newest first", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")
		for _, v := range []string{"A=1\n", "A=2\n", "A=3\n"} {
			if _, err := s.Save(source, []byte(v)); err != nil {
				t.Fatal(err)
			}
		}

		snaps, err := s.List(source)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(snaps) != 3 {
			t.Fatalf("len(List) = %d, want 3", len(snaps))
		}
		data, _ := s.Read(snaps[0])
		if string(data) != "A=3\n" {
			t.Errorf("newest = %q, want A=3", data)
		}
	})

	t.Run("list of unknown source is empty", func(t *testing.T) {
		s := newTestStore(t)
		snaps, err := s.List(filepath.Join(t.TempDir(), ".env"))
		if err != nil || len(snaps) != 0 {
			t.Errorf("List = %v, %v; want empty", snaps, err)
		}
	})

	t.Run("find", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")

		if _, err := s.Find(source, ""); !errors.Is(err, ErrNoBackups) {
			t.Errorf("Find on empty store = %v, want ErrNoBackups", err)
		}

		first, _ := s.Save(source, []byte("A=1\n"))
		s.Save(source, []byte("A=2\n"))

		got, err := s.Find(source, first.Name())
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if !got.Time.Equal(first.Time) {
			t.Errorf("Find returned %s, want %s", got.Name(), first.Name())
		}
		if _, err := s.Find(source, "nope"); err == nil {
			t.Error("Find should fail for unknown name")
		}
	})

	t.Run("restore keeps permissions", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(source, []byte("A=new\n"), 0640); err != nil {
			t.Fatal(err)
		}
		snap, _ := s.Save(source, []byte("# old\nA=old\n"))

		if err := s.Restore(snap); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		data, _ := os.ReadFile(source)
		if string(data) != "# old\nA=old\n" {
			t.Errorf("restored = %q", data)
		}
		info, _ := os.Stat(source)
		if info.Mode().Perm() != 0640 {
			t.Errorf("perm = %o, want 640", info.Mode().Perm())
		}
	})

	t.Run("restore rejects invalid documents", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")
		snap, _ := s.Save(source, []byte("not an env line\n"))
		if err := s.Restore(snap); err == nil {
			t.Error("Restore should fail for malformed backup")
		}
	})

	t.Run("other identity cannot read", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")
		snap, _ := s.Save(source, []byte("A=1\n"))

		other := newTestStore(t)
		other.dir = s.dir
		if _, err := other.Read(snap); err == nil {
			t.Error("Read with wrong identity should fail")
		}
	})

	t.Run("prune", func(t *testing.T) {
		s := newTestStore(t)
		source := filepath.Join(t.TempDir(), ".env")
		for i := 0; i < 5; i++ {
			if _, err := s.Save(source, []byte("A=1\n")); err != nil {
				t.Fatal(err)
			}
		}

		removed, err := s.Prune(source, 2)
		if err != nil {
			t.Fatalf("Prune: %v", err)
		}
		if removed != 3 {
			t.Errorf("removed = %d, want 3", removed)
		}
		snaps, _ := s.List(source)
		if len(snaps) != 2 {
			t.Errorf("len(List) = %d, want 2", len(snaps))
		}

		if removed, _ := s.Prune(source, 0); removed != 0 {
			t.Errorf("Prune(0) removed %d", removed)
		}
	})
}

func TestLoadIdentity(t *testing.T) {
	t.Run("generates and persists", func(t *testing.T) {
		t.Setenv(config.ConfigDirEnv, t.TempDir())
		t.Setenv(IdentityEnv, "")

		first, err := LoadIdentity()
		if err != nil {
			t.Fatalf("LoadIdentity: %v", err)
		}
		second, err := LoadIdentity()
		if err != nil {
			t.Fatalf("LoadIdentity: %v", err)
		}
		if first.String() != second.String() {
			t.Error("identity should be reused from keys.yaml")
		}
		info, err := os.Stat(config.KeysPath())
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("keys.yaml perm = %o, want 600", info.Mode().Perm())
		}
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(config.ConfigDirEnv, t.TempDir())
		identity, _ := GenerateIdentity()
		t.Setenv(IdentityEnv, identity.String())

		got, err := LoadIdentity()
		if err != nil {
			t.Fatalf("LoadIdentity: %v", err)
		}
		if got.String() != identity.String() {
			t.Error("LoadIdentity ignored " + IdentityEnv)
		}
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv(IdentityEnv, "garbage")
		if _, err := LoadIdentity(); err == nil {
			t.Error("LoadIdentity should fail for invalid identity")
		}
	})
}
