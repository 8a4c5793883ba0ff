package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xmazu/envsync/internal/audit"
	"github.com/xmazu/envsync/internal/backup"
	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/updater"
)

func newProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, config.SettingsFileName), []byte("backup:\n  keep: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	identity, err := backup.GenerateIdentity()
	if err != nil {
		t.Fatal(err)
	}
	p.SetBackupStore(backup.NewStore(t.TempDir(), identity))
	return p
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen(t *testing.T) {
	p := newProject(t)
	if p.Marker != config.SettingsFileName {
		t.Errorf("Marker = %q", p.Marker)
	}
	if p.Settings.Backup.Keep != 2 {
		t.Errorf("Backup.Keep = %d, want 2", p.Settings.Backup.Keep)
	}
	if p.RunID == "" {
		t.Error("RunID should be set")
	}
	if got := p.Rel(p.Abs("apps/.env")); got != "apps/.env" {
		t.Errorf("Rel(Abs) = %q", got)
	}
	if got := p.Rel("/elsewhere/.env"); got != "/elsewhere/.env" {
		t.Errorf("Rel outside root = %q", got)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("backs up and audits", func(t *testing.T) {
		p := newProject(t)
		input := p.Abs(".env.example")
		output := p.Abs(".env")
		write(t, input, "A=1\nB=2\n")
		write(t, output, "A=old\n")

		res, err := p.Update(ctx, input, output, UpdateOptions{}, updater.Defaults)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !res.Written {
			t.Fatal("output should be written")
		}
		data, _ := os.ReadFile(output)
		if string(data) != "A=old\nB=2\n" {
			t.Errorf("output = %q", data)
		}

		store, _ := p.BackupStore()
		snaps, err := store.List(output)
		if err != nil || len(snaps) != 1 {
			t.Fatalf("List = %v, %v; want one backup", snaps, err)
		}
		prev, _ := store.Read(snaps[0])
		if string(prev) != "A=old\n" {
			t.Errorf("backup = %q", prev)
		}

		entries, err := audit.Show(p.Root, 0)
		if err != nil {
			t.Fatalf("audit.Show: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("audit entries = %d, want 1", len(entries))
		}
		e := entries[0]
		if e.Op != string(audit.OpUpdate) || e.File != ".env" || e.RunID != p.RunID || e.Backup != snaps[0].Name() {
			t.Errorf("audit entry = %+v", e)
		}
		if len(e.Keys) != 1 || e.Keys[0] != "B" {
			t.Errorf("audit keys = %v, want [B]", e.Keys)
		}
	})

	t.Run("new output is not backed up", func(t *testing.T) {
		p := newProject(t)
		input := p.Abs(".env.example")
		write(t, input, "A=1\n")

		if _, err := p.Update(ctx, input, p.Abs(".env"), UpdateOptions{}, updater.Defaults); err != nil {
			t.Fatalf("Update: %v", err)
		}
		store, _ := p.BackupStore()
		if snaps, _ := store.List(p.Abs(".env")); len(snaps) != 0 {
			t.Errorf("unexpected backups %v", snaps)
		}
	})

	t.Run("dry run touches nothing", func(t *testing.T) {
		p := newProject(t)
		input := p.Abs(".env.example")
		write(t, input, "A=1\n")

		res, err := p.Update(ctx, input, p.Abs(".env"), UpdateOptions{DryRun: true}, updater.Defaults)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if res.Written || res.After != "A=1\n" {
			t.Errorf("result = %+v", res)
		}
		if _, err := os.Stat(p.Abs(".env")); !os.IsNotExist(err) {
			t.Error("dry run created the output")
		}
		if _, err := audit.Show(p.Root, 0); err != audit.ErrNoAuditLog {
			t.Errorf("dry run wrote the audit log: %v", err)
		}
	})

	t.Run("keeps a bounded number of backups", func(t *testing.T) {
		p := newProject(t)
		input := p.Abs(".env.example")
		output := p.Abs(".env")
		write(t, input, "A=\n")

		for _, v := range []string{"1", "2", "3", "4"} {
			write(t, output, "A=old"+v+"\n")
			answer := updater.PrompterFunc(func(context.Context, updater.Prompt) (string, bool, error) {
				return "new" + v, true, nil
			})
			if _, err := p.Update(ctx, input, output, UpdateOptions{NoBackup: v == "4"}, answer); err != nil {
				t.Fatal(err)
			}
		}
		store, _ := p.BackupStore()
		snaps, _ := store.List(output)
		if len(snaps) != 2 {
			t.Errorf("backups = %d, want 2", len(snaps))
		}
	})
}

func TestRestore(t *testing.T) {
	p := newProject(t)
	input := p.Abs(".env.example")
	output := p.Abs(".env")
	write(t, input, "A=1\n")
	write(t, output, "A=mine\n")

	overwrite := updater.PrompterFunc(func(context.Context, updater.Prompt) (string, bool, error) {
		return "theirs", true, nil
	})
	if _, err := p.Update(context.Background(), input, output, UpdateOptions{}, overwrite); err != nil {
		t.Fatal(err)
	}

	snap, err := p.Restore(output, "")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	data, _ := os.ReadFile(output)
	if string(data) != "A=mine\n" {
		t.Errorf("restored = %q", data)
	}

	entries, _ := audit.Show(p.Root, 1)
	if len(entries) != 1 || entries[0].Op != string(audit.OpRestore) || entries[0].Backup != snap.Name() {
		t.Errorf("last audit entry = %+v", entries)
	}
}

func TestCheckAll(t *testing.T) {
	p := newProject(t)
	write(t, p.Abs(".env.example"), "A=1\nB=2\n")
	write(t, p.Abs(".env"), "A=1\nB=2\n")
	write(t, p.Abs("apps/api/.env.example"), "DB=postgres://localhost\nTOKEN=\n")
	write(t, p.Abs("apps/api/.env"), "DB=\nEXTRA=1\n")
	write(t, p.Abs("apps/web/.env.sample"), "PORT=3000\n")

	reports, err := p.CheckAll(context.Background())
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("reports = %d, want 3", len(reports))
	}

	byTemplate := map[string]PairReport{}
	for _, r := range reports {
		byTemplate[r.Template] = r
	}

	if r := byTemplate[".env.example"]; !r.OK() {
		t.Errorf("root report = %+v, want OK", r)
	}
	api := byTemplate["apps/api/.env.example"]
	if api.OK() || len(api.Report.Missing) != 1 || api.Report.Missing[0] != "TOKEN" {
		t.Errorf("api report = %+v", api)
	}
	if len(api.Report.Empty) != 1 || api.Report.Empty[0] != "DB" {
		t.Errorf("api empty = %v, want [DB]", api.Report.Empty)
	}
	if len(api.Report.Extra) != 1 || api.Report.Extra[0] != "EXTRA" {
		t.Errorf("api extra = %v, want [EXTRA]", api.Report.Extra)
	}
	web := byTemplate["apps/web/.env.sample"]
	if web.Exists || web.OK() {
		t.Errorf("web report = %+v, want missing output", web)
	}
	if web.Output != "apps/web/.env" {
		t.Errorf("web output = %q", web.Output)
	}
}
