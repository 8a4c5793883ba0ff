package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xmazu/envsync/internal/audit"
	"github.com/xmazu/envsync/internal/backup"
	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/envfile"
	"github.com/xmazu/envsync/internal/log"
	"github.com/xmazu/envsync/internal/updater"
	"github.com/xmazu/envsync/internal/workspace"
)

// Project is a workspace root together with its settings. It ties template
// discovery, merging, backups and the audit log together.
type Project struct {
	Root     string
	Marker   string
	Settings *config.Settings
	RunID    string

	mu      sync.Mutex
	backups *backup.Store
}

// Open finds the workspace root above dir and loads its settings.
func Open(dir string) (*Project, error) {
	root, err := workspace.FindRoot(dir)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(root)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:     root,
		Marker:   workspace.FindMarker(root),
		Settings: settings,
		RunID:    audit.NewRunID(),
	}, nil
}

// SetBackupStore replaces the store that is otherwise opened on first use.
func (p *Project) SetBackupStore(s *backup.Store) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backups = s
}

func (p *Project) BackupStore() (*backup.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backups == nil {
		s, err := backup.Open()
		if err != nil {
			return nil, err
		}
		p.backups = s
	}
	return p.backups, nil
}

func (p *Project) Pairs() ([]workspace.Pair, error) {
	return workspace.Discover(p.Root, p.Settings)
}

// Abs resolves a root-relative path.
func (p *Project) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// Rel is the inverse of Abs, falling back to path when it lies outside the
// root.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

type UpdateOptions struct {
	Filter   updater.Filter
	DryRun   bool
	NoBackup bool
	Op       audit.Op
	Tool     string
}

// Update merges input into output. The previous output is backed up before
// it is replaced and the run is recorded in the audit log, each when the
// settings allow it.
func (p *Project) Update(ctx context.Context, input, output string, opts UpdateOptions, prompter updater.Prompter) (*updater.Result, error) {
	var snapshot string
	run := updater.Options{
		Input:  input,
		Output: output,
		Filter: opts.Filter,
		DryRun: opts.DryRun,
	}
	if p.Settings.Backup.Enabled && !opts.NoBackup {
		run.BeforeWrite = func(previous []byte) error {
			if previous == nil {
				return nil
			}
			store, err := p.BackupStore()
			if err != nil {
				return fmt.Errorf("open backups: %w", err)
			}
			snap, err := store.Save(output, previous)
			if err != nil {
				return err
			}
			snapshot = snap.Name()
			if n, err := store.Prune(output, p.Settings.Backup.Keep); err != nil {
				log.Warnf("prune backups of %s: %v", output, err)
			} else if n > 0 {
				log.Debugf("pruned %d backups of %s", n, output)
			}
			return nil
		}
	}

	res, err := updater.Run(ctx, run, prompter)
	if err != nil {
		return nil, err
	}

	if res.Written && p.Settings.Audit {
		op := opts.Op
		if op == "" {
			op = audit.OpUpdate
		}
		keys := append(append(append([]string{}, res.Summary.Added...), res.Summary.Changed...), res.Summary.Cleared...)
		sort.Strings(keys)
		err := audit.Log(p.Root, op,
			audit.WithRunID(p.RunID),
			audit.WithFile(p.Rel(output)),
			audit.WithKeys(keys),
			audit.WithBackup(snapshot),
			audit.WithTool(opts.Tool),
		)
		if err != nil {
			log.Warnf("audit: %v", err)
		}
	}
	return res, nil
}

// Restore replaces output with a backup, the newest when name is empty.
func (p *Project) Restore(output, name string) (backup.Snapshot, error) {
	store, err := p.BackupStore()
	if err != nil {
		return backup.Snapshot{}, err
	}
	snap, err := store.Find(output, name)
	if err != nil {
		return backup.Snapshot{}, err
	}
	if err := store.Restore(snap); err != nil {
		return backup.Snapshot{}, err
	}
	if p.Settings.Audit {
		if err := audit.Log(p.Root, audit.OpRestore,
			audit.WithRunID(p.RunID),
			audit.WithFile(p.Rel(output)),
			audit.WithBackup(snap.Name()),
		); err != nil {
			log.Warnf("audit: %v", err)
		}
	}
	return snap, nil
}

// PairReport is the check result of one discovered template.
type PairReport struct {
	workspace.Pair
	Exists bool           `json:"exists"`
	Report updater.Report `json:"report"`
}

func (r PairReport) OK() bool {
	return r.Exists && r.Report.OK()
}

// CheckPair compares one template with its output. A missing output reports
// every template key as missing.
func (p *Project) CheckPair(pair workspace.Pair) (PairReport, error) {
	input, err := envfile.Load(p.Abs(pair.Template))
	if err != nil {
		return PairReport{}, err
	}
	out := PairReport{Pair: pair}
	output, err := envfile.Load(p.Abs(pair.Output))
	switch {
	case err == nil:
		out.Exists = true
	case errors.Is(err, fs.ErrNotExist):
		output = nil
	default:
		return PairReport{}, err
	}
	out.Report = updater.Check(input, output)
	return out, nil
}

// CheckAll checks every discovered template concurrently. Reports keep the
// discovery order.
func (p *Project) CheckAll(ctx context.Context) ([]PairReport, error) {
	pairs, err := p.Pairs()
	if err != nil {
		return nil, err
	}

	reports := make([]PairReport, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.CheckPair(pair)
			if err != nil {
				return fmt.Errorf("%s: %w", pair.Template, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
