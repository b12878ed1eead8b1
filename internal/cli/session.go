package cli

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/notevault/task-index/internal/vault"
	"github.com/notevault/task-index/pkg/taskindex"
)

// session is the state every command shares: the resolved config, the
// index, and the vault collaborators operating on it. Commands hold the
// pointer from construction; init fills it once the config is known.
type session struct {
	cfg     vault.Config
	sources vault.ConfigSources

	vaultDir string // absolute
	snapPath string // absolute

	idx     *taskindex.Index
	scanner *vault.Scanner
	host    *vault.Host
}

func (s *session) init(cfg vault.Config, sources vault.ConfigSources, workDir string, log *zap.Logger) error {
	vaultDir := cfg.VaultDir
	if !filepath.IsAbs(vaultDir) {
		vaultDir = filepath.Join(workDir, vaultDir)
	}

	idx, err := taskindex.New(taskindex.Options{CacheCapacity: cfg.CacheCapacity})
	if err != nil {
		return err
	}

	interval, err := cfg.CheckpointDuration()
	if err != nil {
		return err
	}

	scanner := vault.NewScanner(vaultDir, vault.ScannerOptions{
		Workers:    cfg.ScanWorkers,
		IgnoreDirs: cfg.IgnoreDirs,
	})
	scanner.WithLogger(log)

	s.cfg = cfg
	s.sources = sources
	s.vaultDir = vaultDir
	s.snapPath = cfg.ResolveSnapshotPath(vaultDir)
	s.idx = idx
	s.scanner = scanner
	s.host = vault.NewHost(idx, scanner, s.snapPath, interval)
	s.host.WithLogger(log)

	return nil
}

// prime fills the index from the snapshot, or from a full vault scan when
// the snapshot is missing or unreadable. Read commands call this before
// touching the index.
func (s *session) prime(ctx context.Context) error {
	return s.host.Load(ctx)
}
