package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notevault/task-index/pkg/taskindex"
)

const snapshotDirPerms = 0o750

// Host owns the durable copy of the index. It primes the index from a
// snapshot file (falling back to a full vault scan when the file is missing
// or unreadable), rewrites the snapshot on an interval, and writes a final
// snapshot on close.
type Host struct {
	idx      *taskindex.Index
	scanner  *Scanner
	path     string
	interval time.Duration

	Logger *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHost returns a host persisting idx to snapshotPath. An interval <= 0
// disables the background checkpoint loop; Close still writes a final
// snapshot.
func NewHost(idx *taskindex.Index, scanner *Scanner, snapshotPath string, interval time.Duration) *Host {
	return &Host{
		idx:      idx,
		scanner:  scanner,
		path:     snapshotPath,
		interval: interval,
		Logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger for the host.
func (h *Host) WithLogger(log *zap.Logger) {
	h.Logger = log.With(zap.String("service", "snapshot-host"))
}

// Load primes the index from the snapshot file. A missing file triggers a
// full vault scan; an unreadable blob is logged and likewise rebuilt from
// the vault, with a fresh snapshot written immediately.
func (h *Host) Load(ctx context.Context) error {
	data, err := os.ReadFile(h.path) //nolint:gosec // snapshot path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read snapshot: %w", err)
		}

		h.Logger.Info("no snapshot found, scanning vault", zap.String("path", h.path))

		return h.rebuild(ctx)
	}

	err = h.idx.Deserialize(data)
	if err != nil {
		if !errors.Is(err, taskindex.ErrSnapshotDecode) {
			return fmt.Errorf("restore snapshot: %w", err)
		}

		h.Logger.Warn("snapshot unreadable, rebuilding from vault",
			zap.String("path", h.path),
			zap.Error(err))

		return h.rebuild(ctx)
	}

	h.Logger.Info("snapshot restored",
		zap.String("path", h.path),
		zap.Int("tasks", h.idx.Size()),
		zap.Uint64("version", h.idx.Version()))

	return nil
}

// rebuild scans the vault from scratch and persists the result so the next
// start loads cleanly.
func (h *Host) rebuild(ctx context.Context) error {
	_, err := h.scanner.Scan(ctx, h.idx)
	if err != nil {
		return fmt.Errorf("scan vault: %w", err)
	}

	return h.Checkpoint()
}

// Open starts the background checkpoint loop.
func (h *Host) Open(ctx context.Context) error {
	if h.cancel != nil {
		return nil
	}

	ctx, h.cancel = context.WithCancel(ctx)

	if h.interval > 0 {
		h.wg.Add(1)
		go h.runCheckpoints(ctx)
	}

	return nil
}

// Close stops the checkpoint loop and writes a final snapshot.
func (h *Host) Close() error {
	if h.cancel == nil {
		return nil
	}

	h.cancel()
	h.wg.Wait()
	h.cancel = nil

	return h.Checkpoint()
}

func (h *Host) runCheckpoints(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case <-time.After(h.interval):
			err := h.Checkpoint()
			if err != nil {
				h.Logger.Warn("checkpoint failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Checkpoint serializes the index and atomically replaces the snapshot
// file, creating its directory if needed.
func (h *Host) Checkpoint() error {
	dir := filepath.Dir(h.path)
	if dir != "." {
		err := os.MkdirAll(dir, snapshotDirPerms)
		if err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}

	err := h.idx.WriteSnapshot(h.path)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}

	h.Logger.Debug("snapshot written",
		zap.String("path", h.path),
		zap.Int("tasks", h.idx.Size()),
		zap.Uint64("version", h.idx.Version()))

	return nil
}
