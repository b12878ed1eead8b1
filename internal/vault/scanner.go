// Package vault connects a markdown vault on disk to the in-memory task
// index: scanning notes into records, assigning ids to task lines, and
// keeping a snapshot file fresh between runs.
//
// A vault is a directory tree of .md files. Task lines carry their state
// inline (`- [ ] text @due(...) !p1 #tag <!-- tid: id -->`); note front
// matter may add per-task metadata under `task.<id>` keys. The scanner
// merges both, with the line winning on conflict, and replaces the index
// contents file by file.
package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notevault/task-index/internal/frontmatter"
	"github.com/notevault/task-index/pkg/taskindex"
	"github.com/notevault/task-index/pkg/taskline"
)

// DefaultScanWorkers bounds how many notes are parsed concurrently when no
// worker count is configured.
const DefaultScanWorkers = 4

// Scanner reads task lines and front matter metadata out of a vault
// directory.
type Scanner struct {
	dir     string
	workers int
	ignore  map[string]struct{}
	parser  *taskline.Parser
	clock   clock.Clock
	logger  *zap.Logger
}

// ScannerOptions configures a Scanner. The zero value selects defaults.
type ScannerOptions struct {
	// Workers bounds concurrent file parsing. Values < 1 select
	// DefaultScanWorkers.
	Workers int
	// IgnoreDirs lists directory names skipped during the walk, in addition
	// to dot-directories which are always skipped.
	IgnoreDirs []string
	// Clock supplies "now" for relative due dates and bookkeeping
	// timestamps. Nil selects the wall clock.
	Clock clock.Clock
}

// NewScanner returns a Scanner rooted at dir. Record file paths are
// slash-separated and relative to dir.
func NewScanner(dir string, opts ScannerOptions) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultScanWorkers
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	ignore := make(map[string]struct{}, len(opts.IgnoreDirs))
	for _, name := range opts.IgnoreDirs {
		ignore[name] = struct{}{}
	}

	return &Scanner{
		dir:     dir,
		workers: workers,
		ignore:  ignore,
		parser:  taskline.NewParser(clk),
		clock:   clk,
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger for the scanner.
func (s *Scanner) WithLogger(log *zap.Logger) {
	s.logger = log.With(zap.String("service", "vault-scan"))
}

// Report summarizes a vault scan.
type Report struct {
	FilesScanned   int // markdown files visited
	FilesWithTasks int // files that produced at least one record
	TasksIndexed   int // records handed to the index
	SkippedNoID    int // task lines without an id comment
}

// Scan walks the vault and replaces the index contents file by file.
// Unreadable notes and malformed front matter are logged and skipped; they
// never abort the scan.
func (s *Scanner) Scan(ctx context.Context, idx *taskindex.Index) (Report, error) {
	files, err := s.listMarkdownFiles()
	if err != nil {
		return Report{}, err
	}

	var (
		mu     sync.Mutex
		report Report
	)

	report.FilesScanned = len(files)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rel := range files {
		rel := rel

		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			recs, skipped, readErr := s.parseFile(rel)
			if readErr != nil {
				s.logger.Warn("skipping unreadable note", zap.String("file", rel), zap.Error(readErr))

				return nil
			}

			updateErr := idx.UpdateFileTasks(rel, recs)
			if updateErr != nil {
				return fmt.Errorf("index %s: %w", rel, updateErr)
			}

			mu.Lock()
			if len(recs) > 0 {
				report.FilesWithTasks++
			}
			report.TasksIndexed += len(recs)
			report.SkippedNoID += skipped
			mu.Unlock()

			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return Report{}, err
	}

	s.pruneVanished(idx, files)

	s.logger.Info("vault scanned",
		zap.Int("files", report.FilesScanned),
		zap.Int("files_with_tasks", report.FilesWithTasks),
		zap.Int("tasks", report.TasksIndexed),
		zap.Int("skipped_no_id", report.SkippedNoID))

	return report, nil
}

// pruneVanished drops records of indexed files the walk did not find.
// Without it, tasks of a note deleted between scans would survive every
// snapshot restore.
func (s *Scanner) pruneVanished(idx *taskindex.Index, walked []string) {
	seen := make(map[string]struct{}, len(walked))
	for _, rel := range walked {
		seen[rel] = struct{}{}
	}

	for _, rel := range idx.FilePaths() {
		if _, ok := seen[rel]; ok {
			continue
		}

		idx.RemoveFileTasks(rel)
		s.logger.Info("dropped vanished note", zap.String("file", rel))
	}
}

// ScanFile resyncs a single note into the index. A note that no longer
// exists drops its tasks. Returns the number of records indexed.
func (s *Scanner) ScanFile(idx *taskindex.Index, rel string) (int, error) {
	recs, _, err := s.parseFile(rel)
	if err != nil {
		if os.IsNotExist(err) {
			idx.RemoveFileTasks(rel)

			return 0, nil
		}

		return 0, err
	}

	err = idx.UpdateFileTasks(rel, recs)
	if err != nil {
		return 0, err
	}

	return len(recs), nil
}

func (s *Scanner) parseFile(rel string) ([]taskindex.Record, int, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, rel)) //nolint:gosec // paths come from the vault walk
	if err != nil {
		return nil, 0, err
	}

	recs, skipped := s.buildRecords(rel, data)

	return recs, skipped, nil
}

// buildRecords turns one note into index records. Task lines are extracted
// from the full file so line numbers stay file-absolute; front matter only
// contributes metadata.
func (s *Scanner) buildRecords(rel string, data []byte) ([]taskindex.Record, int) {
	block, _, err := frontmatter.Parse(data)
	if err != nil {
		s.logger.Warn("ignoring malformed front matter", zap.String("file", rel), zap.Error(err))

		block = nil
	}

	metas := taskMetaFromBlock(block)
	now := s.clock.Now().UTC()

	var (
		recs    []taskindex.Record
		skipped int
	)

	for _, task := range s.parser.ExtractAll(string(data)) {
		rec, ok := taskline.BuildRecord(task, rel)
		if !ok {
			skipped++

			continue
		}

		applyMeta(&rec, metas[rec.ID], now)
		recs = append(recs, rec)
	}

	return recs, skipped
}

// listMarkdownFiles returns the vault's .md files as sorted slash-separated
// relative paths. Dot-directories and configured ignores are pruned.
func (s *Scanner) listMarkdownFiles() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == s.dir {
				return nil
			}

			if s.skipDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(d.Name()) != ".md" {
			return nil
		}

		rel, relErr := filepath.Rel(s.dir, path)
		if relErr != nil {
			return relErr
		}

		files = append(files, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	slices.Sort(files)

	return files, nil
}

func (s *Scanner) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	_, ok := s.ignore[name]

	return ok
}
