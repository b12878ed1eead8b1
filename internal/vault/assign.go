package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/notevault/task-index/pkg/taskline"
)

// AssignOptions configures an id-assignment pass.
type AssignOptions struct {
	// DryRun counts missing ids without touching any file.
	DryRun bool
}

// AssignReport summarizes an id-assignment pass.
type AssignReport struct {
	FilesChanged int // files that gained at least one id (or would, in dry-run)
	IDsAssigned  int // ids appended (or counted, in dry-run)
}

// AssignIDs walks the vault and appends a generated id comment to every
// task line that has none. Files are rewritten atomically; line endings are
// normalized to \n on rewrite.
func (s *Scanner) AssignIDs(opts AssignOptions) (AssignReport, error) {
	files, err := s.listMarkdownFiles()
	if err != nil {
		return AssignReport{}, err
	}

	var report AssignReport

	for _, rel := range files {
		assigned, err := s.assignFileIDs(rel, opts.DryRun)
		if err != nil {
			return report, err
		}

		if assigned > 0 {
			report.FilesChanged++
			report.IDsAssigned += assigned
		}
	}

	return report, nil
}

func (s *Scanner) assignFileIDs(rel string, dryRun bool) (int, error) {
	path := filepath.Join(s.dir, rel)

	data, err := os.ReadFile(path) //nolint:gosec // paths come from the vault walk
	if err != nil {
		return 0, fmt.Errorf("read note: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	assigned := 0

	for i := range lines {
		line := strings.TrimSuffix(lines[i], "\r")
		lines[i] = line

		_, ok := s.parser.ParseLine(line, i+1)
		if !ok || taskline.HasID(line) {
			continue
		}

		assigned++

		if !dryRun {
			lines[i] = taskline.AddID(line, taskline.NewID())
		}
	}

	if assigned == 0 || dryRun {
		return assigned, nil
	}

	err = atomic.WriteFile(path, strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return 0, fmt.Errorf("rewrite note: %w", err)
	}

	s.logger.Debug("assigned task ids", zap.String("file", rel), zap.Int("count", assigned))

	return assigned, nil
}
