package vault_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/notevault/task-index/internal/vault"
	"github.com/notevault/task-index/pkg/taskindex"
)

// testNow is the frozen scan time used across fixtures: a Wednesday at noon
// UTC, so date math in assertions stays hand-checkable.
func testNow() time.Time {
	return time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
}

func newTestIndex(t *testing.T) *taskindex.Index {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(testNow())

	idx, err := taskindex.New(taskindex.Options{Clock: mock})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	return idx
}

// newTestScanner builds a scanner over dir with a frozen clock, so records
// that fall back to "now" timestamps are deterministic.
func newTestScanner(t *testing.T, dir string, ignoreDirs ...string) *vault.Scanner {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(testNow())

	return vault.NewScanner(dir, vault.ScannerOptions{
		Workers:    2,
		IgnoreDirs: ignoreDirs,
		Clock:      mock,
	})
}

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readNote(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}

	return string(data)
}

func mustGet(t *testing.T, idx *taskindex.Index, id string) taskindex.Record {
	t.Helper()

	rec, err := idx.Get(id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}

	return rec
}
