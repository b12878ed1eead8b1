package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI drives Run end to end against a temp-directory vault.
type CLI struct {
	t   *testing.T
	Dir string
	Env []string
}

// NewCLI creates a test CLI rooted at a fresh temp dir. XDG_CONFIG_HOME
// points into the temp dir so a developer's real global config never
// leaks into a test.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: []string{"XDG_CONFIG_HOME=" + filepath.Join(dir, "xdg")},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and
// exit code. Args should not include "tix" or "--cwd" - those are added
// automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"tix", "--cwd", r.Dir}, args...)
	code := Run(context.Background(), nil, &outBuf, &errBuf, fullArgs, r.Env)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns
// non-zero. Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// WriteNote writes a markdown note at a vault-relative path.
func (r *CLI) WriteNote(rel, content string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, filepath.FromSlash(rel))

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		r.t.Fatalf("mkdir for %s: %v", rel, err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("write note %s: %v", rel, err)
	}
}

// ReadNote returns the content of a note at a vault-relative path.
func (r *CLI) ReadNote(rel string) string {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Dir, filepath.FromSlash(rel)))
	if err != nil {
		r.t.Fatalf("read note %s: %v", rel, err)
	}

	return string(data)
}

// SnapshotPath returns where the default config keeps the snapshot.
func (r *CLI) SnapshotPath() string {
	return filepath.Join(r.Dir, ".tix", "index.snap")
}

// Fixture notes with every task line tagged, so scan exits clean.
const (
	inboxNote = `# Inbox

- [ ] write the weekly report @due(2025-01-10) @project(home) #chores <!-- tid: 9f3b2c1a -->
- [x] book dentist appointment !p1 <!-- tid: 4d5e6f7a -->
- [ ] capture meeting notes @project(home) <!-- tid: c3d4e5f6 -->
`

	websiteNote = `- [ ] ship landing page @project(website) #launch !p2 <!-- tid: aa11bb22 -->
- [x] pick a domain @project(website) <!-- tid: bb22cc33 -->
`
)

// seedVault writes the fixture notes and scans them into a snapshot.
func seedVault(t *testing.T) *CLI {
	t.Helper()

	r := NewCLI(t)
	r.WriteNote("inbox.md", inboxNote)
	r.WriteNote("projects/website.md", websiteNote)
	r.MustRun("scan")

	return r
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
