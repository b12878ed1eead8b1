package vault_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/notevault/task-index/internal/vault"
)

// isolatedEnv pins XDG_CONFIG_HOME to an empty directory so a developer's
// real global config never leaks into a test.
func isolatedEnv(t *testing.T) []string {
	t.Helper()

	return []string{"XDG_CONFIG_HOME=" + t.TempDir()}
}

// envWithGlobalConfig writes content as the global config and returns the
// matching env slice plus the config path.
func envWithGlobalConfig(t *testing.T, content string) ([]string, string) {
	t.Helper()

	xdgDir := t.TempDir()
	path := filepath.Join(xdgDir, "tix", "config.json")

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir global config dir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write global config: %v", err)
	}

	return []string{"XDG_CONFIG_HOME=" + xdgDir}, path
}

func writeProjectConfig(t *testing.T, workDir, content string) string {
	t.Helper()

	path := filepath.Join(workDir, vault.ConfigFileName)

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write project config: %v", err)
	}

	return path
}

func Test_LoadConfig_ReturnsDefaults_When_NoConfigFiles(t *testing.T) {
	t.Parallel()

	cfg, sources, err := vault.LoadConfig(t.TempDir(), "", vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !reflect.DeepEqual(cfg, vault.DefaultConfig()) {
		t.Fatalf("config = %+v, want defaults %+v", cfg, vault.DefaultConfig())
	}

	if sources.Global != "" || sources.Project != "" {
		t.Fatalf("sources = %+v, want none", sources)
	}
}

func Test_LoadConfig_MergesProjectFile_When_Present(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	// Comments and the trailing comma are valid JSONC.
	path := writeProjectConfig(t, workDir, `{
		// notes live next to this file
		"vault_dir": "notes",
		"scan_workers": 8,
	}`)

	cfg, sources, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "notes" {
		t.Fatalf("vault_dir = %q, want %q", cfg.VaultDir, "notes")
	}

	if cfg.ScanWorkers != 8 {
		t.Fatalf("scan_workers = %d, want 8", cfg.ScanWorkers)
	}

	defaults := vault.DefaultConfig()
	if cfg.SnapshotPath != defaults.SnapshotPath {
		t.Fatalf("snapshot_path = %q, want default %q", cfg.SnapshotPath, defaults.SnapshotPath)
	}

	if cfg.CheckpointInterval != defaults.CheckpointInterval {
		t.Fatalf("checkpoint_interval = %q, want default %q", cfg.CheckpointInterval, defaults.CheckpointInterval)
	}

	if sources.Project != path {
		t.Fatalf("project source = %q, want %q", sources.Project, path)
	}
}

func Test_LoadConfig_PrefersProjectConfig_When_GlobalAlsoSet(t *testing.T) {
	t.Parallel()

	env, globalPath := envWithGlobalConfig(t, `{
		"vault_dir": "global-vault",
		"cache_capacity": 64
	}`)

	workDir := t.TempDir()
	projectPath := writeProjectConfig(t, workDir, `{"vault_dir": "project-vault"}`)

	cfg, sources, err := vault.LoadConfig(workDir, "", vault.Config{}, false, env)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "project-vault" {
		t.Fatalf("vault_dir = %q, want project value", cfg.VaultDir)
	}

	// Fields the project file leaves unset still come from the global file.
	if cfg.CacheCapacity != 64 {
		t.Fatalf("cache_capacity = %d, want 64 from global config", cfg.CacheCapacity)
	}

	if sources.Global != globalPath {
		t.Fatalf("global source = %q, want %q", sources.Global, globalPath)
	}

	if sources.Project != projectPath {
		t.Fatalf("project source = %q, want %q", sources.Project, projectPath)
	}
}

func Test_LoadConfig_ReadsGlobalConfig_When_OnlyGlobalPresent(t *testing.T) {
	t.Parallel()

	env, globalPath := envWithGlobalConfig(t, `{"vault_dir": "global-vault"}`)

	cfg, sources, err := vault.LoadConfig(t.TempDir(), "", vault.Config{}, false, env)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "global-vault" {
		t.Fatalf("vault_dir = %q, want %q", cfg.VaultDir, "global-vault")
	}

	if sources.Global != globalPath {
		t.Fatalf("global source = %q, want %q", sources.Global, globalPath)
	}

	if sources.Project != "" {
		t.Fatalf("project source = %q, want empty", sources.Project)
	}
}

func Test_LoadConfig_PrefersCLIVaultDir_When_OverrideSet(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{"vault_dir": "project-vault"}`)

	cfg, _, err := vault.LoadConfig(workDir, "", vault.Config{VaultDir: "cli-vault"}, true, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "cli-vault" {
		t.Fatalf("vault_dir = %q, want CLI override", cfg.VaultDir)
	}
}

func Test_LoadConfig_UsesExplicitConfig_When_PathGiven(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{"vault_dir": "project-vault"}`)

	explicit := filepath.Join(t.TempDir(), "custom.json")

	err := os.WriteFile(explicit, []byte(`{"vault_dir": "explicit-vault"}`), 0o600)
	if err != nil {
		t.Fatalf("write explicit config: %v", err)
	}

	cfg, sources, err := vault.LoadConfig(workDir, explicit, vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "explicit-vault" {
		t.Fatalf("vault_dir = %q, want explicit value", cfg.VaultDir)
	}

	if sources.Project != explicit {
		t.Fatalf("project source = %q, want %q", sources.Project, explicit)
	}
}

func Test_LoadConfig_ResolvesExplicitConfig_RelativeToWorkDir(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	err := os.WriteFile(filepath.Join(workDir, "custom.json"), []byte(`{"vault_dir": "explicit-vault"}`), 0o600)
	if err != nil {
		t.Fatalf("write explicit config: %v", err)
	}

	cfg, _, err := vault.LoadConfig(workDir, "custom.json", vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.VaultDir != "explicit-vault" {
		t.Fatalf("vault_dir = %q, want explicit value", cfg.VaultDir)
	}
}

func Test_LoadConfig_ReturnsError_When_ExplicitConfigMissing(t *testing.T) {
	t.Parallel()

	_, _, err := vault.LoadConfig(t.TempDir(), "missing.json", vault.Config{}, false, isolatedEnv(t))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}

	if !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("error = %v, want config file not found", err)
	}
}

func Test_LoadConfig_ReturnsError_When_ConfigMalformed(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{not json`)

	_, _, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
	if err == nil {
		t.Fatal("expected error for malformed config")
	}

	if !strings.Contains(err.Error(), "invalid config file") {
		t.Fatalf("error = %v, want invalid config file", err)
	}
}

func Test_LoadConfig_ReturnsError_When_VaultDirExplicitlyEmpty(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{"vault_dir": ""}`)

	_, _, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
	if err == nil {
		t.Fatal("expected error for empty vault_dir")
	}

	if !strings.Contains(err.Error(), "vault_dir cannot be empty") {
		t.Fatalf("error = %v, want vault_dir cannot be empty", err)
	}
}

func Test_LoadConfig_ReturnsError_When_ValueOutOfRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "negative cache capacity",
			config:  `{"cache_capacity": -1}`,
			wantErr: "cache",
		},
		{
			name:    "negative scan workers",
			config:  `{"scan_workers": -4}`,
			wantErr: "scan_workers",
		},
		{
			name:    "unparseable checkpoint interval",
			config:  `{"checkpoint_interval": "soon"}`,
			wantErr: "checkpoint_interval",
		},
		{
			name:    "negative checkpoint interval",
			config:  `{"checkpoint_interval": "-1m"}`,
			wantErr: "checkpoint_interval",
		},
		{
			name:    "zero checkpoint interval",
			config:  `{"checkpoint_interval": "0s"}`,
			wantErr: "checkpoint_interval",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workDir := t.TempDir()
			writeProjectConfig(t, workDir, tt.config)

			_, _, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
			if err == nil {
				t.Fatal("expected validation error")
			}

			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func Test_LoadConfig_ClearsIgnoreDirs_When_EmptyListGiven(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{"ignore_dirs": []}`)

	cfg, _, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.IgnoreDirs) != 0 {
		t.Fatalf("ignore_dirs = %v, want cleared", cfg.IgnoreDirs)
	}
}

func Test_LoadConfig_ReplacesIgnoreDirs_When_ListGiven(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	writeProjectConfig(t, workDir, `{"ignore_dirs": ["archive", "templates"]}`)

	cfg, _, err := vault.LoadConfig(workDir, "", vault.Config{}, false, isolatedEnv(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	want := []string{"archive", "templates"}
	if !reflect.DeepEqual(cfg.IgnoreDirs, want) {
		t.Fatalf("ignore_dirs = %v, want %v", cfg.IgnoreDirs, want)
	}
}

func Test_CheckpointDuration_ParsesInterval(t *testing.T) {
	t.Parallel()

	cfg := vault.DefaultConfig()
	cfg.CheckpointInterval = "90s"

	d, err := cfg.CheckpointDuration()
	if err != nil {
		t.Fatalf("checkpoint duration: %v", err)
	}

	if d != 90*time.Second {
		t.Fatalf("duration = %v, want 90s", d)
	}
}

func Test_ResolveSnapshotPath_JoinsVaultDir_When_Relative(t *testing.T) {
	t.Parallel()

	cfg := vault.Config{SnapshotPath: filepath.Join(".tix", "index.snap")}

	got := cfg.ResolveSnapshotPath("/vault")
	want := filepath.Join("/vault", ".tix", "index.snap")

	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}

func Test_ResolveSnapshotPath_KeepsPath_When_Absolute(t *testing.T) {
	t.Parallel()

	cfg := vault.Config{SnapshotPath: "/var/lib/tix/index.snap"}

	if got := cfg.ResolveSnapshotPath("/vault"); got != "/var/lib/tix/index.snap" {
		t.Fatalf("path = %q, want absolute path unchanged", got)
	}
}

func Test_FormatConfig_RendersJSON(t *testing.T) {
	t.Parallel()

	out, err := vault.FormatConfig(vault.DefaultConfig())
	if err != nil {
		t.Fatalf("format config: %v", err)
	}

	if !strings.Contains(out, `"vault_dir": "."`) {
		t.Fatalf("output missing vault_dir:\n%s", out)
	}
}
