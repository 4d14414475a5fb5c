package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/wintrackr/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================
// Defaults
// ============================================================

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 25*time.Second, cfg.SampleInterval)
	assert.Equal(t, 60*time.Second, cfg.SummaryInterval)
	assert.True(t, cfg.History)
	assert.Equal(t, SamplerX11, cfg.Sampler.Kind)
	assert.Contains(t, cfg.Rules, "chrome.exe")
	assert.Contains(t, cfg.Rules, "Code.exe")
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().SampleInterval, cfg.SampleInterval)
}

func TestDirs(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "DailyActivityLogs"), cfg.LogDir())
	assert.Equal(t, filepath.Join("/data", "DailyUsage"), cfg.SummaryDir())
}

// ============================================================
// YAML
// ============================================================

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/activity
sample_interval: 10s
summary_interval: 2m
history: false
log_level: debug
sampler:
  kind: command
  command: ["focus-helper", "--tsv"]
rules:
  slack:
    strip_suffixes: [" - Slack"]
    separators: [" - "]
    pick: first
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/activity", cfg.DataDir)
	assert.Equal(t, 10*time.Second, cfg.SampleInterval)
	assert.Equal(t, 2*time.Minute, cfg.SummaryInterval)
	assert.Equal(t, 5*time.Second, cfg.SampleTimeout, "unset keys keep defaults")
	assert.False(t, cfg.History)
	assert.Equal(t, []string{"focus-helper", "--tsv"}, cfg.Sampler.Command)

	require.Contains(t, cfg.Rules, "slack")
	assert.Equal(t, normalize.SegmentFirst, cfg.Rules["slack"].Pick)
	assert.Contains(t, cfg.Rules, "chrome.exe", "file rules merge over defaults")

	n := normalize.New(cfg.Rules)
	assert.Equal(t, "#general", n.Normalize("slack", "#general - Acme - Slack"))
}

func TestLoadYAMLOverridesDefaultRule(t *testing.T) {
	path := writeConfig(t, `
rules:
  chrome.exe:
    separators: [" · "]
    pick: last
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	n := normalize.New(cfg.Rules)
	assert.Equal(t, "b", n.Normalize("chrome.exe", "a · b"))
	assert.Equal(t, "Gmail", n.Normalize("firefox.exe", "Inbox | Gmail"))
}

func TestLoadRuleWithoutPick(t *testing.T) {
	path := writeConfig(t, `
rules:
  slack:
    separators: [" - "]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Slack", normalize.New(cfg.Rules).Normalize("slack", "#general - Acme - Slack"))
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "sample_interval: [",
		"bad duration":    "sample_interval: soon",
		"zero interval":   "sample_interval: 0s",
		"bad level":       "log_level: loud",
		"bad sampler":     "sampler: {kind: wayland}",
		"missing command": "sampler: {kind: command}",
		"bad pick":        "rules: {x: {pick: middle}}",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

// ============================================================
// Environment
// ============================================================

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "sample_interval: 10s\n")
	t.Setenv("WINTRACKR_DATA_DIR", "/env/data")
	t.Setenv("WINTRACKR_SAMPLE_INTERVAL", "3s")
	t.Setenv("WINTRACKR_SUMMARY_INTERVAL", "nonsense")
	t.Setenv("WINTRACKR_HISTORY", "false")
	t.Setenv("WINTRACKR_LOG_LEVEL", "warn")
	t.Setenv("WINTRACKR_SAMPLER_COMMAND", "focus-helper --tsv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, 3*time.Second, cfg.SampleInterval, "env wins over file")
	assert.Equal(t, 60*time.Second, cfg.SummaryInterval, "invalid env ignored")
	assert.False(t, cfg.History)
	assert.Equal(t, SamplerCommand, cfg.Sampler.Kind)
	assert.Equal(t, []string{"focus-helper", "--tsv"}, cfg.Sampler.Command)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

// ============================================================
// Watcher
// ============================================================

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "sample_interval: 10s\n")

	w, err := NewWatcher(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	w.debounceTime = 20 * time.Millisecond

	got := make(chan Config, 4)
	w.OnChange(func(cfg Config) { got <- cfg })
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("sample_interval: 7s\n"), 0o644))

	select {
	case cfg := <-got:
		assert.Equal(t, 7*time.Second, cfg.SampleInterval)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "config.yaml"), slog.Default())
	assert.Error(t, err)
}
