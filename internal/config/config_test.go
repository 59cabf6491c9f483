package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Namespace() != "validation/runtime" {
		t.Fatalf("unexpected namespace %q", c.Namespace())
	}
	dirs := c.ArtifactDirs()
	if len(dirs) != 1 || dirs[0] != filepath.Join(projectDir, "generated") {
		t.Fatalf("unexpected artifact dirs %v", dirs)
	}
	if !c.Project.Cache.Enabled {
		t.Fatalf("cache should default to enabled")
	}
	if c.LogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level, got %s", c.LogLevel())
	}
}

func TestInitDirWritesLoadableDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, ProjectDirName, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if c.Namespace() != "validation/runtime" || c.Project.Artifacts.Watch {
		t.Fatalf("unexpected defaults: %+v", c.Project)
	}

	custom := []byte("version: 1\nnamespace: kept\n")
	if err := os.WriteFile(c.ProjectConfigPath(), custom, 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("second init: %v", err)
	}
	data, err := os.ReadFile(c.ProjectConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(custom) {
		t.Fatalf("InitDir must not overwrite an existing config")
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	stateDir := filepath.Join(projectDir, ProjectDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
namespace: "edits.runtime."
artifacts:
  dirs:
    - build/generated
    - /opt/edits/generated
    - build/generated
    - "  "
  watch: true
cache:
  enabled: false
logging:
  level: DEBUG
metrics:
  enabled: true
`)
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Namespace() != "edits.runtime" {
		t.Fatalf("namespace should be trimmed, got %q", c.Namespace())
	}
	dirs := c.ArtifactDirs()
	if len(dirs) != 2 {
		t.Fatalf("expected 2 artifact dirs, got %v", dirs)
	}
	if dirs[0] != filepath.Join(projectDir, "build", "generated") {
		t.Fatalf("expected relative dir to be resolved, got %s", dirs[0])
	}
	if dirs[1] != "/opt/edits/generated" {
		t.Fatalf("absolute dir should be kept, got %s", dirs[1])
	}
	if !c.Project.Artifacts.Watch || c.Project.Cache.Enabled || !c.Project.Metrics.Enabled {
		t.Fatalf("flags not parsed: %+v", c.Project)
	}
	if c.LogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %s", c.LogLevel())
	}
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]string{
		"bad version":  "version: -1\n",
		"bad level":    "version: 1\nlogging:\n  level: chatty\n",
		"no namespace": "version: 1\nnamespace: \" \"\n",
		"invalid yaml": "version: [1\n",
		"wrong type":   "version: 1\nartifacts: nope\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			stateDir := filepath.Join(projectDir, ProjectDirName)
			if err := os.MkdirAll(stateDir, 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" Info ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
