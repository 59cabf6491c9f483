// internal/config/config.go
//
// This package handles configuration and the .rulebind directory structure.
// A project that resolves generated artifacts keeps its settings and logs in
// a .rulebind/ folder at its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/rulebind/internal/binding"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".rulebind"

	defaultArtifactDir = "generated"
	defaultLogLevel    = "info"
)

const defaultProjectConfigYAML = `# rulebind project configuration
version: 1

# Prefix generated artifacts are registered under.
namespace: validation/runtime

# Directories holding generated artifact sources (<ClassName>.go), relative to the project.
artifacts:
  dirs:
    - generated
  # Pick up artifacts generated while the process runs.
  watch: false

cache:
  enabled: true

logging:
  # debug, info, warn or error. Debug shows why lookups came back empty.
  level: info

metrics:
  enabled: false
`

// ArtifactsConfig lists where generated artifact sources live.
type ArtifactsConfig struct {
	Dirs  []string `yaml:"dirs"`
	Watch bool     `yaml:"watch"`
}

// CacheConfig toggles resolution memoization.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig toggles prometheus counters.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ProjectConfig models .rulebind/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Namespace string          `yaml:"namespace"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Config holds the runtime configuration for rulebind.
type Config struct {
	// ProjectDir is the directory holding the generated artifacts
	ProjectDir string

	// StateDir is ProjectDir/.rulebind
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .rulebind directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .rulebind/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, ProjectDirName)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
// A missing config.yaml yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	cfg.Project.normalize(abs)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// Namespace returns the prefix generated artifacts are registered under.
func (c *Config) Namespace() string {
	return c.Project.Namespace
}

// ArtifactDirs returns absolute artifact source directories.
func (c *Config) ArtifactDirs() []string {
	return c.Project.Artifacts.Dirs
}

// LogLevel maps the configured level onto slog.
func (c *Config) LogLevel() slog.Level {
	return ParseLevel(c.Project.Logging.Level)
}

// ParseLevel maps debug, info, warn and error onto slog levels. Anything
// else is info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:   1,
		Namespace: binding.DefaultNamespace,
		Artifacts: ArtifactsConfig{Dirs: []string{defaultArtifactDir}},
		Cache:     CacheConfig{Enabled: true},
		Logging:   LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Namespace = strings.TrimSuffix(strings.TrimSpace(pc.Namespace), ".")
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	dirs := make([]string, 0, len(pc.Artifacts.Dirs))
	for _, dir := range pc.Artifacts.Dirs {
		resolved := resolvePath(base, dir)
		if resolved == "" || contains(dirs, resolved) {
			continue
		}
		dirs = append(dirs, resolved)
	}
	pc.Artifacts.Dirs = dirs
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
