// internal/config/config.go
//
// This package handles configuration and the .gauntlet directory structure.
// A project that validates submissions keeps its settings in
// .gauntlet/config.yaml; everything has a default so the file is optional.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// GauntletDir is the name of the directory we create in each project
	GauntletDir = ".gauntlet"

	// DefaultAcrostic is the challenge target.
	DefaultAcrostic = "VILLAGECODES"

	acrosticLength  = 12
	defaultWorkers  = 4
	defaultDebounce = 500 * time.Millisecond
	defaultHost     = "127.0.0.1"
	defaultPort     = 8766
	defaultMaxBody  = int64(1 << 20)
	defaultRulesDir = GauntletDir + "/rules"
)

const defaultProjectConfigYAML = `# gauntlet project configuration
version: 1

# Letters the first character of each poem line must spell.
acrostic: VILLAGECODES

# CMU-format pronunciation dictionary. Leave empty to use the spelling
# heuristic (results are then flagged with a warning).
dictionary:
  path: ""

output:
  format: text   # text | json | yaml

batch:
  workers: 4
  patterns:
    - challenges/challenge-03-*.md

watch:
  debounce: 500ms
  extensions: [.md, .txt]

server:
  host: 127.0.0.1
  port: 8766

log:
  path: .gauntlet/logs/gauntlet.log
  verbose: false

history:
  path: .gauntlet/history.log

# Extra advisory checks: *.yaml definitions or *.go files defining
# Check(lines []string) []string.
rules:
  dir: .gauntlet/rules
`

// DictionaryConfig locates the pronunciation dictionary.
type DictionaryConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig captures report rendering preferences.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// BatchConfig tunes multi-document runs.
type BatchConfig struct {
	Workers  int      `yaml:"workers"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce   string   `yaml:"debounce"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// ServerConfig configures the HTTP validation bridge.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes,omitempty"`
}

// LogConfig configures the structured log.
type LogConfig struct {
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

// RulesConfig locates project house rules.
type RulesConfig struct {
	Dir string `yaml:"dir"`
}

// HistoryConfig locates the run logbook.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ProjectConfig models .gauntlet/config.yaml.
type ProjectConfig struct {
	Version    int              `yaml:"version"`
	Acrostic   string           `yaml:"acrostic"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Output     OutputConfig     `yaml:"output"`
	Batch      BatchConfig      `yaml:"batch"`
	Watch      WatchConfig      `yaml:"watch"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	History    HistoryConfig    `yaml:"history"`
	Rules      RulesConfig      `yaml:"rules"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory gauntlet was run from
	ProjectDir string

	// GauntletProjectDir is ProjectDir/.gauntlet
	GauntletProjectDir string

	Project ProjectConfig

	path string
}

// InitDir creates the .gauntlet directory structure and a commented default
// config.yaml when none exists.
//
// Structure created:
// .gauntlet/
// ├── config.yaml
// ├── logs/
// └── rules/
func InitDir(projectDir string) error {
	dir := filepath.Join(projectDir, GauntletDir)
	for _, sub := range []string{"logs", "rules"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// Load builds the configuration for projectDir. explicitPath, when set, replaces
// the default .gauntlet/config.yaml location and must exist. Environment
// overrides are applied last.
func Load(projectDir, explicitPath string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		GauntletProjectDir: filepath.Join(projectDir, GauntletDir),
		Project:            defaultProjectConfig(),
	}
	cfg.path = filepath.Join(cfg.GauntletProjectDir, "config.yaml")
	required := false
	if p := strings.TrimSpace(explicitPath); p != "" {
		cfg.path = resolvePath(projectDir, p)
		required = true
	}
	if err := cfg.loadProjectConfig(required); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize(projectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration rooted at projectDir without
// touching the filesystem or environment.
func Default(projectDir string) *Config {
	cfg := &Config{
		ProjectDir:         projectDir,
		GauntletProjectDir: filepath.Join(projectDir, GauntletDir),
		Project:            defaultProjectConfig(),
	}
	cfg.path = filepath.Join(cfg.GauntletProjectDir, "config.yaml")
	cfg.Project.normalize(projectDir)
	return cfg
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return c.path
}

// Acrostic returns the configured target.
func (c *Config) Acrostic() string {
	return c.Project.Acrostic
}

// DictionaryPath returns the resolved dictionary path, empty when unset.
func (c *Config) DictionaryPath() string {
	return c.Project.Dictionary.Path
}

// Workers returns the batch concurrency.
func (c *Config) Workers() int {
	return c.Project.Batch.Workers
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.Project.Watch.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

// LogPath returns the resolved log file path.
func (c *Config) LogPath() string {
	return c.Project.Log.Path
}

// RulesDir returns the resolved house rules directory.
func (c *Config) RulesDir() string {
	return c.Project.Rules.Dir
}

// HistoryPath returns the resolved logbook path.
func (c *Config) HistoryPath() string {
	return c.Project.History.Path
}

func (c *Config) loadProjectConfig(required bool) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		Acrostic: DefaultAcrostic,
		Output:   OutputConfig{Format: "text"},
		Batch:    BatchConfig{Workers: defaultWorkers},
		Watch: WatchConfig{
			Debounce:   defaultDebounce.String(),
			Extensions: []string{".md", ".txt"},
		},
		Server: ServerConfig{
			Host:         defaultHost,
			Port:         defaultPort,
			MaxBodyBytes: defaultMaxBody,
		},
		Rules: RulesConfig{Dir: defaultRulesDir},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Acrostic) == "" {
		pc.Acrostic = DefaultAcrostic
	}
	if pc.Batch.Workers <= 0 {
		pc.Batch.Workers = defaultWorkers
	}
	if strings.TrimSpace(pc.Watch.Debounce) == "" {
		pc.Watch.Debounce = defaultDebounce.String()
	}
	if len(pc.Watch.Extensions) == 0 {
		pc.Watch.Extensions = []string{".md", ".txt"}
	}
	if pc.Server.MaxBodyBytes <= 0 {
		pc.Server.MaxBodyBytes = defaultMaxBody
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("GAUNTLET_DICT")); value != "" {
		pc.Dictionary.Path = value
	}
	if value := strings.TrimSpace(os.Getenv("GAUNTLET_ACROSTIC")); value != "" {
		pc.Acrostic = value
	}
	if value := strings.TrimSpace(os.Getenv("GAUNTLET_WORKERS")); value != "" {
		if workers, err := strconv.Atoi(value); err == nil && workers > 0 {
			pc.Batch.Workers = workers
		}
	}
	if value := strings.TrimSpace(os.Getenv("GAUNTLET_HOST")); value != "" {
		pc.Server.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("GAUNTLET_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil && isValidPort(port) {
			pc.Server.Port = port
		}
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Acrostic = strings.ToUpper(strings.TrimSpace(pc.Acrostic))
	pc.Dictionary.Path = resolvePath(base, pc.Dictionary.Path)
	pc.Output.Format = strings.ToLower(strings.TrimSpace(pc.Output.Format))
	if pc.Output.Format == "" {
		pc.Output.Format = "text"
	}
	for i, ext := range pc.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		pc.Watch.Extensions[i] = ext
	}
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
	if pc.Server.Host == "" {
		pc.Server.Host = defaultHost
	}
	if !isValidPort(pc.Server.Port) {
		pc.Server.Port = defaultPort
	}
	pc.Log.Path = resolvePath(base, pc.Log.Path)
	pc.History.Path = resolvePath(base, pc.History.Path)
	pc.Rules.Dir = resolvePath(base, pc.Rules.Dir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if len(pc.Acrostic) != acrosticLength {
		return fmt.Errorf("acrostic must be %d letters, got %q", acrosticLength, pc.Acrostic)
	}
	for _, r := range pc.Acrostic {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("acrostic must contain only letters A-Z, got %q", pc.Acrostic)
		}
	}
	switch pc.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be 'text', 'json' or 'yaml'")
	}
	if _, err := time.ParseDuration(pc.Watch.Debounce); err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
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
