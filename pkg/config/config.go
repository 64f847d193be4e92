package config

import (
	"log/slog"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
)

// Config is the main configuration struct.
// Merge describes which documents are combined and where the result goes.
// Watch describes which filesystem events trigger a new merge.
// BaseDir is the directory all relative paths are resolved against.
type Config struct {
	Merge   *MergeConfig `koanf:"merge" yaml:"merge"`
	Watch   *WatchConfig `koanf:"watch" yaml:"watch"`
	BaseDir string       `koanf:"-" yaml:"-"`
	Paths   Paths        `koanf:"-" yaml:"-"`
}

// MergeConfig is the document layout.
// Dir is the fragments directory, relative to the base directory.
// Base and Fragments are relative to Dir.
// Output is relative to the base directory.
type MergeConfig struct {
	Dir       string   `koanf:"dir" yaml:"dir"`
	Base      string   `koanf:"base" yaml:"base"`
	Fragments []string `koanf:"fragments" yaml:"fragments"`
	Output    string   `koanf:"output" yaml:"output"`
}

// WatchConfig controls the watcher.
// Suffix is the file name suffix that qualifies an event.
// Exclude skips files whose base name contains it. Unset means the default,
// an empty string disables the filter.
// Command is the merge command line, run in the base directory.
// Debounce groups bursts of events into one merge, 0 disables it.
type WatchConfig struct {
	Suffix   string        `koanf:"suffix" yaml:"suffix"`
	Exclude  *string       `koanf:"exclude" yaml:"exclude"`
	Command  []string      `koanf:"command" yaml:"command"`
	Debounce time.Duration `koanf:"debounce" yaml:"debounce"`
}

// NewDefaultMergeConfig returns the fixed layout of the api-reference tree.
func NewDefaultMergeConfig() *MergeConfig {
	return &MergeConfig{
		Dir:  "api-reference/openapi",
		Base: "base-complete.json",
		Fragments: []string{
			"documents.json",
			"master-entities.json",
			"credentials.json",
			"scheduled-documents.json",
			"schemas.json",
		},
		Output: "api-reference/openapi-complete.json",
	}
}

// NewDefaultWatchConfig returns the watcher defaults.
func NewDefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Suffix:  ".json",
		Exclude: ptr("combined"),
		Command: []string{"oas-combine"},
	}
}

// ExcludePattern returns the exclude substring, empty when disabled.
func (w *WatchConfig) ExcludePattern() string {
	if w == nil || w.Exclude == nil {
		return ""
	}
	return *w.Exclude
}

func ptr[T any](v T) *T {
	return &v
}

// NewDefaultConfig creates a new default config in case the config file is missing, not found or any other error.
func NewDefaultConfig(baseDir string) *Config {
	cfg := &Config{
		Merge:   NewDefaultMergeConfig(),
		Watch:   NewDefaultWatchConfig(),
		BaseDir: baseDir,
	}
	cfg.Paths = NewPaths(baseDir, cfg.Merge)
	return cfg
}

// EnsureConfigValues fills every unset value with its default and resolves the paths.
func (c *Config) EnsureConfigValues() {
	defaultConfig := NewDefaultConfig(c.BaseDir)

	if c.Merge == nil {
		c.Merge = defaultConfig.Merge
	}
	if c.Watch == nil {
		c.Watch = defaultConfig.Watch
	}

	merge := c.Merge
	if merge.Dir == "" {
		merge.Dir = defaultConfig.Merge.Dir
	}
	if merge.Base == "" {
		merge.Base = defaultConfig.Merge.Base
	}
	if len(merge.Fragments) == 0 {
		merge.Fragments = defaultConfig.Merge.Fragments
	}
	if merge.Output == "" {
		merge.Output = defaultConfig.Merge.Output
	}

	watch := c.Watch
	if watch.Suffix == "" {
		watch.Suffix = defaultConfig.Watch.Suffix
	}
	if watch.Exclude == nil {
		watch.Exclude = defaultConfig.Watch.Exclude
	}
	if len(watch.Command) == 0 {
		watch.Command = defaultConfig.Watch.Command
	}
	if watch.Debounce < 0 {
		watch.Debounce = 0
	}

	c.Paths = NewPaths(c.BaseDir, c.Merge)
}

// MustConfig creates a new config from the config file in baseDir.
// In case the file does not exist or has incorrect YAML the default config is returned.
func MustConfig(baseDir string) *Config {
	return MustConfigFile(baseDir, "")
}

// MustConfigFile is MustConfig with an explicit config file path.
// An empty filePath means the default location in baseDir.
func MustConfigFile(baseDir, filePath string) *Config {
	if filePath == "" {
		filePath = NewPaths(baseDir, nil).ConfigFile
	}
	res := NewDefaultConfig(baseDir)

	k := koanf.New(".")
	if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
		slog.Debug("config file not loaded, using defaults", "path", filePath, "error", err)
		return res
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		slog.Error("error loading config. using fallback", "path", filePath, "error", err)
		return res
	}
	cfg.BaseDir = baseDir
	cfg.EnsureConfigValues()

	return cfg
}

// NewConfigFromContent creates a new config from a YAML file content.
func NewConfigFromContent(baseDir string, content []byte) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir
	cfg.EnsureConfigValues()

	return cfg, nil
}
