package config

import (
	"path/filepath"
)

// ConfigFileName is looked up in the base directory.
const ConfigFileName = ".oascombine.yml"

// Paths is a struct that holds all the resolved paths used by the application.
// Base is the project root every configured path is relative to.
// Fragments is the directory watched for changes.
// BaseDocument is the seed document the fragments are folded into.
// FragmentFiles keeps the configured order.
type Paths struct {
	Base          string
	Fragments     string
	BaseDocument  string
	FragmentFiles []string
	Output        string
	ConfigFile    string
}

// NewPaths resolves the layout of cfg against baseDir.
// Absolute entries are kept as they are.
func NewPaths(baseDir string, cfg *MergeConfig) Paths {
	if cfg == nil {
		cfg = NewDefaultMergeConfig()
	}

	fragDir := resolve(baseDir, cfg.Dir)

	fragments := make([]string, 0, len(cfg.Fragments))
	for _, name := range cfg.Fragments {
		fragments = append(fragments, resolve(fragDir, name))
	}

	return Paths{
		Base:          baseDir,
		Fragments:     fragDir,
		BaseDocument:  resolve(fragDir, cfg.Base),
		FragmentFiles: fragments,
		Output:        resolve(baseDir, cfg.Output),
		ConfigFile:    filepath.Join(baseDir, ConfigFileName),
	}
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
