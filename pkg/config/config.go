// Package config holds all configuration options for concord.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for concord.
type Config struct {
	// Analysis settings for the pipeline.
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis" json:"analysis"`

	// File exclusion rules for the scanner.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Output settings for the renderer.
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// AnalysisConfig controls the pipeline stages.
type AnalysisConfig struct {
	// Mode selects the mapper mode: full, light, or doc_only.
	Mode string `koanf:"mode" toml:"mode" yaml:"mode" json:"mode"`
	// MatchStrategy selects how calls resolve to definitions.
	MatchStrategy string `koanf:"match_strategy" toml:"match_strategy" yaml:"match_strategy" json:"match_strategy"`
	// Workers bounds the parse worker pool; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`
	// FileTimeoutSec is the per-file parse deadline in seconds.
	FileTimeoutSec int `koanf:"file_timeout_sec" toml:"file_timeout_sec" yaml:"file_timeout_sec" json:"file_timeout_sec"`
	// MaxFileSizeKB is the size ceiling for listed files.
	MaxFileSizeKB int `koanf:"max_file_size_kb" toml:"max_file_size_kb" yaml:"max_file_size_kb" json:"max_file_size_kb"`
}

// ExcludeConfig defines file exclusion rules.
type ExcludeConfig struct {
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Format is one of table, plain, txt, json, tree, csv.
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"`
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Mode:           "full",
			MatchStrategy:  "exact_name",
			Workers:        0,
			FileTimeoutSec: 10,
			MaxFileSizeKB:  2000,
		},
		Exclude: ExcludeConfig{
			Dirs: []string{
				".git",
				"__pycache__",
				"venv",
				".venv",
				"env",
				".idea",
				"node_modules",
			},
			Patterns: []string{
				"*~",
				"*.swp",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, choosing the parser by
// extension (TOML by default).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard locations or returns defaults.
func LoadOrDefault() *Config {
	names := []string{
		"concord.toml",
		"concord.yaml",
		"concord.yml",
		"concord.json",
		".concord.toml",
		".concord.yaml",
		".concord.yml",
		".concord.json",
	}

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
