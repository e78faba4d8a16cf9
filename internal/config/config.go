package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"gopkg.in/yaml.v3"

	"difftree/internal/hash"
)

// DefaultPath is looked up in the working directory when no --config is given.
const DefaultPath = ".difftree.yaml"

// iniSection holds the keys of an INI config file.
const iniSection = "difftree"

type Config struct {
	Algorithm   string   `yaml:"algorithm" ini:"algorithm"`
	ChunkSize   string   `yaml:"chunk_size" ini:"chunk_size"`
	Workers     int      `yaml:"workers" ini:"workers"`
	Exclude     []string `yaml:"exclude" ini:"exclude"`
	StrictTypes bool     `yaml:"strict_types" ini:"strict_types"`
	Progress    bool     `yaml:"progress" ini:"progress"`
}

func DefaultConfig() *Config {
	return &Config{
		Algorithm: string(hash.DefaultAlgorithm),
		ChunkSize: "8M",
		Workers:   1,
		Exclude:   []string{},
	}
}

// LoadConfig reads a YAML file, or an INI file when path ends in .ini.
// A missing file yields DefaultConfig. Keys absent from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config INI: %w", err)
		}
		if err := file.Section(iniSection).MapTo(cfg); err != nil {
			return nil, fmt.Errorf("failed to map config INI: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	// Initialize Exclude slice if nil (for empty configs)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	if _, err := cfg.HashOptions(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// HashOptions converts the algorithm and chunk size settings. A non-positive
// chunk size falls back to the default.
func (c *Config) HashOptions() (hash.Options, error) {
	opts := hash.DefaultOptions()

	if c.Algorithm != "" {
		alg, err := hash.ParseAlgorithm(c.Algorithm)
		if err != nil {
			return opts, err
		}
		opts.Algorithm = alg
	}

	if c.ChunkSize != "" {
		size, err := ParseHumanSize(c.ChunkSize)
		if err != nil {
			return opts, err
		}
		opts.ChunkSize = size
	}

	return opts.Normalize(), nil
}
