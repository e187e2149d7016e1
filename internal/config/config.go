// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Roots    []string `toml:"roots"`
	Exclude  Exclude  `toml:"exclude"`
	Analysis Analysis `toml:"analysis"`
	Resolve  Resolve  `toml:"resolve"`
	Watch    Watch    `toml:"watch"`
	Output   Output   `toml:"output"`
	History  History  `toml:"history"`
	Metrics  Metrics  `toml:"metrics"`
	Alerts   Alerts   `toml:"alerts"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"` // glob patterns, e.g. *.min.js
}

type Analysis struct {
	// MaxPasses bounds the rewrite fixed-point per import site.
	MaxPasses int `toml:"max_passes"`
}

type Resolve struct {
	Extensions []string   `toml:"extensions"`
	Externals  []External `toml:"externals"`
}

type External struct {
	Request string `toml:"request"`
	Rewrite string `toml:"rewrite"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Output struct {
	DOT   string `toml:"dot"`
	TSV   string `toml:"tsv"`
	SARIF string `toml:"sarif"`
}

type History struct {
	Path string `toml:"path"`
}

type Metrics struct {
	Addr          string `toml:"addr"`
	TraceEndpoint string `toml:"trace_endpoint"`
}

type Alerts struct {
	Beep     bool `toml:"beep"`
	Terminal bool `toml:"terminal"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}
	if cfg.Analysis.MaxPasses == 0 {
		cfg.Analysis.MaxPasses = 50
	}
	if len(cfg.Resolve.Extensions) == 0 {
		cfg.Resolve.Extensions = []string{".js", ".mjs", ".cjs", ".ts", ".tsx", ".json"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", ".git", "dist", "build"}
	}
}
