package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"moveck/internal/trace"
)

// ConfigFileName is the project config looked up from the working directory.
const ConfigFileName = "moveck.toml"

// Config is the decoded project config. Zero values mean "use the default".
type Config struct {
	Analysis AnalysisConfig   `toml:"analysis"`
	Trace    TraceConfig      `toml:"trace"`
	Params   map[string]int64 `toml:"params"`
}

type AnalysisConfig struct {
	Jobs           int    `toml:"jobs"`
	Cache          bool   `toml:"cache"`
	CacheDir       string `toml:"cache_dir"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

// ProjectConfig is a config file found on disk.
type ProjectConfig struct {
	Path   string
	Root   string
	Config Config
	// defined remembers which keys were present, for flag precedence.
	defined func(key ...string) bool
}

// IsDefined reports whether key was set in the file.
func (p *ProjectConfig) IsDefined(key ...string) bool {
	if p == nil || p.defined == nil {
		return false
	}
	return p.defined(key...)
}

// FindConfig walks up from startDir looking for ConfigFileName.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadProjectConfig finds and loads the config for startDir. ok is false
// when there is none.
func LoadProjectConfig(startDir string) (*ProjectConfig, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	pc, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return pc, true, nil
}

// LoadConfig decodes and checks the config file at path.
func LoadConfig(path string) (*ProjectConfig, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	var errs []error
	if cfg.Analysis.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%s: [analysis].jobs must not be negative", path))
	}
	if cfg.Analysis.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("%s: [analysis].max_diagnostics must not be negative", path))
	}
	if cfg.Trace.Level != "" {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			errs = append(errs, fmt.Errorf("%s: [trace].level: %w", path, err))
		}
	}
	if cfg.Trace.Format != "" {
		if _, err := trace.ParseFormat(cfg.Trace.Format); err != nil {
			errs = append(errs, fmt.Errorf("%s: [trace].format: %w", path, err))
		}
	}
	for name, v := range cfg.Params {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: [params].%s must not be negative", path, name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	root := filepath.Dir(path)
	if cfg.Analysis.CacheDir != "" && !filepath.IsAbs(cfg.Analysis.CacheDir) {
		cfg.Analysis.CacheDir = filepath.Join(root, cfg.Analysis.CacheDir)
	}
	return &ProjectConfig{Path: path, Root: root, Config: cfg, defined: meta.IsDefined}, nil
}

// ParamValues converts [params] to array-length bindings.
func (c *Config) ParamValues() (map[string]uint64, error) {
	if len(c.Params) == 0 {
		return nil, nil
	}
	out := make(map[string]uint64, len(c.Params))
	for name, v := range c.Params {
		n, err := safecast.Conv[uint64](v)
		if err != nil {
			return nil, fmt.Errorf("[params].%s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
