package main

import (
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"moveck/internal/driver"
)

const configFileHint = driver.ConfigFileName

// settings merges persistent flags with the project config. Flags set on
// the command line win over the config, which wins over flag defaults.
type settings struct {
	project        *driver.ProjectConfig
	color          bool
	quiet          bool
	timings        bool
	jobs           int
	maxDiagnostics int
	params         map[string]uint64
}

var (
	current settings
	cleanup func()
)

func setupRun(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	current = s

	stopTrace, err := setupTracing(cmd, s.project)
	if err != nil {
		return err
	}
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		stopTrace()
		return err
	}
	cleanup = func() {
		stopProf()
		stopTrace()
	}
	return nil
}

// teardownRun stops profilers and flushes the tracer; safe to call more
// than once.
func teardownRun() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	var s settings

	configPath, err := flags.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		s.project, err = driver.LoadConfig(configPath)
		if err != nil {
			return s, err
		}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return s, fmt.Errorf("failed to get working directory: %w", err)
		}
		s.project, _, err = driver.LoadProjectConfig(wd)
		if err != nil {
			return s, err
		}
	}
	var cfg driver.Config
	if s.project != nil {
		cfg = s.project.Config
	}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorFlag) {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stdout)
	default:
		return s, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}

	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && s.project.IsDefined("analysis", "jobs") {
		s.jobs = cfg.Analysis.Jobs
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must not be negative")
	}

	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && s.project.IsDefined("analysis", "max_diagnostics") {
		s.maxDiagnostics = cfg.Analysis.MaxDiagnostics
	}

	if s.params, err = cfg.ParamValues(); err != nil {
		return s, err
	}
	raw, err := flags.GetStringToInt64("param")
	if err != nil {
		return s, fmt.Errorf("failed to get param flag: %w", err)
	}
	for name, v := range raw {
		n, err := safecast.Conv[uint64](v)
		if err != nil {
			return s, fmt.Errorf("--param %s: %w", name, err)
		}
		if s.params == nil {
			s.params = make(map[string]uint64, len(raw))
		}
		s.params[name] = n
	}
	return s, nil
}

// cacheSettings resolves --cache/--cache-dir of cmd against the config.
func cacheSettings(cmd *cobra.Command, s settings) (*driver.DiskCache, error) {
	enabled, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !cmd.Flags().Changed("cache") && s.project != nil {
		enabled = s.project.Config.Analysis.Cache
	}
	if !enabled {
		return nil, nil
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir == "" && s.project != nil {
		dir = s.project.Config.Analysis.CacheDir
	}
	if dir != "" {
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("moveck")
}
