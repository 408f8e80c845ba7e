package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"moveck/internal/diag"
	"moveck/internal/driver"
	"moveck/internal/observ"
)

const (
	exitDiagnostics   = 1
	exitInternalError = 2
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.toml|directory>...",
	Short: "Report illegal moves in body files",
	Long: `Analyze every body in the given body files, or in all *.toml files under
the given directories, and report moves out of places that cannot be moved
from. Exits with 1 when errors are reported and 2 when the analyzer failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged files from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "disk cache location (default: $XDG_CACHE_HOME/moveck)")
	checkCmd.Flags().Bool("clear-cache", false, "drop the disk cache before checking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format %q (must be pretty, short or json)", format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := parseProgressMode(uiFlag)
	if err != nil {
		return err
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}

	s := current
	cache, err := cacheSettings(cmd, s)
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if clearCache && cache != nil {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear disk cache: %w", err)
		}
	}

	files, err := driver.ExpandTargets(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !s.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no body files found")
		}
		return nil
	}

	opts := driver.Options{
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Params:         s.params,
		Cache:          cache,
	}

	timer := observ.NewTimer()
	var results []driver.FileResult
	err = timer.Measure("analyze", func() error {
		var err error
		if format != "json" && mode.showProgress(len(files), s.quiet, isTerminal(os.Stdout)) {
			results, err = analyzeWithUI(cmd.Context(), "moveck check", files, opts)
		} else {
			results, err = driver.AnalyzeFiles(cmd.Context(), files, opts)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	bag := diag.NewBag(0)
	for i := range results {
		bag.Merge(results[i].Bag)
	}
	bag.Sort()

	out := cmd.OutOrStdout()
	err = timer.Measure("report", func() error {
		switch format {
		case "pretty":
			return diag.Pretty(out, bag, diag.PrettyOpts{Color: s.color, ShowNotes: withNotes})
		case "short":
			if text := diag.FormatShort(bag, withNotes); text != "" {
				_, err := fmt.Fprintln(out, text)
				return err
			}
			return nil
		default:
			return diag.WriteJSON(out, bag, withNotes)
		}
	})
	if err != nil {
		return err
	}

	sum := driver.Summarize(results)
	if !s.quiet && format != "json" {
		fmt.Fprintln(cmd.ErrOrStderr(), sum)
		if cache != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), cache.Stats())
		}
	}
	if s.timings {
		printFileTimings(os.Stderr, results)
		printRunTimings(os.Stderr, timer)
	}

	switch {
	case sum.Failed > 0:
		return exitCodeError{code: exitInternalError}
	case bag.HasErrors():
		return exitCodeError{code: exitDiagnostics}
	}
	return nil
}
