package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"moveck/internal/diag"
	"moveck/internal/driver"
	"moveck/internal/mir"
	"moveck/internal/movepaths"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.toml>",
	Short: "Print the move data of a body file",
	Long: `Analyze one body file and print, for every body, its move paths, moves,
inits and illegal moves`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	dumpCmd.Flags().String("body", "", "only dump the named body")
	dumpCmd.Flags().Bool("emit-mir", false, "print each body's MIR before its move data (text only)")
	dumpCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

func runDump(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format %q (must be text, json or msgpack)", format)
	}
	only, err := cmd.Flags().GetString("body")
	if err != nil {
		return fmt.Errorf("failed to get body flag: %w", err)
	}
	emitMIR, err := cmd.Flags().GetBool("emit-mir")
	if err != nil {
		return fmt.Errorf("failed to get emit-mir flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	s := current
	res := driver.AnalyzeFile(cmd.Context(), args[0], driver.Options{
		MaxDiagnostics: s.maxDiagnostics,
		Params:         s.params,
		KeepData:       true,
	})

	bodies := res.Bodies
	if only != "" {
		bodies = nil
		for _, b := range res.Bodies {
			if b.Name == only {
				bodies = append(bodies, b)
			}
		}
		if len(bodies) == 0 && !res.Bag.HasErrors() {
			return fmt.Errorf("%s: no body named %q", args[0], only)
		}
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "text":
		err = dumpText(out, &res, bodies, emitMIR)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(snapshots(bodies))
	case "msgpack":
		err = msgpack.NewEncoder(out).Encode(snapshots(bodies))
	}
	if err != nil {
		return err
	}

	// diagnostics go to stderr so that structured output stays clean
	if res.Bag.Len() > 0 {
		if err := diag.Pretty(cmd.ErrOrStderr(), res.Bag, diag.PrettyOpts{Color: s.color, ShowNotes: true}); err != nil {
			return err
		}
	}
	if s.timings {
		printFileTimings(os.Stderr, []driver.FileResult{res})
	}
	switch {
	case res.Failed:
		return exitCodeError{code: exitInternalError}
	case len(res.Bodies) == 0 && res.Bag.HasErrors():
		return exitCodeError{code: exitDiagnostics}
	}
	return nil
}

func dumpText(w io.Writer, res *driver.FileResult, bodies []driver.BodyResult, emitMIR bool) error {
	for i, b := range bodies {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if emitMIR && res.File != nil {
			if body, ok := res.File.Body(b.Name); ok {
				if err := mir.DumpBody(w, body, res.File.Types); err != nil {
					return err
				}
			}
		}
		if err := b.Data.Dump(w); err != nil {
			return err
		}
	}
	return nil
}

func snapshots(bodies []driver.BodyResult) []movepaths.Snapshot {
	out := make([]movepaths.Snapshot, len(bodies))
	for i := range bodies {
		out[i] = bodies[i].Snapshot
	}
	return out
}
