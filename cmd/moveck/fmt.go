package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moveck/internal/bodyfile"
	"moveck/internal/driver"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Rewrite body files in canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "check if files are already in canonical form")
	fmtCmd.Flags().Bool("stdout", false, "print formatted files to stdout instead of rewriting them")
}

func runFmt(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}

	files, err := driver.ExpandTargets(args)
	if err != nil {
		return err
	}

	var unformatted, failed int
	for _, path := range files {
		orig, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := bodyfile.Parse(path, orig)
		if err != nil {
			errs := bodyfile.Errors(err)
			if len(errs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			for _, e := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			failed++
			continue
		}
		var buf bytes.Buffer
		if err := bodyfile.Encode(&buf, f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		switch {
		case toStdout:
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
		case bytes.Equal(orig, buf.Bytes()):
		case check:
			unformatted++
			fmt.Fprintln(cmd.OutOrStdout(), path)
		default:
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			if !current.quiet {
				fmt.Fprintln(cmd.ErrOrStderr(), "formatted", path)
			}
		}
	}

	if failed > 0 || unformatted > 0 {
		return exitCodeError{code: 1}
	}
	return nil
}
