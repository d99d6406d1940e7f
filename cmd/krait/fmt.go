package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"krait/internal/driver"
	"krait/internal/format"
	"krait/internal/source"
	"krait/internal/ui"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] path...",
	Short: "Format Python files in place",
	Long: `Fmt rewrites every given file (directories are walked for *.py) into
the canonical style. Files with syntax errors are left untouched. With
--check nothing is written; exit code 1 reports files that would
change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that would change without writing")
	fmtCmd.Flags().Bool("stdout", false, "print formatted output instead of writing (single file only)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	files, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !quiet(cmd) {
			fmt.Fprintln(os.Stderr, "no Python files found")
		}
		return nil
	}

	checkOnly, _ := cmd.Flags().GetBool("check")
	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout && len(files) != 1 {
		return errors.New("--stdout requires exactly one file")
	}
	write := !checkOnly && !toStdout

	var fileSet *source.FileSet
	var results []driver.FormatResult
	run := func(notify driver.Notify) error {
		var runErr error
		fileSet, results, runErr = driver.FormatPaths(
			cmd.Context(), files, cfg, jobs(cmd), write, notify)
		return runErr
	}

	if shouldUseProgress(quiet(cmd) || toStdout, len(files)) {
		err = runWithProgress("formatting", files, ui.StageFormat, run)
	} else {
		err = run(nil)
	}
	if err != nil {
		return err
	}

	changed, failed := 0, false
	for _, res := range results {
		if res.Bag != nil && res.Bag.HasErrors() {
			failed = true
			printDiagnostics(cmd, res.Bag, fileSet)
		}
		if res.Err != nil {
			failed = true
			if errors.Is(res.Err, format.ErrInvariant) {
				fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			}
		}
		if res.Changed {
			changed++
			if checkOnly && !quiet(cmd) {
				fmt.Fprintf(os.Stderr, "would reformat %s\n", res.Path)
			} else if write && !quiet(cmd) {
				fmt.Fprintf(os.Stderr, "reformatted %s\n", res.Path)
			}
		}
	}

	if toStdout && results[0].Output != nil {
		if _, err := os.Stdout.Write(results[0].Output); err != nil {
			return err
		}
	}

	if failed {
		return errDiagnostics
	}
	if checkOnly && changed > 0 {
		return errDiagnostics
	}
	return nil
}
