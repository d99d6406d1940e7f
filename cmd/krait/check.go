package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"krait/internal/diag"
	"krait/internal/diagfmt"
	"krait/internal/driver"
	"krait/internal/source"
	"krait/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path...",
	Short: "Check Python files for syntax and semantic errors",
	Long: `Check parses every given file (directories are walked for *.py) and
reports syntax and semantic diagnostics. Exit code 1 means diagnostics
were found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Bool("no-cache", false, "bypass the result cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	var cache *driver.DiskCache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		// A broken cache only costs speed.
		cache, _ = driver.OpenDiskCache("krait")
	}

	var fileSet *source.FileSet
	var results []driver.CheckResult
	run := func(notify driver.Notify) error {
		var runErr error
		fileSet, results, runErr = driver.CheckPaths(
			cmd.Context(), files, cfg, jobs(cmd), cache, notify)
		return runErr
	}

	if shouldUseProgress(quiet(cmd), len(files)) {
		err = runWithProgress("checking", files, ui.StageAnalyze, run)
	} else {
		err = run(nil)
	}
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	failed := false
	for _, res := range results {
		if res.Bag != nil && res.Bag.HasErrors() {
			failed = true
		}
		if showTimings(cmd) && !res.FromCache {
			printTimings(res.Path, res.Timing)
		}
	}

	switch formatFlag {
	case "pretty":
		for _, res := range results {
			printDiagnostics(cmd, res.Bag, fileSet)
		}
	case "short":
		var all []diag.Diagnostic
		for _, res := range results {
			if res.Bag != nil {
				all = append(all, res.Bag.Items()...)
			}
		}
		fmt.Print(diag.FormatShortDiagnostics(all, fileSet, false))
	case "json":
		var all []diagfmt.DiagnosticJSON
		for _, res := range results {
			if res.Bag == nil {
				continue
			}
			all = append(all, diagfmt.CollectDiagnosticsJSON(res.Bag.Items(), fileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
			})...)
		}
		if err := diagfmt.WriteJSON(os.Stdout, all); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", formatFlag)
	}

	if !quiet(cmd) && formatFlag == "pretty" {
		if failed {
			fmt.Fprintf(os.Stderr, "checked %d files, problems found\n", len(files))
		} else {
			fmt.Fprintf(os.Stderr, "checked %d files, no problems\n", len(files))
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}
