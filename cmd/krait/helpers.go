package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"krait/internal/config"
	"krait/internal/diag"
	"krait/internal/diagfmt"
	"krait/internal/observ"
	"krait/internal/source"
)

// loadConfig resolves the effective configuration: an explicit --config
// path, or the nearest krait.toml walking up from the first input. The
// --max-diagnostics flag overrides the file when set.
func loadConfig(cmd *cobra.Command, firstPath string) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	var cfg config.Config
	var err error
	if explicit, _ := flags.GetString("config"); explicit != "" {
		cfg, err = config.Load(explicit)
	} else {
		startDir := "."
		if firstPath != "" {
			if info, statErr := os.Stat(firstPath); statErr == nil && info.IsDir() {
				startDir = firstPath
			} else {
				startDir = filepath.Dir(firstPath)
			}
		}
		cfg, _, err = config.Discover(startDir)
	}
	if err != nil {
		return cfg, err
	}

	if max, _ := flags.GetInt("max-diagnostics"); max > 0 {
		cfg.MaxDiagnostics = max
	}
	return cfg, nil
}

func useColor(cmd *cobra.Command, out *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(out))
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

func showTimings(cmd *cobra.Command) bool {
	t, _ := cmd.Root().PersistentFlags().GetBool("timings")
	return t
}

func jobs(cmd *cobra.Command) int {
	n, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	return n
}

// printDiagnostics renders one bag to stderr in the caret-and-excerpt
// form.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stderr),
		Context:   2,
		ShowNotes: true,
	})
}

// printTimings writes one file's phase report to stderr.
func printTimings(path string, report observ.Report) {
	if len(report.Phases) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s:\n", path)
	for _, p := range report.Phases {
		fmt.Fprintf(os.Stderr, "  %-10s %7.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(os.Stderr, "  %-10s %7.2f ms\n", "total", report.TotalMS)
}
