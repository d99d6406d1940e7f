package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"krait/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "krait",
	Short: "Python source checker and formatter",
	Long:  `Krait tokenizes, parses, checks, and formats Python source files.`,
}

// errDiagnostics marks a run that completed but found problems in the
// input: diagnostics, or files a --check run would reformat. It maps to
// exit code 1; mechanical failures exit with 2.
var errDiagnostics = errors.New("diagnostics reported")

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 = from config)")
	rootCmd.PersistentFlags().String("config", "", "path to krait.toml (default: discovered upward)")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of parallel workers (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errDiagnostics) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
