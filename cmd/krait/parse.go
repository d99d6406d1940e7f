package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"krait/internal/diagfmt"
	"krait/internal/driver"
	"krait/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.py",
	Short: "Parse a Python source file and dump its syntax tree",
	Long:  `Parse builds the syntax tree for one file and prints it in an indented dump.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Bool("spans", false, "include byte spans in the dump")
}

func runParse(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	result := driver.ParseOnly(fileSet, fileID, cfg)
	printDiagnostics(cmd, result.Bag, fileSet)
	if showTimings(cmd) {
		printTimings(result.Path, result.Timing)
	}

	withSpans, _ := cmd.Flags().GetBool("spans")
	if result.Builder != nil {
		if err := diagfmt.WriteTree(os.Stdout, result.Builder, result.ASTFile,
			diagfmt.TreeOpts{WithSpans: withSpans}); err != nil {
			return err
		}
	}
	if result.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
