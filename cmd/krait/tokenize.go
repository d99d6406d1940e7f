package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"krait/internal/diagfmt"
	"krait/internal/driver"
	"krait/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.py",
	Short: "Tokenize a Python source file",
	Long:  `Tokenize breaks a Python source file into its token stream.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
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

	result := driver.TokenizeFile(fileSet, fileID, cfg)
	printDiagnostics(cmd, result.Bag, fileSet)

	formatFlag, _ := cmd.Flags().GetString("format")
	switch formatFlag {
	case "pretty":
		err = diagfmt.FormatTokensPretty(os.Stdout, result.Tokens, fileSet)
	case "json":
		err = diagfmt.FormatTokensJSON(os.Stdout, result.Tokens)
	default:
		return fmt.Errorf("unknown format: %s", formatFlag)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
