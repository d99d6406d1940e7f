// Package config loads krait.toml and exposes an immutable Config with
// defaults applied. Consumers read it; nobody mutates it after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const FileName = "krait.toml"

// Defaults.
const (
	DefaultLineWidth      = 88
	DefaultIndentWidth    = 4
	DefaultQuote          = "double"
	DefaultTargetVersion  = "3.12"
	DefaultMaxDiagnostics = 100
)

// Config carries every tunable the pipeline reads.
type Config struct {
	LineWidth      int
	IndentWidth    int
	Quote          string // "double" or "single"
	TargetVersion  PyVersion
	MaxDiagnostics int

	// Path of the file the config came from; empty when defaults only.
	Path string
}

// Default returns the configuration used when no krait.toml exists.
func Default() Config {
	v, _ := ParsePyVersion(DefaultTargetVersion)
	return Config{
		LineWidth:      DefaultLineWidth,
		IndentWidth:    DefaultIndentWidth,
		Quote:          DefaultQuote,
		TargetVersion:  v,
		MaxDiagnostics: DefaultMaxDiagnostics,
	}
}

// QuoteByte returns the canonical quote character.
func (c Config) QuoteByte() byte {
	if c.Quote == "single" {
		return '\''
	}
	return '"'
}

// Discover walks upward from startDir looking for krait.toml and loads
// the nearest one. Without a file the defaults apply, ok is false.
func Discover(startDir string) (Config, bool, error) {
	path, found, err := findConfigFile(startDir)
	if err != nil {
		return Default(), false, err
	}
	if !found {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	return cfg, true, err
}

func findConfigFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
