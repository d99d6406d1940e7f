package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the krait.toml layout. Every field is optional;
// unset fields fall back to defaults.
type fileConfig struct {
	Format formatSection `toml:"format"`
	Parse  parseSection  `toml:"parse"`
	Check  checkSection  `toml:"check"`
}

type formatSection struct {
	LineWidth   int    `toml:"line-width"`
	IndentWidth int    `toml:"indent-width"`
	Quote       string `toml:"quote"`
}

type parseSection struct {
	TargetVersion string `toml:"target-version"`
}

type checkSection struct {
	MaxDiagnostics int `toml:"max-diagnostics"`
}

// Load reads and validates one krait.toml.
func Load(path string) (Config, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Default(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Default(), fmt.Errorf("%s: unknown key %q", path, undec[0].String())
	}

	cfg := Default()
	cfg.Path = path

	if meta.IsDefined("format", "line-width") {
		if fc.Format.LineWidth < 1 {
			return Default(), fmt.Errorf("%s: [format].line-width must be positive, got %d", path, fc.Format.LineWidth)
		}
		cfg.LineWidth = fc.Format.LineWidth
	}
	if meta.IsDefined("format", "indent-width") {
		if fc.Format.IndentWidth < 1 {
			return Default(), fmt.Errorf("%s: [format].indent-width must be positive, got %d", path, fc.Format.IndentWidth)
		}
		cfg.IndentWidth = fc.Format.IndentWidth
	}
	if meta.IsDefined("format", "quote") {
		switch fc.Format.Quote {
		case "double", "single":
			cfg.Quote = fc.Format.Quote
		default:
			return Default(), fmt.Errorf("%s: [format].quote must be \"double\" or \"single\", got %q", path, fc.Format.Quote)
		}
	}
	if meta.IsDefined("parse", "target-version") {
		v, err := ParsePyVersion(fc.Parse.TargetVersion)
		if err != nil {
			return Default(), fmt.Errorf("%s: [parse].target-version: %w", path, err)
		}
		cfg.TargetVersion = v
	}
	if meta.IsDefined("check", "max-diagnostics") {
		if fc.Check.MaxDiagnostics < 1 {
			return Default(), fmt.Errorf("%s: [check].max-diagnostics must be positive, got %d", path, fc.Check.MaxDiagnostics)
		}
		cfg.MaxDiagnostics = fc.Check.MaxDiagnostics
	}
	return cfg, nil
}
