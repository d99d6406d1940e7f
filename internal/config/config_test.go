package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	want := config.Config{
		LineWidth:      88,
		IndentWidth:    4,
		Quote:          "double",
		TargetVersion:  config.PyVersion{Major: 3, Minor: 12},
		MaxDiagnostics: 100,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.QuoteByte() != '"' {
		t.Errorf("expected double quote byte, got %q", cfg.QuoteByte())
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[format]
line-width = 100
indent-width = 2
quote = "single"

[parse]
target-version = "3.13"

[check]
max-diagnostics = 25
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := config.Config{
		LineWidth:      100,
		IndentWidth:    2,
		Quote:          "single",
		TargetVersion:  config.PyVersion{Major: 3, Minor: 13},
		MaxDiagnostics: 25,
		Path:           path,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.QuoteByte() != '\'' {
		t.Errorf("expected single quote byte, got %q", cfg.QuoteByte())
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[format]\nline-width = 79\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LineWidth != 79 {
		t.Errorf("expected line width 79, got %d", cfg.LineWidth)
	}
	if cfg.IndentWidth != 4 || cfg.Quote != "double" || cfg.MaxDiagnostics != 100 {
		t.Errorf("unset fields must keep defaults, got %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		frag string
	}{
		{"unknown key", "[format]\nwidth = 80\n", "unknown key"},
		{"zero line width", "[format]\nline-width = 0\n", "must be positive"},
		{"negative indent", "[format]\nindent-width = -1\n", "must be positive"},
		{"bad quote", "[format]\nquote = \"smart\"\n", "quote"},
		{"python 2", "[parse]\ntarget-version = \"2.7\"\n", "only Python 3"},
		{"not a version", "[parse]\ntarget-version = \"latest\"\n", "expected MAJOR.MINOR"},
		{"zero diagnostics", "[check]\nmax-diagnostics = 0\n", "must be positive"},
		{"broken toml", "[format\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			_, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error for %q", tc.body)
			}
			if !strings.Contains(err.Error(), tc.frag) {
				t.Errorf("error %q does not mention %q", err, tc.frag)
			}
		})
	}
}

func TestDiscoverFindsNearestFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "pkg", "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, root, "[format]\nline-width = 120\n")
	near := writeConfig(t, filepath.Join(root, "pkg"), "[format]\nline-width = 60\n")

	cfg, found, err := config.Discover(nested)
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if !found {
		t.Fatal("expected a config file to be found")
	}
	if cfg.Path != near || cfg.LineWidth != 60 {
		t.Errorf("expected nearest config %q with width 60, got %q width %d",
			near, cfg.Path, cfg.LineWidth)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	cfg, found, err := config.Discover(t.TempDir())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if found {
		t.Fatalf("unexpected config file %q", cfg.Path)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePyVersion(t *testing.T) {
	v, err := config.ParsePyVersion(" 3.11 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v != (config.PyVersion{Major: 3, Minor: 11}) {
		t.Errorf("unexpected version %v", v)
	}
	if !v.AtLeast(3, 11) || v.AtLeast(3, 12) {
		t.Errorf("AtLeast ordering wrong for %v", v)
	}
	if v.String() != "3.11" {
		t.Errorf("unexpected string %q", v.String())
	}
}
