package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/config"
	"krait/internal/diag"
	"krait/internal/driver"
	"krait/internal/source"
	"krait/internal/token"
)

func codeIDs(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckFileOrdersSyntaxBeforeSemantic(t *testing.T) {
	src := "type x = yield y\n"
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.py", []byte(src))

	res := driver.CheckFile(fs, fileID, config.Default())
	want := []string{"SYN2007", "SEM3001"}
	if diff := cmp.Diff(want, codeIDs(res.Bag)); diff != "" {
		t.Fatalf("diagnostic codes mismatch (-want +got):\n%s", diff)
	}

	// Both findings anchor on the same yield expression.
	idx := uint32(strings.Index(src, "yield y"))
	for _, d := range res.Bag.Items() {
		if d.Primary.Start != idx || d.Primary.End != idx+uint32(len("yield y")) {
			t.Errorf("%s anchored at %d..%d, expected the yield expression",
				d.Code.ID(), d.Primary.Start, d.Primary.End)
		}
	}
}

func TestCheckFileDeduplicates(t *testing.T) {
	// The same broken line can produce the same finding from more than
	// one recovery path; the result must carry it once.
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.py", []byte("x = yield 1\n"))
	res := driver.CheckFile(fs, fileID, config.Default())

	seen := make(map[string]int)
	for _, d := range res.Bag.Items() {
		key := d.Code.ID() + d.Message
		seen[key]++
		if seen[key] > 1 {
			t.Errorf("duplicate diagnostic %s %q", d.Code.ID(), d.Message)
		}
	}
}

func TestTokenizeFileEndsAtEOF(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.py", []byte("x = 1\n"))
	res := driver.TokenizeFile(fs, fileID, config.Default())
	if len(res.Tokens) == 0 {
		t.Fatal("expected tokens")
	}
	if last := res.Tokens[len(res.Tokens)-1]; last.Kind != token.EOF {
		t.Errorf("expected trailing EOF token, got %v", last.Kind)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "x = 1\n")
	b := writeFile(t, dir, "b.py", "y = 2\n")
	writeFile(t, dir, "notes.txt", "not python\n")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	c := writeFile(t, sub, "c.py", "z = 3\n")

	// The explicit file overlaps the directory walk; it must appear once.
	files, err := driver.ExpandPaths([]string{dir, b})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	want := []string{a, b, c}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("file list mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckPathsKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.py", "= 1\n")
	good := writeFile(t, dir, "good.py", "x = 1\n")
	missing := filepath.Join(dir, "missing.py")

	_, results, err := driver.CheckPaths(context.Background(),
		[]string{good, bad, missing}, config.Default(), 2, nil, nil)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Path != good || results[0].Bag.HasErrors() {
		t.Errorf("clean file reported %v", codeIDs(results[0].Bag))
	}
	if results[1].Path != bad || !results[1].Bag.HasErrors() {
		t.Errorf("broken file reported clean")
	}
	ids := codeIDs(results[2].Bag)
	if len(ids) != 1 || ids[0] != "IO4001" {
		t.Errorf("missing file should report a load error, got %v", ids)
	}
}

func TestFormatPathsWritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "messy.py", "x=1\n")

	_, results, err := driver.FormatPaths(context.Background(),
		[]string{path}, config.Default(), 1, true, nil)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !results[0].Changed || results[0].Err != nil {
		t.Fatalf("expected a rewrite, got changed=%v err=%v", results[0].Changed, results[0].Err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "x = 1\n" {
		t.Errorf("expected formatted file, got %q", content)
	}

	// Second run is a no-op.
	_, results, err = driver.FormatPaths(context.Background(),
		[]string{path}, config.Default(), 1, true, nil)
	if err != nil {
		t.Fatalf("second format failed: %v", err)
	}
	if results[0].Changed {
		t.Error("already formatted file reported as changed")
	}
}

func TestFormatPathsLeavesBrokenFilesAlone(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.py", "= 1\n")

	_, results, err := driver.FormatPaths(context.Background(),
		[]string{path}, config.Default(), 1, true, nil)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if results[0].Output != nil || results[0].Changed {
		t.Errorf("broken file must not be formatted: %+v", results[0])
	}
	if !results[0].Bag.HasErrors() {
		t.Error("expected parse diagnostics")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "= 1\n" {
		t.Errorf("broken file was rewritten to %q", content)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := driver.OpenDiskCache("krait-test")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	src := "type x = yield y\n"
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.py", []byte(src))
	file := fs.Get(fileID)
	cfg := config.Default()

	if _, ok := cache.Lookup(file, fileID, cfg); ok {
		t.Fatal("lookup on an empty cache must miss")
	}

	res := driver.CheckFile(fs, fileID, cfg)
	cache.Store(file, cfg, res)

	hit, ok := cache.Lookup(file, fileID, cfg)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if !hit.FromCache {
		t.Error("hit not marked FromCache")
	}
	if diff := cmp.Diff(codeIDs(res.Bag), codeIDs(hit.Bag)); diff != "" {
		t.Errorf("cached codes mismatch (-want +got):\n%s", diff)
	}
	for i, d := range hit.Bag.Items() {
		orig := res.Bag.Items()[i]
		if d.Primary.File != fileID {
			t.Errorf("cached span not re-bound to the file: %+v", d.Primary)
		}
		if d.Primary.Start != orig.Primary.Start || d.Primary.End != orig.Primary.End {
			t.Errorf("cached span drifted: got %d..%d, want %d..%d",
				d.Primary.Start, d.Primary.End, orig.Primary.Start, orig.Primary.End)
		}
	}

	// A different configuration is a different key.
	wider := cfg
	wider.LineWidth = 120
	if _, ok := cache.Lookup(file, fileID, wider); ok {
		t.Error("config change must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok := cache.Lookup(file, fileID, cfg); ok {
		t.Error("lookup after DropAll must miss")
	}
}

func TestCheckPathsUsesCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := driver.OpenDiskCache("krait-test")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")

	_, first, err := driver.CheckPaths(context.Background(),
		[]string{path}, config.Default(), 1, cache, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first[0].FromCache {
		t.Fatal("first run cannot come from the cache")
	}

	_, second, err := driver.CheckPaths(context.Background(),
		[]string{path}, config.Default(), 1, cache, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !second[0].FromCache {
		t.Error("unchanged file should hit the cache")
	}
	if second[0].Path != path || second[0].FileID != first[0].FileID {
		t.Errorf("cache hit lost identity: %+v", second[0])
	}
}
