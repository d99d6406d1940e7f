package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"krait/internal/config"
	"krait/internal/diag"
	"krait/internal/source"
)

// ListPyFiles returns every *.py file under dir, sorted for a
// deterministic run order.
func ListPyFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandPaths resolves a mixed list of files and directories into a
// sorted, deduplicated file list.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		sub, err := ListPyFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range sub {
			add(f)
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadAll preloads every file into one FileSet, keeping load failures
// for per-file reporting.
func loadAll(fileSet *source.FileSet, files []string) (map[string]source.FileID, map[string]error) {
	ids := make(map[string]source.FileID, len(files))
	loadErrs := make(map[string]error)
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrs[path] = err
			continue
		}
		ids[path] = id
	}
	return ids, loadErrs
}

func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > n {
		return n
	}
	return jobs
}

func notifyOutcome(failed bool) NotifyStatus {
	if failed {
		return NotifyError
	}
	return NotifyDone
}

func loadFailure(bag *diag.Bag, err error) {
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
		"failed to load file: "+err.Error()))
}

// Notify is an optional per-file progress hook for parallel runs. It is
// called from worker goroutines and must be safe for concurrent use.
type Notify func(path string, status NotifyStatus)

// NotifyStatus is the lifecycle point a Notify call reports.
type NotifyStatus uint8

const (
	NotifyStart NotifyStatus = iota
	NotifyDone
	NotifyError
)

func (n Notify) send(path string, status NotifyStatus) {
	if n != nil {
		n(path, status)
	}
}

// CheckPaths runs the check pipeline over many files in parallel.
// Results come back indexed like the input list.
func CheckPaths(ctx context.Context, files []string, cfg config.Config, jobs int, cache *DiskCache, notify Notify) (*source.FileSet, []CheckResult, error) {
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	ids, loadErrs := loadAll(fileSet, files)

	results := make([]CheckResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			notify.send(path, NotifyStart)
			if loadErr, failed := loadErrs[path]; failed {
				bag := diag.NewBag(cfg.MaxDiagnostics)
				loadFailure(bag, loadErr)
				results[i] = CheckResult{Path: path, Bag: bag}
				notify.send(path, NotifyError)
				return nil
			}

			fileID := ids[path]
			if res, ok := cache.Lookup(fileSet.Get(fileID), fileID, cfg); ok {
				res.Path = path
				res.FileID = fileID
				results[i] = res
				notify.send(path, notifyOutcome(res.Bag.HasErrors()))
				return nil
			}

			res := CheckFile(fileSet, fileID, cfg)
			cache.Store(fileSet.Get(fileID), cfg, res)
			results[i] = res
			notify.send(path, notifyOutcome(res.Bag.HasErrors()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// FormatPaths formats many files in parallel. With write set, changed
// files are rewritten in place; otherwise the results just report what
// would change.
func FormatPaths(ctx context.Context, files []string, cfg config.Config, jobs int, write bool, notify Notify) (*source.FileSet, []FormatResult, error) {
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	ids, loadErrs := loadAll(fileSet, files)

	results := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			notify.send(path, NotifyStart)
			if loadErr, failed := loadErrs[path]; failed {
				bag := diag.NewBag(cfg.MaxDiagnostics)
				loadFailure(bag, loadErr)
				results[i] = FormatResult{Path: path, Bag: bag}
				notify.send(path, NotifyError)
				return nil
			}

			res := FormatFile(fileSet, ids[path], cfg)
			if write && res.Changed && res.Err == nil {
				if err := writeFileAtomic(path, res.Output); err != nil {
					res.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{},
						"failed to write file: "+err.Error()))
				}
			}
			results[i] = res
			notify.send(path, notifyOutcome(res.Err != nil || res.Bag.HasErrors()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// writeFileAtomic replaces path through a temp file and rename, keeping
// readers from ever seeing a half-written file.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".krait-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp, info.Mode())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
