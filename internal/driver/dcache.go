package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"krait/internal/config"
	"krait/internal/diag"
	"krait/internal/source"
)

// Schema version; bump when DiskPayload changes shape.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content fingerprint.
type Digest [sha256.Size]byte

// DiskCache stores per-file check results keyed by content and
// configuration, so an unchanged file skips the whole pipeline on the
// next run. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the serialized form of one cached check result.
type DiskPayload struct {
	Schema uint16

	ContentHash Digest
	ConfigHash  Digest

	Clean bool
	Diags []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic stripped to what rendering needs.
// Spans keep only offsets; the file ID is re-bound on load.
type CachedDiagnostic struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Message  string
}

// OpenDiskCache initializes the cache at the standard location:
// $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "checks", hexKey+".mp")
}

// configFingerprint hashes every setting that affects check results.
func configFingerprint(cfg config.Config) Digest {
	return sha256.Sum256(fmt.Appendf(nil, "%d|%d|%s|%s|%d",
		cfg.LineWidth, cfg.IndentWidth, cfg.Quote,
		cfg.TargetVersion.String(), cfg.MaxDiagnostics))
}

func cacheKey(contentHash [sha256.Size]byte, cfgHash Digest) Digest {
	h := sha256.New()
	h.Write(contentHash[:])
	h.Write(cfgHash[:])
	var key Digest
	copy(key[:], h.Sum(nil))
	return key
}

// Lookup returns the cached result for a file when content and config
// still match. Cached spans are re-bound to fileID. A nil cache never
// hits.
func (c *DiskCache) Lookup(file *source.File, fileID source.FileID, cfg config.Config) (CheckResult, bool) {
	if c == nil {
		return CheckResult{}, false
	}
	cfgHash := configFingerprint(cfg)
	var payload DiskPayload
	ok, err := c.get(cacheKey(file.Hash, cfgHash), &payload)
	if err != nil || !ok {
		return CheckResult{}, false
	}
	if payload.Schema != diskCacheSchemaVersion ||
		payload.ContentHash != Digest(file.Hash) ||
		payload.ConfigHash != cfgHash {
		return CheckResult{}, false
	}

	bag := diag.NewBag(cfg.MaxDiagnostics)
	for _, d := range payload.Diags {
		bag.Add(diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{File: fileID, Start: d.Start, End: d.End},
		})
	}
	return CheckResult{Bag: bag, FromCache: true}, true
}

// Store writes one check result. Results that carry a tree are cached as
// diagnostics only; the tree is cheap to rebuild and huge to serialize.
func (c *DiskCache) Store(file *source.File, cfg config.Config, res CheckResult) {
	if c == nil || res.Bag == nil {
		return
	}
	cfgHash := configFingerprint(cfg)
	payload := DiskPayload{
		Schema:      diskCacheSchemaVersion,
		ContentHash: Digest(file.Hash),
		ConfigHash:  cfgHash,
		Clean:       !res.Bag.HasErrors(),
	}
	for _, d := range res.Bag.Items() {
		payload.Diags = append(payload.Diags, CachedDiagnostic{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		})
	}
	// Cache write failures are invisible: the next run just recomputes.
	_ = c.put(cacheKey(file.Hash, cfgHash), &payload)
}

func (c *DiskCache) put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

func (c *DiskCache) get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
