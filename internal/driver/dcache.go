package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"emptylines/internal/diag"
	"emptylines/internal/emptylines"
	"emptylines/internal/fix"
	"emptylines/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [32]byte

// DiskCache keeps per-file analysis results on disk, keyed by content and
// settings. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores the findings and lexer diagnostics of one file version.
// Spans are stored as offsets; the file is re-attached on load.
type DiskPayload struct {
	Schema    uint16
	Generated bool
	Findings  []cachedFinding
	Lex       []cachedDiag
}

type cachedFinding struct {
	ReportStart, ReportEnd uint32
	AnchorStart, AnchorEnd uint32
	AnchorIndex            int
	Blank                  int
}

type cachedDiag struct {
	Code       uint16
	Severity   uint8
	Start, End uint32
	Message    string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	return fix.WriteAtomic(p, data)
}

// Get reads and deserializes a payload from the disk cache. Entries written
// with another schema count as misses.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
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
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// combineDigest: H(schema || content || parts...).
func combineDigest(content [32]byte, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey covers everything that changes the result for file: its bytes,
// its path (generated globs and syntax presets depend on it) and the config.
func cacheKey(file *source.File, fingerprint string) Digest {
	return combineDigest(file.Hash, file.Path, fingerprint)
}

func toDiskPayload(findings []emptylines.Finding, lex []diag.Diagnostic, generated bool) *DiskPayload {
	payload := &DiskPayload{
		Schema:    diskCacheSchemaVersion,
		Generated: generated,
		Findings:  make([]cachedFinding, len(findings)),
		Lex:       make([]cachedDiag, len(lex)),
	}
	for i, f := range findings {
		payload.Findings[i] = cachedFinding{
			ReportStart: f.Report.Start,
			ReportEnd:   f.Report.End,
			AnchorStart: f.Anchor.Span.Start,
			AnchorEnd:   f.Anchor.Span.End,
			AnchorIndex: f.Anchor.Index,
			Blank:       f.Blank,
		}
	}
	for i, d := range lex {
		payload.Lex[i] = cachedDiag{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
	}
	return payload
}

// replay reports the cached results for file through reporter, exactly as a
// fresh analysis would.
func (p *DiskPayload) replay(file *source.File, opts emptylines.Options, reporter diag.Reporter) []emptylines.Finding {
	for _, d := range p.Lex {
		sp := source.Span{File: file.ID, Start: d.Start, End: d.End}
		reporter.Report(diag.Code(d.Code), diag.Severity(d.Severity), sp, d.Message, nil, nil)
	}
	findings := make([]emptylines.Finding, len(p.Findings))
	for i, cf := range p.Findings {
		findings[i] = emptylines.Finding{
			Report: source.Span{File: file.ID, Start: cf.ReportStart, End: cf.ReportEnd},
			Anchor: emptylines.Anchor{
				Span:  source.Span{File: file.ID, Start: cf.AnchorStart, End: cf.AnchorEnd},
				Index: cf.AnchorIndex,
			},
			Blank: cf.Blank,
		}
		emptylines.Report(reporter, file, findings[i], opts)
	}
	return findings
}
