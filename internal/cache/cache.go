// Package cache stores a content-addressed record of whether a source
// text compiled cleanly, so a --watch-style loop that re-runs the same
// script after an unrelated edit doesn't redo parse-diagnostic
// formatting for source it has already seen. Entries hold derived
// bookkeeping facts, not a serialized parse tree.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"kipper/internal/diag"
)

const schemaVersion uint16 = 1

// DiagnosticRecord is a msgpack-friendly flattening of diag.Diagnostic;
// it drops the FileID half of the span since a cache entry must stay
// valid across runs that load the same text into a different FileSet.
type DiagnosticRecord struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
}

// Entry is what a cache lookup returns for a given source hash.
type Entry struct {
	Schema      uint16
	Clean       bool
	Diagnostics []DiagnosticRecord
}

// Cache is a directory of msgpack-encoded Entry files named by the
// SHA-256 hex digest of the source text they describe.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a Cache rooted at dir, creating it if necessary.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Key hashes source text to the digest Put/Get key on.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// KeyFromHash hex-encodes an already-computed SHA-256 digest (e.g. a
// source.File's Hash field) into a Put/Get key, avoiding a second pass
// over the source text.
func KeyFromHash(hash [32]byte) string {
	return hex.EncodeToString(hash[:])
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".mp")
}

// Put records whether source (identified by key) compiled cleanly,
// along with its diagnostics if not.
func (c *Cache) Put(key string, diagnostics []diag.Diagnostic) error {
	entry := Entry{Schema: schemaVersion, Clean: len(diagnostics) == 0}
	entry.Diagnostics = make([]DiagnosticRecord, len(diagnostics))
	for i, d := range diagnostics {
		entry.Diagnostics[i] = DiagnosticRecord{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		f.Close()
		os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reports whether key has a cached entry and, if so, returns it.
func (c *Cache) Get(key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return Entry{}, false, err
	}
	if entry.Schema != schemaVersion {
		return Entry{}, false, nil
	}
	return entry, true, nil
}
