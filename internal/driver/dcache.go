package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки файлов по ключу
// H(содержимое, настройки). Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of checking one file version.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash Digest

	// SyntaxErrors is set when parsing failed; Diagnostics then hold the
	// syntax errors (and indentation findings only with --check-on-syntax-error).
	SyntaxErrors bool
	Diagnostics  []diag.Diagnostic
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

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
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
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads and deserializes a payload from the disk cache. Payloads written
// by another schema version count as a miss.
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
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
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
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// diagnosticsToPayload drops file ids: they are only valid inside one FileSet.
func diagnosticsToPayload(file *source.File, syntaxErrors bool, diags []diag.Diagnostic) *DiskPayload {
	payload := &DiskPayload{
		Schema:       diskCacheSchemaVersion,
		Path:         file.Path,
		ContentHash:  file.Hash,
		SyntaxErrors: syntaxErrors,
		Diagnostics:  make([]diag.Diagnostic, len(diags)),
	}
	copy(payload.Diagnostics, diags)
	for i := range payload.Diagnostics {
		rebind(&payload.Diagnostics[i], 0)
	}
	return payload
}

// payloadDiagnostics returns cached diagnostics bound to file.
func payloadDiagnostics(payload *DiskPayload, file *source.File) []diag.Diagnostic {
	if payload == nil || payload.ContentHash != Digest(file.Hash) {
		return nil
	}
	out := make([]diag.Diagnostic, len(payload.Diagnostics))
	copy(out, payload.Diagnostics)
	for i := range out {
		rebind(&out[i], file.ID)
	}
	return out
}

// rebind points the diagnostic and its notes at file id.
func rebind(d *diag.Diagnostic, id source.FileID) {
	d.Primary.File = id
	if len(d.Notes) == 0 {
		return
	}
	notes := make([]diag.Note, len(d.Notes))
	copy(notes, d.Notes)
	for i := range notes {
		notes[i].Span.File = id
	}
	d.Notes = notes
}
