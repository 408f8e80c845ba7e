package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"moveck/internal/diag"
	"moveck/internal/movepaths"
	"moveck/internal/version"
)

// bump when DiskPayload changes shape
const diskCacheSchemaVersion uint16 = 2

// Digest is a SHA-256 cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// ContentKey hashes a body file together with the extra parameters it is
// analyzed under. Parameter order does not matter.
func ContentKey(content []byte, params map[string]uint64) Digest {
	h := sha256.New()
	h.Write(content)
	var n [8]byte
	for _, name := range slices.Sorted(maps.Keys(params)) {
		h.Write([]byte{0})
		h.Write([]byte(name))
		binary.LittleEndian.PutUint64(n[:], params[name])
		h.Write(n[:])
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

// resultKey keys a cached result: the content key plus the diagnostic
// limit, since the limit decides which diagnostics were kept.
func resultKey(content []byte, opts Options) Digest {
	ck := ContentKey(content, opts.Params)
	var limit [8]byte
	binary.LittleEndian.PutUint64(limit[:], uint64(max(opts.MaxDiagnostics, 0)))
	return sha256.Sum256(append(ck[:], limit[:]...))
}

// DiskPayload is the cached outcome of analyzing one body file. Only
// snapshots are kept; a cache hit never carries live MoveData.
type DiskPayload struct {
	Schema uint16
	Tool   string // version.Version of the writer

	Path        string
	Snapshots   []movepaths.Snapshot
	Diagnostics []diag.Diagnostic
	// Dropped counts diagnostics refused by the per-file limit.
	Dropped int
}

// CacheStats counts lookups since the cache was opened.
type CacheStats struct {
	Hits, Misses, Stale, Writes int64
}

func (s CacheStats) String() string {
	return fmt.Sprintf("cache: %d hit(s), %d miss(es), %d stale, %d written", s.Hits, s.Misses, s.Stale, s.Writes)
}

// DiskCache stores per-file results as msgpack under
// <dir>/bodies/<first two hex digits>/<digest>.mp. It is safe for
// concurrent use by the analysis workers.
type DiskCache struct {
	mu  sync.RWMutex
	dir string

	hits, misses, stale, writes atomic.Int64
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app, falling back
// to ~/.cache/app.
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

// OpenDiskCacheAt opens a cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Stats returns the lookup counters.
func (c *DiskCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Stale: c.stale.Load(), Writes: c.writes.Load()}
}

func (c *DiskCache) pathFor(key Digest) string {
	name := key.String()
	return filepath.Join(c.dir, "bodies", name[:2], name+".mp")
}

// Put stamps payload with the schema and tool version and writes it.
// Readers never observe a partial file.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	stamped := *payload
	stamped.Schema = diskCacheSchemaVersion
	stamped.Tool = version.Version
	data, err := msgpack.Marshal(&stamped)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := writeFileAtomic(c.pathFor(key), data); err != nil {
		return err
	}
	c.writes.Add(1)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	if err := errors.Join(werr, f.Close()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get loads the payload for key into out. Entries from another schema or
// tool version are stale and count as misses.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(key))
	c.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		c.misses.Add(1)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var payload DiskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		c.misses.Add(1)
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Tool != version.Version {
		c.stale.Add(1)
		return false, nil
	}
	c.hits.Add(1)
	*out = payload
	return true, nil
}

// DropAll empties the cache. The old tree is moved aside first so that a
// concurrent reader sees either everything or nothing.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := fmt.Sprintf("%s.old-%d", c.dir, time.Now().UnixNano())
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
