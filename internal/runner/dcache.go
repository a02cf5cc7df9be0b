package runner

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"tsconform/internal/fixture"
	"tsconform/internal/suite"
)

// probeCacheSchema is bumped whenever ProbePayload changes shape; stale
// entries are treated as misses.
const probeCacheSchema uint16 = 1

// Digest keys cache entries by fixture content and tool identity.
type Digest [sha256.Size]byte

// ProbePayload memoizes the tool-dependent half of an admission probe.
// The parser-test gate is deliberately not cached: it reads golden
// sidecars, which change independently of the fixture.
type ProbePayload struct {
	Schema   uint16
	ParseOK  bool
	Variants []fixture.Variant
}

// DiskCache stores probe payloads under the user cache directory. A nil
// *DiskCache is valid and disables caching. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache at the standard location.
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
	return filepath.Join(c.dir, "probes", hex.EncodeToString(key[:])+".mp")
}

// Put serializes a payload and installs it atomically.
func (c *DiskCache) Put(key Digest, payload *ProbePayload) error {
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
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or a schema mismatch is a miss,
// not an error.
func (c *DiskCache) Get(key Digest, out *ProbePayload) (bool, error) {
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
	if out.Schema != probeCacheSchema {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after tool upgrades.
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

// ProbeKey folds the probe inputs into a digest: schema, tool identity,
// fixture content. Fields are length-prefixed so adjacent values cannot
// alias.
func ProbeKey(tool suite.ToolSpec, content []byte) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], probeCacheSchema)
	h.Write(schema[:])
	writeField(h, []byte(tool.Cmd))
	for _, arg := range tool.Args {
		writeField(h, []byte(arg))
	}
	writeField(h, content)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func writeField(h hash.Hash, b []byte) {
	n, err := safecast.Conv[uint32](len(b))
	if err != nil {
		panic(fmt.Errorf("probe key field overflow: %w", err))
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], n)
	h.Write(prefix[:])
	h.Write(b)
}
