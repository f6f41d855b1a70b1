package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/jsxc/pkg/compiler"
)

// cacheVersion invalidates entries written by incompatible builds.
const cacheVersion = 1

// Cache stores compile results on disk, one msgpack file per key.
type Cache struct {
	dir string
}

type cacheEntry struct {
	Version int              `msgpack:"v"`
	Result  *compiler.Result `msgpack:"r"`
}

// NewCache returns a cache rooted at dir. The directory is created on the
// first write.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// CacheKey derives the cache key from the input bytes and the options
// that affect the output.
func CacheKey(input []byte, opts compiler.Options) string {
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	enc, err := msgpack.Marshal(&opts)
	if err != nil {
		enc = []byte(fmt.Sprintf("%#v", opts))
	}
	h.Write(enc)
	fmt.Fprintf(h, "\x00v%d", cacheVersion)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key[:2], key+".msgpack")
}

// Get returns the cached result for key. Unreadable or stale entries are
// misses.
func (c *Cache) Get(key string) (*compiler.Result, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if e.Version != cacheVersion || e.Result == nil {
		return nil, false
	}
	return e.Result, true
}

// Put stores res under key. The entry is written to a temporary file and
// renamed so concurrent readers never see a partial entry.
func (c *Cache) Put(key string, res *compiler.Result) error {
	data, err := msgpack.Marshal(&cacheEntry{Version: cacheVersion, Result: res})
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	return os.RemoveAll(c.dir)
}
