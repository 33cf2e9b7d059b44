package pluginfile

import (
	"context"
	"errors"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/loot-core/libloot/internal/cache"
	"github.com/loot-core/libloot/internal/filename"
	"github.com/loot-core/libloot/internal/gameinfo"
)

// cacheKey fingerprints a plugin file's on-disk state so a cached Plugin is
// invalidated the moment the underlying file changes, without needing a
// filesystem watcher.
type cacheKey struct {
	path  string
	mode  LoadMode
	mtime int64
	size  int64
}

// HeaderCache memoises parsed Plugins, keyed by path, load mode and
// modification fingerprint. Re-sorting the same load order repeatedly (the
// common case for a mod manager watching for changes) then costs one stat
// call per plugin instead of a full re-parse within a single run.
//
// When backed by a persistent cache (grounded on the teacher's SQLite-backed
// internal/cache/cache.go), a miss in the in-process LRU falls through to
// the on-disk store before re-parsing, so a plugin already parsed by a prior
// process invocation is not re-read from scratch either.
type HeaderCache struct {
	lru        *lru.Cache[cacheKey, *Plugin]
	persistent *cache.Cache
}

// NewHeaderCache builds a cache holding up to size parsed plugins, with no
// persistent backing.
func NewHeaderCache(size int) (*HeaderCache, error) {
	return NewHeaderCacheWithPersistence(size, nil)
}

// NewHeaderCacheWithPersistence builds a cache backed by persistent, whose
// GetPlugin/SetPlugin are consulted on every in-process LRU miss. persistent
// may be nil to disable the persistent tier entirely.
func NewHeaderCacheWithPersistence(size int, persistent *cache.Cache) (*HeaderCache, error) {
	c, err := lru.New[cacheKey, *Plugin](size)
	if err != nil {
		return nil, err
	}
	return &HeaderCache{lru: c, persistent: persistent}, nil
}

// Get reads the plugin at path, using the in-process cache, then the
// persistent cache, when the file's mtime and size match a prior parse, and
// otherwise parsing fresh and populating both tiers.
func (c *HeaderCache) Get(path string, rules gameinfo.Rules, mode LoadMode, masters []filename.Filename) (*Plugin, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &notFoundError{path: path, err: err}
	}
	mtime, size := info.ModTime().UnixNano(), info.Size()
	key := cacheKey{path: path, mode: mode, mtime: mtime, size: size}
	if p, ok := c.lru.Get(key); ok {
		return p, nil
	}

	if c.persistent != nil {
		var p Plugin
		err := c.persistent.GetPlugin(context.Background(), path, int(mode), mtime, size, &p)
		if err == nil {
			c.lru.Add(key, &p)
			return &p, nil
		}
		if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrStale) {
			return nil, err
		}
	}

	p, err := Read(path, rules, mode, masters)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, p)
	if c.persistent != nil {
		_ = c.persistent.SetPlugin(context.Background(), path, int(mode), mtime, size, p)
	}
	return p, nil
}

// Purge discards every cached entry, e.g. when the game's data path changes.
func (c *HeaderCache) Purge() {
	c.lru.Purge()
}
