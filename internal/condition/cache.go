package condition

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey is (canonicalised condition string, fingerprint). The fingerprint
// folds in the mtime/size of the touchedPaths the caller passes to Evaluate,
// so a cached result is invalidated when any of those paths change. The game
// handle passes its data directories, not the individual files a
// condition's predicates consult, so a file changed inside a directory
// whose own mtime/size stay the same is not detected.
type cacheKey struct {
	condition string
	stamp     string
}

// Cache memoises condition evaluation results. It is shared across an
// entire game handle's lifetime and explicitly invalidated by Clear when
// data paths or load-order state change (spec.md §4.2, §9 "Condition cache
// & global log sink").
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[cacheKey, bool]
}

// New builds a condition cache holding up to size results.
func New(size int) (*Cache, error) {
	l, err := lru.New[cacheKey, bool](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Evaluate returns the cached result for (conditionText, node) if present
// and still fresh, otherwise evaluates via Evaluate and caches the result.
func (c *Cache) Evaluate(conditionText string, node Node, env Environment, touchedPaths []string) (bool, error) {
	stamp := stampFiles(touchedPaths)
	key := cacheKey{condition: conditionText, stamp: stamp}

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	result, err := Evaluate(node, env)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.lru.Add(key, result)
	c.mu.Unlock()
	return result, nil
}

// Clear discards every cached result (spec.md §4.2 "clear_condition_cache").
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// stampFiles builds a fingerprint string from the mtime/size of every path
// referenced, so a cache hit is only valid while the underlying files are
// unchanged.
func stampFiles(paths []string) string {
	stamp := ""
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			stamp += "|missing:" + filepath.Base(p)
			continue
		}
		stamp += "|" + p + ":" + info.ModTime().String() + ":" + strconv.FormatInt(info.Size(), 10)
	}
	return stamp
}
