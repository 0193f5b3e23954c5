package suggest

import (
	"math"

	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultCacheSize is the number of prefix lookups kept by a LookupCache.
const DefaultCacheSize = 2048

type cacheItem struct {
	entries    []dictionary.Entry
	accessTime int64
}

// LookupCache memoises trie lookups keyed by folded prefix. Consecutive
// keystrokes mutate overlapping prefixes, so most probes after the first
// keystroke hit the cache. Negative results (bloom false positives) are
// cached too. The dictionary is immutable, so entries never go stale.
type LookupCache struct {
	source      Lookuper
	hotTrie     *patricia.Trie
	size        int
	maxEntries  int
	accessCount int64
	hits        int
	misses      int
}

// NewLookupCache wraps source. maxEntries <= 0 disables caching.
func NewLookupCache(source Lookuper, maxEntries int) *LookupCache {
	return &LookupCache{
		source:     source,
		hotTrie:    patricia.NewTrie(),
		maxEntries: maxEntries,
	}
}

// LookupInto implements Lookuper.
func (lc *LookupCache) LookupInto(dst []dictionary.Entry, prefix []byte) []dictionary.Entry {
	if lc.maxEntries <= 0 {
		return lc.source.LookupInto(dst, prefix)
	}

	if item := lc.hotTrie.Get(patricia.Prefix(prefix)); item != nil {
		ci := item.(*cacheItem)
		ci.accessTime = lc.nextAccessTime()
		lc.hits++
		return append(dst, ci.entries...)
	}

	lc.misses++
	start := len(dst)
	dst = lc.source.LookupInto(dst, prefix)

	if lc.size >= lc.maxEntries {
		lc.evictLRU()
	}
	entries := make([]dictionary.Entry, len(dst)-start)
	copy(entries, dst[start:])
	// the key is copied: callers reuse their prefix buffers
	key := patricia.Prefix(string(prefix))
	if lc.hotTrie.Insert(key, &cacheItem{entries: entries, accessTime: lc.nextAccessTime()}) {
		lc.size++
	}
	return dst
}

// Cached returns every cached prefix that starts with prefix, in key order.
// An empty prefix lists the whole cache.
func (lc *LookupCache) Cached(prefix []byte) []string {
	var keys []string
	collect := func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	}

	var err error
	if len(prefix) == 0 {
		// patricia rejects nil prefixes
		err = lc.hotTrie.Visit(collect)
	} else {
		err = lc.hotTrie.VisitSubtree(patricia.Prefix(prefix), collect)
	}
	if err != nil {
		log.Errorf("Error visiting lookup cache: %v", err)
	}
	return keys
}

// Reset drops every cached lookup.
func (lc *LookupCache) Reset() {
	lc.hotTrie = patricia.NewTrie()
	lc.size = 0
	lc.accessCount = 0
}

// Stats reports cache occupancy and hit counters.
func (lc *LookupCache) Stats() map[string]int {
	return map[string]int{
		"cacheEntries": lc.size,
		"cacheMax":     lc.maxEntries,
		"cacheHits":    lc.hits,
		"cacheMisses":  lc.misses,
	}
}

func (lc *LookupCache) nextAccessTime() int64 {
	lc.accessCount++
	return lc.accessCount
}

func (lc *LookupCache) evictLRU() {
	var oldestKey patricia.Prefix
	var oldestTime int64 = math.MaxInt64

	err := lc.hotTrie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		if t := item.(*cacheItem).accessTime; t < oldestTime {
			oldestTime = t
			oldestKey = append(oldestKey[:0], p...)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error scanning lookup cache: %v", err)
		return
	}

	if oldestKey != nil && lc.hotTrie.Delete(oldestKey) {
		lc.size--
		log.Debugf("Evicted prefix '%s' from lookup cache", oldestKey)
	}
}
