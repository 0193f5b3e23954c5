package suggest

import (
	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/charmbracelet/log"
)

// Completer predicts words for one loaded dictionary.
type Completer struct {
	store     *dictionary.Store
	chars     *dictionary.CharMap
	bloom     *dictionary.Bloom
	trie      *dictionary.Trie
	cache     *LookupCache
	generator *Generator
	ranker    *Ranker
	prefix    []byte
	requests  int
}

// NewCompleter wires the dictionary readers, lookup cache, generator and
// ranker for store. adj may be nil until a layout arrives.
func NewCompleter(store *dictionary.Store, adj *layout.Adjacency, cacheSize int) *Completer {
	chars := dictionary.NewCharMap(store)
	bloom := dictionary.NewBloom(store)
	trie := dictionary.NewTrie(store)
	cache := NewLookupCache(trie, cacheSize)

	return &Completer{
		store:     store,
		chars:     chars,
		bloom:     bloom,
		trie:      trie,
		cache:     cache,
		generator: NewGenerator(bloom, cache, chars, adj, store.PrefixLimit()),
		ranker:    NewRanker(chars),
		prefix:    make([]byte, 0, store.PrefixLimit()),
	}
}

// SetAdjacency replaces the key adjacency model.
func (c *Completer) SetAdjacency(adj *layout.Adjacency) {
	c.generator.SetAdjacency(adj)
}

// Complete folds and truncates word to the prefix limit, generates candidate
// words and ranks them against the whole word.
func (c *Completer) Complete(word []byte, limit int) []Candidate {
	c.requests++
	c.prefix = c.chars.FoldInto(c.prefix[:0], word)
	if len(c.prefix) > c.store.PrefixLimit() {
		c.prefix = c.prefix[:c.store.PrefixLimit()]
	}

	entries := c.generator.Generate(c.prefix)
	ranked := c.ranker.Rank(word, entries)
	log.Debug("prediction", "word", string(word), "probed", c.generator.Probed(), "found", len(entries))

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Fold implements ICompleter.
func (c *Completer) Fold(b byte) byte { return c.chars.Fold(b) }

// PrefixLimit implements ICompleter.
func (c *Completer) PrefixLimit() int { return c.store.PrefixLimit() }

// Cached implements ICompleter. prefix is folded first.
func (c *Completer) Cached(prefix string) []string {
	return c.cache.Cached(c.chars.FoldInto(nil, []byte(prefix)))
}

// Chars returns the dictionary's character map.
func (c *Completer) Chars() *dictionary.CharMap { return c.chars }

// Stats returns dictionary and cache counters.
func (c *Completer) Stats() map[string]int {
	stats := map[string]int{
		"dictBytes":   c.store.Size(),
		"bloomBytes":  c.store.BloomSize(),
		"prefixLimit": c.store.PrefixLimit(),
		"requests":    c.requests,
	}
	for k, v := range c.cache.Stats() {
		stats[k] = v
	}
	return stats
}
