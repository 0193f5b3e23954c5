package suggest

import (
	"fmt"
	"testing"

	"github.com/bastiangx/keyserve/internal/testdict"
	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLayout puts r, t and n side by side and every other key far apart, so
// only t has neighbours other than itself besides r and n.
func testLayout(far string) *layout.Adjacency {
	var keys []layout.KeyGeometry
	for i, c := range "rtn" {
		keys = append(keys, layout.KeyGeometry{Code: int(c), X: float64(i) * 30, Width: 30, Height: 40})
	}
	for i, c := range far {
		keys = append(keys, layout.KeyGeometry{Code: int(c), X: float64(i) * 300, Y: 500, Width: 30, Height: 40})
	}
	return layout.Build(keys, layout.DefaultProximity)
}

func buildStore(t *testing.T, words []testdict.Word, prefixLimit int) *dictionary.Store {
	t.Helper()
	opts := testdict.DefaultOptions()
	opts.PrefixLimit = prefixLimit
	store, err := dictionary.Load(testdict.Build(words, opts))
	require.NoError(t, err)
	return store
}

// saturate sets every bloom bit so all probes reach the trie.
func saturate(store *dictionary.Store) {
	buf := store.Bytes()
	for i := store.BloomStart(); i < store.TrieStart(); i++ {
		buf[i] = 0xff
	}
}

type recorder struct {
	next   Lookuper
	probes []string
}

func (r *recorder) LookupInto(dst []dictionary.Entry, prefix []byte) []dictionary.Entry {
	r.probes = append(r.probes, string(prefix))
	return r.next.LookupInto(dst, prefix)
}

func newRecordingGenerator(store *dictionary.Store, adj *layout.Adjacency) (*Generator, *recorder) {
	rec := &recorder{next: dictionary.NewTrie(store)}
	g := NewGenerator(dictionary.NewBloom(store), rec, dictionary.NewCharMap(store), adj, store.PrefixLimit())
	return g, rec
}

func entryWords(entries []dictionary.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}

func TestGenerateEditDistance1Recall(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "car", Freq: 200}, {Text: "can", Freq: 180}, {Text: "cow", Freq: 50}}, 8)
	chars := dictionary.NewCharMap(store)
	trie := dictionary.NewTrie(store)
	g := NewGenerator(dictionary.NewBloom(store), trie, chars, testLayout("caow"), store.PrefixLimit())

	got := entryWords(g.Generate([]byte("cat")))

	assert.Contains(t, got, "car")
	assert.Contains(t, got, "can")
	assert.NotContains(t, got, "cow")
}

func TestGenerateSubAlgorithms(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "cart", Freq: 10}}, 8)
	saturate(store)
	g, rec := newRecordingGenerator(store, testLayout("ac"))

	g.Generate([]byte("cat"))

	for _, want := range []string{
		"cat",                  // typed prefix
		"car", "can",           // substitution
		"ca", "ct",             // deletion
		"cart", "cant", "catn", // omission
		"ccat", "cata",
	} {
		assert.Contains(t, rec.probes, want)
	}
	assert.NotContains(t, rec.probes, "at", "first character is never deleted")
	assert.NotContains(t, rec.probes, "acat", "nothing is inserted before the first character")

	seen := map[string]int{}
	for _, p := range rec.probes {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "prefix %q probed %d times", p, n)
	}
	assert.Equal(t, len(seen), g.Probed())
}

func TestGenerateEditDistance2(t *testing.T) {
	store := buildStore(t, nil, 8)
	saturate(store)
	g, rec := newRecordingGenerator(store, testLayout("ac"))

	g.Generate([]byte("cart"))
	assert.Contains(t, rec.probes, "catn", "r->t and t->n together")
	assert.Contains(t, rec.probes, "catr")

	rec.probes = nil
	g.Generate([]byte("crt"))
	assert.NotContains(t, rec.probes, "ctn", "short prefixes skip double substitution")
	assert.Contains(t, rec.probes, "ctt")
}

func TestGenerateRespectsPrefixLimit(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "carton", Freq: 10}}, 4)
	saturate(store)
	g, rec := newRecordingGenerator(store, testLayout("acos"))

	got := g.Generate([]byte("cartons"))

	assert.Equal(t, []string{"carton"}, entryWords(got)[:1])
	for _, p := range rec.probes {
		assert.LessOrEqual(t, len(p), 4, "probe %q exceeds the prefix limit", p)
	}
	assert.Contains(t, rec.probes, "cnar", "omission at the limit drops the last character")
}

func TestGenerateWithoutLayout(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "cat", Freq: 10}, {Text: "ct", Freq: 5}}, 8)
	g := NewGenerator(dictionary.NewBloom(store), dictionary.NewTrie(store), dictionary.NewCharMap(store), nil, store.PrefixLimit())

	got := entryWords(g.Generate([]byte("cat")))
	assert.ElementsMatch(t, []string{"cat", "ct"}, got)

	assert.Empty(t, g.Generate(nil))
}

func TestGenerateDeduplicatesWords(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "car", Freq: 200}, {Text: "cart", Freq: 20}}, 8)
	g := NewGenerator(dictionary.NewBloom(store), dictionary.NewTrie(store), dictionary.NewCharMap(store), testLayout("ac"), store.PrefixLimit())

	got := entryWords(g.Generate([]byte("cart")))
	counts := map[string]int{}
	for _, w := range got {
		counts[w]++
	}
	assert.Equal(t, 1, counts["car"])
	assert.Equal(t, 1, counts["cart"])
}

func TestRankOrder(t *testing.T) {
	r := NewRanker(nil)

	entries := []dictionary.Entry{
		{Word: "bad", Freq: 9},
		{Word: "cat", Freq: 1},
		{Word: "car", Freq: 9},
	}
	got := r.Rank([]byte("cat"), entries)

	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].Distance, got[1].Distance, got[2].Distance})
	assert.Equal(t, []string{"cat", "car", "bad"}, []string{got[0].Word, got[1].Word, got[2].Word})
}

func TestSortDistanceThenFrequency(t *testing.T) {
	cands := []Candidate{
		{Word: "two", Distance: 2, Freq: 9},
		{Word: "zero", Distance: 0, Freq: 1},
		{Word: "one", Distance: 1, Freq: 9},
		{Word: "one-rare", Distance: 1, Freq: 3},
		{Word: "one-common", Distance: 1, Freq: 200},
	}
	Sort(cands)

	var order []string
	for _, c := range cands {
		order = append(order, c.Word)
	}
	assert.Equal(t, []string{"zero", "one-common", "one", "one-rare", "two"}, order)
}

func TestLevenshteinDistance(t *testing.T) {
	r := NewRanker(nil)

	testCases := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "back", 2},
		{"book", "books", 1},
		{"helo", "hello", 1},
		{"cafe", "café", 1},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Distance(tc.a, tc.b))
		})
	}
}

func TestDistanceFoldsCharacters(t *testing.T) {
	opts := testdict.DefaultOptions()
	opts.Diacritics = map[rune][]rune{'e': {'é'}}
	store, err := dictionary.Load(testdict.Build(nil, opts))
	require.NoError(t, err)
	r := NewRanker(dictionary.NewCharMap(store))

	assert.Equal(t, 0, r.Distance("cafe", "café"))
	assert.Equal(t, 0, r.Distance("CAFE", "café"))
	assert.Equal(t, 1, r.Distance("caf", "café"))
}

func TestDistanceMatrixReuse(t *testing.T) {
	r := NewRanker(nil)

	long := r.Distance("internationalization", "internationalisation")
	grown := cap(r.matrix)
	short := r.Distance("cat", "cut")
	again := r.Distance("internationalization", "internationalisation")

	assert.Equal(t, 1, long)
	assert.Equal(t, 1, short)
	assert.Equal(t, long, again)
	assert.Equal(t, grown, cap(r.matrix), "matrix never shrinks")
}

func TestLookupCache(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "car", Freq: 200}, {Text: "can", Freq: 180}, {Text: "dog", Freq: 10}}, 8)
	rec := &recorder{next: dictionary.NewTrie(store)}
	cache := NewLookupCache(rec, 2)

	buf := []byte("ca")
	first := cache.LookupInto(nil, buf)
	buf[1] = 'x' // callers reuse buffers
	second := cache.LookupInto(nil, []byte("ca"))

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ca"}, rec.probes)
	assert.Equal(t, 1, cache.Stats()["cacheHits"])
	assert.Equal(t, 1, cache.Stats()["cacheMisses"])

	cache.LookupInto(nil, []byte("car"))
	assert.Equal(t, []string{"ca", "car"}, cache.Cached([]byte("ca")))

	// touch "ca" so "car" becomes the oldest entry
	cache.LookupInto(nil, []byte("ca"))
	cache.LookupInto(nil, []byte("do"))
	assert.Equal(t, 2, cache.Stats()["cacheEntries"])
	assert.Equal(t, []string{"ca"}, cache.Cached([]byte("ca")), "least recently used entry evicted")
	assert.ElementsMatch(t, []string{"ca", "do"}, cache.Cached(nil))
	assert.ElementsMatch(t, []string{"ca", "do"}, cache.Cached([]byte{}))

	cache.Reset()
	assert.Equal(t, 0, cache.Stats()["cacheEntries"])
	assert.Empty(t, cache.Cached(nil))
}

func TestLookupCacheNegativeAndDisabled(t *testing.T) {
	store := buildStore(t, []testdict.Word{{Text: "car", Freq: 200}}, 8)
	rec := &recorder{next: dictionary.NewTrie(store)}

	cache := NewLookupCache(rec, 8)
	assert.Empty(t, cache.LookupInto(nil, []byte("zz")))
	assert.Empty(t, cache.LookupInto(nil, []byte("zz")))
	assert.Len(t, rec.probes, 1, "misses are cached too")

	rec.probes = nil
	off := NewLookupCache(rec, 0)
	off.LookupInto(nil, []byte("car"))
	off.LookupInto(nil, []byte("car"))
	assert.Len(t, rec.probes, 2)
}

func TestCompleterComplete(t *testing.T) {
	store := buildStore(t, []testdict.Word{
		{Text: "hello", Freq: 250},
		{Text: "help", Freq: 230},
		{Text: "held", Freq: 100},
		{Text: "hell", Freq: 80},
		{Text: "world", Freq: 200},
	}, 8)
	adj := layout.FromParams(layout.QWERTY(30, 40), layout.DefaultProximity)
	c := NewCompleter(store, adj, DefaultCacheSize)

	got := c.Complete([]byte("helo"), 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "hello", got[0].Word)
	assert.Equal(t, 1, got[0].Distance)

	var words []string
	for _, cand := range got {
		words = append(words, cand.Word)
	}
	assert.NotContains(t, words, "world")
	assert.Subset(t, words, []string{"hello", "help", "held", "hell"})

	limited := c.Complete([]byte("helo"), 2)
	assert.Len(t, limited, 2)

	upper := c.Complete([]byte("HELLO"), 1)
	require.Len(t, upper, 1)
	assert.Equal(t, "hello", upper[0].Word)
	assert.Equal(t, 0, upper[0].Distance)

	stats := c.Stats()
	assert.Equal(t, 3, stats["requests"])
	assert.Greater(t, stats["cacheHits"], 0)
	assert.Equal(t, 8, c.PrefixLimit())
	assert.Equal(t, byte('h'), c.Fold('H'))
}

func TestCompleterAccentedWords(t *testing.T) {
	opts := testdict.DefaultOptions()
	opts.Diacritics = map[rune][]rune{'e': {'é'}}
	store, err := dictionary.Load(testdict.Build([]testdict.Word{{Text: "café", Freq: 60}}, opts))
	require.NoError(t, err)
	adj := layout.FromParams(layout.QWERTY(30, 40), layout.DefaultProximity)
	c := NewCompleter(store, adj, DefaultCacheSize)

	// a word is its folded trie path plus the stored suffix, so the node
	// reached through "cafe" spells the word without its accent
	assert.Equal(t, []string{"café", "cafe"}, candidateWords(c.Complete([]byte("caf"), 0)))
	assert.Equal(t, []string{"cafe", "café"}, candidateWords(c.Complete([]byte("cafe"), 0)))
}

func candidateWords(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}
