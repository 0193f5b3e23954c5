package suggest

import (
	"github.com/bastiangx/keyserve/internal/utils"
	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
)

// Generator produces dictionary words for the prefixes a user may have meant
// when typing a given prefix: the prefix itself, adjacent-key substitutions
// at one or two positions, one omitted keystroke and one extra keystroke.
//
// Every mutation is checked against the bloom filter before the trie is
// walked, and each distinct prefix is looked up at most once per call.
// A Generator is not safe for concurrent use.
type Generator struct {
	bloom  *dictionary.Bloom
	lookup Lookuper
	chars  *dictionary.CharMap
	adj    *layout.Adjacency
	limit  int

	probed  *utils.WordFilter
	words   *utils.WordFilter
	out     []dictionary.Entry
	scratch []dictionary.Entry
	word    []byte
	mut     []byte
}

// NewGenerator creates a generator over one dictionary. adj may be nil until
// a layout is known; only the typed prefix and deletions are tried then.
func NewGenerator(bloom *dictionary.Bloom, lookup Lookuper, chars *dictionary.CharMap, adj *layout.Adjacency, prefixLimit int) *Generator {
	return &Generator{
		bloom:  bloom,
		lookup: lookup,
		chars:  chars,
		adj:    adj,
		limit:  prefixLimit,
		probed: utils.NewWordFilter(),
		words:  utils.NewWordFilter(),
		word:   make([]byte, 0, prefixLimit+1),
		mut:    make([]byte, 0, prefixLimit+1),
	}
}

// SetAdjacency swaps the key adjacency model after a layout change.
func (g *Generator) SetAdjacency(adj *layout.Adjacency) {
	g.adj = adj
}

// Generate returns the words reachable from prefix, without duplicates.
// prefix must already be folded. The returned slice is reused by the next
// call.
func (g *Generator) Generate(prefix []byte) []dictionary.Entry {
	g.probed.Reset()
	g.words.Reset()
	g.out = g.out[:0]

	n := min(len(prefix), g.limit)
	if n == 0 {
		return g.out
	}
	g.word = append(g.word[:0], prefix[:n]...)

	g.probe(g.word)
	g.editDistance1()
	if n >= 4 {
		g.editDistance2()
	}
	g.omission1()
	g.deletion1()
	return g.out
}

// Probed returns how many distinct prefixes the last call considered.
func (g *Generator) Probed() int { return g.probed.Len() }

func (g *Generator) probe(b []byte) {
	if g.probed.SeenBytes(b) {
		return
	}
	g.probed.MarkBytes(b)
	if !g.bloom.ProbablyContains(b) {
		return
	}
	g.scratch = g.lookup.LookupInto(g.scratch[:0], b)
	for _, e := range g.scratch {
		if g.words.ShouldInclude(e.Word) {
			g.out = append(g.out, e)
		}
	}
}

// near returns the keys adjacent to c.
func (g *Generator) near(c byte) []byte {
	if g.adj == nil {
		return nil
	}
	return g.adj.Near(c)
}

func (g *Generator) editDistance1() {
	word := g.word
	for i, orig := range word {
		for _, k := range g.near(orig) {
			c := g.chars.Fold(k)
			if c == 0 || c == orig {
				continue
			}
			word[i] = c
			g.probe(word)
		}
		word[i] = orig
	}
}

func (g *Generator) editDistance2() {
	word := g.word
	for i := 0; i < len(word); i++ {
		oi := word[i]
		for j := i + 1; j < len(word); j++ {
			oj := word[j]
			for _, ki := range g.near(oi) {
				ci := g.chars.Fold(ki)
				if ci == 0 || ci == oi {
					continue
				}
				word[i] = ci
				for _, kj := range g.near(oj) {
					cj := g.chars.Fold(kj)
					if cj == 0 || cj == oj {
						continue
					}
					word[j] = cj
					g.probe(word)
				}
				word[j] = oj
			}
			word[i] = oi
		}
	}
}

// omission1 inserts one key after the first character. Buffers that grow
// past the prefix limit are cut back to it.
func (g *Generator) omission1() {
	if g.adj == nil {
		return
	}
	n := len(g.word)
	last := min(n, g.limit-1)
	for p := 1; p <= last; p++ {
		g.mut = append(g.mut[:0], g.word[:p]...)
		g.mut = append(g.mut, 0)
		g.mut = append(g.mut, g.word[p:]...)
		if len(g.mut) > g.limit {
			g.mut = g.mut[:g.limit]
		}
		for _, k := range g.adj.Keys() {
			c := g.chars.Fold(k)
			if c == 0 {
				continue
			}
			g.mut[p] = c
			g.probe(g.mut)
		}
	}
}

// deletion1 drops one character after the first.
func (g *Generator) deletion1() {
	n := len(g.word)
	for p := 1; p < n; p++ {
		g.mut = append(g.mut[:0], g.word[:p]...)
		g.mut = append(g.mut, g.word[p+1:]...)
		g.probe(g.mut)
	}
}
