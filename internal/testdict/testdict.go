// Package testdict encodes small word lists into the compiled dictionary
// format so readers can be exercised in tests. It is not a production
// compiler: layout is naive and everything is kept in memory.
package testdict

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode"

	"github.com/bastiangx/keyserve/pkg/dictionary"
)

// Word is a dictionary word with its frequency (1-255).
type Word struct {
	Text string
	Freq uint8
}

// Options controls the encoded dictionary.
type Options struct {
	PrefixLimit int
	BloomUnits  int
	// MaxSuffixes caps the completions kept per trie node, 0 keeps all.
	MaxSuffixes int
	// Diacritics maps a base letter to the glyphs that fold to it.
	Diacritics map[rune][]rune
}

// DefaultOptions is a one-unit bloom filter with an 8 character prefix limit.
func DefaultOptions() Options {
	return Options{PrefixLimit: 8, BloomUnits: 1, MaxSuffixes: 0}
}

type node struct {
	children map[byte]*node
	words    []completion
	offset   int
}

type completion struct {
	suffix []rune
	freq   uint8
	word   string
}

// Build encodes words. Words containing characters outside the alphabet and
// diacritics table are skipped.
func Build(words []Word, opts Options) []byte {
	if opts.PrefixLimit <= 0 {
		opts.PrefixLimit = 8
	}
	if opts.BloomUnits <= 0 {
		opts.BloomUnits = 1
	}

	fold := foldTable(opts.Diacritics)
	root := &node{children: map[byte]*node{}}
	bloom := make([]byte, opts.BloomUnits*65536)
	mask := uint32(len(bloom) - 1)

	for _, w := range words {
		runes := []rune(w.Text)
		folded, ok := foldWord(runes, fold)
		if !ok || len(folded) == 0 || w.Freq == 0 {
			continue
		}
		n := root
		depth := min(len(folded), opts.PrefixLimit)
		for k := 1; k <= depth; k++ {
			c := folded[k-1]
			next, exists := n.children[c]
			if !exists {
				next = &node{children: map[byte]*node{}}
				n.children[c] = next
			}
			n = next
			n.words = append(n.words, completion{suffix: runes[k:], freq: w.Freq, word: w.Text})
			setBits(bloom, mask, folded[:k])
		}
	}

	var out []byte
	out = append(out, byte(opts.PrefixLimit), byte(opts.BloomUnits))
	out = appendDiacritics(out, opts.Diacritics)
	out = append(out, bloom...)
	return append(out, encodeTrie(root, opts.MaxSuffixes)...)
}

// Fold returns the folded bytes of s the way Build indexes it.
func Fold(s string, diacritics map[rune][]rune) []byte {
	b, _ := foldWord([]rune(s), foldTable(diacritics))
	return b
}

func foldTable(diacritics map[rune][]rune) map[rune]byte {
	t := map[rune]byte{}
	for _, c := range dictionary.Alphabet {
		t[c] = byte(c)
		t[unicode.ToUpper(c)] = byte(c)
	}
	for base, glyphs := range diacritics {
		for _, g := range glyphs {
			t[g] = byte(base)
		}
	}
	return t
}

func foldWord(runes []rune, fold map[rune]byte) ([]byte, bool) {
	out := make([]byte, 0, len(runes))
	for _, r := range runes {
		b, ok := fold[r]
		if !ok {
			return nil, false
		}
		out = append(out, b)
	}
	return out, true
}

func setBits(bloom []byte, mask uint32, key []byte) {
	h1, h2 := dictionary.Hashes(key)
	for _, h := range []uint32{h1, h2} {
		off, bit := dictionary.BitPosition(h, mask)
		bloom[off] |= bit
	}
}

func appendDiacritics(out []byte, diacritics map[rune][]rune) []byte {
	bases := make([]rune, 0, len(diacritics))
	for base := range diacritics {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })
	for _, base := range bases {
		out = binary.AppendUvarint(out, uint64(base))
		for _, g := range diacritics[base] {
			out = binary.AppendUvarint(out, uint64(g))
		}
		out = append(out, 0)
	}
	return append(out, 0)
}

// encodeTrie lays nodes out breadth first so every sibling run has ascending
// offsets, iterating until varint widths stop changing.
func encodeTrie(root *node, maxSuffixes int) []byte {
	var order []*node
	queue := []*node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, c := range sortedKeys(n.children) {
			queue = append(queue, n.children[c])
		}
		sort.SliceStable(n.words, func(i, j int) bool {
			if n.words[i].freq != n.words[j].freq {
				return n.words[i].freq > n.words[j].freq
			}
			return strings.Compare(n.words[i].word, n.words[j].word) < 0
		})
		if maxSuffixes > 0 && len(n.words) > maxSuffixes {
			n.words = n.words[:maxSuffixes]
		}
	}

	var out []byte
	for range 64 {
		out = out[:0]
		changed := false
		for _, n := range order {
			if n.offset != len(out) {
				n.offset = len(out)
				changed = true
			}
			out = encodeNode(out, n)
		}
		if !changed {
			return out
		}
	}
	panic("trie layout did not converge")
}

func encodeNode(out []byte, n *node) []byte {
	last := 0
	for _, c := range sortedKeys(n.children) {
		off := n.children[c].offset
		out = binary.AppendUvarint(out, uint64(c))
		out = binary.AppendUvarint(out, uint64(off-last))
		last = off
	}
	if len(n.words) == 0 {
		return append(out, dictionary.EndOfPrefixesNoSuffixes)
	}
	out = append(out, dictionary.EndOfPrefixesSuffixesFollow)
	for _, w := range n.words {
		out = append(out, w.freq)
		for _, r := range w.suffix {
			out = binary.AppendUvarint(out, uint64(r))
		}
		out = append(out, 0)
	}
	return append(out, 0)
}

func sortedKeys(m map[byte]*node) []byte {
	keys := make([]byte, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
