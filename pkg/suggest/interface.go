// Package suggest is the core of the engine: it mutates a typed prefix into
// plausible intended prefixes, resolves them against the dictionary and ranks
// the resulting words by edit distance to what was typed.
package suggest

import "github.com/bastiangx/keyserve/pkg/dictionary"

// Lookuper resolves an exact folded prefix to its dictionary words.
type Lookuper interface {
	// LookupInto appends the words stored under prefix to dst.
	LookupInto(dst []dictionary.Entry, prefix []byte) []dictionary.Entry
}

// ICompleter defines the interface for prediction engines.
type ICompleter interface {
	// Complete returns ranked candidates for a folded typed word, at most
	// limit of them when limit > 0.
	Complete(word []byte, limit int) []Candidate

	// Fold canonicalises one input byte, returning 0 when it is not accepted.
	Fold(b byte) byte

	// PrefixLimit is the longest prefix the dictionary indexes.
	PrefixLimit() int

	// Stats returns counters about the dictionary and lookup cache.
	Stats() map[string]int

	// Cached lists the memoised lookup prefixes starting with prefix.
	Cached(prefix string) []string
}

// Candidate is a ranked word. Distance is the edit distance between the
// whole typed word and Word.
type Candidate struct {
	Word     string
	Freq     uint8
	Distance int
}
