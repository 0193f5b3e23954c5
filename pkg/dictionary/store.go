/*
Package dictionary reads the precompiled predictive-text dictionary.

A dictionary is a single immutable byte buffer produced by an external
compiler. It is never copied or decoded into node objects; every structure is
read in place through a Cursor.

# Layout

	+--------------+---------------------+--------------------+-------------+
	| header (2 B) | diacritics table    | bloom filter       | prefix trie |
	+--------------+---------------------+--------------------+-------------+

The header holds the prefix limit (the longest folded prefix the trie indexes)
and the bloom filter size in units of 65536 bytes. The diacritics table maps
accented glyphs to their base letter and feeds the CharMap.

Lookups first ask the Bloom filter whether a folded prefix may be present, and
only then walk the Trie. The filter never rejects a stored prefix.

# Usage

	store, err := dictionary.Load(buf)
	chars := dictionary.NewCharMap(store)
	bloom := dictionary.NewBloom(store)
	trie := dictionary.NewTrie(store)

	if bloom.ProbablyContains(prefix) {
		entries := trie.Lookup(prefix)
	}
*/
package dictionary

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

const (
	headerSize      = 2
	bloomUnitBytes  = 65536
	maxDiacriticRun = 1 << 16
)

// ErrMalformed is returned when a buffer cannot hold a dictionary header and
// diacritics table.
var ErrMalformed = errors.New("malformed dictionary")

// Store owns the raw dictionary buffer and the offsets of its regions.
type Store struct {
	buf         []byte
	prefixLimit int
	bloomSize   int
	tableStart  int
	bloomStart  int
	trieStart   int
}

// Load parses the header and the diacritics table of buf. The buffer is kept
// by reference and must not be modified afterwards.
func Load(buf []byte) (s *Store, err error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformed, len(buf), headerSize)
	}

	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	s = &Store{
		buf:         buf,
		prefixLimit: int(buf[0]),
		bloomSize:   int(buf[1]) * bloomUnitBytes,
		tableStart:  headerSize,
	}

	c := s.Cursor(s.tableStart)
	skipDiacritics(&c)
	s.bloomStart = c.Tell()
	s.trieStart = s.bloomStart + s.bloomSize

	if s.trieStart > len(buf) {
		return nil, fmt.Errorf("%w: bloom region ends at %d, buffer has %d bytes",
			ErrMalformed, s.trieStart, len(buf))
	}

	log.Debugf("dictionary loaded: prefixLimit=%d bloom=%d bytes trie@%d size=%d",
		s.prefixLimit, s.bloomSize, s.trieStart, len(buf))
	return s, nil
}

func skipDiacritics(c *Cursor) {
	for c.ReadVarUint() != 0 {
		for n := 0; c.ReadVarUint() != 0; n++ {
			if n > maxDiacriticRun {
				panic("unterminated diacritics run")
			}
		}
	}
}

// PrefixLimit is the maximum number of folded characters the trie indexes.
func (s *Store) PrefixLimit() int { return s.prefixLimit }

// BloomSize is the size of the bloom region in bytes.
func (s *Store) BloomSize() int { return s.bloomSize }

// BloomStart is the offset of the first bloom filter byte.
func (s *Store) BloomStart() int { return s.bloomStart }

// TrieStart is the offset of the trie root.
func (s *Store) TrieStart() int { return s.trieStart }

// Size returns the buffer length.
func (s *Store) Size() int { return len(s.buf) }

// Bytes exposes the underlying buffer. Callers must treat it as read-only.
func (s *Store) Bytes() []byte { return s.buf }

// Cursor returns a reader positioned at pos.
func (s *Store) Cursor(pos int) Cursor {
	return Cursor{buf: s.buf, pos: pos}
}

// diacritics walks the diacritics table, calling fn for each glyph and the
// base character it folds to.
func (s *Store) diacritics(fn func(glyph, base uint64)) {
	c := s.Cursor(s.tableStart)
	for {
		base := c.ReadVarUint()
		if base == 0 {
			return
		}
		for {
			glyph := c.ReadVarUint()
			if glyph == 0 {
				break
			}
			fn(glyph, base)
		}
	}
}
