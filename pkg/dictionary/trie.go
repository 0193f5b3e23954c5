package dictionary

// Sentinels closing a node's sibling list.
const (
	EndOfPrefixesSuffixesFollow byte = '#'
	EndOfPrefixesNoSuffixes     byte = '&'
)

// Entry is a dictionary word with its compiled frequency (1-255).
type Entry struct {
	Word string
	Freq uint8
}

// Trie resolves folded prefixes against the trie region.
//
// A node is a run of (symbol, offsetDelta) varint pairs closed by one of the
// two sentinels. Child offsets are relative to the trie start and delta
// encoded within each sibling run. When the sentinel is
// EndOfPrefixesSuffixesFollow, (freq, string) pairs follow until a zero freq.
type Trie struct {
	store   *Store
	base    int
	scratch []byte
}

// NewTrie returns a Trie reading the trie region of s.
func NewTrie(s *Store) *Trie {
	return &Trie{
		store:   s,
		base:    s.trieStart,
		scratch: make([]byte, 0, 64),
	}
}

// Lookup returns the words stored under the exact folded prefix.
func (t *Trie) Lookup(prefix []byte) []Entry {
	return t.LookupInto(nil, prefix)
}

// LookupInto appends the words stored under prefix to dst. A prefix that is
// empty or not in the trie leaves dst unchanged.
func (t *Trie) LookupInto(dst []Entry, prefix []byte) []Entry {
	if len(prefix) == 0 {
		return dst
	}

	c := t.store.Cursor(t.base)
	for _, want := range prefix {
		off, ok := child(&c, want)
		if !ok {
			return dst
		}
		c.Goto(t.base + off)
	}

	if !skipToSuffixes(&c) {
		return dst
	}

	for {
		freq := c.ReadU8()
		if freq == 0 {
			return dst
		}
		t.scratch = append(t.scratch[:0], prefix...)
		t.scratch = c.AppendString(t.scratch)
		dst = append(dst, Entry{Word: string(t.scratch), Freq: freq})
	}
}

// child scans the sibling run at c for symbol want and returns its offset.
func child(c *Cursor, want byte) (int, bool) {
	last := 0
	for {
		if b := c.PeekU8(); b == EndOfPrefixesSuffixesFollow || b == EndOfPrefixesNoSuffixes {
			return 0, false
		}
		sym := c.ReadVarUint()
		off := int(c.ReadVarUint()) + last
		last = off
		if sym == uint64(want) {
			return off, true
		}
	}
}

// skipToSuffixes moves c past the sibling run of the current node and reports
// whether a suffix list follows.
func skipToSuffixes(c *Cursor) bool {
	for {
		switch c.PeekU8() {
		case EndOfPrefixesSuffixesFollow:
			c.ReadU8()
			return true
		case EndOfPrefixesNoSuffixes:
			c.ReadU8()
			return false
		}
		c.ReadVarUint()
		c.ReadVarUint()
	}
}
