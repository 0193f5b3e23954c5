package dictionary

// Alphabet lists the characters every dictionary accepts before its
// diacritics table is applied.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz'- "

// CharMap folds input bytes to their canonical lowercase, diacritic-free form.
// A zero entry marks a byte the dictionary does not accept.
type CharMap struct {
	table [256]byte
}

// NewCharMap seeds the alphabet, aliases uppercase ASCII to lowercase and
// overlays the dictionary's diacritics table.
func NewCharMap(s *Store) *CharMap {
	m := &CharMap{}
	for i := 0; i < len(Alphabet); i++ {
		c := Alphabet[i]
		m.table[c] = c
		if c >= 'a' && c <= 'z' {
			m.table[c-'a'+'A'] = c
		}
	}
	if s == nil {
		return m
	}

	s.diacritics(func(glyph, base uint64) {
		if glyph > 0xff || base > 0xff {
			return
		}
		// every non-zero entry is a fixed point; keep it that way
		b := m.table[byte(base)]
		if b == 0 {
			b = byte(base)
			m.table[b] = b
		}
		if g := byte(glyph); m.table[g] != g {
			m.table[g] = b
		}
	})
	return m
}

// Fold returns the canonical form of b, or 0 when b is not accepted.
func (m *CharMap) Fold(b byte) byte {
	return m.table[b]
}

// Accepts reports whether b can appear in typed input.
func (m *CharMap) Accepts(b byte) bool {
	return m.table[b] != 0
}

// FoldInto appends the folded form of s to dst, dropping bytes the map does
// not accept.
func (m *CharMap) FoldInto(dst []byte, s []byte) []byte {
	for _, b := range s {
		if f := m.table[b]; f != 0 {
			dst = append(dst, f)
		}
	}
	return dst
}

// FoldRune folds a rune, leaving runes outside the byte range untouched.
func (m *CharMap) FoldRune(r rune) rune {
	if r < 0 || r > 0xff {
		return r
	}
	if f := m.table[byte(r)]; f != 0 {
		return rune(f)
	}
	return r
}
