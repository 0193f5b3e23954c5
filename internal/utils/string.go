package utils

import (
	"strings"
	"unicode"
)

// CaseMask records the capitalization of a typed word so it can be restored
// on a lowercase suggestion.
type CaseMask struct {
	upper []bool
	all   bool
}

// Capitals extracts the case information of s.
func Capitals(s string) CaseMask {
	var m CaseMask
	letters, uppers := 0, 0
	for _, r := range s {
		isUpper := unicode.IsUpper(r)
		m.upper = append(m.upper, isUpper)
		if unicode.IsLetter(r) {
			letters++
			if isUpper {
				uppers++
			}
		}
	}
	m.all = letters > 1 && uppers == letters
	return m
}

// IsZero reports whether s had no capitals.
func (m CaseMask) IsZero() bool {
	for _, u := range m.upper {
		if u {
			return false
		}
	}
	return true
}

// Apply uppercases word where the typed word was uppercase. A fully
// uppercase word uppercases all of word.
func (m CaseMask) Apply(word string) string {
	if m.all {
		return strings.ToUpper(word)
	}
	if m.IsZero() {
		return word
	}
	runes := []rune(word)
	for i := range runes {
		if i < len(m.upper) && m.upper[i] {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}
