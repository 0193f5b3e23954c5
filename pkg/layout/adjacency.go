// Package layout derives key proximity from keyboard geometry.
package layout

import (
	"sort"
	"unicode"

	"github.com/charmbracelet/log"
)

// DefaultProximity scales a key's smaller side to get the radius within
// which other key centers count as adjacent.
const DefaultProximity = 1.2

// Control key codes. Codes up to SpecialMax never take part in adjacency.
const (
	Backspace  = 8
	Return     = 13
	Space      = 32
	SpecialMax = 32
)

// KeyGeometry is the rectangle of one key on screen.
type KeyGeometry struct {
	Code   int     `msgpack:"code"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Width  float64 `msgpack:"w"`
	Height float64 `msgpack:"h"`
}

// Params is the layout a host sends when the keyboard changes.
type Params struct {
	KeyWidth  float64       `msgpack:"kw"`
	KeyHeight float64       `msgpack:"kh"`
	Keys      []KeyGeometry `msgpack:"keys"`
}

// IsSpecial reports whether code is a control key.
func IsSpecial(code int) bool { return code <= SpecialMax }

// Adjacency maps each key character to the characters a finger aiming at it
// may hit instead. It is immutable once built.
type Adjacency struct {
	near [256][]byte
	keys []byte
}

// Build computes adjacency for the non-special keys. K2 is near K1 when the
// squared distance from K2's center to K1's rectangle is below
// (proximity * min(K1.Width, K1.Height))^2. Every key is near itself.
func Build(keys []KeyGeometry, proximity float64) *Adjacency {
	if proximity <= 0 {
		proximity = DefaultProximity
	}

	a := &Adjacency{}
	var seen [256]bool
	for _, k1 := range keys {
		c1, ok := keyChar(k1.Code)
		if !ok {
			continue
		}
		if !seen[c1] {
			seen[c1] = true
			a.keys = append(a.keys, c1)
		}

		radius := proximity * min(k1.Width, k1.Height)
		limit := radius * radius
		for _, k2 := range keys {
			c2, ok := keyChar(k2.Code)
			if !ok {
				continue
			}
			if distanceSquared(k1, k2.X+k2.Width/2, k2.Y+k2.Height/2) < limit {
				a.near[c1] = appendUnique(a.near[c1], c2)
			}
		}
	}

	sort.Slice(a.keys, func(i, j int) bool { return a.keys[i] < a.keys[j] })
	for i := range a.near {
		n := a.near[i]
		sort.Slice(n, func(x, y int) bool { return n[x] < n[y] })
	}

	log.Debugf("Adjacency built for %d keys (proximity %.2f)", len(a.keys), proximity)
	return a
}

// FromParams builds adjacency for a host supplied layout.
func FromParams(p Params, proximity float64) *Adjacency {
	return Build(p.Keys, proximity)
}

// Near returns the keys adjacent to c, including c itself when c is a key.
func (a *Adjacency) Near(c byte) []byte {
	return a.near[c]
}

// Keys returns every non-special key character in ascending order.
func (a *Adjacency) Keys() []byte {
	return a.keys
}

// keyChar returns the lowercase byte for a key code, rejecting control keys
// and codes that do not fit a byte.
func keyChar(code int) (byte, bool) {
	if IsSpecial(code) || code > 0xff {
		return 0, false
	}
	r := unicode.ToLower(rune(code))
	if r > 0xff {
		return 0, false
	}
	return byte(r), true
}

// distanceSquared measures from (x, y) to the nearest point of k's rectangle.
func distanceSquared(k KeyGeometry, x, y float64) float64 {
	dx := x - max(k.X, min(x, k.X+k.Width))
	dy := y - max(k.Y, min(y, k.Y+k.Height))
	return dx*dx + dy*dy
}

func appendUnique(s []byte, c byte) []byte {
	for _, b := range s {
		if b == c {
			return s
		}
	}
	return append(s, c)
}
