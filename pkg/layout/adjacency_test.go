package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(keys string, y float64) []KeyGeometry {
	out := make([]KeyGeometry, 0, len(keys))
	for i, c := range keys {
		out = append(out, KeyGeometry{Code: int(c), X: float64(i) * 30, Y: y, Width: 30, Height: 40})
	}
	return out
}

func TestBuildRow(t *testing.T) {
	adj := Build(row("rtn", 0), DefaultProximity)

	assert.Equal(t, []byte("rt"), adj.Near('r'))
	assert.Equal(t, []byte("nrt"), adj.Near('t'))
	assert.Equal(t, []byte("nt"), adj.Near('n'))
	assert.Equal(t, []byte("nrt"), adj.Keys())
	assert.Empty(t, adj.Near('x'))
}

func TestBuildSkipsSpecialKeys(t *testing.T) {
	keys := append(row("ab", 0),
		KeyGeometry{Code: Space, X: 0, Y: 0, Width: 60, Height: 40},
		KeyGeometry{Code: Backspace, X: 30, Y: 0, Width: 30, Height: 40},
	)
	adj := Build(keys, DefaultProximity)

	assert.Equal(t, []byte("ab"), adj.Keys())
	assert.Equal(t, []byte("ab"), adj.Near('a'))
	assert.Empty(t, adj.Near(' '))
}

func TestBuildUppercaseCodes(t *testing.T) {
	adj := Build(row("AB", 0), DefaultProximity)

	assert.Equal(t, []byte("ab"), adj.Keys())
	assert.Equal(t, []byte("ab"), adj.Near('a'))
}

func TestBuildEveryKeyNearItself(t *testing.T) {
	params := QWERTY(30, 40)
	adj := FromParams(params, DefaultProximity)

	require.Len(t, adj.Keys(), 28)
	for _, c := range adj.Keys() {
		assert.Contains(t, adj.Near(c), c)
	}
}

func TestBuildQWERTYNeighbours(t *testing.T) {
	adj := FromParams(QWERTY(30, 40), DefaultProximity)

	near := adj.Near('g')
	for _, c := range []byte("fhtyvb") {
		assert.Contains(t, near, c, "g should be near %q", c)
	}
	for _, c := range []byte("qpzm") {
		assert.NotContains(t, near, c, "g should not be near %q", c)
	}
}

func TestProximityScalesRadius(t *testing.T) {
	wide := Build(row("abc", 0), 2.5)
	assert.Equal(t, []byte("abc"), wide.Near('a'))

	tight := Build(row("abc", 0), 0.4)
	assert.Equal(t, []byte("a"), tight.Near('a'))

	defaulted := Build(row("abc", 0), 0)
	assert.Equal(t, []byte("ab"), defaulted.Near('a'))
}

func TestDistanceSquared(t *testing.T) {
	k := KeyGeometry{X: 10, Y: 10, Width: 20, Height: 20}

	assert.Equal(t, 0.0, distanceSquared(k, 15, 15))
	assert.Equal(t, 25.0, distanceSquared(k, 35, 20))
	assert.Equal(t, 50.0, distanceSquared(k, 5, 5))
}
