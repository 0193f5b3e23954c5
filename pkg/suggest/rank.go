package suggest

import (
	"sort"

	"github.com/bastiangx/keyserve/pkg/dictionary"
)

// Ranker orders dictionary words by their edit distance to the typed word.
// Its distance matrix is kept between calls and only grows.
// A Ranker is not safe for concurrent use.
type Ranker struct {
	chars  *dictionary.CharMap
	matrix []int
	typed  []rune
	cand   []rune
}

// NewRanker creates a ranker comparing characters through chars. A nil map
// compares runes exactly.
func NewRanker(chars *dictionary.CharMap) *Ranker {
	return &Ranker{chars: chars}
}

// Rank scores every entry against the whole typed word and returns them best
// first: ascending distance, then descending frequency.
func (r *Ranker) Rank(typed []byte, entries []dictionary.Entry) []Candidate {
	r.typed = r.typed[:0]
	for _, b := range typed {
		r.typed = append(r.typed, rune(b))
	}

	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		r.cand = append(r.cand[:0], []rune(e.Word)...)
		out = append(out, Candidate{
			Word:     e.Word,
			Freq:     e.Freq,
			Distance: r.distance(r.typed, r.cand),
		})
	}
	Sort(out)
	return out
}

// Sort orders candidates by ascending distance, then descending frequency.
// Remaining ties keep their input order.
func Sort(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Distance != cands[j].Distance {
			return cands[i].Distance < cands[j].Distance
		}
		return cands[i].Freq > cands[j].Freq
	})
}

// Distance is the Levenshtein distance between a and b with folded
// character equality.
func (r *Ranker) Distance(a, b string) int {
	return r.distance([]rune(a), []rune(b))
}

func (r *Ranker) same(x, y rune) bool {
	if x == y {
		return true
	}
	if r.chars == nil {
		return false
	}
	return r.chars.FoldRune(x) == r.chars.FoldRune(y)
}

func (r *Ranker) distance(a, b []rune) int {
	rows, cols := len(a)+1, len(b)+1
	if need := rows * cols; cap(r.matrix) < need {
		r.matrix = make([]int, need)
	}
	m := r.matrix[:rows*cols]

	for i := 0; i < rows; i++ {
		m[i*cols] = i
	}
	for j := 0; j < cols; j++ {
		m[j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r.same(a[i-1], b[j-1]) {
				cost = 0
			}
			m[i*cols+j] = min(
				m[(i-1)*cols+j]+1,
				m[i*cols+j-1]+1,
				m[(i-1)*cols+j-1]+cost,
			)
		}
	}
	return m[rows*cols-1]
}
