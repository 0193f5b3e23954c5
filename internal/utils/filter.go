package utils

// WordFilter drops words already produced during one candidate generation
// pass. It is reused across passes to keep its map allocated.
type WordFilter struct {
	seenWords map[string]struct{}
}

// NewWordFilter creates an empty filter.
func NewWordFilter() *WordFilter {
	return &WordFilter{seenWords: make(map[string]struct{}, 64)}
}

// ShouldInclude reports whether word is new, remembering it if so.
func (f *WordFilter) ShouldInclude(word string) bool {
	if _, ok := f.seenWords[word]; ok {
		return false
	}
	f.seenWords[word] = struct{}{}
	return true
}

// SeenBytes reports whether b has been recorded, without allocating.
func (f *WordFilter) SeenBytes(b []byte) bool {
	_, ok := f.seenWords[string(b)]
	return ok
}

// MarkBytes records b.
func (f *WordFilter) MarkBytes(b []byte) {
	f.seenWords[string(b)] = struct{}{}
}

// Len returns the number of recorded words.
func (f *WordFilter) Len() int { return len(f.seenWords) }

// Reset forgets every recorded word.
func (f *WordFilter) Reset() {
	clear(f.seenWords)
}
