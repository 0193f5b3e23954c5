package session

import (
	"testing"

	"github.com/bastiangx/keyserve/internal/testdict"
	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHost struct {
	candidates [][][2]string
	strings    []string
	logs       []string
}

func (h *recordingHost) SendCandidates(pairs [][2]string) { h.candidates = append(h.candidates, pairs) }
func (h *recordingHost) SendString(s string)              { h.strings = append(h.strings, s) }
func (h *recordingHost) Log(msg string)                   { h.logs = append(h.logs, msg) }

func (h *recordingHost) last() [][2]string {
	if len(h.candidates) == 0 {
		return nil
	}
	return h.candidates[len(h.candidates)-1]
}

func (h *recordingHost) lastWords() []string {
	var words []string
	for _, p := range h.last() {
		words = append(words, p[1])
	}
	return words
}

var testWords = []testdict.Word{
	{Text: "car", Freq: 200},
	{Text: "can", Freq: 180},
	{Text: "cat", Freq: 150},
	{Text: "hello", Freq: 250},
	{Text: "help", Freq: 230},
	{Text: "rat", Freq: 40},
}

func newSession(t *testing.T, opts Options) (*Session, *recordingHost) {
	t.Helper()
	host := &recordingHost{}
	s := New(host, opts)
	require.NoError(t, s.SetLanguage("en", testdict.Build(testWords, testdict.DefaultOptions())))
	return s, host
}

func typeWord(t *testing.T, s *Session, word string) {
	t.Helper()
	for i := 0; i < len(word); i++ {
		require.NoError(t, s.Key(int(word[i]), 0, 0))
	}
}

// rowLayout places r, t and n side by side and the rest far apart.
func rowLayout(far string) layout.Params {
	var keys []layout.KeyGeometry
	for i, c := range "rtn" {
		keys = append(keys, layout.KeyGeometry{Code: int(c), X: float64(i) * 30, Width: 30, Height: 40})
	}
	for i, c := range far {
		keys = append(keys, layout.KeyGeometry{Code: int(c), X: float64(i) * 300, Y: 500, Width: 30, Height: 40})
	}
	return layout.Params{KeyWidth: 30, KeyHeight: 40, Keys: keys}
}

func TestNotReady(t *testing.T) {
	host := &recordingHost{}
	s := New(host, DefaultOptions())

	assert.ErrorIs(t, s.Key('a', 0, 0), ErrNotReady)
	assert.ErrorIs(t, s.Select("a", "a"), ErrNotReady)
	assert.Empty(t, host.candidates)
	assert.Empty(t, host.strings)

	err := s.SetLanguage("xx", []byte{8})
	assert.ErrorIs(t, err, dictionary.ErrMalformed)
	assert.ErrorIs(t, s.Key('a', 0, 0), ErrNotReady)
	assert.Empty(t, s.Language())
}

func TestSetLanguageResets(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	typeWord(t, s, "ca")
	require.Equal(t, Composing, s.State())

	require.NoError(t, s.SetLanguage("fr", testdict.Build(testWords, testdict.DefaultOptions())))
	assert.Equal(t, Empty, s.State())
	assert.Equal(t, "fr", s.Language())
	assert.Len(t, host.logs, 2)
}

func TestNoOpSelection(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	typeWord(t, s, "cat")

	require.NoError(t, s.Select("cat", "cat"))

	assert.Empty(t, host.strings)
	assert.Empty(t, host.last())
	assert.Equal(t, Empty, s.State())
}

func TestCorrectingSelection(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	typeWord(t, s, "helo")
	assert.Contains(t, host.lastWords(), "hello")

	require.NoError(t, s.Select("helo", "hello"))

	require.Len(t, host.strings, 1)
	assert.Equal(t, "\b\b\b\bhello", host.strings[0])
	assert.Empty(t, host.last())
	assert.Equal(t, "", s.Word())
}

func TestSpaceResets(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	fresh, freshHost := newSession(t, DefaultOptions())

	typeWord(t, s, "hel")
	require.NoError(t, s.Key(layout.Space, 0, 0))
	assert.Equal(t, Empty, s.State())
	assert.NotNil(t, host.last())
	assert.Empty(t, host.last())

	typeWord(t, s, "c")
	typeWord(t, fresh, "c")
	assert.Equal(t, freshHost.last(), host.last())
	assert.Equal(t, "c", s.Word())
}

func TestBackspace(t *testing.T) {
	s, host := newSession(t, DefaultOptions())

	require.NoError(t, s.Key(layout.Backspace, 0, 0))
	assert.Empty(t, host.candidates, "backspace on an empty word emits nothing")

	typeWord(t, s, "ca")
	require.NoError(t, s.Key(layout.Backspace, 0, 0))
	assert.Equal(t, "c", s.Word())
	assert.Equal(t, Composing, s.State())
	assert.NotEmpty(t, host.last())

	require.NoError(t, s.Key(layout.Backspace, 0, 0))
	assert.Equal(t, Empty, s.State())
	assert.Empty(t, host.last())
	assert.Len(t, host.candidates, 4)
}

func TestIgnoredKeys(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	typeWord(t, s, "ca")
	emitted := len(host.candidates)
	logged := len(host.logs)

	for _, code := range []int{layout.Return, '#', 0x1F600, -1, 0x142} {
		require.NoError(t, s.Key(code, 0, 0))
	}

	assert.Equal(t, "ca", s.Word())
	assert.Len(t, host.candidates, emitted)

	// codes beyond a byte are reported to the host
	require.Len(t, host.logs, logged+3)
	assert.Contains(t, host.logs[logged], "128512")
	assert.Contains(t, host.logs[logged+1], "-1")
	assert.Contains(t, host.logs[logged+2], "322")
}

func TestKeysAreFolded(t *testing.T) {
	s, host := newSession(t, DefaultOptions())
	typeWord(t, s, "CAT")

	assert.Equal(t, "cat", s.Word())
	assert.Equal(t, "cat", host.lastWords()[0])
	assert.Equal(t, [2]string{"cat", "cat"}, host.last()[0])
}

func TestMaxCandidates(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxCandidates = 1
	s, host := newSession(t, opts)

	typeWord(t, s, "ca")
	assert.Len(t, host.last(), 1)

	opts.MaxCandidates = 0
	s.SetOptions(opts)
	require.NoError(t, s.Key(layout.Backspace, 0, 0))
	typeWord(t, s, "a")
	assert.ElementsMatch(t, []string{"car", "can", "cat"}, host.lastWords())
}

func TestLayoutDrivesSubstitution(t *testing.T) {
	s, host := newSession(t, DefaultOptions())

	typeWord(t, s, "tat")
	assert.Empty(t, host.last())

	s.SetLayoutParams(rowLayout("a"))
	require.NoError(t, s.Key(layout.Space, 0, 0))
	typeWord(t, s, "tat")
	assert.Contains(t, host.lastWords(), "rat")

	opts := s.Options()
	opts.Proximity = 0.1
	s.SetOptions(opts)
	require.NoError(t, s.Key(layout.Space, 0, 0))
	typeWord(t, s, "tat")
	assert.NotContains(t, host.lastWords(), "rat")
}

func TestStats(t *testing.T) {
	s, _ := newSession(t, DefaultOptions())
	typeWord(t, s, "he")

	stats := s.Stats()
	assert.Equal(t, 2, stats["keys"])
	assert.Equal(t, 2, stats["requests"])
	assert.Equal(t, 8, stats["prefixLimit"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "composing", Composing.String())
	assert.Equal(t, "State(7)", State(7).String())
}
