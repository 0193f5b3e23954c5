/*
Package session is the per-connection typing state machine.

A Session accumulates folded keystrokes into the current word and, after every
keystroke, asks a suggest.Completer for ranked words. Results and correction
sequences go back to the host through the Host interface.

# States

	Empty      no word is being typed
	Composing  at least one accepted character since the last reset

Space always resets to Empty and clears the candidate bar. Backspace pops one
character, clearing the bar when the word becomes empty. Any other accepted
key appends its folded form and re-predicts. Selecting a candidate emits one
backspace per typed character followed by the chosen word, unless the chosen
word is what was typed.
*/
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// ErrNotReady is returned by key and select events received before a
// dictionary has been loaded.
var ErrNotReady = errors.New("no dictionary loaded")

// Host receives everything a session emits.
type Host interface {
	// SendCandidates replaces the candidate bar with (display, word) pairs,
	// best first. An empty list clears it.
	SendCandidates(pairs [][2]string)
	// SendString asks the host to type s, which may start with backspaces.
	SendString(s string)
	// Log forwards a diagnostic message.
	Log(msg string)
}

// State is the session's position in its state machine.
type State int

const (
	Empty State = iota
	Composing
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Composing:
		return "composing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options tune prediction. They can change between events.
type Options struct {
	// MaxCandidates caps each emitted list, 0 emits everything.
	MaxCandidates int
	// CacheSize is the number of prefix lookups memoised per dictionary.
	CacheSize int
	// Proximity scales key size into the adjacency radius.
	Proximity float64
}

// DefaultOptions returns the options used when no config is loaded.
func DefaultOptions() Options {
	return Options{
		MaxCandidates: 24,
		CacheSize:     suggest.DefaultCacheSize,
		Proximity:     layout.DefaultProximity,
	}
}

// Session holds the dictionary, layout and current word for one host.
// It is driven by a single goroutine and is not safe for concurrent use.
type Session struct {
	host      Host
	opts      Options
	language  string
	store     *dictionary.Store
	completer *suggest.Completer
	params    *layout.Params
	adj       *layout.Adjacency
	word      []byte
	keys      int
}

// New creates an Empty session with no dictionary.
func New(host Host, opts Options) *Session {
	return &Session{
		host: host,
		opts: opts,
		word: make([]byte, 0, 32),
	}
}

// SetOptions applies new options. A different proximity rebuilds the
// adjacency model and a different cache size rebuilds the completer.
func (s *Session) SetOptions(opts Options) {
	old := s.opts
	s.opts = opts

	if opts.Proximity != old.Proximity && s.params != nil {
		s.adj = layout.FromParams(*s.params, opts.Proximity)
		if s.completer != nil {
			s.completer.SetAdjacency(s.adj)
		}
	}
	if opts.CacheSize != old.CacheSize && s.store != nil {
		s.completer = suggest.NewCompleter(s.store, s.adj, opts.CacheSize)
	}
	log.Debug("session options updated", "maxCandidates", opts.MaxCandidates, "cacheSize", opts.CacheSize, "proximity", opts.Proximity)
}

// SetLayoutParams rebuilds key adjacency from the host's key geometry.
func (s *Session) SetLayoutParams(p layout.Params) {
	s.params = &p
	s.adj = layout.FromParams(p, s.opts.Proximity)
	if s.completer != nil {
		s.completer.SetAdjacency(s.adj)
	}
	log.Debugf("Layout set: %d keys, %.0fx%.0f", len(p.Keys), p.KeyWidth, p.KeyHeight)
}

// SetLanguage parses buf as the dictionary for lang and resets to Empty.
// On error the previous dictionary stays active.
func (s *Session) SetLanguage(lang string, buf []byte) error {
	store, err := dictionary.Load(buf)
	if err != nil {
		return fmt.Errorf("loading %q dictionary: %w", lang, err)
	}

	s.store = store
	s.completer = suggest.NewCompleter(store, s.adj, s.opts.CacheSize)
	s.language = lang
	s.reset()
	s.host.Log(fmt.Sprintf("language %s: %d bytes, prefix limit %d", lang, store.Size(), store.PrefixLimit()))
	return nil
}

// Key handles one keystroke. x and y are the touch position; they are
// recorded for diagnostics only.
func (s *Session) Key(code int, x, y float64) error {
	if s.completer == nil {
		return ErrNotReady
	}
	s.keys++
	log.Debug("key", "code", code, "x", x, "y", y)

	switch code {
	case layout.Space:
		s.reset()
		s.clear()
		return nil
	case layout.Backspace:
		switch len(s.word) {
		case 0:
		case 1:
			s.reset()
			s.clear()
		default:
			s.word = s.word[:len(s.word)-1]
			s.predict()
		}
		return nil
	}

	if code < 0 || code > 0xff {
		log.Debugf("Ignoring key code %d outside the byte range", code)
		s.host.Log(fmt.Sprintf("ignored key code %d: outside the byte range", code))
		return nil
	}
	c := s.completer.Fold(byte(code))
	if c == 0 {
		log.Debugf("Ignoring key code %d not accepted by the %s dictionary", code, s.language)
		return nil
	}
	s.word = append(s.word, c)
	s.predict()
	return nil
}

// Select confirms chosen for the word being typed. displayed is what the
// candidate bar showed.
func (s *Session) Select(displayed, chosen string) error {
	if s.completer == nil {
		return ErrNotReady
	}
	log.Debug("select", "displayed", displayed, "chosen", chosen, "typed", string(s.word))

	if chosen != string(s.word) {
		s.host.SendString(strings.Repeat("\b", len(s.word)) + chosen)
	}
	s.reset()
	s.clear()
	return nil
}

// State reports whether a word is being composed.
func (s *Session) State() State {
	if len(s.word) == 0 {
		return Empty
	}
	return Composing
}

// Word returns the folded word typed so far.
func (s *Session) Word() string { return string(s.word) }

// Language returns the active language, empty before SetLanguage.
func (s *Session) Language() string { return s.language }

// Options returns the active options.
func (s *Session) Options() Options { return s.opts }

// Stats merges session counters with the completer's.
func (s *Session) Stats() map[string]int {
	stats := map[string]int{"keys": s.keys}
	if s.completer != nil {
		for k, v := range s.completer.Stats() {
			stats[k] = v
		}
	}
	return stats
}

func (s *Session) predict() {
	cands := s.completer.Complete(s.word, s.opts.MaxCandidates)
	pairs := make([][2]string, len(cands))
	for i, c := range cands {
		pairs[i] = [2]string{c.Word, c.Word}
	}
	s.host.SendCandidates(pairs)
}

func (s *Session) clear() {
	s.host.SendCandidates([][2]string{})
}

func (s *Session) reset() {
	s.word = s.word[:0]
}
