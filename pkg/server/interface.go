/*
Package server implements msgpack IPC between a keyboard host and the engine.

The server reads a stream of msgpack maps from stdin and writes a stream of
msgpack maps to stdout. Every message carries its type in the "t" field.

# Inbound

	{"t": "layout", "kw": 30, "kh": 40, "keys": [{"code": 113, "x": 0, "y": 0, "w": 30, "h": 40}, ...]}
	{"t": "lang", "lang": "en", "dict": <bin>}
	{"t": "lang", "lang": "en"}                 // read <data dir>/en.dict
	{"t": "key", "code": 104, "x": 112.5, "y": 60}
	{"t": "select", "text": "helo", "word": "hello"}

# Outbound

	{"t": "ready"}
	{"t": "candidates", "c": [["hello", "hello"], ["help", "help"]]}
	{"t": "string", "s": "\b\b\b\bhello"}
	{"t": "log", "m": "language en: 1048576 bytes, prefix limit 8"}
	{"t": "error", "e": "no dictionary loaded", "code": 409}

Candidates follow every keystroke, best first. An empty list clears the
candidate bar. Strings are typed by the host verbatim, backspaces included.

Events are applied in the order they are read. Errors are reported in that
same order and never close the stream; only undecodable input does.
*/
package server

import "github.com/bastiangx/keyserve/pkg/layout"

// Message types.
const (
	TypeLayout     = "layout"
	TypeLang       = "lang"
	TypeKey        = "key"
	TypeSelect     = "select"
	TypeReady      = "ready"
	TypeCandidates = "candidates"
	TypeString     = "string"
	TypeLog        = "log"
	TypeError      = "error"
)

// Request is any inbound message. Only the fields of its type are set.
type Request struct {
	Type string `msgpack:"t"`

	// layout
	KeyWidth  float64              `msgpack:"kw,omitempty"`
	KeyHeight float64              `msgpack:"kh,omitempty"`
	Keys      []layout.KeyGeometry `msgpack:"keys,omitempty"`

	// lang
	Language string `msgpack:"lang,omitempty"`
	Dict     []byte `msgpack:"dict,omitempty"`

	// key
	Code int     `msgpack:"code,omitempty"`
	X    float64 `msgpack:"x,omitempty"`
	Y    float64 `msgpack:"y,omitempty"`

	// select
	Text string `msgpack:"text,omitempty"`
	Word string `msgpack:"word,omitempty"`
}

// ReadyResponse greets the host once the server is listening.
type ReadyResponse struct {
	Type string `msgpack:"t"`
}

// CandidatesResponse replaces the candidate bar.
type CandidatesResponse struct {
	Type       string      `msgpack:"t"`
	Candidates [][2]string `msgpack:"c"`
}

// StringResponse asks the host to type a string.
type StringResponse struct {
	Type   string `msgpack:"t"`
	String string `msgpack:"s"`
}

// LogResponse carries a diagnostic message.
type LogResponse struct {
	Type    string `msgpack:"t"`
	Message string `msgpack:"m"`
}

// ErrorResponse reports a failed event.
type ErrorResponse struct {
	Type  string `msgpack:"t"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"code"`
}
