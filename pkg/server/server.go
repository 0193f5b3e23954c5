package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/engine"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/session"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Error codes sent in ErrorResponse.
const (
	CodeBadRequest  = 400
	CodeNotReady    = 409
	CodeMalformed   = 422
	CodeInternal    = 500
	CodeUnavailable = 503
)

// Server handles the IPC between a host and one engine.
type Server struct {
	engine  *engine.Engine
	decoder *msgpack.Decoder

	mu      sync.Mutex
	encoder *msgpack.Encoder
	writer  *bufio.Writer

	requests int
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(opts session.Options, loader *dictionary.Loader) *Server {
	return New(os.Stdin, os.Stdout, opts, loader)
}

// New creates a server reading requests from r and writing responses to w.
func New(r io.Reader, w io.Writer, opts session.Options, loader *dictionary.Loader) *Server {
	bw := bufio.NewWriter(w)
	s := &Server{
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		encoder: msgpack.NewEncoder(bw),
		writer:  bw,
	}
	s.engine = engine.New(s, opts, loader)
	return s
}

// Configure hands new options to the engine. It is safe to call from any
// goroutine while Start runs.
func (s *Server) Configure(ctx context.Context, opts session.Options) error {
	return s.engine.Post(ctx, engine.Configure{Options: opts})
}

// Start runs the engine and serves requests until the input ends or ctx is
// cancelled. Queued events are handled before Start returns after EOF.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	go s.engine.Run(ctx)
	defer func() {
		s.engine.Close()
		<-s.engine.Done()
		log.Debug("Server stopped", "requests", s.requests)
	}()

	s.send(ReadyResponse{Type: TypeReady})

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.send(ErrorResponse{Type: TypeError, Error: fmt.Sprintf("invalid request: %v", err), Code: CodeBadRequest})
			return err
		}
		s.requests++

		if err := s.engine.Post(ctx, toEvent(&req)); err != nil {
			return err
		}
	}
}

func toEvent(req *Request) engine.Event {
	switch req.Type {
	case TypeLayout:
		return engine.SetLayoutParams{Params: layout.Params{
			KeyWidth:  req.KeyWidth,
			KeyHeight: req.KeyHeight,
			Keys:      req.Keys,
		}}
	case TypeLang:
		return engine.SetLanguage{Language: req.Language, Dict: req.Dict}
	case TypeKey:
		return engine.Key{Code: req.Code, X: req.X, Y: req.Y}
	case TypeSelect:
		return engine.Select{Displayed: req.Text, Chosen: req.Word}
	default:
		return engine.Unrecognized{Type: req.Type}
	}
}

// SendCandidates implements session.Host.
func (s *Server) SendCandidates(pairs [][2]string) {
	s.send(CandidatesResponse{Type: TypeCandidates, Candidates: pairs})
}

// SendString implements session.Host.
func (s *Server) SendString(str string) {
	s.send(StringResponse{Type: TypeString, String: str})
}

// Log implements session.Host.
func (s *Server) Log(msg string) {
	log.Debug(msg)
	s.send(LogResponse{Type: TypeLog, Message: msg})
}

// Error implements engine.Host.
func (s *Server) Error(err error) {
	s.send(ErrorResponse{Type: TypeError, Error: err.Error(), Code: errorCode(err)})
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownEvent):
		return CodeBadRequest
	case errors.Is(err, session.ErrNotReady):
		return CodeNotReady
	case errors.Is(err, dictionary.ErrMalformed):
		return CodeMalformed
	case errors.Is(err, engine.ErrNoDictionary), errors.Is(err, fs.ErrNotExist):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// send encodes one response and flushes it so the host sees it immediately.
func (s *Server) send(response any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}
