/*
Package engine runs a session on a single goroutine fed by a channel.

Every piece of prediction state (dictionary, adjacency, current word and the
ranker's matrix) belongs to the goroutine executing Run. Other goroutines only
Post events; each event is handled to completion before the next one is
dequeued, so nothing inside is locked.

	eng := engine.New(host, session.DefaultOptions(), loader)
	go eng.Run(ctx)
	eng.Post(ctx, engine.Key{Code: 'h'})

Errors never stop the loop: they are reported through Host.Error and the next
event runs as usual. A panic inside one event is recovered the same way.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/session"
	"github.com/charmbracelet/log"
)

var (
	// ErrUnknownEvent is reported for events the engine cannot dispatch.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrClosed is returned by Post once the engine has been closed.
	ErrClosed = errors.New("engine closed")
	// ErrNoDictionary is reported when a language arrives without a buffer
	// and no dictionary directory is configured.
	ErrNoDictionary = errors.New("no dictionary available")
)

// DefaultQueueSize is the inbox capacity used by New.
const DefaultQueueSize = 64

// Host is a session host that also receives event errors.
type Host interface {
	session.Host
	Error(err error)
}

// Event is one inbound message.
type Event interface {
	Kind() string
}

// SetLayoutParams replaces the keyboard geometry.
type SetLayoutParams struct {
	Params layout.Params
}

// SetLanguage switches dictionaries. With a nil Dict the dictionary is read
// from the engine's Loader.
type SetLanguage struct {
	Language string
	Dict     []byte
}

// Key is one keystroke at a touch position.
type Key struct {
	Code int
	X, Y float64
}

// Select confirms a candidate.
type Select struct {
	Displayed string
	Chosen    string
}

// Configure applies new session options between events.
type Configure struct {
	Options session.Options
}

// Unrecognized carries an inbound message type nothing handles, so the error
// is reported in order with the events around it.
type Unrecognized struct {
	Type string
}

func (SetLayoutParams) Kind() string { return "layout" }
func (SetLanguage) Kind() string     { return "lang" }
func (Key) Kind() string             { return "key" }
func (Select) Kind() string          { return "select" }
func (Configure) Kind() string       { return "configure" }
func (u Unrecognized) Kind() string  { return u.Type }

// Engine serializes events onto one session.
type Engine struct {
	host    Host
	session *session.Session
	loader  *dictionary.Loader

	inbox     chan Event
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// mu guards closed. Posts in flight are counted in posting so Run can
	// wait for them before its final drain.
	mu      sync.RWMutex
	closed  bool
	posting sync.WaitGroup

	handled int
	failed  int
}

// New creates an engine with an Empty session. loader may be nil when hosts
// always send dictionary buffers.
func New(host Host, opts session.Options, loader *dictionary.Loader) *Engine {
	return NewWithQueue(host, opts, loader, DefaultQueueSize)
}

// NewWithQueue is New with an explicit inbox capacity.
func NewWithQueue(host Host, opts session.Options, loader *dictionary.Loader, queue int) *Engine {
	return &Engine{
		host:    host,
		session: session.New(host, opts),
		loader:  loader,
		inbox:   make(chan Event, queue),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Post queues ev, blocking while the inbox is full. An event for which Post
// returns nil is handled before Run returns, even when Close runs
// concurrently.
func (e *Engine) Post(ctx context.Context, ev Event) error {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrClosed
	}
	e.posting.Add(1)
	e.mu.RUnlock()
	defer e.posting.Done()

	select {
	case e.inbox <- ev:
		return nil
	case <-e.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events. Run handles what is already queued, then
// returns.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.quit)
	})
}

// Done is closed when Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Run handles events until ctx is cancelled or Close is called. It must be
// called once.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	log.Debug("Engine started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Engine stopped", "reason", ctx.Err(), "handled", e.handled)
			return ctx.Err()
		case <-e.quit:
			e.finish(ctx)
			log.Debug("Engine closed", "handled", e.handled, "failed", e.failed)
			return nil
		case ev := <-e.inbox:
			e.dispatch(ev)
		}
	}
}

// Session exposes the engine's session. It must only be used from within
// Run's goroutine or after Run has returned.
func (e *Engine) Session() *session.Session { return e.session }

// Stats returns event counters merged with session counters. The same
// restriction as Session applies.
func (e *Engine) Stats() map[string]int {
	stats := e.session.Stats()
	stats["events"] = e.handled
	stats["failed"] = e.failed
	return stats
}

// finish handles events until no Post is in flight, then empties the inbox.
func (e *Engine) finish(ctx context.Context) {
	settled := make(chan struct{})
	go func() {
		e.posting.Wait()
		close(settled)
	}()

	for {
		select {
		case ev := <-e.inbox:
			e.dispatch(ev)
		case <-settled:
			e.drain()
			return
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) drain() {
	for {
		select {
		case ev := <-e.inbox:
			e.dispatch(ev)
		default:
			return
		}
	}
}

func (e *Engine) dispatch(ev Event) {
	e.handled++
	defer func() {
		if r := recover(); r != nil {
			e.fail(fmt.Errorf("%s event panicked: %v", kindOf(ev), r))
		}
	}()

	if err := e.handle(ev); err != nil {
		e.fail(err)
	}
}

func (e *Engine) fail(err error) {
	e.failed++
	log.Warn("Event failed", "err", err)
	e.host.Error(err)
}

func (e *Engine) handle(ev Event) error {
	switch ev := ev.(type) {
	case SetLayoutParams:
		e.session.SetLayoutParams(ev.Params)
		return nil
	case SetLanguage:
		buf := ev.Dict
		if buf == nil {
			if e.loader == nil {
				return fmt.Errorf("language %q: %w", ev.Language, ErrNoDictionary)
			}
			var err error
			if buf, err = e.loader.Read(ev.Language); err != nil {
				return fmt.Errorf("language %q: %w", ev.Language, err)
			}
		}
		return e.session.SetLanguage(ev.Language, buf)
	case Key:
		return e.session.Key(ev.Code, ev.X, ev.Y)
	case Select:
		return e.session.Select(ev.Displayed, ev.Chosen)
	case Configure:
		e.session.SetOptions(ev.Options)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, kindOf(ev))
	}
}

func kindOf(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.Kind()
}
