package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/history"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/reducer"
)

// ErrReentrantDispatch is returned when Dispatch is called while an action
// is being reduced.
var ErrReentrantDispatch = errors.New("dispatch called while reducing an action")

// Listener is called with the new state after every dispatch that changes it.
type Listener func(*flow.Model)

// Store holds the current flow of one document and routes every change
// through Dispatch.
type Store interface {
	// State returns the last committed model. Callers must not modify it.
	State() *flow.Model

	// Dispatch applies a and notifies listeners when the state changes.
	Dispatch(a action.Action) error

	// Subscribe registers l and returns a function that removes it.
	Subscribe(l Listener) (unsubscribe func())

	IsUndoAvailable() bool
	IsRedoAvailable() bool
	InSession() bool
}

// Option configures a [Graph].
type Option func(*options)

type options struct {
	reduce  history.ReduceFunc
	history []history.Option
	logger  *log.Logger
}

// WithReducer replaces the reduce function. The default is [reducer.Reduce].
func WithReducer(fn history.ReduceFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.reduce = fn
		}
	}
}

// WithHistory passes options to the document's undo/redo manager.
func WithHistory(opts ...history.Option) Option {
	return func(o *options) { o.history = append(o.history, opts...) }
}

// WithLogger sets the logger used to report panicking listeners.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type subscription struct {
	id int
	fn Listener
}

// Graph is the [Store] implementation backed by a [history.Manager].
//
// A Graph is not safe for concurrent use.
type Graph struct {
	hist      *history.Manager
	listeners []subscription
	nextID    int
	reducing  bool
	logger    *log.Logger
}

// New creates a store whose state is initial.
func New(initial *flow.Model, opts ...Option) (*Graph, error) {
	o := options{reduce: reducer.Reduce, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{logger: o.logger}
	reduce := func(m *flow.Model, a action.Action) (*flow.Model, error) {
		g.reducing = true
		defer func() { g.reducing = false }()
		return o.reduce(m, a)
	}
	h, err := history.New(initial, reduce, o.history...)
	if err != nil {
		return nil, err
	}
	g.hist = h
	return g, nil
}

// State returns the last committed model.
func (g *Graph) State() *flow.Model { return g.hist.Present() }

// IsUndoAvailable reports whether an Undo action would succeed.
func (g *Graph) IsUndoAvailable() bool { return g.hist.CanUndo() }

// IsRedoAvailable reports whether a Redo action would succeed.
func (g *Graph) IsRedoAvailable() bool { return g.hist.CanRedo() }

// InSession reports whether an edit session is open.
func (g *Graph) InSession() bool { return g.hist.InSession() }

// History returns the sizes of the undo/redo stacks.
func (g *Graph) History() history.Stats { return g.hist.Stats() }

// Dispatch applies a. Listeners run synchronously, in subscription order,
// only when the committed state changes.
func (g *Graph) Dispatch(a action.Action) error {
	if g.reducing {
		return ErrReentrantDispatch
	}
	if a = action.Deref(a); a == nil {
		return fmt.Errorf("%w: nil", reducer.ErrUnknownAction)
	}

	ctx := context.Background()
	hooks := observability.Dispatch()
	before, stats := g.hist.Present(), g.hist.Stats()
	start := time.Now()
	next, err := g.hist.Apply(a)
	hooks.OnDispatch(ctx, string(a.Type()), time.Since(start), err)
	if err != nil {
		return err
	}

	switch a.Type() {
	case action.TypeUndo:
		hooks.OnUndo(ctx)
	case action.TypeRedo:
		hooks.OnRedo(ctx)
	case action.TypeEndEditSession:
		hooks.OnSessionEnd(ctx, stats.SessionLen)
	}

	if next != before {
		g.notify(next)
	}
	return nil
}

// Subscribe registers l. The returned function removes it and may be called
// more than once.
func (g *Graph) Subscribe(l Listener) func() {
	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, subscription{id: id, fn: l})
	return func() {
		for i, s := range g.listeners {
			if s.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

func (g *Graph) notify(m *flow.Model) {
	for _, s := range append([]subscription(nil), g.listeners...) {
		g.call(s, m)
	}
}

// call runs one listener. A panic is logged and does not stop the others.
func (g *Graph) call(s subscription, m *flow.Model) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("listener panicked", "listener", s.id, "panic", r)
		}
	}()
	s.fn(m)
}

// Load replaces the document held by s and forgets its history.
func Load(s Store, m *flow.Model) error {
	if err := s.Dispatch(action.LoadFlow{Model: m}); err != nil {
		return err
	}
	return s.Dispatch(action.ClearUndoRedo{})
}
