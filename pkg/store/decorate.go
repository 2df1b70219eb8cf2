package store

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// AssertOptions configures [WithAssertions].
type AssertOptions struct {
	// RoundTrip also checks that converting the state to the other canvas
	// mode and back preserves it.
	RoundTrip bool

	// Layout is passed to the round-trip check.
	Layout layout.Options

	// Logger receives one error line per violation. Nil disables logging.
	Logger *log.Logger
}

type asserting struct {
	Store
	opts AssertOptions
}

// WithAssertions wraps inner so that every state change is checked with
// [flow.AssertState] and, optionally, [layout.CheckRoundTrip]. A violation
// is logged with the offending GUIDs and returned from Dispatch.
func WithAssertions(inner Store, opts AssertOptions) Store {
	return &asserting{Store: inner, opts: opts}
}

func (s *asserting) Dispatch(a action.Action) error {
	before := s.Store.State()
	if err := s.Store.Dispatch(a); err != nil {
		return err
	}
	m := s.Store.State()
	if m == before {
		return nil
	}
	if err := flow.AssertState(m); err != nil {
		s.report(a, "invariant violated", err)
		return err
	}
	if s.opts.RoundTrip {
		if err := layout.CheckRoundTrip(m, s.opts.Layout); err != nil {
			s.report(a, "layout round trip failed", err)
			return err
		}
	}
	return nil
}

func (s *asserting) report(a action.Action, msg string, err error) {
	if s.opts.Logger == nil {
		return
	}
	s.opts.Logger.Error(msg, "action", a.Type(), "err", err, "guids", flow.GuidsOf(err))
}

type logging struct {
	Store
	logger *log.Logger
}

// WithLogging wraps inner so that every dispatch is logged: a debug line
// with the action type and elapsed time, or an error line on failure.
func WithLogging(inner Store, logger *log.Logger) Store {
	if logger == nil {
		logger = log.Default()
	}
	return &logging{Store: inner, logger: logger}
}

func (s *logging) Dispatch(a action.Action) error {
	start := time.Now()
	err := s.Store.Dispatch(a)
	elapsed := time.Since(start).Round(time.Microsecond)
	if a == nil {
		s.logger.Error("dispatch failed", "err", err)
		return err
	}
	if err != nil {
		s.logger.Error("dispatch failed", "action", a.Type(), "elapsed", elapsed, "err", err, "guids", flow.GuidsOf(err))
		return err
	}
	stats := s.Store.State().Stats()
	s.logger.Debug("dispatch", "action", a.Type(), "elapsed", elapsed,
		"elements", stats.Elements, "connectors", stats.Connectors,
		"undo", s.Store.IsUndoAvailable(), "redo", s.Store.IsRedoAvailable())
	return nil
}
