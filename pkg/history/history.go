package history

import (
	"errors"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

var (
	// ErrNothingToUndo is returned by Undo when the past is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when the future is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrSessionOpen is returned when a session is started while one is open,
	// or when Undo or Redo is requested inside a session.
	ErrSessionOpen = errors.New("edit session already open")

	// ErrNoSession is returned when a session is ended or discarded without
	// a matching start.
	ErrNoSession = errors.New("no edit session open")

	// ErrNilState is returned when the manager is constructed with a nil model
	// or a reducer produces one.
	ErrNilState = errors.New("nil state")
)

// ReduceFunc computes the next model for an action. [reducer.Reduce] is the
// production implementation.
type ReduceFunc func(*flow.Model, action.Action) (*flow.Model, error)

// session is an open edit session: the model it started from and the
// actions applied since, in order.
type session struct {
	base *flow.Model
	log  []action.Action
}

// Manager tracks the undo/redo history of one document.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	past    []*flow.Model
	present *flow.Model
	future  []*flow.Model

	lastType action.Type
	session  *session

	reduce    ReduceFunc
	blacklist map[action.Type]bool
	grouped   map[action.Type]bool
	limit     int
}

// New creates a manager whose present is initial. reduce applies every
// action that is not a history action.
func New(initial *flow.Model, reduce ReduceFunc, opts ...Option) (*Manager, error) {
	if initial == nil {
		return nil, ErrNilState
	}
	if reduce == nil {
		return nil, errors.New("history: nil reduce function")
	}
	m := &Manager{
		present:   initial,
		reduce:    reduce,
		blacklist: toSet(DefaultBlacklist()),
		grouped:   toSet(DefaultGrouped()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Present returns the current model.
func (m *Manager) Present() *flow.Model { return m.present }

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 && m.session == nil }

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 && m.session == nil }

// InSession reports whether an edit session is open.
func (m *Manager) InSession() bool { return m.session != nil }

// LastActionType returns the type of the last action applied.
func (m *Manager) LastActionType() action.Type { return m.lastType }

// Stats summarises the history for logs and status output.
type Stats struct {
	Past       int
	Future     int
	InSession  bool
	SessionLen int
	LastAction action.Type
}

// Stats returns the current stack sizes.
func (m *Manager) Stats() Stats {
	s := Stats{Past: len(m.past), Future: len(m.future), LastAction: m.lastType}
	if m.session != nil {
		s.InSession = true
		s.SessionLen = len(m.session.log)
	}
	return s
}

// Apply runs a through the history state machine and returns the new
// present. On error the history is left unchanged.
func (m *Manager) Apply(a action.Action) (*flow.Model, error) {
	if a = action.Deref(a); a == nil {
		return nil, errors.New("history: nil action")
	}
	var err error
	switch a.Type() {
	case action.TypeUndo:
		err = m.Undo()
	case action.TypeRedo:
		err = m.Redo()
	case action.TypeClearUndoRedo:
		m.Clear()
	case action.TypeStartEditSession:
		err = m.StartSession()
	case action.TypeEndEditSession:
		err = m.EndSession()
	case action.TypeDiscardEditSession:
		err = m.DiscardSession()
	default:
		return m.record(a)
	}
	if err != nil {
		return nil, err
	}
	return m.present, nil
}

// record applies an ordinary action.
func (m *Manager) record(a action.Action) (*flow.Model, error) {
	t := a.Type()
	next, err := m.reduce(m.present, a)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrNilState
	}

	prevType := m.lastType
	m.lastType = t
	switch {
	case m.session != nil:
		m.session.log = append(m.session.log, a)
		m.present = next
	case next == m.present:
	case m.blacklist[t]:
		m.present = next
	case m.grouped[t] && prevType == t:
		m.present = next
	default:
		m.push(next)
	}
	return m.present, nil
}

// push records present in the past and makes next the present.
func (m *Manager) push(next *flow.Model) {
	m.past = append(m.past, m.present)
	if m.limit > 0 && len(m.past) > m.limit {
		m.past = append([]*flow.Model(nil), m.past[len(m.past)-m.limit:]...)
	}
	m.present = next
	m.future = nil
}

// Undo restores the most recent past model.
func (m *Manager) Undo() error {
	if m.session != nil {
		return ErrSessionOpen
	}
	if len(m.past) == 0 {
		return ErrNothingToUndo
	}
	last := len(m.past) - 1
	m.future = append([]*flow.Model{m.present}, m.future...)
	m.present = m.past[last]
	m.past = m.past[:last]
	m.lastType = action.TypeUndo
	return nil
}

// Redo re-applies the most recently undone model.
func (m *Manager) Redo() error {
	if m.session != nil {
		return ErrSessionOpen
	}
	if len(m.future) == 0 {
		return ErrNothingToRedo
	}
	m.past = append(m.past, m.present)
	m.present = m.future[0]
	m.future = m.future[1:]
	m.lastType = action.TypeRedo
	return nil
}

// Clear drops past, future and any open session. The present is kept.
func (m *Manager) Clear() {
	m.past = nil
	m.future = nil
	m.session = nil
	m.lastType = action.TypeClearUndoRedo
}

// StartSession opens an edit session. Actions applied until EndSession are
// shown live and undone as one step.
func (m *Manager) StartSession() error {
	if m.session != nil {
		return ErrSessionOpen
	}
	m.session = &session{base: m.present}
	m.lastType = action.TypeStartEditSession
	return nil
}

// EndSession closes the open session and records the live present as a
// single history entry spanning every logged action, even when the session
// applied nothing. The live present already holds the logged actions applied
// in order to the base, with the GUIDs subscribers have seen.
func (m *Manager) EndSession() error {
	s := m.session
	if s == nil {
		return ErrNoSession
	}
	next := m.present
	m.session = nil
	m.present = s.base
	m.push(next)
	m.lastType = action.TypeEndEditSession
	return nil
}

// DiscardSession closes the open session and restores the model it started
// from. No history entry is recorded.
func (m *Manager) DiscardSession() error {
	if m.session == nil {
		return ErrNoSession
	}
	m.present = m.session.base
	m.session = nil
	m.lastType = action.TypeDiscardEditSession
	return nil
}
