package history

import "github.com/matzehuels/flowcanvas/pkg/action"

// Option configures a [Manager].
type Option func(*Manager)

// DefaultBlacklist returns the action types applied without a history entry
// by default: selection and highlight changes and whole-document loads.
func DefaultBlacklist() []action.Type {
	return []action.Type{
		action.TypeSelectElements,
		action.TypeDeselectElements,
		action.TypeToggleSelection,
		action.TypeHighlightElements,
		action.TypeLoadFlow,
	}
}

// DefaultGrouped returns the action types whose consecutive repetitions
// share one history entry by default.
func DefaultGrouped() []action.Type {
	return []action.Type{action.TypeMoveElement}
}

// WithBlacklist replaces the set of action types that never create a
// history entry.
func WithBlacklist(types ...action.Type) Option {
	return func(m *Manager) { m.blacklist = toSet(types) }
}

// WithGrouped replaces the set of action types whose consecutive
// repetitions are coalesced into one history entry.
func WithGrouped(types ...action.Type) Option {
	return func(m *Manager) { m.grouped = toSet(types) }
}

// WithLimit caps the number of past entries. The oldest entries are dropped
// first. Zero or a negative value means unlimited.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = max(n, 0) }
}

func toSet(types []action.Type) map[action.Type]bool {
	set := make(map[action.Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
