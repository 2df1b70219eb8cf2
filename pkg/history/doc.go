// Package history implements session-aware undo and redo for flow models.
//
// A [Manager] owns three stacks of immutable models (past, present and
// future) for one document. Ordinary actions are passed to a [ReduceFunc];
// Undo, Redo, ClearUndoRedo and the edit-session actions are handled by the
// manager itself.
//
// # Recording Rules
//
// For an ordinary action, in order:
//
//   - inside an open session the result becomes the present and the action
//     is logged, nothing is recorded yet
//   - a result identical (same pointer) to the present records nothing
//   - a blacklisted type replaces the present without an entry
//   - a grouped type repeated back to back replaces the present, so a drag
//     made of many moves undoes in one step
//   - otherwise the present is pushed onto the past and the future is
//     cleared
//
// The last action type is updated in every case.
//
// # Sessions
//
// StartEditSession opens a window whose actions undo as one unit.
// Session actions are applied live, so the present already holds them in
// order on top of the model the session started from. EndEditSession records
// that present as exactly one entry, even for an empty session, and keeps
// every GUID the session generated.
// DiscardEditSession drops the session and restores its starting model.
// Undo and Redo are refused while a session is open.
//
// Managers are independent values: construct one per open document.
package history
