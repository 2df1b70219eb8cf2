// Package action defines the closed set of edits that can be dispatched
// against a flow.
//
// Every action is a plain struct implementing [Action]. Reducer actions
// (AddElement, DeleteElements, Connect, UpdateElement, MoveElement, the
// selection actions, UpdateProperties, LoadFlow) are applied by package
// reducer; history actions (Undo, Redo, ClearUndoRedo and the edit session
// actions) are consumed by package history and never reach the reducer.
//
// # Wire Format
//
// Collaborators outside the process send actions as envelopes:
//
//	{"type": "AddElement", "detail": {"element": {"elementType": "SCREEN", "label": "Welcome"},
//	                                  "position": {"prev": "start-guid"}}}
//
// [Decode] resolves the type (see [ParseType] for accepted spellings),
// decodes the detail strictly and validates it with
// github.com/go-playground/validator struct tags. [ReadScript] reads a list
// of envelopes, as used by the `flowcanvas apply` command.
package action
