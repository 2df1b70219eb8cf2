package reducer

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

var (
	// ErrNotReducible is returned when a history action (Undo, Redo, session
	// actions) reaches the reducer. Those are handled by package history.
	ErrNotReducible = errors.New("action is not handled by the reducer")

	// ErrUnknownAction is returned for an action value the reducer does not
	// know.
	ErrUnknownAction = errors.New("unknown action")
)

// Reduce applies a to m and returns the resulting model. m is never
// modified. When a changes nothing the same pointer is returned, which
// callers use as the "no-op" signal.
//
// Structural errors are returned as [*flow.Violation] values wrapping a flow
// sentinel, for example [flow.ErrElementNotFound] or
// [flow.ErrInvalidAttachment].
func Reduce(m *flow.Model, a action.Action) (*flow.Model, error) {
	if m == nil {
		return nil, &flow.Violation{Err: flow.ErrNilModel}
	}
	if a = action.Deref(a); a == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnknownAction)
	}

	switch v := a.(type) {
	case action.AddElement:
		return addElement(m, v)
	case action.DeleteElements:
		return deleteElements(m, v)
	case action.Connect:
		return connect(m, v)
	case action.UpdateElement:
		return updateElement(m, v)
	case action.MoveElement:
		return moveElement(m, v)
	case action.SelectElements:
		return selectElements(m, v)
	case action.DeselectElements:
		return deselectElements(m, v)
	case action.ToggleSelection:
		return toggleSelection(m, v)
	case action.HighlightElements:
		return highlightElements(m, v)
	case action.UpdateProperties:
		return updateProperties(m, v)
	case action.LoadFlow:
		return loadFlow(m, v)
	case action.Undo, action.Redo, action.ClearUndoRedo,
		action.StartEditSession, action.EndEditSession, action.DiscardEditSession:
		return nil, fmt.Errorf("%w: %s", ErrNotReducible, a.Type())
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// lookup returns element guid or an ErrElementNotFound violation.
func lookup(m *flow.Model, guid string) (*flow.Element, error) {
	e, ok := m.Elements[guid]
	if !ok {
		return nil, &flow.Violation{Err: flow.ErrElementNotFound, Guids: []string{guid}}
	}
	return e, nil
}

// canvasElement is lookup restricted to canvas (non-child) elements.
func canvasElement(m *flow.Model, guid string) (*flow.Element, error) {
	e, err := lookup(m, guid)
	if err != nil {
		return nil, err
	}
	if e.Type.IsChild() {
		return nil, flow.Violationf(flow.ErrInvalidElementType, []string{guid}, "%s is not a canvas element", e.Type)
	}
	return e, nil
}
