package action

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Type names an action kind. The string form is used in envelopes, history
// configuration and logs.
type Type string

const (
	TypeAddElement        Type = "AddElement"
	TypeDeleteElements    Type = "DeleteElements"
	TypeConnect           Type = "Connect"
	TypeUpdateElement     Type = "UpdateElement"
	TypeMoveElement       Type = "MoveElement"
	TypeSelectElements    Type = "SelectElements"
	TypeDeselectElements  Type = "DeselectElements"
	TypeToggleSelection   Type = "ToggleSelection"
	TypeHighlightElements Type = "HighlightElements"
	TypeUpdateProperties  Type = "UpdateProperties"
	TypeLoadFlow          Type = "LoadFlow"

	TypeUndo               Type = "Undo"
	TypeRedo               Type = "Redo"
	TypeClearUndoRedo      Type = "ClearUndoRedo"
	TypeStartEditSession   Type = "StartEditSession"
	TypeEndEditSession     Type = "EndEditSession"
	TypeDiscardEditSession Type = "DiscardEditSession"
)

var allTypes = []Type{
	TypeAddElement, TypeDeleteElements, TypeConnect, TypeUpdateElement,
	TypeMoveElement, TypeSelectElements, TypeDeselectElements,
	TypeToggleSelection, TypeHighlightElements, TypeUpdateProperties,
	TypeLoadFlow, TypeUndo, TypeRedo, TypeClearUndoRedo,
	TypeStartEditSession, TypeEndEditSession, TypeDiscardEditSession,
}

// aliases maps alternative spellings accepted by [ParseType].
var aliases = map[string]Type{
	"deleteelement":        TypeDeleteElements,
	"select":               TypeSelectElements,
	"deselect":             TypeDeselectElements,
	"undo":                 TypeUndo,
	"redo":                 TypeRedo,
	"clear_undo_redo":      TypeClearUndoRedo,
	"start_edit_session":   TypeStartEditSession,
	"end_edit_session":     TypeEndEditSession,
	"discard_edit_session": TypeDiscardEditSession,
}

// AllTypes returns every action type in declaration order.
func AllTypes() []Type { return append([]Type(nil), allTypes...) }

// ParseType resolves s to an action type. Matching is case-insensitive and
// also accepts the upper snake case history names (UNDO, END_EDIT_SESSION)
// and the singular DeleteElement.
func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	if t, ok := aliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// IsHistory reports whether actions of type t are handled by the undo/redo
// manager rather than by the reducer.
func (t Type) IsHistory() bool {
	switch t {
	case TypeUndo, TypeRedo, TypeClearUndoRedo,
		TypeStartEditSession, TypeEndEditSession, TypeDiscardEditSession:
		return true
	}
	return false
}

// Action is a request to change the flow. The set of actions is closed:
// only the types of this package implement it.
type Action interface {
	Type() Type
	action()
}

// NewElement describes an element to be created by [AddElement].
type NewElement struct {
	GUID        string           `json:"guid,omitempty"` // generated when empty
	Type        flow.ElementType `json:"elementType" validate:"required,elementtype"`
	Label       string           `json:"label,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	LocationX   float64          `json:"locationX,omitempty"`
	LocationY   float64          `json:"locationY,omitempty"`

	// Branches labels the named branches of a decision or wait. When empty a
	// single branch is created.
	Branches []string `json:"branches,omitempty" validate:"dive,required"`
}

// Position is where a new element attaches to the connector topology: after
// Prev, or as the head of branch ChildIndex of Parent (flow.FaultIndex
// addresses the fault branch). Next, when set, names the element that must
// follow the new one.
type Position struct {
	Prev       string `json:"prev,omitempty" validate:"required_without=Parent,excluded_with=Parent"`
	Next       string `json:"next,omitempty"`
	Parent     string `json:"parent,omitempty"`
	ChildIndex int    `json:"childIndex,omitempty" validate:"min=-1"`
}

// AddElement inserts a new element into the connector chain.
type AddElement struct {
	Element  NewElement `json:"element" validate:"required"`
	Position Position   `json:"position"`
}

// DeleteElements removes canvas elements and re-threads their incoming
// connectors. ChildIndexToKeep selects the branch whose elements survive
// when a branching element is deleted.
type DeleteElements struct {
	Guids            []string `json:"guids" validate:"required,min=1,dive,required"`
	ChildIndexToKeep *int     `json:"childIndexToKeep,omitempty" validate:"omitempty,min=0"`
}

// Connect adds a connector from a free slot of Source to Target.
type Connect struct {
	Source        string             `json:"source" validate:"required"`
	ChildSource   string             `json:"childSource,omitempty"`
	ConnectorType flow.ConnectorType `json:"type" validate:"required,connectortype"`
	Target        string             `json:"target" validate:"required"`
	Label         string             `json:"label,omitempty"`
}

// Branch is one entry of a branch list patch. Entries with a GUID keep the
// existing child element (relabelled when Label is set); entries without
// one create a new child.
type Branch struct {
	GUID  string `json:"guid,omitempty"`
	Label string `json:"label,omitempty" validate:"required_without=GUID"`
}

// Patch is a partial element update. Nil fields are left unchanged. A
// non-nil Branches replaces the child list of a decision, wait or start.
type Patch struct {
	Label       *string  `json:"label,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	LocationX   *float64 `json:"locationX,omitempty"`
	LocationY   *float64 `json:"locationY,omitempty"`
	Branches    []Branch `json:"branches" validate:"omitempty,dive"`
}

// UpdateElement merges Patch into element GUID.
type UpdateElement struct {
	GUID  string `json:"guid" validate:"required"`
	Patch Patch  `json:"patch"`
}

// MoveElement sets the free-form coordinates of an element.
type MoveElement struct {
	GUID      string  `json:"guid" validate:"required"`
	LocationX float64 `json:"locationX"`
	LocationY float64 `json:"locationY"`
}

// SelectElements marks elements as selected.
type SelectElements struct {
	Guids []string `json:"guids" validate:"required,min=1,dive,required"`
}

// DeselectElements clears the selection of the given elements, or of all
// elements when Guids is empty.
type DeselectElements struct {
	Guids []string `json:"guids,omitempty" validate:"dive,required"`
}

// ToggleSelection flips the selection of one element.
type ToggleSelection struct {
	GUID string `json:"guid" validate:"required"`
}

// HighlightElements highlights exactly the given elements; an empty list
// clears all highlights.
type HighlightElements struct {
	Guids []string `json:"guids,omitempty" validate:"dive,required"`
}

// UpdateProperties patches document properties. Nil fields are unchanged.
// Changing AutoLayout converts the canvas between free-form and auto-layout.
type UpdateProperties struct {
	Label       *string `json:"label,omitempty"`
	ProcessType *string `json:"processType,omitempty"`
	Description *string `json:"description,omitempty"`
	AutoLayout  *bool   `json:"isAutoLayoutCanvas,omitempty"`
}

// LoadFlow replaces the whole document.
type LoadFlow struct {
	Model *flow.Model `json:"-" validate:"required"`
}

// Undo restores the previous history entry.
type Undo struct{}

// Redo re-applies the next history entry.
type Redo struct{}

// ClearUndoRedo drops all history and any open session.
type ClearUndoRedo struct{}

// StartEditSession opens a session whose actions undo as one step.
type StartEditSession struct{}

// EndEditSession closes the open session and records one history entry.
type EndEditSession struct{}

// DiscardEditSession closes the open session and restores the state from
// before it started.
type DiscardEditSession struct{}

func (AddElement) Type() Type         { return TypeAddElement }
func (DeleteElements) Type() Type     { return TypeDeleteElements }
func (Connect) Type() Type            { return TypeConnect }
func (UpdateElement) Type() Type      { return TypeUpdateElement }
func (MoveElement) Type() Type        { return TypeMoveElement }
func (SelectElements) Type() Type     { return TypeSelectElements }
func (DeselectElements) Type() Type   { return TypeDeselectElements }
func (ToggleSelection) Type() Type    { return TypeToggleSelection }
func (HighlightElements) Type() Type  { return TypeHighlightElements }
func (UpdateProperties) Type() Type   { return TypeUpdateProperties }
func (LoadFlow) Type() Type           { return TypeLoadFlow }
func (Undo) Type() Type               { return TypeUndo }
func (Redo) Type() Type               { return TypeRedo }
func (ClearUndoRedo) Type() Type      { return TypeClearUndoRedo }
func (StartEditSession) Type() Type   { return TypeStartEditSession }
func (EndEditSession) Type() Type     { return TypeEndEditSession }
func (DiscardEditSession) Type() Type { return TypeDiscardEditSession }

func (AddElement) action()         {}
func (DeleteElements) action()     {}
func (Connect) action()            {}
func (UpdateElement) action()      {}
func (MoveElement) action()        {}
func (SelectElements) action()     {}
func (DeselectElements) action()   {}
func (ToggleSelection) action()    {}
func (HighlightElements) action()  {}
func (UpdateProperties) action()   {}
func (LoadFlow) action()           {}
func (Undo) action()               {}
func (Redo) action()               {}
func (ClearUndoRedo) action()      {}
func (StartEditSession) action()   {}
func (EndEditSession) action()     {}
func (DiscardEditSession) action() {}

// New returns a zero action of type t, ready to receive a decoded payload.
func New(t Type) (Action, error) {
	switch t {
	case TypeAddElement:
		return &AddElement{}, nil
	case TypeDeleteElements:
		return &DeleteElements{}, nil
	case TypeConnect:
		return &Connect{}, nil
	case TypeUpdateElement:
		return &UpdateElement{}, nil
	case TypeMoveElement:
		return &MoveElement{}, nil
	case TypeSelectElements:
		return &SelectElements{}, nil
	case TypeDeselectElements:
		return &DeselectElements{}, nil
	case TypeToggleSelection:
		return &ToggleSelection{}, nil
	case TypeHighlightElements:
		return &HighlightElements{}, nil
	case TypeUpdateProperties:
		return &UpdateProperties{}, nil
	case TypeLoadFlow:
		return &LoadFlow{}, nil
	case TypeUndo:
		return &Undo{}, nil
	case TypeRedo:
		return &Redo{}, nil
	case TypeClearUndoRedo:
		return &ClearUndoRedo{}, nil
	case TypeStartEditSession:
		return &StartEditSession{}, nil
	case TypeEndEditSession:
		return &EndEditSession{}, nil
	case TypeDiscardEditSession:
		return &DiscardEditSession{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Deref returns the value form of a, turning the pointers produced by [New]
// and [Decode] into the values the reducer switches on. A nil pointer
// yields a nil Action.
func Deref(a Action) Action {
	switch v := a.(type) {
	case *AddElement:
		return deref(v)
	case *DeleteElements:
		return deref(v)
	case *Connect:
		return deref(v)
	case *UpdateElement:
		return deref(v)
	case *MoveElement:
		return deref(v)
	case *SelectElements:
		return deref(v)
	case *DeselectElements:
		return deref(v)
	case *ToggleSelection:
		return deref(v)
	case *HighlightElements:
		return deref(v)
	case *UpdateProperties:
		return deref(v)
	case *LoadFlow:
		return deref(v)
	case *Undo:
		return deref(v)
	case *Redo:
		return deref(v)
	case *ClearUndoRedo:
		return deref(v)
	case *StartEditSession:
		return deref(v)
	case *EndEditSession:
		return deref(v)
	case *DiscardEditSession:
		return deref(v)
	}
	return a
}

func deref[T Action](v *T) Action {
	if v == nil {
		return nil
	}
	return *v
}
