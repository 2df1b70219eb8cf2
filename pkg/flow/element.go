package flow

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// ElementType tags the kind of a flow element.
type ElementType string

const (
	ElementStart         ElementType = "START"
	ElementEnd           ElementType = "END"
	ElementRoot          ElementType = "ROOT" // reserved for documents carrying a canvas root
	ElementDecision      ElementType = "DECISION"
	ElementOutcome       ElementType = "OUTCOME"
	ElementLoop          ElementType = "LOOP"
	ElementWait          ElementType = "WAIT"
	ElementWaitEvent     ElementType = "WAIT_EVENT"
	ElementScreen        ElementType = "SCREEN"
	ElementAssignment    ElementType = "ASSIGNMENT"
	ElementRecordCreate  ElementType = "RECORD_CREATE"
	ElementRecordUpdate  ElementType = "RECORD_UPDATE"
	ElementRecordQuery   ElementType = "RECORD_QUERY"
	ElementRecordDelete  ElementType = "RECORD_DELETE"
	ElementSubflow       ElementType = "SUBFLOW"
	ElementActionCall    ElementType = "ACTION_CALL"
	ElementScheduledPath ElementType = "SCHEDULED_PATH"
)

var elementTypes = map[ElementType]struct{}{
	ElementStart: {}, ElementEnd: {}, ElementRoot: {}, ElementDecision: {},
	ElementOutcome: {}, ElementLoop: {}, ElementWait: {}, ElementWaitEvent: {},
	ElementScreen: {}, ElementAssignment: {}, ElementRecordCreate: {},
	ElementRecordUpdate: {}, ElementRecordQuery: {}, ElementRecordDelete: {},
	ElementSubflow: {}, ElementActionCall: {}, ElementScheduledPath: {},
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	_, ok := elementTypes[t]
	return ok
}

// IsChild reports whether t is a branch child type (outcome, wait event or
// scheduled path). Child elements are never canvas elements and never own
// connectors directly.
func (t ElementType) IsChild() bool {
	return t == ElementOutcome || t == ElementWaitEvent || t == ElementScheduledPath
}

// ChildType returns the child element type owned by t, or "" if t owns none.
func (t ElementType) ChildType() ElementType {
	switch t {
	case ElementDecision:
		return ElementOutcome
	case ElementWait:
		return ElementWaitEvent
	case ElementStart:
		return ElementScheduledPath
	}
	return ""
}

// SupportsFault reports whether elements of type t expose a FAULT slot.
func (t ElementType) SupportsFault() bool {
	switch t {
	case ElementRecordCreate, ElementRecordUpdate, ElementRecordQuery,
		ElementRecordDelete, ElementSubflow, ElementActionCall, ElementWait:
		return true
	}
	return false
}

// Config holds transient UI flags. It is not persisted business data and
// selection changes never touch topology.
type Config struct {
	IsSelected    bool
	IsHighlighted bool
	NotSelectable bool
}

// Selectable reports whether the element may be selected on the canvas.
func (c Config) Selectable() bool { return !c.NotSelectable }

// FaultIndex is the Nav.ChildIndex recorded for the head of a fault branch.
const FaultIndex = -1

// Nav is the placement of an element on an auto-layout canvas. It is derived
// from connector topology and only present on auto-layout models.
type Nav struct {
	Prev       string // previous element in the same branch
	Next       string // next element in the same branch (the merge point for branching elements)
	Parent     string // owning element when this element heads a branch
	ChildIndex int    // branch index within Parent, or FaultIndex

	Children   []string // branch heads in branch order, "" for an empty branch
	IsTerminal bool     // no branch merges back
	Fault      string   // head of the fault branch

	GoTos        map[string]string // slot key -> target for jumps that do not nest
	IncomingGoTo []string          // sources of go-to jumps landing here
}

// Clone returns a deep copy of n.
func (n *Nav) Clone() *Nav {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = slices.Clone(n.Children)
	c.IncomingGoTo = slices.Clone(n.IncomingGoTo)
	if n.GoTos != nil {
		c.GoTos = maps.Clone(n.GoTos)
	}
	return &c
}

// Element is a node of the flow graph.
//
// ConnectorCount, MaxConnections and AvailableConnections are derived fields
// maintained by [Model.Refresh]; they are stored so consumers can read them
// without walking the connector list.
type Element struct {
	GUID        string
	Type        ElementType
	Label       string
	Name        string // unique developer name, validated by collaborators
	Description string

	LocationX float64
	LocationY float64

	ConnectorCount       int
	MaxConnections       int
	ChildReferences      Branches
	AvailableConnections []Slot

	Config Config
	Nav    *Nav
}

// NewGUID returns a fresh globally unique identifier.
func NewGUID() string { return uuid.NewString() }

// NewElement creates an element of type t with a fresh GUID.
func NewElement(t ElementType, label string) *Element {
	return &Element{GUID: NewGUID(), Type: t, Label: label, Name: label}
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	c := *e
	c.ChildReferences = slices.Clone(e.ChildReferences)
	c.AvailableConnections = slices.Clone(e.AvailableConnections)
	c.Nav = e.Nav.Clone()
	return &c
}

// IsBranching reports whether e splits the flow into named branches that
// merge again: decisions, waits and starts with scheduled paths.
func (e *Element) IsBranching() bool {
	switch e.Type {
	case ElementDecision, ElementWait:
		return true
	case ElementStart:
		return len(e.ChildReferences) > 0
	}
	return false
}

// Slots returns the ordered outgoing attachment points of e.
func (e *Element) Slots() []Slot {
	var slots []Slot
	switch e.Type {
	case ElementEnd, ElementRoot:
		return nil
	case ElementLoop:
		return []Slot{{Type: ConnectorLoopNext}, {Type: ConnectorLoopEnd}}
	case ElementDecision, ElementWait:
		for _, c := range e.ChildReferences {
			slots = append(slots, Slot{Type: ConnectorRegular, ChildSource: c})
		}
		slots = append(slots, Slot{Type: ConnectorDefault})
	case ElementStart:
		if len(e.ChildReferences) == 0 {
			return []Slot{{Type: ConnectorRegular}}
		}
		for _, c := range e.ChildReferences {
			slots = append(slots, Slot{Type: ConnectorRegular, ChildSource: c})
		}
		slots = append(slots, Slot{Type: ConnectorImmediate})
	default:
		if e.Type.IsChild() {
			return nil
		}
		slots = append(slots, Slot{Type: ConnectorRegular})
	}
	if e.Type.SupportsFault() {
		slots = append(slots, Slot{Type: ConnectorFault})
	}
	return slots
}

// HasSlot reports whether s is one of e's slots.
func (e *Element) HasSlot(s Slot) bool {
	return slices.Contains(e.Slots(), s)
}

// BranchCount returns the number of branches of e: named branches plus the
// default branch for branching elements, one body branch for loops, and zero
// for everything else.
func (e *Element) BranchCount() int {
	switch {
	case e.Type == ElementLoop:
		return 1
	case e.IsBranching():
		return len(e.ChildReferences) + 1
	}
	return 0
}

// BranchSlot returns the slot addressed by branch index i.
func (e *Element) BranchSlot(i int) (Slot, bool) {
	if i < 0 || i >= e.BranchCount() {
		return Slot{}, false
	}
	switch e.Type {
	case ElementLoop:
		return Slot{Type: ConnectorLoopNext}, true
	case ElementStart:
		if i == len(e.ChildReferences) {
			return Slot{Type: ConnectorImmediate}, true
		}
	default:
		if i == len(e.ChildReferences) {
			return Slot{Type: ConnectorDefault}, true
		}
	}
	return Slot{Type: ConnectorRegular, ChildSource: e.ChildReferences[i]}, true
}

// BranchIndex returns the branch index of slot s, or -1.
func (e *Element) BranchIndex(s Slot) int {
	for i := range e.BranchCount() {
		if bs, _ := e.BranchSlot(i); bs == s {
			return i
		}
	}
	return -1
}

// ContinuationSlot returns the slot that continues the flow after e:
// REGULAR for single-path elements and LOOP_END for loops. Branching
// elements, ends and child elements have none.
func (e *Element) ContinuationSlot() (Slot, bool) {
	switch {
	case e.Type == ElementLoop:
		return Slot{Type: ConnectorLoopEnd}, true
	case e.IsBranching(), e.Type == ElementEnd, e.Type == ElementRoot, e.Type.IsChild():
		return Slot{}, false
	}
	return Slot{Type: ConnectorRegular}, true
}
