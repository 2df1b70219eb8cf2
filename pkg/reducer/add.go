package reducer

import (
	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// defaultBranchLabel names the single branch created for a new decision or
// wait when the caller names none.
var defaultBranchLabel = map[flow.ElementType]string{
	flow.ElementDecision: "Outcome 1",
	flow.ElementWait:     "Event 1",
}

// attachment resolves the slot a new element hangs from.
func attachment(m *flow.Model, pos action.Position) (string, flow.Slot, error) {
	switch {
	case pos.Prev != "":
		prev, err := canvasElement(m, pos.Prev)
		if err != nil {
			return "", flow.Slot{}, err
		}
		s, ok := prev.ContinuationSlot()
		if !ok {
			return "", flow.Slot{}, flow.Violationf(flow.ErrInvalidAttachment, []string{prev.GUID},
				"%s has no continuation; address one of its branches with parent and childIndex", prev.Type)
		}
		return prev.GUID, s, nil

	case pos.Parent != "":
		parent, err := canvasElement(m, pos.Parent)
		if err != nil {
			return "", flow.Slot{}, err
		}
		if pos.ChildIndex == flow.FaultIndex {
			if !parent.Type.SupportsFault() {
				return "", flow.Slot{}, flow.Violationf(flow.ErrInvalidAttachment, []string{parent.GUID}, "%s has no fault branch", parent.Type)
			}
			return parent.GUID, flow.Slot{Type: flow.ConnectorFault}, nil
		}
		s, ok := parent.BranchSlot(pos.ChildIndex)
		if !ok {
			return "", flow.Slot{}, flow.Violationf(flow.ErrInvalidBranch, []string{parent.GUID},
				"branch %d out of range (%s has %d)", pos.ChildIndex, parent.Type, parent.BranchCount())
		}
		return parent.GUID, s, nil
	}
	return "", flow.Slot{}, flow.Violationf(flow.ErrInvalidAttachment, nil, "position needs prev or parent")
}

func addElement(m *flow.Model, a action.AddElement) (*flow.Model, error) {
	spec := a.Element
	t := spec.Type
	if !t.Valid() || t.IsChild() || t == flow.ElementStart || t == flow.ElementRoot {
		return nil, flow.Violationf(flow.ErrInvalidElementType, nil, "cannot add %q", t)
	}
	guid := spec.GUID
	if guid == "" {
		guid = flow.NewGUID()
	}
	if _, dup := m.Elements[guid]; dup {
		return nil, &flow.Violation{Err: flow.ErrDuplicateGUID, Guids: []string{guid}}
	}

	source, slot, err := attachment(m, a.Position)
	if err != nil {
		return nil, err
	}
	next := a.Position.Next
	if next != "" {
		target, err := canvasElement(m, next)
		if err != nil {
			return nil, err
		}
		if target.Type == flow.ElementStart {
			return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{next}, "start cannot follow another element")
		}
	}

	ed := newEditor(m)
	existing := m.ConnectorAt(source, slot)
	cont := next
	switch {
	case existing != nil:
		if next != "" && existing.Target != next {
			return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{source, existing.Target, next},
				"slot %s leads to %s, not %s", slot.Key(), existing.Target, next)
		}
		cont = existing.Target
		if t == flow.ElementEnd {
			return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{source}, "an end element cannot be inserted before %s", cont)
		}
		ed.retarget(existing.GUID, guid)

	default:
		if next == "" && t != flow.ElementEnd && a.Position.Parent != "" && m.Properties.IsAutoLayoutCanvas {
			var cache *flow.Model
			cont = mergeTarget(m, a.Position.Parent, &cache)
		}
		if next != "" && t == flow.ElementEnd {
			return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{next}, "an end element cannot continue to %s", next)
		}
		if next != "" && reaches(m, next, source) && m.Elements[next].Type != flow.ElementLoop {
			return nil, flow.Violationf(flow.ErrCycle, []string{source, next}, "%s is upstream of the insertion point", next)
		}
		ed.connect(source, slot, guid, "")
	}

	e := &flow.Element{
		GUID:        guid,
		Type:        t,
		Label:       spec.Label,
		Name:        spec.Name,
		Description: spec.Description,
	}
	if e.Name == "" {
		e.Name = e.Label
	}
	if !m.Properties.IsAutoLayoutCanvas {
		e.LocationX, e.LocationY = spec.LocationX, spec.LocationY
	}
	if ct := t.ChildType(); ct != "" {
		labels := spec.Branches
		if len(labels) == 0 {
			labels = []string{defaultBranchLabel[t]}
		}
		for _, label := range labels {
			child := flow.NewElement(ct, label)
			ed.insert(child)
			e.ChildReferences = append(e.ChildReferences, child.GUID)
		}
	}
	ed.insert(e)

	switch {
	case t == flow.ElementLoop:
		ed.connect(guid, flow.Slot{Type: flow.ConnectorLoopNext}, guid, "")
		if cont != "" {
			ed.connect(guid, flow.Slot{Type: flow.ConnectorLoopEnd}, cont, "")
		}
	case cont == "":
	case e.IsBranching():
		ed.connect(guid, flow.Slot{Type: flow.ConnectorDefault}, cont, "")
	default:
		s, ok := e.ContinuationSlot()
		if !ok {
			return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{guid}, "%s has no continuation slot", t)
		}
		ed.connect(guid, s, cont, "")
	}
	return ed.finish()
}
