package reducer

import (
	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

func connect(m *flow.Model, a action.Connect) (*flow.Model, error) {
	src, err := canvasElement(m, a.Source)
	if err != nil {
		return nil, err
	}
	slot := flow.Slot{Type: a.ConnectorType, ChildSource: a.ChildSource}
	if !src.HasSlot(slot) {
		return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{src.GUID}, "%s has no %s slot", src.Type, slot.Key())
	}
	if c := m.ConnectorAt(src.GUID, slot); c != nil {
		return nil, flow.Violationf(flow.ErrSlotOccupied, []string{src.GUID, c.GUID}, "slot %s", slot.Key())
	}

	dst, err := canvasElement(m, a.Target)
	if err != nil {
		return nil, err
	}
	if dst.Type == flow.ElementStart {
		return nil, flow.Violationf(flow.ErrInvalidAttachment, []string{dst.GUID}, "start cannot be a connector target")
	}
	if a.ConnectorType != flow.ConnectorFault && dst.Type != flow.ElementLoop && reaches(m, dst.GUID, src.GUID) {
		return nil, flow.Violationf(flow.ErrCycle, []string{src.GUID, dst.GUID}, "%s is upstream of %s", dst.GUID, src.GUID)
	}

	ed := newEditor(m)
	ed.connect(src.GUID, slot, dst.GUID, a.Label)
	return ed.finish()
}
