package reducer

import (
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

func updateElement(m *flow.Model, a action.UpdateElement) (*flow.Model, error) {
	e, err := lookup(m, a.GUID)
	if err != nil {
		return nil, err
	}
	p := a.Patch
	if p.Branches != nil && e.Type.ChildType() == "" {
		return nil, flow.Violationf(flow.ErrInvalidBranch, []string{e.GUID}, "%s elements have no branches", e.Type)
	}

	ed := newEditor(m)
	changed := false
	set := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}

	ne := ed.mutable(e.GUID)
	set(&ne.Label, p.Label)
	set(&ne.Name, p.Name)
	set(&ne.Description, p.Description)
	if !m.Properties.IsAutoLayoutCanvas && !e.Type.IsChild() {
		if p.LocationX != nil && ne.LocationX != *p.LocationX {
			ne.LocationX, changed = *p.LocationX, true
		}
		if p.LocationY != nil && ne.LocationY != *p.LocationY {
			ne.LocationY, changed = *p.LocationY, true
		}
	}

	if p.Branches != nil {
		branched, err := replaceBranches(ed, e, p.Branches)
		if err != nil {
			return nil, err
		}
		changed = changed || branched
	}

	if !changed {
		return m, nil
	}
	ed.prune()
	return ed.finish()
}

// replaceBranches installs a new child list on element e. Kept children
// retain their GUID and connectors, removed children lose their connectors
// and new children start as open branches.
func replaceBranches(ed *editor, e *flow.Element, entries []action.Branch) (bool, error) {
	if len(entries) == 0 && e.Type != flow.ElementStart {
		return false, flow.Violationf(flow.ErrInvalidBranch, []string{e.GUID}, "%s needs at least one branch", e.Type)
	}

	var refs flow.Branches
	changed := false
	for _, entry := range entries {
		guid := entry.GUID
		if guid == "" {
			child := flow.NewElement(e.Type.ChildType(), entry.Label)
			ed.insert(child)
			guid = child.GUID
			changed = true
		} else {
			if !e.ChildReferences.Contains(guid) {
				return false, flow.Violationf(flow.ErrInvalidBranch, []string{e.GUID, guid}, "not a branch of %s", e.GUID)
			}
			if entry.Label != "" && ed.m.Elements[guid].Label != entry.Label {
				ed.mutable(guid).Label = entry.Label
				changed = true
			}
		}
		next, err := refs.Append(guid)
		if err != nil {
			return false, err
		}
		refs = next
	}

	var removed []string
	for _, old := range e.ChildReferences {
		if !refs.Contains(old) {
			removed = append(removed, old)
		}
	}
	if len(removed) == 0 && !changed && slices.Equal(e.ChildReferences, refs) {
		return false, nil
	}

	ne := ed.mutable(e.GUID)
	ne.ChildReferences = refs
	for _, child := range removed {
		delete(ed.m.Elements, child)
	}
	ed.dropConnectors(func(c *flow.Connector) bool {
		for _, child := range removed {
			if c.ChildSource == child {
				return true
			}
		}
		return false
	})

	// A start element switches between a plain REGULAR exit and an
	// IMMEDIATE path when it gains or loses scheduled paths.
	if e.Type == flow.ElementStart {
		from, to := flow.ConnectorRegular, flow.ConnectorImmediate
		if len(refs) == 0 {
			from, to = to, from
		}
		if c := ed.m.ConnectorAt(e.GUID, flow.Slot{Type: from}); c != nil && (len(e.ChildReferences) == 0) != (len(refs) == 0) {
			ed.updateConnector(c.GUID, func(c *flow.Connector) {
				c.Type = to
				c.Label = ""
			})
		}
	}
	return true, nil
}
