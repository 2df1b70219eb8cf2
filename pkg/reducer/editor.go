package reducer

import (
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// editor is a copy-on-write working copy of a model. Elements and connectors
// are cloned on first write; everything untouched keeps its identity with
// the input model.
type editor struct {
	m         *flow.Model
	ownedElem map[string]bool
	ownedConn map[string]bool
}

func newEditor(m *flow.Model) *editor {
	return &editor{
		m:         m.Clone(),
		ownedElem: make(map[string]bool),
		ownedConn: make(map[string]bool),
	}
}

// mutable returns a writable copy of element guid.
func (ed *editor) mutable(guid string) *flow.Element {
	e := ed.m.Elements[guid]
	if ed.ownedElem[guid] {
		return e
	}
	e = e.Clone()
	ed.m.Elements[guid] = e
	ed.ownedElem[guid] = true
	return e
}

// insert adds a freshly built element. Canvas elements are appended to the
// canvas list.
func (ed *editor) insert(e *flow.Element) {
	ed.m.Elements[e.GUID] = e
	ed.ownedElem[e.GUID] = true
	if !e.Type.IsChild() {
		ed.m.CanvasElements = append(ed.m.CanvasElements, e.GUID)
	}
}

func (ed *editor) connect(source string, s flow.Slot, target, label string) *flow.Connector {
	c := &flow.Connector{
		GUID:        flow.NewGUID(),
		Source:      source,
		Target:      target,
		Type:        s.Type,
		ChildSource: s.ChildSource,
		Label:       label,
	}
	ed.m.Connectors = append(ed.m.Connectors, c)
	ed.ownedConn[c.GUID] = true
	return c
}

// retarget points connector guid at target, keeping its GUID.
func (ed *editor) retarget(guid, target string) {
	ed.updateConnector(guid, func(c *flow.Connector) { c.Target = target })
}

func (ed *editor) updateConnector(guid string, fn func(*flow.Connector)) {
	c, i := ed.m.Connector(guid)
	if c == nil {
		return
	}
	if !ed.ownedConn[guid] {
		c = c.Clone()
		ed.m.Connectors[i] = c
		ed.ownedConn[guid] = true
	}
	fn(c)
}

func (ed *editor) dropConnectors(drop func(*flow.Connector) bool) {
	ed.m.Connectors = slices.DeleteFunc(ed.m.Connectors, drop)
}

// remove deletes elements together with their child elements and every
// connector touching them.
func (ed *editor) remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[string]bool)
	for _, id := range ids {
		e, ok := ed.m.Elements[id]
		if !ok {
			continue
		}
		gone[id] = true
		for _, child := range e.ChildReferences {
			gone[child] = true
		}
	}
	for id := range gone {
		delete(ed.m.Elements, id)
	}
	ed.m.CanvasElements = slices.DeleteFunc(ed.m.CanvasElements, func(id string) bool { return gone[id] })
	ed.dropConnectors(func(c *flow.Connector) bool {
		return gone[c.Source] || gone[c.Target] || (c.ChildSource != "" && gone[c.ChildSource])
	})
}

// prune removes canvas elements no longer reachable from start.
func (ed *editor) prune() {
	start := ed.m.Start()
	if start == nil {
		return
	}
	reached := ed.m.Reachable(start.GUID, nil)
	var orphans []string
	for _, id := range ed.m.CanvasElements {
		if !reached[id] {
			orphans = append(orphans, id)
		}
	}
	ed.remove(orphans...)
}

// finish rejects edits that close a cycle on anything but a loop, then
// re-derives computed fields and, on auto-layout canvases, the navigation
// data.
func (ed *editor) finish() (*flow.Model, error) {
	if src, dst, ok := flow.FindCycle(ed.m); ok {
		return nil, flow.Violationf(flow.ErrCycle, []string{src, dst}, "edit closes a cycle on %s", dst)
	}
	ed.m.Refresh()
	if ed.m.Properties.IsAutoLayoutCanvas {
		return layout.Annotate(ed.m)
	}
	return ed.m, nil
}

// reaches reports whether to can be reached from from over non-fault
// connectors of m.
func reaches(m *flow.Model, from, to string) bool {
	return m.Reachable(from, func(c *flow.Connector) bool { return c.Type != flow.ConnectorFault })[to]
}

// navOf returns the navigation data of guid, annotating a free-form model on
// demand. The annotated copy is cached in *cache.
func navOf(m *flow.Model, guid string, cache **flow.Model) *flow.Nav {
	if e, ok := m.Elements[guid]; ok && e.Nav != nil {
		return e.Nav
	}
	if *cache == nil {
		annotated, err := layout.Annotate(m)
		if err != nil {
			return nil
		}
		*cache = annotated
	}
	if e, ok := (*cache).Elements[guid]; ok {
		return e.Nav
	}
	return nil
}

// mergeTarget returns the element a branch of parent flows into once it is
// done: the parent's merge point, the enclosing loop for loop bodies, or the
// merge point of an enclosing branch when parent merges outward. It returns
// "" for fault branches and terminal elements.
func mergeTarget(m *flow.Model, parent string, cache **flow.Model) string {
	for id := parent; id != ""; {
		e, ok := m.Elements[id]
		if !ok {
			return ""
		}
		n := navOf(m, id, cache)
		if n == nil {
			return ""
		}
		if e.Type == flow.ElementLoop && id == parent {
			return id
		}
		if n.Next != "" {
			return n.Next
		}
		if n.IsTerminal {
			return ""
		}

		head := id
		for {
			hn := navOf(m, head, cache)
			if hn == nil || hn.Prev == "" {
				break
			}
			head = hn.Prev
		}
		hn := navOf(m, head, cache)
		if hn == nil || hn.Parent == "" || hn.ChildIndex == flow.FaultIndex {
			return ""
		}
		if owner := m.Elements[hn.Parent]; owner != nil && owner.Type == flow.ElementLoop {
			return owner.GUID
		}
		id = hn.Parent
	}
	return ""
}
