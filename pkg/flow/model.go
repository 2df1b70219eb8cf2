package flow

import (
	"maps"
	"slices"
)

// Properties holds document-level settings of a flow.
type Properties struct {
	Label              string
	ProcessType        string
	Description        string
	IsAutoLayoutCanvas bool
}

// Model is the flow aggregate: the unit that is persisted, converted and
// tracked by undo/redo.
//
// The zero value is not usable - use [New] or build the maps explicitly.
type Model struct {
	Elements       map[string]*Element
	Connectors     []*Connector
	CanvasElements []string // ordered, visible top-level elements
	Properties     Properties
}

// Default free-form coordinates of a new flow.
const (
	defaultOriginX = 50
	defaultOriginY = 50
	defaultSpacing = 140
)

// New creates a flow holding only a start and an end element joined by a
// single REGULAR connector.
func New(props Properties) *Model {
	start := NewElement(ElementStart, "Start")
	start.LocationX, start.LocationY = defaultOriginX, defaultOriginY
	end := NewElement(ElementEnd, "End")
	end.LocationX, end.LocationY = defaultOriginX, defaultOriginY+defaultSpacing

	m := &Model{
		Elements: map[string]*Element{start.GUID: start, end.GUID: end},
		Connectors: []*Connector{{
			GUID:   NewGUID(),
			Source: start.GUID,
			Target: end.GUID,
			Type:   ConnectorRegular,
		}},
		CanvasElements: []string{start.GUID, end.GUID},
		Properties:     props,
	}
	m.Refresh()
	return m
}

// Clone returns a shallow copy of m: a new element map and new slices that
// share the element and connector pointers of m. Callers clone individual
// elements or connectors before changing them.
func (m *Model) Clone() *Model {
	return &Model{
		Elements:       maps.Clone(m.Elements),
		Connectors:     slices.Clone(m.Connectors),
		CanvasElements: slices.Clone(m.CanvasElements),
		Properties:     m.Properties,
	}
}

// DeepClone returns a copy of m sharing no pointers with it.
func (m *Model) DeepClone() *Model {
	c := m.Clone()
	for guid, e := range c.Elements {
		c.Elements[guid] = e.Clone()
	}
	for i, conn := range c.Connectors {
		c.Connectors[i] = conn.Clone()
	}
	return c
}

// Element returns the element with the given GUID.
func (m *Model) Element(guid string) (*Element, bool) {
	e, ok := m.Elements[guid]
	return e, ok
}

// Start returns the start element, or nil if the flow has none.
func (m *Model) Start() *Element {
	for _, e := range m.Elements {
		if e.Type == ElementStart {
			return e
		}
	}
	return nil
}

// Connector returns the connector with the given GUID and its index.
func (m *Model) Connector(guid string) (*Connector, int) {
	for i, c := range m.Connectors {
		if c.GUID == guid {
			return c, i
		}
	}
	return nil, -1
}

// ConnectorAt returns the connector occupying slot s of source, or nil.
func (m *Model) ConnectorAt(source string, s Slot) *Connector {
	for _, c := range m.Connectors {
		if c.Source == source && c.Type == s.Type && c.ChildSource == s.ChildSource {
			return c
		}
	}
	return nil
}

// Outgoing returns the connectors leaving guid, in connector order.
func (m *Model) Outgoing(guid string) []*Connector {
	var out []*Connector
	for _, c := range m.Connectors {
		if c.Source == guid {
			out = append(out, c)
		}
	}
	return out
}

// Incoming returns the connectors entering guid, in connector order.
func (m *Model) Incoming(guid string) []*Connector {
	var in []*Connector
	for _, c := range m.Connectors {
		if c.Target == guid {
			in = append(in, c)
		}
	}
	return in
}

// OutgoingIndex maps every source GUID to its outgoing connectors.
func (m *Model) OutgoingIndex() map[string][]*Connector {
	idx := make(map[string][]*Connector, len(m.Elements))
	for _, c := range m.Connectors {
		idx[c.Source] = append(idx[c.Source], c)
	}
	return idx
}

// Reachable returns the set of elements reachable from root, root included,
// following only connectors accepted by follow (all connectors when nil).
func (m *Model) Reachable(root string, follow func(*Connector) bool) map[string]bool {
	out := m.OutgoingIndex()
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range out[id] {
			if follow != nil && !follow(c) {
				continue
			}
			if !seen[c.Target] {
				seen[c.Target] = true
				queue = append(queue, c.Target)
			}
		}
	}
	return seen
}

// ParentOf returns the element owning child, or nil.
func (m *Model) ParentOf(child string) *Element {
	for _, e := range m.Elements {
		if e.ChildReferences.Contains(child) {
			return e
		}
	}
	return nil
}

// derived holds the fields Refresh recomputes for one element.
type derived struct {
	count     int
	max       int
	available []Slot
}

func (d derived) matches(e *Element) bool {
	return e.ConnectorCount == d.count &&
		e.MaxConnections == d.max &&
		slices.Equal(e.AvailableConnections, d.available)
}

func slotKey(source string, s Slot) string { return source + "|" + s.Key() }

// deriveAll computes derived fields for every element of m.
func (m *Model) deriveAll() map[string]derived {
	counts := make(map[string]int, len(m.Elements))
	occupied := make(map[string]bool, len(m.Connectors))
	for _, c := range m.Connectors {
		counts[c.Source]++
		if c.ChildSource != "" {
			counts[c.ChildSource]++
		}
		occupied[slotKey(c.Source, c.Slot())] = true
	}

	out := make(map[string]derived, len(m.Elements))
	for guid, e := range m.Elements {
		d := derived{count: counts[guid]}
		if e.Type.IsChild() {
			d.max = 1
		} else {
			slots := e.Slots()
			d.max = len(slots)
			for _, s := range slots {
				if !occupied[slotKey(guid, s)] {
					d.available = append(d.available, s)
				}
			}
		}
		out[guid] = d
	}
	return out
}

// Refresh re-derives ConnectorCount, MaxConnections and AvailableConnections
// of every element and keeps branch connector labels in sync with their
// child element labels. Only elements and connectors whose derived data
// changed are replaced, with clones, so m must be a model owned by the
// caller (typically the result of [Model.Clone]).
func (m *Model) Refresh() {
	for guid, d := range m.deriveAll() {
		e := m.Elements[guid]
		if d.matches(e) {
			continue
		}
		ne := e.Clone()
		ne.ConnectorCount = d.count
		ne.MaxConnections = d.max
		ne.AvailableConnections = d.available
		m.Elements[guid] = ne
	}

	for i, c := range m.Connectors {
		label := c.Label
		if c.ChildSource != "" {
			if child, ok := m.Elements[c.ChildSource]; ok {
				label = child.Label
			}
		} else if label == "" {
			label = defaultLabel(c.Slot())
		}
		if label != c.Label {
			nc := c.Clone()
			nc.Label = label
			m.Connectors[i] = nc
		}
	}
}

// Stats summarises a model for logs and CLI output.
type Stats struct {
	Elements   int
	Canvas     int
	Connectors int
}

// Stats returns element and connector counts of m.
func (m *Model) Stats() Stats {
	return Stats{Elements: len(m.Elements), Canvas: len(m.CanvasElements), Connectors: len(m.Connectors)}
}
