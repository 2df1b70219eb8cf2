package flow

// Builder assembles a model element by element. It is meant for fixtures,
// templates and importers; interactive edits go through the reducer.
//
//	b := flow.NewBuilder(flow.Properties{Label: "Onboarding"})
//	screen := b.Element(flow.ElementScreen, "Welcome")
//	end := b.Element(flow.ElementEnd, "End")
//	b.Link(b.Start(), screen)
//	b.Link(screen, end)
//	m, err := b.Build()
type Builder struct {
	m     *Model
	start string
}

// NewBuilder returns a builder holding a lone start element.
func NewBuilder(props Properties) *Builder {
	start := NewElement(ElementStart, "Start")
	return &Builder{
		m: &Model{
			Elements:       map[string]*Element{start.GUID: start},
			CanvasElements: []string{start.GUID},
			Properties:     props,
		},
		start: start.GUID,
	}
}

// Start returns the GUID of the start element.
func (b *Builder) Start() string { return b.start }

// Element adds a canvas element and returns its GUID.
func (b *Builder) Element(t ElementType, label string) string {
	e := NewElement(t, label)
	b.m.Elements[e.GUID] = e
	b.m.CanvasElements = append(b.m.CanvasElements, e.GUID)
	return e.GUID
}

// Child adds a branch child (outcome, wait event or scheduled path) to
// parent and returns its GUID.
func (b *Builder) Child(parent, label string) string {
	p := b.m.Elements[parent]
	c := NewElement(p.Type.ChildType(), label)
	b.m.Elements[c.GUID] = c
	p.ChildReferences = append(p.ChildReferences, c.GUID)
	return c.GUID
}

// At places element guid at the given free-form coordinates.
func (b *Builder) At(guid string, x, y float64) *Builder {
	e := b.m.Elements[guid]
	e.LocationX, e.LocationY = x, y
	return b
}

// Link connects the continuation slot of source to target.
func (b *Builder) Link(source, target string) *Builder {
	s, ok := b.m.Elements[source].ContinuationSlot()
	if !ok {
		s = Slot{Type: ConnectorRegular}
	}
	return b.LinkSlot(source, s, target)
}

// LinkBranch connects branch i of source to target.
func (b *Builder) LinkBranch(source string, i int, target string) *Builder {
	s, _ := b.m.Elements[source].BranchSlot(i)
	return b.LinkSlot(source, s, target)
}

// LinkFault connects the fault slot of source to target.
func (b *Builder) LinkFault(source, target string) *Builder {
	return b.LinkSlot(source, Slot{Type: ConnectorFault}, target)
}

// LinkSlot connects slot s of source to target.
func (b *Builder) LinkSlot(source string, s Slot, target string) *Builder {
	b.m.Connectors = append(b.m.Connectors, &Connector{
		GUID:        NewGUID(),
		Source:      source,
		Target:      target,
		Type:        s.Type,
		ChildSource: s.ChildSource,
	})
	return b
}

// Build derives the computed fields and checks the structural invariants.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Model, error) {
	m := b.m
	b.m = nil
	m.Refresh()
	if err := AssertState(m); err != nil {
		return nil, err
	}
	return m, nil
}
