package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Options controls the coordinates produced by [ToFreeForm].
type Options struct {
	ColumnWidth float64 // horizontal distance between branch columns
	RowHeight   float64 // vertical distance between consecutive elements
	OriginX     float64 // X coordinate of the leftmost column
	OriginY     float64 // Y coordinate of the start element
}

// DefaultOptions returns the default grid used when converting to free-form.
func DefaultOptions() Options {
	return Options{ColumnWidth: 220, RowHeight: 140, OriginX: 50, OriginY: 50}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = d.ColumnWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	return o
}

// ToAutoLayout converts m to the auto-layout representation: navigation data
// is derived from the connectors, coordinates are zeroed and connectors are
// put in canonical order (placement order of their source, then slot order).
// Elements and connectors are otherwise left untouched. m is not modified.
func ToAutoLayout(m *flow.Model) (*flow.Model, error) {
	out, seq, err := annotate(m)
	if err != nil {
		return nil, err
	}
	for guid, e := range out.Elements {
		if e.LocationX == 0 && e.LocationY == 0 {
			continue
		}
		if e == m.Elements[guid] {
			e = e.Clone()
		}
		e.LocationX, e.LocationY = 0, 0
		out.Elements[guid] = e
	}
	sortConnectors(out, seq)
	out.Properties.IsAutoLayoutCanvas = true
	return out, nil
}

// sortConnectors orders connectors by the placement rank of their source and
// then by slot order. Connectors of unplaced sources go last, by GUID.
func sortConnectors(m *flow.Model, seq []string) {
	rank := make(map[string]int, len(seq))
	for i, id := range seq {
		rank[id] = i
	}
	slotIndex := func(c *flow.Connector) int {
		if e, ok := m.Elements[c.Source]; ok {
			return slices.Index(e.Slots(), c.Slot())
		}
		return -1
	}
	slices.SortStableFunc(m.Connectors, func(x, y *flow.Connector) int {
		rx, okx := rank[x.Source]
		ry, oky := rank[y.Source]
		switch {
		case okx && !oky:
			return -1
		case !okx && oky:
			return 1
		case !okx && !oky:
			return cmp.Compare(x.GUID, y.GUID)
		}
		if c := cmp.Compare(rx, ry); c != 0 {
			return c
		}
		return cmp.Compare(slotIndex(x), slotIndex(y))
	})
}

// ToFreeForm converts m to the free-form representation. Coordinates come
// from a deterministic tree layout of the navigation data: chains run top to
// bottom, branches are laid side by side below their owner and fault
// branches sit to the right of the element that raises them. Navigation data
// is dropped. Models without navigation data are annotated first, so
// ToFreeForm also re-lays out a free-form model.
func ToFreeForm(m *flow.Model, opts Options) (*flow.Model, error) {
	auto, seq, err := annotate(m)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	p := &positioner{m: auto, size: make(map[string]extent), pos: make(map[string]point)}
	col := 0.0
	for _, id := range seq {
		n := auto.Elements[id].Nav
		if n.Prev != "" || n.Parent != "" {
			continue
		}
		p.assign(id, col, 0)
		col += float64(p.chainExtent(id).w) + 1
	}

	out := m.Clone()
	for guid, e := range out.Elements {
		if e.Type.IsChild() {
			if e.Nav != nil {
				e = e.Clone()
				e.Nav = nil
				out.Elements[guid] = e
			}
			continue
		}
		pt := p.pos[guid]
		x := opts.OriginX + pt.col*opts.ColumnWidth
		y := opts.OriginY + float64(pt.row)*opts.RowHeight
		if e.Nav == nil && e.LocationX == x && e.LocationY == y {
			continue
		}
		ne := e.Clone()
		ne.Nav = nil
		ne.LocationX, ne.LocationY = x, y
		out.Elements[guid] = ne
	}
	out.Properties.IsAutoLayoutCanvas = false
	return out, nil
}

type extent struct {
	w, h int
	main int // width without the fault branch
}

type point struct {
	col float64
	row int
}

type positioner struct {
	m    *flow.Model
	size map[string]extent
	pos  map[string]point
}

func (p *positioner) nav(id string) *flow.Nav { return p.m.Elements[id].Nav }

func (p *positioner) chainExtent(head string) extent {
	var ext extent
	for x := head; x != ""; x = p.nav(x).Next {
		e := p.elementExtent(x)
		ext.w = max(ext.w, e.w)
		ext.main = max(ext.main, e.main)
		ext.h += e.h
	}
	return ext
}

func (p *positioner) branchWidth(head string) int {
	if head == "" {
		return 1
	}
	return max(p.chainExtent(head).w, 1)
}

func (p *positioner) elementExtent(id string) extent {
	if e, ok := p.size[id]; ok {
		return e
	}
	n := p.nav(id)
	ext := extent{w: 1, h: 1, main: 1}
	if len(n.Children) > 0 {
		w, h := 0, 0
		for _, c := range n.Children {
			w += p.branchWidth(c)
			if c != "" {
				h = max(h, p.chainExtent(c).h)
			}
		}
		ext = extent{w: w, h: h + 2, main: w}
	}
	if n.Fault != "" {
		f := p.chainExtent(n.Fault)
		ext.w += f.w
		ext.h = max(ext.h, f.h)
	}
	p.size[id] = ext
	return ext
}

// assign places the chain starting at head with its left edge at col and its
// first element at row. Elements of one chain share a center column.
func (p *positioner) assign(head string, col float64, row int) {
	chain := p.chainExtent(head)
	center := col + float64(chain.main-1)/2
	for x := head; x != ""; x = p.nav(x).Next {
		ext := p.elementExtent(x)
		left := center - float64(ext.main-1)/2
		p.pos[x] = point{col: center, row: row}

		n := p.nav(x)
		cx := left
		for _, c := range n.Children {
			if c != "" {
				p.assign(c, cx, row+1)
			}
			cx += float64(p.branchWidth(c))
		}
		if n.Fault != "" {
			p.assign(n.Fault, left+float64(ext.main), row)
		}
		row += ext.h
	}
}
