package layout

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Annotate returns a copy of m in which every canvas element carries the
// [flow.Nav] derived from the connector topology. Elements whose navigation
// data is unchanged keep their pointer identity. Child elements never carry
// navigation data.
func Annotate(m *flow.Model) (*flow.Model, error) {
	out, _, err := annotate(m)
	return out, err
}

func annotate(m *flow.Model) (*flow.Model, []string, error) {
	if m == nil {
		return nil, nil, &flow.Violation{Err: flow.ErrNilModel}
	}
	start := m.Start()
	if start == nil {
		return nil, nil, &flow.Violation{Err: flow.ErrNoStart}
	}

	a := newAnnotator(m)
	a.classify(start.GUID)
	a.place(start.GUID, "", "", 0, "")
	a.placeFaults()
	for _, id := range m.CanvasElements {
		if !a.placed[id] {
			a.place(id, "", "", 0, "")
			a.placeFaults()
		}
	}
	a.applyGoTos()

	c := m.Clone()
	for guid, e := range c.Elements {
		nav := a.nav[guid]
		if navEqual(e.Nav, nav) {
			continue
		}
		ne := e.Clone()
		ne.Nav = nav
		c.Elements[guid] = ne
	}
	return c, a.seq, nil
}

type pendingFault struct {
	owner string
	conn  *flow.Connector
}

type goTo struct {
	source string
	slot   flow.Slot
	target string
}

type annotator struct {
	m     *flow.Model
	out   map[string][]*flow.Connector // slot-ordered outgoing connectors
	back  map[string]bool              // connector guid -> back edge
	rank  map[string]int               // topological rank (reverse postorder)
	nav   map[string]*flow.Nav
	seq   []string // placement order
	gotos []goTo

	placed   map[string]bool
	reserved map[string]bool // merge points of enclosing branches
	faults   []pendingFault
}

func newAnnotator(m *flow.Model) *annotator {
	out := m.OutgoingIndex()
	for id, conns := range out {
		e, ok := m.Elements[id]
		if !ok {
			continue
		}
		slots := e.Slots()
		slices.SortStableFunc(conns, func(x, y *flow.Connector) int {
			return cmp.Compare(slices.Index(slots, x.Slot()), slices.Index(slots, y.Slot()))
		})
	}
	return &annotator{
		m:        m,
		out:      out,
		back:     make(map[string]bool),
		rank:     make(map[string]int),
		nav:      make(map[string]*flow.Nav),
		placed:   make(map[string]bool),
		reserved: make(map[string]bool),
	}
}

// classify marks back edges and ranks elements in reverse postorder with a
// white/gray/black depth-first search in slot order.
func (a *annotator) classify(root string) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(a.m.Elements))
	var post []string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, c := range a.out[id] {
			switch color[c.Target] {
			case white:
				dfs(c.Target)
			case gray:
				a.back[c.GUID] = true
			}
		}
		color[id] = black
		post = append(post, id)
	}

	dfs(root)
	for _, id := range a.m.CanvasElements {
		if color[id] == white {
			dfs(id)
		}
	}
	for i, id := range post {
		a.rank[id] = len(post) - 1 - i
	}
}

func (a *annotator) conn(source string, s flow.Slot) *flow.Connector {
	for _, c := range a.out[source] {
		if c.Slot() == s {
			return c
		}
	}
	return nil
}

// follow interprets connector c inside a branch expected to merge into end.
// It returns the element that continues the branch, or "" when the branch
// ends at c (open slot, merge, or go-to jump).
func (a *annotator) follow(c *flow.Connector, end string) string {
	if c == nil {
		return ""
	}
	t := c.Target
	if end != "" && t == end {
		return ""
	}
	if a.back[c.GUID] || a.placed[t] || a.reserved[t] {
		a.gotos = append(a.gotos, goTo{source: c.Source, slot: c.Slot(), target: t})
		return ""
	}
	return t
}

// place lays out the chain starting at x. prev, parent and index describe
// where x sits; end is the element the chain merges into.
func (a *annotator) place(x, prev, parent string, index int, end string) {
	for x != "" {
		a.placed[x] = true
		a.seq = append(a.seq, x)
		nav := &flow.Nav{Prev: prev, Parent: parent, ChildIndex: index}
		a.nav[x] = nav
		e := a.m.Elements[x]

		if fc := a.conn(x, flow.Slot{Type: flow.ConnectorFault}); fc != nil {
			a.faults = append(a.faults, pendingFault{owner: x, conn: fc})
		}

		var next string
		switch {
		case e.Type == flow.ElementLoop:
			nav.Children = []string{""}
			a.reserved[x] = true
			if h := a.follow(a.conn(x, flow.Slot{Type: flow.ConnectorLoopNext}), x); h != "" {
				nav.Children[0] = h
				a.place(h, "", x, 0, x)
			}
			delete(a.reserved, x)
			next = a.follow(a.conn(x, flow.Slot{Type: flow.ConnectorLoopEnd}), end)

		case e.IsBranching():
			merge, exits := a.mergeOf(e, end)
			inner := merge
			if merge == "" && exits {
				inner = end
			}
			if merge != "" {
				a.reserved[merge] = true
			}
			nav.Children = make([]string, e.BranchCount())
			for i := range nav.Children {
				s, _ := e.BranchSlot(i)
				if h := a.follow(a.conn(x, s), inner); h != "" {
					nav.Children[i] = h
					a.place(h, "", x, i, inner)
				}
			}
			if merge != "" {
				delete(a.reserved, merge)
				if !a.placed[merge] {
					next = merge
				}
			} else if !exits {
				nav.IsTerminal = true
			}

		default:
			if s, ok := e.ContinuationSlot(); ok {
				next = a.follow(a.conn(x, s), end)
			}
		}

		nav.Next = next
		prev, parent, index = x, "", 0
		x = next
	}
}

// placeFaults lays out deferred fault branches. They are placed after the
// main chains so that a fault connector never claims an element that the
// regular flow also reaches.
func (a *annotator) placeFaults() {
	for len(a.faults) > 0 {
		f := a.faults[0]
		a.faults = a.faults[1:]
		if h := a.follow(f.conn, ""); h != "" {
			a.nav[f.owner].Fault = h
			a.place(h, "", f.owner, flow.FaultIndex, "")
		}
	}
}

// mergeOf finds the merge point of branching element e nested in a branch
// that merges into end. It returns the merge element, or "" together with
// whether the branches leave towards end instead.
func (a *annotator) mergeOf(e *flow.Element, end string) (string, bool) {
	var heads []string
	connected, exits := 0, 0
	for i := range e.BranchCount() {
		s, _ := e.BranchSlot(i)
		c := a.conn(e.GUID, s)
		if c == nil {
			continue
		}
		connected++
		switch {
		case end != "" && c.Target == end:
			exits++
		case a.back[c.GUID] || a.placed[c.Target] || a.reserved[c.Target]:
		default:
			heads = append(heads, c.Target)
		}
	}

	if connected == 1 {
		if exits == 1 {
			return "", true
		}
		if len(heads) == 1 {
			return heads[0], false
		}
		return "", false
	}

	counts := make(map[string]int)
	for _, h := range heads {
		reach, _ := a.reach(h, end, "")
		for id := range reach {
			counts[id]++
		}
	}
	best := ""
	for id, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && a.rank[id] < a.rank[best]) {
			best = id
		}
	}
	if best != "" {
		for _, h := range heads {
			if h == best {
				continue
			}
			if _, out := a.reach(h, end, best); out {
				exits++
			}
		}
	}

	switch {
	case best != "" && counts[best] >= 2 && counts[best] >= exits:
		return best, false
	case exits > 0:
		return "", true
	}
	return "", false
}

// reach returns the elements reachable from head without fault connectors,
// back edges, or passing through end, avoid, placed or reserved elements. The
// boolean reports whether end was reached.
func (a *annotator) reach(head, end, avoid string) (map[string]bool, bool) {
	seen := map[string]bool{head: true}
	queue := []string{head}
	exited := false
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range a.out[id] {
			if c.Type == flow.ConnectorFault || a.back[c.GUID] {
				continue
			}
			t := c.Target
			switch {
			case end != "" && t == end:
				exited = true
			case t == avoid, seen[t], a.placed[t], a.reserved[t]:
			default:
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}
	return seen, exited
}

func (a *annotator) applyGoTos() {
	for _, g := range a.gotos {
		src, ok := a.nav[g.source]
		if !ok {
			continue
		}
		if src.GoTos == nil {
			src.GoTos = make(map[string]string)
		}
		src.GoTos[g.slot.Key()] = g.target
		if dst, ok := a.nav[g.target]; ok && !slices.Contains(dst.IncomingGoTo, g.source) {
			dst.IncomingGoTo = append(dst.IncomingGoTo, g.source)
		}
	}
	for _, n := range a.nav {
		slices.Sort(n.IncomingGoTo)
	}
}

func navEqual(x, y *flow.Nav) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.Prev == y.Prev &&
		x.Next == y.Next &&
		x.Parent == y.Parent &&
		x.ChildIndex == y.ChildIndex &&
		x.IsTerminal == y.IsTerminal &&
		x.Fault == y.Fault &&
		slices.Equal(x.Children, y.Children) &&
		slices.Equal(x.IncomingGoTo, y.IncomingGoTo) &&
		maps.Equal(x.GoTos, y.GoTos)
}
