package flow

import (
	"slices"
	"sort"
)

// AssertState checks the structural invariants of m and returns nil if they
// hold. It verifies, in order:
//
//  1. Elements: keys match GUIDs, types are known, exactly one start, child
//     references resolve to child elements owned by a single parent.
//  2. Connectors: unique GUIDs, existing endpoints, a slot declared by the
//     source, at most one connector per (source, child source, type), and a
//     LOOP_NEXT connector on every loop.
//  3. Derived fields: ConnectorCount, MaxConnections and AvailableConnections
//     match the connector list.
//  4. Canvas: CanvasElements lists every non-child element exactly once.
//  5. Topology: every canvas element is reachable from start, and the graph
//     without FAULT connectors has no cycle except those closing on a loop.
//
// The first violation is returned as a [*Violation]. AssertState is a
// debug/test-time assertion meant to catch reducer bugs; it never modifies m.
func AssertState(m *Model) error {
	if m == nil {
		return &Violation{Err: ErrNilModel}
	}
	for _, check := range []func(*Model) error{
		checkElements,
		checkConnectors,
		checkDerived,
		checkCanvas,
		checkTopology,
	} {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}

func sortedGUIDs(m *Model) []string {
	ids := make([]string, 0, len(m.Elements))
	for id := range m.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func checkElements(m *Model) error {
	var starts []string
	owner := make(map[string]string)

	for _, id := range sortedGUIDs(m) {
		e := m.Elements[id]
		if e == nil || e.GUID != id {
			return Violationf(ErrDuplicateGUID, []string{id}, "element stored under a foreign key")
		}
		if !e.Type.Valid() {
			return Violationf(ErrInvalidElementType, []string{id}, "unknown type %q", e.Type)
		}
		if e.Type == ElementStart {
			starts = append(starts, id)
		}
		if len(e.ChildReferences) > 0 && e.Type.ChildType() == "" {
			return Violationf(ErrInvalidBranch, []string{id}, "%s elements cannot own branches", e.Type)
		}
		for _, ref := range e.ChildReferences {
			child, ok := m.Elements[ref]
			if !ok {
				return Violationf(ErrInvalidBranch, []string{id, ref}, "child reference does not resolve")
			}
			if child.Type != e.Type.ChildType() {
				return Violationf(ErrInvalidBranch, []string{id, ref}, "child of type %s under %s", child.Type, e.Type)
			}
			if prev, dup := owner[ref]; dup {
				return Violationf(ErrInvalidBranch, []string{prev, id, ref}, "child owned twice")
			}
			owner[ref] = id
		}
	}

	switch {
	case len(starts) == 0:
		return &Violation{Err: ErrNoStart}
	case len(starts) > 1:
		return &Violation{Err: ErrMultipleStarts, Guids: starts}
	}

	for _, id := range sortedGUIDs(m) {
		if m.Elements[id].Type.IsChild() {
			if _, ok := owner[id]; !ok {
				return Violationf(ErrInvalidBranch, []string{id}, "child element has no parent")
			}
		}
	}
	return nil
}

func checkConnectors(m *Model) error {
	seen := make(map[string]bool, len(m.Connectors))
	slots := make(map[string]string, len(m.Connectors))
	loopNext := make(map[string]bool)

	for _, c := range m.Connectors {
		if c.GUID == "" || seen[c.GUID] {
			return Violationf(ErrDuplicateGUID, []string{c.GUID}, "connector guid reused")
		}
		if _, clash := m.Elements[c.GUID]; clash {
			return Violationf(ErrDuplicateGUID, []string{c.GUID}, "connector guid shared with an element")
		}
		seen[c.GUID] = true

		src, okS := m.Elements[c.Source]
		dst, okT := m.Elements[c.Target]
		if !okS || !okT {
			return Violationf(ErrDanglingConnector, []string{c.GUID, c.Source, c.Target}, "%s connector", c.Type)
		}
		if dst.Type.IsChild() || dst.Type == ElementStart {
			return Violationf(ErrInvalidAttachment, []string{c.GUID, c.Target}, "connector cannot target %s", dst.Type)
		}
		if c.ChildSource != "" && !src.ChildReferences.Contains(c.ChildSource) {
			return Violationf(ErrInvalidBranch, []string{c.GUID, c.Source, c.ChildSource}, "child source is not a branch of the source")
		}
		if !src.HasSlot(c.Slot()) {
			return Violationf(ErrInvalidAttachment, []string{c.GUID, c.Source}, "%s has no %s slot", src.Type, c.Slot().Key())
		}

		key := slotKey(c.Source, c.Slot())
		if other, dup := slots[key]; dup {
			return Violationf(ErrDuplicateBranchConnector, []string{other, c.GUID, c.Source}, "slot %s", c.Slot().Key())
		}
		slots[key] = c.GUID

		if c.Type == ConnectorLoopNext {
			loopNext[c.Source] = true
		}
	}

	for _, id := range sortedGUIDs(m) {
		if m.Elements[id].Type == ElementLoop && !loopNext[id] {
			return &Violation{Err: ErrLoopWithoutNext, Guids: []string{id}}
		}
	}
	return nil
}

func checkDerived(m *Model) error {
	all := m.deriveAll()
	for _, id := range sortedGUIDs(m) {
		e, d := m.Elements[id], all[id]
		if e.ConnectorCount != d.count {
			return Violationf(ErrConnectorCount, []string{id}, "declared %d, actual %d", e.ConnectorCount, d.count)
		}
		if e.MaxConnections != d.max || !slices.Equal(e.AvailableConnections, d.available) {
			return Violationf(ErrMaxConnections, []string{id}, "declared max %d, actual %d", e.MaxConnections, d.max)
		}
	}
	return nil
}

func checkCanvas(m *Model) error {
	listed := make(map[string]bool, len(m.CanvasElements))
	for _, id := range m.CanvasElements {
		e, ok := m.Elements[id]
		if !ok {
			return Violationf(ErrCanvasMismatch, []string{id}, "canvas element does not exist")
		}
		if e.Type.IsChild() {
			return Violationf(ErrCanvasMismatch, []string{id}, "child element listed on canvas")
		}
		if listed[id] {
			return Violationf(ErrCanvasMismatch, []string{id}, "canvas element listed twice")
		}
		listed[id] = true
	}
	var missing []string
	for _, id := range sortedGUIDs(m) {
		if !m.Elements[id].Type.IsChild() && !listed[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return Violationf(ErrCanvasMismatch, missing, "elements missing from canvas")
	}
	return nil
}

func checkTopology(m *Model) error {
	start := m.Start()
	reached := m.Reachable(start.GUID, nil)

	var unreachable []string
	for _, id := range m.CanvasElements {
		if !reached[id] {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return &Violation{Err: ErrUnreachable, Guids: unreachable}
	}

	if src, dst, ok := findUnsanctionedCycle(m, start.GUID); ok {
		return Violationf(ErrCycle, []string{src, dst}, "back edge does not target a loop")
	}
	return nil
}

// FindCycle returns the endpoints of a back edge that closes a cycle on an
// element other than a loop, searching from the start element and then from
// any canvas element not reached from it. FAULT connectors are ignored.
func FindCycle(m *Model) (src, dst string, ok bool) {
	root := ""
	if start := m.Start(); start != nil {
		root = start.GUID
	}
	return findUnsanctionedCycle(m, root)
}

// findUnsanctionedCycle runs a white/gray/black depth-first search over the
// non-fault connectors. A back edge is sanctioned only when it closes on a
// loop element.
func findUnsanctionedCycle(m *Model, root string) (string, string, bool) {
	const (
		white = iota
		gray
		black
	)

	out := m.OutgoingIndex()
	color := make(map[string]int, len(m.Elements))
	var src, dst string
	var found bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, c := range out[id] {
			if found {
				return
			}
			if c.Type == ConnectorFault {
				continue
			}
			switch color[c.Target] {
			case white:
				dfs(c.Target)
			case gray:
				if m.Elements[c.Target].Type != ElementLoop {
					src, dst, found = id, c.Target, true
					return
				}
			}
		}
		color[id] = black
	}

	if root != "" {
		dfs(root)
	}
	for _, id := range m.CanvasElements {
		if !found && color[id] == white {
			dfs(id)
		}
	}
	return src, dst, found
}
