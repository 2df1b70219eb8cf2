package reducer

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// ids resolves the start and end GUIDs of a fresh flow.
func ids(t *testing.T, m *flow.Model) (start, end string) {
	t.Helper()
	for _, id := range m.CanvasElements {
		switch m.Elements[id].Type {
		case flow.ElementStart:
			start = id
		case flow.ElementEnd:
			end = id
		}
	}
	if start == "" || end == "" {
		t.Fatal("flow has no start or end")
	}
	return start, end
}

func mustReduce(t *testing.T, m *flow.Model, a action.Action) *flow.Model {
	t.Helper()
	out, err := Reduce(m, a)
	if err != nil {
		t.Fatalf("Reduce(%s) error: %v", a.Type(), err)
	}
	if err := flow.AssertState(out); err != nil {
		t.Fatalf("AssertState() after %s: %v", a.Type(), err)
	}
	return out
}

func addAfter(prev string, typ flow.ElementType, guid string) action.AddElement {
	return action.AddElement{
		Element:  action.NewElement{GUID: guid, Type: typ, Label: guid},
		Position: action.Position{Prev: prev},
	}
}

func addIn(parent string, index int, typ flow.ElementType, guid string) action.AddElement {
	return action.AddElement{
		Element:  action.NewElement{GUID: guid, Type: typ, Label: guid},
		Position: action.Position{Parent: parent, ChildIndex: index},
	}
}

func autoLayout(t *testing.T, m *flow.Model) *flow.Model {
	t.Helper()
	on := true
	return mustReduce(t, m, action.UpdateProperties{AutoLayout: &on})
}

func outgoing(m *flow.Model, guid string) map[flow.ConnectorType]string {
	out := make(map[flow.ConnectorType]string)
	for _, c := range m.Outgoing(guid) {
		out[c.Type] = c.Target
	}
	return out
}

func TestAddDecisionBetweenStartAndEnd(t *testing.T) {
	m := flow.New(flow.Properties{Label: "test"})
	start, end := ids(t, m)
	original := m.Connectors[0].GUID

	got := mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))

	if len(got.Connectors) != 2 {
		t.Fatalf("len(Connectors) = %d, want 2", len(got.Connectors))
	}
	in := got.Incoming("D")
	if len(in) != 1 || in[0].GUID != original || in[0].Source != start {
		t.Errorf("incoming of D = %v, want the original connector from start", in)
	}
	c := got.ConnectorAt("D", flow.Slot{Type: flow.ConnectorDefault})
	if c == nil || c.Target != end {
		t.Errorf("DEFAULT connector of D = %v, want target %s", c, end)
	}
	d := got.Elements["D"]
	if d.ConnectorCount != 1 {
		t.Errorf("ConnectorCount = %d, want 1", d.ConnectorCount)
	}
	if d.MaxConnections != 2 {
		t.Errorf("MaxConnections = %d, want 2", d.MaxConnections)
	}
	if len(d.ChildReferences) != 1 {
		t.Fatalf("len(ChildReferences) = %d, want 1", len(d.ChildReferences))
	}
	if o := got.Elements[d.ChildReferences[0]]; o.Type != flow.ElementOutcome || o.Label != "Outcome 1" {
		t.Errorf("child = %s %q, want OUTCOME \"Outcome 1\"", o.Type, o.Label)
	}

	// The input is untouched.
	if len(m.Elements) != 2 || m.Connectors[0].Target != end {
		t.Error("Reduce() modified its input")
	}
	if got.Elements[start] != m.Elements[start] {
		t.Error("unchanged start element lost its identity")
	}
}

func TestDeleteRethreads(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementScreen, "A"))
	m = mustReduce(t, m, addAfter("A", flow.ElementScreen, "B"))
	ab := m.ConnectorAt("A", flow.Slot{Type: flow.ConnectorRegular}).GUID

	got := mustReduce(t, m, action.DeleteElements{Guids: []string{"B"}})

	if _, ok := got.Elements["B"]; ok {
		t.Error("B still present")
	}
	c := got.ConnectorAt("A", flow.Slot{Type: flow.ConnectorRegular})
	if c == nil || c.Target != end {
		t.Fatalf("A continues to %v, want %s", c, end)
	}
	if c.GUID != ab {
		t.Errorf("connector GUID = %s, want %s (retained)", c.GUID, ab)
	}
	if len(got.Connectors) != 2 {
		t.Errorf("len(Connectors) = %d, want 2", len(got.Connectors))
	}
}

func TestDeleteBranching(t *testing.T) {
	keep := 0
	tests := []struct {
		name      string
		keep      *int
		wantA     bool
		wantAfter string // element following start, "end" for the end element
	}{
		{name: "merge", keep: nil, wantA: false, wantAfter: "end"},
		{name: "keep first branch", keep: &keep, wantA: true, wantAfter: "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := flow.New(flow.Properties{})
			start, end := ids(t, m)
			m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
			m = mustReduce(t, m, action.AddElement{
				Element:  action.NewElement{GUID: "A", Type: flow.ElementAssignment},
				Position: action.Position{Parent: "D", ChildIndex: 0, Next: end},
			})

			got := mustReduce(t, m, action.DeleteElements{Guids: []string{"D"}, ChildIndexToKeep: tt.keep})

			if _, ok := got.Elements["A"]; ok != tt.wantA {
				t.Errorf("A present = %v, want %v", ok, tt.wantA)
			}
			want := tt.wantAfter
			if want == "end" {
				want = end
			}
			if next := outgoing(got, start)[flow.ConnectorRegular]; next != want {
				t.Errorf("start continues to %s, want %s", next, want)
			}
			for _, e := range got.Elements {
				if e.Type == flow.ElementOutcome {
					t.Errorf("outcome %s survived its decision", e.GUID)
				}
			}
		})
	}
}

func TestDeleteInvalid(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, _ := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
	outcome := m.Elements["D"].ChildReferences[0]
	five := 5

	tests := []struct {
		name string
		a    action.DeleteElements
		want error
	}{
		{"start", action.DeleteElements{Guids: []string{start}}, flow.ErrProtectedElement},
		{"missing", action.DeleteElements{Guids: []string{"nope"}}, flow.ErrElementNotFound},
		{"child element", action.DeleteElements{Guids: []string{outcome}}, flow.ErrInvalidElementType},
		{"branch out of range", action.DeleteElements{Guids: []string{"D"}, ChildIndexToKeep: &five}, flow.ErrInvalidBranch},
		{"empty", action.DeleteElements{}, flow.ErrElementNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(m, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("Reduce() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoop(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementLoop, "L"))

	out := outgoing(m, "L")
	if out[flow.ConnectorLoopNext] != "L" {
		t.Errorf("empty loop LOOP_NEXT = %q, want self", out[flow.ConnectorLoopNext])
	}
	if out[flow.ConnectorLoopEnd] != end {
		t.Errorf("LOOP_END = %q, want %s", out[flow.ConnectorLoopEnd], end)
	}

	m = mustReduce(t, m, addIn("L", 0, flow.ElementAssignment, "X"))
	if got := outgoing(m, "L")[flow.ConnectorLoopNext]; got != "X" {
		t.Errorf("LOOP_NEXT = %q, want X", got)
	}
	if got := outgoing(m, "X")[flow.ConnectorRegular]; got != "L" {
		t.Errorf("body continues to %q, want L", got)
	}

	t.Run("delete body", func(t *testing.T) {
		got := mustReduce(t, m, action.DeleteElements{Guids: []string{"X"}})
		if next := outgoing(got, "L")[flow.ConnectorLoopNext]; next != "L" {
			t.Errorf("LOOP_NEXT = %q, want self", next)
		}
	})
	t.Run("delete loop", func(t *testing.T) {
		got := mustReduce(t, m, action.DeleteElements{Guids: []string{"L"}})
		if _, ok := got.Elements["X"]; ok {
			t.Error("loop body survived its loop")
		}
		if next := outgoing(got, start)[flow.ConnectorRegular]; next != end {
			t.Errorf("start continues to %q, want %s", next, end)
		}
	})
}

func TestAddInvalid(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
	m = mustReduce(t, m, addIn("D", 0, flow.ElementScreen, "S"))

	tests := []struct {
		name string
		a    action.AddElement
		want error
	}{
		{"unknown prev", addAfter("nope", flow.ElementScreen, "N"), flow.ErrElementNotFound},
		{"start type", addAfter("S", flow.ElementStart, "N"), flow.ErrInvalidElementType},
		{"child type", addAfter("S", flow.ElementOutcome, "N"), flow.ErrInvalidElementType},
		{"duplicate guid", addAfter("S", flow.ElementScreen, "D"), flow.ErrDuplicateGUID},
		{"prev without continuation", addAfter("D", flow.ElementScreen, "N"), flow.ErrInvalidAttachment},
		{"branch out of range", addIn("D", 7, flow.ElementScreen, "N"), flow.ErrInvalidBranch},
		{"no fault branch", addIn("S", flow.FaultIndex, flow.ElementScreen, "N"), flow.ErrInvalidAttachment},
		{"next mismatch", action.AddElement{
			Element:  action.NewElement{GUID: "N", Type: flow.ElementScreen},
			Position: action.Position{Prev: start, Next: end},
		}, flow.ErrInvalidAttachment},
		{"next is start", action.AddElement{
			Element:  action.NewElement{GUID: "N", Type: flow.ElementScreen},
			Position: action.Position{Prev: "S", Next: start},
		}, flow.ErrInvalidAttachment},
		{"end before element", addAfter(start, flow.ElementEnd, "N"), flow.ErrInvalidAttachment},
		{"upstream next", action.AddElement{
			Element:  action.NewElement{GUID: "N", Type: flow.ElementScreen},
			Position: action.Position{Prev: "S", Next: "D"},
		}, flow.ErrCycle},
		{"no position", action.AddElement{Element: action.NewElement{Type: flow.ElementScreen}}, flow.ErrInvalidAttachment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(m, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("Reduce() error = %v, want %v", err, tt.want)
			}
			if len(flow.GuidsOf(err)) == 0 && tt.name != "no position" && tt.name != "start type" && tt.name != "child type" {
				t.Errorf("Reduce() error %v names no GUIDs", err)
			}
		})
	}
}

func TestAddFaultBranch(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, _ := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementRecordCreate, "R"))
	m = mustReduce(t, m, addIn("R", flow.FaultIndex, flow.ElementEnd, "F"))

	if got := outgoing(m, "R")[flow.ConnectorFault]; got != "F" {
		t.Errorf("FAULT = %q, want F", got)
	}
	if n := m.Elements["R"].ConnectorCount; n != 2 {
		t.Errorf("ConnectorCount = %d, want 2", n)
	}
}

func TestAddBranchAutoLayoutMerges(t *testing.T) {
	m := autoLayout(t, flow.New(flow.Properties{}))
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
	m = mustReduce(t, m, addIn("D", 0, flow.ElementScreen, "S"))

	if got := outgoing(m, "S")[flow.ConnectorRegular]; got != end {
		t.Errorf("branch continues to %q, want merge point %s", got, end)
	}
	d := m.Elements["D"].Nav
	if d == nil {
		t.Fatal("D has no navigation data")
	}
	if d.Next != end {
		t.Errorf("D.Nav.Next = %q, want %s", d.Next, end)
	}
	if !slices.Equal(d.Children, []string{"S", ""}) {
		t.Errorf("D.Nav.Children = %v, want [S \"\"]", d.Children)
	}
	if s := m.Elements["S"]; s.LocationX != 0 || s.LocationY != 0 {
		t.Errorf("auto-layout element has location (%v, %v)", s.LocationX, s.LocationY)
	}
}

func TestAddBranchFreeFormStaysOpen(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, _ := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
	m = mustReduce(t, m, action.AddElement{
		Element:  action.NewElement{GUID: "S", Type: flow.ElementScreen, LocationX: 300, LocationY: 200},
		Position: action.Position{Parent: "D", ChildIndex: 0},
	})

	if out := m.Outgoing("S"); len(out) != 0 {
		t.Errorf("free-form branch has %d outgoing connectors, want 0", len(out))
	}
	if s := m.Elements["S"]; s.LocationX != 300 || s.LocationY != 200 {
		t.Errorf("location = (%v, %v), want (300, 200)", s.LocationX, s.LocationY)
	}
	if m.Elements["S"].Nav != nil {
		t.Error("free-form element carries navigation data")
	}
}

func TestConnect(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementScreen, "A"))
	m = mustReduce(t, m, addAfter("A", flow.ElementDecision, "D"))
	outcome := m.Elements["D"].ChildReferences[0]

	t.Run("fills open branch", func(t *testing.T) {
		got := mustReduce(t, m, action.Connect{Source: "D", ChildSource: outcome, ConnectorType: flow.ConnectorRegular, Target: end})
		c := got.ConnectorAt("D", flow.Slot{Type: flow.ConnectorRegular, ChildSource: outcome})
		if c == nil || c.Target != end {
			t.Fatalf("branch connector = %v, want target %s", c, end)
		}
		if c.Label != got.Elements[outcome].Label {
			t.Errorf("Label = %q, want outcome label %q", c.Label, got.Elements[outcome].Label)
		}
	})

	tests := []struct {
		name string
		a    action.Connect
		want error
	}{
		{"occupied", action.Connect{Source: "A", ConnectorType: flow.ConnectorRegular, Target: end}, flow.ErrSlotOccupied},
		{"no such slot", action.Connect{Source: "A", ConnectorType: flow.ConnectorLoopEnd, Target: end}, flow.ErrInvalidAttachment},
		{"target start", action.Connect{Source: "D", ChildSource: outcome, ConnectorType: flow.ConnectorRegular, Target: start}, flow.ErrInvalidAttachment},
		{"cycle", action.Connect{Source: "D", ChildSource: outcome, ConnectorType: flow.ConnectorRegular, Target: "A"}, flow.ErrCycle},
		{"missing target", action.Connect{Source: "D", ChildSource: outcome, ConnectorType: flow.ConnectorRegular, Target: "nope"}, flow.ErrElementNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(m, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("Reduce() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateElement(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementDecision, "D"))
	m = mustReduce(t, m, action.AddElement{
		Element:  action.NewElement{GUID: "A", Type: flow.ElementScreen},
		Position: action.Position{Parent: "D", ChildIndex: 0, Next: end},
	})
	first := m.Elements["D"].ChildReferences[0]

	t.Run("label", func(t *testing.T) {
		label := "Renamed"
		got := mustReduce(t, m, action.UpdateElement{GUID: "A", Patch: action.Patch{Label: &label}})
		if got.Elements["A"].Label != label {
			t.Errorf("Label = %q, want %q", got.Elements["A"].Label, label)
		}
		if got.Elements["D"] != m.Elements["D"] {
			t.Error("untouched element lost its identity")
		}
	})

	t.Run("same value is a no-op", func(t *testing.T) {
		label := m.Elements["A"].Label
		got := mustReduce(t, m, action.UpdateElement{GUID: "A", Patch: action.Patch{Label: &label}})
		if got != m {
			t.Error("Reduce() returned a new model for an unchanged patch")
		}
	})

	t.Run("outcome label syncs connector", func(t *testing.T) {
		label := "Approved"
		got := mustReduce(t, m, action.UpdateElement{GUID: first, Patch: action.Patch{Label: &label}})
		c := got.ConnectorAt("D", flow.Slot{Type: flow.ConnectorRegular, ChildSource: first})
		if c.Label != label {
			t.Errorf("connector Label = %q, want %q", c.Label, label)
		}
	})

	t.Run("add branch", func(t *testing.T) {
		got := mustReduce(t, m, action.UpdateElement{GUID: "D", Patch: action.Patch{
			Branches: []action.Branch{{GUID: first}, {Label: "Second"}},
		}})
		d := got.Elements["D"]
		if len(d.ChildReferences) != 2 || d.ChildReferences[0] != first {
			t.Fatalf("ChildReferences = %v, want [%s <new>]", d.ChildReferences, first)
		}
		if d.MaxConnections != 3 {
			t.Errorf("MaxConnections = %d, want 3", d.MaxConnections)
		}
		if _, ok := got.Elements["A"]; !ok {
			t.Error("A lost while adding a branch")
		}
	})

	t.Run("remove branch prunes", func(t *testing.T) {
		got := mustReduce(t, m, action.UpdateElement{GUID: "D", Patch: action.Patch{
			Branches: []action.Branch{{Label: "Only"}},
		}})
		if _, ok := got.Elements[first]; ok {
			t.Error("removed outcome still present")
		}
		if _, ok := got.Elements["A"]; ok {
			t.Error("A reachable only from the removed branch survived")
		}
	})

	t.Run("decision needs a branch", func(t *testing.T) {
		_, err := Reduce(m, action.UpdateElement{GUID: "D", Patch: action.Patch{Branches: []action.Branch{}}})
		if !errors.Is(err, flow.ErrInvalidBranch) {
			t.Errorf("Reduce() error = %v, want %v", err, flow.ErrInvalidBranch)
		}
	})

	t.Run("foreign branch", func(t *testing.T) {
		_, err := Reduce(m, action.UpdateElement{GUID: "D", Patch: action.Patch{Branches: []action.Branch{{GUID: "A"}}}})
		if !errors.Is(err, flow.ErrInvalidBranch) {
			t.Errorf("Reduce() error = %v, want %v", err, flow.ErrInvalidBranch)
		}
	})

	t.Run("branches on a screen", func(t *testing.T) {
		_, err := Reduce(m, action.UpdateElement{GUID: "A", Patch: action.Patch{Branches: []action.Branch{{Label: "x"}}}})
		if !errors.Is(err, flow.ErrInvalidBranch) {
			t.Errorf("Reduce() error = %v, want %v", err, flow.ErrInvalidBranch)
		}
	})
}

func TestScheduledPaths(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)

	m = mustReduce(t, m, action.UpdateElement{GUID: start, Patch: action.Patch{
		Branches: []action.Branch{{Label: "Daily"}},
	}})
	out := outgoing(m, start)
	if out[flow.ConnectorImmediate] != end {
		t.Errorf("IMMEDIATE = %q, want %s", out[flow.ConnectorImmediate], end)
	}
	if _, ok := out[flow.ConnectorRegular]; ok {
		t.Error("start kept its plain REGULAR connector")
	}
	path := m.Elements[m.Elements[start].ChildReferences[0]]
	if path.Type != flow.ElementScheduledPath {
		t.Errorf("child type = %s, want %s", path.Type, flow.ElementScheduledPath)
	}

	m = mustReduce(t, m, action.UpdateElement{GUID: start, Patch: action.Patch{Branches: []action.Branch{}}})
	out = outgoing(m, start)
	if out[flow.ConnectorRegular] != end {
		t.Errorf("REGULAR = %q, want %s", out[flow.ConnectorRegular], end)
	}
	if _, ok := m.Elements[path.GUID]; ok {
		t.Error("scheduled path survived its removal")
	}
}

func TestMoveElement(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)

	got := mustReduce(t, m, action.MoveElement{GUID: end, LocationX: 400, LocationY: 500})
	if e := got.Elements[end]; e.LocationX != 400 || e.LocationY != 500 {
		t.Errorf("location = (%v, %v), want (400, 500)", e.LocationX, e.LocationY)
	}
	if got.Elements[start] != m.Elements[start] {
		t.Error("unmoved element lost its identity")
	}
	if !slices.Equal(got.Connectors, m.Connectors) {
		t.Error("move touched connectors")
	}

	same := mustReduce(t, got, action.MoveElement{GUID: end, LocationX: 400, LocationY: 500})
	if same != got {
		t.Error("move to the same position returned a new model")
	}

	auto := autoLayout(t, m)
	if moved := mustReduce(t, auto, action.MoveElement{GUID: end, LocationX: 1, LocationY: 1}); moved != auto {
		t.Error("move on an auto-layout canvas returned a new model")
	}
}

func TestSelection(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, end := ids(t, m)

	selected := mustReduce(t, m, action.SelectElements{Guids: []string{end}})
	if !selected.Elements[end].Config.IsSelected {
		t.Error("end not selected")
	}
	if selected.Elements[start] != m.Elements[start] {
		t.Error("unselected element lost its identity")
	}
	if again := mustReduce(t, selected, action.SelectElements{Guids: []string{end}}); again != selected {
		t.Error("selecting a selected element returned a new model")
	}

	toggled := mustReduce(t, selected, action.ToggleSelection{GUID: end})
	if toggled.Elements[end].Config.IsSelected {
		t.Error("toggle did not deselect")
	}

	all := mustReduce(t, mustReduce(t, m, action.SelectElements{Guids: []string{start, end}}), action.DeselectElements{})
	for id, e := range all.Elements {
		if e.Config.IsSelected {
			t.Errorf("%s still selected after deselect all", id)
		}
	}

	lit := mustReduce(t, m, action.HighlightElements{Guids: []string{start}})
	if !lit.Elements[start].Config.IsHighlighted || lit.Elements[end].Config.IsHighlighted {
		t.Error("highlight does not match the requested set")
	}

	if _, err := Reduce(m, action.SelectElements{Guids: []string{"nope"}}); !errors.Is(err, flow.ErrElementNotFound) {
		t.Errorf("Reduce() error = %v, want %v", err, flow.ErrElementNotFound)
	}
}

func TestUpdateProperties(t *testing.T) {
	m := flow.New(flow.Properties{Label: "one"})
	start, _ := ids(t, m)
	m = mustReduce(t, m, addAfter(start, flow.ElementScreen, "A"))

	label := "two"
	got := mustReduce(t, m, action.UpdateProperties{Label: &label})
	if got.Properties.Label != label {
		t.Errorf("Label = %q, want %q", got.Properties.Label, label)
	}
	if got.Elements["A"] != m.Elements["A"] {
		t.Error("property change touched elements")
	}

	same := "one"
	if unchanged := mustReduce(t, m, action.UpdateProperties{Label: &same}); unchanged != m {
		t.Error("unchanged properties returned a new model")
	}

	auto := autoLayout(t, m)
	if !auto.Properties.IsAutoLayoutCanvas {
		t.Fatal("IsAutoLayoutCanvas = false, want true")
	}
	for _, id := range auto.CanvasElements {
		if auto.Elements[id].Nav == nil {
			t.Errorf("%s has no navigation data", id)
		}
	}

	off := false
	free := mustReduce(t, auto, action.UpdateProperties{AutoLayout: &off})
	if free.Properties.IsAutoLayoutCanvas {
		t.Error("IsAutoLayoutCanvas = true, want false")
	}
	if !layout.TopologyEqual(m, free) {
		t.Errorf("conversion changed topology: %v", layout.Diff(m, free))
	}
}

func TestLoadFlow(t *testing.T) {
	m := flow.New(flow.Properties{})
	other := flow.New(flow.Properties{Label: "other"})

	if got := mustReduce(t, m, action.LoadFlow{Model: other}); got != other {
		t.Error("LoadFlow did not install the given model")
	}
	if got := mustReduce(t, m, action.LoadFlow{Model: m}); got != m {
		t.Error("loading the current model returned a new model")
	}
	if _, err := Reduce(m, action.LoadFlow{}); !errors.Is(err, flow.ErrNilModel) {
		t.Errorf("Reduce() error = %v, want %v", err, flow.ErrNilModel)
	}

	other.Properties.IsAutoLayoutCanvas = true
	got := mustReduce(t, m, action.LoadFlow{Model: other})
	for _, id := range got.CanvasElements {
		if got.Elements[id].Nav == nil {
			t.Errorf("%s loaded without navigation data", id)
		}
	}
}

func TestReduceRejects(t *testing.T) {
	m := flow.New(flow.Properties{})
	tests := []struct {
		name string
		m    *flow.Model
		a    action.Action
		want error
	}{
		{"nil model", nil, action.Undo{}, flow.ErrNilModel},
		{"nil action", m, nil, ErrUnknownAction},
		{"nil pointer", m, (*action.AddElement)(nil), ErrUnknownAction},
		{"undo", m, action.Undo{}, ErrNotReducible},
		{"session", m, &action.StartEditSession{}, ErrNotReducible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(tt.m, tt.a)
			if !errors.Is(err, tt.want) {
				t.Errorf("Reduce() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPointerActions(t *testing.T) {
	m := flow.New(flow.Properties{})
	start, _ := ids(t, m)
	a, err := action.New(action.TypeAddElement)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	add := a.(*action.AddElement)
	add.Element = action.NewElement{GUID: "A", Type: flow.ElementScreen}
	add.Position.Prev = start

	got := mustReduce(t, m, add)
	if _, ok := got.Elements["A"]; !ok {
		t.Error("pointer action was not applied")
	}
}

// randomAction picks a structural edit on m. Roughly half of them are
// invalid; the reducer must reject those without breaking anything.
func randomAction(r *rand.Rand, m *flow.Model, n int) action.Action {
	canvas := m.CanvasElements
	pick := func() string { return canvas[r.Intn(len(canvas))] }
	types := []flow.ElementType{
		flow.ElementScreen, flow.ElementAssignment, flow.ElementDecision,
		flow.ElementLoop, flow.ElementWait, flow.ElementRecordCreate, flow.ElementEnd,
	}

	switch r.Intn(10) {
	case 0, 1, 2, 3:
		el := action.NewElement{GUID: "n" + string(rune('a'+n%26)) + string(rune('a'+n/26%26)), Type: types[r.Intn(len(types))]}
		if r.Intn(2) == 0 {
			return action.AddElement{Element: el, Position: action.Position{Prev: pick()}}
		}
		pos := action.Position{Parent: pick(), ChildIndex: r.Intn(4) - 1}
		if r.Intn(4) == 0 {
			pos.Next = pick()
		}
		return action.AddElement{Element: el, Position: pos}
	case 4, 5:
		del := action.DeleteElements{Guids: []string{pick()}}
		if r.Intn(3) == 0 {
			keep := r.Intn(3)
			del.ChildIndexToKeep = &keep
		}
		return del
	case 6, 7:
		src := m.Elements[pick()]
		if len(src.AvailableConnections) == 0 {
			return action.DeselectElements{}
		}
		s := src.AvailableConnections[r.Intn(len(src.AvailableConnections))]
		return action.Connect{Source: src.GUID, ChildSource: s.ChildSource, ConnectorType: s.Type, Target: pick()}
	case 8:
		e := m.Elements[pick()]
		if e.Type.ChildType() == "" {
			return action.ToggleSelection{GUID: e.GUID}
		}
		var branches []action.Branch
		for _, c := range e.ChildReferences {
			if r.Intn(3) > 0 {
				branches = append(branches, action.Branch{GUID: c})
			}
		}
		if len(branches) == 0 || r.Intn(2) == 0 {
			branches = append(branches, action.Branch{Label: "extra"})
		}
		return action.UpdateElement{GUID: e.GUID, Patch: action.Patch{Branches: branches}}
	}
	return action.MoveElement{GUID: pick(), LocationX: float64(r.Intn(500)), LocationY: float64(r.Intn(500))}
}

func TestRandomEditsKeepInvariants(t *testing.T) {
	for _, auto := range []bool{false, true} {
		for seed := int64(1); seed <= 8; seed++ {
			name := "free-form"
			if auto {
				name = "auto-layout"
			}
			t.Run(name, func(t *testing.T) {
				r := rand.New(rand.NewSource(seed))
				m := flow.New(flow.Properties{})
				if auto {
					m = autoLayout(t, m)
				}
				applied := 0
				for n := range 200 {
					a := randomAction(r, m, n)
					before := m.DeepClone()
					out, err := Reduce(m, a)
					if err != nil {
						var v *flow.Violation
						if !errors.As(err, &v) {
							t.Fatalf("step %d %s: error %v is not a violation", n, a.Type(), err)
						}
						if len(layout.Diff(before, m)) != 0 {
							t.Fatalf("step %d %s: failed action modified its input", n, a.Type())
						}
						continue
					}
					if err := flow.AssertState(out); err != nil {
						t.Fatalf("seed %d step %d %s: %v", seed, n, a.Type(), err)
					}
					if auto {
						for _, id := range out.CanvasElements {
							if out.Elements[id].Nav == nil {
								t.Fatalf("seed %d step %d %s: %s has no navigation data", seed, n, a.Type(), id)
							}
						}
					}
					m = out
					applied++
				}
				if applied == 0 {
					t.Error("no action applied")
				}
			})
		}
	}
}
