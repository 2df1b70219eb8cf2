package layout

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// fixture is a built flow plus the GUIDs of its elements by label.
type fixture struct {
	m  *flow.Model
	id map[string]string
}

func build(t *testing.T, setup func(b *flow.Builder, id map[string]string)) fixture {
	t.Helper()
	b := flow.NewBuilder(flow.Properties{Label: "test"})
	id := map[string]string{"start": b.Start()}
	setup(b, id)
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return fixture{m: m, id: id}
}

func add(b *flow.Builder, id map[string]string, t flow.ElementType, names ...string) {
	for _, n := range names {
		id[n] = b.Element(t, n)
	}
}

func linearFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementScreen, "A", "B")
		add(b, id, flow.ElementEnd, "end")
		b.Link(id["start"], id["A"]).Link(id["A"], id["B"]).Link(id["B"], id["end"])
	})
}

// decisionFlow: D has three outcomes; o1 -> A, o2 -> B, o3 and default go
// straight to M.
func decisionFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementDecision, "D")
		add(b, id, flow.ElementAssignment, "A", "B", "M")
		add(b, id, flow.ElementEnd, "end")
		for _, o := range []string{"o1", "o2", "o3"} {
			id[o] = b.Child(id["D"], o)
		}
		b.Link(id["start"], id["D"])
		b.LinkBranch(id["D"], 0, id["A"]).LinkBranch(id["D"], 1, id["B"])
		b.LinkBranch(id["D"], 2, id["M"]).LinkBranch(id["D"], 3, id["M"])
		b.Link(id["A"], id["M"]).Link(id["B"], id["M"]).Link(id["M"], id["end"])
	})
}

// nestedFlow: D1 outcome -> D2, D1 default -> M; both D2 branches -> M.
func nestedFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementDecision, "D1", "D2")
		add(b, id, flow.ElementScreen, "X", "M")
		add(b, id, flow.ElementEnd, "end")
		id["a"] = b.Child(id["D1"], "a")
		id["b"] = b.Child(id["D2"], "b")
		b.Link(id["start"], id["D1"])
		b.LinkBranch(id["D1"], 0, id["D2"]).LinkBranch(id["D1"], 1, id["M"])
		b.LinkBranch(id["D2"], 0, id["X"]).LinkBranch(id["D2"], 1, id["M"])
		b.Link(id["X"], id["M"]).Link(id["M"], id["end"])
	})
}

func loopFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementLoop, "L")
		add(b, id, flow.ElementAssignment, "A", "B")
		add(b, id, flow.ElementEnd, "end")
		b.Link(id["start"], id["L"])
		b.LinkBranch(id["L"], 0, id["A"]).Link(id["A"], id["B"]).Link(id["B"], id["L"])
		b.Link(id["L"], id["end"])
	})
}

// waitFlow: W has two events and a fault path to its own end.
func waitFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementWait, "W")
		add(b, id, flow.ElementScreen, "A", "M", "F")
		add(b, id, flow.ElementEnd, "end", "end2")
		id["e1"] = b.Child(id["W"], "e1")
		id["e2"] = b.Child(id["W"], "e2")
		b.Link(id["start"], id["W"])
		b.LinkBranch(id["W"], 0, id["A"]).LinkBranch(id["W"], 1, id["M"]).LinkBranch(id["W"], 2, id["M"])
		b.LinkFault(id["W"], id["F"]).Link(id["F"], id["end2"])
		b.Link(id["A"], id["M"]).Link(id["M"], id["end"])
	})
}

// jumpFlow: the first outcome jumps into the second outcome's branch.
func jumpFlow(t *testing.T) fixture {
	return build(t, func(b *flow.Builder, id map[string]string) {
		add(b, id, flow.ElementDecision, "D")
		add(b, id, flow.ElementScreen, "A", "B", "C", "M")
		add(b, id, flow.ElementEnd, "end")
		id["o1"] = b.Child(id["D"], "o1")
		id["o2"] = b.Child(id["D"], "o2")
		b.Link(id["start"], id["D"])
		b.LinkBranch(id["D"], 0, id["A"]).LinkBranch(id["D"], 1, id["B"]).LinkBranch(id["D"], 2, id["C"])
		b.Link(id["A"], id["B"]).Link(id["B"], id["M"]).Link(id["C"], id["M"]).Link(id["M"], id["end"])
	})
}

func nav(t *testing.T, m *flow.Model, guid string) *flow.Nav {
	t.Helper()
	n := m.Elements[guid].Nav
	if n == nil {
		t.Fatalf("element %s has no nav", guid)
	}
	return n
}

func TestAnnotateLinear(t *testing.T) {
	f := linearFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	tests := []struct {
		name       string
		prev, next string
	}{
		{"start", "", "A"},
		{"A", "start", "B"},
		{"B", "A", "end"},
		{"end", "B", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := nav(t, m, f.id[tt.name])
			if n.Prev != f.id[tt.prev] {
				t.Errorf("Prev = %q, want %q", n.Prev, f.id[tt.prev])
			}
			if n.Next != f.id[tt.next] {
				t.Errorf("Next = %q, want %q", n.Next, f.id[tt.next])
			}
		})
	}
}

func TestAnnotateDecisionMerge(t *testing.T) {
	f := decisionFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	d := nav(t, m, f.id["D"])
	if d.Next != f.id["M"] {
		t.Errorf("D.Next = %q, want merge M", d.Next)
	}
	want := []string{f.id["A"], f.id["B"], "", ""}
	if !slices.Equal(d.Children, want) {
		t.Errorf("D.Children = %v, want %v", d.Children, want)
	}
	if d.IsTerminal {
		t.Error("D.IsTerminal = true, want false")
	}

	a := nav(t, m, f.id["A"])
	if a.Parent != f.id["D"] || a.ChildIndex != 0 || a.Next != "" {
		t.Errorf("A nav = %+v, want head of branch 0 merging into M", a)
	}
	if b := nav(t, m, f.id["B"]); b.ChildIndex != 1 {
		t.Errorf("B.ChildIndex = %d, want 1", b.ChildIndex)
	}
	if mm := nav(t, m, f.id["M"]); mm.Prev != f.id["D"] {
		t.Errorf("M.Prev = %q, want D", mm.Prev)
	}
}

func TestAnnotateNestedMergesOutward(t *testing.T) {
	f := nestedFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	d1 := nav(t, m, f.id["D1"])
	if d1.Next != f.id["M"] {
		t.Errorf("D1.Next = %q, want M", d1.Next)
	}
	if !slices.Equal(d1.Children, []string{f.id["D2"], ""}) {
		t.Errorf("D1.Children = %v, want [D2 \"\"]", d1.Children)
	}

	d2 := nav(t, m, f.id["D2"])
	if d2.Next != "" || d2.IsTerminal {
		t.Errorf("D2 nav = %+v, want outward merge", d2)
	}
	if !slices.Equal(d2.Children, []string{f.id["X"], ""}) {
		t.Errorf("D2.Children = %v, want [X \"\"]", d2.Children)
	}
}

func TestAnnotateLoop(t *testing.T) {
	f := loopFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	l := nav(t, m, f.id["L"])
	if !slices.Equal(l.Children, []string{f.id["A"]}) {
		t.Errorf("L.Children = %v, want [A]", l.Children)
	}
	if l.Next != f.id["end"] {
		t.Errorf("L.Next = %q, want end", l.Next)
	}
	if b := nav(t, m, f.id["B"]); b.Next != "" || len(b.GoTos) != 0 {
		t.Errorf("B nav = %+v, want body end without go-to", b)
	}
}

func TestAnnotateFault(t *testing.T) {
	f := waitFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	w := nav(t, m, f.id["W"])
	if w.Fault != f.id["F"] {
		t.Errorf("W.Fault = %q, want F", w.Fault)
	}
	if w.Next != f.id["M"] {
		t.Errorf("W.Next = %q, want M", w.Next)
	}
	fn := nav(t, m, f.id["F"])
	if fn.Parent != f.id["W"] || fn.ChildIndex != flow.FaultIndex {
		t.Errorf("F nav = %+v, want fault head of W", fn)
	}
	if fn.Next != f.id["end2"] {
		t.Errorf("F.Next = %q, want end2", fn.Next)
	}
}

func TestAnnotateGoTo(t *testing.T) {
	f := jumpFlow(t)
	m, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	d := nav(t, m, f.id["D"])
	key := flow.Slot{Type: flow.ConnectorRegular, ChildSource: f.id["o2"]}.Key()
	if got := d.GoTos[key]; got != f.id["B"] {
		t.Errorf("D.GoTos[%s] = %q, want B", key, got)
	}
	if b := nav(t, m, f.id["B"]); !slices.Equal(b.IncomingGoTo, []string{f.id["D"]}) {
		t.Errorf("B.IncomingGoTo = %v, want [D]", b.IncomingGoTo)
	}
	if a := nav(t, m, f.id["A"]); a.Next != f.id["B"] {
		t.Errorf("A.Next = %q, want B", a.Next)
	}
}

func TestAnnotateKeepsUnchangedElements(t *testing.T) {
	f := decisionFlow(t)
	once, err := Annotate(f.m)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}
	twice, err := Annotate(once)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}
	for guid, e := range once.Elements {
		if twice.Elements[guid] != e {
			t.Errorf("element %s was replaced although its nav did not change", guid)
		}
	}
	if f.m.Elements[f.id["D"]].Nav != nil {
		t.Error("Annotate() modified its input")
	}
}

func TestAnnotateNoStart(t *testing.T) {
	m := &flow.Model{Elements: map[string]*flow.Element{}}
	if _, err := Annotate(m); !errors.Is(err, flow.ErrNoStart) {
		t.Errorf("Annotate() error = %v, want ErrNoStart", err)
	}
}

func TestToAutoLayout(t *testing.T) {
	f := linearFlow(t)
	auto, err := ToAutoLayout(f.m)
	if err != nil {
		t.Fatalf("ToAutoLayout() error: %v", err)
	}
	if !auto.Properties.IsAutoLayoutCanvas {
		t.Error("IsAutoLayoutCanvas = false, want true")
	}
	for guid, e := range auto.Elements {
		if e.LocationX != 0 || e.LocationY != 0 {
			t.Errorf("element %s at (%v, %v), want origin", guid, e.LocationX, e.LocationY)
		}
		if e.Nav == nil {
			t.Errorf("element %s has no nav", guid)
		}
	}
	if f.m.Properties.IsAutoLayoutCanvas {
		t.Error("ToAutoLayout() modified its input")
	}
	if !TopologyEqual(f.m, auto) {
		t.Errorf("Diff() = %v, want none", Diff(f.m, auto))
	}
}

func TestToFreeFormCoordinates(t *testing.T) {
	f := linearFlow(t)
	auto, err := ToAutoLayout(f.m)
	if err != nil {
		t.Fatalf("ToAutoLayout() error: %v", err)
	}
	free, err := ToFreeForm(auto, DefaultOptions())
	if err != nil {
		t.Fatalf("ToFreeForm() error: %v", err)
	}

	tests := []struct {
		name string
		x, y float64
	}{
		{"start", 50, 50},
		{"A", 50, 190},
		{"B", 50, 330},
		{"end", 50, 470},
	}
	for _, tt := range tests {
		e := free.Elements[f.id[tt.name]]
		if e.LocationX != tt.x || e.LocationY != tt.y {
			t.Errorf("%s at (%v, %v), want (%v, %v)", tt.name, e.LocationX, e.LocationY, tt.x, tt.y)
		}
		if e.Nav != nil {
			t.Errorf("%s still has nav", tt.name)
		}
	}
	if free.Properties.IsAutoLayoutCanvas {
		t.Error("IsAutoLayoutCanvas = true, want false")
	}
}

func TestToFreeFormBranchesSideBySide(t *testing.T) {
	f := decisionFlow(t)
	free, err := ToFreeForm(f.m, DefaultOptions())
	if err != nil {
		t.Fatalf("ToFreeForm() error: %v", err)
	}
	a, b := free.Elements[f.id["A"]], free.Elements[f.id["B"]]
	if a.LocationY != b.LocationY {
		t.Errorf("A.y = %v, B.y = %v, want same row", a.LocationY, b.LocationY)
	}
	if a.LocationX >= b.LocationX {
		t.Errorf("A.x = %v, B.x = %v, want A left of B", a.LocationX, b.LocationX)
	}
	d, m := free.Elements[f.id["D"]], free.Elements[f.id["M"]]
	if m.LocationY <= a.LocationY || d.LocationY >= a.LocationY {
		t.Errorf("rows D=%v A=%v M=%v, want D above branches above M", d.LocationY, a.LocationY, m.LocationY)
	}
}

func TestCheckRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		fixture func(*testing.T) fixture
	}{
		{"linear", linearFlow},
		{"decision with three outcomes", decisionFlow},
		{"nested decision", nestedFlow},
		{"loop", loopFlow},
		{"wait with two events", waitFlow},
		{"go-to jump", jumpFlow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.fixture(t)
			if err := CheckRoundTrip(f.m, DefaultOptions()); err != nil {
				t.Errorf("CheckRoundTrip() error: %v", err)
			}

			auto, err := ToAutoLayout(f.m)
			if err != nil {
				t.Fatalf("ToAutoLayout() error: %v", err)
			}
			if err := CheckRoundTrip(auto, DefaultOptions()); err != nil {
				t.Errorf("CheckRoundTrip(auto) error: %v", err)
			}
			if err := flow.AssertState(auto); err != nil {
				t.Errorf("AssertState(auto) error: %v", err)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	f := linearFlow(t)

	moved := f.m.DeepClone()
	moved.Elements[f.id["A"]].LocationX = 999
	moved.Elements[f.id["A"]].Config.IsSelected = true
	if diff := Diff(f.m, moved); len(diff) != 0 {
		t.Errorf("Diff() = %v, want none for coordinate and config changes", diff)
	}

	relabeled := f.m.DeepClone()
	relabeled.Elements[f.id["B"]].Label = "renamed"
	if diff := Diff(f.m, relabeled); !slices.Equal(diff, []string{f.id["B"]}) {
		t.Errorf("Diff() = %v, want [B]", diff)
	}

	retargeted := f.m.DeepClone()
	retargeted.Connectors[0].Target = f.id["B"]
	if diff := Diff(f.m, retargeted); !slices.Equal(diff, []string{f.m.Connectors[0].GUID}) {
		t.Errorf("Diff() = %v, want the changed connector", diff)
	}

	renamed := f.m.DeepClone()
	renamed.Properties.Label = "other"
	if diff := Diff(f.m, renamed); !slices.Equal(diff, []string{PropertiesKey}) {
		t.Errorf("Diff() = %v, want [%s]", diff, PropertiesKey)
	}
}
