package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

func TestToDOT_Basic(t *testing.T) {
	m := flow.New(flow.Properties{Label: "Checkout"})
	start, end := m.Start(), m.Elements[m.CanvasElements[1]]

	dot := ToDOT(m, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `label="Checkout"`) {
		t.Error("ToDOT() output missing flow label")
	}
	for _, id := range []string{start.GUID, end.GUID} {
		if !strings.Contains(dot, `"`+id+`" [`) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"`+start.GUID+`" -> "`+end.GUID+`"`) {
		t.Error("ToDOT() output missing edge")
	}
	if !strings.Contains(dot, "shape=doublecircle") {
		t.Error("ToDOT() end element missing doublecircle shape")
	}
}

func TestToDOT_Connectors(t *testing.T) {
	b := flow.NewBuilder(flow.Properties{})
	loop := b.Element(flow.ElementLoop, "Each order")
	body := b.Element(flow.ElementRecordUpdate, "Update")
	logScreen := b.Element(flow.ElementScreen, "Log")
	end := b.Element(flow.ElementEnd, "End")
	b.Link(b.Start(), loop).
		LinkSlot(loop, flow.Slot{Type: flow.ConnectorLoopNext}, body).
		Link(body, loop).
		LinkFault(body, logScreen).
		Link(logScreen, loop).
		Link(loop, end)
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	dot := ToDOT(m, Options{})

	tests := []struct {
		name string
		want string
	}{
		{"loop shape", "shape=hexagon"},
		{"fault edge", `label="Fault", style=dashed, color=red`},
		{"loop body edge", `label="For Each", color=blue`},
		{"loop end label", `label="After Last"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(dot, tt.want) {
				t.Errorf("ToDOT() output missing %s", tt.want)
			}
		})
	}
}

func TestToDOT_Positions(t *testing.T) {
	m := flow.New(flow.Properties{})
	start := m.Start().Clone()
	start.LocationX, start.LocationY = 120, 80
	m.Elements[start.GUID] = start

	if dot := ToDOT(m, Options{Positions: true}); !strings.Contains(dot, `pos="120,-80!"`) {
		t.Error("ToDOT() with Positions missing pinned position")
	}
	if dot := ToDOT(m, Options{}); strings.Contains(dot, "pos=") {
		t.Error("ToDOT() without Positions pinned a node")
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		element  *flow.Element
		detailed bool
		want     string
	}{
		{"simple", &flow.Element{GUID: "g1", Type: flow.ElementScreen, Label: "Welcome"}, false, "Welcome"},
		{"no label", &flow.Element{GUID: "g1", Type: flow.ElementScreen}, false, "SCREEN"},
		{"detailed", &flow.Element{GUID: "g1", Type: flow.ElementScreen, Label: "Welcome"}, true, "Welcome\nSCREEN\ng1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.element, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFmtAttrs_Selection(t *testing.T) {
	e := &flow.Element{Type: flow.ElementScreen, Config: flow.Config{IsSelected: true, IsHighlighted: true}}
	attrs := strings.Join(fmtAttrs(e, "x"), ",")
	if !strings.Contains(attrs, "penwidth=3") {
		t.Error("fmtAttrs() selected element missing penwidth")
	}
	if !strings.Contains(attrs, "color=orange") {
		t.Error("fmtAttrs() highlighted element missing color")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %q, want prefix %q", out, want)
	}

	plain := []byte("<svg></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox = %q", got)
	}
}
