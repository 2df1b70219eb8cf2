package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the element type and GUID to node labels.
	// When false, only the element label is shown.
	Detailed bool

	// Positions pins nodes at their free-form coordinates. It only applies
	// to free-form flows and requires the neato engine (see [RenderSVG]).
	Positions bool
}

// ToDOT converts a flow to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes follow the canvas order of m and edges follow its connector order,
// so the output is deterministic. Fault connectors are drawn dashed red and
// loop bodies blue; selected elements are drawn bold.
func ToDOT(m *flow.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if m.Properties.Label != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", m.Properties.Label)
	}
	buf.WriteString("\n")

	pin := opts.Positions && !m.Properties.IsAutoLayoutCanvas
	for _, id := range m.CanvasElements {
		e := m.Elements[id]
		attrs := fmtAttrs(e, fmtLabel(e, opts.Detailed))
		if pin {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.0f,%.0f!\"", e.LocationX, -e.LocationY))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.GUID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range m.Connectors {
		attrs := edgeAttrs(c)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Source, c.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e *flow.Element, detailed bool) string {
	label := e.Label
	if label == "" {
		label = string(e.Type)
	}
	if !detailed {
		return label
	}
	return label + "\n" + string(e.Type) + "\n" + e.GUID
}

func fmtAttrs(e *flow.Element, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch e.Type {
	case flow.ElementStart:
		attrs = append(attrs, "shape=circle", "fillcolor=palegreen")
	case flow.ElementEnd:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=lightpink")
	case flow.ElementDecision, flow.ElementWait:
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=lightyellow")
	case flow.ElementLoop:
		attrs = append(attrs, "shape=hexagon", "style=filled", "fillcolor=lightblue")
	}
	if e.Config.IsHighlighted {
		attrs = append(attrs, "color=orange")
	}
	if e.Config.IsSelected {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edgeAttrs(c *flow.Connector) []string {
	var attrs []string
	if c.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", c.Label))
	}
	switch c.Type {
	case flow.ConnectorFault:
		attrs = append(attrs, "style=dashed", "color=red", "fontcolor=red")
	case flow.ConnectorLoopNext:
		attrs = append(attrs, "color=blue", "fontcolor=blue")
	case flow.ConnectorDefault, flow.ConnectorImmediate:
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	return renderSVG(dot, graphviz.DOT)
}

// RenderPinnedSVG renders a DOT graph produced with Options.Positions,
// keeping nodes at their free-form coordinates.
func RenderPinnedSVG(dot string) ([]byte, error) {
	return renderSVG(dot, graphviz.NEATO)
}

func renderSVG(dot string, engine graphviz.Layout) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(engine)
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
