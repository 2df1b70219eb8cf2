// Package nodelink renders flows as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// elements appear as shapes connected by labelled arrows:
//
//   - start and end elements are circles
//   - decisions and waits are diamonds
//   - loops are hexagons
//   - everything else is a rounded box
//
// Fault connectors are dashed red, loop bodies blue, and default branches
// dashed.
//
// # Usage
//
// Convert a flow to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Free-Form Positions
//
// With Options.Positions a free-form flow keeps the coordinates stored on
// its elements. Render such output with [RenderPinnedSVG], which uses the
// neato engine so the pinned positions are honoured. Auto-layout flows are
// always ranked top to bottom by Graphviz.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
