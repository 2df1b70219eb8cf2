package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/render/nodelink"
)

// Output formats of the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: "dot", "svg", "pdf", "png"
	detailed bool     // show element type and GUID in node labels
	pinned   bool     // keep canvas coordinates instead of a Graphviz layout
	scale    float64  // PNG scale factor
}

// renderCommand creates the render command for node-link diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a flow as a node-link diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if len(opts.formats) > 1 && (opts.output == "" || opts.output == stdio) {
				return fmt.Errorf("multiple formats need --output as base path")
			}

			m, err := c.readFlow(args[0])
			if err != nil {
				return err
			}
			// Auto-layout canvases carry no coordinates to pin.
			pinned := opts.pinned && !m.Properties.IsAutoLayoutCanvas
			dot := nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed, Positions: pinned})

			prog := startProgress(cmd.Context(), "render", args[0])
			for _, format := range opts.formats {
				data, err := renderFormat(dot, format, pinned, opts.scale)
				if err != nil {
					return prog.fail(fmt.Errorf("render %s: %w", format, err))
				}
				if err := c.writeOutput(data, outputPath(opts.output, format, len(opts.formats) > 1)); err != nil {
					return prog.fail(err)
				}
			}
			prog.done("Rendered "+plural(len(opts.formats), "format"), "formats", strings.Join(opts.formats, ","))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show element type and GUID")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep free-form canvas coordinates")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func renderFormat(dot, format string, pinned bool, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		if pinned {
			return nodelink.RenderPinnedSVG(dot)
		}
		return nodelink.RenderSVG(dot)
	case formatPDF:
		return nodelink.RenderPDF(dot)
	case formatPNG:
		return nodelink.RenderPNG(dot, scale)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatDOT, formatSVG, formatPDF, formatPNG:
		default:
			return fmt.Errorf("invalid format %q: must be dot, svg, pdf or png", f)
		}
	}
	return nil
}

// outputPath returns the file for one format. With several formats the
// output is a base path and gets the format as extension.
func outputPath(output, format string, multi bool) string {
	if !multi {
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
}
