package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// Canvas modes accepted by --to and --mode.
const (
	modeAuto = "auto"
	modeFree = "free"
)

// errInvalid is returned by validate after the violation has been printed.
var errInvalid = errors.New("flow is invalid")

// newCommand creates the "new" command that writes an empty flow.
func (c *CLI) newCommand() *cobra.Command {
	var (
		output      string
		mode        string
		processType string
		description string
	)

	cmd := &cobra.Command{
		Use:   "new <label>",
		Short: "Create a flow holding a start and an end element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := flow.New(flow.Properties{
				Label:       args[0],
				ProcessType: processType,
				Description: description,
			})
			m, err := c.toMode(m, mode)
			if err != nil {
				return err
			}
			return c.writeFlow(m, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&mode, "mode", modeFree, "canvas mode: free or auto")
	cmd.Flags().StringVar(&processType, "process-type", "", "process type")
	cmd.Flags().StringVar(&description, "description", "", "flow description")

	return cmd
}

// validateCommand creates the "validate" command that runs the invariant
// checker and, optionally, the conversion round trip.
func (c *CLI) validateCommand() *cobra.Command {
	var roundTrip bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a flow document against the structural invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := startProgress(cmd.Context(), "validate", args[0])

			m, err := c.readFlow(args[0])
			if err != nil {
				// ReadJSON asserts the state while decoding.
				reportViolation(err)
				return prog.fail(errInvalid)
			}
			if roundTrip {
				if err := layout.CheckRoundTrip(m, c.Config.LayoutOptions()); err != nil {
					reportViolation(err)
					return prog.fail(errInvalid)
				}
			}

			stats := m.Stats()
			printSuccess("%s is valid", args[0])
			printStats(stats.Elements, stats.Connectors, m.Properties.IsAutoLayoutCanvas)
			prog.done("Validated", "round_trip", roundTrip)
			return nil
		},
	}

	cmd.Flags().BoolVar(&roundTrip, "round-trip", false, "also check that canvas conversion preserves the topology")

	return cmd
}

// convertCommand creates the "convert" command that switches canvas mode.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a flow between free-form and auto-layout canvases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := startProgress(cmd.Context(), "convert", args[0])
			m, err := c.readFlow(args[0])
			if err != nil {
				return prog.fail(err)
			}
			if m, err = c.toMode(m, to); err != nil {
				return prog.fail(err)
			}
			if err := c.writeFlow(m, output); err != nil {
				return prog.fail(err)
			}
			prog.done("Converted", "to", to, "elements", m.Stats().Elements)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&to, "to", modeAuto, "target canvas mode: auto or free")

	return cmd
}

// toMode converts m to the named canvas mode. Free-form conversion always
// re-lays out the canvas.
func (c *CLI) toMode(m *flow.Model, mode string) (*flow.Model, error) {
	switch mode {
	case modeAuto:
		if m.Properties.IsAutoLayoutCanvas {
			return m, nil
		}
		return layout.ToAutoLayout(m)
	case modeFree:
		if !m.Properties.IsAutoLayoutCanvas {
			return m, nil
		}
		return layout.ToFreeForm(m, c.Config.LayoutOptions())
	}
	return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "canvas mode must be %s or %s, got %q", modeAuto, modeFree, mode)
}

// reportViolation prints err, listing the elements a violation names.
func reportViolation(err error) {
	printError("%s", ferrors.UserMessage(ferrors.Classify(err)))
	var v *flow.Violation
	if errors.As(err, &v) {
		for _, guid := range v.Guids {
			printDetail("element %s", guid)
		}
	}
}

// canvasMode names the canvas mode of m.
func canvasMode(m *flow.Model) string {
	if m.Properties.IsAutoLayoutCanvas {
		return modeAuto
	}
	return modeFree
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
