package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/action"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// applyOpts holds the command-line flags for the apply command.
type applyOpts struct {
	output      string // output file for the resulting flow
	keepGoing   bool   // continue after a failing action
	showHistory bool   // print undo/redo stack sizes
}

// applyResult summarises a replayed script.
type applyResult struct {
	applied int
	failed  int
	changes int
}

// applyCommand creates the "apply" command that replays an action script
// through a graph store.
func (c *CLI) applyCommand() *cobra.Command {
	var opts applyOpts

	cmd := &cobra.Command{
		Use:   "apply <flow> <script>",
		Short: "Replay an action script against a flow",
		Long: `Replay an action script against a flow and write the result.

A script is a JSON array of action envelopes or one envelope per line:

  {"type": "AddElement", "detail": {"element": {"elementType": "SCREEN"}, "position": {"prev": "<guid>"}}}
  {"type": "Undo"}

Use "-" for either argument to read it from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdio && args[1] == stdio {
				return fmt.Errorf("flow and script cannot both be read from stdin")
			}
			m, err := c.readFlow(args[0])
			if err != nil {
				return err
			}
			actions, err := c.readScript(args[1])
			if err != nil {
				return err
			}

			prog := startProgress(cmd.Context(), "apply", args[0])
			g, s, err := c.newStore(m)
			if err != nil {
				return prog.fail(err)
			}
			res, err := runScript(s, actions, opts.keepGoing, func(i int, a action.Action, err error) {
				prog.logger.Warn("action failed", "index", i+1, "type", a.Type(), "err", err)
			})
			if err != nil {
				return prog.fail(err)
			}
			prog.done("Applied "+plural(res.applied, "action"), "changes", res.changes)

			if res.failed > 0 {
				printWarning("%s failed", plural(res.failed, "action"))
			}
			if opts.showHistory {
				h := g.History()
				printKeyValue("Changes", fmt.Sprint(res.changes))
				printKeyValue("Undo", fmt.Sprint(h.Past))
				printKeyValue("Redo", fmt.Sprint(h.Future))
				if h.InSession {
					printKeyValue("Session", plural(h.SessionLen, "pending action"))
				}
			}
			return c.writeFlow(s.State(), opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue after a failing action")
	cmd.Flags().BoolVar(&opts.showHistory, "history", false, "print undo/redo stack sizes")

	return cmd
}

// readScript decodes an action script from path, or from stdin for "-".
func (c *CLI) readScript(path string) ([]action.Action, error) {
	var r io.Reader = c.in
	if path != stdio {
		if err := ferrors.ValidatePath(path); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	actions, err := action.ReadScript(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return actions, nil
}

// runScript dispatches actions in order. Without keepGoing the first failure
// is returned; otherwise onError is called and the script continues.
func runScript(s store.Store, actions []action.Action, keepGoing bool, onError func(int, action.Action, error)) (applyResult, error) {
	var res applyResult
	unsubscribe := s.Subscribe(func(*flow.Model) { res.changes++ })
	defer unsubscribe()

	for i, a := range actions {
		if err := s.Dispatch(a); err != nil {
			if !keepGoing {
				return res, fmt.Errorf("action %d (%s): %w", i+1, a.Type(), err)
			}
			res.failed++
			if onError != nil {
				onError(i, a, err)
			}
			continue
		}
		res.applied++
	}
	return res, nil
}
